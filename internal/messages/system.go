package messages

// System-level messages for config, files and the store client.
const (
	// ConfigReadFmt formats config read errors.
	ConfigReadFmt            = "failed to read config %s: %w"
	ConfigInvalidFmt         = "invalid config %s: %w"
	ConfigUnrecognizedKeyFmt = "config %s contains unrecognized keys: %w"
	ConfigStoreURLRequired   = "store.base_url is required"
	ConfigStoreURLInvalidFmt = "store.base_url %q is invalid: %w"
	ConfigTimeoutInvalidFmt  = "store.timeout %q is invalid: %w"
	ConfigRetriesNegative    = "store.retries must not be negative"
	ConfigPathRequiredFmt    = "paths.%s is required"
	ConfigExpandPathFmt      = "expand path %s: %w"
	ConfigLogLevelInvalidFmt = "log.level %q is invalid: %w"
	ConfigEnvFileFmt         = "failed to read env file %s: %w"

	// EnvfileLineErrorFmt formats envfile line errors.
	EnvfileLineErrorFmt        = "line %d: %w"
	EnvfileReadFailedFmt       = "failed to read env content: %w"
	EnvfileExpectedKeyValue    = "expected KEY=VALUE"
	EnvfileUnterminatedQuoted  = "unterminated quoted value"
	EnvfileInvalidQuotedSuffix = "invalid trailing characters after quoted value"

	// AppDataReadFmt formats descriptor read errors.
	AppDataReadFmt           = "failed to read app file %s: %w"
	AppDataDecodeFmt         = "failed to decode app file %s: %w"
	AppDataEncodeFmt         = "failed to encode app %s: %w"
	AppDataWriteFmt          = "failed to write app file %s: %w"
	AppDataMissingFieldFmt   = "app file %s is missing %q"
	AppDataInvalidVersionFmt = "app file %s has invalid version %q: %w"
	AppDataNoFileSlugFmt     = "app file %s has no slug, title or id usable as a file name"

	// DownloadNotFoundFmt is shown when the store does not know the handle.
	DownloadNotFoundFmt       = "app %s not found"
	DownloadStatusFmt         = "unexpected response from the app store: %s"
	DownloadRequestFmt        = "create request for %s: %w"
	DownloadFetchFmt          = "could not reach the app store: %w"
	DownloadDecodeFmt         = "invalid response from the app store: %w"
	DownloadMissingApp        = "app store response did not include an app"
	DownloadTooLargeFmt       = "response from %s is larger than %d bytes"
	DownloadWriteFmt          = "failed to save %s: %w"
	DownloadIconFmt           = "failed to download icon: %w"
	DownloadTempDirFmt        = "failed to create download directory %s: %w"
	DownloadHandleRequired    = "app id or slug is required"
	DownloadInvalidHandleFmt  = "invalid app id or slug %q"
	DownloadCleanupFailedFmt  = "failed to clean up downloads: %w"
	DownloadBaseURLInvalidFmt = "invalid app store url %q: %w"

	// LockOpenFmt formats lock file open errors.
	LockOpenFmt    = "failed to open lock %s: %w"
	LockFmt        = "failed to lock %s: %w"
	LockTimeoutFmt = "timed out waiting for package lock after %s"

	// FsutilTempFileFmt formats temp file creation errors.
	FsutilTempFileFmt = "create temp file for %s: %w"
	FsutilWriteFmt    = "write temp file for %s: %w"
	FsutilRenameFmt   = "rename temp file to %s: %w"

	// TerminalRequired is returned when prompting without a terminal.
	TerminalRequired = "this command needs an interactive terminal to ask for input"
)
