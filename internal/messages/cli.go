package messages

// CLI messages for user-facing commands and flags.
const (
	// RootUse is the CLI command name.
	RootUse = "apps"
	// RootShort is the short description for the root command.
	RootShort       = "Install applications from the app store"
	RootVersionFlag = "Print version and exit"
	RootFlagConfig  = "Path to config.toml (default ~/.config/apps/config.toml)"

	// VersionCommitFmt formats the commit hash for version display.
	VersionCommitFmt = "commit %s"
	VersionBuildFmt  = "built %s"
	VersionFullFmt   = "%s (%s)"
	VersionTemplate  = "{{.Version}}\n"
	VersionUse       = "version"
	VersionShort     = "Print the apps version"

	// InstallUse is the install command name.
	InstallUse            = "install <id-or-slug>"
	InstallShort          = "Download and install an application"
	InstallFlagIconOnly   = "Only install the launcher and icon; skip the package installation"
	InstallFlagNoDesktop  = "Do not add a shortcut to the desktop"
	InstallHandleRequired = "an application id or slug is required"
	InstallLocationFmt    = "Installed to %s\n"
)
