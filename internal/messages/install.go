package messages

// Dialog texts shown during an installation attempt.
const (
	// DialogDownloadFailedTitle heads the dialog shown when the package cannot be fetched.
	DialogDownloadFailedTitle   = "Unable to download the application"
	DialogDownloadFailedBodyFmt = "%s could not be downloaded from the app store."
	DialogInvalidAppBodyFmt     = "The app store sent invalid application data: %v"
	DialogDoneTitle             = "Done!"
	DialogDoneBodyFmt           = "%s installed successfully! Look for it in the Apps launcher."
	DialogFailedTitle           = "Installation failed"
	DialogFailedBodyFmt         = "%s cannot be installed at the moment. Please make sure your kit is connected to the internet and there is enough space left on your card."

	// CredentialPromptFmt is the title of the sudo password prompt.
	CredentialPromptFmt      = "Installing %s"
	CredentialRetryTitle     = "Incorrect password"
	CredentialRetryBodyFmt   = "Sorry, try again. %d attempts left."
	SurfaceBusy              = "Working..."
	InstallerAlreadyUsed     = "installer has already been used for an install attempt"
	InstallerHandleRequired  = "install handle is required"
	InstallerDepsMissingFmt  = "installer dependency %s is not configured"
	PkgInstallCommandFmt     = "%s failed: %w"
	PrivilegeRunFmt          = "run %s: %w"
	PrivilegeValidateFmt     = "validate credential: %w"
	LinksCreateDirFmt        = "failed to create directory %s: %w"
	LinksCopyFmt             = "failed to copy %s to %s: %w"
	LinksWriteFmt            = "failed to write %s: %w"
	LinksRenderTemplateFmt   = "render desktop entry for %s: %w"
	LinksSlugRequired        = "application slug is required"
	LinksDataFileRequired    = "application data file is required"
	LinksPrivilegedCopyNoPw  = "%s is not writable and no credential was provided"
	LinksDesktopSlugRequired = "descriptor has no slug or title to name the desktop entry"
)
