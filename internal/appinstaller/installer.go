// Package appinstaller runs a single application install attempt: download, ask for
// the sudo password, install, and place launchers, reporting the outcome in a dialog.
package appinstaller

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/conn-castle/apps/internal/appdata"
	"github.com/conn-castle/apps/internal/download"
	"github.com/conn-castle/apps/internal/messages"
	"github.com/conn-castle/apps/internal/privilege"
	"github.com/conn-castle/apps/internal/ui"
)

// Downloader fetches an application and returns its data file and icon file.
type Downloader interface {
	Download(ctx context.Context, handle string) (dataFile string, iconFile string, err error)
}

// CredentialPrompter returns the sudo password, or privilege.ErrCredentialDeclined.
type CredentialPrompter interface {
	Acquire(ctx context.Context, prompt string) (string, error)
}

// PackageInstaller installs an application's packages as root.
type PackageInstaller interface {
	Install(ctx context.Context, app appdata.Descriptor, secret string) bool
}

// LinkInstaller places the application's data file, icon and menu entry.
type LinkInstaller interface {
	InstallLinkAndIcon(ctx context.Context, slug string, dataFile string, iconFile string, secret string) (string, error)
}

// DesktopAdder puts a shortcut on the desktop.
type DesktopAdder interface {
	AddToDesktop(app appdata.Descriptor) error
}

// Manifest loads and rewrites application data files.
type Manifest struct {
	Load  func(path string) (appdata.Descriptor, error)
	Write func(path string, app appdata.Descriptor) error
}

// FileManifest uses the appdata file format.
var FileManifest = Manifest{Load: appdata.LoadFile, Write: appdata.WriteFile}

// Deps are the collaborators an Installer delegates to.
type Deps struct {
	Downloader  Downloader
	Manifest    Manifest
	Credentials CredentialPrompter
	Packages    PackageInstaller
	Links       LinkInstaller
	Desktop     DesktopAdder
	Dialogs     ui.Dialogs
}

func (d Deps) validate() error {
	missing := ""
	switch {
	case d.Downloader == nil:
		missing = "Downloader"
	case d.Manifest.Load == nil || d.Manifest.Write == nil:
		missing = "Manifest"
	case d.Credentials == nil:
		missing = "Credentials"
	case d.Packages == nil:
		missing = "Packages"
	case d.Links == nil:
		missing = "Links"
	case d.Desktop == nil:
		missing = "Desktop"
	case d.Dialogs == nil:
		missing = "Dialogs"
	}
	if missing != "" {
		return fmt.Errorf(messages.InstallerDepsMissingFmt, missing)
	}
	return nil
}

// Request identifies what to install and, optionally, the surface to mark busy.
type Request struct {
	Handle  string
	Surface ui.Surface
}

// Installer performs one install attempt. It is not safe for concurrent use and
// cannot be reused once Install has been called.
type Installer struct {
	req  Request
	deps Deps

	iconOnly     bool
	addToDesktop bool

	started  bool
	dataFile string
	iconFile string
	app      appdata.Descriptor
	secret   string
	loc      string
	hasLoc   bool
}

// New returns an Installer for req. By default packages are installed and a desktop
// shortcut is added.
func New(req Request, deps Deps) *Installer {
	return &Installer{req: req, deps: deps, addToDesktop: true}
}

// SetIconOnly skips the package installation and desktop shortcut, installing only
// the launcher and icon. It has no effect once Install has started.
func (i *Installer) SetIconOnly(v bool) {
	if i.started {
		return
	}
	i.iconOnly = v
}

// SetAddToDesktop controls whether a desktop shortcut is created. It has no effect
// once Install has started.
func (i *Installer) SetAddToDesktop(v bool) {
	if i.started {
		return
	}
	i.addToDesktop = v
}

// Configure sets both flags at once. It has no effect once Install has started.
func (i *Installer) Configure(iconOnly bool, addToDesktop bool) {
	i.SetIconOnly(iconOnly)
	i.SetAddToDesktop(addToDesktop)
}

// Location returns where the application data file was installed. ok is false
// unless Install succeeded.
func (i *Installer) Location() (string, bool) {
	return i.loc, i.hasLoc
}

// Install runs the install attempt and reports whether it succeeded. Failures are
// reported to the user through dialogs, except a declined password prompt, which
// aborts silently.
func (i *Installer) Install(ctx context.Context) bool {
	if i.started {
		log.Warn(messages.InstallerAlreadyUsed)
		return false
	}
	i.started = true
	if err := i.deps.validate(); err != nil {
		log.Error(err)
		return false
	}

	if s := i.req.Surface; s != nil {
		s.Blur()
		defer s.Unblur()
	}

	if err := i.download(ctx); err != nil {
		return false
	}

	secret, err := i.deps.Credentials.Acquire(ctx, fmt.Sprintf(messages.CredentialPromptFmt, i.app.Title()))
	if err != nil {
		if errors.Is(err, privilege.ErrCredentialDeclined) {
			log.Infof("install of %s cancelled at the password prompt", i.app.Slug())
		} else {
			log.Errorf("could not get the install credential: %v", err)
		}
		return false
	}
	i.secret = secret

	i.deps.Dialogs.Flush()

	return i.install(ctx)
}

func (i *Installer) download(ctx context.Context) error {
	if i.req.Handle == "" {
		err := errors.New(messages.InstallerHandleRequired)
		i.showMessage(messages.DialogDownloadFailedTitle, err.Error())
		return err
	}
	log.Debugf("downloading %s", i.req.Handle)
	dataFile, iconFile, err := i.deps.Downloader.Download(ctx, i.req.Handle)
	if err != nil {
		log.Warnf("download of %s failed: %v", i.req.Handle, err)
		body := err.Error()
		if !download.IsDownloadError(err) {
			body = fmt.Sprintf(messages.DialogDownloadFailedBodyFmt, i.req.Handle)
		}
		i.showMessage(messages.DialogDownloadFailedTitle, body)
		return err
	}
	i.dataFile, i.iconFile = dataFile, iconFile

	app, err := i.deps.Manifest.Load(dataFile)
	if err != nil {
		log.Warnf("loading %s failed: %v", dataFile, err)
		i.showMessage(messages.DialogDownloadFailedTitle, fmt.Sprintf(messages.DialogInvalidAppBodyFmt, err))
		return err
	}
	i.app = app
	return nil
}

func (i *Installer) install(ctx context.Context) bool {
	success := true
	if !i.iconOnly {
		success = i.deps.Packages.Install(ctx, i.app, i.secret)
	}

	if success {
		success = i.placeLinks(ctx)
	}

	if success {
		i.showMessage(messages.DialogDoneTitle, fmt.Sprintf(messages.DialogDoneBodyFmt, i.app.Title()))
	} else {
		i.showMessage(messages.DialogFailedTitle, fmt.Sprintf(messages.DialogFailedBodyFmt, i.app.Title()))
	}
	return success
}

// placeLinks rewrites the data file from the descriptor, installs the launcher and
// icon, and adds the desktop shortcut when requested.
func (i *Installer) placeLinks(ctx context.Context) bool {
	if err := i.deps.Manifest.Write(i.dataFile, i.app); err != nil {
		log.Errorf("rewriting %s failed: %v", i.dataFile, err)
		return false
	}

	loc, err := i.deps.Links.InstallLinkAndIcon(ctx, i.app.FileSlug(), i.dataFile, i.iconFile, i.secret)
	if err != nil {
		log.Errorf("installing launcher for %s failed: %v", i.app.Slug(), err)
		return false
	}
	i.loc, i.hasLoc = loc, true

	if !i.iconOnly && i.addToDesktop {
		if err := i.deps.Desktop.AddToDesktop(i.app); err != nil {
			log.Warnf("adding %s to the desktop failed: %v", i.app.Slug(), err)
		}
	}
	return true
}

func (i *Installer) showMessage(title string, body string) {
	if err := i.deps.Dialogs.Message(title, body); err != nil {
		log.Warnf("could not show %q dialog: %v", title, err)
	}
}

// Cleanup removes the downloaded temporary files. Installed artifacts are kept.
func (i *Installer) Cleanup() error {
	return download.Cleanup(i.dataFile, i.iconFile)
}
