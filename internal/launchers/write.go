// Package launchers installs application launchers, icons and desktop shortcuts.
package launchers

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"unicode"

	log "github.com/sirupsen/logrus"

	"github.com/conn-castle/apps/internal/appdata"
	"github.com/conn-castle/apps/internal/messages"
	"github.com/conn-castle/apps/internal/privilege"
)

//go:embed templates/app.desktop.tmpl
var desktopTemplateText string

var desktopTemplate = template.Must(template.New("app.desktop").Parse(desktopTemplateText))

// CommandRunner runs a command as root using secret.
type CommandRunner interface {
	Run(ctx context.Context, secret string, name string, args ...string) error
}

// Paths are the directories launchers are installed into.
type Paths struct {
	AppsDir         string
	IconsDir        string
	ApplicationsDir string
	DesktopDir      string
}

// Installer writes launcher artifacts. Directories the user cannot write to are
// populated through Runner with the install credential.
type Installer struct {
	Sys    System
	Paths  Paths
	Runner CommandRunner
}

type desktopEntry struct {
	Name       string
	Comment    string
	Exec       string
	Icon       string
	Categories string
	Slug       string
}

// InstallLinkAndIcon copies the application data file and icon into place and writes a
// menu entry for it. It returns the location of the installed data file.
func (i *Installer) InstallLinkAndIcon(ctx context.Context, slug string, dataFile string, iconFile string, secret string) (string, error) {
	if strings.TrimSpace(slug) == "" {
		return "", errors.New(messages.LinksSlugRequired)
	}
	if dataFile == "" {
		return "", errors.New(messages.LinksDataFileRequired)
	}
	data, err := i.Sys.ReadFile(dataFile)
	if err != nil {
		return "", fmt.Errorf(messages.LinksCopyFmt, dataFile, i.Paths.AppsDir, err)
	}
	app, err := appdata.Parse(data, dataFile)
	if err != nil {
		return "", err
	}

	loc := filepath.Join(i.Paths.AppsDir, slug+".app")
	if err := i.put(ctx, secret, loc, data, 0o644); err != nil {
		return "", err
	}

	icon := ""
	if iconFile != "" {
		iconData, err := i.Sys.ReadFile(iconFile)
		if err != nil {
			return "", fmt.Errorf(messages.LinksCopyFmt, iconFile, i.Paths.IconsDir, err)
		}
		icon = filepath.Join(i.Paths.IconsDir, slug+filepath.Ext(iconFile))
		if err := i.put(ctx, secret, icon, iconData, 0o644); err != nil {
			return "", err
		}
	}

	entry, err := renderDesktopEntry(app, slug, icon)
	if err != nil {
		return "", err
	}
	menuPath := filepath.Join(i.Paths.ApplicationsDir, slug+".desktop")
	if err := i.put(ctx, secret, menuPath, entry, 0o644); err != nil {
		return "", err
	}
	log.Infof("installed launcher for %s at %s", slug, loc)
	return loc, nil
}

// AddToDesktop places an executable shortcut for app on the user's desktop.
func (i *Installer) AddToDesktop(app appdata.Descriptor) error {
	slug := app.FileSlug()
	if slug == "" {
		return errors.New(messages.LinksDesktopSlugRequired)
	}
	icon := i.installedIcon(slug)
	entry, err := renderDesktopEntry(app, slug, icon)
	if err != nil {
		return err
	}
	if err := i.Sys.MkdirAll(i.Paths.DesktopDir, 0o755); err != nil {
		return fmt.Errorf(messages.LinksCreateDirFmt, i.Paths.DesktopDir, err)
	}
	path := filepath.Join(i.Paths.DesktopDir, slug+".desktop")
	if err := i.Sys.WriteFileAtomic(path, entry, 0o755); err != nil {
		return fmt.Errorf(messages.LinksWriteFmt, path, err)
	}
	log.Infof("added %s to the desktop", slug)
	return nil
}

// installedIcon finds the icon InstallLinkAndIcon stored for slug, if any.
func (i *Installer) installedIcon(slug string) string {
	matches, err := filepath.Glob(filepath.Join(i.Paths.IconsDir, slug+".*"))
	if err != nil || len(matches) == 0 {
		return ""
	}
	return matches[0]
}

// put writes data to path directly when the directory is writable and through
// `install` as root otherwise.
func (i *Installer) put(ctx context.Context, secret string, path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if i.Sys.Writable(dir) {
		if err := i.Sys.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf(messages.LinksCreateDirFmt, dir, err)
		}
		if err := i.Sys.WriteFileAtomic(path, data, perm); err != nil {
			return fmt.Errorf(messages.LinksWriteFmt, path, err)
		}
		return nil
	}
	if i.Runner == nil || (secret == "" && !privilege.IsRoot()) {
		return fmt.Errorf(messages.LinksPrivilegedCopyNoPw, dir)
	}

	staged, err := os.CreateTemp("", "apps-stage-*")
	if err != nil {
		return fmt.Errorf(messages.LinksWriteFmt, path, err)
	}
	defer func() { _ = os.Remove(staged.Name()) }()
	if _, err := staged.Write(data); err != nil {
		_ = staged.Close()
		return fmt.Errorf(messages.LinksWriteFmt, path, err)
	}
	if err := staged.Close(); err != nil {
		return fmt.Errorf(messages.LinksWriteFmt, path, err)
	}
	mode := fmt.Sprintf("%04o", perm.Perm())
	if err := i.Runner.Run(ctx, secret, "install", "-D", "-m", mode, staged.Name(), path); err != nil {
		return fmt.Errorf(messages.LinksCopyFmt, staged.Name(), path, err)
	}
	return nil
}

func renderDesktopEntry(app appdata.Descriptor, slug string, icon string) ([]byte, error) {
	entry := desktopEntry{
		Name:       oneLine(app.Title()),
		Comment:    oneLine(app.Description()),
		Exec:       oneLine(app.Exec()),
		Icon:       icon,
		Categories: categoryList(app.Categories()),
		Slug:       slug,
	}
	var buf bytes.Buffer
	if err := desktopTemplate.Execute(&buf, entry); err != nil {
		return nil, fmt.Errorf(messages.LinksRenderTemplateFmt, slug, err)
	}
	return buf.Bytes(), nil
}

// categoryList joins categories with ';'. Separators and whitespace inside a
// category are dropped so each one stays a single list item.
func categoryList(categories []string) string {
	out := make([]string, 0, len(categories))
	for _, c := range categories {
		c = strings.Map(func(r rune) rune {
			if r == ';' || r == '\\' || unicode.IsSpace(r) || unicode.IsControl(r) {
				return -1
			}
			return r
		}, c)
		if c != "" {
			out = append(out, c)
		}
	}
	return strings.Join(out, ";")
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
