// Package pkginstall installs an application's Debian packages with apt-get.
package pkginstall

import (
	"context"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/conn-castle/apps/internal/appdata"
	"github.com/conn-castle/apps/internal/messages"
)

// CommandRunner runs a command as root using secret.
type CommandRunner interface {
	Run(ctx context.Context, secret string, name string, args ...string) error
}

// Locker serializes access to the package manager.
type Locker interface {
	With(fn func() error) error
}

// Installer installs packages through a privileged runner.
type Installer struct {
	Runner CommandRunner
	Lock   Locker
	// AptGet is the apt-get binary. Defaults to "apt-get".
	AptGet string
}

// Install installs the descriptor's packages and dependencies, then runs its optional
// post-install command. It reports whether everything succeeded; failures are logged.
func (i *Installer) Install(ctx context.Context, app appdata.Descriptor, secret string) bool {
	run := func() error { return i.install(ctx, app, secret) }
	var err error
	if i.Lock != nil {
		err = i.Lock.With(run)
	} else {
		err = run()
	}
	if err != nil {
		log.Errorf("installing %s failed: %v", app.Slug(), err)
		return false
	}
	log.Infof("installed %s", app.Slug())
	return true
}

func (i *Installer) install(ctx context.Context, app appdata.Descriptor, secret string) error {
	pkgs := packageSet(app)
	if len(pkgs) > 0 {
		if err := i.run(ctx, secret, i.aptGet(), "update"); err != nil {
			return err
		}
		args := append([]string{"install", "-y"}, pkgs...)
		if err := i.run(ctx, secret, i.aptGet(), args...); err != nil {
			return err
		}
	} else {
		log.Debugf("%s has no packages to install", app.Slug())
	}

	if cmd := app.RunCommand(); cmd != "" {
		if err := i.run(ctx, secret, "sh", "-c", cmd); err != nil {
			return err
		}
	}
	return nil
}

func (i *Installer) run(ctx context.Context, secret string, name string, args ...string) error {
	if err := i.Runner.Run(ctx, secret, name, args...); err != nil {
		return fmt.Errorf(messages.PkgInstallCommandFmt, name+" "+strings.Join(args, " "), err)
	}
	return nil
}

func (i *Installer) aptGet() string {
	if i.AptGet == "" {
		return "apt-get"
	}
	return i.AptGet
}

// packageSet returns packages followed by dependencies, without duplicates.
func packageSet(app appdata.Descriptor) []string {
	seen := make(map[string]bool)
	var out []string
	for _, list := range [][]string{app.Packages(), app.Dependencies()} {
		for _, p := range list {
			if p == "" || seen[p] {
				continue
			}
			seen[p] = true
			out = append(out, p)
		}
	}
	return out
}
