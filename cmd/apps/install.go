package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/conn-castle/apps/internal/appinstaller"
	"github.com/conn-castle/apps/internal/config"
	"github.com/conn-castle/apps/internal/download"
	"github.com/conn-castle/apps/internal/launchers"
	"github.com/conn-castle/apps/internal/lock"
	"github.com/conn-castle/apps/internal/logging"
	"github.com/conn-castle/apps/internal/messages"
	"github.com/conn-castle/apps/internal/pkginstall"
	"github.com/conn-castle/apps/internal/privilege"
	"github.com/conn-castle/apps/internal/terminal"
	"github.com/conn-castle/apps/internal/ui"
)

// installRunner is the part of *appinstaller.Installer the command drives.
type installRunner interface {
	Configure(iconOnly bool, addToDesktop bool)
	Install(ctx context.Context) bool
	Location() (string, bool)
	Cleanup() error
}

var newInstaller = func(req appinstaller.Request, deps appinstaller.Deps) installRunner {
	return appinstaller.New(req, deps)
}

var (
	loadConfig        = config.Load
	defaultConfigPath = config.DefaultPath
	stderrIsTerminal  = func() bool { return terminal.IsWriterTerminal(os.Stderr) }
)

func newInstallCmd() *cobra.Command {
	var iconOnly bool
	var noDesktop bool

	cmd := &cobra.Command{
		Use:   messages.InstallUse,
		Short: messages.InstallShort,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 || strings.TrimSpace(args[0]) == "" {
				return errors.New(messages.InstallHandleRequired)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			stderr := cmd.ErrOrStderr()
			cfg, err := resolveConfig(cmd)
			if err != nil {
				return err
			}
			level, err := cfg.LogLevel()
			if err != nil {
				return err
			}
			logging.Init(level, cfg.Log.File, stderr)

			deps, err := buildDeps(cfg, stderr)
			if err != nil {
				return err
			}
			surface := ui.NewTerminalSurface(stderr, stderrIsTerminal())
			inst := newInstaller(appinstaller.Request{Handle: strings.TrimSpace(args[0]), Surface: surface}, deps)
			inst.Configure(iconOnly, !noDesktop)
			defer func() {
				if err := inst.Cleanup(); err != nil {
					log.Warnf("removing downloaded files failed: %v", err)
				}
			}()

			if !inst.Install(cmd.Context()) {
				return &SilentExitError{Code: 1}
			}
			if loc, ok := inst.Location(); ok {
				_, _ = fmt.Fprint(cmd.OutOrStdout(), color.GreenString(messages.InstallLocationFmt, loc))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&iconOnly, "icon-only", false, messages.InstallFlagIconOnly)
	cmd.Flags().BoolVar(&noDesktop, "no-desktop", false, messages.InstallFlagNoDesktop)
	return cmd
}

// resolveConfig loads the file named by --config, or the default location.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := cmd.Flags().GetString(flagConfig)
	if err != nil {
		return nil, err
	}
	if path == "" {
		path, err = defaultConfigPath()
		if err != nil {
			return nil, err
		}
	}
	return loadConfig(path)
}

// buildDeps wires the production collaborators for an install.
func buildDeps(cfg *config.Config, stderr io.Writer) (appinstaller.Deps, error) {
	timeout, err := cfg.StoreTimeout()
	if err != nil {
		return appinstaller.Deps{}, err
	}
	dialogs := ui.NewHuhDialogs(stderr)
	runner := &privilege.Runner{Stderr: stderr}
	links := &launchers.Installer{
		Sys: launchers.RealSystem{},
		Paths: launchers.Paths{
			AppsDir:         cfg.Paths.AppsDir,
			IconsDir:        cfg.Paths.IconsDir,
			ApplicationsDir: cfg.Paths.ApplicationsDir,
			DesktopDir:      cfg.Paths.DesktopDir,
		},
		Runner: runner,
	}
	return appinstaller.Deps{
		Downloader: download.NewClient(cfg.Store.BaseURL, cfg.Paths.TempDir, timeout, cfg.Store.Retries),
		Manifest:   appinstaller.FileManifest,
		Credentials: &privilege.Prompter{
			Dialogs:   dialogs,
			Validator: runner,
			Attempts:  privilege.DefaultAttempts,
		},
		Packages: &pkginstall.Installer{
			Runner: runner,
			Lock:   lock.New(cfg.Paths.LockFile, lock.DefaultTimeout),
		},
		Links:   links,
		Desktop: links,
		Dialogs: dialogs,
	}, nil
}
