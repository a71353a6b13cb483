// Package privilege acquires the sudo password and runs commands with it.
package privilege

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/conn-castle/apps/internal/messages"
)

var execCommandContext = exec.CommandContext
var geteuid = os.Geteuid

// Runner executes commands as root through sudo, feeding the password on stdin.
type Runner struct {
	// Sudo is the sudo binary. Defaults to "sudo".
	Sudo   string
	Stdout io.Writer
	Stderr io.Writer
}

// IsRoot reports whether the current process already runs as root.
func IsRoot() bool {
	return geteuid() == 0
}

// Run runs name with args as root. When the process is already root, sudo is skipped
// and secret is ignored.
func (r *Runner) Run(ctx context.Context, secret string, name string, args ...string) error {
	var cmd *exec.Cmd
	if IsRoot() {
		cmd = execCommandContext(ctx, name, args...)
	} else {
		sudoArgs := append([]string{"-S", "-p", "", "--", name}, args...)
		cmd = execCommandContext(ctx, r.sudo(), sudoArgs...)
		cmd.Stdin = strings.NewReader(secret + "\n")
	}
	cmd.Env = append(os.Environ(), "DEBIAN_FRONTEND=noninteractive")

	var stderr bytes.Buffer
	cmd.Stdout = r.Stdout
	cmd.Stderr = &stderr
	if r.Stderr != nil {
		cmd.Stderr = io.MultiWriter(&stderr, r.Stderr)
	}

	log.Debugf("running privileged command: %s %s", name, strings.Join(args, " "))
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			log.Debugf("%s stderr: %s", name, msg)
		}
		return fmt.Errorf(messages.PrivilegeRunFmt, name, err)
	}
	return nil
}

// Validate checks secret against sudo without running a command. Cached sudo
// credentials are ignored so a wrong password is always detected.
func (r *Runner) Validate(ctx context.Context, secret string) error {
	if IsRoot() {
		return nil
	}
	cmd := execCommandContext(ctx, r.sudo(), "-S", "-k", "-p", "", "-v")
	cmd.Stdin = strings.NewReader(secret + "\n")
	if err := cmd.Run(); err != nil {
		return fmt.Errorf(messages.PrivilegeValidateFmt, err)
	}
	return nil
}

func (r *Runner) sudo() string {
	if r == nil || r.Sudo == "" {
		return "sudo"
	}
	return r.Sudo
}
