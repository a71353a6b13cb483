package pkginstall

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/conn-castle/apps/internal/appdata"
)

type recordingRunner struct {
	calls  []string
	secret []string
	failOn string
}

func (r *recordingRunner) Run(_ context.Context, secret string, name string, args ...string) error {
	call := strings.TrimSpace(name + " " + strings.Join(args, " "))
	r.calls = append(r.calls, call)
	r.secret = append(r.secret, secret)
	if r.failOn != "" && strings.HasPrefix(call, r.failOn) {
		return errors.New("exit status 100")
	}
	return nil
}

type countingLock struct {
	count int
	err   error
}

func (l *countingLock) With(fn func() error) error {
	l.count++
	if l.err != nil {
		return l.err
	}
	return fn()
}

func TestInstallPackagesAndDependencies(t *testing.T) {
	runner := &recordingRunner{}
	lock := &countingLock{}
	i := &Installer{Runner: runner, Lock: lock}
	app := appdata.Descriptor{
		"slug":         "make-art",
		"packages":     []any{"make-art", "make-art-data"},
		"dependencies": "python3 make-art",
	}

	assert.True(t, i.Install(context.Background(), app, "pw"))
	assert.Equal(t, 1, lock.count)
	assert.Equal(t, []string{
		"apt-get update",
		"apt-get install -y make-art make-art-data python3",
	}, runner.calls)
	assert.Equal(t, []string{"pw", "pw"}, runner.secret)
}

func TestInstallRunsPostInstallCommand(t *testing.T) {
	runner := &recordingRunner{}
	i := &Installer{Runner: runner, AptGet: "/usr/bin/apt-get"}
	app := appdata.Descriptor{"slug": "pong", "packages": "pong", "run_cmd": "pong --setup"}

	assert.True(t, i.Install(context.Background(), app, "pw"))
	assert.Equal(t, []string{
		"/usr/bin/apt-get update",
		"/usr/bin/apt-get install -y pong",
		"sh -c pong --setup",
	}, runner.calls)
}

func TestInstallWithoutPackagesSucceeds(t *testing.T) {
	runner := &recordingRunner{}
	i := &Installer{Runner: runner}
	assert.True(t, i.Install(context.Background(), appdata.Descriptor{"slug": "web-app"}, "pw"))
	assert.Empty(t, runner.calls)
}

func TestInstallFailure(t *testing.T) {
	runner := &recordingRunner{failOn: "apt-get install"}
	i := &Installer{Runner: runner}
	app := appdata.Descriptor{"slug": "pong", "packages": "pong", "run_cmd": "pong --setup"}

	assert.False(t, i.Install(context.Background(), app, "pw"))
	assert.Len(t, runner.calls, 2, "post-install command must not run after a failed install")
}

func TestInstallLockFailure(t *testing.T) {
	runner := &recordingRunner{}
	i := &Installer{Runner: runner, Lock: &countingLock{err: errors.New("timed out")}}
	assert.False(t, i.Install(context.Background(), appdata.Descriptor{"slug": "pong", "packages": "pong"}, "pw"))
	assert.Empty(t, runner.calls)
}
