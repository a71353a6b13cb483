// Package lock serializes package installations with an advisory file lock.
package lock

import (
	"errors"
	"fmt"
	"os"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"

	"github.com/conn-castle/apps/internal/messages"
)

var flockFn = unix.Flock
var lockSleep = time.Sleep

const defaultPollEvery = 100 * time.Millisecond

// DefaultTimeout is how long an install waits for another install to finish.
const DefaultTimeout = 5 * time.Minute

// File is an exclusive advisory lock on a path.
type File struct {
	Path      string
	Timeout   time.Duration
	PollEvery time.Duration
}

// New returns a lock on path that waits up to timeout for other holders.
func New(path string, timeout time.Duration) *File {
	return &File{Path: path, Timeout: timeout, PollEvery: defaultPollEvery}
}

// With acquires the lock, runs fn, and releases the lock.
func (l *File) With(fn func() error) error {
	file, err := l.acquire()
	if err != nil {
		return err
	}
	defer func() {
		if err := release(file); err != nil {
			log.Warnf("release lock %s: %v", l.Path, err)
		}
	}()
	return fn()
}

func (l *File) acquire() (*os.File, error) {
	file, err := os.OpenFile(l.Path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf(messages.LockOpenFmt, l.Path, err)
	}
	if err := l.lock(file); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf(messages.LockFmt, l.Path, err)
	}
	return file, nil
}

// lock polls a non-blocking flock until it succeeds or the timeout passes.
func (l *File) lock(file *os.File) error {
	poll := l.PollEvery
	if poll <= 0 {
		poll = defaultPollEvery
	}
	deadline := time.Now().Add(l.Timeout)
	for {
		err := flockFn(int(file.Fd()), unix.LOCK_EX|unix.LOCK_NB)
		if err == nil {
			return nil
		}
		if !errors.Is(err, unix.EWOULDBLOCK) && !errors.Is(err, unix.EAGAIN) {
			return err
		}
		if time.Now().After(deadline) {
			return fmt.Errorf(messages.LockTimeoutFmt, l.Timeout)
		}
		log.Debugf("waiting for lock %s", l.Path)
		lockSleep(poll)
	}
}

func release(file *os.File) error {
	if err := flockFn(int(file.Fd()), unix.LOCK_UN); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}
