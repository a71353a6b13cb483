// Package fsutil holds small filesystem helpers shared across packages.
package fsutil

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/conn-castle/apps/internal/messages"
)

var renameFn = os.Rename

// WriteFileAtomic writes data to filename by writing a sibling temp file and renaming it
// into place, so readers never observe a partially written file.
func WriteFileAtomic(filename string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(filename)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(filename)+".tmp-*")
	if err != nil {
		return fmt.Errorf(messages.FsutilTempFileFmt, filename, err)
	}
	tmpName := tmp.Name()
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}

	if _, err := tmp.Write(data); err != nil {
		cleanup()
		return fmt.Errorf(messages.FsutilWriteFmt, filename, err)
	}
	if err := tmp.Chmod(perm); err != nil {
		cleanup()
		return fmt.Errorf(messages.FsutilWriteFmt, filename, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf(messages.FsutilWriteFmt, filename, err)
	}
	if err := renameFn(tmpName, filename); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf(messages.FsutilRenameFmt, filename, err)
	}
	return nil
}
