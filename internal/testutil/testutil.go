// Package testutil holds helpers shared by package tests.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// WriteStubWithExit writes an executable shell stub in dir that exits with exitCode.
func WriteStubWithExit(t *testing.T, dir string, name string, exitCode int) string {
	t.Helper()
	return writeScript(t, dir, name, fmt.Sprintf("#!/bin/sh\nexit %d\n", exitCode))
}

// WriteRecordingStub writes an executable stub that appends its arguments as one line
// to log and its stdin to log+".stdin", then exits with exitCode.
func WriteRecordingStub(t *testing.T, dir string, name string, log string, exitCode int) string {
	t.Helper()
	script := fmt.Sprintf("#!/bin/sh\necho \"$*\" >> %q\ncat >> %q\nexit %d\n", log, log+".stdin", exitCode)
	return writeScript(t, dir, name, script)
}

// WriteStubExpectStdin writes an executable stub that succeeds only when the first
// line of stdin equals expected.
func WriteStubExpectStdin(t *testing.T, dir string, name string, expected string) string {
	t.Helper()
	script := fmt.Sprintf("#!/bin/sh\nread line\n[ \"$line\" = %q ]\n", expected)
	return writeScript(t, dir, name, script)
}

// ReadLines returns the non-empty lines of path, or nil when it does not exist.
func ReadLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	var lines []string
	for _, line := range strings.Split(string(data), "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func writeScript(t *testing.T, dir string, name string, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	return path
}
