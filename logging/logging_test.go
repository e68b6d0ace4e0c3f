package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestOpenWritesEntries(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	log, closeFn, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}

	log.Debug("dialing host")
	log.Debug("session started")
	closeFn()

	data, err := os.ReadFile(filepath.Join(dir, logFile))
	if err != nil {
		t.Fatal(err)
	}

	content := string(data)
	for _, want := range []string{"dialing host", "session started", "session"} {
		if !strings.Contains(content, want) {
			t.Errorf("debug log missing %q:\n%s", want, content)
		}
	}
}

func TestOpenAppendsAcrossRuns(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	first, closeFirst, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	first.Debug("first run")
	closeFirst()

	second, closeSecond, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	second.Debug("second run")
	closeSecond()

	data, err := os.ReadFile(filepath.Join(dir, logFile))
	if err != nil {
		t.Fatal(err)
	}

	content := string(data)
	if !strings.Contains(content, "first run") || !strings.Contains(content, "second run") {
		t.Errorf("debug log must keep entries from both runs:\n%s", content)
	}
}

func TestOpenCreatesConfigDir(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "nested", "config")
	_, closeFn, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	closeFn()

	if _, err := os.Stat(filepath.Join(dir, logFile)); err != nil {
		t.Error("debug log not created:", err)
	}
}
