package vault

import (
	"os"
	"path/filepath"
	"testing"
)

func writeLegacy(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
}

func TestMigrateLegacyFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeLegacy(t, dir, legacyDBConfigFile,
		`{"server":"old.db","database":"conns","username":"u","password":"p","port":"5432","type":"postgres"}`)
	writeLegacy(t, dir, legacyKeyLocationsFile, `{"2":"/home/u/.ssh/work"}`)
	writeLegacy(t, dir, legacyPasswordsFile, `{"1":"oldpw"}`)

	v, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}

	if got := v.DBProfile().Server; got != "old.db" {
		t.Errorf("db profile not migrated, server: %q", got)
	}
	if got := v.KeyPath(2, false); got != "/home/u/.ssh/work" {
		t.Errorf("key path not migrated: %q", got)
	}
	if got := v.Password(1); got != "oldpw" {
		t.Errorf("password not migrated: %q", got)
	}

	// Unified document was saved, legacy files renamed, not deleted.
	if _, err := os.Stat(filepath.Join(dir, configFile)); err != nil {
		t.Error("unified document should have been written")
	}
	for _, name := range []string{legacyDBConfigFile, legacyKeyLocationsFile, legacyPasswordsFile} {
		if _, err := os.Stat(filepath.Join(dir, name)); !os.IsNotExist(err) {
			t.Errorf("%s should have been renamed away", name)
		}
		if _, err := os.Stat(filepath.Join(dir, name+".bak")); err != nil {
			t.Errorf("%s.bak should exist", name)
		}
	}
}

func TestMigratePartialFailure(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeLegacy(t, dir, legacyPasswordsFile, `{"1":"pw"}`)
	writeLegacy(t, dir, legacyKeyLocationsFile, `not json at all`)

	v, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}

	if got := v.Password(1); got != "pw" {
		t.Errorf("valid legacy file should migrate, got: %q", got)
	}
	if got := v.KeyPath(1, false); got != "" {
		t.Errorf("invalid legacy file should be ignored, got: %q", got)
	}

	// The unparseable file keeps its original name.
	if _, err := os.Stat(filepath.Join(dir, legacyKeyLocationsFile)); err != nil {
		t.Error("invalid legacy file should be left in place")
	}
	if _, err := os.Stat(filepath.Join(dir, legacyPasswordsFile+".bak")); err != nil {
		t.Error("migrated legacy file should have a .bak")
	}
}

func TestMigrateIdempotent(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeLegacy(t, dir, legacyPasswordsFile, `{"4":"pw4"}`)

	if _, err := Open(dir); err != nil {
		t.Fatal(err)
	}

	first, err := os.ReadFile(filepath.Join(dir, configFile))
	if err != nil {
		t.Fatal(err)
	}

	// Second run sees the unified document and only .bak files: no
	// migration, no error, no changes.
	v, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	if got := v.Password(4); got != "pw4" {
		t.Errorf("want pw4, got: %q", got)
	}

	second, err := os.ReadFile(filepath.Join(dir, configFile))
	if err != nil {
		t.Fatal(err)
	}
	if string(first) != string(second) {
		t.Error("second run must not rewrite the document")
	}
}

func TestMigrateNothingToDo(t *testing.T) {
	t.Parallel()

	v, err := Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	migrated, err := v.migrate()
	if err != nil {
		t.Fatal(err)
	}
	if migrated {
		t.Error("nothing to migrate, migrate must report false")
	}
}
