package sshconn

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/szwenni/sshConnectionManager/registry"
)

type fakeSecrets struct {
	password    string
	keyPath     string
	keyPassword string
}

func (f fakeSecrets) Password(int64) string      { return f.password }
func (f fakeSecrets) KeyPath(int64, bool) string { return f.keyPath }
func (f fakeSecrets) KeyPassword(int64) string   { return f.keyPassword }

func TestBuildConfigPassword(t *testing.T) {
	t.Parallel()

	conn := registry.Connection{ID: 1, Username: "root", AuthType: registry.AuthPassword}

	config, err := BuildConfig(conn, fakeSecrets{password: "hunter2"})
	if err != nil {
		t.Fatal(err)
	}
	if config.User != "root" || len(config.Auth) != 1 {
		t.Errorf("unexpected config: %+v", config)
	}

	if _, err := BuildConfig(conn, fakeSecrets{}); !errors.Is(err, ErrNoPassword) {
		t.Errorf("want ErrNoPassword, got: %v", err)
	}
}

func TestBuildConfigBadAuthType(t *testing.T) {
	t.Parallel()

	conn := registry.Connection{ID: 1, Username: "root", AuthType: "carrier-pigeon"}
	if _, err := BuildConfig(conn, fakeSecrets{}); err == nil {
		t.Error("invalid auth type must be rejected")
	}
}

func TestBuildConfigKeyMissing(t *testing.T) {
	t.Parallel()

	conn := registry.Connection{ID: 1, Username: "root", AuthType: registry.AuthKey}
	secrets := fakeSecrets{keyPath: filepath.Join(t.TempDir(), "nonexistent")}

	if _, err := BuildConfig(conn, secrets); !errors.Is(err, ErrKeyMissing) {
		t.Errorf("want ErrKeyMissing, got: %v", err)
	}
}

func TestBuildConfigKeyUnparseable(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "garbage")
	if err := os.WriteFile(path, []byte("not a key"), 0600); err != nil {
		t.Fatal(err)
	}

	conn := registry.Connection{ID: 1, Username: "root", AuthType: registry.AuthKey}
	if _, err := BuildConfig(conn, fakeSecrets{keyPath: path}); err == nil {
		t.Error("garbage key material must be rejected")
	}
}

func TestExpandHome(t *testing.T) {
	t.Parallel()

	home, err := os.UserHomeDir()
	if err != nil {
		t.Fatal(err)
	}

	if got := expandHome("~/.ssh/id_rsa"); got != filepath.Join(home, ".ssh", "id_rsa") {
		t.Errorf("tilde not expanded: %q", got)
	}
	if got := expandHome("/abs/path"); got != "/abs/path" {
		t.Errorf("absolute path must pass through: %q", got)
	}
	if got := expandHome("~user/x"); got != "~user/x" {
		t.Errorf("other-user tilde must pass through: %q", got)
	}
}

func TestExitStatus(t *testing.T) {
	t.Parallel()

	if got := ExitStatus(nil); got != 0 {
		t.Errorf("nil error must map to 0, got: %d", got)
	}
	if got := ExitStatus(errors.New("boom")); got != 1 {
		t.Errorf("plain error must map to 1, got: %d", got)
	}
}
