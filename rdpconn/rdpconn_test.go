package rdpconn

import (
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/szwenni/sshConnectionManager/registry"
)

type fakeCreds struct {
	username string
	password string
}

func (f fakeCreds) RDPCredentials(int64) (string, string) { return f.username, f.password }

func TestCmdkeyArgs(t *testing.T) {
	t.Parallel()

	add := cmdkeyAddArgs("10.0.0.5", "admin", "s3cret")
	want := []string{"/generic:10.0.0.5", "/user:admin", "/password:s3cret"}
	if len(add) != len(want) {
		t.Fatalf("want %d args, got: %d", len(want), len(add))
	}
	for i := range want {
		if add[i] != want[i] {
			t.Errorf("arg %d: want %q, got: %q", i, want[i], add[i])
		}
	}

	del := cmdkeyDeleteArgs("10.0.0.5")
	if len(del) != 1 || del[0] != "/delete:10.0.0.5" {
		t.Errorf("unexpected delete args: %v", del)
	}
}

func TestConnectNoCredentials(t *testing.T) {
	t.Parallel()

	l := New(zap.NewNop())
	if !l.Available() {
		t.Skip("mstsc.exe not on PATH")
	}

	conn := registry.Connection{ID: 1, IP: "10.0.0.5", Type: registry.TypeRDP}
	if err := l.Connect(conn, fakeCreds{}); !errors.Is(err, ErrNoCredentials) {
		t.Errorf("want ErrNoCredentials, got: %v", err)
	}
}

func TestConnectUnavailable(t *testing.T) {
	t.Parallel()

	l := New(zap.NewNop())
	if l.Available() {
		t.Skip("mstsc.exe is on PATH")
	}

	conn := registry.Connection{ID: 1, IP: "10.0.0.5", Type: registry.TypeRDP}
	if err := l.Connect(conn, fakeCreds{username: "u", password: "p"}); !errors.Is(err, ErrUnavailable) {
		t.Errorf("want ErrUnavailable, got: %v", err)
	}
}
