// Package sshconn opens interactive SSH sessions for registry
// connections, pulling whatever secrets it needs from the vault
// through a small interface. The local terminal is put in raw mode and
// handed to the remote pty for the duration of the session.
package sshconn

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/ssh"
	"golang.org/x/term"

	"github.com/szwenni/sshConnectionManager/registry"
)

// Secrets is the read side of the credential vault the launcher needs.
type Secrets interface {
	Password(id int64) string
	KeyPath(id int64, withDefault bool) string
	KeyPassword(id int64) string
}

// Errors the UI branches on to decide what to prompt for.
var (
	ErrNoPassword = errors.New("no password stored for this connection")
	ErrKeyMissing = errors.New("ssh key file not found")
)

const dialTimeout = 30 * time.Second

// BuildConfig assembles the client configuration from the connection
// record and the stored secrets. Key auth with an encrypted key and no
// stored passphrase surfaces *ssh.PassphraseMissingError so the caller
// can prompt and retry; password auth with nothing stored surfaces
// ErrNoPassword.
//
// Host keys are accepted and not pinned, matching the trust model of
// the rest of the tool.
func BuildConfig(conn registry.Connection, secrets Secrets) (*ssh.ClientConfig, error) {
	config := &ssh.ClientConfig{
		User:            conn.Username,
		Timeout:         dialTimeout,
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
	}

	switch conn.AuthType {
	case registry.AuthKey:
		signer, err := loadSigner(conn, secrets)
		if err != nil {
			return nil, err
		}
		config.Auth = []ssh.AuthMethod{ssh.PublicKeys(signer)}

	case registry.AuthPassword:
		password := secrets.Password(conn.ID)
		if password == "" {
			return nil, ErrNoPassword
		}
		config.Auth = []ssh.AuthMethod{ssh.Password(password)}

	default:
		return nil, fmt.Errorf("invalid auth type: %q", conn.AuthType)
	}

	return config, nil
}

func loadSigner(conn registry.Connection, secrets Secrets) (ssh.Signer, error) {
	path := expandHome(secrets.KeyPath(conn.ID, true))

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrKeyMissing, path)
		}
		return nil, fmt.Errorf("failed to read ssh key: %w", err)
	}

	passphrase := secrets.KeyPassword(conn.ID)
	if passphrase == "" {
		signer, err := ssh.ParsePrivateKey(data)
		if err != nil {
			// A *ssh.PassphraseMissingError passes through for the
			// caller to prompt on.
			return nil, fmt.Errorf("failed to load ssh key: %w", err)
		}
		return signer, nil
	}

	signer, err := ssh.ParsePrivateKeyWithPassphrase(data, []byte(passphrase))
	if err != nil {
		return nil, fmt.Errorf("failed to load ssh key: %w", err)
	}
	return signer, nil
}

// Launch dials the connection and runs an interactive shell on the
// local terminal until the remote side exits. The returned error is
// *ssh.ExitError when the remote shell exited non-zero.
func Launch(conn registry.Connection, config *ssh.ClientConfig, log *zap.Logger) error {
	address := net.JoinHostPort(conn.IP, strconv.Itoa(conn.SSHPort()))
	log.Debug("dialing", zap.String("address", address), zap.String("user", conn.Username))

	client, err := ssh.Dial("tcp", address, config)
	if err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}
	defer client.Close()

	session, err := client.NewSession()
	if err != nil {
		return fmt.Errorf("failed to open session: %w", err)
	}
	defer session.Close()

	width, height := terminalSize()

	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		oldState, err := term.MakeRaw(fd)
		if err != nil {
			return fmt.Errorf("failed to set terminal raw: %w", err)
		}
		defer term.Restore(fd, oldState)
	}

	modes := ssh.TerminalModes{
		ssh.ECHO:          1,
		ssh.TTY_OP_ISPEED: 14400,
		ssh.TTY_OP_OSPEED: 14400,
	}
	if err := session.RequestPty("xterm", height, width, modes); err != nil {
		return fmt.Errorf("failed to open interactive shell: %w", err)
	}

	session.Stdin = os.Stdin
	session.Stdout = os.Stdout
	session.Stderr = os.Stderr

	if err := session.Shell(); err != nil {
		return fmt.Errorf("failed to start shell: %w", err)
	}

	stop := watchResize(session)
	defer close(stop)

	log.Debug("session started", zap.String("address", address))
	if err := session.Wait(); err != nil {
		var exitErr *ssh.ExitError
		if errors.As(err, &exitErr) {
			return err
		}
		return fmt.Errorf("session ended abnormally: %w", err)
	}

	return nil
}

// ExitStatus maps a Launch error to a process exit code for the
// non-interactive path: the remote status when there is one, 1 for any
// other failure, 0 for nil.
func ExitStatus(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *ssh.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitStatus()
	}
	return 1
}

func terminalSize() (width, height int) {
	width, height, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 || height <= 0 {
		return 80, 24
	}
	return width, height
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
