// Package rdpconn launches remote desktop sessions through mstsc.exe.
// Credentials are injected into the Windows credential manager just
// long enough for mstsc to pick them up, then scrubbed by a background
// timer. Works natively on Windows and under WSL where the Windows
// binaries are on PATH.
package rdpconn

import (
	"errors"
	"fmt"
	"os/exec"
	"time"

	"go.uber.org/zap"

	"github.com/szwenni/sshConnectionManager/registry"
)

// Credentials is the read side of the credential vault the launcher
// needs.
type Credentials interface {
	RDPCredentials(id int64) (username, password string)
}

var (
	ErrUnavailable   = errors.New("rdp not available (mstsc.exe not found)")
	ErrNoCredentials = errors.New("no rdp credentials stored")
)

// cleanupDelay is how long injected credentials stay in the credential
// manager. mstsc reads them at startup; the session itself does not
// need them afterwards.
const cleanupDelay = 30 * time.Second

// Launcher shells out to the mstsc/cmdkey pair.
type Launcher struct {
	log *zap.Logger
}

// New returns a launcher. Use Available to find out whether connecting
// can work at all.
func New(log *zap.Logger) *Launcher {
	return &Launcher{log: log}
}

// Available reports whether mstsc.exe can be found on PATH.
func (l *Launcher) Available() bool {
	_, err := exec.LookPath("mstsc.exe")
	return err == nil
}

// Connect injects the stored credentials for the target host, starts
// the remote desktop client and schedules credential removal. It
// returns as soon as mstsc has been started; the fire-and-forget
// cleanup timer keeps running so control goes straight back to the
// menu.
func (l *Launcher) Connect(conn registry.Connection, creds Credentials) error {
	if !l.Available() {
		return ErrUnavailable
	}

	username, password := creds.RDPCredentials(conn.ID)
	if username == "" || password == "" {
		return ErrNoCredentials
	}

	if err := l.addCredentials(conn.IP, username, password); err != nil {
		return fmt.Errorf("failed to add credentials: %w", err)
	}

	// Not cancellable on purpose: even if mstsc fails to start the
	// injected credentials must not outlive the delay.
	time.AfterFunc(cleanupDelay, func() {
		l.removeCredentials(conn.IP)
	})

	if err := exec.Command("mstsc.exe", "/v:"+conn.IP).Start(); err != nil {
		l.removeCredentials(conn.IP)
		return fmt.Errorf("failed to start rdp session: %w", err)
	}

	l.log.Debug("rdp session started", zap.String("target", conn.IP))
	return nil
}

func (l *Launcher) addCredentials(target, username, password string) error {
	return exec.Command("cmdkey.exe", cmdkeyAddArgs(target, username, password)...).Run()
}

func (l *Launcher) removeCredentials(target string) {
	if err := exec.Command("cmdkey.exe", cmdkeyDeleteArgs(target)...).Run(); err != nil {
		l.log.Debug("failed to remove rdp credentials", zap.String("target", target), zap.Error(err))
	}
}

func cmdkeyAddArgs(target, username, password string) []string {
	return []string{"/generic:" + target, "/user:" + username, "/password:" + password}
}

func cmdkeyDeleteArgs(target string) []string {
	return []string{"/delete:" + target}
}
