//go:build !windows

package sshconn

import (
	"os"
	"os/signal"

	"golang.org/x/crypto/ssh"
	"golang.org/x/sys/unix"
)

// watchResize forwards local terminal size changes to the remote pty
// until the returned channel is closed.
func watchResize(session *ssh.Session) chan<- struct{} {
	stop := make(chan struct{})
	winch := make(chan os.Signal, 1)
	signal.Notify(winch, unix.SIGWINCH)

	go func() {
		defer signal.Stop(winch)
		for {
			select {
			case <-winch:
				width, height := terminalSize()
				// Best effort, the session may be closing.
				_ = session.WindowChange(height, width)
			case <-stop:
				return
			}
		}
	}()

	return stop
}
