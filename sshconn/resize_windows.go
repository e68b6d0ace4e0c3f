//go:build windows

package sshconn

import "golang.org/x/crypto/ssh"

// watchResize is a no-op on windows, which has no SIGWINCH. The remote
// pty keeps the size it was opened with.
func watchResize(_ *ssh.Session) chan<- struct{} {
	return make(chan struct{})
}
