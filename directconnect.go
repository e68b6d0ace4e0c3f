package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/szwenni/sshConnectionManager/registry"
	"github.com/szwenni/sshConnectionManager/sshconn"
	"github.com/szwenni/sshConnectionManager/vault"

	"go.uber.org/zap"
	"golang.org/x/crypto/ssh"
)

// directConnect is the scripted path: no prompts, errors to stderr,
// the exit code mirrors the remote shell when a session ran at all.
func directConnect(v *vault.Vault, log *zap.Logger) int {
	if v.IsEncrypted() {
		if len(flagMasterKey) == 0 {
			fmt.Fprintln(os.Stderr, "config is encrypted, pass the master password with -k")
			return 1
		}
		if !v.CheckMasterPassword(flagMasterKey) {
			fmt.Fprintln(os.Stderr, "wrong master password")
			return 1
		}
	}

	reg, err := registry.Open(v.DBProfile(), log)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to reach the connection database:", err)
		return 1
	}

	conn, err := reg.FindByHost(flagConnectHost)
	if err == registry.ErrNotFound {
		fmt.Fprintf(os.Stderr, "no connection named %q\n", flagConnectHost)
		return 1
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if conn.Type == registry.TypeRDP {
		fmt.Fprintf(os.Stderr, "%q is an rdp connection, use the interactive ui\n", conn.Name)
		return 1
	}

	config, err := sshconn.BuildConfig(*conn, v)
	if err != nil {
		var passErr *ssh.PassphraseMissingError
		if errors.As(err, &passErr) {
			fmt.Fprintln(os.Stderr, "the ssh key needs a passphrase that is not stored")
			return 1
		}
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	err = sshconn.Launch(*conn, config, log)
	if err != nil {
		var exitErr *ssh.ExitError
		if !errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, err)
		}
	}

	return sshconn.ExitStatus(err)
}
