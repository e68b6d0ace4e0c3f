package main

import (
	"io"

	"github.com/szwenni/sshConnectionManager/rdpconn"
	"github.com/szwenni/sshConnectionManager/registry"
	"github.com/szwenni/sshConnectionManager/vault"

	"go.uber.org/zap"
)

type uiContext struct {
	// Input
	in LineEditor
	// Output
	out io.Writer

	// Config directory holding the vault files and debug log
	dir string

	vault *vault.Vault
	reg   *registry.Registry
	rdp   *rdpconn.Launcher

	log *zap.Logger
}

// connNames feeds the line editor's completer with every connection
// name; the editors filter by prefix themselves. Lookup errors simply
// produce no completions.
func (u *uiContext) connNames(line string) []string {
	groups, err := u.reg.List()
	if err != nil {
		return nil
	}

	var names []string
	for _, conns := range groups {
		for _, c := range conns {
			names = append(names, c.Name)
		}
	}

	return names
}
