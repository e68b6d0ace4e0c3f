package main

import (
	"fmt"
	"os"

	"github.com/szwenni/sshConnectionManager/logging"
	"github.com/szwenni/sshConnectionManager/rdpconn"
	"github.com/szwenni/sshConnectionManager/registry"
	"github.com/szwenni/sshConnectionManager/vault"

	"github.com/gookit/color"
	"go.uber.org/zap"
)

var version = "1.0.0"

func main() {
	parseCli()

	if flagNoColor {
		color.Disable()
	}

	if versionCmd.Used {
		fmt.Println("sshConnectionManager version", version)
		return
	}

	if genCmd.Used {
		pass, err := genPassword(flagGenLength, true, true, true, true)
		if err != nil {
			fmt.Fprintln(os.Stderr, "failed to generate password:", err)
			os.Exit(1)
		}
		fmt.Println(pass)
		return
	}

	log, closeLog, err := logging.Open(flagDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to open debug log:", err)
		os.Exit(1)
	}
	defer closeLog()

	v, err := vault.Open(flagDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to open config:", err)
		os.Exit(1)
	}

	if connectCmd.Used {
		code := directConnect(v, log)
		closeLog()
		os.Exit(code)
	}

	u := &uiContext{
		out:   os.Stdout,
		dir:   flagDir,
		vault: v,
		log:   log,
	}

	if err = setupLineEditor(u); err != nil {
		fmt.Fprintln(os.Stderr, "failed to set up the terminal:", err)
		os.Exit(1)
	}
	defer u.in.Close()

	if err = u.run(); err != nil {
		switch err {
		case ErrInterrupt, ErrEnd:
			fmt.Println("exiting")
		default:
			log.Error("fatal", zap.Error(err))
			errColor.Printf("error occurred: %v\n", err)
			os.Exit(1)
		}
	}
}

// run unlocks the vault, connects the registry and drops into the
// interactive loop.
func (u *uiContext) run() error {
	if err := u.unlockVault(); err != nil {
		return err
	}

	if err := u.ensureDBProfile(); err != nil {
		return err
	}

	reg, err := registry.Open(u.vault.DBProfile(), u.log)
	if err != nil {
		errColor.Println("failed to reach the connection database:", err)
		infoColor.Println("use \"db\" to correct the profile")
	} else {
		u.reg = reg
	}

	u.rdp = rdpconn.New(u.log)
	if u.reg != nil {
		u.in.SetConnCompleter(u.connNames)
	}

	r := repl{ctx: u}
	return r.run()
}

// unlockVault keeps asking for the master password until it opens the
// config, mirroring startup of the classic ui.
func (u *uiContext) unlockVault() error {
	if !u.vault.IsEncrypted() {
		return nil
	}

	for {
		pass, err := u.promptPassword(inputPromptColor.Sprint("master password: "))
		if err != nil {
			return err
		}

		if u.vault.CheckMasterPassword(pass) {
			u.log.Debug("vault unlocked")
			return nil
		}

		errColor.Println("wrong master password")
	}
}

// ensureDBProfile runs first-time database setup when the stored
// profile has no server yet.
func (u *uiContext) ensureDBProfile() error {
	if len(u.vault.DBProfile().Server) != 0 {
		return nil
	}

	infoColor.Println("No database configured yet")
	return u.configureDB()
}
