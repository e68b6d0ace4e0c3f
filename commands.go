package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/szwenni/sshConnectionManager/rdpconn"
	"github.com/szwenni/sshConnectionManager/registry"
	"github.com/szwenni/sshConnectionManager/sshconn"
	"github.com/szwenni/sshConnectionManager/vault"

	"github.com/atotto/clipboard"
	"github.com/pquerna/otp/totp"
	"go.uber.org/zap"
	"golang.org/x/crypto/ssh"
)

func (u *uiContext) list(query string) error {
	groups, err := u.reg.List()
	if err != nil {
		errColor.Println(err)
		return nil
	}

	tree := registry.BuildTree(groups)
	if len(query) != 0 {
		tree = tree.Filter(query)
	}

	u.showTree(tree)
	return nil
}

func (u *uiContext) addNew() error {
	conn := registry.Connection{}

	var err error
	if conn.Name, err = u.getString("name"); err != nil {
		return err
	}
	if conn.Folder, err = u.getStringDefault("folder", registry.RootFolder); err != nil {
		return err
	}
	if conn.IP, err = u.getString("host/ip"); err != nil {
		return err
	}

	kind, err := u.getMenuChoice("connection type> ", []string{"ssh", "rdp"})
	if err != nil {
		return err
	}

	if kind == 1 {
		conn.Type = registry.TypeRDP
		if err = u.reg.Save(&conn); err != nil {
			errColor.Println(err)
			return nil
		}
		if err = u.promptRDPCredentials(conn.ID); err != nil {
			return err
		}
		infoColor.Printf("added %s (id %d)\n", conn.Name, conn.ID)
		return nil
	}

	conn.Type = registry.TypeSSH
	if conn.Username, err = u.getString("user"); err != nil {
		return err
	}
	port, err := u.getInt("port", 1, 65535)
	if err != nil {
		return err
	}
	conn.Port = &port

	auth, err := u.getMenuChoice("auth type> ", []string{"key", "password"})
	if err != nil {
		return err
	}
	if auth == 0 {
		conn.AuthType = registry.AuthKey
	} else {
		conn.AuthType = registry.AuthPassword
	}

	if err = u.reg.Save(&conn); err != nil {
		errColor.Println(err)
		return nil
	}

	if conn.AuthType == registry.AuthKey {
		err = u.promptKeySecrets(conn.ID)
	} else {
		err = u.promptLoginPassword(conn.ID)
	}
	if err != nil {
		return err
	}

	infoColor.Printf("added %s (id %d)\n", conn.Name, conn.ID)
	return nil
}

func (u *uiContext) promptLoginPassword(id int64) error {
	pass, err := u.promptPassword(inputPromptColor.Sprint("password (empty to skip): "))
	if err != nil {
		return err
	}
	if len(pass) == 0 {
		return nil
	}

	if err = u.vault.SetPassword(id, pass); err != nil {
		errColor.Println(err)
	}
	return nil
}

func (u *uiContext) promptKeySecrets(id int64) error {
	path, err := u.getStringDefault("key path", "~/.ssh/id_rsa")
	if err != nil {
		return err
	}
	if path == "~/.ssh/id_rsa" {
		path = ""
	}
	if err = u.vault.SetKeyPath(id, path); err != nil {
		errColor.Println(err)
		return nil
	}

	pass, err := u.promptPassword(inputPromptColor.Sprint("key passphrase (empty for none): "))
	if err != nil {
		return err
	}
	if len(pass) == 0 {
		return nil
	}

	if err = u.vault.SetKeyPassword(id, pass); err != nil {
		errColor.Println(err)
	}
	return nil
}

func (u *uiContext) promptRDPCredentials(id int64) error {
	user, err := u.getString("rdp user")
	if err != nil {
		return err
	}
	pass, err := u.promptPassword(inputPromptColor.Sprint("rdp password: "))
	if err != nil {
		return err
	}

	if err = u.vault.SetRDPCredentials(id, user, pass); err != nil {
		errColor.Println(err)
	}
	return nil
}

func (u *uiContext) edit(arg string) error {
	conn, err := u.findOne(arg)
	if err != nil || conn == nil {
		return err
	}

	items := []string{
		"name", "folder", "host/ip", "user", "port",
		"password", "key path", "key passphrase", "rdp credentials",
		"totp secret", "done",
	}

	for {
		choice, err := u.getMenuChoice("edit> ", items)
		if err != nil {
			return err
		}

		dirty := false
		switch items[choice] {
		case "name":
			if conn.Name, err = u.getString("name"); err != nil {
				return err
			}
			dirty = true
		case "folder":
			if conn.Folder, err = u.getStringDefault("folder", registry.RootFolder); err != nil {
				return err
			}
			dirty = true
		case "host/ip":
			if conn.IP, err = u.getString("host/ip"); err != nil {
				return err
			}
			dirty = true
		case "user":
			if conn.Username, err = u.getString("user"); err != nil {
				return err
			}
			dirty = true
		case "port":
			port, err := u.getInt("port", 1, 65535)
			if err != nil {
				return err
			}
			conn.Port = &port
			dirty = true
		case "password":
			if err = u.promptLoginPassword(conn.ID); err != nil {
				return err
			}
			if conn.AuthType != registry.AuthPassword {
				conn.AuthType = registry.AuthPassword
				dirty = true
			}
		case "key path":
			if err = u.promptKeySecrets(conn.ID); err != nil {
				return err
			}
			if conn.AuthType != registry.AuthKey {
				conn.AuthType = registry.AuthKey
				dirty = true
			}
		case "key passphrase":
			pass, err := u.promptPassword(inputPromptColor.Sprint("key passphrase (empty to clear): "))
			if err != nil {
				return err
			}
			if err = u.vault.SetKeyPassword(conn.ID, pass); err != nil {
				errColor.Println(err)
			}
		case "rdp credentials":
			if err = u.promptRDPCredentials(conn.ID); err != nil {
				return err
			}
		case "totp secret":
			secret, err := u.promptPassword(inputPromptColor.Sprint("totp secret (empty to clear): "))
			if err != nil {
				return err
			}
			if err = u.vault.SetTOTPSecret(conn.ID, secret); err != nil {
				errColor.Println(err)
			}
		case "done":
			return nil
		}

		if dirty {
			if err = u.reg.Save(conn); err != nil {
				errColor.Println(err)
				return nil
			}
		}
	}
}

func (u *uiContext) remove(arg string) error {
	conn, err := u.findOne(arg)
	if err != nil || conn == nil {
		return err
	}

	answer, err := u.prompt(inputPromptColor.Sprintf("delete %q? (y/N): ", conn.Name))
	if err != nil {
		return err
	}
	if answer != "y" && answer != "Y" {
		return nil
	}

	if err = u.reg.Delete(conn.ID); err != nil {
		errColor.Println(err)
		return nil
	}
	if err = u.vault.RemoveConnection(conn.ID); err != nil {
		errColor.Println(err)
		return nil
	}

	infoColor.Printf("deleted %s\n", conn.Name)
	return nil
}

func (u *uiContext) connect(arg string) error {
	conn, err := u.findOne(arg)
	if err != nil || conn == nil {
		return err
	}

	if conn.Type == registry.TypeRDP {
		return u.connectRDP(conn)
	}
	return u.connectSSH(conn)
}

func (u *uiContext) connectRDP(conn *registry.Connection) error {
	err := u.rdp.Connect(*conn, u.vault)
	switch {
	case err == nil:
		infoColor.Println("rdp session launched")
	case errors.Is(err, rdpconn.ErrUnavailable):
		errColor.Println("rdp connections need the windows remote desktop client")
	case errors.Is(err, rdpconn.ErrNoCredentials):
		errColor.Println("no rdp credentials stored, use \"edit\" to add them")
	default:
		errColor.Println(err)
	}
	return nil
}

func (u *uiContext) connectSSH(conn *registry.Connection) error {
	var secrets sshconn.Secrets = u.vault

	config, err := sshconn.BuildConfig(*conn, secrets)

	var passErr *ssh.PassphraseMissingError
	if errors.As(err, &passErr) {
		pass, perr := u.promptPassword(inputPromptColor.Sprint("key passphrase: "))
		if perr != nil {
			return perr
		}

		secrets = keyPassOverride{Secrets: secrets, id: conn.ID, pass: pass}
		if config, err = sshconn.BuildConfig(*conn, secrets); err == nil {
			answer, perr := u.prompt(inputPromptColor.Sprint("store the passphrase? (y/N): "))
			if perr != nil {
				return perr
			}
			if answer == "y" || answer == "Y" {
				if serr := u.vault.SetKeyPassword(conn.ID, pass); serr != nil {
					errColor.Println(serr)
				}
			}
		}
	}

	if err != nil {
		if errors.Is(err, sshconn.ErrNoPassword) {
			errColor.Println("no password stored, use \"edit\" to add one")
			return nil
		}
		errColor.Println(err)
		return nil
	}

	if err = sshconn.Launch(*conn, config, u.log); err != nil {
		var exitErr *ssh.ExitError
		if errors.As(err, &exitErr) {
			infoColor.Printf("session ended with status %d\n", exitErr.ExitStatus())
			return nil
		}
		u.log.Error("ssh session failed", zap.Int64("id", conn.ID), zap.Error(err))
		errColor.Println(err)
	}
	return nil
}

// keyPassOverride substitutes a just-prompted key passphrase for one
// connection without persisting it.
type keyPassOverride struct {
	sshconn.Secrets
	id   int64
	pass string
}

func (k keyPassOverride) KeyPassword(id int64) string {
	if id == k.id {
		return k.pass
	}
	return k.Secrets.KeyPassword(id)
}

func (u *uiContext) copyPassword(arg string) error {
	conn, err := u.findOne(arg)
	if err != nil || conn == nil {
		return err
	}

	var pass string
	if conn.Type == registry.TypeRDP {
		_, pass = u.vault.RDPCredentials(conn.ID)
	} else {
		pass = u.vault.Password(conn.ID)
	}

	if len(pass) == 0 {
		errColor.Printf("no password stored for %s\n", conn.Name)
		return nil
	}

	copyToClipboard(pass)
	return nil
}

func (u *uiContext) totpCode(arg string) error {
	conn, err := u.findOne(arg)
	if err != nil || conn == nil {
		return err
	}

	secret := u.vault.TOTPSecret(conn.ID)
	if len(secret) == 0 {
		errColor.Printf("no totp secret stored for %s\n", conn.Name)
		return nil
	}

	code, err := totp.GenerateCode(secret, time.Now())
	if err != nil {
		errColor.Println("failed to generate code:", err)
		return nil
	}

	fmt.Fprintln(u.out, keyColor.Sprint(code))
	copyToClipboard(code)
	return nil
}

func (u *uiContext) showGenerated(length int) error {
	pass, err := genPassword(length, true, true, true, true)
	if err == errPasswordImpossible {
		errColor.Println("could not generate a password of length", length)
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(u.out, keyColor.Sprint(pass))
	return nil
}

func (u *uiContext) passwd() error {
	initial, err := u.promptPassword(inputPromptColor.Sprint("new master password (empty to remove): "))
	if err != nil {
		return err
	}

	if len(initial) == 0 {
		answer, err := u.prompt(inputPromptColor.Sprint("remove the master password? (y/N): "))
		if err != nil {
			return err
		}
		if answer != "y" && answer != "Y" {
			return nil
		}

		if err = u.vault.SetMasterPassword(""); err != nil {
			errColor.Println(err)
			return nil
		}
		infoColor.Println("master password removed, config stored in plaintext")
		return nil
	}

	verify, err := u.promptPassword(inputPromptColor.Sprint("verify master password: "))
	if err != nil {
		return err
	}
	if initial != verify {
		errColor.Println("passwords did not match")
		return nil
	}

	if err = u.vault.SetMasterPassword(initial); err != nil {
		errColor.Println(err)
		return nil
	}

	infoColor.Println("master password updated, config re-encrypted")
	return nil
}

func (u *uiContext) configureDB() error {
	profile := vault.DBProfile{}

	kind, err := u.getMenuChoice("database type> ", []string{"postgres", "mssql"})
	if err != nil {
		return err
	}
	if kind == 0 {
		profile.Type = "postgres"
		profile.Port = "5432"
	} else {
		profile.Type = "mssql"
		profile.Port = "1433"
	}

	if profile.Server, err = u.getString("server"); err != nil {
		return err
	}
	if profile.Port, err = u.getStringDefault("port", profile.Port); err != nil {
		return err
	}
	if profile.Database, err = u.getString("database"); err != nil {
		return err
	}
	if profile.Username, err = u.getString("db user"); err != nil {
		return err
	}
	if profile.Password, err = u.promptPassword(inputPromptColor.Sprint("db password: ")); err != nil {
		return err
	}

	if err = u.vault.SetDBProfile(profile); err != nil {
		errColor.Println(err)
		return nil
	}

	reg, err := registry.Open(profile, u.log)
	if err != nil {
		errColor.Println("failed to connect:", err)
		return nil
	}

	u.reg = reg
	u.in.SetConnCompleter(u.connNames)
	infoColor.Println("database connected")
	return nil
}

func copyToClipboard(txt string) {
	err := clipboard.WriteAll(txt)
	if err != nil {
		errColor.Println("Failed to copy text to clipboard")
		return
	}

	infoColor.Println("Copied value to clipboard")
}
