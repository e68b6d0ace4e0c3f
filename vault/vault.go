// Package vault owns the on-disk configuration document holding every
// per-connection secret plus the database profile. The document lives
// in one JSON file that is either stored as plain UTF-8 text or as an
// opaque Fernet token when a master passphrase is set; the bytes on
// disk alone decide which (valid JSON means plaintext).
//
// Every mutation rewrites the whole document. There is no cross-process
// locking, two processes racing on the file is last-write-wins, but an
// internal mutex keeps concurrent callers inside one process from
// interleaving their read-modify-write spans.
package vault

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/fernet/fernet-go"

	"github.com/szwenni/sshConnectionManager/crypt"
)

const (
	configFile = "config.json"
	saltFile   = ".salt"
)

// ErrLocked is returned from mutations attempted while the on-disk
// document is still ciphertext that has not been unlocked.
var ErrLocked = errors.New("vault is locked")

// Vault is the sole owner of the document. All collaborators receive
// the *Vault handle and never a copy of the document.
type Vault struct {
	mu  sync.Mutex
	dir string
	doc document

	// key is non-nil only in the unlocked-encrypted state. It is
	// derived from scratch every process start and never written out.
	key *fernet.Key

	// locked is set while the on-disk document is ciphertext we have
	// not opened yet. It blocks saves that would otherwise clobber the
	// ciphertext with an empty plaintext document.
	locked bool
}

// Open prepares the config directory and salt file, then loads the
// document: a missing file triggers the legacy migration, readable
// JSON loads directly, anything else leaves the vault locked until
// Unlock is called with the master passphrase.
func Open(dir string) (*Vault, error) {
	v := &Vault{dir: dir, doc: defaultDocument()}

	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create config dir: %w", err)
	}
	if err := v.ensureSalt(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(v.configPath())
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}

		// First run: fold any legacy single-purpose files in.
		if _, err := v.migrate(); err != nil {
			return nil, err
		}
		return v, nil
	}

	if json.Valid(data) {
		if err := json.Unmarshal(data, &v.doc); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
		v.doc.ensureMaps()
	} else {
		// Ciphertext: stay locked until Unlock.
		v.locked = true
	}

	return v, nil
}

// IsEncrypted reports the on-disk state: a file that does not parse as
// JSON is assumed to be ciphertext. A missing file is not encrypted.
func (v *Vault) IsEncrypted() bool {
	data, err := os.ReadFile(v.configPath())
	if err != nil {
		return false
	}
	return !json.Valid(data)
}

// Unlock derives a key from the passphrase and the persisted salt and
// tries to open the on-disk ciphertext with it. On success the vault
// holds the key for the rest of the process and future saves encrypt
// with it. On failure nothing changes; wrong passphrase and corrupted
// ciphertext are indistinguishable and both come back as
// crypt.ErrWrongPassphrase.
func (v *Vault) Unlock(passphrase string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	salt, err := v.readSalt()
	if err != nil {
		return err
	}

	key, err := crypt.DeriveKey(passphrase, salt)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(v.configPath())
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}

	plaintext, err := crypt.Decrypt(key, data)
	if err != nil {
		return err
	}

	doc := defaultDocument()
	if err := json.Unmarshal(plaintext, &doc); err != nil {
		return fmt.Errorf("failed to parse decrypted config: %w", err)
	}
	doc.ensureMaps()

	v.doc = doc
	v.key = key
	v.locked = false
	return nil
}

// CheckMasterPassword reports whether the passphrase opens the on-disk
// ciphertext. A successful check unlocks the vault; callers that only
// want the predicate can simply ignore that.
func (v *Vault) CheckMasterPassword(passphrase string) bool {
	return v.Unlock(passphrase) == nil
}

// SetMasterPassword changes how the document is stored from here on.
// An empty passphrase discards the key and rewrites the file as
// plaintext; anything else derives a fresh key and immediately
// re-encrypts the document under it. This is the only way to add,
// change or remove encryption.
func (v *Vault) SetMasterPassword(passphrase string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.locked {
		return ErrLocked
	}

	if passphrase == "" {
		v.key = nil
		return v.save()
	}

	salt, err := v.readSalt()
	if err != nil {
		return err
	}
	key, err := crypt.DeriveKey(passphrase, salt)
	if err != nil {
		return err
	}

	v.key = key
	return v.save()
}

// Password returns the stored SSH password for a connection, or ""
// when none is stored.
func (v *Vault) Password(id int64) string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.doc.Passwords[connKey(id)]
}

// SetPassword stores an SSH password. An empty password erases the
// entry instead.
func (v *Vault) SetPassword(id int64, password string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if password == "" {
		delete(v.doc.Passwords, connKey(id))
	} else {
		v.doc.Passwords[connKey(id)] = password
	}
	return v.save()
}

// KeyPath returns the stored private key path for a connection. When
// nothing is stored and withDefault is set, the conventional
// ~/.ssh/id_rsa (expanded) is returned; otherwise "".
func (v *Vault) KeyPath(id int64, withDefault bool) string {
	v.mu.Lock()
	defer v.mu.Unlock()

	if path, ok := v.doc.KeyPaths[connKey(id)]; ok && path != "" {
		return path
	}
	if !withDefault {
		return ""
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".ssh", "id_rsa")
}

// SetKeyPath stores the private key path for a connection. An empty
// path erases the entry, falling back to the default key.
func (v *Vault) SetKeyPath(id int64, path string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if path == "" {
		delete(v.doc.KeyPaths, connKey(id))
	} else {
		v.doc.KeyPaths[connKey(id)] = path
	}
	return v.save()
}

// KeyPassword returns the stored key passphrase for a connection, or
// "" when none is stored.
func (v *Vault) KeyPassword(id int64) string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.doc.KeyPasswords[connKey(id)]
}

// SetKeyPassword stores the passphrase protecting a connection's key.
// An empty passphrase erases the entry.
func (v *Vault) SetKeyPassword(id int64, password string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if password == "" {
		delete(v.doc.KeyPasswords, connKey(id))
	} else {
		v.doc.KeyPasswords[connKey(id)] = password
	}
	return v.save()
}

// RDPCredentials returns the stored username/password pair for an RDP
// connection; both empty when nothing is stored.
func (v *Vault) RDPCredentials(id int64) (username, password string) {
	v.mu.Lock()
	defer v.mu.Unlock()

	cred := v.doc.RDPCredentials[connKey(id)]
	return cred.Username, cred.Password
}

// SetRDPCredentials stores an RDP username/password pair. An entirely
// empty pair erases the entry.
func (v *Vault) SetRDPCredentials(id int64, username, password string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if username == "" && password == "" {
		delete(v.doc.RDPCredentials, connKey(id))
	} else {
		v.doc.RDPCredentials[connKey(id)] = RDPCredential{Username: username, Password: password}
	}
	return v.save()
}

// TOTPSecret returns the stored two-factor secret for a connection, or
// "" when none is stored.
func (v *Vault) TOTPSecret(id int64) string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.doc.TOTPSecrets[connKey(id)]
}

// SetTOTPSecret stores the two-factor secret for a connection. An
// empty secret erases the entry.
func (v *Vault) SetTOTPSecret(id int64, secret string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if secret == "" {
		delete(v.doc.TOTPSecrets, connKey(id))
	} else {
		v.doc.TOTPSecrets[connKey(id)] = secret
	}
	return v.save()
}

// RemoveConnection erases every secret stored under a connection id.
// Missing entries are not errors; removing twice is the same as once.
func (v *Vault) RemoveConnection(id int64) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	k := connKey(id)
	delete(v.doc.Passwords, k)
	delete(v.doc.KeyPaths, k)
	delete(v.doc.KeyPasswords, k)
	delete(v.doc.RDPCredentials, k)
	delete(v.doc.TOTPSecrets, k)
	return v.save()
}

// DBProfile returns a copy of the stored database profile.
func (v *Vault) DBProfile() DBProfile {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.doc.DB
}

// SetDBProfile replaces the stored database profile.
func (v *Vault) SetDBProfile(p DBProfile) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.doc.DB = p
	return v.save()
}

// save serializes the whole document and overwrites the file, as
// ciphertext when a key is held. Writes go to a temp file first and
// rename over the original so a crash cannot leave a truncated
// document. Callers must hold the mutex.
func (v *Vault) save() error {
	if v.locked {
		return ErrLocked
	}

	data, err := json.Marshal(v.doc)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	if v.key != nil {
		if data, err = crypt.Encrypt(v.key, data); err != nil {
			return err
		}
	}

	tmp, err := os.CreateTemp(v.dir, ".config-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp config: %w", err)
	}

	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to set config mode: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write config: %w", err)
	}

	if err := os.Rename(tmp.Name(), v.configPath()); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace config: %w", err)
	}

	return nil
}

// ensureSalt creates the salt file on first run. An existing salt is
// never regenerated: every encrypted document depends on it.
func (v *Vault) ensureSalt() error {
	path := v.saltPath()
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to stat salt file: %w", err)
	}

	salt := make([]byte, crypt.SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return fmt.Errorf("failed to get randomness for salt: %w", err)
	}

	if err := os.WriteFile(path, salt, 0600); err != nil {
		return fmt.Errorf("failed to write salt file: %w", err)
	}
	return nil
}

func (v *Vault) readSalt() ([]byte, error) {
	salt, err := os.ReadFile(v.saltPath())
	if err != nil {
		return nil, fmt.Errorf("failed to read salt file: %w", err)
	}
	return salt, nil
}

func (v *Vault) configPath() string { return filepath.Join(v.dir, configFile) }
func (v *Vault) saltPath() string   { return filepath.Join(v.dir, saltFile) }

func connKey(id int64) string { return strconv.FormatInt(id, 10) }
