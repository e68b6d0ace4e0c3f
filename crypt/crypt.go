// Package crypt turns a master passphrase into a symmetric key and
// encrypts/decrypts the vault document with it.
//
// The key is derived with PBKDF2-HMAC-SHA256 and rendered in the
// url-safe base64 alphabet that Fernet keys use. Derivation is
// deterministic: the same passphrase and salt always produce the same
// key, which is what makes passphrase verification possible.
package crypt

import (
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/fernet/fernet-go"
	"golang.org/x/crypto/pbkdf2"
)

// Errors returned from decryption and key derivation.
var (
	// ErrWrongPassphrase covers both a bad passphrase and corrupted
	// ciphertext, the two are indistinguishable by design.
	ErrWrongPassphrase = errors.New("incorrect passphrase")
	ErrInvalidSalt     = errors.New("salt size is wrong")
)

const (
	// Iterations is fixed. Lowering it would change every derived key
	// and lock users out of existing files.
	Iterations = 480000

	// SaltSize is the number of random bytes persisted in the salt file.
	SaltSize = 16

	keySize = 32
)

// DeriveKey stretches passphrase and salt into a Fernet key.
// It has no side effects and uses no randomness beyond the salt given.
func DeriveKey(passphrase string, salt []byte) (*fernet.Key, error) {
	if len(salt) != SaltSize {
		return nil, ErrInvalidSalt
	}

	raw := pbkdf2.Key([]byte(passphrase), salt, Iterations, keySize, sha256.New)

	key, err := fernet.DecodeKey(base64.URLEncoding.EncodeToString(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to build key from derived bytes: %w", err)
	}

	return key, nil
}

// Encrypt produces an opaque Fernet token of plaintext. The token is
// authenticated; tampering is detected at decryption time.
func Encrypt(key *fernet.Key, plaintext []byte) ([]byte, error) {
	tok, err := fernet.EncryptAndSign(plaintext, key)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt: %w", err)
	}

	return tok, nil
}

// Decrypt verifies and opens a token produced by Encrypt. Any failure,
// wrong key or mangled token, comes back as ErrWrongPassphrase.
func Decrypt(key *fernet.Key, token []byte) ([]byte, error) {
	plaintext := fernet.VerifyAndDecrypt(token, 0, []*fernet.Key{key})
	if plaintext == nil {
		return nil, ErrWrongPassphrase
	}

	return plaintext, nil
}
