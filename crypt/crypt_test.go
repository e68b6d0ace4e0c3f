package crypt

import (
	"bytes"
	"errors"
	"testing"
)

var testSalt = []byte("0123456789abcdef")

func TestDeriveKeyDeterministic(t *testing.T) {
	t.Parallel()

	if testing.Short() {
		t.Skip("skipping long test")
	}

	k1, err := DeriveKey("hunter42", testSalt)
	if err != nil {
		t.Fatal(err)
	}
	k2, err := DeriveKey("hunter42", testSalt)
	if err != nil {
		t.Fatal(err)
	}

	if !bytes.Equal(k1[:], k2[:]) {
		t.Error("same passphrase and salt must derive the same key")
	}

	k3, err := DeriveKey("hunter43", testSalt)
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Equal(k1[:], k3[:]) {
		t.Error("different passphrases must not derive the same key")
	}
}

func TestDeriveKeyBadSalt(t *testing.T) {
	t.Parallel()

	if _, err := DeriveKey("x", []byte("short")); err != ErrInvalidSalt {
		t.Errorf("want ErrInvalidSalt, got: %v", err)
	}
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	if testing.Short() {
		t.Skip("skipping long test")
	}

	plaintext := []byte(`{"passwords":{"5":"hunter2"}}`)

	key, err := DeriveKey("abc123", testSalt)
	if err != nil {
		t.Fatal(err)
	}

	ciphertext, err := Encrypt(key, plaintext)
	if err != nil {
		t.Fatal(err)
	}

	if bytes.Contains(ciphertext, plaintext) {
		t.Error("the plain text is visible")
	}

	got, err := Decrypt(key, ciphertext)
	if err != nil {
		t.Fatal(err)
	}

	if !bytes.Equal(plaintext, got) {
		t.Errorf("want: %s, got: %s", plaintext, got)
	}
}

func TestWrongPassphrase(t *testing.T) {
	t.Parallel()

	if testing.Short() {
		t.Skip("skipping long test")
	}

	key, err := DeriveKey("right", testSalt)
	if err != nil {
		t.Fatal(err)
	}

	ciphertext, err := Encrypt(key, []byte("secret"))
	if err != nil {
		t.Fatal(err)
	}

	wrong, err := DeriveKey("wrong", testSalt)
	if err != nil {
		t.Fatal(err)
	}

	if _, err = Decrypt(wrong, ciphertext); !errors.Is(err, ErrWrongPassphrase) {
		t.Errorf("want ErrWrongPassphrase, got: %v", err)
	}

	// Corruption presents identically to a wrong passphrase.
	ciphertext[len(ciphertext)/2] ^= 0xff
	if _, err = Decrypt(key, ciphertext); !errors.Is(err, ErrWrongPassphrase) {
		t.Errorf("want ErrWrongPassphrase for corrupt token, got: %v", err)
	}
}
