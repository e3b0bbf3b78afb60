// Package cryptox implements the client-side message encryption. The
// server only ever sees the base64 output of Cipher.Encrypt.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/argon2"
)

// DefaultPassphrase is compiled into every client so that all members can
// read each other's messages.
const DefaultPassphrase = "defcomm_prototype_key"

// DecryptionErrorText is shown in place of a message that fails to open.
const DecryptionErrorText = "Decryption Error"

var ErrDecrypt = errors.New("decryption failed")

// keySalt is fixed: every client must derive the same key from the same
// passphrase.
var keySalt = []byte("defcomm/message-key/v1")

func DeriveKey(passphrase, salt []byte) []byte {
	return argon2.IDKey(passphrase, salt, 1, 64*1024, 4, 32)
}

// Cipher seals text with AES-256-GCM. The encoded form is
// base64(nonce || ciphertext || tag).
type Cipher struct {
	aead cipher.AEAD
}

func NewCipher(passphrase string) (*Cipher, error) {
	if passphrase == "" {
		return nil, errors.New("passphrase is empty")
	}
	return NewCipherWithKey(DeriveKey([]byte(passphrase), keySalt))
}

func NewCipherWithKey(key []byte) (*Cipher, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &Cipher{aead: aead}, nil
}

func (c *Cipher) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("nonce: %w", err)
	}
	sealed := c.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt returns ErrDecrypt for anything that is not a valid sealed
// message under this key.
func (c *Cipher) Decrypt(encoded string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", ErrDecrypt
	}
	n := c.aead.NonceSize()
	if len(raw) < n+c.aead.Overhead() {
		return "", ErrDecrypt
	}
	plaintext, err := c.aead.Open(nil, raw[:n], raw[n:], nil)
	if err != nil {
		return "", ErrDecrypt
	}
	return string(plaintext), nil
}

// Display decrypts for rendering, substituting DecryptionErrorText on
// failure.
func (c *Cipher) Display(encoded string) string {
	text, err := c.Decrypt(encoded)
	if err != nil {
		return DecryptionErrorText
	}
	return text
}
