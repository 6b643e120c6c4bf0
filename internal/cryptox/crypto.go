// Package cryptox provides the sealing primitives used to keep cached
// login credentials opaque at rest. Sealing uses XChaCha20-Poly1305 with a
// random nonce prepended to the ciphertext.
//
// This is obfuscation against casual inspection of the local database, not
// protection against an attacker who also obtains the sealing key stored
// alongside it.
package cryptox

import (
	"errors"

	"github.com/condoway/client-go/internal/common"
	"golang.org/x/crypto/chacha20poly1305"
)

// KeySize is the required sealing key length in bytes.
const KeySize = chacha20poly1305.KeySize

var ErrInvalidBox = errors.New("sealed box is malformed or tampered")

// NewKey returns a fresh random sealing key.
func NewKey() []byte {
	return common.GenerateRandByteArray(KeySize)
}

// Seal encrypts plaintext under key and returns nonce||ciphertext.
func Seal(plaintext, key []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	nonce := common.GenerateRandByteArray(aead.NonceSize())
	box := aead.Seal(nonce, nonce, plaintext, nil)
	return box, nil
}

// Open decrypts a box produced by Seal. Returns ErrInvalidBox when the box
// is too short or fails authentication.
func Open(box, key []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	if len(box) < aead.NonceSize() {
		return nil, ErrInvalidBox
	}
	nonce, ciphertext := box[:aead.NonceSize()], box[aead.NonceSize():]
	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrInvalidBox
	}
	return plaintext, nil
}
