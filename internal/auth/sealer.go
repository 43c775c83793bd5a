package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/nacl/secretbox"
)

const nonceSize = 24

var ErrUnsealable = errors.New("sealed value cannot be opened")

// Sealer encrypts tokens before they reach persistent storage
type Sealer struct {
	key       [32]byte
	ephemeral bool
}

// NewSealer derives a key from secret. An empty secret yields a random key,
// so anything sealed is lost on restart.
func NewSealer(secret string) *Sealer {
	s := &Sealer{}
	if secret == "" {
		copy(s.key[:], generateRandomSecret())
		s.ephemeral = true
		return s
	}
	s.key = sha256.Sum256([]byte(secret))
	return s
}

// Ephemeral reports whether the key was generated at startup
func (s *Sealer) Ephemeral() bool {
	return s.ephemeral
}

// Seal encrypts plaintext and returns base64 text holding nonce and box
func (s *Sealer) Seal(plaintext string) (string, error) {
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}
	out := secretbox.Seal(nonce[:], []byte(plaintext), &nonce, &s.key)
	return base64.RawURLEncoding.EncodeToString(out), nil
}

// Open reverses Seal
func (s *Sealer) Open(sealed string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(sealed)
	if err != nil || len(raw) < nonceSize+secretbox.Overhead {
		return "", ErrUnsealable
	}
	var nonce [nonceSize]byte
	copy(nonce[:], raw[:nonceSize])
	plain, ok := secretbox.Open(nil, raw[nonceSize:], &nonce, &s.key)
	if !ok {
		return "", ErrUnsealable
	}
	return string(plain), nil
}
