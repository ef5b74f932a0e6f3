// Package secrets encrypts stored credentials with AES-256-GCM. A Codec is
// constructed once at startup and passed to every component that touches
// credentials; there is no package-level key state.
package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
	"log"
)

const keyLen = 32

type Codec struct {
	aead cipher.AEAD
}

// NewCodec builds a codec from a base64-encoded 32-byte key.
func NewCodec(keyB64 string) (*Codec, error) {
	key, err := base64.StdEncoding.DecodeString(keyB64)
	if err != nil {
		return nil, fmt.Errorf("credential key is not valid base64: %w", err)
	}
	if len(key) != keyLen {
		return nil, fmt.Errorf("credential key must be %d bytes, got %d", keyLen, len(key))
	}
	return newCodec(key)
}

// NewCodecFromConfig builds a codec from the configured key. With no key
// configured it generates an ephemeral one and warns loudly: anything
// encrypted under it is unrecoverable after a restart.
func NewCodecFromConfig(keyB64 string) (*Codec, error) {
	if keyB64 != "" {
		return NewCodec(keyB64)
	}
	key := make([]byte, keyLen)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return nil, err
	}
	log.Printf("WARNING: AGENTBASE_CREDENTIAL_KEY not set; generated an ephemeral key. "+
		"Credentials encrypted in this process cannot be decrypted after restart. "+
		"Set AGENTBASE_CREDENTIAL_KEY=%s to persist it.", base64.StdEncoding.EncodeToString(key))
	return newCodec(key)
}

func newCodec(key []byte) (*Codec, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &Codec{aead: aead}, nil
}

// Encrypt seals plaintext into a base64 string with the nonce prefixed.
// The empty string passes through untouched.
func (c *Codec) Encrypt(plain string) (string, error) {
	if plain == "" {
		return "", nil
	}
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}
	sealed := c.aead.Seal(nonce, nonce, []byte(plain), nil)
	return base64.URLEncoding.EncodeToString(sealed), nil
}

// Decrypt opens a ciphertext produced by Encrypt. It returns ok=false for
// empty, malformed, corrupted, or key-mismatched input; callers treat that
// as "credential unavailable" and fail their own operation.
func (c *Codec) Decrypt(encrypted string) (string, bool) {
	if encrypted == "" {
		return "", false
	}
	raw, err := base64.URLEncoding.DecodeString(encrypted)
	if err != nil {
		log.Printf("secrets: ciphertext is not valid base64: %v", err)
		return "", false
	}
	if len(raw) < c.aead.NonceSize() {
		log.Printf("secrets: ciphertext shorter than nonce")
		return "", false
	}
	nonce, payload := raw[:c.aead.NonceSize()], raw[c.aead.NonceSize():]
	plain, err := c.aead.Open(nil, nonce, payload, nil)
	if err != nil {
		log.Printf("secrets: decrypt failed; the key may have changed or the data is corrupted: %v", err)
		return "", false
	}
	return string(plain), true
}
