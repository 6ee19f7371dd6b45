// Package secrets protects provider API keys kept in the environment. A value
// of the form "enc:<base64(nonce||ciphertext)>" is AES-256-GCM encrypted with
// the key from SecretsKeyEnv; any other value is used as-is.
package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	EncryptedPrefix = "enc:"
	SecretsKeyEnv   = "LLM_SECRETS_KEY"
)

var (
	ErrKeyRequired = errors.New(SecretsKeyEnv + " is required to decrypt enc: values")
	ErrInvalidKey  = errors.New(SecretsKeyEnv + " must be 32 bytes or base64-encoded 32 bytes")

	newGCM = cipher.NewGCM
)

func ParseKey(raw string) ([]byte, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrKeyRequired
	}
	if len(raw) == 32 {
		return []byte(raw), nil
	}
	decoded, err := base64.StdEncoding.DecodeString(raw)
	if err != nil || len(decoded) != 32 {
		return nil, ErrInvalidKey
	}
	return decoded, nil
}

func IsEncrypted(value string) bool {
	return strings.HasPrefix(strings.TrimSpace(value), EncryptedPrefix)
}

// Reveal returns the plaintext for value, decrypting it with rawKey when it
// carries the encrypted prefix.
func Reveal(value string, rawKey string) (string, error) {
	value = strings.TrimSpace(value)
	if !IsEncrypted(value) {
		return value, nil
	}
	key, err := ParseKey(rawKey)
	if err != nil {
		return "", err
	}
	plain, err := Decrypt(key, strings.TrimPrefix(value, EncryptedPrefix))
	if err != nil {
		return "", fmt.Errorf("decrypt secret: %w", err)
	}
	return plain, nil
}

// Conceal encrypts plaintext into the prefixed form Reveal accepts.
func Conceal(plaintext string, rawKey string) (string, error) {
	key, err := ParseKey(rawKey)
	if err != nil {
		return "", err
	}
	encoded, err := Encrypt(key, plaintext)
	if err != nil {
		return "", err
	}
	return EncryptedPrefix + encoded, nil
}

func Encrypt(key []byte, plaintext string) (string, error) {
	gcm, err := aead(key)
	if err != nil {
		return "", err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}
	sealed := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

func Decrypt(key []byte, encoded string) (string, error) {
	gcm, err := aead(key)
	if err != nil {
		return "", err
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", err
	}
	if len(data) < gcm.NonceSize() {
		return "", errors.New("invalid encrypted secret")
	}
	plain, err := gcm.Open(nil, data[:gcm.NonceSize()], data[gcm.NonceSize():], nil)
	if err != nil {
		return "", err
	}
	return string(plain), nil
}

func aead(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return newGCM(block)
}
