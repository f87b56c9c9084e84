// Package vault seals small secrets at rest with a passphrase.
//
// The envelope is a JSON document holding a random salt and the AES-GCM
// ciphertext (nonce prefixed), keyed with PBKDF2-SHA256.
package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"golang.org/x/crypto/pbkdf2"
)

const (
	saltSize   = 32
	keySize    = 32
	iterations = 100000
	version    = 1
)

var (
	ErrNoPassphrase = errors.New("passphrase is required")
	ErrNotSealed    = errors.New("data is not a sealed envelope")
	ErrDecrypt      = errors.New("failed to decrypt: wrong passphrase or corrupted data")
)

// Envelope is the on-disk form of sealed data
type Envelope struct {
	Salt      string    `json:"salt"`
	Encrypted string    `json:"encrypted"`
	Version   int       `json:"version"`
	Modified  time.Time `json:"modified"`
}

// Seal encrypts plaintext and returns the serialized envelope
func Seal(plaintext []byte, passphrase string) ([]byte, error) {
	if passphrase == "" {
		return nil, ErrNoPassphrase
	}

	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}

	encrypted, err := encrypt(plaintext, deriveKey(passphrase, salt))
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt data: %w", err)
	}

	return json.MarshalIndent(Envelope{
		Salt:      base64.StdEncoding.EncodeToString(salt),
		Encrypted: base64.StdEncoding.EncodeToString(encrypted),
		Version:   version,
		Modified:  time.Now(),
	}, "", "  ")
}

// Open decrypts a serialized envelope
func Open(data []byte, passphrase string) ([]byte, error) {
	env, ok := parse(data)
	if !ok {
		return nil, ErrNotSealed
	}
	if passphrase == "" {
		return nil, ErrNoPassphrase
	}

	salt, err := base64.StdEncoding.DecodeString(env.Salt)
	if err != nil {
		return nil, fmt.Errorf("failed to decode salt: %w", err)
	}
	encrypted, err := base64.StdEncoding.DecodeString(env.Encrypted)
	if err != nil {
		return nil, fmt.Errorf("failed to decode encrypted data: %w", err)
	}

	plaintext, err := decrypt(encrypted, deriveKey(passphrase, salt))
	if err != nil {
		return nil, ErrDecrypt
	}
	return plaintext, nil
}

// IsSealed reports whether data looks like a sealed envelope
func IsSealed(data []byte) bool {
	_, ok := parse(data)
	return ok
}

func parse(data []byte) (Envelope, bool) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return env, false
	}
	return env, env.Salt != "" && env.Encrypted != ""
}

func deriveKey(passphrase string, salt []byte) []byte {
	return pbkdf2.Key([]byte(passphrase), salt, iterations, keySize, sha256.New)
}

// encrypt encrypts data using AES-GCM
func encrypt(plaintext []byte, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

// decrypt decrypts data using AES-GCM
func decrypt(ciphertext []byte, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	if len(ciphertext) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}

	nonce, ciphertext := ciphertext[:gcm.NonceSize()], ciphertext[gcm.NonceSize():]
	return gcm.Open(nil, nonce, ciphertext, nil)
}
