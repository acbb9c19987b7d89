package middleware

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
)

// envelopePrefix tags an encrypted body so it is never mistaken for plain text.
const envelopePrefix = "enc:v1:"

// EncryptionConfig holds the keys for encryption and decryption.
type EncryptionConfig struct {
	// ActiveKey is the key used for encrypting new data.
	// Must be 32 bytes for AES-256.
	ActiveKey []byte

	// FallbackKeys is a list of old keys to try when decryption fails.
	// This enables zero-downtime key rotation.
	FallbackKeys [][]byte
}

type encryptionMiddleware struct {
	ports.Store
	config EncryptionConfig
}

// NewEncryptionMiddleware creates a middleware that encrypts task bodies using AES-GCM.
// Ids, parents, titles and statuses stay readable: the hierarchy engine and the
// stores need them, and they are what a listing shows.
func NewEncryptionMiddleware(config EncryptionConfig) Middleware {
	if len(config.ActiveKey) != 32 {
		panic("active key must be 32 bytes (AES-256)")
	}
	return func(next ports.Store) ports.Store {
		return &encryptionMiddleware{
			Store:  next,
			config: config,
		}
	}
}

func (m *encryptionMiddleware) Commit(ctx context.Context, cs domain.ChangeSet) error {
	if len(cs.Upserts) > 0 {
		sealed := make([]domain.Task, len(cs.Upserts))
		for i, t := range cs.Upserts {
			if t.Body != "" {
				ciphertext, err := encrypt([]byte(t.Body), m.config.ActiveKey)
				if err != nil {
					return fmt.Errorf("failed to encrypt task %s: %w", t.ID, err)
				}
				t.Body = envelopePrefix + base64.StdEncoding.EncodeToString(ciphertext)
			}
			sealed[i] = t
		}
		cs.Upserts = sealed
	}
	return m.Store.Commit(ctx, cs)
}

func (m *encryptionMiddleware) Snapshot(ctx context.Context) ([]domain.Task, error) {
	tasks, err := m.Store.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	for i := range tasks {
		if tasks[i], err = m.open(tasks[i]); err != nil {
			return nil, err
		}
	}
	return tasks, nil
}

func (m *encryptionMiddleware) Get(ctx context.Context, id string) (domain.Task, error) {
	t, err := m.Store.Get(ctx, id)
	if err != nil {
		return domain.Task{}, err
	}
	return m.open(t)
}

func (m *encryptionMiddleware) open(t domain.Task) (domain.Task, error) {
	if t.Body == "" {
		return t, nil
	}
	encoded, ok := strings.CutPrefix(t.Body, envelopePrefix)
	if !ok {
		// Fail secure: with encryption configured, every body must be sealed.
		return domain.Task{}, fmt.Errorf("task %s is missing encrypted body envelope", t.ID)
	}

	ciphertext, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return domain.Task{}, fmt.Errorf("failed to decode ciphertext base64: %w", err)
	}
	plainText, err := decryptWithRotation(ciphertext, m.config.ActiveKey, m.config.FallbackKeys)
	if err != nil {
		return domain.Task{}, fmt.Errorf("failed to decrypt task %s: %w", t.ID, err)
	}
	t.Body = string(plainText)
	return t, nil
}

// Helpers

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

func decryptWithRotation(ciphertext []byte, activeKey []byte, fallbackKeys [][]byte) ([]byte, error) {
	if plain, err := decrypt(ciphertext, activeKey); err == nil {
		return plain, nil
	}
	for _, key := range fallbackKeys {
		if plain, err := decrypt(ciphertext, key); err == nil {
			return plain, nil
		}
	}
	return nil, errors.New("decryption failed with all available keys")
}

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

	nonce := ciphertext[:gcm.NonceSize()]
	ciphertextBytes := ciphertext[gcm.NonceSize():]

	return gcm.Open(nil, nonce, ciphertextBytes, nil)
}
