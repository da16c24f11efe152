package oracle

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/cuemby/burrow/pkg/types"
)

// Sealed compares handles that are AES-256-GCM ciphertexts of a big-endian
// uint64 load, with the nonce prepended. Plaintext loads exist only on the
// stack of GreaterThan and never leave this package.
type Sealed struct {
	gcm cipher.AEAD
}

// NewSealed creates a sealed oracle. The key must be 32 bytes for AES-256.
func NewSealed(key []byte) (*Sealed, error) {
	if len(key) != 32 {
		return nil, fmt.Errorf("oracle key must be 32 bytes for AES-256, got %d", len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	return &Sealed{gcm: gcm}, nil
}

// DeriveKey derives an oracle key from a passphrase
func DeriveKey(passphrase string) []byte {
	hash := sha256.Sum256([]byte(passphrase))
	return hash[:]
}

// Seal encrypts load into a handle. Workers call this before reporting load.
func (s *Sealed) Seal(load uint64) (types.LoadHandle, error) {
	plaintext := make([]byte, 8)
	binary.BigEndian.PutUint64(plaintext, load)

	nonce := make([]byte, s.gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	return s.gcm.Seal(nonce, nonce, plaintext, nil), nil
}

// GreaterThan opens both handles and compares the loads. A handle that fails
// to open never compares greater.
func (s *Sealed) GreaterThan(a, b types.LoadHandle) bool {
	la, err := s.open(a)
	if err != nil {
		return false
	}
	lb, err := s.open(b)
	if err != nil {
		return false
	}
	return la > lb
}

// Validate checks that the handle was sealed with this oracle's key
func (s *Sealed) Validate(h types.LoadHandle) error {
	_, err := s.open(h)
	return err
}

func (s *Sealed) open(h types.LoadHandle) (uint64, error) {
	nonceSize := s.gcm.NonceSize()
	if len(h) < nonceSize {
		return 0, fmt.Errorf("sealed load handle too short")
	}

	nonce, ciphertext := h[:nonceSize], h[nonceSize:]
	plaintext, err := s.gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to open load handle: %w", err)
	}
	if len(plaintext) != 8 {
		return 0, fmt.Errorf("sealed load handle has unexpected payload size %d", len(plaintext))
	}

	return binary.BigEndian.Uint64(plaintext), nil
}
