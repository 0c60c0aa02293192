// Package crypto provides authenticated encryption for documents at rest.
//
// A single process-wide AES-256 key is shared by all users. If the key file
// leaks, every user's documents are exposed; a per-user wrapped subkey would
// be stronger, but the service deliberately keeps the single-key model.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"log"
)

const (
	// nonceSize is the AES-GCM nonce size (12 bytes is standard).
	nonceSize = 12

	// tagSize is the GCM authentication tag size.
	tagSize = 16

	// KeySize is the required key size for AES-256.
	KeySize = 32
)

var (
	// ErrInvalidKeySize is returned when the encryption key is not 32 bytes.
	ErrInvalidKeySize = errors.New("encryption key must be 32 bytes")

	// ErrInvalidBlobSize is returned when an encrypted blob is too small to
	// contain a nonce and tag.
	ErrInvalidBlobSize = errors.New("encrypted blob is too small")

	// ErrDecryptFailed is returned when authentication fails (wrong key or
	// tampered data). No plaintext is ever returned alongside it.
	ErrDecryptFailed = errors.New("failed to decrypt document")
)

// Store encrypts and decrypts document blobs with AES-256-GCM.
// The blob format is a fixed-order concatenation:
//
//	nonce(12) || tag(16) || ciphertext
//
// which is self-describing and needs no external metadata.
type Store struct {
	gcm cipher.AEAD
}

// NewStore creates a Store from a 32-byte key.
func NewStore(key []byte) (*Store, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: got %d bytes", ErrInvalidKeySize, len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create AES cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create GCM: %w", err)
	}

	return &Store{gcm: gcm}, nil
}

// Encrypt seals plaintext with a fresh random nonce.
func (s *Store) Encrypt(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}

	// Seal appends the tag after the ciphertext; the blob format wants the
	// tag between nonce and ciphertext, so re-split the sealed output.
	sealed := s.gcm.Seal(nil, nonce, plaintext, nil)
	ct := sealed[:len(sealed)-tagSize]
	tag := sealed[len(sealed)-tagSize:]

	blob := make([]byte, 0, nonceSize+tagSize+len(ct))
	blob = append(blob, nonce...)
	blob = append(blob, tag...)
	blob = append(blob, ct...)
	return blob, nil
}

// Decrypt verifies the tag and returns the plaintext. On verification
// failure it logs the event and returns ErrDecryptFailed with no partial
// plaintext.
func (s *Store) Decrypt(blob []byte) ([]byte, error) {
	if len(blob) < nonceSize+tagSize {
		return nil, ErrInvalidBlobSize
	}

	nonce := blob[:nonceSize]
	tag := blob[nonceSize : nonceSize+tagSize]
	ct := blob[nonceSize+tagSize:]

	sealed := make([]byte, 0, len(ct)+tagSize)
	sealed = append(sealed, ct...)
	sealed = append(sealed, tag...)

	plaintext, err := s.gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		log.Printf("crypto: decryption failed: MAC check failed")
		return nil, ErrDecryptFailed
	}
	return plaintext, nil
}
