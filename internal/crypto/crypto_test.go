package crypto

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func testKey() []byte {
	return []byte("01234567890123456789012345678901")
}

func TestStore_RoundTrip(t *testing.T) {
	store, err := NewStore(testKey())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	plaintexts := [][]byte{
		[]byte("hello world"),
		[]byte(""),
		bytes.Repeat([]byte{0xAB}, 4096),
	}

	for _, pt := range plaintexts {
		blob, err := store.Encrypt(pt)
		if err != nil {
			t.Fatalf("Encrypt: %v", err)
		}
		if len(blob) != nonceSize+tagSize+len(pt) {
			t.Errorf("blob size: got %d, want %d", len(blob), nonceSize+tagSize+len(pt))
		}

		got, err := store.Decrypt(blob)
		if err != nil {
			t.Fatalf("Decrypt: %v", err)
		}
		if !bytes.Equal(got, pt) {
			t.Errorf("round trip mismatch: got %q, want %q", got, pt)
		}
	}
}

func TestStore_TamperDetection(t *testing.T) {
	store, _ := NewStore(testKey())

	blob, err := store.Encrypt([]byte("sensitive document content"))
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}

	// Flipping any single bit anywhere in the blob must fail closed.
	for i := 0; i < len(blob); i++ {
		tampered := make([]byte, len(blob))
		copy(tampered, blob)
		tampered[i] ^= 0x01

		pt, err := store.Decrypt(tampered)
		if !errors.Is(err, ErrDecryptFailed) {
			t.Fatalf("byte %d: got err %v, want ErrDecryptFailed", i, err)
		}
		if pt != nil {
			t.Fatalf("byte %d: got partial plaintext %q", i, pt)
		}
	}
}

func TestStore_WrongKey(t *testing.T) {
	enc1, _ := NewStore(testKey())
	enc2, _ := NewStore([]byte("10987654321098765432109876543210"))

	blob, err := enc1.Encrypt([]byte("secret"))
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}

	if _, err := enc2.Decrypt(blob); !errors.Is(err, ErrDecryptFailed) {
		t.Errorf("got %v, want ErrDecryptFailed", err)
	}
}

func TestStore_InvalidKeySize(t *testing.T) {
	for _, size := range []int{0, 16, 64} {
		if _, err := NewStore(make([]byte, size)); !errors.Is(err, ErrInvalidKeySize) {
			t.Errorf("key size %d: got %v, want ErrInvalidKeySize", size, err)
		}
	}
}

func TestStore_ShortBlob(t *testing.T) {
	store, _ := NewStore(testKey())

	for _, blob := range [][]byte{nil, {}, {0x01, 0x02, 0x03}, make([]byte, nonceSize+tagSize-1)} {
		if _, err := store.Decrypt(blob); !errors.Is(err, ErrInvalidBlobSize) {
			t.Errorf("blob len %d: got %v, want ErrInvalidBlobSize", len(blob), err)
		}
	}
}

func TestStore_UniqueNonce(t *testing.T) {
	store, _ := NewStore(testKey())

	nonces := make(map[string]bool)
	for i := 0; i < 20; i++ {
		blob, err := store.Encrypt([]byte("same value"))
		if err != nil {
			t.Fatalf("Encrypt %d: %v", i, err)
		}
		nonce := string(blob[:nonceSize])
		if nonces[nonce] {
			t.Fatalf("duplicate nonce at iteration %d", i)
		}
		nonces[nonce] = true
	}
}

func TestLoadOrGenerateKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "encryption_key.key")

	key1, err := LoadOrGenerateKey(path)
	if err != nil {
		t.Fatalf("first LoadOrGenerateKey: %v", err)
	}
	if len(key1) != KeySize {
		t.Fatalf("key size: got %d, want %d", len(key1), KeySize)
	}

	// Second call loads the same key.
	key2, err := LoadOrGenerateKey(path)
	if err != nil {
		t.Fatalf("second LoadOrGenerateKey: %v", err)
	}
	if !bytes.Equal(key1, key2) {
		t.Error("loaded key differs from generated key")
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat key file: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("key file permissions: got %o, want 600", perm)
	}
}

func TestLoadOrGenerateKey_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "encryption_key.key")
	if err := os.WriteFile(path, []byte("too short"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadOrGenerateKey(path); !errors.Is(err, ErrInvalidKeySize) {
		t.Errorf("got %v, want ErrInvalidKeySize", err)
	}
}
