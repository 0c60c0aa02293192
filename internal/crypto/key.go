package crypto

import (
	"crypto/rand"
	"fmt"
	"os"
)

// LoadOrGenerateKey returns the process-wide encryption key. On first run
// it generates 32 random bytes and writes them to path (0600); afterwards
// it loads the existing file.
func LoadOrGenerateKey(path string) ([]byte, error) {
	if data, err := os.ReadFile(path); err == nil {
		if len(data) != KeySize {
			return nil, fmt.Errorf("key file %s: %w: got %d bytes", path, ErrInvalidKeySize, len(data))
		}
		return data, nil
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading key file %s: %w", path, err)
	}

	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generating key: %w", err)
	}
	if err := os.WriteFile(path, key, 0o600); err != nil {
		return nil, fmt.Errorf("writing key file %s: %w", path, err)
	}
	return key, nil
}
