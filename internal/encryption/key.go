package encryption

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"

	"github.com/idelchi/gogen/pkg/key"
	"github.com/idelchi/xtsenc/internal/config"
)

// DeriveKey hashes a passphrase into XTS key material.
// The SHA-256 digest is split into the data key (first half) and the tweak key (second half).
func DeriveKey(passphrase string) []byte {
	sum := sha256.Sum256([]byte(passphrase))

	return sum[:]
}

// KeyFromHex decodes a hex-encoded 32-byte XTS key pair.
func KeyFromHex(s string) (key.Key, error) {
	k, err := key.FromHex(s)
	if err != nil {
		return nil, fmt.Errorf("decoding key: %w", err)
	}

	if err := checkPair(k); err != nil {
		return nil, err
	}

	return k, nil
}

// checkPair rejects keys of the wrong size and keys whose data and tweak halves are equal.
func checkPair(k key.Key) error {
	if len(k) != KeySize {
		return fmt.Errorf("%w: got %d bytes, want %d (%d hex characters)",
			ErrInvalidKeySize, len(k), KeySize, 2*KeySize)
	}

	if bytes.Equal(k[:KeySize/2], k[KeySize/2:]) {
		return ErrDuplicateKeyHalves
	}

	return nil
}

// LoadKey resolves the configured key source into key material.
func LoadKey(cfg *config.Config) ([]byte, error) {
	switch {
	case cfg.Passphrase != "":
		return DeriveKey(cfg.Passphrase), nil
	case cfg.Key != "":
		return KeyFromHex(cfg.Key)
	case cfg.KeyFile != "":
		data, err := os.ReadFile(filepath.Clean(cfg.KeyFile))
		if err != nil {
			return nil, fmt.Errorf("reading key file: %w", err)
		}

		k, err := KeyFromHex(string(data))
		if err != nil {
			return nil, fmt.Errorf("key file %q: %w", cfg.KeyFile, err)
		}

		return k, nil
	default:
		return nil, ErrNoKey
	}
}

// GenerateKey returns a random XTS key pair with distinct halves.
func GenerateKey() (key.Key, error) {
	for {
		k, err := key.New(KeySize)
		if err != nil {
			return nil, fmt.Errorf("generating key: %w", err)
		}

		if checkPair(k) == nil {
			return k, nil
		}
	}
}
