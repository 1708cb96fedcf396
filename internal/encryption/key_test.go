package encryption_test

import (
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/idelchi/xtsenc/internal/config"
	"github.com/idelchi/xtsenc/internal/encryption"
)

const validKey = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

func TestDeriveKey(t *testing.T) {
	t.Parallel()

	got := hex.EncodeToString(encryption.DeriveKey("abc"))
	want := "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"

	if got != want {
		t.Errorf("DeriveKey(%q) = %s, want %s", "abc", got, want)
	}

	if len(encryption.DeriveKey("")) != encryption.KeySize {
		t.Errorf("DeriveKey() length != %d", encryption.KeySize)
	}
}

func TestKeyFromHex(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		in      string
		wantErr error
		anyErr  bool
	}{
		{name: "valid", in: validKey},
		{name: "surrounding whitespace", in: "  " + validKey + "\n"},
		{name: "too short", in: validKey[:32], wantErr: encryption.ErrInvalidKeySize},
		{name: "aes-256 pair", in: validKey + validKey, wantErr: encryption.ErrInvalidKeySize},
		{name: "duplicate halves", in: strings.Repeat("ab", 32), wantErr: encryption.ErrDuplicateKeyHalves},
		{name: "not hex", in: strings.Repeat("zz", 32), anyErr: true},
		{name: "odd length", in: validKey[:63], wantErr: hex.ErrLength},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			key, err := encryption.KeyFromHex(tt.in)

			switch {
			case tt.anyErr:
				if err == nil {
					t.Error("KeyFromHex() returned no error")
				}
			case !errors.Is(err, tt.wantErr):
				t.Errorf("KeyFromHex() error = %v, want %v", err, tt.wantErr)
			case err == nil && len(key) != encryption.KeySize:
				t.Errorf("KeyFromHex() length = %d, want %d", len(key), encryption.KeySize)
			}
		})
	}
}

func TestLoadKey(t *testing.T) {
	t.Parallel()

	keyFile := filepath.Join(t.TempDir(), "key")
	if err := os.WriteFile(keyFile, []byte(validKey+"\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	badFile := filepath.Join(t.TempDir(), "bad")
	if err := os.WriteFile(badFile, []byte("00"), 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		cfg     config.Config
		want    string
		wantErr error
	}{
		{name: "passphrase", cfg: config.Config{Passphrase: "abc"}, want: hex.EncodeToString(encryption.DeriveKey("abc"))},
		{name: "hex key", cfg: config.Config{Key: validKey}, want: validKey},
		{name: "key file", cfg: config.Config{KeyFile: keyFile}, want: validKey},
		{name: "bad key file", cfg: config.Config{KeyFile: badFile}, wantErr: encryption.ErrInvalidKeySize},
		{name: "missing key file", cfg: config.Config{KeyFile: keyFile + ".missing"}, wantErr: os.ErrNotExist},
		{name: "nothing", cfg: config.Config{}, wantErr: encryption.ErrNoKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			key, err := encryption.LoadKey(&tt.cfg)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("LoadKey() error = %v, want %v", err, tt.wantErr)
			}

			if got := hex.EncodeToString(key); tt.wantErr == nil && got != tt.want {
				t.Errorf("LoadKey() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestGenerateKey(t *testing.T) {
	t.Parallel()

	first, err := encryption.GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey() error = %v", err)
	}

	second, err := encryption.GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey() error = %v", err)
	}

	if _, err := encryption.KeyFromHex(first.AsHex()); err != nil {
		t.Errorf("generated key is not accepted: %v", err)
	}

	if len(first) != encryption.KeySize {
		t.Errorf("GenerateKey() length = %d, want %d", len(first), encryption.KeySize)
	}

	if first.AsHex() == second.AsHex() {
		t.Error("two generated keys are equal")
	}
}
