package encryption

import "errors"

var (
	// ErrInvalidKeySize is returned when key material is not KeySize bytes long.
	ErrInvalidKeySize = errors.New("invalid key size")
	// ErrDuplicateKeyHalves is returned for a key whose data and tweak halves are equal.
	ErrDuplicateKeyHalves = errors.New("xts data key and tweak key must differ")
	// ErrNoKey is returned when neither a passphrase nor a key was configured.
	ErrNoKey = errors.New("no key configured")
	// ErrInvalidDirection is returned for a direction other than Forward or Inverse.
	ErrInvalidDirection = errors.New("invalid direction")
	// ErrNotInitialized is returned by Update or Final without a preceding Init.
	ErrNotInitialized = errors.New("cipher not initialized for a data unit")
	// ErrClosed is returned by every call after Close.
	ErrClosed = errors.New("cipher closed")
	// ErrShortBuffer is returned when the destination is smaller than the source.
	ErrShortBuffer = errors.New("destination buffer too short")
	// ErrUnitTooLarge is returned for data units of MaxUnitSize bytes or more.
	ErrUnitTooLarge = errors.New("data unit too large")
)
