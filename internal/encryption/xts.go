package encryption

import (
	"crypto/aes"
	"fmt"

	"golang.org/x/crypto/xts"

	"github.com/idelchi/xtsenc/internal/dispatch"
)

const (
	// KeySize is the XTS key pair length: a 16-byte data key followed by a 16-byte tweak key.
	KeySize = 32
	// MaxUnitSize bounds a single XTS data unit.
	MaxUnitSize = 1 << 24
)

type state byte

const (
	stateIdle state = iota
	stateReady
	stateUpdated
	stateClosed
)

// XTS is the AES-128-XTS adapter for one worker.
//
// The key schedule is shared read-only through the underlying xts.Cipher, while the tweak,
// the call state and the scratch space used for ciphertext stealing are private, so an XTS
// must not be used from more than one goroutine.
type XTS struct {
	cipher    *xts.Cipher
	direction dispatch.Direction
	sector    uint64
	state     state
	scratch   *[]byte
}

// NewXTS creates an adapter from a 32-byte key pair.
func NewXTS(key []byte, direction dispatch.Direction) (*XTS, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidKeySize, len(key), KeySize)
	}

	switch direction {
	case dispatch.Forward, dispatch.Inverse:
	default:
		return nil, fmt.Errorf("%w: %d", ErrInvalidDirection, direction)
	}

	c, err := xts.NewCipher(aes.NewCipher, key)
	if err != nil {
		return nil, fmt.Errorf("creating cipher: %w", err)
	}

	return &XTS{cipher: c, direction: direction}, nil
}

// NewTransformer is a dispatch.Factory backed by NewXTS.
func NewTransformer(key []byte, direction dispatch.Direction) (dispatch.Transformer, error) {
	x, err := NewXTS(key, direction)
	if err != nil {
		return nil, err
	}

	return x, nil
}

// Init starts a new data unit with the given tweak (its sector number).
func (x *XTS) Init(tweak uint64) error {
	if x.state == stateClosed {
		return ErrClosed
	}

	x.sector = tweak
	x.state = stateReady

	return nil
}

// Update transforms the whole data unit in src into dst. It may be called once per Init.
// dst and src must overlap entirely or not at all.
//
// Block aligned units are plain XTS. Longer unaligned units use ciphertext stealing, and units
// shorter than one AES block are masked with the XTS image of a zero block. All three keep
// the length unchanged.
func (x *XTS) Update(dst, src []byte) (int, error) {
	switch x.state {
	case stateReady:
	case stateClosed:
		return 0, ErrClosed
	default:
		return 0, ErrNotInitialized
	}

	if len(dst) < len(src) {
		return 0, fmt.Errorf("%w: %d < %d", ErrShortBuffer, len(dst), len(src))
	}

	if len(src) >= MaxUnitSize {
		return 0, fmt.Errorf("%w: %d bytes", ErrUnitTooLarge, len(src))
	}

	x.state = stateUpdated

	switch {
	case len(src) == 0:
	case len(src) < aes.BlockSize:
		x.mask(dst, src)
	case len(src)%aes.BlockSize == 0:
		x.crypt(dst[:len(src)], src, x.sector)
	default:
		x.steal(dst, src)
	}

	return len(src), nil
}

// Final ends the current unit. XTS keeps no pending bytes, so it never writes to dst.
func (x *XTS) Final(_ []byte) (int, error) {
	switch x.state {
	case stateReady, stateUpdated:
	case stateClosed:
		return 0, ErrClosed
	default:
		return 0, ErrNotInitialized
	}

	x.state = stateIdle

	return 0, nil
}

// Close returns the scratch space and makes every further call fail.
func (x *XTS) Close() error {
	if x.scratch != nil {
		releaseScratch(x.scratch)
		x.scratch = nil
	}

	x.cipher = nil
	x.state = stateClosed

	return nil
}

// crypt runs plain XTS over a block aligned span.
func (x *XTS) crypt(dst, src []byte, sector uint64) {
	if x.direction == dispatch.Forward {
		x.cipher.Encrypt(dst, src, sector)
	} else {
		x.cipher.Decrypt(dst, src, sector)
	}
}
