package encryption

import (
	"crypto/aes"
	"crypto/subtle"

	"github.com/idelchi/xtsenc/internal/dispatch"
)

// steal transforms a unit that is longer than one block but not block aligned, using the
// ciphertext stealing of IEEE P1619 (the same output OpenSSL's EVP_aes_128_xts produces).
//
// With m full blocks and a tail of r bytes, block m-1 and the tail trade places: the tail is
// padded with the last r..15 bytes of block m-1's ciphertext and encrypted under tweak m.
// The xts package only exposes whole sectors, so the block under tweak m is produced by
// running a sector of m+1 blocks and keeping the last one.
func (x *XTS) steal(dst, src []byte) {
	full := len(src) &^ (aes.BlockSize - 1)
	tail := len(src) - full
	last := full - aes.BlockSize

	buf := x.buffer(full + aes.BlockSize)
	stolen := buf[full:]

	if x.direction == dispatch.Forward {
		x.crypt(dst[:full], src[:full], x.sector)

		// stolen = P_m || CC[r:], where CC is the ciphertext of block m-1.
		copy(stolen, src[full:])
		copy(stolen[tail:], dst[last+tail:full])
		// C_m = CC[:r]
		copy(dst[full:len(src)], dst[last:last+tail])

		clear(buf[:full])
		x.crypt(buf, buf, x.sector)
		copy(dst[last:full], stolen)

		return
	}

	// Undo the last full block under tweak m first: it holds P_m || CC[r:].
	clear(buf[:full])
	copy(stolen, src[last:full])
	x.crypt(buf, buf, x.sector)

	var plain [aes.BlockSize]byte

	copy(plain[:], stolen)

	// Rebuild CC = C_m || PP[r:] in place of block m-1, then run the aligned part.
	copy(buf[:last], src[:last])
	copy(buf[last:last+tail], src[full:])
	copy(buf[last+tail:full], plain[tail:])
	x.crypt(dst[:full], buf[:full], x.sector)

	copy(dst[full:len(src)], plain[:tail])
}

// mask handles a unit shorter than one AES block, which XTS cannot encrypt on its own.
// The unit is XORed with the XTS encryption of a zero block under the unit's tweak, which is
// its own inverse, so both directions do the same thing.
func (x *XTS) mask(dst, src []byte) {
	var pad [aes.BlockSize]byte

	x.cipher.Encrypt(pad[:], pad[:], x.sector)
	subtle.XORBytes(dst, src, pad[:len(src)])
}

// buffer returns the adapter's scratch space, grown to at least n bytes.
func (x *XTS) buffer(n int) []byte {
	if x.scratch == nil {
		x.scratch = acquireScratch()
	}

	if cap(*x.scratch) < n {
		*x.scratch = make([]byte, n)
	}

	return (*x.scratch)[:n]
}
