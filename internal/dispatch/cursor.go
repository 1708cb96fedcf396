package dispatch

import "sync"

// Claim reserves one data unit for exclusive processing by one worker.
type Claim struct {
	// Index is the unit's sequential number and also its tweak.
	Index uint64
	// Offset is Index * unit size, into both input and output.
	Offset int
	// Length is the unit size, except for a short final unit.
	Length int
}

// End returns the offset one past the last byte of the claim.
func (c Claim) End() int {
	return c.Offset + c.Length
}

// units is the claim bookkeeping without any locking.
// The single-worker path uses it directly; Cursor guards it with a mutex.
type units struct {
	size      int
	remaining int
	next      uint64
}

func (u *units) claim() (Claim, bool) {
	if u.remaining <= 0 {
		return Claim{}, false
	}

	length := u.size
	if u.remaining < u.size {
		// Short final unit: nothing is left to hand out after this one.
		length = u.remaining
	}

	claim := Claim{
		Index:  u.next,
		Offset: int(u.next) * u.size, //nolint:gosec // bounded by the buffer length
		Length: length,
	}

	u.remaining -= length
	u.next++

	return claim, true
}

// Cursor hands out disjoint data units to concurrent workers.
// The remaining byte count and the next index only change together, under mu.
type Cursor struct {
	mu        sync.Mutex
	units     units
	cancelled bool
}

// NewCursor returns a cursor over length bytes split into units of unitSize bytes.
func NewCursor(length, unitSize int) *Cursor {
	return &Cursor{
		units: units{size: unitSize, remaining: length},
	}
}

// Claim reserves the next unit. It returns false once every byte has been claimed
// or the cursor was cancelled.
func (c *Cursor) Claim() (Claim, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cancelled {
		return Claim{}, false
	}

	return c.units.claim()
}

// Cancel stops the cursor from issuing further claims. Units already claimed are unaffected.
func (c *Cursor) Cancel() {
	c.mu.Lock()
	c.cancelled = true
	c.mu.Unlock()
}

// Remaining returns the number of bytes not yet claimed.
func (c *Cursor) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.units.remaining
}

// Issued returns the number of claims handed out so far.
func (c *Cursor) Issued() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.units.next
}

// UnitCount returns how many units a buffer of length bytes splits into.
func UnitCount(length, unitSize int) int {
	if length <= 0 || unitSize <= 0 {
		return 0
	}

	return (length + unitSize - 1) / unitSize
}
