package dispatch

// Direction selects one of the two mutually inverse cipher operations.
type Direction byte

const (
	// Forward encrypts.
	Forward Direction = iota
	// Inverse decrypts.
	Inverse
)

// String returns the direction as used in CLI output and metric labels.
func (d Direction) String() string {
	switch d {
	case Forward:
		return "encrypt"
	case Inverse:
		return "decrypt"
	default:
		return "unknown"
	}
}

// Transformer is a tweakable cipher instance owned by a single worker.
// Implementations need not be safe for concurrent use.
//
// For every unit the worker calls Init with the unit's tweak, then Update once over the
// whole unit. A short final unit is followed by Final, which may flush trailing bytes into
// the region right after those Update wrote.
type Transformer interface {
	Init(tweak uint64) error
	Update(dst, src []byte) (int, error)
	Final(dst []byte) (int, error)
	// Close releases the instance. It is called once, after the worker's last unit.
	Close() error
}

// Factory creates one Transformer per worker from the shared key material.
type Factory func(key []byte, direction Direction) (Transformer, error)
