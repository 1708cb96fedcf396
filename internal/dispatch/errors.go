package dispatch

import "errors"

var (
	// ErrInvalidWorkerCount is returned by NormalizeWorkers when a non-positive worker count is
	// normalized to a single worker. Run never returns it.
	ErrInvalidWorkerCount = errors.New("invalid worker count")
	// ErrInvalidUnitSize is returned when a Dispatcher is configured with a non-positive unit size.
	ErrInvalidUnitSize = errors.New("invalid data unit size")
	// ErrBufferMismatch is returned when input and output differ in length.
	ErrBufferMismatch = errors.New("input and output buffers differ in length")
	// ErrCipherInit is returned when a worker cannot create or initialize its cipher.
	ErrCipherInit = errors.New("cipher init failure")
	// ErrCipherTransform is returned when a cipher fails while transforming a unit.
	ErrCipherTransform = errors.New("cipher transform failure")
	// ErrClaimProtocol indicates a claim that falls outside the buffers. It is a logic defect.
	ErrClaimProtocol = errors.New("claim protocol violation")
	// ErrCancelled is returned when the run stopped before every unit was claimed.
	ErrCancelled = errors.New("dispatch cancelled")
)
