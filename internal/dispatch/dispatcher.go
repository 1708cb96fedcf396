package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

// DefaultUnitSize is the data unit size used when Options.UnitSize is zero.
const DefaultUnitSize = 1024

// Options configures a Dispatcher.
type Options struct {
	// UnitSize is the data unit size in bytes. Zero selects DefaultUnitSize.
	UnitSize int
	// Observer is optional.
	Observer Observer
}

// Dispatcher runs a cipher over a buffer on a pool of workers.
// A Dispatcher holds no per-run state and may be reused, also concurrently.
type Dispatcher struct {
	factory  Factory
	unitSize int
	observer Observer
}

// New returns a Dispatcher that creates each worker's cipher through factory.
func New(factory Factory, opts Options) (*Dispatcher, error) {
	if factory == nil {
		return nil, errors.New("nil cipher factory")
	}

	size := opts.UnitSize
	if size == 0 {
		size = DefaultUnitSize
	}

	if size < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidUnitSize, size)
	}

	return &Dispatcher{
		factory:  factory,
		unitSize: size,
		observer: opts.Observer,
	}, nil
}

// UnitSize returns the configured data unit size.
func (d *Dispatcher) UnitSize() int {
	return d.unitSize
}

// NormalizeWorkers maps a non-positive worker count to 1.
// The returned error is ErrInvalidWorkerCount when normalization took place; it is not fatal.
func NormalizeWorkers(workers int) (int, error) {
	if workers <= 0 {
		return 1, fmt.Errorf("%w: %d, using 1", ErrInvalidWorkerCount, workers)
	}

	return workers, nil
}

// Run transforms input into output in the given direction using workers goroutines.
// Unit i always covers bytes [i*UnitSize, (i+1)*UnitSize) and uses tweak i, so the
// result does not depend on the worker count.
//
// On error the contents of output are undefined.
func (d *Dispatcher) Run(ctx context.Context, input, output, key []byte, workers int, direction Direction) (err error) {
	if len(input) != len(output) {
		return fmt.Errorf("%w: %d != %d", ErrBufferMismatch, len(input), len(output))
	}

	workers, _ = NormalizeWorkers(workers)

	r := &run{
		Dispatcher: d,
		input:      input,
		output:     output,
		key:        key,
		direction:  direction,
	}

	start := time.Now()

	defer func() {
		if d.observer == nil {
			return
		}

		d.observer.RunDone(Summary{
			Direction: direction,
			Workers:   workers,
			UnitSize:  d.unitSize,
			Units:     r.units.Load(),
			Bytes:     r.bytes.Load(),
			Duration:  time.Since(start),
		}, err)
	}()

	if workers == 1 {
		return r.single(ctx)
	}

	return r.parallel(ctx, workers)
}

// run holds the state of one Run call.
type run struct {
	*Dispatcher

	input     []byte
	output    []byte
	key       []byte
	direction Direction

	units atomic.Int64
	bytes atomic.Int64
}

// single runs the worker loop in the calling goroutine on private bookkeeping.
func (r *run) single(ctx context.Context) error {
	state := units{size: r.unitSize, remaining: len(r.input)}

	next := func() (Claim, bool) {
		if ctx.Err() != nil {
			return Claim{}, false
		}

		return state.claim()
	}

	if err := r.worker(0, next); err != nil {
		return err
	}

	if state.remaining > 0 {
		return cancelled(ctx)
	}

	return nil
}

// parallel starts workers goroutines that share one Cursor. The first worker error or the
// end of ctx cancels the cursor; units already claimed are still finished.
func (r *run) parallel(ctx context.Context, workers int) error {
	cursor := NewCursor(len(r.input), r.unitSize)

	group, groupCtx := errgroup.WithContext(ctx)

	next := func() (Claim, bool) {
		if groupCtx.Err() != nil {
			cursor.Cancel()

			return Claim{}, false
		}

		return cursor.Claim()
	}

	for id := range workers {
		group.Go(func() error {
			return r.worker(id, next)
		})
	}

	if err := group.Wait(); err != nil {
		return err //nolint:wrapcheck // worker errors are already wrapped
	}

	if cursor.Remaining() > 0 {
		return cancelled(ctx)
	}

	return nil
}

// worker processes claims from next until it reports no more work.
func (r *run) worker(id int, next func() (Claim, bool)) (err error) {
	transformer, err := r.factory(r.key, r.direction)
	if err != nil {
		return fmt.Errorf("%w: worker %d: %w", ErrCipherInit, id, err)
	}

	defer func() {
		if closeErr := transformer.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("releasing cipher of worker %d: %w", id, closeErr)
		}
	}()

	for {
		claim, ok := next()
		if !ok {
			return nil
		}

		if err := r.process(transformer, id, claim); err != nil {
			return err
		}
	}
}

// process runs the transformer over one claimed unit.
func (r *run) process(transformer Transformer, worker int, claim Claim) error {
	if claim.Length <= 0 || claim.Length > r.unitSize || claim.End() > len(r.input) {
		return fmt.Errorf("%w: unit %d spans [%d, %d) of %d bytes",
			ErrClaimProtocol, claim.Index, claim.Offset, claim.End(), len(r.input))
	}

	src := r.input[claim.Offset:claim.End()]
	dst := r.output[claim.Offset:claim.End()]

	if err := transformer.Init(claim.Index); err != nil {
		return fmt.Errorf("%w: unit %d: %w", ErrCipherInit, claim.Index, err)
	}

	written, err := transformer.Update(dst, src)
	if err != nil {
		return fmt.Errorf("%w: unit %d: %w", ErrCipherTransform, claim.Index, err)
	}

	if written < 0 || written > claim.Length {
		return fmt.Errorf("%w: unit %d: update reported %d bytes", ErrCipherTransform, claim.Index, written)
	}

	if claim.Length < r.unitSize {
		flushed, err := transformer.Final(dst[written:])
		if err != nil {
			return fmt.Errorf("%w: unit %d: finalizing: %w", ErrCipherTransform, claim.Index, err)
		}

		written += flushed
	}

	if written != claim.Length {
		return fmt.Errorf("%w: unit %d: wrote %d of %d bytes", ErrCipherTransform, claim.Index, written, claim.Length)
	}

	r.units.Add(1)
	r.bytes.Add(int64(claim.Length))

	if r.observer != nil {
		r.observer.UnitDone(worker, claim)
	}

	return nil
}

func cancelled(ctx context.Context) error {
	if cause := context.Cause(ctx); cause != nil {
		return fmt.Errorf("%w: %w", ErrCancelled, cause)
	}

	return ErrCancelled
}
