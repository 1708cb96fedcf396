package dispatch

import "time"

// Summary describes a finished run.
type Summary struct {
	Direction Direction
	Workers   int
	UnitSize  int
	Units     int64
	Bytes     int64
	Duration  time.Duration
}

// Observer receives progress from a Dispatcher. UnitDone is called from worker
// goroutines and must be safe for concurrent use.
type Observer interface {
	UnitDone(worker int, claim Claim)
	RunDone(summary Summary, err error)
}
