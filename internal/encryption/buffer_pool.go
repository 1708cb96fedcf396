package encryption

import (
	"sync"
)

// defaultScratchSize fits ciphertext stealing for the default 1 KiB data unit.
const defaultScratchSize = 1024 + 16

// scratchPool provides the per-worker scratch space used for ciphertext stealing.
// Workers come and go with every run, the buffers outlive them.
//
//nolint:gochecknoglobals
var scratchPool = sync.Pool{
	New: func() any {
		buf := make([]byte, defaultScratchSize)

		return &buf
	},
}

func acquireScratch() *[]byte {
	buf, ok := scratchPool.Get().(*[]byte)
	if !ok {
		fresh := make([]byte, defaultScratchSize)

		return &fresh
	}

	return buf
}

func releaseScratch(buf *[]byte) {
	clear(*buf)
	scratchPool.Put(buf)
}
