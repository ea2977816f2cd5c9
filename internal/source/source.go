// Package source implements the external sample-acquisition adapters
// described by interface only in spec §4.7: a live RTL2832-based device in
// asynchronous callback mode, and a file-based replay adapter. Both expose
// the same producer contract to the coordinator.
//
// Grounded on the rtlsdr_read_async/rtlsdr_read_sync/fread loop in
// _examples/original_source/src/rtl_433.c's main(), and on the donor's
// single-consumer channel pattern for delivering blocks
// (clients/iq-recorder/main.go's read loop feeding a processing
// goroutine).
package source

import "context"

// ChunkSize is the fixed read size (in bytes) used by the file replay
// adapter, reproduced from the legacy test-mode loop's fread(...,
// 131072, 1, ...) call.
const ChunkSize = 131072

// Block is one delivered sample buffer. Source adapters reuse the backing
// array across deliveries where possible; callers that need to retain a
// block past the next BlockFunc invocation must copy it.
type Block struct {
	Data []byte
}

// BlockFunc is invoked once per delivered block, from whatever goroutine
// the adapter uses internally. Spec §5: the coordinator must treat that
// goroutine as the sole writer of decoder state for the duration of the
// call, and must not retain concurrent access to decoder state from any
// other goroutine.
type BlockFunc func(Block) (stop bool)

// Adapter is the common contract every sample source satisfies: repeatedly
// deliver blocks until EOF, cancellation, or the callback requests a stop,
// honoring ctx cancellation at block boundaries (spec §5 "Cancellation").
type Adapter interface {
	Run(ctx context.Context, onBlock BlockFunc) error
}
