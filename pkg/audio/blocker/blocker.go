// Package blocker adapts engines that ask for arbitrary amounts of samples
// to a BlockFiller that must be called exactly once per block.
package blocker

import (
	"context"

	"github.com/ausculsound/serialaudio/pkg/audio/types"
)

type Blocker struct {
	Filler types.BlockFiller

	block   []float32
	pending []float32
	calls   uint64
}

func New(
	params types.CallbackParams,
	filler types.BlockFiller,
) *Blocker {
	return &Blocker{
		Filler: filler,
		block:  make([]float32, params.BlockSamples*int(params.Channels)),
	}
}

// Fill fills the whole `out` with interleaved samples. The rest of the last
// requested block is kept for the next call.
func (b *Blocker) Fill(
	ctx context.Context,
	out []float32,
	status types.Status,
) int {
	written := 0
	for written < len(out) {
		if len(b.pending) == 0 {
			b.Filler.FillBlock(ctx, b.block, status)
			status = 0
			b.calls++
			b.pending = b.block
		}
		n := copy(out[written:], b.pending)
		b.pending = b.pending[n:]
		written += n
	}
	return written
}

// Calls returns how many times the filler was called so far.
func (b *Blocker) Calls() uint64 {
	return b.calls
}
