package types

import (
	"context"
	"fmt"
	"io"
)

// BlockFiller is invoked by an audio engine once per output period.
//
// `out` holds interleaved float32 frames of CallbackParams.Channels
// channels. The returned value is the amount of frames that carry audio;
// the rest of `out` is left as silence (or untouched, depending on the
// implementation).
type BlockFiller interface {
	FillBlock(ctx context.Context, out []float32, status Status) int
}

type BlockFillerFunc func(ctx context.Context, out []float32, status Status) int

func (fn BlockFillerFunc) FillBlock(ctx context.Context, out []float32, status Status) int {
	return fn(ctx, out, status)
}

type CallbackParams struct {
	SampleRate   SampleRate
	Channels     Channel
	BlockSamples int
}

func (p CallbackParams) Validate() error {
	if p.SampleRate == 0 {
		return fmt.Errorf("sample rate is not set")
	}
	if p.Channels == 0 {
		return fmt.Errorf("channels count is not set")
	}
	if p.BlockSamples <= 0 {
		return fmt.Errorf("block size must be positive, got %d", p.BlockSamples)
	}
	return nil
}

type PlayerPCM interface {
	io.Closer
	Ping(context.Context) error
	PlayCallback(
		ctx context.Context,
		params CallbackParams,
		filler BlockFiller,
	) (PlayStream, error)
}
