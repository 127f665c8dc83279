package oto

import (
	"context"
	"encoding/binary"
	"io"
	"math"

	"github.com/ausculsound/serialaudio/pkg/audio/blocker"
	"github.com/ausculsound/serialaudio/pkg/audio/types"
)

// blockReader turns the pull-by-bytes model of oto into one FillBlock call
// per block. Only whole frames are returned.
type blockReader struct {
	ctx       context.Context
	blocker   *blocker.Blocker
	channels  int
	frameSize int
	samples   []float32
}

var _ io.Reader = (*blockReader)(nil)

func newBlockReader(
	ctx context.Context,
	params types.CallbackParams,
	filler types.BlockFiller,
) *blockReader {
	return &blockReader{
		ctx:       ctx,
		blocker:   blocker.New(params, filler),
		channels:  int(params.Channels),
		frameSize: int(params.Channels) * 4,
	}
}

func (r *blockReader) Read(p []byte) (int, error) {
	if err := r.ctx.Err(); err != nil {
		return 0, io.EOF
	}
	frames := len(p) / r.frameSize
	if frames == 0 {
		return 0, io.ErrShortBuffer
	}
	if cap(r.samples) < frames*r.channels {
		r.samples = make([]float32, frames*r.channels)
	}
	samples := r.samples[:frames*r.channels]
	r.blocker.Fill(r.ctx, samples, 0)
	for idx, v := range samples {
		binary.LittleEndian.PutUint32(p[idx*4:], math.Float32bits(v))
	}
	return len(samples) * 4, nil
}
