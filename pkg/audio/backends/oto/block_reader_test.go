package oto

import (
	"context"
	"encoding/binary"
	"io"
	"math"
	"testing"

	"github.com/ausculsound/serialaudio/pkg/audio/types"
	"github.com/stretchr/testify/require"
)

func TestBlockReader(t *testing.T) {
	calls := 0
	filler := types.BlockFillerFunc(func(_ context.Context, out []float32, _ types.Status) int {
		calls++
		for idx := range out {
			out[idx] = float32(calls*100 + idx)
		}
		return len(out)
	})
	ctx, cancel := context.WithCancel(context.Background())
	r := newBlockReader(ctx, types.CallbackParams{SampleRate: 8000, Channels: 1, BlockSamples: 4}, filler)
	sample := func(p []byte, idx int) float32 {
		return math.Float32frombits(binary.LittleEndian.Uint32(p[idx*4:]))
	}

	p := make([]byte, 11)
	n, err := r.Read(p)
	require.NoError(t, err)
	require.Equal(t, 8, n)
	require.Equal(t, 1, calls)
	require.Equal(t, float32(100), sample(p, 0))
	require.Equal(t, float32(101), sample(p, 1))

	p = make([]byte, 16)
	n, err = r.Read(p)
	require.NoError(t, err)
	require.Equal(t, 16, n)
	require.Equal(t, 2, calls)
	require.Equal(t, []float32{102, 103, 200, 201}, []float32{sample(p, 0), sample(p, 1), sample(p, 2), sample(p, 3)})

	n, err = r.Read(make([]byte, 3))
	require.ErrorIs(t, err, io.ErrShortBuffer)
	require.Zero(t, n)
	require.Equal(t, 2, calls)

	cancel()
	_, err = r.Read(p)
	require.ErrorIs(t, err, io.EOF)
}

func TestBlockReaderStereoWholeFrames(t *testing.T) {
	calls := 0
	filler := types.BlockFillerFunc(func(_ context.Context, out []float32, _ types.Status) int {
		calls++
		for idx := range out {
			out[idx] = float32(idx)
		}
		return len(out) / 2
	})
	r := newBlockReader(context.Background(), types.CallbackParams{SampleRate: 8000, Channels: 2, BlockSamples: 2}, filler)

	n, err := r.Read(make([]byte, 12))
	require.NoError(t, err)
	require.Equal(t, 8, n)
	require.Equal(t, 1, calls)

	_, err = r.Read(make([]byte, 7))
	require.ErrorIs(t, err, io.ErrShortBuffer)
}
