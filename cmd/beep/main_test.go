package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/ausculsound/serialaudio/pkg/audio/pcm"
	"github.com/ausculsound/serialaudio/pkg/audio/types"
	"github.com/stretchr/testify/require"
)

func TestWriteTone(t *testing.T) {
	for _, format := range []types.PCMFormat{types.PCMFormatS16LE, types.PCMFormatU12LE} {
		t.Run(format.String(), func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			var buf bytes.Buffer
			// 8 samples per period at 1/8 of the rate
			err := writeTone(ctx, &buf, format, 8000, 16, 1000, 0.5)
			require.ErrorIs(t, err, context.Canceled)
			require.Equal(t, 16*pcm.BytesPerWord, buf.Len())

			samples := make([]float32, 16)
			n, err := pcm.Decode(format, samples, buf.Bytes())
			require.NoError(t, err)
			require.Equal(t, 16, n)

			step, err := pcm.QuantizationStep(format)
			require.NoError(t, err)
			require.InDelta(t, 0, samples[0], float64(step))
			require.InDelta(t, 0.5, samples[2], float64(step))
			require.InDelta(t, -0.5, samples[6], float64(step))
			require.InDelta(t, samples[2], samples[10], float64(step))
		})
	}
}
