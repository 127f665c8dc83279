package resampler

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"

	"github.com/ausculsound/serialaudio/pkg/audio/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func float32At(b []byte, idx int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b[idx*4:]))
}

func TestResampler(t *testing.T) {
	t.Run("Identity_S16LE_Mono_16000", func(t *testing.T) {
		inFmt := Format{
			Channels:   1,
			SampleRate: 16000,
			PCMFormat:  types.PCMFormatS16LE,
		}
		data := make([]byte, 200)
		for i := 0; i < 100; i++ {
			binary.LittleEndian.PutUint16(data[i*2:], uint16(int16(i*100-5000)))
		}
		r, err := NewResampler(inFmt, bytes.NewReader(data), inFmt)
		require.NoError(t, err)

		out := make([]byte, 200)
		n, err := r.Read(out)
		assert.NoError(t, err)
		assert.Equal(t, 200, n)
		assert.Equal(t, data, out)
	})

	t.Run("U12LE_to_Float32LE", func(t *testing.T) {
		inFmt := Format{
			Channels:   1,
			SampleRate: 8000,
			PCMFormat:  types.PCMFormatU12LE,
		}
		outFmt := Format{
			Channels:   1,
			SampleRate: 8000,
			PCMFormat:  types.PCMFormatFloat32LE,
		}
		data := []byte{0x00, 0x00, 0x00, 0x08, 0xff, 0x0f}
		r, err := NewResampler(inFmt, bytes.NewReader(data), outFmt)
		require.NoError(t, err)

		out := make([]byte, 3*4)
		n, err := r.Read(out)
		assert.NoError(t, err)
		assert.Equal(t, 12, n)
		assert.Equal(t, float32(-1), float32At(out, 0))
		assert.Equal(t, float32(0), float32At(out, 1))
		assert.InDelta(t, 1.0, float32At(out, 2), 0.001)
	})

	t.Run("Upsample_16000_Mono_to_48000_Stereo", func(t *testing.T) {
		inFmt := Format{
			Channels:   1,
			SampleRate: 16000,
			PCMFormat:  types.PCMFormatFloat32LE,
		}
		outFmt := Format{
			Channels:   2,
			SampleRate: 48000,
			PCMFormat:  types.PCMFormatFloat32LE,
		}
		in := make([]byte, 4*4)
		for i, v := range []float32{0.1, 0.2, 0.3, 0.4} {
			binary.LittleEndian.PutUint32(in[i*4:], math.Float32bits(v))
		}
		r, err := NewResampler(inFmt, bytes.NewReader(in), outFmt)
		require.NoError(t, err)

		out := make([]byte, 12*2*4)
		n, err := r.Read(out)
		assert.NoError(t, err)
		// the first input frame is emitted once, the following ones three times each
		expected := []float32{0.1, 0.2, 0.2, 0.2, 0.3, 0.3, 0.3, 0.4, 0.4, 0.4}
		require.Equal(t, len(expected)*2*4, n)
		for frame, v := range expected {
			assert.Equal(t, v, float32At(out, frame*2), "frame %d", frame)
			assert.Equal(t, v, float32At(out, frame*2+1), "frame %d", frame)
		}
	})

	t.Run("Downsample_16000_to_8000", func(t *testing.T) {
		inFmt := Format{
			Channels:   1,
			SampleRate: 16000,
			PCMFormat:  types.PCMFormatU8,
		}
		outFmt := Format{
			Channels:   1,
			SampleRate: 8000,
			PCMFormat:  types.PCMFormatU8,
		}
		data := make([]byte, 100)
		for i := range data {
			data[i] = byte(i)
		}
		r, err := NewResampler(inFmt, bytes.NewReader(data), outFmt)
		require.NoError(t, err)

		out := make([]byte, 50)
		n, err := r.Read(out)
		assert.NoError(t, err)
		assert.Equal(t, 50, n)
		assert.Equal(t, data[0], out[0])
		assert.Equal(t, data[2], out[1])
	})

	t.Run("Channels_Stereo_to_Mono", func(t *testing.T) {
		inFmt := Format{
			Channels:   2,
			SampleRate: 8000,
			PCMFormat:  types.PCMFormatU8,
		}
		outFmt := Format{
			Channels:   1,
			SampleRate: 8000,
			PCMFormat:  types.PCMFormatU8,
		}
		r, err := NewResampler(inFmt, bytes.NewReader([]byte{100, 200, 50, 150}), outFmt)
		require.NoError(t, err)

		out := make([]byte, 2)
		n, err := r.Read(out)
		assert.NoError(t, err)
		assert.Equal(t, 2, n)
		assert.Equal(t, []byte{150, 100}, out)
	})

	t.Run("Invalid", func(t *testing.T) {
		_, err := NewResampler(Format{Channels: 2, SampleRate: 8000, PCMFormat: types.PCMFormatU8}, nil, Format{Channels: 3, SampleRate: 8000, PCMFormat: types.PCMFormatU8})
		require.Error(t, err)
		_, err = NewResampler(Format{Channels: 1, SampleRate: 8000}, nil, Format{Channels: 1, SampleRate: 8000, PCMFormat: types.PCMFormatU8})
		require.Error(t, err)
	})
}
