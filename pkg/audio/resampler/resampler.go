package resampler

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"sync"

	"github.com/ausculsound/serialaudio/pkg/audio/pcm"
	"github.com/ausculsound/serialaudio/pkg/audio/types"
)

const (
	distanceStep = 10000
)

type Format struct {
	Channels   types.Channel
	SampleRate types.SampleRate
	PCMFormat  types.PCMFormat
}

func (f Format) FrameSize() uint {
	return f.PCMFormat.Size() * uint(f.Channels)
}

func sampleToFloat64(f types.PCMFormat, p []byte) float64 {
	switch f {
	case types.PCMFormatU8:
		return (float64(p[0]) - 128) / 128
	case types.PCMFormatS16LE:
		return float64(pcm.S16ToFloat32(int16(binary.LittleEndian.Uint16(p))))
	case types.PCMFormatU12LE:
		return float64(pcm.U12ToFloat32(binary.LittleEndian.Uint16(p)))
	case types.PCMFormatS32LE:
		return float64(int32(binary.LittleEndian.Uint32(p))) / 2147483648
	case types.PCMFormatFloat32LE:
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(p)))
	case types.PCMFormatFloat64LE:
		return math.Float64frombits(binary.LittleEndian.Uint64(p))
	default:
		panic(fmt.Sprintf("unknown format: %v", f))
	}
}

func float64ToSample(f types.PCMFormat, p []byte, v float64) {
	switch f {
	case types.PCMFormatU8:
		p[0] = byte(math.Max(0, math.Min(255, math.Round(v*128+128))))
	case types.PCMFormatS16LE:
		binary.LittleEndian.PutUint16(p, uint16(pcm.Float32ToS16(float32(v))))
	case types.PCMFormatU12LE:
		binary.LittleEndian.PutUint16(p, pcm.Float32ToU12(float32(v)))
	case types.PCMFormatS32LE:
		binary.LittleEndian.PutUint32(p, uint32(int32(math.Max(math.MinInt32, math.Min(math.MaxInt32, math.Round(v*2147483648))))))
	case types.PCMFormatFloat32LE:
		binary.LittleEndian.PutUint32(p, math.Float32bits(float32(v)))
	case types.PCMFormatFloat64LE:
		binary.LittleEndian.PutUint64(p, math.Float64bits(v))
	default:
		panic(fmt.Sprintf("unknown format: %v", f))
	}
}

// Resampler is an io.Reader that converts the PCM read from `inReader`
// into another format, sample rate and/or channel layout. Rates are
// converted by nearest-sample picking (dropping or repeating frames);
// channels by averaging down to mono or duplicating mono.
type Resampler struct {
	inReader  io.Reader
	inFormat  Format
	outFormat Format
	locker    sync.Mutex
	buffer    []byte

	inSampleSize    uint
	outSampleSize   uint
	inNumAvg        uint
	outNumRepeat    uint
	outDistanceStep uint64
	inDistance      uint64
	outDistance     uint64
}

var _ io.Reader = (*Resampler)(nil)

func NewResampler(
	inFormat Format,
	inReader io.Reader,
	outFormat Format,
) (*Resampler, error) {
	r := &Resampler{
		inReader:  inReader,
		inFormat:  inFormat,
		outFormat: outFormat,
	}
	if err := r.init(); err != nil {
		return nil, fmt.Errorf("unable to initialize a resampler from %#+v to %#+v: %w", inFormat, outFormat, err)
	}
	return r, nil
}

func (r *Resampler) init() error {
	for _, f := range []Format{r.inFormat, r.outFormat} {
		if f.PCMFormat.Size() == 0 {
			return fmt.Errorf("unsupported PCM format %s", f.PCMFormat)
		}
		if f.Channels == 0 || f.SampleRate == 0 {
			return fmt.Errorf("channels and sample rate must be set: %#+v", f)
		}
	}
	r.inSampleSize = r.inFormat.PCMFormat.Size()
	r.outSampleSize = r.outFormat.PCMFormat.Size()

	r.inNumAvg = 1
	r.outNumRepeat = 1
	if r.inFormat.Channels != r.outFormat.Channels {
		switch {
		case r.inFormat.Channels == 1:
			r.outNumRepeat = uint(r.outFormat.Channels)
		case r.outFormat.Channels == 1:
			r.inNumAvg = uint(r.inFormat.Channels)
		default:
			return fmt.Errorf("do not know how to convert %d channels to %d", r.inFormat.Channels, r.outFormat.Channels)
		}
	}

	r.outDistanceStep = distanceStep * uint64(r.inFormat.SampleRate) / uint64(r.outFormat.SampleRate)
	r.inDistance = 0
	r.outDistance = 0
	return nil
}

func (r *Resampler) Read(p []byte) (int, error) {
	r.locker.Lock()
	defer r.locker.Unlock()

	inChunkSize := uint64(r.inSampleSize) * uint64(r.inNumAvg)
	outChunkSize := uint64(r.outSampleSize) * uint64(r.outNumRepeat)

	maxOutChunks := uint64(len(p)) / outChunkSize
	if maxOutChunks == 0 {
		return 0, nil
	}

	chunksToRead := maxOutChunks * uint64(r.inFormat.SampleRate) / uint64(r.outFormat.SampleRate)
	if chunksToRead == 0 {
		chunksToRead = 1
	}
	bytesToRead := int(chunksToRead * inChunkSize)
	if cap(r.buffer) < bytesToRead {
		r.buffer = make([]byte, bytesToRead)
	}
	r.buffer = r.buffer[:bytesToRead]

	n, err := r.inReader.Read(r.buffer)
	r.buffer = r.buffer[:n]
	if n > 0 && uint64(n)%inChunkSize != 0 {
		return 0, fmt.Errorf("read a number of bytes (%d) that is not a multiple of %d", n, inChunkSize)
	}
	chunksRead := uint64(n) / inChunkSize

	var dstChunkIdx, srcChunkIdx uint64
	for srcChunkIdx < chunksRead && dstChunkIdx < maxOutChunks {
		// skip input frames while the output lags behind
		for r.inDistance < r.outDistance && srcChunkIdx < chunksRead {
			srcChunkIdx++
			r.inDistance += distanceStep
		}
		if srcChunkIdx >= chunksRead {
			break
		}

		src := r.buffer[srcChunkIdx*inChunkSize:]
		var sum float64
		for ch := uint64(0); ch < uint64(r.inNumAvg); ch++ {
			sum += sampleToFloat64(r.inFormat.PCMFormat, src[ch*uint64(r.inSampleSize):])
		}
		val := sum / float64(r.inNumAvg)

		for dstChunkIdx < maxOutChunks && r.outDistance <= r.inDistance {
			dst := p[dstChunkIdx*outChunkSize:]
			for rep := uint64(0); rep < uint64(r.outNumRepeat); rep++ {
				float64ToSample(r.outFormat.PCMFormat, dst[rep*uint64(r.outSampleSize):], val)
			}
			dstChunkIdx++
			r.outDistance += r.outDistanceStep
		}

		srcChunkIdx++
		r.inDistance += distanceStep
	}

	return int(dstChunkIdx * outChunkSize), err
}
