package types

import (
	"fmt"
	"strings"
	"time"
)

type SampleRate uint32

type Channel uint32

type PCMFormat uint

const (
	PCMFormatUndefined = PCMFormat(iota)
	PCMFormatU8
	PCMFormatS16LE

	// PCMFormatU12LE is an unsigned 12-bit sample (0..4095) carried in
	// the low bits of a little-endian 16-bit word, as sent by MCU ADCs.
	PCMFormatU12LE
	PCMFormatS32LE
	PCMFormatFloat32LE
	PCMFormatFloat64LE
	EndOfPCMFormat
)

func (f PCMFormat) Size() uint {
	switch f {
	case PCMFormatU8:
		return 1
	case PCMFormatS16LE, PCMFormatU12LE:
		return 2
	case PCMFormatS32LE, PCMFormatFloat32LE:
		return 4
	case PCMFormatFloat64LE:
		return 8
	default:
		return 0
	}
}

func (f PCMFormat) String() string {
	switch f {
	case PCMFormatUndefined:
		return "<undefined>"
	case PCMFormatU8:
		return "u8"
	case PCMFormatS16LE:
		return "s16le"
	case PCMFormatU12LE:
		return "u12le"
	case PCMFormatS32LE:
		return "s32le"
	case PCMFormatFloat32LE:
		return "f32le"
	case PCMFormatFloat64LE:
		return "f64le"
	default:
		return fmt.Sprintf("<unknown_format_%d>", uint(f))
	}
}

func ParsePCMFormat(s string) (PCMFormat, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for f := PCMFormatUndefined + 1; f < EndOfPCMFormat; f++ {
		if f.String() == s {
			return f, nil
		}
	}
	return PCMFormatUndefined, fmt.Errorf("unknown PCM format '%s'", s)
}

// Set and Type make PCMFormat usable as a pflag.Value.
func (f *PCMFormat) Set(s string) error {
	v, err := ParsePCMFormat(s)
	if err != nil {
		return err
	}
	*f = v
	return nil
}

func (*PCMFormat) Type() string {
	return "pcm-format"
}

type Encoding interface {
	BytesPerSample() uint
	BytesForDuration(time.Duration) uint64
}

type EncodingPCM struct {
	PCMFormat  PCMFormat
	SampleRate SampleRate
}

var _ Encoding = EncodingPCM{}

func (e EncodingPCM) BytesPerSample() uint {
	return e.PCMFormat.Size()
}

func (e EncodingPCM) BytesForDuration(d time.Duration) uint64 {
	return uint64(d.Nanoseconds()) * uint64(e.SampleRate) / uint64(time.Second) * uint64(e.BytesPerSample())
}

// BlockDuration returns how long `samples` frames last at the given rate.
func BlockDuration(sampleRate SampleRate, samples int) time.Duration {
	if sampleRate == 0 {
		return 0
	}
	return time.Duration(samples) * time.Second / time.Duration(sampleRate)
}
