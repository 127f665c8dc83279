// Package pcm converts raw PCM words received from a microcontroller into
// normalized float32 samples (and back).
package pcm

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/ausculsound/serialaudio/pkg/audio/types"
)

const (
	// FullScale is the divisor that maps a signed 16-bit sample to [-1, 1).
	FullScale = 32768.0

	ADCResolutionBits = 12
	ADCMidpoint       = 1 << (ADCResolutionBits - 1)
	ADCMax            = 1<<ADCResolutionBits - 1
	ADCToPCMShift     = 16 - ADCResolutionBits

	BytesPerWord = 2
)

func S16ToFloat32(v int16) float32 {
	return float32(v) / FullScale
}

// U12ToS16 centers an unsigned 12-bit ADC reading at zero and scales it to
// the signed 16-bit range. Words above the 12-bit range saturate to ADCMax.
func U12ToS16(v uint16) int16 {
	if v > ADCMax {
		v = ADCMax
	}
	return int16((int32(v) - ADCMidpoint) << ADCToPCMShift)
}

func U12ToFloat32(v uint16) float32 {
	return S16ToFloat32(U12ToS16(v))
}

func Float32ToS16(v float32) int16 {
	scaled := math.Round(float64(v) * FullScale)
	switch {
	case scaled > math.MaxInt16:
		return math.MaxInt16
	case scaled < math.MinInt16:
		return math.MinInt16
	}
	return int16(scaled)
}

func Float32ToU12(v float32) uint16 {
	step := float64(int32(1) << ADCToPCMShift)
	centered := math.Round(float64(v) * FullScale / step)
	word := centered + ADCMidpoint
	switch {
	case word > ADCMax:
		return ADCMax
	case word < 0:
		return 0
	}
	return uint16(word)
}

// QuantizationStep returns the distance between two adjacent decoded values.
func QuantizationStep(format types.PCMFormat) (float32, error) {
	switch format {
	case types.PCMFormatS16LE:
		return 1 / FullScale, nil
	case types.PCMFormatU12LE:
		return (1 << ADCToPCMShift) / FullScale, nil
	default:
		return 0, fmt.Errorf("unsupported sample format: %s", format)
	}
}

func DecodeS16LE(dst []float32, raw []byte) int {
	n := min(len(dst), len(raw)/BytesPerWord)
	for idx := 0; idx < n; idx++ {
		dst[idx] = S16ToFloat32(int16(binary.LittleEndian.Uint16(raw[idx*BytesPerWord:])))
	}
	return n
}

func DecodeU12LE(dst []float32, raw []byte) int {
	n := min(len(dst), len(raw)/BytesPerWord)
	for idx := 0; idx < n; idx++ {
		dst[idx] = U12ToFloat32(binary.LittleEndian.Uint16(raw[idx*BytesPerWord:]))
	}
	return n
}

// Decode converts up to len(dst) little-endian words from `raw` into
// normalized samples, and returns how many were written.
func Decode(format types.PCMFormat, dst []float32, raw []byte) (int, error) {
	switch format {
	case types.PCMFormatS16LE:
		return DecodeS16LE(dst, raw), nil
	case types.PCMFormatU12LE:
		return DecodeU12LE(dst, raw), nil
	default:
		return 0, fmt.Errorf("unsupported sample format: %s", format)
	}
}

func EncodeS16LE(dst []byte, samples []float32) int {
	n := min(len(samples), len(dst)/BytesPerWord)
	for idx := 0; idx < n; idx++ {
		binary.LittleEndian.PutUint16(dst[idx*BytesPerWord:], uint16(Float32ToS16(samples[idx])))
	}
	return n * BytesPerWord
}

func EncodeU12LE(dst []byte, samples []float32) int {
	n := min(len(samples), len(dst)/BytesPerWord)
	for idx := 0; idx < n; idx++ {
		binary.LittleEndian.PutUint16(dst[idx*BytesPerWord:], Float32ToU12(samples[idx]))
	}
	return n * BytesPerWord
}

// Encode is the inverse of Decode; it returns the amount of bytes written.
func Encode(format types.PCMFormat, dst []byte, samples []float32) (int, error) {
	switch format {
	case types.PCMFormatS16LE:
		return EncodeS16LE(dst, samples), nil
	case types.PCMFormatU12LE:
		return EncodeU12LE(dst, samples), nil
	default:
		return 0, fmt.Errorf("unsupported sample format: %s", format)
	}
}
