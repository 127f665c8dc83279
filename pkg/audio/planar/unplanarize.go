package planar

import (
	"fmt"

	"github.com/ausculsound/serialaudio/pkg/audio/types"
)

// Unplanarize interleaves `input` (all samples of channel 0, then all
// samples of channel 1, ...) into `output` (frame by frame).
func Unplanarize[T any](channels types.Channel, output, input []T) error {
	if channels == 0 {
		return fmt.Errorf("channels count is zero")
	}
	if len(input)%int(channels) != 0 {
		return fmt.Errorf("expected an input length that is a multiple of %d, but received %d", channels, len(input))
	}
	if len(input) != len(output) {
		return fmt.Errorf("the lengths of input and output are not equal: %d != %d", len(input), len(output))
	}

	samplesPerChan := len(input) / int(channels)
	for ch := 0; ch < int(channels); ch++ {
		inOffset := ch * samplesPerChan
		for samplePos := 0; samplePos < samplesPerChan; samplePos++ {
			output[samplePos*int(channels)+ch] = input[inOffset+samplePos]
		}
	}

	return nil
}

// Planarize is the inverse of Unplanarize.
func Planarize[T any](channels types.Channel, output, input []T) error {
	if channels == 0 {
		return fmt.Errorf("channels count is zero")
	}
	if len(input)%int(channels) != 0 {
		return fmt.Errorf("expected an input length that is a multiple of %d, but received %d", channels, len(input))
	}
	if len(input) != len(output) {
		return fmt.Errorf("the lengths of input and output are not equal: %d != %d", len(input), len(output))
	}

	samplesPerChan := len(input) / int(channels)
	for ch := 0; ch < int(channels); ch++ {
		outOffset := ch * samplesPerChan
		for samplePos := 0; samplePos < samplesPerChan; samplePos++ {
			output[outOffset+samplePos] = input[samplePos*int(channels)+ch]
		}
	}

	return nil
}
