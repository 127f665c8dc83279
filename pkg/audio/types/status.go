package types

import (
	"strings"
)

// Status is the condition flag set the audio engine hands to a BlockFiller
// together with each output buffer.
type Status uint32

const (
	StatusOutputUnderflow Status = 1 << iota
	StatusOutputOverflow
	StatusPrimingOutput
)

func (s Status) String() string {
	if s == 0 {
		return "ok"
	}
	var parts []string
	if s&StatusOutputUnderflow != 0 {
		parts = append(parts, "output underflow")
	}
	if s&StatusOutputOverflow != 0 {
		parts = append(parts, "output overflow")
	}
	if s&StatusPrimingOutput != 0 {
		parts = append(parts, "priming output")
	}
	if rest := s &^ (StatusOutputUnderflow | StatusOutputOverflow | StatusPrimingOutput); rest != 0 {
		parts = append(parts, "unknown flags")
	}
	return strings.Join(parts, ", ")
}
