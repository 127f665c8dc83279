package audio

import (
	"github.com/ausculsound/serialaudio/pkg/audio/types"
)

type (
	SampleRate      = types.SampleRate
	Channel         = types.Channel
	PCMFormat       = types.PCMFormat
	Encoding        = types.Encoding
	EncodingPCM     = types.EncodingPCM
	Status          = types.Status
	BlockFiller     = types.BlockFiller
	BlockFillerFunc = types.BlockFillerFunc
	CallbackParams  = types.CallbackParams
	PlayerPCM       = types.PlayerPCM
	Stream          = types.Stream
	PlayStream      = types.PlayStream
)

const (
	PCMFormatU8        = types.PCMFormatU8
	PCMFormatS16LE     = types.PCMFormatS16LE
	PCMFormatU12LE     = types.PCMFormatU12LE
	PCMFormatS32LE     = types.PCMFormatS32LE
	PCMFormatFloat32LE = types.PCMFormatFloat32LE
	PCMFormatFloat64LE = types.PCMFormatFloat64LE
)
