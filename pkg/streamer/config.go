package streamer

import (
	"fmt"
	"strings"
	"time"

	"github.com/ausculsound/serialaudio/pkg/audio/pcm"
	"github.com/ausculsound/serialaudio/pkg/audio/types"
	"github.com/ausculsound/serialaudio/pkg/serialport"
)

const (
	// DefaultBlockSamples must match NUM_SAMPLES of the firmware.
	DefaultBlockSamples  = 256
	DefaultChannels      = types.Channel(1)
	DefaultStatsInterval = time.Second
)

// ShortReadPolicy defines what the output buffer holds when a serial read
// did not deliver a complete block.
type ShortReadPolicy int

const (
	ShortReadUndefined = ShortReadPolicy(iota)

	// ShortReadZeroFill zeroes the buffer before every read.
	ShortReadZeroFill

	// ShortReadKeepPrevious leaves the buffer untouched on a short read,
	// so the engine replays whatever it holds from the previous period.
	ShortReadKeepPrevious
	EndOfShortReadPolicy
)

func (p ShortReadPolicy) String() string {
	switch p {
	case ShortReadUndefined:
		return "<undefined>"
	case ShortReadZeroFill:
		return "zero"
	case ShortReadKeepPrevious:
		return "keep"
	default:
		return fmt.Sprintf("<unknown_policy_%d>", int(p))
	}
}

func (p *ShortReadPolicy) Set(s string) error {
	s = strings.ToLower(strings.TrimSpace(s))
	for v := ShortReadUndefined + 1; v < EndOfShortReadPolicy; v++ {
		if v.String() == s {
			*p = v
			return nil
		}
	}
	return fmt.Errorf("unknown short read policy '%s'", s)
}

func (*ShortReadPolicy) Type() string {
	return "short-read-policy"
}

// DefaultSampleRate returns the rate the firmware streams the given format at.
func DefaultSampleRate(format types.PCMFormat) types.SampleRate {
	switch format {
	case types.PCMFormatU12LE:
		return 8000
	default:
		return 16000
	}
}

type Config struct {
	Port            serialport.Config
	Format          types.PCMFormat
	SampleRate      types.SampleRate
	BlockSamples    int
	Channels        types.Channel
	ShortReadPolicy ShortReadPolicy
	StatsInterval   time.Duration
}

func DefaultConfig() Config {
	return Config{
		Port:            serialport.DefaultConfig(),
		Format:          types.PCMFormatS16LE,
		SampleRate:      DefaultSampleRate(types.PCMFormatS16LE),
		BlockSamples:    DefaultBlockSamples,
		Channels:        DefaultChannels,
		ShortReadPolicy: ShortReadZeroFill,
		StatsInterval:   DefaultStatsInterval,
	}
}

func (cfg Config) Validate() error {
	if _, err := pcm.QuantizationStep(cfg.Format); err != nil {
		return err
	}
	if err := cfg.CallbackParams().Validate(); err != nil {
		return err
	}
	switch cfg.ShortReadPolicy {
	case ShortReadZeroFill, ShortReadKeepPrevious:
	default:
		return fmt.Errorf("invalid short read policy: %s", cfg.ShortReadPolicy)
	}
	return nil
}

func (cfg Config) BlockBytes() int {
	return cfg.BlockSamples * pcm.BytesPerWord
}

func (cfg Config) CallbackParams() types.CallbackParams {
	return types.CallbackParams{
		SampleRate:   cfg.SampleRate,
		Channels:     cfg.Channels,
		BlockSamples: cfg.BlockSamples,
	}
}
