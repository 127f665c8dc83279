package main

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ausculsound/serialaudio/pkg/audio/pcm"
	"github.com/ausculsound/serialaudio/pkg/audio/types"
	"github.com/ausculsound/serialaudio/pkg/streamer"
	"github.com/facebookincubator/go-belt"
	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/facebookincubator/go-belt/tool/logger/implementation/logrus"
	"github.com/spf13/pflag"
)

// beep writes a sine tone in the same wire format the firmware sends, paced
// at the real sample rate. Pipe it into a pseudo-terminal to feed
// serialaudio without the hardware:
//
//	beep | socat - pty,raw,link=/tmp/ttyV0
func main() {
	format := types.PCMFormatS16LE
	loggerLevel := logger.LevelWarning
	pflag.Var(&loggerLevel, "log-level", "Log level")
	pflag.Var(&format, "format", "sample format: s16le or u12le")
	frequency := pflag.Float64("frequency", 440, "tone frequency in Hz")
	amplitude := pflag.Float64("amplitude", 0.5, "tone amplitude in [0, 1]")
	sampleRate := pflag.Uint32("sample-rate", 0, "sample rate; 0 means the firmware's rate for the format")
	blockSamples := pflag.Int("block-samples", streamer.DefaultBlockSamples, "samples per block")
	duration := pflag.Duration("duration", 0, "stop after this long; 0 means until interrupted")
	pflag.Parse()

	l := logrus.Default().WithLevel(loggerLevel)
	ctx := logger.CtxWithLogger(context.Background(), l)
	logger.Default = func() logger.Logger {
		return l
	}
	defer belt.Flush(ctx)

	rate := types.SampleRate(*sampleRate)
	if rate == 0 {
		rate = streamer.DefaultSampleRate(format)
	}
	if *blockSamples <= 0 {
		panic(fmt.Errorf("block size must be positive, got %d", *blockSamples))
	}

	ctx, cancelFn := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancelFn()
	if *duration > 0 {
		ctx, cancelFn = context.WithTimeout(ctx, *duration)
		defer cancelFn()
	}

	err := writeTone(ctx, os.Stdout, format, rate, *blockSamples, *frequency, float32(*amplitude))
	if err != nil && ctx.Err() == nil {
		assertNoError(err)
	}
}

func writeTone(
	ctx context.Context,
	w io.Writer,
	format types.PCMFormat,
	sampleRate types.SampleRate,
	blockSamples int,
	frequency float64,
	amplitude float32,
) error {
	samples := make([]float32, blockSamples)
	raw := make([]byte, blockSamples*pcm.BytesPerWord)
	step := 2 * math.Pi * frequency / float64(sampleRate)
	phase := 0.0

	t := time.NewTicker(types.BlockDuration(sampleRate, blockSamples))
	defer t.Stop()
	for {
		for idx := range samples {
			samples[idx] = amplitude * float32(math.Sin(phase))
			phase = math.Mod(phase+step, 2*math.Pi)
		}
		n, err := pcm.Encode(format, raw, samples)
		if err != nil {
			return err
		}
		if _, err := w.Write(raw[:n]); err != nil {
			return fmt.Errorf("unable to write a block: %w", err)
		}
		logger.Tracef(ctx, "wrote a block of %d bytes", n)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}
}

func assertNoError(err error) {
	if err != nil {
		panic(err)
	}
}
