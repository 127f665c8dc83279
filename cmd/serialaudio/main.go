package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ausculsound/serialaudio/pkg/audio"
	_ "github.com/ausculsound/serialaudio/pkg/audio/backends/oto"
	_ "github.com/ausculsound/serialaudio/pkg/audio/backends/portaudio"
	_ "github.com/ausculsound/serialaudio/pkg/audio/backends/pulseaudio"
	"github.com/ausculsound/serialaudio/pkg/audio/types"
	"github.com/ausculsound/serialaudio/pkg/serialport"
	"github.com/ausculsound/serialaudio/pkg/streamer"
	"github.com/facebookincubator/go-belt"
	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/facebookincubator/go-belt/tool/logger/implementation/logrus"
	"github.com/spf13/pflag"
)

func main() {
	cfg := streamer.DefaultConfig()

	loggerLevel := logger.LevelWarning
	pflag.Var(&loggerLevel, "log-level", "Log level")
	pflag.StringVar(&cfg.Port.Name, "port", cfg.Port.Name, "serial port to read the PCM stream from")
	pflag.IntVar(&cfg.Port.BaudRate, "baud-rate", cfg.Port.BaudRate, "serial baud rate")
	pflag.DurationVar(&cfg.Port.ReadTimeout, "read-timeout", cfg.Port.ReadTimeout, "serial read timeout (0 means block forever)")
	pflag.Var(&cfg.Format, "format", "sample format sent by the device: s16le or u12le")
	sampleRate := pflag.Uint32("sample-rate", 0, "output sample rate; 0 means the device's rate for the chosen format")
	pflag.IntVar(&cfg.BlockSamples, "block-samples", cfg.BlockSamples, "samples per serial block (must match the firmware)")
	pflag.Var(&cfg.ShortReadPolicy, "short-read", "what to play when a block is incomplete: zero or keep")
	listPorts := pflag.Bool("list-ports", false, "list available serial ports and exit")
	pflag.Parse()

	l := logrus.Default().WithLevel(loggerLevel)
	ctx := logger.CtxWithLogger(context.Background(), l)
	logger.Default = func() logger.Logger {
		return l
	}
	defer belt.Flush(ctx)

	if *listPorts {
		ports, err := serialport.ListPorts()
		assertNoError(err)
		for _, port := range ports {
			fmt.Println(port)
		}
		return
	}

	cfg.SampleRate = types.SampleRate(*sampleRate)
	if cfg.SampleRate == 0 {
		cfg.SampleRate = streamer.DefaultSampleRate(cfg.Format)
	}
	assertNoError(cfg.Validate())

	ctx, cancelFn := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancelFn()

	s, err := streamer.Open(ctx, cfg)
	assertNoError(err)
	defer s.Close()

	player := audio.NewPlayerAuto(ctx)
	defer player.Close()
	logger.Debugf(ctx, "using %T", player.PlayerPCM)

	fmt.Printf("Streaming audio from %s... Press Ctrl+C to stop.\n", cfg.Port.Name)
	assertNoError(s.Run(ctx, player))
	fmt.Println("Stopped.")
}

func assertNoError(err error) {
	if err != nil {
		panic(err)
	}
}
