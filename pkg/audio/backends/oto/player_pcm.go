package oto

import (
	"context"
	"fmt"
	"io"

	"github.com/ausculsound/serialaudio/pkg/audio/resampler"
	"github.com/ausculsound/serialaudio/pkg/audio/types"
	"github.com/ebitengine/oto/v3"
	"github.com/facebookincubator/go-belt/tool/logger"
)

type PlayerPCM struct {
	OtoCtx *oto.Context
}

var _ types.PlayerPCM = (*PlayerPCM)(nil)

func NewPlayerPCM() (*PlayerPCM, error) {
	otoCtx, err := getOtoContext()
	if err != nil {
		return nil, fmt.Errorf("unable to get an oto context: %w", err)
	}

	return &PlayerPCM{
		OtoCtx: otoCtx,
	}, nil
}

func (p *PlayerPCM) Close() error {
	return nil
}

func (*PlayerPCM) Ping(context.Context) error {
	// do not know how to do that, yet
	return nil
}

func (p *PlayerPCM) PlayCallback(
	ctx context.Context,
	params types.CallbackParams,
	filler types.BlockFiller,
) (types.PlayStream, error) {
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid callback parameters: %w", err)
	}

	ctx, cancelFn := context.WithCancel(ctx)
	var reader io.Reader = newBlockReader(ctx, params, filler)
	if params.SampleRate != SampleRate || params.Channels != Channels {
		inFmt := resampler.Format{
			Channels:   params.Channels,
			SampleRate: params.SampleRate,
			PCMFormat:  types.PCMFormatFloat32LE,
		}
		outFmt := resampler.Format{
			Channels:   Channels,
			SampleRate: SampleRate,
			PCMFormat:  Format,
		}
		var err error
		reader, err = resampler.NewResampler(inFmt, reader, outFmt)
		if err != nil {
			cancelFn()
			return nil, fmt.Errorf("unable to initialize a resampler from %#+v to %#+v: %w", inFmt, outFmt, err)
		}
		logger.Debugf(ctx, "resampling %#+v -> %#+v", inFmt, outFmt)
	}

	player := p.OtoCtx.NewPlayer(reader)
	player.Play()

	return newStream(player, cancelFn), nil
}
