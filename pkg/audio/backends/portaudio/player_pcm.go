package portaudio

import (
	"context"
	"fmt"
	"sync"

	"github.com/ausculsound/serialaudio/pkg/audio/types"
	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/gordonklaus/portaudio"
)

type PlayerPCM struct {
	closeOnce sync.Once
}

var _ types.PlayerPCM = (*PlayerPCM)(nil)

func NewPlayerPCM() (*PlayerPCM, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, err
	}
	return &PlayerPCM{}, nil
}

func (p *PlayerPCM) Close() error {
	var err error
	p.closeOnce.Do(func() {
		err = portaudio.Terminate()
	})
	return err
}

func (*PlayerPCM) Ping(
	ctx context.Context,
) error {
	info, err := portaudio.DefaultOutputDevice()
	if err != nil {
		return err
	}
	logger.Debugf(ctx, "device info: %#+v", info)
	return nil
}

func (*PlayerPCM) PlayCallback(
	ctx context.Context,
	params types.CallbackParams,
	filler types.BlockFiller,
) (types.PlayStream, error) {
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid callback parameters: %w", err)
	}

	s, err := newPlayCallbackStream(ctx, params, filler)
	if err != nil {
		return nil, fmt.Errorf("unable to open an output stream: %w", err)
	}

	if err := s.init(ctx); err != nil {
		s.Close()
		return nil, fmt.Errorf("unable to post-initialize the stream: %w", err)
	}
	return s, nil
}
