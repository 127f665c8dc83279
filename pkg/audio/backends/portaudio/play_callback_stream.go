package portaudio

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/ausculsound/serialaudio/pkg/audio/types"
	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/gordonklaus/portaudio"
	"github.com/xaionaro-go/observability"
)

type PlayCallbackStream struct {
	PortAudioStream *portaudio.Stream
	Filler          types.BlockFiller
	CancelFunc      context.CancelFunc
	WaitGroup       sync.WaitGroup

	callbackCtx context.Context
	closeOnce   sync.Once
	closeErr    error
	closed      atomic.Bool
}

func newPlayCallbackStream(
	ctx context.Context,
	params types.CallbackParams,
	filler types.BlockFiller,
) (*PlayCallbackStream, error) {
	logger.Debugf(ctx, "newPlayCallbackStream: %d Hz, %d ch, %d frames per buffer", params.SampleRate, params.Channels, params.BlockSamples)
	s := &PlayCallbackStream{
		Filler:      filler,
		callbackCtx: ctx,
	}
	stream, err := portaudio.OpenDefaultStream(
		0,
		int(params.Channels),
		float64(params.SampleRate),
		params.BlockSamples,
		s.callback,
	)
	if err != nil {
		return nil, err
	}
	s.PortAudioStream = stream
	return s, nil
}

// callback runs on a PortAudio-owned thread.
func (s *PlayCallbackStream) callback(
	out []float32,
	_ portaudio.StreamCallbackTimeInfo,
	flags portaudio.StreamCallbackFlags,
) {
	s.Filler.FillBlock(s.callbackCtx, out, statusFromFlags(flags))
}

func statusFromFlags(flags portaudio.StreamCallbackFlags) types.Status {
	var status types.Status
	if flags&portaudio.OutputUnderflow != 0 {
		status |= types.StatusOutputUnderflow
	}
	if flags&portaudio.OutputOverflow != 0 {
		status |= types.StatusOutputOverflow
	}
	if flags&portaudio.PrimingOutput != 0 {
		status |= types.StatusPrimingOutput
	}
	return status
}

func (s *PlayCallbackStream) init(
	ctx context.Context,
) error {
	ctx, s.CancelFunc = context.WithCancel(ctx)
	s.callbackCtx = ctx

	err := s.PortAudioStream.Start()
	if err != nil {
		return fmt.Errorf("unable to start the stream: %w", err)
	}

	s.WaitGroup.Add(1)
	observability.Go(ctx, func() {
		defer s.WaitGroup.Done()
		<-ctx.Done()
		s.Close()
	})
	return nil
}

func (s *PlayCallbackStream) Close() error {
	s.closeOnce.Do(func() {
		if s.CancelFunc != nil {
			s.CancelFunc()
		}
		logger.Tracef(s.callbackCtx, "Abort")
		err := s.PortAudioStream.Abort()
		logger.Tracef(s.callbackCtx, "/Abort: %v", err)
		if closeErr := s.PortAudioStream.Close(); err == nil {
			err = closeErr
		}
		s.closeErr = err
		s.closed.Store(true)
	})
	return s.closeErr
}

func (s *PlayCallbackStream) Closed() bool {
	return s.closed.Load()
}

func (s *PlayCallbackStream) Drain() error {
	s.WaitGroup.Wait()
	return nil
}
