package audio

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ausculsound/serialaudio/pkg/audio/types"
	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/xaionaro-go/observability"
)

// PlayerPCMDummy discards the audio, but still calls the filler once per
// block period, the way a real device would.
type PlayerPCMDummy struct {
	// Period overrides the block period derived from the sample rate; used in tests.
	Period time.Duration
}

var _ PlayerPCM = (*PlayerPCMDummy)(nil)

func NewPlayerPCMDummy() *PlayerPCMDummy {
	return &PlayerPCMDummy{}
}

func (*PlayerPCMDummy) Close() error {
	return nil
}

func (*PlayerPCMDummy) Ping(context.Context) error {
	return nil
}

func (p *PlayerPCMDummy) PlayCallback(
	ctx context.Context,
	params CallbackParams,
	filler BlockFiller,
) (PlayStream, error) {
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid callback parameters: %w", err)
	}
	period := p.Period
	if period <= 0 {
		period = types.BlockDuration(params.SampleRate, params.BlockSamples)
	}

	ctx, cancelFn := context.WithCancel(ctx)
	s := &StreamDummy{
		CancelFunc: cancelFn,
	}
	buf := make([]float32, params.BlockSamples*int(params.Channels))
	s.WaitGroup.Add(1)
	observability.Go(ctx, func() {
		defer s.WaitGroup.Done()
		logger.Debugf(ctx, "dummy output loop, period %v", period)
		defer logger.Debugf(ctx, "/dummy output loop")
		t := time.NewTicker(period)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
			}
			s.Callbacks.Add(1)
			filler.FillBlock(ctx, buf, 0)
		}
	})
	return s, nil
}

type StreamDummy struct {
	CancelFunc context.CancelFunc
	WaitGroup  sync.WaitGroup
	Callbacks  atomic.Uint64
	closed     atomic.Bool
}

var _ PlayStream = (*StreamDummy)(nil)

func (s *StreamDummy) Drain() error {
	s.WaitGroup.Wait()
	return nil
}

func (s *StreamDummy) Close() error {
	if s.CancelFunc != nil {
		s.CancelFunc()
	}
	s.WaitGroup.Wait()
	s.closed.Store(true)
	return nil
}

func (s *StreamDummy) Closed() bool {
	return s.closed.Load()
}
