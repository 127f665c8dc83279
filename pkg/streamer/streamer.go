package streamer

import (
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ausculsound/serialaudio/pkg/audio/pcm"
	"github.com/ausculsound/serialaudio/pkg/audio/planar"
	"github.com/ausculsound/serialaudio/pkg/audio/types"
	"github.com/ausculsound/serialaudio/pkg/serialport"
	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/hashicorp/go-multierror"
	"github.com/xaionaro-go/datacounter"
	"github.com/xaionaro-go/observability"
)

type State int32

const (
	StateStreaming = State(iota)
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateStreaming:
		return "streaming"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("<unknown_state_%d>", int32(s))
	}
}

// Source is where the raw PCM blocks come from; normally a *serialport.Port.
type Source interface {
	io.ReadCloser
	Closed() bool
}

var _ Source = (*serialport.Port)(nil)

type Streamer struct {
	Config Config
	Source Source

	BlocksTotal atomic.Uint64
	ShortReads  atomic.Uint64

	counter    *datacounter.ReaderCounter
	rawBuf     []byte
	decodedBuf []float32
	planarBuf  []float32
	state      atomic.Int32

	streamLocker sync.Mutex
	stream       types.PlayStream

	closeOnce sync.Once
	closeErr  error
}

var _ types.BlockFiller = (*Streamer)(nil)

func New(
	cfg Config,
	source Source,
) (*Streamer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if cfg.StatsInterval <= 0 {
		cfg.StatsInterval = DefaultStatsInterval
	}
	return &Streamer{
		Config:     cfg,
		Source:     source,
		counter:    datacounter.NewReaderCounter(source),
		rawBuf:     make([]byte, cfg.BlockBytes()),
		decodedBuf: make([]float32, cfg.BlockSamples),
	}, nil
}

// Open opens the serial port described in cfg and returns a Streamer owning it.
func Open(
	ctx context.Context,
	cfg Config,
) (*Streamer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	port, err := serialport.Open(ctx, cfg.Port)
	if err != nil {
		return nil, err
	}
	s, err := New(cfg, port)
	if err != nil {
		port.Close()
		return nil, err
	}
	return s, nil
}

func (s *Streamer) State() State {
	return State(s.state.Load())
}

func (s *Streamer) Stream() types.PlayStream {
	s.streamLocker.Lock()
	defer s.streamLocker.Unlock()
	return s.stream
}

func (s *Streamer) BytesRead() uint64 {
	return s.counter.Count()
}

// FillBlock reads one block from the source and writes it into the first
// channel of `out`. It returns the amount of frames that got audio.
func (s *Streamer) FillBlock(
	ctx context.Context,
	out []float32,
	status types.Status,
) int {
	if status != 0 {
		logger.Warnf(ctx, "audio output status: %s", status)
	}
	if s.State() == StateStopped {
		clear(out)
		return 0
	}
	if s.Config.ShortReadPolicy == ShortReadZeroFill {
		clear(out)
	}

	n, err := serialport.ReadBlock(ctx, s.counter, s.rawBuf)
	s.BlocksTotal.Add(1)
	if err != nil || n != len(s.rawBuf) {
		s.ShortReads.Add(1)
		logger.Debugf(ctx, "short read: %d/%d bytes: %v", n, len(s.rawBuf), err)
		return 0
	}

	decoded, err := pcm.Decode(s.Config.Format, s.decodedBuf, s.rawBuf)
	if err != nil {
		logger.Errorf(ctx, "unable to decode a block: %v", err)
		return 0
	}

	return s.writeChannel0(ctx, out, s.decodedBuf[:decoded])
}

func (s *Streamer) writeChannel0(
	ctx context.Context,
	out []float32,
	samples []float32,
) int {
	channels := int(s.Config.Channels)
	framesOut := len(out) / channels
	frames := min(framesOut, len(samples))
	if channels == 1 {
		copy(out, samples[:frames])
		clear(out[frames:])
		return frames
	}

	size := framesOut * channels
	if cap(s.planarBuf) < size {
		s.planarBuf = make([]float32, size)
	}
	buf := s.planarBuf[:size]
	clear(buf)
	copy(buf, samples[:frames])
	if err := planar.Unplanarize(s.Config.Channels, out[:size], buf); err != nil {
		logger.Errorf(ctx, "unable to interleave the output: %v", err)
		return 0
	}
	return frames
}

// Run starts the playback on `player` and streams until ctx is cancelled.
// All resources are released before it returns.
func (s *Streamer) Run(
	ctx context.Context,
	player types.PlayerPCM,
) (_err error) {
	logger.Debugf(ctx, "Run")
	defer func() { logger.Debugf(ctx, "/Run: %v", _err) }()

	if s.State() == StateStopped {
		return fmt.Errorf("the streamer is already stopped")
	}

	stream, err := player.PlayCallback(ctx, s.Config.CallbackParams(), s)
	if err != nil {
		closeErr := s.Close()
		return multierror.Append(fmt.Errorf("unable to start the playback: %w", err), closeErr).ErrorOrNil()
	}
	s.streamLocker.Lock()
	s.stream = stream
	s.streamLocker.Unlock()
	if s.State() == StateStopped {
		// Close ran before the stream was stored, so it could not close it
		logger.Debugf(ctx, "stopped while the playback was starting")
		if err := stream.Close(); err != nil {
			return fmt.Errorf("unable to close the audio stream: %w", err)
		}
		return nil
	}

	statsCtx, statsCancel := context.WithCancel(ctx)
	defer statsCancel()
	observability.Go(statsCtx, func() {
		s.statsLoop(statsCtx)
	})

	<-ctx.Done()
	logger.Debugf(ctx, "interrupted: %v", ctx.Err())
	return s.Close()
}

func (s *Streamer) statsLoop(ctx context.Context) {
	logger.Tracef(ctx, "statsLoop")
	defer logger.Tracef(ctx, "/statsLoop")

	t := time.NewTicker(s.Config.StatsInterval)
	defer t.Stop()
	prevBytes := s.BytesRead()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
		bytesRead := s.BytesRead()
		logger.Debugf(ctx, "read %d bytes in %v; blocks: %d, short reads: %d",
			bytesRead-prevBytes, s.Config.StatsInterval, s.BlocksTotal.Load(), s.ShortReads.Load())
		prevBytes = bytesRead
	}
}

// Close moves the streamer to StateStopped and releases the serial source
// and the audio stream. It is safe to call more than once.
func (s *Streamer) Close() error {
	s.closeOnce.Do(func() {
		s.state.Store(int32(StateStopped))

		var mErr *multierror.Error
		if err := s.Source.Close(); err != nil {
			mErr = multierror.Append(mErr, fmt.Errorf("unable to close the serial source: %w", err))
		}
		if stream := s.Stream(); stream != nil {
			if err := stream.Close(); err != nil {
				mErr = multierror.Append(mErr, fmt.Errorf("unable to close the audio stream: %w", err))
			}
		}
		s.closeErr = mErr.ErrorOrNil()
	})
	return s.closeErr
}
