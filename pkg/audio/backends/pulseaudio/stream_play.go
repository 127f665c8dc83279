package pulseaudio

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/ausculsound/serialaudio/pkg/audio/types"
	"github.com/jfreymuth/pulse"
)

type PlayStream struct {
	*pulse.PlaybackStream
	CancelFunc context.CancelFunc

	playbackLocker sync.Mutex
	underflowSeen  bool
	closeOnce      sync.Once
	closeErr       error
	closed         atomic.Bool
}

// status reports an underflow once, on the first callback after Pulse
// started signalling it.
func (stream *PlayStream) status() types.Status {
	stream.playbackLocker.Lock()
	defer stream.playbackLocker.Unlock()
	if stream.PlaybackStream == nil || stream.underflowSeen {
		return 0
	}
	if !stream.PlaybackStream.Underflow() {
		return 0
	}
	stream.underflowSeen = true
	return types.StatusOutputUnderflow
}

func (stream *PlayStream) setPlaybackStream(ps *pulse.PlaybackStream) {
	stream.playbackLocker.Lock()
	defer stream.playbackLocker.Unlock()
	stream.PlaybackStream = ps
}

func (stream *PlayStream) Drain() error {
	stream.PlaybackStream.Drain()
	if stream.Error() != nil {
		return fmt.Errorf("an error occurred during playback: %w", stream.Error())
	}
	return nil
}

func (stream *PlayStream) Close() error {
	stream.closeOnce.Do(func() {
		defer func() {
			r := recover()
			if r != nil {
				stream.closeErr = fmt.Errorf("got a panic: %v", r)
			}
			stream.closed.Store(true)
		}()
		stream.CancelFunc()
		stream.PlaybackStream.Stop()
		stream.PlaybackStream.Close()
	})
	return stream.closeErr
}

func (stream *PlayStream) Closed() bool {
	return stream.closed.Load()
}
