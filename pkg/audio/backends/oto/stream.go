package oto

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ebitengine/oto/v3"
)

type PlayStream struct {
	Player     *oto.Player
	CancelFunc context.CancelFunc

	closeOnce sync.Once
	closeErr  error
	closed    atomic.Bool
}

func newStream(player *oto.Player, cancelFn context.CancelFunc) *PlayStream {
	return &PlayStream{
		Player:     player,
		CancelFunc: cancelFn,
	}
}

func (s *PlayStream) Drain() error {
	for s.Player.IsPlaying() {
		time.Sleep(BufferSize / 4)
	}
	return s.Player.Err()
}

func (s *PlayStream) Close() error {
	s.closeOnce.Do(func() {
		s.CancelFunc()
		s.closeErr = s.Player.Close()
		s.closed.Store(true)
	})
	return s.closeErr
}

func (s *PlayStream) Closed() bool {
	return s.closed.Load()
}
