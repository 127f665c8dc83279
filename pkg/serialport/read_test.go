package serialport

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type timeoutReader struct {
	chunks [][]byte
}

func (r *timeoutReader) Read(p []byte) (int, error) {
	if len(r.chunks) == 0 {
		return 0, nil
	}
	n := copy(p, r.chunks[0])
	r.chunks[0] = r.chunks[0][n:]
	if len(r.chunks[0]) == 0 {
		r.chunks = r.chunks[1:]
	}
	return n, nil
}

func TestReadBlock(t *testing.T) {
	ctx := context.Background()

	t.Run("full_block_from_fragments", func(t *testing.T) {
		src := []byte{1, 2, 3, 4, 5, 6, 7, 8}
		buf := make([]byte, 8)
		n, err := ReadBlock(ctx, iotest.OneByteReader(bytes.NewReader(src)), buf)
		require.NoError(t, err)
		require.Equal(t, 8, n)
		require.Equal(t, src, buf)
	})

	t.Run("does_not_read_past_block", func(t *testing.T) {
		r := bytes.NewReader([]byte{1, 2, 3, 4, 5, 6})
		buf := make([]byte, 4)
		n, err := ReadBlock(ctx, r, buf)
		require.NoError(t, err)
		require.Equal(t, 4, n)
		require.Equal(t, 2, r.Len())
	})

	t.Run("timeout_gives_short_read", func(t *testing.T) {
		r := &timeoutReader{chunks: [][]byte{{1, 2}, {3}}}
		buf := make([]byte, 8)
		n, err := ReadBlock(ctx, r, buf)
		require.NoError(t, err)
		require.Equal(t, 3, n)
		require.Equal(t, []byte{1, 2, 3}, buf[:n])
	})

	t.Run("error", func(t *testing.T) {
		n, err := ReadBlock(ctx, bytes.NewReader([]byte{1, 2}), make([]byte, 4))
		require.ErrorIs(t, err, io.EOF)
		require.Equal(t, 2, n)

		someErr := errors.New("boom")
		n, err = ReadBlock(ctx, iotest.ErrReader(someErr), make([]byte, 4))
		require.ErrorIs(t, err, someErr)
		require.Zero(t, n)
	})
}

type fakeDevice struct {
	io.Reader
	resets int
	closes int
}

func (d *fakeDevice) ResetInputBuffer() error {
	d.resets++
	return nil
}

func (d *fakeDevice) Close() error {
	d.closes++
	return nil
}

func TestPort(t *testing.T) {
	dev := &fakeDevice{Reader: bytes.NewReader(nil)}
	p := NewPort("fake", dev)

	require.NoError(t, p.Settle(context.Background(), 0))
	assert.Equal(t, 1, dev.resets)

	assert.False(t, p.Closed())
	require.NoError(t, p.Close())
	require.NoError(t, p.Close())
	assert.True(t, p.Closed())
	assert.Equal(t, 1, dev.closes)
}

func TestSettleCancelled(t *testing.T) {
	dev := &fakeDevice{Reader: bytes.NewReader(nil)}
	p := NewPort("fake", dev)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, p.Settle(ctx, DefaultSettleDelay), context.Canceled)
	assert.Zero(t, dev.resets)
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())

	cfg := DefaultConfig()
	cfg.Name = ""
	require.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.BaudRate = 0
	require.Error(t, cfg.Validate())
}
