package serialport

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/facebookincubator/go-belt/tool/logger"
	"go.bug.st/serial"
)

// Device is the subset of a serial port used for streaming.
type Device interface {
	io.ReadCloser
	ResetInputBuffer() error
}

var _ Device = (serial.Port)(nil)

type Port struct {
	Device
	Name string

	closeOnce sync.Once
	closeErr  error
	closedMu  sync.Mutex
	closed    bool
}

var _ Device = (*Port)(nil)

// NewPort wraps an already opened device.
func NewPort(name string, dev Device) *Port {
	return &Port{
		Device: dev,
		Name:   name,
	}
}

// Open opens the port in 8N1 mode, waits for the device to settle and
// drops whatever it has sent so far.
func Open(
	ctx context.Context,
	cfg Config,
) (_ret *Port, _err error) {
	logger.Debugf(ctx, "Open(%#+v)", cfg)
	defer func() { logger.Debugf(ctx, "/Open(%s): %v", cfg.Name, _err) }()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid serial config: %w", err)
	}

	dev, err := serial.Open(cfg.Name, &serial.Mode{
		BaudRate: cfg.BaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, fmt.Errorf("unable to open serial port '%s': %w", cfg.Name, err)
	}

	readTimeout := cfg.ReadTimeout
	if readTimeout == 0 {
		readTimeout = serial.NoTimeout
	}
	if err := dev.SetReadTimeout(readTimeout); err != nil {
		dev.Close()
		return nil, fmt.Errorf("unable to set the read timeout to %v: %w", readTimeout, err)
	}

	p := NewPort(cfg.Name, dev)
	if err := p.Settle(ctx, cfg.SettleDelay); err != nil {
		p.Close()
		return nil, err
	}
	return p, nil
}

func (p *Port) Settle(
	ctx context.Context,
	delay time.Duration,
) error {
	if delay > 0 {
		t := time.NewTimer(delay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}
	logger.Tracef(ctx, "ResetInputBuffer")
	err := p.Device.ResetInputBuffer()
	logger.Tracef(ctx, "/ResetInputBuffer: %v", err)
	if err != nil {
		return fmt.Errorf("unable to flush the input buffer of '%s': %w", p.Name, err)
	}
	return nil
}

func (p *Port) Close() error {
	p.closeOnce.Do(func() {
		p.closeErr = p.Device.Close()
		p.closedMu.Lock()
		defer p.closedMu.Unlock()
		p.closed = true
	})
	return p.closeErr
}

func (p *Port) Closed() bool {
	p.closedMu.Lock()
	defer p.closedMu.Unlock()
	return p.closed
}

func ListPorts() ([]string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("unable to enumerate serial ports: %w", err)
	}
	return ports, nil
}
