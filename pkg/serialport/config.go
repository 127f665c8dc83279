package serialport

import (
	"fmt"
	"time"
)

const (
	DefaultName        = "/dev/ttyACM0"
	DefaultBaudRate    = 921600
	DefaultReadTimeout = 100 * time.Millisecond

	// DefaultSettleDelay is how long to wait after opening before the input
	// buffer is flushed; the firmware prints a banner on connect.
	DefaultSettleDelay = 500 * time.Millisecond
)

type Config struct {
	Name        string
	BaudRate    int
	ReadTimeout time.Duration
	SettleDelay time.Duration
}

func DefaultConfig() Config {
	return Config{
		Name:        DefaultName,
		BaudRate:    DefaultBaudRate,
		ReadTimeout: DefaultReadTimeout,
		SettleDelay: DefaultSettleDelay,
	}
}

func (cfg Config) Validate() error {
	if cfg.Name == "" {
		return fmt.Errorf("serial port name is not set")
	}
	if cfg.BaudRate <= 0 {
		return fmt.Errorf("baud rate must be positive, got %d", cfg.BaudRate)
	}
	if cfg.ReadTimeout < 0 {
		return fmt.Errorf("read timeout must not be negative, got %v", cfg.ReadTimeout)
	}
	if cfg.SettleDelay < 0 {
		return fmt.Errorf("settle delay must not be negative, got %v", cfg.SettleDelay)
	}
	return nil
}
