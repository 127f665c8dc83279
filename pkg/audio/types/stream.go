package types

import (
	"io"
)

type Stream interface {
	io.Closer
	Closed() bool
}

type PlayStream interface {
	Stream
	Drain() error
}
