package serialport

import (
	"context"
	"io"

	"github.com/facebookincubator/go-belt/tool/logger"
)

// ReadBlock fills `buf` from `r`, stopping early when a read returns no
// data (the port's read timeout expired) or fails. The amount of bytes
// actually read is returned; a value below len(buf) means the source
// underran and the block must not be decoded.
func ReadBlock(
	ctx context.Context,
	r io.Reader,
	buf []byte,
) (_ret int, _err error) {
	logger.Tracef(ctx, "ReadBlock, len:%d", len(buf))
	defer func() { logger.Tracef(ctx, "/ReadBlock, len:%d: %d %v", len(buf), _ret, _err) }()

	total := 0
	for total < len(buf) {
		n, err := r.Read(buf[total:])
		total += n
		if err != nil {
			return total, err
		}
		if n == 0 {
			return total, nil
		}
	}
	return total, nil
}
