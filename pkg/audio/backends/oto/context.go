package oto

import (
	"fmt"
	"sync"
	"time"

	"github.com/ausculsound/serialaudio/pkg/audio/types"
	"github.com/ebitengine/oto/v3"
)

// oto allows only one context per process, so the device format is fixed
// and everything else is resampled into it.
const (
	SampleRate = types.SampleRate(48000)
	Channels   = types.Channel(2)
	Format     = types.PCMFormatFloat32LE
	BufferSize = 100 * time.Millisecond
)

var (
	otoContext     *oto.Context
	otoContextErr  error
	otoContextOnce sync.Once
)

func getOtoContext() (*oto.Context, error) {
	otoContextOnce.Do(func() {
		ctx, readyChan, err := oto.NewContext(&oto.NewContextOptions{
			SampleRate:   int(SampleRate),
			ChannelCount: int(Channels),
			Format:       oto.FormatFloat32LE,
			BufferSize:   BufferSize,
		})
		if err != nil {
			otoContextErr = fmt.Errorf("unable to initialize an oto context: %w", err)
			return
		}
		<-readyChan
		otoContext = ctx
	})
	return otoContext, otoContextErr
}
