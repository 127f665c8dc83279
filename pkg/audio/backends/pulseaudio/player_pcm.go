package pulseaudio

import (
	"context"
	"fmt"

	"github.com/ausculsound/serialaudio/pkg/audio/blocker"
	"github.com/ausculsound/serialaudio/pkg/audio/types"
	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/jfreymuth/pulse"
	"github.com/jfreymuth/pulse/proto"
)

type PlayerPCM struct {
	PulseClient *pulse.Client
}

var _ types.PlayerPCM = (*PlayerPCM)(nil)

func NewPlayerPCM() (*PlayerPCM, error) {
	c, err := pulse.NewClient(pulse.ClientApplicationName("serialaudio"))
	if err != nil {
		return nil, fmt.Errorf("unable to open a client to Pulse: %w", err)
	}
	return &PlayerPCM{
		PulseClient: c,
	}, nil
}

func (p *PlayerPCM) Close() error {
	p.PulseClient.Close()
	return nil
}

func (p *PlayerPCM) Ping(ctx context.Context) error {
	sink, err := p.PulseClient.DefaultSink()
	if err != nil {
		return err
	}
	logger.Debugf(ctx, "default sink: %s", sink.Name())
	return nil
}

func channelMap(channels types.Channel) (proto.ChannelMap, error) {
	switch channels {
	case 1:
		return proto.ChannelMap{proto.ChannelMono}, nil
	case 2:
		return proto.ChannelMap{proto.ChannelLeft, proto.ChannelRight}, nil
	default:
		return nil, fmt.Errorf("do not know how to configure %d channels", channels)
	}
}

func (p *PlayerPCM) PlayCallback(
	ctx context.Context,
	params types.CallbackParams,
	filler types.BlockFiller,
) (_ types.PlayStream, _err error) {
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid callback parameters: %w", err)
	}
	chanMap, err := channelMap(params.Channels)
	if err != nil {
		return nil, err
	}

	s := &PlayStream{}
	ctx, s.CancelFunc = context.WithCancel(ctx)
	reader := newFloat32Reader(ctx, blocker.New(params, filler), s.status)

	stream, err := p.PulseClient.NewPlayback(
		reader,
		pulse.PlaybackSampleRate(int(params.SampleRate)),
		pulse.PlaybackChannels(chanMap),
		pulse.PlaybackBufferSize(bufferSize(params)),
	)
	if err != nil {
		s.CancelFunc()
		return nil, fmt.Errorf("unable to initialize a playback: %w", err)
	}
	s.setPlaybackStream(stream)

	stream.Start()
	if stream.Error() != nil {
		s.Close()
		return nil, fmt.Errorf("an error occurred during playback: %w", stream.Error())
	}

	return s, nil
}

// Pulse asks for arbitrary amounts of samples, so the requests are served
// from whole blocks.
func newFloat32Reader(
	ctx context.Context,
	b *blocker.Blocker,
	status func() types.Status,
) pulse.Float32Reader {
	return func(out []float32) (int, error) {
		if ctx.Err() != nil {
			return 0, pulse.EndOfData
		}
		return b.Fill(ctx, out, status()), nil
	}
}

// bufferSize is one block, in samples of all channels.
func bufferSize(params types.CallbackParams) int {
	return params.BlockSamples * int(params.Channels)
}
