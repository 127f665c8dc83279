package audio

import (
	"context"
	"fmt"
	"sync"

	"github.com/ausculsound/serialaudio/pkg/audio/registry"
	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/hashicorp/go-multierror"
)

type Player struct {
	PlayerPCM
}

func NewPlayer(playerPCM PlayerPCM) *Player {
	return &Player{
		PlayerPCM: playerPCM,
	}
}

var (
	lastSuccessfulPlayerFactory       registry.PlayerPCMFactory
	lastSuccessfulPlayerFactoryLocker sync.Mutex
)

func getLastSuccessfulPlayerFactory() registry.PlayerPCMFactory {
	lastSuccessfulPlayerFactoryLocker.Lock()
	defer lastSuccessfulPlayerFactoryLocker.Unlock()
	return lastSuccessfulPlayerFactory
}

func setLastSuccessfulPlayerFactory(factory registry.PlayerPCMFactory) {
	lastSuccessfulPlayerFactoryLocker.Lock()
	defer lastSuccessfulPlayerFactoryLocker.Unlock()
	lastSuccessfulPlayerFactory = factory
}

// NewPlayerAuto picks the first registered backend (by priority) that
// initializes and sees an output device. If none does, a paced dummy
// player is returned so the stream is still consumed.
func NewPlayerAuto(
	ctx context.Context,
) *Player {
	factory := getLastSuccessfulPlayerFactory()
	if factory != nil {
		player, err := factory.NewPlayerPCM()
		if err == nil {
			if err := player.Ping(ctx); err == nil {
				return NewPlayer(player)
			}
			player.Close()
		}
	}

	var mErr *multierror.Error
	for _, factory := range registry.PlayerFactories() {
		player, err := factory.NewPlayerPCM()
		logger.Debugf(ctx, "initializing player %T result is %v", factory, err)
		if err != nil {
			mErr = multierror.Append(mErr, fmt.Errorf("unable to initialize %T: %w", factory, err))
			continue
		}

		err = player.Ping(ctx)
		logger.Debugf(ctx, "pinging PCM player %T result is %v", player, err)
		if err != nil {
			mErr = multierror.Append(mErr, fmt.Errorf("unable to ping %T: %w", player, err))
			player.Close()
			continue
		}

		setLastSuccessfulPlayerFactory(factory)
		return NewPlayer(player)
	}

	logger.Warnf(ctx, "was unable to initialize any PCM player, audio will be discarded: %v", mErr.ErrorOrNil())
	return NewPlayer(NewPlayerPCMDummy())
}

func (p *Player) PlayCallback(
	ctx context.Context,
	params CallbackParams,
	filler BlockFiller,
) (PlayStream, error) {
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid callback parameters: %w", err)
	}
	return p.PlayerPCM.PlayCallback(ctx, params, filler)
}
