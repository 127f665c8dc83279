package registry

import (
	"testing"

	"github.com/ausculsound/serialaudio/pkg/audio/types"
	"github.com/stretchr/testify/require"
)

type lowFactory struct{}

func (lowFactory) NewPlayerPCM() (types.PlayerPCM, error) { return nil, nil }

type highFactory struct{}

func (*highFactory) NewPlayerPCM() (types.PlayerPCM, error) { return nil, nil }

func TestPlayerFactories(t *testing.T) {
	RegisterPlayerFactory(1, lowFactory{})
	RegisterPlayerFactory(1000, &highFactory{})
	defer UnregisterPlayerFactory(lowFactory{})
	defer UnregisterPlayerFactory(&highFactory{})

	factories := PlayerFactories()
	require.Len(t, factories, 2)
	require.IsType(t, &highFactory{}, factories[0])
	require.IsType(t, lowFactory{}, factories[1])

	require.Panics(t, func() {
		RegisterPlayerFactory(5, &lowFactory{})
	})
}
