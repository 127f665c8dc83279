package oto

import (
	"github.com/ausculsound/serialaudio/pkg/audio/registry"
	"github.com/ausculsound/serialaudio/pkg/audio/types"
)

const (
	Priority = 50
)

func init() {
	registry.RegisterPlayerFactory(Priority, PlayerPCMOtoFactory{})
}

type PlayerPCMOtoFactory struct{}

func (PlayerPCMOtoFactory) NewPlayerPCM() (types.PlayerPCM, error) {
	return NewPlayerPCM()
}
