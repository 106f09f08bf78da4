package scenes

import (
	"github.com/gonewx/gridworld/pkg/game"
)

// Scene is a type alias for game.Scene.
// All scene implementations should implement the game.Scene interface.
type Scene = game.Scene

var (
	_ Scene         = (*MapScene)(nil)
	_ game.Saveable = (*MapScene)(nil)
	_ game.Closer   = (*MapScene)(nil)
)
