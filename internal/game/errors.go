package game

import "errors"

var (
	ErrPlayerNotFound     = errors.New("player not found")
	ErrPlayerOnline       = errors.New("player is already online")
	ErrNotPlaying         = errors.New("player is not in the maze")
	ErrUnknownEntity      = errors.New("unknown entity type")
	ErrInvalidDirection   = errors.New("invalid exit direction")
	ErrInvalidDestination = errors.New("invalid destination")
	ErrNoExit             = errors.New("no exit in that direction")
	ErrNoSpawnRoom        = errors.New("no room available to spawn into")
	ErrOccupancyViolation = errors.New("occupancy invariant violated")
)
