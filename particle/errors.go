package particle

import "errors"

var (
	// ErrWorldLocked is returned by mutations attempted while a step is running.
	ErrWorldLocked = errors.New("particle: world is locked")

	// ErrStaleHandle is returned when a handle's particle was destroyed.
	ErrStaleHandle = errors.New("particle: stale handle")

	// ErrParticleLimit is returned when Def.MaxCount particles already exist.
	ErrParticleLimit = errors.New("particle: particle limit reached")

	// ErrInternalGroupFlags is returned when callers pass system-reserved group flags.
	ErrInternalGroupFlags = errors.New("particle: internal group flags")

	// ErrIndexOutOfRange is returned for indices outside [0, Count()).
	ErrIndexOutOfRange = errors.New("particle: index out of range")
)
