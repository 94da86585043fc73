package models

import "time"

// Player represents a player in a room. Identity is stable across
// reconnects; JoinedAt is the sole basis for deterministic ordering.
type Player struct {
	UID         string
	DisplayName string
	AvatarRef   string
	JoinedAt    time.Time

	// IsLateJoiner marks players who joined while a match was running.
	// They sit out the current match and are dealt in on the next one.
	IsLateJoiner bool

	// IsPlaying marks players participating in the current match.
	IsPlaying bool
}

// FormerPlayer retains display identity for players who left the room
// but still own scored history in the active match.
type FormerPlayer struct {
	DisplayName string
	AvatarRef   string
}
