package game

import "time"

const (
	// MinPlayers is the minimum number of eligible players to start a match
	MinPlayers = 3

	// MaxRounds is the number of voting rounds before the impostor wins by default
	MaxRounds = 3

	// FriendPointsPerCorrectVote is awarded to each friend whose vote hit the impostor
	FriendPointsPerCorrectVote = 2

	// ImpostorPointsPerSurvivedRound is awarded to the impostor for each round survived
	ImpostorPointsPerSurvivedRound = 2

	// TargetScore is the exact score every winner converges to
	TargetScore = 10

	// SuddenDeathThreshold ends the match in the impostor's favor once the
	// active player count drops this low.
	SuddenDeathThreshold = 2

	// ImpostorExclusionWindow keeps recent impostors out of the next selections
	ImpostorExclusionWindow = 2

	// ImpostorHistoryCap bounds the rotation memory kept per room
	ImpostorHistoryCap = 10

	// HostCancelRecoveryDelay is how long a room stays in host_cancelled
	// before auto-transitioning back to lobby.
	HostCancelRecoveryDelay = 5 * time.Second

	// ClueTurnTimeout skips a silent player's clue turn in chat mode
	ClueTurnTimeout = 45 * time.Second

	// EmptyRoomGrace is how long an empty room lingers before destruction
	EmptyRoomGrace = 2 * time.Minute

	// RoomCodeLength is the length of generated room codes
	RoomCodeLength = 6

	// RoomCodeChars are the characters used for generating room codes (excluding ambiguous chars)
	RoomCodeChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)
