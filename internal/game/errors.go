package game

import "errors"

// User-attributable failures. They are reported back to the acting
// client only and never mutate room or match state.
var (
	ErrNotHost             = errors.New("action requires host privilege")
	ErrInsufficientPlayers = errors.New("not enough players")
	ErrInvalidVoteTarget   = errors.New("invalid vote target")
	ErrNotInRound          = errors.New("not part of the current round")
	ErrWrongPhase          = errors.New("action invalid in current phase")
	ErrRoomNotFound        = errors.New("room not found")
	ErrMatchNotFound       = errors.New("no active match")
	ErrNotAMember          = errors.New("not a member of this room")
	ErrNotYourTurn         = errors.New("not your clue turn")
)
