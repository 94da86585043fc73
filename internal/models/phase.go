package models

// RoomPhase represents the lifecycle state of a room
type RoomPhase int

const (
	RoomLobby RoomPhase = iota
	RoomPlaying
	RoomGameOver
	RoomHostCancelled
)

// String returns the wire representation of the phase
func (p RoomPhase) String() string {
	switch p {
	case RoomLobby:
		return "lobby"
	case RoomPlaying:
		return "playing"
	case RoomGameOver:
		return "game_over"
	case RoomHostCancelled:
		return "host_cancelled"
	default:
		return "unknown"
	}
}

// MatchPhase represents the lifecycle state of a match
type MatchPhase int

const (
	MatchLobby MatchPhase = iota
	MatchClueRound
	MatchPlaying
	MatchRoundResult
	MatchGameOver
	MatchHostCancelled
)

// String returns the wire representation of the phase
func (p MatchPhase) String() string {
	switch p {
	case MatchLobby:
		return "lobby"
	case MatchClueRound:
		return "clue_round"
	case MatchPlaying:
		return "playing"
	case MatchRoundResult:
		return "round_result"
	case MatchGameOver:
		return "game_over"
	case MatchHostCancelled:
		return "host_cancelled"
	default:
		return "unknown"
	}
}

// InRound reports whether the match is inside an active round, i.e. a
// phase where votes or clues are still being collected.
func (p MatchPhase) InRound() bool {
	return p == MatchClueRound || p == MatchPlaying
}
