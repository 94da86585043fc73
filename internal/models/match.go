package models

import (
	"slices"
	"time"
)

// Match end reasons recorded in the analytics snapshot
const (
	EndCompleted      = "completed"
	EndHostCancelled  = "host_cancelled"
	EndServerShutdown = "server_shutdown"
)

// Match is one game instance: a single impostor, up to MaxRounds voting
// rounds. Created fresh on every start/playAgain, never reused.
type Match struct {
	ID       string
	RoomCode string
	HostID   string

	Phase        MatchPhase
	CurrentRound int
	MaxRounds    int

	ImpostorID     string
	SecretWord     string
	SecretCategory string

	// RoundPlayers is frozen for the match's lifetime: the eligibility
	// set for voting and elimination. Eliminated is always a subset.
	RoundPlayers []string
	PlayerOrder  []string
	Eliminated   []string

	Votes map[string]string

	// Chat mode clue state, reset every round
	Clues          []Clue
	ClueTurn       string
	CluesSubmitted map[string]bool

	RoundHistory []RoundHistoryEntry

	PlayerScores    map[string]int
	LastRoundScores map[string]int
	PlayerBonus     map[string]int
	CorrectVotes    map[string]int

	WinnerID                 string
	StartingPlayerID         string
	OriginalStartingPlayerID string
	// LastStartingPlayerID tracks whoever actually started the most
	// recent round; it becomes the room's rotation reference.
	LastStartingPlayerID string

	StartedAt time.Time
	EndReason string
}

// IsRoundPlayer reports whether uid belongs to the frozen eligibility set
func (m *Match) IsRoundPlayer(uid string) bool {
	return slices.Contains(m.RoundPlayers, uid)
}

// IsEliminated reports whether uid has been voted out or removed
func (m *Match) IsEliminated(uid string) bool {
	return slices.Contains(m.Eliminated, uid)
}

// ActivePlayers returns round players that are not eliminated, in
// RoundPlayers order.
func (m *Match) ActivePlayers() []string {
	active := make([]string, 0, len(m.RoundPlayers))
	for _, uid := range m.RoundPlayers {
		if !m.IsEliminated(uid) {
			active = append(active, uid)
		}
	}
	return active
}

// Eliminate adds uid to the eliminated set if eligible and not already out
func (m *Match) Eliminate(uid string) {
	if m.IsRoundPlayer(uid) && !m.IsEliminated(uid) {
		m.Eliminated = append(m.Eliminated, uid)
	}
}
