package game

import (
	"time"

	"github.com/impostor-party/server/internal/models"
)

// Player roles as seen by the player themselves
const (
	RoleImpostor = "impostor"
	RoleFriend   = "friend"
)

// PlayerSummary is the roster line every member sees
type PlayerSummary struct {
	UID          string `json:"uid"`
	Name         string `json:"name"`
	Avatar       string `json:"avatar,omitempty"`
	IsHost       bool   `json:"isHost"`
	IsLateJoiner bool   `json:"isLateJoiner"`
}

// MatchPlayerView is one player's line in the match scoreboard
type MatchPlayerView struct {
	UID            string `json:"uid"`
	Name           string `json:"name"`
	Score          int    `json:"score"`
	LastRoundScore int    `json:"lastRoundScore"`
	Bonus          int    `json:"bonus"`
	Eliminated     bool   `json:"eliminated"`
	HasVoted       bool   `json:"hasVoted"`
}

// MatchView is the role-redacted projection of the active match. The
// secret word is hidden from the impostor (category shown only with the
// hint option); other players' pending votes surface as counts only;
// impostor identity and the full audit trail unlock at game over.
type MatchView struct {
	ID        string `json:"id"`
	Phase     string `json:"phase"`
	Round     int    `json:"round"`
	MaxRounds int    `json:"maxRounds"`

	Players []MatchPlayerView `json:"players"`

	Role     string `json:"role,omitempty"`
	Word     string `json:"word,omitempty"`
	Category string `json:"category,omitempty"`

	YourVote    string `json:"yourVote,omitempty"`
	VotesCast   int    `json:"votesCast"`
	VotesNeeded int    `json:"votesNeeded"`

	StartingPlayerID string        `json:"startingPlayerId,omitempty"`
	ClueTurn         string        `json:"clueTurn,omitempty"`
	Clues            []models.Clue `json:"clues,omitempty"`

	LastRound *models.RoundHistoryEntry `json:"lastRound,omitempty"`

	WinnerID     string                     `json:"winnerId,omitempty"`
	ImpostorID   string                     `json:"impostorId,omitempty"`
	RoundHistory []models.RoundHistoryEntry `json:"roundHistory,omitempty"`
}

// RoomView is the full per-player projection pushed to clients. It is
// always derivable on demand; delta events are an optimization on top.
type RoomView struct {
	RoomCode string             `json:"roomCode"`
	Phase    string             `json:"phase"`
	HostID   string             `json:"hostId"`
	You      string             `json:"you"`
	Options  models.RoomOptions `json:"options"`
	Players  []PlayerSummary    `json:"players"`

	// LobbyWait is set for late joiners watching a match they are not in
	LobbyWait bool `json:"lobbyWait,omitempty"`

	Match *MatchView `json:"match,omitempty"`
}

// GetStateFor projects the room for one player
func (rc *RoomController) GetStateFor(uid string) (RoomView, error) {
	room := rc.room
	room.RLock()
	defer room.RUnlock()

	viewer, ok := room.Players[uid]
	if !ok {
		return RoomView{}, ErrNotAMember
	}

	view := RoomView{
		RoomCode: room.Code,
		Phase:    room.Phase.String(),
		HostID:   room.HostID,
		You:      uid,
		Options:  room.Options,
	}
	for _, p := range room.OrderedPlayers() {
		view.Players = append(view.Players, PlayerSummary{
			UID:          p.UID,
			Name:         p.DisplayName,
			Avatar:       p.AvatarRef,
			IsHost:       p.UID == room.HostID,
			IsLateJoiner: p.IsLateJoiner,
		})
	}

	if rc.match == nil {
		return view, nil
	}
	m := rc.match.Match()

	// Late joiners (and players who left the match) wait in the lobby
	// rather than watching the live match.
	if room.Phase == models.RoomPlaying && !viewer.IsPlaying {
		view.LobbyWait = true
		return view, nil
	}

	view.Match = rc.matchViewLocked(m, uid)
	return view, nil
}

// matchViewLocked builds the redacted match projection (room lock held)
func (rc *RoomController) matchViewLocked(m *models.Match, uid string) *MatchView {
	room := rc.room
	over := m.Phase == models.MatchGameOver

	mv := &MatchView{
		ID:               m.ID,
		Phase:            m.Phase.String(),
		Round:            m.CurrentRound,
		MaxRounds:        m.MaxRounds,
		StartingPlayerID: m.StartingPlayerID,
		ClueTurn:         m.ClueTurn,
		Clues:            m.Clues,
		VotesCast:        len(m.Votes),
		VotesNeeded:      len(m.ActivePlayers()),
		YourVote:         m.Votes[uid],
	}

	for _, id := range m.RoundPlayers {
		_, voted := m.Votes[id]
		mv.Players = append(mv.Players, MatchPlayerView{
			UID:            id,
			Name:           room.DisplayName(id),
			Score:          m.PlayerScores[id],
			LastRoundScore: m.LastRoundScores[id],
			Bonus:          m.PlayerBonus[id],
			Eliminated:     m.IsEliminated(id),
			HasVoted:       voted,
		})
	}

	if m.IsRoundPlayer(uid) {
		if uid == m.ImpostorID {
			mv.Role = RoleImpostor
			if room.Options.ShowImpostorHint {
				mv.Category = m.SecretCategory
			}
		} else {
			mv.Role = RoleFriend
			mv.Word = m.SecretWord
			mv.Category = m.SecretCategory
		}
	}

	if len(m.RoundHistory) > 0 && (m.Phase == models.MatchRoundResult || over) {
		last := m.RoundHistory[len(m.RoundHistory)-1]
		mv.LastRound = &last
	}

	if over {
		mv.WinnerID = m.WinnerID
		mv.ImpostorID = m.ImpostorID
		mv.Word = m.SecretWord
		mv.Category = m.SecretCategory
		mv.RoundHistory = m.RoundHistory
	}

	return mv
}

// RoomSnapshot is the persisted shape of a room
type RoomSnapshot struct {
	Code      string             `json:"code"`
	HostID    string             `json:"hostId"`
	Options   models.RoomOptions `json:"options"`
	Phase     string             `json:"phase"`
	Active    bool               `json:"active"`
	Players   int                `json:"players"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

// MatchRecord is the persisted analytics shape of a finished match
type MatchRecord struct {
	MatchID      string                     `json:"matchId"`
	RoomCode     string                     `json:"roomCode"`
	ImpostorID   string                     `json:"impostorId"`
	WinnerID     string                     `json:"winnerId"`
	Scores       map[string]int             `json:"scores"`
	Names        map[string]string          `json:"names"`
	RoundHistory []models.RoundHistoryEntry `json:"roundHistory"`
	StartedAt    time.Time                  `json:"startedAt"`
	Duration     time.Duration              `json:"duration"`
	EndReason    string                     `json:"endReason"`
}

// Snapshot captures the room's persisted state
func (rc *RoomController) Snapshot() RoomSnapshot {
	room := rc.room
	room.RLock()
	defer room.RUnlock()
	return RoomSnapshot{
		Code:      room.Code,
		HostID:    room.HostID,
		Options:   room.Options,
		Phase:     room.Phase.String(),
		Active:    room.Phase == models.RoomPlaying,
		Players:   len(room.Players),
		UpdatedAt: time.Now(),
	}
}

// BuildMatchRecord assembles the analytics record (room lock held)
func BuildMatchRecord(room *models.Room, m *models.Match) MatchRecord {
	names := make(map[string]string, len(m.RoundPlayers))
	scores := make(map[string]int, len(m.RoundPlayers))
	for _, uid := range m.RoundPlayers {
		names[uid] = room.DisplayName(uid)
		scores[uid] = m.PlayerScores[uid]
	}
	return MatchRecord{
		MatchID:      m.ID,
		RoomCode:     m.RoomCode,
		ImpostorID:   m.ImpostorID,
		WinnerID:     m.WinnerID,
		Scores:       scores,
		Names:        names,
		RoundHistory: m.RoundHistory,
		StartedAt:    m.StartedAt,
		Duration:     time.Since(m.StartedAt),
		EndReason:    m.EndReason,
	}
}

// ShutdownRecord builds a final record for a match interrupted by a
// server shutdown. Returns false when no match is in flight.
func (rc *RoomController) ShutdownRecord() (MatchRecord, bool) {
	room := rc.room
	room.RLock()
	defer room.RUnlock()
	if rc.match == nil || rc.matchRecorded {
		return MatchRecord{}, false
	}
	m := rc.match.Match()
	if m.Phase == models.MatchGameOver || m.Phase == models.MatchHostCancelled {
		return MatchRecord{}, false
	}
	rec := BuildMatchRecord(room, m)
	rec.EndReason = models.EndServerShutdown
	return rec, true
}
