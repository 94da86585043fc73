package game

import (
	"math/rand"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/impostor-party/server/internal/models"
)

// MatchController owns one match's lifetime: a single impostor and up to
// MaxRounds voting rounds. It is always driven under the owning room's
// lock; it never locks anything itself.
type MatchController struct {
	m     *models.Match
	words WordPicker
	opts  models.RoomOptions
	rng   *rand.Rand
}

// NewMatchController freezes the given players into a fresh match,
// selects the impostor and prepares round 1. The room's rotation memory
// (lastStarter, impostorHistory) seeds selection and rotation.
func NewMatchController(room *models.Room, eligible []string, words WordPicker, rng *rand.Rand) *MatchController {
	m := &models.Match{
		ID:           uuid.New().String(),
		RoomCode:     room.Code,
		HostID:       room.HostID,
		Phase:        models.MatchLobby,
		CurrentRound: 1,
		MaxRounds:    MaxRounds,
		RoundPlayers: slices.Clone(eligible),
		PlayerOrder:  slices.Clone(eligible),
		Votes:           make(map[string]string),
		PlayerScores:    make(map[string]int),
		LastRoundScores: make(map[string]int),
		PlayerBonus:     make(map[string]int),
		CorrectVotes:    make(map[string]int),
		StartedAt:       time.Now(),
	}
	for _, uid := range eligible {
		m.PlayerScores[uid] = 0
	}

	m.ImpostorID = SelectImpostor(m.RoundPlayers, room.ImpostorHistory, rng)

	opts := room.Options.Normalize()
	m.SecretWord, m.SecretCategory = words.PickWord(opts.Language)

	starter := CalculateStartingPlayer(room.PlayerOrder, m.ActivePlayers(), room.LastStartingPlayerID, room.HostID)
	m.StartingPlayerID = starter
	m.OriginalStartingPlayerID = starter
	m.LastStartingPlayerID = starter

	return &MatchController{m: m, words: words, opts: opts, rng: rng}
}

// Match exposes the underlying state for projection and persistence
func (mc *MatchController) Match() *models.Match { return mc.m }

// Begin opens round 1
func (mc *MatchController) Begin() {
	beginRound(mc.m)
	if mc.opts.GameMode == models.ModeChat {
		BeginClueRound(mc.m)
	}
}

// CastVote records, replaces or retracts a vote. An empty target
// retracts; re-voting the same target is a no-op. Resolution fires once
// every active player has a pending vote.
func (mc *MatchController) CastVote(voterID, targetID string) error {
	m := mc.m
	if m.Phase != models.MatchPlaying {
		return ErrWrongPhase
	}
	if !m.IsRoundPlayer(voterID) || m.IsEliminated(voterID) {
		return ErrNotInRound
	}

	if targetID == "" {
		delete(m.Votes, voterID)
		return nil
	}
	if targetID == voterID || !m.IsRoundPlayer(targetID) || m.IsEliminated(targetID) {
		return ErrInvalidVoteTarget
	}
	if m.Votes[voterID] == targetID {
		return nil
	}
	m.Votes[voterID] = targetID

	if AllActiveVoted(m) {
		ResolveVotes(m)
	}
	return nil
}

// SubmitClue records the active player's clue and advances the clue turn.
// Chat mode only.
func (mc *MatchController) SubmitClue(uid, text string) error {
	m := mc.m
	if mc.opts.GameMode != models.ModeChat || m.Phase != models.MatchClueRound {
		return ErrWrongPhase
	}
	if !m.IsRoundPlayer(uid) || m.IsEliminated(uid) {
		return ErrNotInRound
	}
	if m.ClueTurn != uid {
		return ErrNotYourTurn
	}
	m.Clues = append(m.Clues, models.Clue{Round: m.CurrentRound, UID: uid, Text: text})
	mc.advanceClueTurn(uid)
	return nil
}

// SkipClueTurn skips a silent player's turn, recording no clue. Driven by
// the room's clue-turn timer.
func (mc *MatchController) SkipClueTurn(uid string) {
	m := mc.m
	if m.Phase != models.MatchClueRound || m.ClueTurn != uid {
		return
	}
	mc.advanceClueTurn(uid)
}

func (mc *MatchController) advanceClueTurn(uid string) {
	m := mc.m
	m.CluesSubmitted[uid] = true
	next := NextClueTurn(m, uid)
	m.ClueTurn = next
	if next == "" {
		m.Phase = models.MatchPlaying
	}
}

// ContinueToNextRound advances from round_result; host only. Sudden
// death and the round cap resolve here, at round start.
func (mc *MatchController) ContinueToNextRound(uid string) error {
	m := mc.m
	if uid != m.HostID {
		return ErrNotHost
	}
	if m.Phase != models.MatchRoundResult {
		return ErrWrongPhase
	}
	StartNextRound(m, mc.words, mc.opts.Language)
	if m.Phase == models.MatchPlaying && mc.opts.GameMode == models.ModeChat {
		BeginClueRound(m)
	}
	return nil
}

// RemovePlayer propagates a roster removal into the running match,
// including the round_result overlay, so the next round never waits on a
// vote from a player who already left. Returns true when the removal
// ended the match.
func (mc *MatchController) RemovePlayer(uid string) bool {
	m := mc.m
	if !m.IsRoundPlayer(uid) || m.IsEliminated(uid) {
		return false
	}
	if !m.Phase.InRound() && m.Phase != models.MatchRoundResult {
		return false
	}

	if uid == m.ImpostorID {
		// The impostor leaving forfeits the round: friends win with no
		// tally. The win stays team-level; no perfect-voter bonus exists
		// for an unresolved round.
		m.LastRoundScores = make(map[string]int)
		m.WinnerID = ""
		m.Phase = models.MatchGameOver
		m.EndReason = models.EndCompleted
		return true
	}

	m.Eliminate(uid)
	delete(m.Votes, uid)
	if m.ClueTurn == uid {
		mc.advanceClueTurn(uid)
	}

	// Degenerate case: no friends left to out-vote the impostor.
	friends := 0
	for _, active := range m.ActivePlayers() {
		if active != m.ImpostorID {
			friends++
		}
	}
	if friends == 0 {
		m.WinnerID = m.ImpostorID
		GiveImpostorMaxPoints(m)
		m.Phase = models.MatchGameOver
		m.EndReason = models.EndCompleted
		return true
	}

	// Remaining active players may now have all voted.
	if m.Phase == models.MatchPlaying && AllActiveVoted(m) {
		ResolveVotes(m)
		return m.Phase == models.MatchGameOver
	}
	return false
}

// CancelByHost voids the match for everyone. Scores and winner are
// zeroed for display and the match is excluded from analytics.
func (mc *MatchController) CancelByHost() {
	m := mc.m
	m.WinnerID = ""
	for uid := range m.PlayerScores {
		m.PlayerScores[uid] = 0
	}
	m.LastRoundScores = make(map[string]int)
	m.PlayerBonus = make(map[string]int)
	m.Phase = models.MatchHostCancelled
	m.EndReason = models.EndHostCancelled
}
