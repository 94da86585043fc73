package game

import (
	"maps"
	"slices"

	"github.com/impostor-party/server/internal/models"
)

// VoteTally is the outcome of counting a round's votes
type VoteTally struct {
	Counts map[string]int
	// TopTargets holds every target tied for the maximum vote count.
	// A clean elimination requires exactly one entry.
	TopTargets []string
}

// TallyVotes counts votes and finds the max-vote target set
func TallyVotes(votes map[string]string) VoteTally {
	counts := make(map[string]int)
	for _, target := range votes {
		counts[target]++
	}

	maxVotes := 0
	var top []string
	for target, count := range counts {
		if count > maxVotes {
			maxVotes = count
			top = []string{target}
		} else if count == maxVotes {
			top = append(top, target)
		}
	}

	return VoteTally{Counts: counts, TopTargets: top}
}

// AllActiveVoted reports whether every non-eliminated round player has a
// pending vote, which is the trigger for resolution.
func AllActiveVoted(m *models.Match) bool {
	for _, uid := range m.ActivePlayers() {
		if _, ok := m.Votes[uid]; !ok {
			return false
		}
	}
	return len(m.ActivePlayers()) > 0
}

// ResolveVotes runs the round's vote resolution. The audit-trail entry is
// appended with the pre-resolution tallies before any outcome is acted on.
//
// Outcomes:
//   - impostor caught: the match ends immediately, friends win;
//   - tie (or zero votes): nobody is eliminated, the impostor collects
//     survival points, the match surfaces round_result;
//   - a friend eliminated: same as the tie case plus the elimination.
//
// Whether round_result then leads to the next round, sudden death or the
// round-cap impostor win is decided by StartNextRound, so the
// elimination overlay always renders before any game-over overlay.
func ResolveVotes(m *models.Match) {
	tally := TallyVotes(m.Votes)

	tie := len(tally.TopTargets) != 1
	caught := false
	eliminated := ""
	if !tie {
		if target := tally.TopTargets[0]; target == m.ImpostorID {
			caught = true
		} else {
			eliminated = target
		}
	}

	m.RoundHistory = append(m.RoundHistory, models.RoundHistoryEntry{
		Round:      m.CurrentRound,
		Votes:      maps.Clone(m.Votes),
		VoteCount:  tally.Counts,
		Eliminated: eliminated,
		Tie:        tie,
	})

	m.LastRoundScores = make(map[string]int)
	GiveCorrectVotersPoints(m)

	if caught {
		CalculateRoundScores(m, true)
		m.Phase = models.MatchGameOver
		m.EndReason = models.EndCompleted
		return
	}

	if eliminated != "" {
		m.Eliminate(eliminated)
	}
	GiveImpostorSurvivalPoints(m)
	m.Phase = models.MatchRoundResult
}

// StartNextRound advances from round_result. Sudden death and the
// round-cap impostor win are detected here, at round-start time.
func StartNextRound(m *models.Match, words WordPicker, language string) {
	active := m.ActivePlayers()
	if len(active) <= SuddenDeathThreshold || m.CurrentRound >= m.MaxRounds {
		m.WinnerID = m.ImpostorID
		GiveImpostorMaxPoints(m)
		m.Phase = models.MatchGameOver
		m.EndReason = models.EndCompleted
		return
	}

	m.CurrentRound++
	m.Votes = make(map[string]string)
	m.SecretWord, m.SecretCategory = words.PickWord(language)

	starter := CalculateStartingPlayer(m.PlayerOrder, active, m.LastStartingPlayerID, m.HostID)
	m.StartingPlayerID = starter
	m.LastStartingPlayerID = starter

	beginRound(m)
}

// beginRound opens the collecting phase for the current round
func beginRound(m *models.Match) {
	m.CluesSubmitted = make(map[string]bool)
	m.ClueTurn = ""
	m.Phase = models.MatchPlaying
}

// BeginClueRound switches the freshly started round into clue collection,
// starting with the round's starting player. Chat mode only.
func BeginClueRound(m *models.Match) {
	m.Phase = models.MatchClueRound
	m.ClueTurn = m.StartingPlayerID
}

// NextClueTurn finds the next active player after current (in player
// order) who has not submitted a clue this round. Returns "" when the
// round's clue collection is complete.
func NextClueTurn(m *models.Match, current string) string {
	active := m.ActivePlayers()
	start := 0
	for i, uid := range m.PlayerOrder {
		if uid == current {
			start = i
			break
		}
	}
	for i := 1; i <= len(m.PlayerOrder); i++ {
		candidate := m.PlayerOrder[(start+i)%len(m.PlayerOrder)]
		if !m.CluesSubmitted[candidate] && slices.Contains(active, candidate) {
			return candidate
		}
	}
	return ""
}
