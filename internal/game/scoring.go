package game

import "github.com/impostor-party/server/internal/models"

// Scoring is pure bookkeeping on the match's score maps. All base awards
// are even-valued, and the win top-ups land on TargetScore exactly, so
// every reachable score stays even and no winner overshoots the target.

// GiveCorrectVotersPoints awards every non-impostor voter whose vote hit
// the impostor, and ticks their correct-vote streak. The impostor never
// scores from voting.
func GiveCorrectVotersPoints(m *models.Match) {
	for voter, target := range m.Votes {
		if voter == m.ImpostorID || target != m.ImpostorID {
			continue
		}
		m.PlayerScores[voter] += FriendPointsPerCorrectVote
		m.LastRoundScores[voter] += FriendPointsPerCorrectVote
		m.CorrectVotes[voter]++
	}
}

// GiveImpostorSurvivalPoints awards the impostor for surviving a round
func GiveImpostorSurvivalPoints(m *models.Match) {
	m.PlayerScores[m.ImpostorID] += ImpostorPointsPerSurvivedRound
	m.LastRoundScores[m.ImpostorID] += ImpostorPointsPerSurvivedRound
}

// GiveImpostorMaxPoints tops the impostor up to exactly TargetScore and
// records the delta as bonus. A score already at or above the target is
// never increased, which makes the top-up safe to apply twice when the
// sudden-death and last-round paths coincide.
func GiveImpostorMaxPoints(m *models.Match) {
	current := m.PlayerScores[m.ImpostorID]
	if current >= TargetScore {
		return
	}
	delta := TargetScore - current
	m.PlayerScores[m.ImpostorID] = TargetScore
	m.PlayerBonus[m.ImpostorID] += delta
	m.LastRoundScores[m.ImpostorID] += delta
}

// CalculateRoundScores applies the end-of-match bonus when friends win:
// among players who voted correctly in every round so far, exactly one
// (first in RoundPlayers order) is topped up to TargetScore and becomes
// the match winner. Friends who are not perfect keep only their base
// points. When nobody is perfect the win stays team-level.
func CalculateRoundScores(m *models.Match, friendsWon bool) {
	if !friendsWon {
		return
	}
	for _, uid := range m.RoundPlayers {
		if uid == m.ImpostorID {
			continue
		}
		if m.CorrectVotes[uid] != m.CurrentRound {
			continue
		}
		if delta := TargetScore - m.PlayerScores[uid]; delta > 0 {
			m.PlayerScores[uid] = TargetScore
			m.PlayerBonus[uid] += delta
			m.LastRoundScores[uid] += delta
		}
		m.WinnerID = uid
		return
	}
}
