package game

import (
	"math/rand"
	"slices"
)

// SelectImpostor picks a uniform random impostor among roundPlayers,
// excluding anyone who was impostor in the immediately preceding
// matches (history is newest-first). If the exclusion would empty the
// candidate set it is dropped for this selection; the game never blocks.
func SelectImpostor(roundPlayers, history []string, rng *rand.Rand) string {
	if len(roundPlayers) == 0 {
		return ""
	}
	window := history
	if len(window) > ImpostorExclusionWindow {
		window = window[:ImpostorExclusionWindow]
	}
	candidates := make([]string, 0, len(roundPlayers))
	for _, uid := range roundPlayers {
		if !slices.Contains(window, uid) {
			candidates = append(candidates, uid)
		}
	}
	if len(candidates) == 0 {
		candidates = roundPlayers
	}
	return candidates[rng.Intn(len(candidates))]
}

// PushImpostorHistory prepends uid to the newest-first history, capped
func PushImpostorHistory(history []string, uid string) []string {
	history = append([]string{uid}, history...)
	if len(history) > ImpostorHistoryCap {
		history = history[:ImpostorHistoryCap]
	}
	return history
}
