package game

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectImpostorExcludesRecentHistory(t *testing.T) {
	players := []string{"alice", "bob", "carol", "dave"}
	history := []string{"dave", "carol"} // newest first
	rng := rand.New(rand.NewSource(1))

	for i := 0; i < 50; i++ {
		picked := SelectImpostor(players, history, rng)
		assert.Contains(t, []string{"alice", "bob"}, picked)
	}
}

func TestSelectImpostorWindowOnlyCoversTwoMatches(t *testing.T) {
	players := []string{"alice", "bob", "carol"}
	// alice was impostor three matches ago, outside the window
	history := []string{"bob", "carol", "alice"}
	rng := rand.New(rand.NewSource(1))

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		seen[SelectImpostor(players, history, rng)] = true
	}
	assert.True(t, seen["alice"])
	assert.False(t, seen["bob"])
	assert.False(t, seen["carol"])
}

func TestSelectImpostorDropsExclusionWhenExhausted(t *testing.T) {
	// Every candidate is in the window; the game must not block.
	players := []string{"alice", "bob"}
	history := []string{"alice", "bob"}
	rng := rand.New(rand.NewSource(1))

	picked := SelectImpostor(players, history, rng)
	assert.Contains(t, players, picked)
}

func TestSelectImpostorEmptyPlayers(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	assert.Empty(t, SelectImpostor(nil, nil, rng))
}

func TestPushImpostorHistoryNewestFirst(t *testing.T) {
	h := PushImpostorHistory(nil, "alice")
	h = PushImpostorHistory(h, "bob")

	require.Len(t, h, 2)
	assert.Equal(t, "bob", h[0])
	assert.Equal(t, "alice", h[1])
}

func TestPushImpostorHistoryCapped(t *testing.T) {
	var h []string
	for i := 0; i < ImpostorHistoryCap+5; i++ {
		h = PushImpostorHistory(h, "player")
	}
	assert.Len(t, h, ImpostorHistoryCap)
}
