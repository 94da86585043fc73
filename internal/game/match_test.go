package game

import (
	"math/rand"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/impostor-party/server/internal/models"
)

func setupMatch(t *testing.T, mode models.GameMode, players ...string) (*MatchController, *models.Match) {
	t.Helper()
	if len(players) == 0 {
		players = []string{"alice", "bob", "carol", "dave"}
	}
	room := &models.Room{
		Code:        "ABCDEF",
		HostID:      players[0],
		Options:     models.RoomOptions{GameMode: mode},
		PlayerOrder: slices.Clone(players),
	}
	mc := NewMatchController(room, players, stubWords{word: "pizza", category: "food"}, rand.New(rand.NewSource(7)))
	return mc, mc.Match()
}

// forceImpostor pins the impostor so vote outcomes are deterministic
func forceImpostor(m *models.Match, uid string) {
	m.ImpostorID = uid
}

func TestNewMatchControllerFreezesRoster(t *testing.T) {
	mc, m := setupMatch(t, models.ModeVoice)

	assert.Equal(t, []string{"alice", "bob", "carol", "dave"}, m.RoundPlayers)
	assert.Equal(t, 1, m.CurrentRound)
	assert.Equal(t, MaxRounds, m.MaxRounds)
	assert.Contains(t, m.RoundPlayers, m.ImpostorID)
	assert.Equal(t, "pizza", m.SecretWord)
	// First match ever: the host opens.
	assert.Equal(t, "alice", m.StartingPlayerID)
	for _, uid := range m.RoundPlayers {
		assert.Equal(t, 0, m.PlayerScores[uid])
	}

	mc.Begin()
	assert.Equal(t, models.MatchPlaying, m.Phase)
}

func TestBeginChatModeOpensClueRound(t *testing.T) {
	mc, m := setupMatch(t, models.ModeChat)
	mc.Begin()

	assert.Equal(t, models.MatchClueRound, m.Phase)
	assert.Equal(t, m.StartingPlayerID, m.ClueTurn)
}

func TestCastVoteValidation(t *testing.T) {
	mc, m := setupMatch(t, models.ModeVoice)
	mc.Begin()
	forceImpostor(m, "dave")

	assert.ErrorIs(t, mc.CastVote("mallory", "alice"), ErrNotInRound)
	assert.ErrorIs(t, mc.CastVote("alice", "alice"), ErrInvalidVoteTarget)
	assert.ErrorIs(t, mc.CastVote("alice", "mallory"), ErrInvalidVoteTarget)

	m.Eliminate("carol")
	assert.ErrorIs(t, mc.CastVote("alice", "carol"), ErrInvalidVoteTarget)
	assert.ErrorIs(t, mc.CastVote("carol", "alice"), ErrNotInRound)

	m.Phase = models.MatchRoundResult
	assert.ErrorIs(t, mc.CastVote("alice", "bob"), ErrWrongPhase)
}

func TestCastVoteRetractAndReplace(t *testing.T) {
	mc, m := setupMatch(t, models.ModeVoice)
	mc.Begin()
	forceImpostor(m, "dave")

	require.NoError(t, mc.CastVote("alice", "bob"))
	assert.Equal(t, "bob", m.Votes["alice"])

	// re-voting the same target is a no-op
	require.NoError(t, mc.CastVote("alice", "bob"))
	assert.Equal(t, "bob", m.Votes["alice"])

	require.NoError(t, mc.CastVote("alice", "carol"))
	assert.Equal(t, "carol", m.Votes["alice"])

	require.NoError(t, mc.CastVote("alice", ""))
	_, pending := m.Votes["alice"]
	assert.False(t, pending)
}

func TestImpostorCaughtInRoundOne(t *testing.T) {
	mc, m := setupMatch(t, models.ModeVoice)
	mc.Begin()
	forceImpostor(m, "dave")

	require.NoError(t, mc.CastVote("alice", "dave"))
	require.NoError(t, mc.CastVote("bob", "dave"))
	require.NoError(t, mc.CastVote("dave", "alice"))
	assert.Equal(t, models.MatchPlaying, m.Phase)

	// carol's vote completes the quorum and resolves the round
	require.NoError(t, mc.CastVote("carol", "dave"))

	assert.Equal(t, models.MatchGameOver, m.Phase)
	assert.Equal(t, models.EndCompleted, m.EndReason)
	assert.Equal(t, "alice", m.WinnerID)
	assert.Equal(t, TargetScore, m.PlayerScores["alice"])
	assert.Equal(t, FriendPointsPerCorrectVote, m.PlayerScores["bob"])
	assert.Equal(t, FriendPointsPerCorrectVote, m.PlayerScores["carol"])
	assert.Equal(t, 0, m.PlayerScores["dave"])
}

func TestThreeTieRoundsImpostorWins(t *testing.T) {
	mc, m := setupMatch(t, models.ModeVoice)
	mc.Begin()
	forceImpostor(m, "dave")

	tieRound := func() {
		require.NoError(t, mc.CastVote("alice", "bob"))
		require.NoError(t, mc.CastVote("bob", "alice"))
		require.NoError(t, mc.CastVote("carol", "dave"))
		require.NoError(t, mc.CastVote("dave", "carol"))
	}

	for round := 1; round <= MaxRounds; round++ {
		assert.Equal(t, round, m.CurrentRound)
		tieRound()
		// Every tie round surfaces the result overlay first.
		require.Equal(t, models.MatchRoundResult, m.Phase)
		assert.Empty(t, m.Eliminated)
		require.NoError(t, mc.ContinueToNextRound("alice"))
	}

	assert.Equal(t, models.MatchGameOver, m.Phase)
	assert.Equal(t, "dave", m.WinnerID)
	assert.Equal(t, TargetScore, m.PlayerScores["dave"])
	assert.Equal(t, TargetScore-MaxRounds*ImpostorPointsPerSurvivedRound, m.PlayerBonus["dave"])
	// carol voted correctly every round but the impostor still won
	assert.Equal(t, MaxRounds*FriendPointsPerCorrectVote, m.PlayerScores["carol"])
	assert.Len(t, m.RoundHistory, MaxRounds)
}

func TestContinueToNextRoundGuards(t *testing.T) {
	mc, m := setupMatch(t, models.ModeVoice)
	mc.Begin()

	assert.ErrorIs(t, mc.ContinueToNextRound("alice"), ErrWrongPhase)

	m.Phase = models.MatchRoundResult
	assert.ErrorIs(t, mc.ContinueToNextRound("bob"), ErrNotHost)
}

func TestSubmitClueFlow(t *testing.T) {
	mc, m := setupMatch(t, models.ModeChat)
	mc.Begin()
	forceImpostor(m, "dave")
	require.Equal(t, "alice", m.ClueTurn)

	assert.ErrorIs(t, mc.SubmitClue("bob", "round thing"), ErrNotYourTurn)

	require.NoError(t, mc.SubmitClue("alice", "cheesy"))
	assert.Equal(t, "bob", m.ClueTurn)
	require.NoError(t, mc.SubmitClue("bob", "italian"))
	require.NoError(t, mc.SubmitClue("carol", "oven"))
	require.NoError(t, mc.SubmitClue("dave", "food I guess"))

	assert.Equal(t, models.MatchPlaying, m.Phase)
	assert.Empty(t, m.ClueTurn)
	assert.Len(t, m.Clues, 4)
}

func TestSubmitClueRejectedInVoiceMode(t *testing.T) {
	mc, _ := setupMatch(t, models.ModeVoice)
	mc.Begin()

	assert.ErrorIs(t, mc.SubmitClue("alice", "cheesy"), ErrWrongPhase)
}

func TestSkipClueTurn(t *testing.T) {
	mc, m := setupMatch(t, models.ModeChat)
	mc.Begin()

	mc.SkipClueTurn("alice")
	assert.Equal(t, "bob", m.ClueTurn)
	// skipping records no clue
	assert.Empty(t, m.Clues)

	// a stale skip for a player no longer on turn is ignored
	mc.SkipClueTurn("alice")
	assert.Equal(t, "bob", m.ClueTurn)
}

func TestRemovePlayerImpostorForfeits(t *testing.T) {
	mc, m := setupMatch(t, models.ModeVoice)
	mc.Begin()
	forceImpostor(m, "dave")
	m.PlayerScores["dave"] = 4

	ended := mc.RemovePlayer("dave")

	assert.True(t, ended)
	assert.Equal(t, models.MatchGameOver, m.Phase)
	// team-level friends win: no individual winner, no top-up
	assert.Empty(t, m.WinnerID)
	assert.Equal(t, 4, m.PlayerScores["dave"])
}

func TestRemovePlayerFriendEliminated(t *testing.T) {
	mc, m := setupMatch(t, models.ModeVoice, "alice", "bob", "carol", "dave", "erin")
	mc.Begin()
	forceImpostor(m, "erin")
	require.NoError(t, mc.CastVote("bob", "carol"))

	ended := mc.RemovePlayer("bob")

	assert.False(t, ended)
	assert.True(t, m.IsEliminated("bob"))
	_, pending := m.Votes["bob"]
	assert.False(t, pending)
}

func TestRemovePlayerCompletesQuorum(t *testing.T) {
	mc, m := setupMatch(t, models.ModeVoice)
	mc.Begin()
	forceImpostor(m, "dave")
	require.NoError(t, mc.CastVote("alice", "dave"))
	require.NoError(t, mc.CastVote("bob", "dave"))
	require.NoError(t, mc.CastVote("dave", "alice"))

	// carol leaving means everyone still active has voted
	ended := mc.RemovePlayer("carol")

	assert.True(t, ended)
	assert.Equal(t, models.MatchGameOver, m.Phase)
	assert.Equal(t, "alice", m.WinnerID)
}

func TestRemovePlayerLastFriendLosesToImpostor(t *testing.T) {
	mc, m := setupMatch(t, models.ModeVoice, "alice", "bob", "carol")
	mc.Begin()
	forceImpostor(m, "carol")

	assert.False(t, mc.RemovePlayer("alice"))
	assert.True(t, mc.RemovePlayer("bob"))

	assert.Equal(t, models.MatchGameOver, m.Phase)
	assert.Equal(t, "carol", m.WinnerID)
	assert.Equal(t, TargetScore, m.PlayerScores["carol"])
}

func TestRemovePlayerDuringRoundResult(t *testing.T) {
	mc, m := setupMatch(t, models.ModeVoice, "alice", "bob", "carol", "dave", "erin")
	mc.Begin()
	forceImpostor(m, "erin")

	// one vote each: tie round, nobody eliminated
	require.NoError(t, mc.CastVote("alice", "bob"))
	require.NoError(t, mc.CastVote("bob", "alice"))
	require.NoError(t, mc.CastVote("carol", "erin"))
	require.NoError(t, mc.CastVote("dave", "carol"))
	require.NoError(t, mc.CastVote("erin", "dave"))
	require.Equal(t, models.MatchRoundResult, m.Phase)

	// a friend leaving while the result overlay is up must still be
	// taken out of the match, or the next round waits on them forever
	ended := mc.RemovePlayer("dave")
	assert.False(t, ended)
	assert.True(t, m.IsEliminated("dave"))
	assert.NotContains(t, m.ActivePlayers(), "dave")

	require.NoError(t, mc.ContinueToNextRound("alice"))
	require.Equal(t, models.MatchPlaying, m.Phase)
	assert.Equal(t, 2, m.CurrentRound)

	require.NoError(t, mc.CastVote("alice", "erin"))
	require.NoError(t, mc.CastVote("bob", "erin"))
	require.NoError(t, mc.CastVote("carol", "erin"))
	require.NoError(t, mc.CastVote("erin", "alice"))

	assert.Equal(t, models.MatchGameOver, m.Phase)
}

func TestRemovePlayerImpostorDuringRoundResult(t *testing.T) {
	mc, m := setupMatch(t, models.ModeVoice)
	mc.Begin()
	forceImpostor(m, "dave")

	require.NoError(t, mc.CastVote("alice", "bob"))
	require.NoError(t, mc.CastVote("bob", "alice"))
	require.NoError(t, mc.CastVote("carol", "dave"))
	require.NoError(t, mc.CastVote("dave", "carol"))
	require.Equal(t, models.MatchRoundResult, m.Phase)

	assert.True(t, mc.RemovePlayer("dave"))
	assert.Equal(t, models.MatchGameOver, m.Phase)
	assert.Empty(t, m.WinnerID)
}

func TestRemovePlayerDuringRoundResultTriggersSuddenDeath(t *testing.T) {
	mc, m := setupMatch(t, models.ModeVoice)
	mc.Begin()
	forceImpostor(m, "dave")

	// carol is voted out, match surfaces round_result
	require.NoError(t, mc.CastVote("alice", "carol"))
	require.NoError(t, mc.CastVote("bob", "carol"))
	require.NoError(t, mc.CastVote("carol", "dave"))
	require.NoError(t, mc.CastVote("dave", "carol"))
	require.Equal(t, models.MatchRoundResult, m.Phase)

	// bob leaving drops the actives to two before the next round opens
	assert.False(t, mc.RemovePlayer("bob"))
	require.NoError(t, mc.ContinueToNextRound("alice"))

	assert.Equal(t, models.MatchGameOver, m.Phase)
	assert.Equal(t, "dave", m.WinnerID)
	assert.Equal(t, TargetScore, m.PlayerScores["dave"])
}

func TestRemovePlayerUnknownOrFinished(t *testing.T) {
	mc, m := setupMatch(t, models.ModeVoice)
	mc.Begin()

	assert.False(t, mc.RemovePlayer("mallory"))

	m.Phase = models.MatchGameOver
	assert.False(t, mc.RemovePlayer("alice"))
}

func TestCancelByHostZerosEverything(t *testing.T) {
	mc, m := setupMatch(t, models.ModeVoice)
	mc.Begin()
	forceImpostor(m, "dave")
	m.PlayerScores["alice"] = 4
	m.PlayerScores["dave"] = 2
	m.WinnerID = "alice"

	mc.CancelByHost()

	assert.Equal(t, models.MatchHostCancelled, m.Phase)
	assert.Equal(t, models.EndHostCancelled, m.EndReason)
	assert.Empty(t, m.WinnerID)
	for uid, score := range m.PlayerScores {
		assert.Zero(t, score, uid)
	}
}
