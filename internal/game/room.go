package game

import (
	"math/rand"
	"slices"
	"time"

	"github.com/rs/zerolog"

	"github.com/impostor-party/server/internal/models"
)

// UserInfo identifies a connecting user. Identity issuance is external;
// the engine only consumes it.
type UserInfo struct {
	UID         string
	DisplayName string
	AvatarRef   string
}

// Sink receives the side effects of room mutations. Controllers call it
// strictly outside the room lock.
type Sink interface {
	// RoomChanged asks for fresh per-player projections to be pushed and
	// a snapshot write to be scheduled.
	RoomChanged(code string)
	// MatchEnded hands over the analytics record of a finished match.
	MatchEnded(rec MatchRecord)
	// RoomClosed reports that an empty room expired and must be dropped.
	RoomClosed(code string)
}

// RoomController owns one room: roster, host identity, zero-or-one
// active match and the rotation memory surviving across matches. All
// mutations on a room are serialized through its lock; timer callbacks
// re-enter through the same lock.
type RoomController struct {
	room   *models.Room
	match  *MatchController
	words  WordPicker
	rng    *rand.Rand
	timers *TimerSet
	sink   Sink
	log    zerolog.Logger

	matchRecorded bool
}

// NewRoomController creates a room with the given host as its first player
func NewRoomController(code string, host UserInfo, options models.RoomOptions, words WordPicker, rng *rand.Rand, sink Sink, log zerolog.Logger) *RoomController {
	room := &models.Room{
		Code:          code,
		HostID:        host.UID,
		Players:       make(map[string]*models.Player),
		Options:       options.Normalize(),
		Phase:         models.RoomLobby,
		FormerPlayers: make(map[string]models.FormerPlayer),
		CreatedAt:     time.Now(),
	}
	room.Players[host.UID] = &models.Player{
		UID:         host.UID,
		DisplayName: host.DisplayName,
		AvatarRef:   host.AvatarRef,
		JoinedAt:    time.Now(),
	}
	room.PlayerOrder = []string{host.UID}

	return &RoomController{
		room:   room,
		words:  words,
		rng:    rng,
		timers: NewTimerSet(),
		sink:   sink,
		log:    log.With().Str("room", code).Logger(),
	}
}

// Code returns the room's shareable code
func (rc *RoomController) Code() string { return rc.room.Code }

// IsMember reports whether uid is on the roster
func (rc *RoomController) IsMember(uid string) bool {
	rc.room.RLock()
	defer rc.room.RUnlock()
	_, ok := rc.room.Players[uid]
	return ok
}

// MemberUIDs returns the roster's uids in join order
func (rc *RoomController) MemberUIDs() []string {
	rc.room.RLock()
	defer rc.room.RUnlock()
	return slices.Clone(rc.room.PlayerOrder)
}

// AddPlayer joins a user into the room. Joining during a running match
// classifies the player as a late joiner who waits for the next match.
// Re-joining an existing member is a no-op (session restore).
func (rc *RoomController) AddPlayer(user UserInfo) error {
	room := rc.room
	room.Lock()
	if _, ok := room.Players[user.UID]; ok {
		room.Unlock()
		return nil
	}
	p := &models.Player{
		UID:         user.UID,
		DisplayName: user.DisplayName,
		AvatarRef:   user.AvatarRef,
		JoinedAt:    time.Now(),
	}
	if room.Phase == models.RoomPlaying {
		p.IsLateJoiner = true
	}
	room.Players[user.UID] = p
	room.PlayerOrder = append(room.PlayerOrder, user.UID)
	delete(room.FormerPlayers, user.UID)
	room.Unlock()

	rc.timers.Cancel(TimerEmptyRoom)
	rc.log.Info().Str("uid", user.UID).Bool("late", p.IsLateJoiner).Msg("player joined")
	rc.sink.RoomChanged(room.Code)
	return nil
}

// RemovePlayer drops a player from the roster: display identity moves to
// formerPlayers first, host transfers by join order, and the removal
// propagates into the active match.
func (rc *RoomController) RemovePlayer(uid string) error {
	room := rc.room
	room.Lock()
	p, ok := room.Players[uid]
	if !ok {
		room.Unlock()
		return ErrNotAMember
	}

	room.FormerPlayers[uid] = models.FormerPlayer{
		DisplayName: p.DisplayName,
		AvatarRef:   p.AvatarRef,
	}

	// Re-anchor the rotation reference on the previous player so the
	// next rotation still advances past the departed one.
	if room.LastStartingPlayerID == uid {
		if idx := slices.Index(room.PlayerOrder, uid); idx >= 0 && len(room.PlayerOrder) > 1 {
			room.LastStartingPlayerID = room.PlayerOrder[(idx-1+len(room.PlayerOrder))%len(room.PlayerOrder)]
		} else {
			room.LastStartingPlayerID = ""
		}
	}

	room.RemoveFromOrder(uid)
	delete(room.Players, uid)

	if uid == room.HostID && len(room.PlayerOrder) > 0 {
		room.HostID = room.PlayerOrder[0]
		if rc.match != nil {
			rc.match.Match().HostID = room.HostID
		}
		rc.log.Info().Str("from", uid).Str("to", room.HostID).Msg("host transferred")
	}

	if rc.match != nil && rc.match.RemovePlayer(uid) {
		rc.finishMatchLocked()
	}
	empty := len(room.Players) == 0
	room.Unlock()

	if empty {
		rc.timers.Schedule(TimerEmptyRoom, EmptyRoomGrace, rc.reapIfEmpty)
	}
	rc.syncClueTimer()
	rc.log.Info().Str("uid", uid).Msg("player removed")
	rc.sink.RoomChanged(room.Code)
	rc.flushMatchRecord()
	return nil
}

// Kick removes a player on the host's request
func (rc *RoomController) Kick(hostUID, targetUID string) error {
	rc.room.RLock()
	isHost := rc.room.HostID == hostUID
	_, member := rc.room.Players[targetUID]
	rc.room.RUnlock()
	if !isHost {
		return ErrNotHost
	}
	if !member {
		return ErrNotAMember
	}
	return rc.RemovePlayer(targetUID)
}

// StartMatch freezes the eligible players into a fresh match and begins
// round 1. Host only; requires MinPlayers eligible players; blocked
// while the room recovers from a host cancellation.
func (rc *RoomController) StartMatch(uid string, options *models.RoomOptions) error {
	room := rc.room
	room.Lock()
	if room.HostID != uid {
		room.Unlock()
		return ErrNotHost
	}
	if room.Phase != models.RoomLobby {
		room.Unlock()
		return ErrWrongPhase
	}
	if options != nil {
		room.Options = options.Normalize()
	}
	eligible := room.EligiblePlayers()
	if len(eligible) < MinPlayers {
		room.Unlock()
		return ErrInsufficientPlayers
	}
	rc.startMatchLocked(eligible)
	room.Unlock()

	rc.syncClueTimer()
	rc.sink.RoomChanged(room.Code)
	return nil
}

// PlayAgain starts a fresh match from game_over. Everyone currently in
// the room plays; formerPlayers is pruned to currently connected uids so
// it cannot grow without bound.
func (rc *RoomController) PlayAgain(uid string) error {
	room := rc.room
	room.Lock()
	if room.HostID != uid {
		room.Unlock()
		return ErrNotHost
	}
	if room.Phase != models.RoomGameOver {
		room.Unlock()
		return ErrWrongPhase
	}
	for id := range room.FormerPlayers {
		if _, connected := room.Players[id]; !connected {
			delete(room.FormerPlayers, id)
		}
	}
	for _, p := range room.Players {
		p.IsLateJoiner = false
	}
	eligible := room.EligiblePlayers()
	if len(eligible) < MinPlayers {
		room.Unlock()
		return ErrInsufficientPlayers
	}
	rc.startMatchLocked(eligible)
	room.Unlock()

	rc.syncClueTimer()
	rc.sink.RoomChanged(room.Code)
	return nil
}

// startMatchLocked does the shared start/playAgain work under the lock
func (rc *RoomController) startMatchLocked(eligible []string) {
	room := rc.room
	for _, id := range eligible {
		room.Players[id].IsLateJoiner = false
		room.Players[id].IsPlaying = true
	}
	rc.match = NewMatchController(room, eligible, rc.words, rc.rng)
	rc.matchRecorded = false
	m := rc.match.Match()
	room.ImpostorHistory = PushImpostorHistory(room.ImpostorHistory, m.ImpostorID)
	room.LastStartingPlayerID = m.LastStartingPlayerID
	room.CurrentMatch = m
	room.Phase = models.RoomPlaying
	rc.match.Begin()
	rc.log.Info().Str("match", m.ID).Int("players", len(eligible)).Msg("match started")
}

// CastVote delegates a vote into the active match
func (rc *RoomController) CastVote(voterID, targetID string) error {
	room := rc.room
	room.Lock()
	if err := rc.requireRoundMemberLocked(voterID); err != nil {
		room.Unlock()
		return err
	}
	err := rc.match.CastVote(voterID, targetID)
	if err == nil && rc.match.Match().Phase == models.MatchGameOver {
		rc.finishMatchLocked()
	}
	room.Unlock()

	if err != nil {
		return err
	}
	rc.sink.RoomChanged(room.Code)
	rc.flushMatchRecord()
	return nil
}

// SubmitClue delegates a chat-mode clue into the active match
func (rc *RoomController) SubmitClue(uid, text string) error {
	room := rc.room
	room.Lock()
	if err := rc.requireRoundMemberLocked(uid); err != nil {
		room.Unlock()
		return err
	}
	err := rc.match.SubmitClue(uid, text)
	room.Unlock()

	if err != nil {
		return err
	}
	rc.syncClueTimer()
	rc.sink.RoomChanged(room.Code)
	return nil
}

// ContinueToNextRound advances the match out of round_result
func (rc *RoomController) ContinueToNextRound(uid string) error {
	room := rc.room
	room.Lock()
	if rc.match == nil {
		room.Unlock()
		return ErrMatchNotFound
	}
	err := rc.match.ContinueToNextRound(uid)
	if err == nil && rc.match.Match().Phase == models.MatchGameOver {
		rc.finishMatchLocked()
	}
	room.Unlock()

	if err != nil {
		return err
	}
	rc.syncClueTimer()
	rc.sink.RoomChanged(room.Code)
	rc.flushMatchRecord()
	return nil
}

// EndMatch returns a finished match's room to the lobby, or cancels a
// running one the way leaveMatch by the host would. Host only.
func (rc *RoomController) EndMatch(uid string) error {
	room := rc.room
	room.Lock()
	if room.HostID != uid {
		room.Unlock()
		return ErrNotHost
	}
	if rc.match == nil {
		room.Unlock()
		return ErrMatchNotFound
	}
	if rc.match.Match().Phase == models.MatchGameOver {
		rc.clearMatchLocked()
		room.Phase = models.RoomLobby
		room.Unlock()
		rc.sink.RoomChanged(room.Code)
		return nil
	}
	rc.cancelMatchLocked()
	room.Unlock()

	rc.sink.RoomChanged(room.Code)
	return nil
}

// LeaveMatch pulls one player out of the running match. When the host
// leaves, secret-word integrity is gone for everyone, so the whole match
// is cancelled instead.
func (rc *RoomController) LeaveMatch(uid string) error {
	room := rc.room
	room.Lock()
	if _, ok := room.Players[uid]; !ok {
		room.Unlock()
		return ErrNotAMember
	}
	if rc.match == nil {
		room.Unlock()
		return ErrMatchNotFound
	}

	if uid == room.HostID {
		rc.cancelMatchLocked()
		room.Unlock()
		rc.sink.RoomChanged(room.Code)
		return nil
	}

	p := room.Players[uid]
	p.IsPlaying = false
	p.IsLateJoiner = true
	if rc.match.RemovePlayer(uid) {
		rc.finishMatchLocked()
	}
	room.Unlock()

	rc.syncClueTimer()
	rc.sink.RoomChanged(room.Code)
	rc.flushMatchRecord()
	return nil
}

// UpdateOptions changes room options; host only, pre-match only
func (rc *RoomController) UpdateOptions(uid string, options models.RoomOptions) error {
	room := rc.room
	room.Lock()
	if room.HostID != uid {
		room.Unlock()
		return ErrNotHost
	}
	if room.Phase != models.RoomLobby {
		room.Unlock()
		return ErrWrongPhase
	}
	room.Options = options.Normalize()
	room.Unlock()

	rc.sink.RoomChanged(room.Code)
	return nil
}

// Close cancels all pending room timers. Called when the room is dropped.
func (rc *RoomController) Close() {
	rc.timers.Stop()
}

// requireRoundMemberLocked validates a match action's actor
func (rc *RoomController) requireRoundMemberLocked(uid string) error {
	if _, ok := rc.room.Players[uid]; !ok {
		return ErrNotAMember
	}
	if rc.match == nil {
		return ErrMatchNotFound
	}
	return nil
}

// cancelMatchLocked voids the match and parks the room in
// host_cancelled until the auto-recovery timer returns it to the lobby.
// Cancelled matches are excluded from analytics.
func (rc *RoomController) cancelMatchLocked() {
	rc.match.CancelByHost()
	rc.room.Phase = models.RoomHostCancelled
	rc.matchRecorded = true
	rc.log.Info().Str("match", rc.match.Match().ID).Msg("match cancelled by host")
	rc.timers.Cancel(TimerClueTurn)
	rc.timers.Schedule(TimerHostCancelRecovery, HostCancelRecoveryDelay, rc.recoverFromCancel)
}

// finishMatchLocked records a completed match on the room level. The
// match's rotation reference is re-anchored before it is copied back so
// a starter who left the room mid-match cannot poison the next match's
// rotation.
func (rc *RoomController) finishMatchLocked() {
	m := rc.match.Match()
	rc.room.Phase = models.RoomGameOver
	rc.room.LastStartingPlayerID = ReanchorStarter(m.PlayerOrder, m.LastStartingPlayerID, func(uid string) bool {
		_, ok := rc.room.Players[uid]
		return ok
	})
	rc.timers.Cancel(TimerClueTurn)
	rc.log.Info().
		Str("match", m.ID).
		Str("winner", m.WinnerID).
		Str("impostor", m.ImpostorID).
		Msg("match finished")
}

// clearMatchLocked detaches the match from the room
func (rc *RoomController) clearMatchLocked() {
	rc.match = nil
	rc.room.CurrentMatch = nil
	for _, p := range rc.room.Players {
		p.IsPlaying = false
	}
}

// recoverFromCancel returns the room from host_cancelled to the lobby
func (rc *RoomController) recoverFromCancel() {
	room := rc.room
	room.Lock()
	if room.Phase != models.RoomHostCancelled {
		room.Unlock()
		return
	}
	rc.clearMatchLocked()
	room.Phase = models.RoomLobby
	for _, p := range room.Players {
		p.IsLateJoiner = false
	}
	room.Unlock()

	rc.sink.RoomChanged(room.Code)
}

// reapIfEmpty destroys the room if it is still empty after the grace window
func (rc *RoomController) reapIfEmpty() {
	rc.room.RLock()
	empty := len(rc.room.Players) == 0
	rc.room.RUnlock()
	if !empty {
		return
	}
	rc.timers.Stop()
	rc.log.Info().Msg("empty room reaped")
	rc.sink.RoomClosed(rc.room.Code)
}

// syncClueTimer keeps the clue-turn timeout aligned with the match state
func (rc *RoomController) syncClueTimer() {
	rc.room.RLock()
	turn := ""
	if rc.match != nil && rc.match.Match().Phase == models.MatchClueRound {
		turn = rc.match.Match().ClueTurn
	}
	rc.room.RUnlock()

	if turn == "" {
		rc.timers.Cancel(TimerClueTurn)
		return
	}
	uid := turn
	rc.timers.Schedule(TimerClueTurn, ClueTurnTimeout, func() {
		rc.clueTurnTimedOut(uid)
	})
}

// clueTurnTimedOut skips a player who never submitted their clue
func (rc *RoomController) clueTurnTimedOut(uid string) {
	rc.room.Lock()
	if rc.match == nil {
		rc.room.Unlock()
		return
	}
	rc.match.SkipClueTurn(uid)
	rc.room.Unlock()

	rc.log.Debug().Str("uid", uid).Msg("clue turn timed out")
	rc.syncClueTimer()
	rc.sink.RoomChanged(rc.room.Code)
}

// flushMatchRecord hands a finished match to the sink exactly once
func (rc *RoomController) flushMatchRecord() {
	rc.room.Lock()
	if rc.match == nil || rc.matchRecorded {
		rc.room.Unlock()
		return
	}
	m := rc.match.Match()
	if m.Phase != models.MatchGameOver {
		rc.room.Unlock()
		return
	}
	rc.matchRecorded = true
	rec := BuildMatchRecord(rc.room, m)
	rc.room.Unlock()

	rc.sink.MatchEnded(rec)
}
