package models

import (
	"slices"
	"sync"
	"time"
)

// Room represents a persistent multiplayer lobby identified by a
// shareable code. It survives across many matches and carries the
// rotation memory that must outlive each one.
type Room struct {
	Code    string
	HostID  string
	Players map[string]*Player
	// PlayerOrder holds uids sorted by join time; rotation and host
	// succession walk this slice.
	PlayerOrder []string
	Options     RoomOptions
	Phase       RoomPhase

	CurrentMatch *Match

	// FormerPlayers keeps display identity for departed players that
	// still appear in match history. Pruned on playAgain.
	FormerPlayers map[string]FormerPlayer

	LastStartingPlayerID string
	// ImpostorHistory is newest-first, capped so snapshots stay bounded.
	ImpostorHistory []string

	CreatedAt time.Time

	mu sync.RWMutex
}

// Lock acquires the room's write lock
func (r *Room) Lock() { r.mu.Lock() }

// Unlock releases the room's write lock
func (r *Room) Unlock() { r.mu.Unlock() }

// RLock acquires the room's read lock
func (r *Room) RLock() { r.mu.RLock() }

// RUnlock releases the room's read lock
func (r *Room) RUnlock() { r.mu.RUnlock() }

// OrderedPlayers returns the players by join order (must be called with
// the lock held).
func (r *Room) OrderedPlayers() []*Player {
	players := make([]*Player, 0, len(r.PlayerOrder))
	for _, uid := range r.PlayerOrder {
		if p, ok := r.Players[uid]; ok {
			players = append(players, p)
		}
	}
	return players
}

// EligiblePlayers returns uids of players that may participate in a new
// match, i.e. everyone not flagged as a late joiner.
func (r *Room) EligiblePlayers() []string {
	eligible := make([]string, 0, len(r.PlayerOrder))
	for _, uid := range r.PlayerOrder {
		if p, ok := r.Players[uid]; ok && !p.IsLateJoiner {
			eligible = append(eligible, uid)
		}
	}
	return eligible
}

// RemoveFromOrder drops uid from PlayerOrder
func (r *Room) RemoveFromOrder(uid string) {
	r.PlayerOrder = slices.DeleteFunc(r.PlayerOrder, func(id string) bool {
		return id == uid
	})
}

// DisplayName resolves a uid against current and former players
func (r *Room) DisplayName(uid string) string {
	if p, ok := r.Players[uid]; ok {
		return p.DisplayName
	}
	if fp, ok := r.FormerPlayers[uid]; ok {
		return fp.DisplayName
	}
	return "unknown(" + uid + ")"
}
