package handlers

import (
	"math/rand"

	"github.com/rs/zerolog"

	"github.com/impostor-party/server/internal/events"
	"github.com/impostor-party/server/internal/game"
	"github.com/impostor-party/server/internal/session"
	"github.com/impostor-party/server/internal/store"
)

// Context carries every dependency the handlers need. One instance per
// process; tests build fresh ones. It doubles as the game.Sink through
// which room mutations fan out.
type Context struct {
	Rooms    *store.RoomStore
	Sessions *session.Coordinator
	Hub      *events.Hub
	Words    game.WordPicker
	// Snapshots is nil when persistence is disabled
	Snapshots *store.DebouncedWriter
	// PublicURL is the externally reachable base for join links
	PublicURL string
	Log       zerolog.Logger
}

// newRoomRng gives each room its own rand source; the process-global
// source is only used for seeding.
func newRoomRng() *rand.Rand {
	return rand.New(rand.NewSource(rand.Int63()))
}

// RoomChanged re-projects the room for every member, pushes the full
// state to each, then schedules a snapshot write.
func (ctx *Context) RoomChanged(code string) {
	rc, ok := ctx.Rooms.Get(code)
	if !ok {
		return
	}
	ctx.Hub.BroadcastPersonalized(rc.MemberUIDs(), func(uid string) (events.Event, bool) {
		view, err := rc.GetStateFor(uid)
		if err != nil {
			return events.Event{}, false
		}
		return events.Event{Name: events.EventState, Data: view}, true
	})
	if ctx.Snapshots != nil {
		ctx.Snapshots.MarkDirty(rc.Snapshot())
	}
}

// MatchEnded persists a finished match's analytics record
func (ctx *Context) MatchEnded(rec game.MatchRecord) {
	if ctx.Snapshots != nil {
		ctx.Snapshots.SaveMatchRecord(rec)
	}
}

// RoomClosed drops a reaped room from the registry and persistence
func (ctx *Context) RoomClosed(code string) {
	ctx.Rooms.Delete(code)
	if ctx.Snapshots != nil {
		ctx.Snapshots.Forget(code)
	}
	ctx.Log.Info().Str("room", code).Msg("room closed")
}
