package store

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/impostor-party/server/internal/game"
)

// DebounceInterval coalesces snapshot bursts into at most one write per
// room; a room idle longer than the interval is written immediately.
const DebounceInterval = 2 * time.Second

type roomFlush struct {
	snap    game.RoomSnapshot
	timer   *time.Timer
	pending bool
}

// DebouncedWriter coalesces room snapshot writes per room and fires them
// without blocking the in-memory action. Write failures are logged and
// retried on the next tick; match records are written immediately.
type DebouncedWriter struct {
	w   SnapshotWriter
	log zerolog.Logger

	mu        sync.Mutex
	flushes   map[string]*roomFlush
	lastWrite map[string]time.Time
	interval  time.Duration
}

// NewDebouncedWriter wraps w with per-room debouncing
func NewDebouncedWriter(w SnapshotWriter, log zerolog.Logger) *DebouncedWriter {
	return &DebouncedWriter{
		w:         w,
		log:       log,
		flushes:   make(map[string]*roomFlush),
		lastWrite: make(map[string]time.Time),
		interval:  DebounceInterval,
	}
}

// MarkDirty schedules snap for writing. Bursts coalesce; an idle room's
// snapshot goes out right away.
func (dw *DebouncedWriter) MarkDirty(snap game.RoomSnapshot) {
	dw.mu.Lock()
	f, ok := dw.flushes[snap.Code]
	if !ok {
		f = &roomFlush{}
		dw.flushes[snap.Code] = f
	}
	f.snap = snap
	if f.pending {
		dw.mu.Unlock()
		return
	}
	f.pending = true
	delay := dw.interval - time.Since(dw.lastWrite[snap.Code])
	if delay < 0 {
		delay = 0
	}
	code := snap.Code
	f.timer = time.AfterFunc(delay, func() { dw.flush(code) })
	dw.mu.Unlock()
}

func (dw *DebouncedWriter) flush(code string) {
	dw.mu.Lock()
	f, ok := dw.flushes[code]
	if !ok {
		dw.mu.Unlock()
		return
	}
	snap := f.snap
	f.pending = false
	dw.lastWrite[code] = time.Now()
	dw.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := dw.w.SaveRoom(ctx, snap); err != nil {
		dw.log.Error().Err(err).Str("room", code).Msg("room snapshot write failed")
		// optimistic retry: re-arm the debounce so the next tick retries
		dw.MarkDirty(snap)
	}
}

// SaveMatchRecord writes an analytics record, fire-and-forget
func (dw *DebouncedWriter) SaveMatchRecord(rec game.MatchRecord) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := dw.w.SaveMatchRecord(ctx, rec); err != nil {
			dw.log.Error().Err(err).Str("match", rec.MatchID).Msg("match record write failed")
		}
	}()
}

// SaveMatchRecordNow writes an analytics record synchronously. Used on
// shutdown, where the async path would race pool closure.
func (dw *DebouncedWriter) SaveMatchRecordNow(ctx context.Context, rec game.MatchRecord) {
	if err := dw.w.SaveMatchRecord(ctx, rec); err != nil {
		dw.log.Error().Err(err).Str("match", rec.MatchID).Msg("final match record write failed")
	}
}

// Forget drops a reaped room's pending state and deactivates it durably
func (dw *DebouncedWriter) Forget(code string) {
	dw.mu.Lock()
	if f, ok := dw.flushes[code]; ok {
		if f.timer != nil {
			f.timer.Stop()
		}
		delete(dw.flushes, code)
	}
	delete(dw.lastWrite, code)
	dw.mu.Unlock()

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := dw.w.DeleteRoom(ctx, code); err != nil {
			dw.log.Error().Err(err).Str("room", code).Msg("room deactivation failed")
		}
	}()
}

// FlushNow writes a snapshot synchronously, used on shutdown
func (dw *DebouncedWriter) FlushNow(ctx context.Context, snap game.RoomSnapshot) {
	if err := dw.w.SaveRoom(ctx, snap); err != nil {
		dw.log.Error().Err(err).Str("room", snap.Code).Msg("final snapshot write failed")
	}
}
