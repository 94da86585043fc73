package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/impostor-party/server/internal/game"
)

type fakeWriter struct {
	mu      sync.Mutex
	rooms   []game.RoomSnapshot
	records []game.MatchRecord
	deleted []string
	// failures counts down: while positive, SaveRoom fails
	failures int
	saved    chan struct{}
}

func newFakeWriter() *fakeWriter {
	return &fakeWriter{saved: make(chan struct{}, 16)}
}

func (f *fakeWriter) SaveRoom(ctx context.Context, snap game.RoomSnapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failures > 0 {
		f.failures--
		return errors.New("write failed")
	}
	f.rooms = append(f.rooms, snap)
	select {
	case f.saved <- struct{}{}:
	default:
	}
	return nil
}

func (f *fakeWriter) SaveMatchRecord(ctx context.Context, rec game.MatchRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, rec)
	select {
	case f.saved <- struct{}{}:
	default:
	}
	return nil
}

func (f *fakeWriter) DeleteRoom(ctx context.Context, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, code)
	select {
	case f.saved <- struct{}{}:
	default:
	}
	return nil
}

func (f *fakeWriter) savedRooms() []game.RoomSnapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]game.RoomSnapshot(nil), f.rooms...)
}

func setupDebouncer(t *testing.T) (*DebouncedWriter, *fakeWriter) {
	t.Helper()
	fw := newFakeWriter()
	dw := &DebouncedWriter{
		w:         fw,
		log:       zerolog.Nop(),
		flushes:   make(map[string]*roomFlush),
		lastWrite: make(map[string]time.Time),
		interval:  30 * time.Millisecond,
	}
	return dw, fw
}

func waitSaved(t *testing.T, fw *fakeWriter) {
	t.Helper()
	select {
	case <-fw.saved:
	case <-time.After(time.Second):
		t.Fatal("no write arrived")
	}
}

func TestMarkDirtyIdleRoomWritesImmediately(t *testing.T) {
	dw, fw := setupDebouncer(t)

	dw.MarkDirty(game.RoomSnapshot{Code: "AAAAAA", Players: 3})
	waitSaved(t, fw)

	rooms := fw.savedRooms()
	require.Len(t, rooms, 1)
	assert.Equal(t, "AAAAAA", rooms[0].Code)
	assert.Equal(t, 3, rooms[0].Players)
}

func TestMarkDirtyCoalescesBursts(t *testing.T) {
	dw, fw := setupDebouncer(t)

	dw.MarkDirty(game.RoomSnapshot{Code: "AAAAAA", Players: 1})
	waitSaved(t, fw)

	// a burst within the interval collapses into one write of the latest state
	for i := 2; i <= 5; i++ {
		dw.MarkDirty(game.RoomSnapshot{Code: "AAAAAA", Players: i})
	}
	waitSaved(t, fw)

	rooms := fw.savedRooms()
	require.Len(t, rooms, 2)
	assert.Equal(t, 5, rooms[1].Players)
}

func TestMarkDirtyRetriesAfterFailure(t *testing.T) {
	dw, fw := setupDebouncer(t)
	fw.mu.Lock()
	fw.failures = 1
	fw.mu.Unlock()

	dw.MarkDirty(game.RoomSnapshot{Code: "AAAAAA", Players: 2})
	waitSaved(t, fw)

	rooms := fw.savedRooms()
	require.Len(t, rooms, 1)
	assert.Equal(t, 2, rooms[0].Players)
}

func TestSaveMatchRecordAsync(t *testing.T) {
	dw, fw := setupDebouncer(t)

	dw.SaveMatchRecord(game.MatchRecord{MatchID: "m1"})
	waitSaved(t, fw)

	fw.mu.Lock()
	defer fw.mu.Unlock()
	require.Len(t, fw.records, 1)
	assert.Equal(t, "m1", fw.records[0].MatchID)
}

func TestSaveMatchRecordNowIsSynchronous(t *testing.T) {
	dw, fw := setupDebouncer(t)

	dw.SaveMatchRecordNow(context.Background(), game.MatchRecord{MatchID: "m1"})

	// no waiting: the record is durable before the call returns
	fw.mu.Lock()
	defer fw.mu.Unlock()
	require.Len(t, fw.records, 1)
	assert.Equal(t, "m1", fw.records[0].MatchID)
}

func TestForgetDropsPendingAndDeactivates(t *testing.T) {
	dw, fw := setupDebouncer(t)
	dw.MarkDirty(game.RoomSnapshot{Code: "AAAAAA"})
	waitSaved(t, fw)
	dw.MarkDirty(game.RoomSnapshot{Code: "AAAAAA"}) // pending behind debounce

	dw.Forget("AAAAAA")
	waitSaved(t, fw)

	fw.mu.Lock()
	defer fw.mu.Unlock()
	assert.Equal(t, []string{"AAAAAA"}, fw.deleted)
	// the pending snapshot never went out
	assert.Len(t, fw.rooms, 1)
}

func TestFlushNowWritesSynchronously(t *testing.T) {
	dw, fw := setupDebouncer(t)

	dw.FlushNow(context.Background(), game.RoomSnapshot{Code: "AAAAAA"})

	assert.Len(t, fw.savedRooms(), 1)
}
