package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/impostor-party/server/internal/game"
)

// SnapshotWriter is the persistence gateway the engine writes through.
// All writes are idempotent full-snapshot overwrites.
type SnapshotWriter interface {
	SaveRoom(ctx context.Context, snap game.RoomSnapshot) error
	SaveMatchRecord(ctx context.Context, rec game.MatchRecord) error
	DeleteRoom(ctx context.Context, code string) error
}

// PostgresStore persists room snapshots and match analytics records as
// jsonb documents.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects a snapshot store to the given database
func NewPostgresStore(ctx context.Context, connString string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

// SaveRoom upserts the room snapshot
func (ps *PostgresStore) SaveRoom(ctx context.Context, snap game.RoomSnapshot) error {
	doc, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encoding room snapshot: %w", err)
	}
	_, err = ps.pool.Exec(ctx,
		`INSERT INTO rooms (code, host_id, active, snapshot, updated_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (code)
		 DO UPDATE SET host_id = $2, active = $3, snapshot = $4, updated_at = $5`,
		snap.Code, snap.HostID, snap.Active, doc, snap.UpdatedAt)
	if err != nil {
		return fmt.Errorf("saving room %s: %w", snap.Code, err)
	}
	return nil
}

// SaveMatchRecord inserts one finished match's analytics record
func (ps *PostgresStore) SaveMatchRecord(ctx context.Context, rec game.MatchRecord) error {
	doc, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding match record: %w", err)
	}
	_, err = ps.pool.Exec(ctx,
		`INSERT INTO match_records (id, room_code, impostor_id, winner_id, end_reason, duration_ms, started_at, record)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (id) DO NOTHING`,
		rec.MatchID, rec.RoomCode, rec.ImpostorID, rec.WinnerID,
		rec.EndReason, rec.Duration.Milliseconds(), rec.StartedAt, doc)
	if err != nil {
		return fmt.Errorf("saving match record %s: %w", rec.MatchID, err)
	}
	return nil
}

// DeleteRoom marks a room inactive; the snapshot stays for analytics
func (ps *PostgresStore) DeleteRoom(ctx context.Context, code string) error {
	_, err := ps.pool.Exec(ctx,
		`UPDATE rooms SET active = false, updated_at = now() WHERE code = $1`, code)
	if err != nil {
		return fmt.Errorf("deactivating room %s: %w", code, err)
	}
	return nil
}

// Close releases the connection pool
func (ps *PostgresStore) Close() {
	ps.pool.Close()
}
