package db

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed postgres_schema.sql
var postgresSchema string

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

var _ SnapshotStore = (*DB)(nil)

// Connect establishes a connection pool to the database and creates the
// snapshot table when missing.
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() error {
	if db.pool != nil {
		db.pool.Close()
	}
	return nil
}

// Ping verifies database connectivity.
func (db *DB) Ping(ctx context.Context) error {
	return db.pool.Ping(ctx)
}

// SaveSnapshot implements SnapshotStore.
func (db *DB) SaveSnapshot(ctx context.Context, snap *Snapshot) error {
	if snap.ID == uuid.Nil {
		snap.ID = uuid.New()
	}
	err := db.pool.QueryRow(ctx,
		`INSERT INTO coach_snapshots (id, kind, payload)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (id) DO UPDATE SET kind = $2, payload = $3, updated_at = NOW()
		 RETURNING created_at, updated_at`,
		snap.ID, snap.Kind, normalizePayload(snap.Payload),
	).Scan(&snap.CreatedAt, &snap.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save snapshot %s: %w", snap.ID, err)
	}
	return nil
}

// GetSnapshot implements SnapshotStore.
func (db *DB) GetSnapshot(ctx context.Context, id uuid.UUID) (*Snapshot, error) {
	var snap Snapshot
	err := db.pool.QueryRow(ctx,
		`SELECT id, kind, payload, created_at, updated_at FROM coach_snapshots WHERE id = $1`,
		id,
	).Scan(&snap.ID, &snap.Kind, &snap.Payload, &snap.CreatedAt, &snap.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get snapshot %s: %w", id, err)
	}
	return &snap, nil
}

// DeleteSnapshot implements SnapshotStore.
func (db *DB) DeleteSnapshot(ctx context.Context, id uuid.UUID) error {
	result, err := db.pool.Exec(ctx, `DELETE FROM coach_snapshots WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete snapshot %s: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return ErrSnapshotNotFound
	}
	return nil
}

// ListSnapshots implements SnapshotStore.
func (db *DB) ListSnapshots(ctx context.Context, kind string, limit int) ([]Snapshot, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, kind, payload, created_at, updated_at FROM coach_snapshots
		 WHERE $1 = '' OR kind = $1
		 ORDER BY updated_at DESC LIMIT $2`,
		kind, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer rows.Close()

	var snaps []Snapshot
	for rows.Next() {
		var s Snapshot
		if err := rows.Scan(&s.ID, &s.Kind, &s.Payload, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		snaps = append(snaps, s)
	}
	return snaps, rows.Err()
}

// DeleteOlderThan removes snapshots not updated within age and returns how
// many were deleted. The server runs it periodically.
func (db *DB) DeleteOlderThan(ctx context.Context, age time.Duration) (int64, error) {
	result, err := db.pool.Exec(ctx,
		`DELETE FROM coach_snapshots WHERE updated_at < $1`,
		time.Now().Add(-age),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to prune snapshots: %w", err)
	}
	return result.RowsAffected(), nil
}
