package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SQLite is a SnapshotStore in a local SQLite file.
type SQLite struct {
	db *sql.DB
	mu sync.Mutex // serializes writes to avoid SQLITE_BUSY
}

var _ SnapshotStore = (*SQLite)(nil)

// OpenSQLite opens or creates the database at path. ":memory:" is accepted
// for tests.
func OpenSQLite(path string) (*SQLite, error) {
	dsn := path
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
		dsn = path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// a single connection keeps ":memory:" databases alive and shared
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &SQLite{db: db}
	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return s, nil
}

func (s *SQLite) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS coach_snapshots (
		id TEXT PRIMARY KEY,
		kind TEXT NOT NULL,
		payload TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_coach_snapshots_kind_updated ON coach_snapshots(kind, updated_at);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// SaveSnapshot implements SnapshotStore.
func (s *SQLite) SaveSnapshot(ctx context.Context, snap *Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if snap.ID == uuid.Nil {
		snap.ID = uuid.New()
	}
	now := time.Now().UTC()

	var created int64
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO coach_snapshots (id, kind, payload, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET kind = excluded.kind, payload = excluded.payload, updated_at = excluded.updated_at
		 RETURNING created_at`,
		snap.ID.String(), snap.Kind, string(normalizePayload(snap.Payload)), now.UnixNano(), now.UnixNano(),
	).Scan(&created)
	if err != nil {
		return fmt.Errorf("save snapshot %s: %w", snap.ID, err)
	}

	snap.CreatedAt = time.Unix(0, created).UTC()
	snap.UpdatedAt = now
	return nil
}

// GetSnapshot implements SnapshotStore.
func (s *SQLite) GetSnapshot(ctx context.Context, id uuid.UUID) (*Snapshot, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, kind, payload, created_at, updated_at FROM coach_snapshots WHERE id = ?`,
		id.String(),
	)
	snap, err := scanSnapshot(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get snapshot %s: %w", id, err)
	}
	return snap, nil
}

// DeleteSnapshot implements SnapshotStore.
func (s *SQLite) DeleteSnapshot(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.ExecContext(ctx, `DELETE FROM coach_snapshots WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("delete snapshot %s: %w", id, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete snapshot %s: %w", id, err)
	}
	if n == 0 {
		return ErrSnapshotNotFound
	}
	return nil
}

// ListSnapshots implements SnapshotStore.
func (s *SQLite) ListSnapshots(ctx context.Context, kind string, limit int) ([]Snapshot, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, kind, payload, created_at, updated_at FROM coach_snapshots
		 WHERE ? = '' OR kind = ?
		 ORDER BY updated_at DESC LIMIT ?`,
		kind, kind, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var snaps []Snapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan snapshot row: %w", err)
		}
		snaps = append(snaps, *snap)
	}
	return snaps, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(row scanner) (*Snapshot, error) {
	var (
		snap               Snapshot
		id, payload        string
		createdAt, updated int64
	)
	if err := row.Scan(&id, &snap.Kind, &payload, &createdAt, &updated); err != nil {
		return nil, err
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid snapshot id %q: %w", id, err)
	}
	snap.ID = parsed
	snap.Payload = []byte(payload)
	snap.CreatedAt = time.Unix(0, createdAt).UTC()
	snap.UpdatedAt = time.Unix(0, updated).UTC()
	return &snap, nil
}

// DeleteOlderThan removes snapshots not updated within age.
func (s *SQLite) DeleteOlderThan(ctx context.Context, age time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.ExecContext(ctx,
		`DELETE FROM coach_snapshots WHERE updated_at < ?`,
		time.Now().Add(-age).UnixNano(),
	)
	if err != nil {
		return 0, fmt.Errorf("prune snapshots: %w", err)
	}
	return result.RowsAffected()
}
