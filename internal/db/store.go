// Package db persists coaching session snapshots. The server stores them in
// PostgreSQL; the terminal client keeps a local SQLite file.
package db

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Snapshot kinds.
const (
	KindInterview = "interview"
	KindTicket    = "ticket"
)

// ErrSnapshotNotFound is returned when deleting a snapshot that does not exist.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// Snapshot is one saved session: the whole state as a JSON document.
type Snapshot struct {
	ID        uuid.UUID       `json:"id"`
	Kind      string          `json:"kind"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// SnapshotStore saves and loads whole session snapshots. Saves replace the
// previous payload; there is no partial update.
type SnapshotStore interface {
	// SaveSnapshot inserts or replaces the snapshot with snap.ID.
	SaveSnapshot(ctx context.Context, snap *Snapshot) error
	// GetSnapshot returns nil, nil when no snapshot has the ID.
	GetSnapshot(ctx context.Context, id uuid.UUID) (*Snapshot, error)
	// DeleteSnapshot returns ErrSnapshotNotFound for an unknown ID.
	DeleteSnapshot(ctx context.Context, id uuid.UUID) error
	// ListSnapshots returns snapshots of one kind, most recently updated
	// first. An empty kind lists every kind.
	ListSnapshots(ctx context.Context, kind string, limit int) ([]Snapshot, error)
	Close() error
	// DeleteOlderThan removes snapshots not updated within age and returns
	// how many were deleted.
	DeleteOlderThan(ctx context.Context, age time.Duration) (int64, error)
}

// Latest returns the most recently updated snapshot of a kind, or nil.
func Latest(ctx context.Context, store SnapshotStore, kind string) (*Snapshot, error) {
	snaps, err := store.ListSnapshots(ctx, kind, 1)
	if err != nil || len(snaps) == 0 {
		return nil, err
	}
	return &snaps[0], nil
}

// Encode marshals v into a new snapshot payload.
func Encode(kind string, id uuid.UUID, v any) (*Snapshot, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return &Snapshot{ID: id, Kind: kind, Payload: payload}, nil
}

// normalizePayload keeps an empty payload valid JSON.
func normalizePayload(p json.RawMessage) []byte {
	if len(p) == 0 {
		return []byte("{}")
	}
	return p
}
