package main

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/star-coach/internal/coach"
	"github.com/jonathan/star-coach/internal/db"
	"github.com/jonathan/star-coach/internal/interview"
	"go.uber.org/zap"
)

const saveTimeout = 5 * time.Second

// sessionSnapshot is the payload of a local session snapshot. Interview is
// set only for STAR sessions driven by a job analysis.
type sessionSnapshot[D any] struct {
	Interview *interview.State  `json:"interview,omitempty"`
	Coach     coach.Snapshot[D] `json:"coach"`
}

// snapshotWriter saves the whole session after every change. The coach and
// interview sessions report their halves separately.
type snapshotWriter[D any] struct {
	store  db.SnapshotStore
	id     uuid.UUID
	kind   string
	logger *zap.Logger

	mu   sync.Mutex
	snap sessionSnapshot[D]
}

func newSnapshotWriter[D any](store db.SnapshotStore, id uuid.UUID, kind string, log *zap.Logger) *snapshotWriter[D] {
	return &snapshotWriter[D]{store: store, id: id, kind: kind, logger: log}
}

// Coach records the coaching half and saves.
func (w *snapshotWriter[D]) Coach(snap coach.Snapshot[D]) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.snap.Coach = snap
	w.saveLocked()
}

// Interview records the interview half and saves.
func (w *snapshotWriter[D]) Interview(st interview.State) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.snap.Interview = &st
	w.saveLocked()
}

func (w *snapshotWriter[D]) saveLocked() {
	rec, err := db.Encode(w.kind, w.id, w.snap)
	if err != nil {
		w.logger.Error("failed to encode session snapshot", zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	if err := w.store.SaveSnapshot(ctx, rec); err != nil {
		w.logger.Warn("failed to save session snapshot", zap.Stringer("id", w.id), zap.Error(err))
	}
}

// loadLatest returns the most recent snapshot of a kind, or nil.
func loadLatest[D any](ctx context.Context, store db.SnapshotStore, kind string) (*sessionSnapshot[D], uuid.UUID, error) {
	rec, err := db.Latest(ctx, store, kind)
	if err != nil {
		return nil, uuid.Nil, fmt.Errorf("failed to load last session: %w", err)
	}
	if rec == nil {
		return nil, uuid.Nil, nil
	}

	var snap sessionSnapshot[D]
	if err := json.Unmarshal(rec.Payload, &snap); err != nil {
		return nil, uuid.Nil, fmt.Errorf("failed to decode last session: %w", err)
	}
	return &snap, rec.ID, nil
}
