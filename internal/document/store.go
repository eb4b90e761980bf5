// Package document holds the structured document (STAR answer or ticket)
// that a coaching session builds up from extraction results.
package document

import "sync"

// Store is a mutex-guarded holder for a document of type D that is updated
// with partial updates of type U.
type Store[D any, U any] struct {
	mu    sync.RWMutex
	doc   D
	empty func() D
	merge func(D, U) D
	clone func(D) D
}

// New creates a store holding empty(). merge must never clear a populated
// field on a nil or empty update. clone may be nil when D has no reference fields.
func New[D any, U any](empty func() D, merge func(D, U) D, clone func(D) D) *Store[D, U] {
	if clone == nil {
		clone = func(d D) D { return d }
	}
	return &Store[D, U]{doc: empty(), empty: empty, merge: merge, clone: clone}
}

// Get returns a copy of the current document.
func (s *Store[D, U]) Get() D {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.clone(s.doc)
}

// Update merges u into the document and returns a copy of the result.
func (s *Store[D, U]) Update(u U) D {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc = s.merge(s.doc, u)
	return s.clone(s.doc)
}

// Set replaces the document, e.g. when restoring a snapshot.
func (s *Store[D, U]) Set(d D) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc = s.clone(d)
}

// Reset returns the document to its empty value.
func (s *Store[D, U]) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc = s.empty()
}
