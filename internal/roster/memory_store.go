package roster

import (
	"context"
	"sync"
)

// MemoryStore keeps the team document in process memory.
type MemoryStore struct {
	mu  sync.Mutex
	doc *Document
}

// NewMemoryStore creates a MemoryStore seeded with an empty roster.
func NewMemoryStore() *MemoryStore {
	doc := &Document{}
	doc.normalize()
	return &MemoryStore{doc: doc}
}

// Get returns a copy of the stored document.
func (s *MemoryStore) Get(_ context.Context) (*Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Clone(), nil
}

// Put replaces the stored document if doc.Revision is current.
func (s *MemoryStore) Put(_ context.Context, doc *Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if doc.Revision != s.doc.Revision {
		return ErrConflict
	}
	doc.Revision++
	s.doc = doc.Clone()
	return nil
}
