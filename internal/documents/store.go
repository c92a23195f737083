package documents

import (
	"fmt"
	"sync"
	"time"

	"github.com/dshills/langbridge/internal/extapi"
	"github.com/dshills/langbridge/internal/logging"
	"github.com/dshills/langbridge/internal/protocol"
)

// entry is an open document with bookkeeping.
type entry struct {
	snapshot *Snapshot
	openedAt time.Time
}

// Store tracks open documents. It implements bridge.DocumentResolver.
type Store struct {
	mu   sync.RWMutex
	docs map[protocol.DocumentURI]*entry
	log  *logging.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l.WithComponent("documents")
		}
	}
}

// NewStore creates an empty store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		docs: make(map[protocol.DocumentURI]*entry),
		log:  logging.Null(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open adds a document.
func (s *Store) Open(d protocol.DocumentData) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.docs[d.URI]; exists {
		return fmt.Errorf("open %s: %w", d.URI, ErrDocumentAlreadyOpen)
	}
	s.docs[d.URI] = &entry{
		snapshot: NewSnapshot(d.URI, d.LanguageID, d.Version, d.Text),
		openedAt: time.Now(),
	}
	s.log.Debug("opened %s (%s, version %d)", d.URI, d.LanguageID, d.Version)
	return nil
}

// Change applies edits in order and records the new version.
func (s *Store) Change(c protocol.DocumentChange) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, exists := s.docs[c.URI]
	if !exists {
		return fmt.Errorf("change %s: %w", c.URI, ErrDocumentNotOpen)
	}
	if c.Version <= e.snapshot.version {
		s.log.Warn("version of %s went from %d to %d", c.URI, e.snapshot.version, c.Version)
	}
	e.snapshot = e.snapshot.apply(c.Version, c.Changes)
	return nil
}

// Close removes a document.
func (s *Store) Close(uri protocol.DocumentURI) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.docs[uri]; !exists {
		return fmt.Errorf("close %s: %w", uri, ErrDocumentNotOpen)
	}
	delete(s.docs, uri)
	s.log.Debug("closed %s", uri)
	return nil
}

// Snapshot returns the current snapshot of a document.
func (s *Store) Snapshot(uri protocol.DocumentURI) (*Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, exists := s.docs[uri]
	if !exists {
		return nil, false
	}
	return e.snapshot, true
}

// Document returns the current snapshot as an extapi.Document.
func (s *Store) Document(uri protocol.DocumentURI) (extapi.Document, error) {
	snap, ok := s.Snapshot(uri)
	if !ok {
		return nil, ErrDocumentNotOpen
	}
	return snap, nil
}

// IsOpen reports whether uri is open.
func (s *Store) IsOpen(uri protocol.DocumentURI) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, exists := s.docs[uri]
	return exists
}

// URIs returns the URIs of all open documents.
func (s *Store) URIs() []protocol.DocumentURI {
	s.mu.RLock()
	defer s.mu.RUnlock()

	uris := make([]protocol.DocumentURI, 0, len(s.docs))
	for uri := range s.docs {
		uris = append(uris, uri)
	}
	return uris
}

// Stats summarizes the open documents.
type Stats struct {
	TotalOpen     int
	ByLanguage    map[string]int
	OldestOpenAge time.Duration
}

// Stats returns statistics about open documents.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := Stats{
		TotalOpen:  len(s.docs),
		ByLanguage: make(map[string]int),
	}
	var oldest time.Time
	for _, e := range s.docs {
		stats.ByLanguage[e.snapshot.languageID]++
		if oldest.IsZero() || e.openedAt.Before(oldest) {
			oldest = e.openedAt
		}
	}
	if !oldest.IsZero() {
		stats.OldestOpenAge = time.Since(oldest)
	}
	return stats
}
