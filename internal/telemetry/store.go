package telemetry

import "sync/atomic"

// Store holds the most recent snapshot. Each Ingest replaces the previous
// snapshot wholesale; nothing is merged.
type Store struct {
	current atomic.Pointer[Snapshot]
}

func NewStore() *Store {
	return &Store{}
}

// Ingest replaces the current snapshot. A nil snapshot is ignored.
func (s *Store) Ingest(snap *Snapshot) {
	if snap == nil {
		return
	}
	s.current.Store(snap)
}

// Current returns the latest snapshot, or nil when none has been ingested yet.
func (s *Store) Current() *Snapshot {
	return s.current.Load()
}

// Reset discards the held snapshot.
func (s *Store) Reset() {
	s.current.Store(nil)
}
