// Package store owns the in-memory aggregate and its persistence. Every
// mutation is persisted before it becomes visible.
package store

import (
	"log"
	"sync"

	"github.com/pysugar/codex-accounts/internal/apperr"
	"github.com/pysugar/codex-accounts/internal/models"
)

// Store guards the aggregate with a single mutex. The lock is never held
// across network I/O and never taken while the flow registry lock is held.
type Store struct {
	mu        sync.Mutex
	data      models.AppData
	persister Persister
}

// Open loads the persisted aggregate. Unreadable state is logged and
// replaced by defaults so the app stays usable.
func Open(p Persister) *Store {
	data, found, err := p.Load()
	switch {
	case err != nil:
		log.Printf("⚠️ [Store] Failed to load persisted state, using defaults: %v", err)
		data = models.NewAppData()
	case !found:
		data = models.NewAppData()
	default:
		log.Printf("📂 [Store] Loaded %d account(s), %d proxy(ies) from %s", len(data.Accounts), len(data.Proxies), p.Location())
	}
	data.Normalize()
	return &Store{data: data, persister: p}
}

// Location returns where the aggregate is persisted.
func (s *Store) Location() string {
	return s.persister.Location()
}

// Snapshot returns a deep copy of the current aggregate.
func (s *Store) Snapshot() (models.AppData, error) {
	var out models.AppData
	err := s.locked(func() error {
		out = s.data.Clone()
		return nil
	})
	return out, err
}

// View runs fn against a copy of the aggregate under the lock.
func (s *Store) View(fn func(d *models.AppData) error) error {
	return s.locked(func() error {
		cp := s.data.Clone()
		return fn(&cp)
	})
}

// Update applies fn to a copy, persists it and only then commits it.
// If fn or the save fails the in-memory aggregate is left unchanged.
func (s *Store) Update(fn func(d *models.AppData) error) (models.AppData, error) {
	var out models.AppData
	err := s.locked(func() error {
		next := s.data.Clone()
		if err := fn(&next); err != nil {
			return err
		}
		if err := s.persister.Save(next); err != nil {
			return err
		}
		s.data = next
		out = next.Clone()
		return nil
	})
	return out, err
}

func (s *Store) locked(fn func() error) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("❌ [Store] Recovered panic under data lock: %v", rec)
			err = &apperr.LockError{Lock: "data", Recovered: rec}
		}
	}()
	return fn()
}
