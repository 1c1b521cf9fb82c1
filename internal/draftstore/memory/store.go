// Package memory is an in-process draft store for single-instance deployments
// and tests.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"khata/internal/domain"
	"khata/internal/port"
)

type key struct {
	tenant uuid.UUID
	draft  uuid.UUID
}

type entry struct {
	payload   []byte
	expiresAt time.Time
}

// Store keeps JSON snapshots so callers never share a draft's slices.
type Store struct {
	mu      sync.Mutex
	entries map[key]entry
	ttl     time.Duration
	now     func() time.Time
}

// NewStore creates an empty store with the given sliding TTL.
func NewStore(ttl time.Duration) port.DraftStore {
	return newStore(ttl, time.Now)
}

func newStore(ttl time.Duration, now func() time.Time) *Store {
	return &Store{entries: make(map[key]entry), ttl: ttl, now: now}
}

func (s *Store) Get(_ context.Context, tenantID, draftID uuid.UUID) (*domain.Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key{tenantID, draftID}
	e, ok := s.entries[k]
	if !ok {
		return nil, domain.ErrDraftNotFound
	}
	if !s.now().Before(e.expiresAt) {
		delete(s.entries, k)
		return nil, domain.ErrDraftNotFound
	}

	var draft domain.Draft
	if err := json.Unmarshal(e.payload, &draft); err != nil {
		return nil, fmt.Errorf("draftstore.memory.Get decode: %w", err)
	}
	return &draft, nil
}

func (s *Store) Save(_ context.Context, draft *domain.Draft) error {
	payload, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("draftstore.memory.Save encode: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.sweep(now)
	s.entries[key{draft.TenantID, draft.ID}] = entry{payload: payload, expiresAt: now.Add(s.ttl)}
	return nil
}

func (s *Store) Delete(_ context.Context, tenantID, draftID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key{tenantID, draftID})
	return nil
}

func (s *Store) Ping(context.Context) error { return nil }

// sweep drops expired entries. Callers hold mu.
func (s *Store) sweep(now time.Time) {
	for k, e := range s.entries {
		if !now.Before(e.expiresAt) {
			delete(s.entries, k)
		}
	}
}
