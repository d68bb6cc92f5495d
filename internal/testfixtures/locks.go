package testfixtures

import (
	"context"
	"fmt"
	"sync"
	"time"

	bookingserrors "washbook/internal/bookings/errors"
)

// LockStore is an in-memory advisory lock store with expiry.
type LockStore struct {
	mu    sync.Mutex
	now   func() time.Time
	locks map[string]heldLock
}

type heldLock struct {
	owner     string
	expiresAt time.Time
}

func NewLockStore(now func() time.Time) *LockStore {
	if now == nil {
		now = time.Now
	}
	return &LockStore{now: now, locks: make(map[string]heldLock)}
}

func (s *LockStore) TryAcquire(ctx context.Context, key, owner string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if held, ok := s.locks[key]; ok && now.Before(held.expiresAt) {
		return false, nil
	}
	s.locks[key] = heldLock{owner: owner, expiresAt: now.Add(ttl)}
	return true, nil
}

func (s *LockStore) Release(ctx context.Context, key, owner string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if held, ok := s.locks[key]; ok && held.owner == owner {
		delete(s.locks, key)
	}
	return nil
}

func (s *LockStore) Fence(ctx context.Context, key, owner string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	held, ok := s.locks[key]
	if !ok || held.owner != owner {
		return fmt.Errorf("%w: %s", bookingserrors.ErrLockLost, key)
	}
	s.locks[key] = heldLock{owner: owner, expiresAt: s.now().Add(ttl)}
	return nil
}

// Hold plants a lock owned by someone else, as another process would.
func (s *LockStore) Hold(key string, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.locks[key] = heldLock{owner: "other-process", expiresAt: s.now().Add(ttl)}
}

func (s *LockStore) Held(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.locks[key]
	return ok
}
