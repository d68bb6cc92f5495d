package lock

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	bookingserrors "washbook/internal/bookings/errors"
	"washbook/internal/bookings/repository"
	"washbook/pkg/logger"
)

const pollInterval = 25 * time.Millisecond

// Key names the unit of booking serialization.
func Key(providerID, serviceID, date string) string {
	return fmt.Sprintf("%s:%s:%s", providerID, serviceID, date)
}

// Locker serializes booking writes per key. Goroutines in this process queue
// on a keyed mutex; processes coordinate through lock documents in the
// store. A nil repository limits locking to this process.
type Locker struct {
	repo repository.BookingLockRepository
	ttl  time.Duration
	wait time.Duration
	log  *logger.Logger

	mu    sync.Mutex
	local map[string]*keyMutex
}

type keyMutex struct {
	sem  chan struct{}
	refs int
}

func NewLocker(repo repository.BookingLockRepository, ttl, wait time.Duration, log *logger.Logger) *Locker {
	return &Locker{
		repo:  repo,
		ttl:   ttl,
		wait:  wait,
		log:   log,
		local: make(map[string]*keyMutex),
	}
}

// Lease is a set of held keys. Release must be called exactly once.
type Lease struct {
	locker *Locker
	owner  string
	keys   []string
	once   sync.Once
}

// Fence confirms the lease still owns every key in the store and renews it.
// Call it inside the write transaction right before the mutation; a holder
// whose key was taken over after expiry gets ErrLockLost and must abort.
func (l *Lease) Fence(ctx context.Context) error {
	if l.locker.repo == nil {
		return nil
	}
	for _, key := range l.keys {
		if err := l.locker.repo.Fence(ctx, key, l.owner, l.locker.ttl); err != nil {
			return err
		}
	}
	return nil
}

func (l *Lease) Release() {
	l.once.Do(func() {
		for i := len(l.keys) - 1; i >= 0; i-- {
			l.locker.releaseKey(l.keys[i], l.owner)
		}
	})
}

// TTL is how long a lease stays valid in the store without a fence.
func (l *Locker) TTL() time.Duration {
	return l.ttl
}

// Acquire takes every key in sorted order, waiting up to the configured
// wait.
func (l *Locker) Acquire(ctx context.Context, keys ...string) (*Lease, error) {
	keys = slices.Clone(keys)
	slices.Sort(keys)
	keys = slices.Compact(keys)

	waitCtx, cancel := context.WithTimeout(ctx, l.wait)
	defer cancel()

	lease := &Lease{locker: l, owner: uuid.NewString()}
	for _, key := range keys {
		if err := l.acquireKey(waitCtx, key, lease.owner); err != nil {
			lease.Release()
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, err
		}
		lease.keys = append(lease.keys, key)
	}
	return lease, nil
}

func (l *Locker) acquireKey(ctx context.Context, key, owner string) error {
	m := l.ref(key)
	select {
	case m.sem <- struct{}{}:
	case <-ctx.Done():
		l.unref(key)
		return fmt.Errorf("%w: %s", bookingserrors.ErrLockTimeout, key)
	}

	if l.repo == nil {
		return nil
	}

	for {
		ok, err := l.repo.TryAcquire(ctx, key, owner, l.ttl)
		if err == nil && ok {
			return nil
		}
		if err != nil && !errors.Is(err, context.DeadlineExceeded) {
			l.log.Warn("Booking lock attempt failed", "key", key, "error", err)
		}

		timer := time.NewTimer(pollInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			l.unlockLocal(key, m)
			if err != nil {
				return fmt.Errorf("%w: %s: %v", bookingserrors.ErrLockTimeout, key, err)
			}
			return fmt.Errorf("%w: %s", bookingserrors.ErrLockTimeout, key)
		case <-timer.C:
		}
	}
}

func (l *Locker) releaseKey(key, owner string) {
	if l.repo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), l.ttl)
		if err := l.repo.Release(ctx, key, owner); err != nil {
			l.log.Warn("Failed to release booking lock", "key", key, "error", err)
		}
		cancel()
	}

	l.mu.Lock()
	m := l.local[key]
	l.mu.Unlock()
	if m != nil {
		l.unlockLocal(key, m)
	}
}

func (l *Locker) unlockLocal(key string, m *keyMutex) {
	<-m.sem
	l.unref(key)
}

func (l *Locker) ref(key string) *keyMutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.local[key]
	if !ok {
		m = &keyMutex{sem: make(chan struct{}, 1)}
		l.local[key] = m
	}
	m.refs++
	return m
}

func (l *Locker) unref(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.local[key]
	if !ok {
		return
	}
	m.refs--
	if m.refs == 0 {
		delete(l.local, key)
	}
}
