// Package locks serializes recalculations per round and standings writes per
// championship, either inside one process or across instances via Redis.
package locks

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

var ErrLockHeld = errors.New("lock already held")

// Locker hands out exclusive locks keyed by string. The returned unlock
// function is safe to call more than once.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (unlock func(), err error)
}

func RoundKey(roundID int) string {
	return fmt.Sprintf("round:%d", roundID)
}

func ChampionshipKey(championshipID int) string {
	return fmt.Sprintf("championship:%d", championshipID)
}

// AcquireWait polls Acquire until the lock is obtained or ctx is done.
func AcquireWait(ctx context.Context, l Locker, key string, ttl, poll time.Duration) (func(), error) {
	for {
		unlock, err := l.Acquire(ctx, key, ttl)
		if err == nil {
			return unlock, nil
		}
		if !errors.Is(err, ErrLockHeld) {
			return nil, err
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("waiting for lock %s: %w", key, ctx.Err())
		case <-time.After(poll):
		}
	}
}

// MemoryLocker is a process-local Locker. Expired entries are treated as free.
type MemoryLocker struct {
	mu   sync.Mutex
	held map[string]memoryLease
	now  func() time.Time
	seq  uint64
}

type memoryLease struct {
	token   uint64
	expires time.Time
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{held: make(map[string]memoryLease), now: time.Now}
}

func (m *MemoryLocker) Acquire(_ context.Context, key string, ttl time.Duration) (func(), error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if lease, ok := m.held[key]; ok && now.Before(lease.expires) {
		return nil, ErrLockHeld
	}

	m.seq++
	token := m.seq
	m.held[key] = memoryLease{token: token, expires: now.Add(ttl)}

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			if lease, ok := m.held[key]; ok && lease.token == token {
				delete(m.held, key)
			}
		})
	}, nil
}

var _ Locker = (*MemoryLocker)(nil)
