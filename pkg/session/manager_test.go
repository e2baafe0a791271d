package session_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dewakar-s/procflow/pkg/adapters/memory"
	"github.com/dewakar-s/procflow/pkg/ports"
	"github.com/dewakar-s/procflow/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_WithLockSerializesPerSession(t *testing.T) {
	mgr := session.NewManager(memory.NewStore())
	ctx := context.Background()

	var inside, maxInside int32
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := mgr.WithLock(ctx, "same", func(ctx context.Context) error {
				n := atomic.AddInt32(&inside, 1)
				for {
					m := atomic.LoadInt32(&maxInside)
					if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
						break
					}
				}
				time.Sleep(2 * time.Millisecond)
				atomic.AddInt32(&inside, -1)
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&maxInside))
}

type fakeLocker struct {
	mu       sync.Mutex
	locked   []string
	unlocked []string
	ttl      time.Duration
	fail     bool
}

func (f *fakeLocker) Lock(_ context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	if f.fail {
		return nil, errors.New("redis down")
	}
	f.mu.Lock()
	f.locked = append(f.locked, key)
	f.ttl = ttl
	f.mu.Unlock()
	return func(context.Context) error {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.unlocked = append(f.unlocked, key)
		return nil
	}, nil
}

func TestManager_DistributedLocker(t *testing.T) {
	locker := &fakeLocker{}
	mgr := session.NewManager(memory.NewStore(), session.WithLocker(locker), session.WithLockTTL(5*time.Second))

	err := mgr.WithLock(context.Background(), "s1", func(context.Context) error { return nil })
	require.NoError(t, err)

	assert.Equal(t, []string{"s1"}, locker.locked)
	assert.Equal(t, []string{"s1"}, locker.unlocked)
	assert.Equal(t, 5*time.Second, locker.ttl)

	locker.fail = true
	called := false
	err = mgr.WithLock(context.Background(), "s1", func(context.Context) error { called = true; return nil })
	assert.ErrorContains(t, err, "distributed lock")
	assert.False(t, called)
}
