package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"shophub/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// どちらもcheckoutに渡せる
var (
	_ usecase.CheckoutLocker = (*RedisCheckoutLock)(nil)
	_ usecase.CheckoutLocker = (*MemoryCheckoutLock)(nil)
)

func TestMemoryCheckoutLock_Exclusive(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryCheckoutLock()

	token, ok, err := l.TryLock(ctx, "user:1", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = l.TryLock(ctx, "user:1", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	// 別ユーザーは独立
	_, ok, err = l.TryLock(ctx, "user:2", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, l.Unlock(ctx, "user:1", token))
	_, ok, err = l.TryLock(ctx, "user:1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemoryCheckoutLock_WrongTokenDoesNotRelease(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryCheckoutLock()

	_, ok, _ := l.TryLock(ctx, "user:1", time.Minute)
	require.True(t, ok)

	require.NoError(t, l.Unlock(ctx, "user:1", "someone-else"))

	_, ok, _ = l.TryLock(ctx, "user:1", time.Minute)
	assert.False(t, ok)
}

func TestMemoryCheckoutLock_Expires(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	l := NewMemoryCheckoutLock()
	l.nowFn = func() time.Time { return now }

	_, ok, _ := l.TryLock(ctx, "user:1", 30*time.Second)
	require.True(t, ok)

	now = now.Add(31 * time.Second)
	_, ok, _ = l.TryLock(ctx, "user:1", 30*time.Second)
	assert.True(t, ok)
}

func TestMemoryCheckoutLock_Concurrent(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryCheckoutLock()

	var wins int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, ok, _ := l.TryLock(ctx, "user:1", time.Minute); ok {
				atomic.AddInt32(&wins, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins)
}
