package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

func lockKey(key string) string {
	return fmt.Sprintf("shophub:checkout:%s", key)
}

// 同じユーザーの同時チェックアウトを1つに絞るためのロック
// 取れなければok=false。tokenはUnlockに渡す
type RedisCheckoutLock struct {
	client *redis.Client
}

func NewRedisCheckoutLock(client *redis.Client) *RedisCheckoutLock {
	return &RedisCheckoutLock{client: client}
}

// 自分のtokenのときだけ消す
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

func (l *RedisCheckoutLock) TryLock(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, lockKey(key), token, ttl).Result()
	if err != nil {
		return "", false, err
	}
	if !ok {
		return "", false, nil
	}
	return token, true, nil
}

func (l *RedisCheckoutLock) Unlock(ctx context.Context, key string, token string) error {
	err := unlockScript.Run(ctx, l.client, []string{lockKey(key)}, token).Err()
	if err == redis.Nil {
		return nil
	}
	return err
}

// REDIS_ADDRが無いとき用（単一プロセスのみ有効）
type MemoryCheckoutLock struct {
	mu    sync.Mutex
	held  map[string]memoryEntry
	nowFn func() time.Time
}

type memoryEntry struct {
	token     string
	expiresAt time.Time
}

func NewMemoryCheckoutLock() *MemoryCheckoutLock {
	return &MemoryCheckoutLock{held: map[string]memoryEntry{}, nowFn: time.Now}
}

func (l *MemoryCheckoutLock) TryLock(_ context.Context, key string, ttl time.Duration) (string, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.nowFn()
	k := lockKey(key)
	if e, found := l.held[k]; found && now.Before(e.expiresAt) {
		return "", false, nil
	}

	token := uuid.NewString()
	l.held[k] = memoryEntry{token: token, expiresAt: now.Add(ttl)}
	return token, true, nil
}

func (l *MemoryCheckoutLock) Unlock(_ context.Context, key string, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	k := lockKey(key)
	if e, found := l.held[k]; found && e.token == token {
		delete(l.held, k)
	}
	return nil
}
