package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"painpoint-advisor/pkg/log"
)

// ConversationLocker 串行化同一对话上的轮次，保证历史读取与消息追加不会交错。
type ConversationLocker interface {
	// Lock 阻塞直到获得锁或 ctx 结束。返回的 unlock 可以安全地调用多次。
	Lock(ctx context.Context, conversationID string) (unlock func(), err error)
}

const lockPollInterval = 50 * time.Millisecond

// releaseScript 仅在 token 匹配时删除锁，避免误删他人在过期后重新获取的锁。
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// renewScript 仅在 token 匹配时延长过期时间。
var renewScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0
`)

type redisLocker struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisLocker 创建基于 Redis SET NX PX 的分布式锁。
func NewRedisLocker(rdb *redis.Client, ttl time.Duration) ConversationLocker {
	return &redisLocker{rdb: rdb, ttl: ttl}
}

func lockKey(conversationID string) string {
	return fmt.Sprintf("conversation:%s:lock", conversationID)
}

func (l *redisLocker) Lock(ctx context.Context, conversationID string) (func(), error) {
	key := lockKey(conversationID)
	token := uuid.NewString()

	ticker := time.NewTicker(lockPollInterval)
	defer ticker.Stop()
	for {
		ok, err := l.rdb.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to acquire conversation lock: %w", err)
		}
		if ok {
			stop := make(chan struct{})
			done := make(chan struct{})
			go l.renew(ctx, key, token, stop, done)

			var once sync.Once
			return func() {
				once.Do(func() {
					close(stop)
					<-done
					// 释放锁不受请求上下文取消的影响
					if err := releaseScript.Run(context.Background(), l.rdb, []string{key}, token).Err(); err != nil {
						log.Warnw("failed to release conversation lock", "conversationId", conversationID, "error", err)
					}
				})
			}, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// renew 每 ttl/3 续期一次，直到 unlock 或 ctx 结束。
func (l *redisLocker) renew(ctx context.Context, key, token string, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	if l.ttl <= 0 {
		return
	}
	ticker := time.NewTicker(l.ttl / 3)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := renewScript.Run(ctx, l.rdb, []string{key}, token, l.ttl.Milliseconds()).Int64()
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				log.Warnw("failed to renew conversation lock", "key", key, "error", err)
				continue
			}
			if n == 0 {
				log.Warnw("conversation lock lost before the turn finished", "key", key)
				return
			}
		}
	}
}

type localLock struct {
	ch   chan struct{}
	refs int
}

type localLocker struct {
	mu    sync.Mutex
	locks map[string]*localLock
}

// NewLocalLocker 创建进程内的对话锁，用于未配置 Redis 的单实例部署。
func NewLocalLocker() ConversationLocker {
	return &localLocker{locks: make(map[string]*localLock)}
}

func (l *localLocker) Lock(ctx context.Context, conversationID string) (func(), error) {
	l.mu.Lock()
	lk, ok := l.locks[conversationID]
	if !ok {
		lk = &localLock{ch: make(chan struct{}, 1)}
		l.locks[conversationID] = lk
	}
	lk.refs++
	l.mu.Unlock()

	select {
	case lk.ch <- struct{}{}:
	case <-ctx.Done():
		l.release(conversationID, lk)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-lk.ch
			l.release(conversationID, lk)
		})
	}, nil
}

func (l *localLocker) release(conversationID string, lk *localLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	lk.refs--
	if lk.refs == 0 {
		delete(l.locks, conversationID)
	}
}
