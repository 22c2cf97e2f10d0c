package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	PostLockKeyPrefix = "lock:post"
	DefaultLockTTL    = 3 * time.Second
	DefaultLockWait   = 2 * time.Second

	lockRetryInitial = 5 * time.Millisecond
	lockRetryMax     = 100 * time.Millisecond
	releaseTimeout   = time.Second
)

var ErrLockNotAcquired = errors.New("post lock not acquired")

// 只删除自己持有的锁
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
  return redis.call("del", KEYS[1])
else
  return 0
end`)

// PostLock 帖子级分布式锁，评论编号分配和推荐计数都在这把锁下串行执行
type PostLock struct {
	RDB  *redis.Client
	ttl  time.Duration
	wait time.Duration
}

func NewPostLock(rdb *redis.Client, ttl, wait time.Duration) *PostLock {
	if ttl <= 0 {
		ttl = DefaultLockTTL
	}
	if wait <= 0 {
		wait = DefaultLockWait
	}
	return &PostLock{RDB: rdb, ttl: ttl, wait: wait}
}

func (l *PostLock) key(postID uint64) string {
	return fmt.Sprintf("%s:%d", PostLockKeyPrefix, postID)
}

// Acquire 请求加分布式锁，只尝试一次
func (l *PostLock) Acquire(ctx context.Context, postID uint64, token string) (bool, error) {
	return l.RDB.SetNX(ctx, l.key(postID), token, l.ttl).Result()
}

// Release 用lua保证原子性
func (l *PostLock) Release(ctx context.Context, postID uint64, token string) error {
	_, err := releaseScript.Run(ctx, l.RDB, []string{l.key(postID)}, token).Result()
	return err
}

// Lock 退避重试直到拿到锁，超过 wait 返回 ErrLockNotAcquired
func (l *PostLock) Lock(ctx context.Context, postID uint64) (func(), error) {
	token := uuid.NewString()

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = lockRetryInitial
	b.MaxInterval = lockRetryMax

	_, err := backoff.Retry(ctx, func() (bool, error) {
		ok, err := l.Acquire(ctx, postID, token)
		if err != nil {
			return false, backoff.Permanent(err)
		}
		if !ok {
			return false, ErrLockNotAcquired
		}
		return true, nil
	}, backoff.WithBackOff(b), backoff.WithMaxElapsedTime(l.wait))
	if err != nil {
		return nil, fmt.Errorf("lock post %d: %w", postID, err)
	}

	return func() {
		// 请求 ctx 可能已经取消，释放用独立的超时
		rctx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
		defer cancel()
		_ = l.Release(rctx, postID, token)
	}, nil
}
