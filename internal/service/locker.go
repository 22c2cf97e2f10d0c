package service

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"

	"Anon_Board/internal/repository/mysql"
)

// 死锁/锁等待超时最多整体重放的次数
const maxTxAttempts = 3

// PostLocker 帖子级串行化点，redis.PostLock 和 pkg.LocalPostLock 都实现了它
type PostLocker interface {
	Lock(ctx context.Context, postID uint64) (unlock func(), err error)
}

// withPostLock 先拿帖子锁再开事务，锁内对瞬时冲突做有限次重试
func withPostLock(ctx context.Context, locker PostLocker, postID uint64, op func() error) error {
	unlock, err := locker.Lock(ctx, postID)
	if err != nil {
		return fmt.Errorf("%w: post %d: %v", ErrBusy, postID, err)
	}
	defer unlock()
	return retryTx(ctx, op)
}

// retryTx 只重试死锁、锁等待超时和 SQLite BUSY，其余错误直接返回
func retryTx(ctx context.Context, op func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 10 * time.Millisecond
	b.MaxInterval = 200 * time.Millisecond

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		err := op()
		if err != nil && !mysql.IsRetryable(err) {
			return struct{}{}, backoff.Permanent(err)
		}
		return struct{}{}, err
	}, backoff.WithBackOff(b), backoff.WithMaxTries(maxTxAttempts))
	if err != nil && mysql.IsRetryable(err) {
		return fmt.Errorf("%w: %v", ErrBusy, err)
	}
	return err
}
