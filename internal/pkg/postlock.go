package pkg

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// LocalPostLock 进程内的帖子级锁，单实例部署或没有 Redis 时使用
type LocalPostLock struct {
	mu    sync.Mutex
	locks map[uint64]*postSem
}

type postSem struct {
	sem  *semaphore.Weighted
	refs int // 持有或等待的请求数，归零时从 map 中移除
}

func NewLocalPostLock() *LocalPostLock {
	return &LocalPostLock{locks: make(map[uint64]*postSem)}
}

// Lock 阻塞直到拿到锁或 ctx 结束；返回的 unlock 可重复调用
func (l *LocalPostLock) Lock(ctx context.Context, postID uint64) (func(), error) {
	l.mu.Lock()
	ps, ok := l.locks[postID]
	if !ok {
		ps = &postSem{sem: semaphore.NewWeighted(1)}
		l.locks[postID] = ps
	}
	ps.refs++
	l.mu.Unlock()

	if err := ps.sem.Acquire(ctx, 1); err != nil {
		l.deref(postID, ps)
		return nil, err
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			ps.sem.Release(1)
			l.deref(postID, ps)
		})
	}, nil
}

func (l *LocalPostLock) deref(postID uint64, ps *postSem) {
	l.mu.Lock()
	defer l.mu.Unlock()
	ps.refs--
	if ps.refs == 0 {
		delete(l.locks, postID)
	}
}
