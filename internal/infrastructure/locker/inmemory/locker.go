package inmemorylocker

import (
	"context"
	"sync"

	"github.com/crowdescrow/escrowd/internal/core/ports"
)

type keyLock struct {
	ch   chan struct{}
	refs int
}

type locker struct {
	lock  sync.Mutex
	locks map[string]*keyLock
}

// NewLocker returns a locker that serializes callers of the same process
// on a per-key basis.
func NewLocker() ports.Locker {
	return &locker{locks: make(map[string]*keyLock)}
}

func (l *locker) Lock(ctx context.Context, key string) (func(), error) {
	l.lock.Lock()
	kl, ok := l.locks[key]
	if !ok {
		kl = &keyLock{ch: make(chan struct{}, 1)}
		l.locks[key] = kl
	}
	kl.refs++
	l.lock.Unlock()

	select {
	case kl.ch <- struct{}{}:
	case <-ctx.Done():
		l.release(key, kl)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-kl.ch
			l.release(key, kl)
		})
	}, nil
}

func (l *locker) Close() {}

func (l *locker) release(key string, kl *keyLock) {
	l.lock.Lock()
	defer l.lock.Unlock()

	kl.refs--
	if kl.refs <= 0 {
		delete(l.locks, key)
	}
}
