package ports

import "context"

// Locker serializes engine operations, possibly across processes.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
	Close()
}
