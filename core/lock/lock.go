package lock

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

var (
	// ErrUnknownDriver is returned by New for an unsupported driver name.
	ErrUnknownDriver = errors.New("unknown lock driver")
	// ErrLeaseLost is the cause of a held context whose lease could not be kept.
	ErrLeaseLost = errors.New("lock lease lost")
)

// Locker hands out exclusive scopes per key.
type Locker interface {
	// Lock blocks until the scope for key is held or ctx is done.
	// The returned context is cancelled when the scope is released or lost;
	// work that must stay exclusive runs under it.
	// The returned function releases the scope and is safe to call more than once.
	Lock(ctx context.Context, key string) (context.Context, func(), error)
}

// New creates the Locker selected by cfg.Driver.
func New(cfg Config, logger *zap.Logger) (Locker, error) {
	switch cfg.Driver {
	case "", DriverLocal:
		return NewLocal(), nil
	case DriverRedis:
		r, err := NewRedis(cfg, logger)
		if err != nil {
			return nil, err
		}
		return r, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownDriver, cfg.Driver)
	}
}

// Local is an in-process keyed mutex. Entries are dropped once nobody holds or waits on them.
type Local struct {
	mu    sync.Mutex
	locks map[string]*entry
}

type entry struct {
	ch   chan struct{}
	refs int
}

// NewLocal creates an empty Local locker.
func NewLocal() *Local {
	return &Local{locks: make(map[string]*entry)}
}

// Lock implements Locker.
func (l *Local) Lock(ctx context.Context, key string) (context.Context, func(), error) {
	l.mu.Lock()
	e, ok := l.locks[key]
	if !ok {
		e = &entry{ch: make(chan struct{}, 1)}
		l.locks[key] = e
	}
	e.refs++
	l.mu.Unlock()

	select {
	case e.ch <- struct{}{}:
	case <-ctx.Done():
		l.release(key, e)
		return nil, nil, ctx.Err()
	}

	held, cancel := context.WithCancel(ctx)
	var once sync.Once
	return held, func() {
		once.Do(func() {
			cancel()
			<-e.ch
			l.release(key, e)
		})
	}, nil
}

func (l *Local) release(key string, e *entry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(l.locks, key)
	}
}

// size returns the number of tracked keys.
func (l *Local) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
