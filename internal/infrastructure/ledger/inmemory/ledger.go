package inmemoryledger

import (
	"context"
	"fmt"
	"sync"

	"github.com/crowdescrow/escrowd/internal/core/domain"
	"github.com/crowdescrow/escrowd/internal/core/ports"
	"github.com/crowdescrow/escrowd/pkg/safemath"
)

type ledger struct {
	lock     *sync.Mutex
	balances map[string]uint64
	escrow   uint64
}

func NewLedger() ports.Ledger {
	return &ledger{
		lock:     &sync.Mutex{},
		balances: make(map[string]uint64),
	}
}

func (l *ledger) Collect(_ context.Context, from string, amount uint64) error {
	if len(from) <= 0 {
		return fmt.Errorf("%w: missing account", domain.ErrInvalidParams)
	}
	if amount == 0 {
		return nil
	}

	l.lock.Lock()
	defer l.lock.Unlock()

	balance := l.balances[from]
	if balance < amount {
		return fmt.Errorf(
			"%w: balance of %s is %d, %d required", domain.ErrInsufficientValue, from, balance, amount,
		)
	}
	l.balances[from] = balance - amount
	l.escrow = safemath.SaturatingAdd(l.escrow, amount)
	return nil
}

func (l *ledger) Transfer(_ context.Context, to string, amount uint64) error {
	if len(to) <= 0 {
		return fmt.Errorf("%w: missing account", domain.ErrInvalidParams)
	}
	if amount == 0 {
		return nil
	}

	l.lock.Lock()
	defer l.lock.Unlock()

	if l.escrow < amount {
		return fmt.Errorf("escrow holds %d, cannot transfer %d", l.escrow, amount)
	}
	l.escrow -= amount
	l.balances[to] = safemath.SaturatingAdd(l.balances[to], amount)
	return nil
}

func (l *ledger) Deposit(_ context.Context, to string, amount uint64) error {
	if len(to) <= 0 {
		return fmt.Errorf("%w: missing account", domain.ErrInvalidParams)
	}

	l.lock.Lock()
	defer l.lock.Unlock()

	l.balances[to] = safemath.SaturatingAdd(l.balances[to], amount)
	return nil
}

func (l *ledger) Balance(_ context.Context, account string) (uint64, error) {
	l.lock.Lock()
	defer l.lock.Unlock()

	return l.balances[account], nil
}

func (l *ledger) Close() {}
