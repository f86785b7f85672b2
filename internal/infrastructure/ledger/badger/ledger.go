package badgerledger

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/crowdescrow/escrowd/internal/core/domain"
	"github.com/crowdescrow/escrowd/internal/core/ports"
	"github.com/crowdescrow/escrowd/pkg/safemath"
	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/timshannon/badgerhold/v4"
)

const (
	ledgerStoreDir = "ledger"
	// escrowAccount holds collected value, it can't clash with a user account
	// since those are never empty.
	escrowAccount = ""
	maxRetries    = 5
)

type account struct {
	Id      string
	Balance uint64
}

type ledger struct {
	store *badgerhold.Store
}

// NewLedger expects the base directory, empty for in-memory, and an
// optional badger.Logger.
func NewLedger(config ...interface{}) (ports.Ledger, error) {
	if len(config) != 2 {
		return nil, fmt.Errorf("invalid config")
	}
	baseDir, ok := config[0].(string)
	if !ok {
		return nil, fmt.Errorf("invalid base directory")
	}
	var logger badger.Logger
	if config[1] != nil {
		logger, ok = config[1].(badger.Logger)
		if !ok {
			return nil, fmt.Errorf("invalid logger")
		}
	}

	opts := badger.DefaultOptions("")
	opts.Logger = logger
	if len(baseDir) <= 0 {
		opts.InMemory = true
	} else {
		opts.Dir = filepath.Join(baseDir, ledgerStoreDir)
		opts.ValueDir = opts.Dir
		opts.Compression = options.ZSTD
	}

	store, err := badgerhold.Open(badgerhold.Options{
		Encoder:          badgerhold.DefaultEncode,
		Decoder:          badgerhold.DefaultDecode,
		SequenceBandwith: 100,
		Options:          opts,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger store: %s", err)
	}

	return &ledger{store}, nil
}

func (l *ledger) Collect(_ context.Context, from string, amount uint64) error {
	if len(from) <= 0 {
		return fmt.Errorf("%w: missing account", domain.ErrInvalidParams)
	}
	if amount == 0 {
		return nil
	}

	return l.move(from, escrowAccount, amount, func(balance uint64) error {
		return fmt.Errorf(
			"%w: balance of %s is %d, %d required", domain.ErrInsufficientValue, from, balance, amount,
		)
	})
}

func (l *ledger) Transfer(_ context.Context, to string, amount uint64) error {
	if len(to) <= 0 {
		return fmt.Errorf("%w: missing account", domain.ErrInvalidParams)
	}
	if amount == 0 {
		return nil
	}

	return l.move(escrowAccount, to, amount, func(balance uint64) error {
		return fmt.Errorf("escrow holds %d, cannot transfer %d", balance, amount)
	})
}

func (l *ledger) Deposit(_ context.Context, to string, amount uint64) error {
	if len(to) <= 0 {
		return fmt.Errorf("%w: missing account", domain.ErrInvalidParams)
	}

	return l.update(func(tx *badger.Txn) error {
		acc, err := l.getAccount(tx, to)
		if err != nil {
			return err
		}
		acc.Balance = safemath.SaturatingAdd(acc.Balance, amount)
		return l.store.TxUpsert(tx, acc.Id, acc)
	})
}

func (l *ledger) Balance(_ context.Context, id string) (uint64, error) {
	var acc account
	if err := l.store.Get(id, &acc); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get balance: %w", err)
	}
	return acc.Balance, nil
}

func (l *ledger) Close() {
	l.store.Close()
}

// move debits from and credits to atomically. insufficient builds the error
// returned when from can't cover amount.
func (l *ledger) move(
	from, to string, amount uint64, insufficient func(balance uint64) error,
) error {
	return l.update(func(tx *badger.Txn) error {
		debited, err := l.getAccount(tx, from)
		if err != nil {
			return err
		}
		if debited.Balance < amount {
			return insufficient(debited.Balance)
		}
		credited, err := l.getAccount(tx, to)
		if err != nil {
			return err
		}

		debited.Balance -= amount
		credited.Balance = safemath.SaturatingAdd(credited.Balance, amount)
		if err := l.store.TxUpsert(tx, debited.Id, debited); err != nil {
			return err
		}
		return l.store.TxUpsert(tx, credited.Id, credited)
	})
}

func (l *ledger) getAccount(tx *badger.Txn, id string) (account, error) {
	acc := account{Id: id}
	if err := l.store.TxGet(tx, id, &acc); err != nil && !errors.Is(err, badgerhold.ErrNotFound) {
		return acc, err
	}
	return acc, nil
}

func (l *ledger) update(fn func(tx *badger.Txn) error) error {
	var err error
	for i := 0; i < maxRetries; i++ {
		err = func() error {
			tx := l.store.Badger().NewTransaction(true)
			defer tx.Discard()

			if err := fn(tx); err != nil {
				return err
			}
			return tx.Commit()
		}()
		if err == nil {
			return nil
		}

		if errors.Is(err, badger.ErrConflict) {
			time.Sleep(100 * time.Millisecond)
			continue
		}
		return err
	}
	return err
}
