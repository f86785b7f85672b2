package ports

import "context"

// Ledger moves value in and out of escrow on behalf of the engine.
type Ledger interface {
	// Collect takes amount from the account into escrow and fails if the
	// account cannot cover it.
	Collect(ctx context.Context, from string, amount uint64) error
	// Transfer pays amount out of escrow. Callers treat it as best effort.
	Transfer(ctx context.Context, to string, amount uint64) error
	Deposit(ctx context.Context, to string, amount uint64) error
	Balance(ctx context.Context, account string) (uint64, error)
	Close()
}
