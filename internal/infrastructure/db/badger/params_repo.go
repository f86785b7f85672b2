package badgerdb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/crowdescrow/escrowd/internal/core/domain"
	"github.com/dgraph-io/badger/v4"
	"github.com/timshannon/badgerhold/v4"
)

const (
	paramsStoreDir = "params"
	paramsKey      = "params"
)

type paramsRepository struct {
	store *badgerhold.Store
}

func NewParamsRepository(config ...interface{}) (domain.ParamsRepository, error) {
	dir, logger, err := parseConfig(paramsStoreDir, config...)
	if err != nil {
		return nil, err
	}

	store, err := createDB(dir, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open params store: %s", err)
	}

	return &paramsRepository{store}, nil
}

func (r *paramsRepository) Get(_ context.Context) (*domain.Params, error) {
	var params domain.Params
	err := r.store.Get(paramsKey, &params)
	if errors.Is(err, badgerhold.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get params: %w", err)
	}
	return &params, nil
}

func (r *paramsRepository) Upsert(_ context.Context, params domain.Params) error {
	if err := r.store.Upsert(paramsKey, &params); err != nil {
		if errors.Is(err, badger.ErrConflict) {
			attempts := 1
			for errors.Is(err, badger.ErrConflict) && attempts <= maxRetries {
				time.Sleep(100 * time.Millisecond)
				err = r.store.Upsert(paramsKey, &params)
				attempts++
			}
		}
		return err
	}
	return nil
}

func (r *paramsRepository) Close() {
	r.store.Close()
}
