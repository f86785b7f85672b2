package pgdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/crowdescrow/escrowd/internal/core/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	selectParams = `SELECT data FROM params WHERE id = 1`
	upsertParams = `
INSERT INTO params (id, data) VALUES (1, $1)
ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data`
)

type paramsRepository struct {
	pool *pgxpool.Pool
}

func NewParamsRepository(config ...interface{}) (domain.ParamsRepository, error) {
	pool, err := parsePool(config...)
	if err != nil {
		return nil, fmt.Errorf("cannot open params repository: %w", err)
	}
	return &paramsRepository{pool}, nil
}

func (r *paramsRepository) Get(ctx context.Context) (*domain.Params, error) {
	var data []byte
	err := r.pool.QueryRow(ctx, selectParams).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("params: get: %w", err)
	}

	params := &domain.Params{}
	if err := json.Unmarshal(data, params); err != nil {
		return nil, fmt.Errorf("params: deserialize: %w", err)
	}
	return params, nil
}

func (r *paramsRepository) Upsert(ctx context.Context, params domain.Params) error {
	data, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("params: serialize: %w", err)
	}
	if _, err := r.pool.Exec(ctx, upsertParams, data); err != nil {
		return fmt.Errorf("params: upsert: %w", err)
	}
	return nil
}

func (r *paramsRepository) Close() {
	r.pool.Close()
}
