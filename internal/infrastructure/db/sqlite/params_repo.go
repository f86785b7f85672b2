package sqlitedb

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/crowdescrow/escrowd/internal/core/domain"
)

const (
	selectParams = `SELECT data FROM params WHERE id = 1`
	upsertParams = `
INSERT INTO params (id, data) VALUES (1, ?)
ON CONFLICT(id) DO UPDATE SET data = excluded.data`
)

type paramsRepository struct {
	db *sql.DB
}

func NewParamsRepository(config ...interface{}) (domain.ParamsRepository, error) {
	db, err := parseDb(config...)
	if err != nil {
		return nil, fmt.Errorf("cannot open params repository: %w", err)
	}
	return &paramsRepository{db}, nil
}

func (r *paramsRepository) Get(ctx context.Context) (*domain.Params, error) {
	var data string
	err := r.db.QueryRowContext(ctx, selectParams).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get params: %w", err)
	}

	params := &domain.Params{}
	if err := json.Unmarshal([]byte(data), params); err != nil {
		return nil, fmt.Errorf("failed to deserialize params: %w", err)
	}
	return params, nil
}

func (r *paramsRepository) Upsert(ctx context.Context, params domain.Params) error {
	data, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("failed to serialize params: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, upsertParams, string(data)); err != nil {
		return fmt.Errorf("failed to upsert params: %w", err)
	}
	return nil
}

func (r *paramsRepository) Close() {
	_ = r.db.Close()
}
