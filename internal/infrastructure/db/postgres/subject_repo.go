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
	upsertSubject = `
INSERT INTO subject (id, status, pending, data) VALUES ($1, $2, $3, $4)
ON CONFLICT (id) DO UPDATE SET
    status = EXCLUDED.status, pending = EXCLUDED.pending, data = EXCLUDED.data`
	upsertDisputeRoute = `
INSERT INTO dispute_route (adjudicator, dispute_id, subject_id) VALUES ($1, $2, $3)
ON CONFLICT (adjudicator, dispute_id) DO UPDATE SET subject_id = EXCLUDED.subject_id
WHERE dispute_route.subject_id = EXCLUDED.subject_id`
	selectSubject         = `SELECT data FROM subject WHERE id = $1`
	selectSubjectByRoute  = `SELECT subject_id FROM dispute_route WHERE adjudicator = $1 AND dispute_id = $2`
	selectSubjectIds      = `SELECT id FROM subject ORDER BY position LIMIT $1 OFFSET $2`
	selectAllSubjectIds   = `SELECT id FROM subject ORDER BY position OFFSET $1`
	selectPendingSubjects = `SELECT id FROM subject WHERE pending ORDER BY position`
)

type subjectRepository struct {
	pool *pgxpool.Pool
}

func NewSubjectRepository(config ...interface{}) (domain.SubjectRepository, error) {
	pool, err := parsePool(config...)
	if err != nil {
		return nil, fmt.Errorf("cannot open subject repository: %w", err)
	}
	return &subjectRepository{pool}, nil
}

func (r *subjectRepository) AddOrUpdateSubject(ctx context.Context, subject domain.Subject) error {
	data, err := json.Marshal(subject)
	if err != nil {
		return fmt.Errorf("subjects: serialize: %w", err)
	}

	return execTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(
			ctx, upsertSubject, subject.Id, int16(subject.Status), subject.Status.Pending(), data,
		); err != nil {
			return fmt.Errorf("subjects: upsert: %w", err)
		}

		adjudicator, disputeId, ok := subject.DisputeRoute()
		if !ok {
			return nil
		}
		tag, err := tx.Exec(ctx, upsertDisputeRoute, adjudicator, int64(disputeId), subject.Id)
		if err != nil {
			return fmt.Errorf("subjects: upsert dispute route: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf(
				"%w: dispute %d of %s", domain.ErrDisputeRouteTaken, disputeId, adjudicator,
			)
		}
		return nil
	})
}

func (r *subjectRepository) GetSubject(ctx context.Context, id string) (*domain.Subject, error) {
	var data []byte
	if err := r.pool.QueryRow(ctx, selectSubject, id).Scan(&data); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrSubjectNotFound, id)
		}
		return nil, fmt.Errorf("subjects: get: %w", err)
	}

	subject := &domain.Subject{}
	if err := json.Unmarshal(data, subject); err != nil {
		return nil, fmt.Errorf("subjects: deserialize: %w", err)
	}
	return subject, nil
}

func (r *subjectRepository) GetSubjectIdByDispute(
	ctx context.Context, adjudicator string, disputeId uint64,
) (string, error) {
	var subjectId string
	if err := r.pool.QueryRow(
		ctx, selectSubjectByRoute, adjudicator, int64(disputeId),
	).Scan(&subjectId); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", fmt.Errorf(
				"%w: no subject for dispute %s:%d", domain.ErrSubjectNotFound, adjudicator, disputeId,
			)
		}
		return "", fmt.Errorf("subjects: get dispute route: %w", err)
	}
	return subjectId, nil
}

func (r *subjectRepository) GetSubjectIds(
	ctx context.Context, offset, limit int,
) ([]string, error) {
	if limit <= 0 {
		return r.selectIds(ctx, selectAllSubjectIds, offset)
	}
	return r.selectIds(ctx, selectSubjectIds, limit, offset)
}

func (r *subjectRepository) GetPendingSubjectIds(ctx context.Context) ([]string, error) {
	return r.selectIds(ctx, selectPendingSubjects)
}

func (r *subjectRepository) Close() {
	r.pool.Close()
}

func (r *subjectRepository) selectIds(
	ctx context.Context, query string, args ...interface{},
) ([]string, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("subjects: list: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("subjects: list: %w", err)
	}
	return ids, nil
}
