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
	upsertSubject = `
INSERT INTO subject (id, status, pending, data) VALUES (?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    status = excluded.status, pending = excluded.pending, data = excluded.data`
	upsertDisputeRoute = `
INSERT INTO dispute_route (adjudicator, dispute_id, subject_id) VALUES (?, ?, ?)
ON CONFLICT(adjudicator, dispute_id) DO UPDATE SET subject_id = excluded.subject_id
WHERE dispute_route.subject_id = excluded.subject_id`
	selectSubject         = `SELECT data FROM subject WHERE id = ?`
	selectSubjectByRoute  = `SELECT subject_id FROM dispute_route WHERE adjudicator = ? AND dispute_id = ?`
	selectSubjectIds      = `SELECT id FROM subject ORDER BY position LIMIT ? OFFSET ?`
	selectPendingSubjects = `SELECT id FROM subject WHERE pending = 1 ORDER BY position`
)

type subjectRepository struct {
	db *sql.DB
}

func NewSubjectRepository(config ...interface{}) (domain.SubjectRepository, error) {
	db, err := parseDb(config...)
	if err != nil {
		return nil, fmt.Errorf("cannot open subject repository: %w", err)
	}
	return &subjectRepository{db}, nil
}

func (r *subjectRepository) AddOrUpdateSubject(ctx context.Context, subject domain.Subject) error {
	data, err := json.Marshal(subject)
	if err != nil {
		return fmt.Errorf("failed to serialize subject: %w", err)
	}

	return execTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(
			ctx, upsertSubject, subject.Id, int(subject.Status), subject.Status.Pending(), string(data),
		); err != nil {
			return fmt.Errorf("failed to upsert subject: %w", err)
		}

		adjudicator, disputeId, ok := subject.DisputeRoute()
		if !ok {
			return nil
		}
		res, err := tx.ExecContext(
			ctx, upsertDisputeRoute, adjudicator, int64(disputeId), subject.Id,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert dispute route: %w", err)
		}
		rows, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to upsert dispute route: %w", err)
		}
		if rows == 0 {
			return fmt.Errorf(
				"%w: dispute %d of %s", domain.ErrDisputeRouteTaken, disputeId, adjudicator,
			)
		}
		return nil
	})
}

func (r *subjectRepository) GetSubject(ctx context.Context, id string) (*domain.Subject, error) {
	var data string
	if err := r.db.QueryRowContext(ctx, selectSubject, id).Scan(&data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrSubjectNotFound, id)
		}
		return nil, fmt.Errorf("failed to get subject: %w", err)
	}

	subject := &domain.Subject{}
	if err := json.Unmarshal([]byte(data), subject); err != nil {
		return nil, fmt.Errorf("failed to deserialize subject: %w", err)
	}
	return subject, nil
}

func (r *subjectRepository) GetSubjectIdByDispute(
	ctx context.Context, adjudicator string, disputeId uint64,
) (string, error) {
	var subjectId string
	if err := r.db.QueryRowContext(
		ctx, selectSubjectByRoute, adjudicator, int64(disputeId),
	).Scan(&subjectId); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf(
				"%w: no subject for dispute %s:%d", domain.ErrSubjectNotFound, adjudicator, disputeId,
			)
		}
		return "", fmt.Errorf("failed to get dispute route: %w", err)
	}
	return subjectId, nil
}

func (r *subjectRepository) GetSubjectIds(
	ctx context.Context, offset, limit int,
) ([]string, error) {
	if limit <= 0 {
		limit = -1
	}
	return r.selectIds(ctx, selectSubjectIds, limit, offset)
}

func (r *subjectRepository) GetPendingSubjectIds(ctx context.Context) ([]string, error) {
	return r.selectIds(ctx, selectPendingSubjects)
}

func (r *subjectRepository) Close() {
	_ = r.db.Close()
}

func (r *subjectRepository) selectIds(
	ctx context.Context, query string, args ...interface{},
) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list subjects: %w", err)
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
