package badgerdb

import (
	"context"
	"errors"
	"fmt"

	"github.com/crowdescrow/escrowd/internal/core/domain"
	"github.com/dgraph-io/badger/v4"
	"github.com/timshannon/badgerhold/v4"
)

const (
	subjectStoreDir    = "subjects"
	positionSequence   = "subject_position"
	sequenceBandwidth  = 100
	disputeRouteFormat = "%s:%d"
)

type subjectDTO struct {
	Id       string
	Position uint64
	Pending  bool
	Subject  domain.Subject
}

type disputeRouteDTO struct {
	Key       string
	SubjectId string
}

type subjectRepository struct {
	store    *badgerhold.Store
	sequence *badger.Sequence
}

func NewSubjectRepository(config ...interface{}) (domain.SubjectRepository, error) {
	dir, logger, err := parseConfig(subjectStoreDir, config...)
	if err != nil {
		return nil, err
	}

	store, err := createDB(dir, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open subject store: %s", err)
	}
	sequence, err := store.Badger().GetSequence([]byte(positionSequence), sequenceBandwidth)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to get position sequence: %s", err)
	}

	return &subjectRepository{store, sequence}, nil
}

func (r *subjectRepository) AddOrUpdateSubject(
	_ context.Context, subject domain.Subject,
) error {
	return withRetry(r.store, func(tx *badger.Txn) error {
		dto := subjectDTO{
			Id:      subject.Id,
			Pending: subject.Status.Pending(),
			Subject: subject,
		}

		var current subjectDTO
		err := r.store.TxGet(tx, subject.Id, &current)
		switch {
		case errors.Is(err, badgerhold.ErrNotFound):
			position, err := r.sequence.Next()
			if err != nil {
				return err
			}
			dto.Position = position + 1
		case err != nil:
			return err
		default:
			dto.Position = current.Position
		}

		if err := r.store.TxUpsert(tx, subject.Id, dto); err != nil {
			return err
		}

		adjudicator, disputeId, ok := subject.DisputeRoute()
		if !ok {
			return nil
		}
		key := fmt.Sprintf(disputeRouteFormat, adjudicator, disputeId)
		var route disputeRouteDTO
		err = r.store.TxGet(tx, key, &route)
		switch {
		case errors.Is(err, badgerhold.ErrNotFound):
		case err != nil:
			return err
		case route.SubjectId != subject.Id:
			return fmt.Errorf("%w: dispute %s", domain.ErrDisputeRouteTaken, key)
		}
		return r.store.TxUpsert(tx, key, disputeRouteDTO{key, subject.Id})
	})
}

func (r *subjectRepository) GetSubject(_ context.Context, id string) (*domain.Subject, error) {
	var dto subjectDTO
	if err := r.store.Get(id, &dto); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", domain.ErrSubjectNotFound, id)
		}
		return nil, err
	}
	subject := dto.Subject
	return &subject, nil
}

func (r *subjectRepository) GetSubjectIdByDispute(
	_ context.Context, adjudicator string, disputeId uint64,
) (string, error) {
	var dto disputeRouteDTO
	key := fmt.Sprintf(disputeRouteFormat, adjudicator, disputeId)
	if err := r.store.Get(key, &dto); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return "", fmt.Errorf("%w: no subject for dispute %s", domain.ErrSubjectNotFound, key)
		}
		return "", err
	}
	return dto.SubjectId, nil
}

func (r *subjectRepository) GetSubjectIds(
	_ context.Context, offset, limit int,
) ([]string, error) {
	query := badgerhold.Where("Position").Gt(uint64(0)).SortBy("Position").Skip(offset)
	if limit > 0 {
		query = query.Limit(limit)
	}

	var subjects []subjectDTO
	if err := r.store.Find(&subjects, query); err != nil {
		return nil, err
	}
	return subjectIds(subjects), nil
}

func (r *subjectRepository) GetPendingSubjectIds(_ context.Context) ([]string, error) {
	var subjects []subjectDTO
	query := badgerhold.Where("Pending").Eq(true).SortBy("Position")
	if err := r.store.Find(&subjects, query); err != nil {
		return nil, err
	}
	return subjectIds(subjects), nil
}

func (r *subjectRepository) Close() {
	_ = r.sequence.Release()
	r.store.Close()
}

func subjectIds(subjects []subjectDTO) []string {
	ids := make([]string, 0, len(subjects))
	for _, s := range subjects {
		ids = append(ids, s.Id)
	}
	return ids
}
