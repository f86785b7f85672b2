package application

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/crowdescrow/escrowd/internal/core/domain"
	"github.com/crowdescrow/escrowd/internal/core/ports"
	log "github.com/sirupsen/logrus"
)

const (
	paramsLockKey     = "params"
	subjectLockPrefix = "subject:"
	defaultListLimit  = 100
	keeperParallelism = 4
)

type service struct {
	keeperInterval int64

	repoManager  ports.RepoManager
	adjudicators map[string]ports.Adjudicator
	ledger       ports.Ledger
	publisher    ports.EventPublisher
	scheduler    ports.SchedulerService
	locker       ports.Locker
	clock        func() time.Time
}

type Option func(*service)

// WithClock replaces the wall clock used to timestamp operations.
func WithClock(clock func() time.Time) Option {
	return func(s *service) {
		s.clock = clock
	}
}

// NewService returns the escrow engine. The given params are stored only
// if none were persisted yet. A keeper interval of 0 disables the
// background settlement of expired windows.
func NewService(
	defaultParams domain.Params, keeperInterval int64,
	repoManager ports.RepoManager, adjudicators []ports.Adjudicator,
	ledger ports.Ledger, publisher ports.EventPublisher,
	scheduler ports.SchedulerService, locker ports.Locker,
	opts ...Option,
) (Service, error) {
	if len(adjudicators) <= 0 {
		return nil, fmt.Errorf("missing adjudicator")
	}
	adjudicatorsById := make(map[string]ports.Adjudicator)
	for _, a := range adjudicators {
		adjudicatorsById[a.Id()] = a
	}

	svc := &service{
		keeperInterval: keeperInterval,
		repoManager:    repoManager,
		adjudicators:   adjudicatorsById,
		ledger:         ledger,
		publisher:      publisher,
		scheduler:      scheduler,
		locker:         locker,
		clock:          time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}

	ctx := context.Background()
	params, err := repoManager.Params().Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get params: %w", err)
	}
	if params == nil {
		if err := svc.validateParams(defaultParams); err != nil {
			return nil, err
		}
		if err := repoManager.Params().Upsert(ctx, defaultParams); err != nil {
			return nil, fmt.Errorf("failed to store params: %w", err)
		}
		log.Debug("stored default params")
	}

	return svc, nil
}

func (s *service) Start() error {
	if s.keeperInterval > 0 {
		if err := s.scheduler.ScheduleTask(
			s.keeperInterval, false, s.settleExpiredRequests,
		); err != nil {
			return fmt.Errorf("failed to schedule keeper: %w", err)
		}
	}
	s.scheduler.Start()
	return nil
}

func (s *service) Stop() {
	s.scheduler.Stop()
	log.Debug("stopped scheduler")
	s.publisher.Close()
	log.Debug("closed event publisher")
	s.locker.Close()
	s.ledger.Close()
	s.repoManager.Close()
	log.Debug("closed connection to db")
}

func (s *service) GetInfo(ctx context.Context) (*ServiceInfo, error) {
	params, err := s.getParams(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(s.adjudicators))
	for id := range s.adjudicators {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	return &ServiceInfo{
		Adjudicators:   ids,
		KeeperInterval: s.keeperInterval,
		Params:         *params,
	}, nil
}

func (s *service) GetSubject(ctx context.Context, id string) (*domain.Subject, error) {
	return s.repoManager.Subjects().GetSubject(ctx, id)
}

func (s *service) ListSubjects(ctx context.Context, offset, limit int) ([]string, error) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 || limit > defaultListLimit {
		limit = defaultListLimit
	}
	return s.repoManager.Subjects().GetSubjectIds(ctx, offset, limit)
}

func (s *service) GetParams(ctx context.Context) (*domain.Params, error) {
	return s.getParams(ctx)
}

func (s *service) UpdateParams(ctx context.Context, caller string, params domain.Params) error {
	unlock, err := s.locker.Lock(ctx, paramsLockKey)
	if err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}
	defer unlock()

	current, err := s.getParams(ctx)
	if err != nil {
		return err
	}
	if caller != current.Governor {
		return fmt.Errorf("%w: only the governor can update params", domain.ErrUnauthorizedCaller)
	}
	if err := s.validateParams(params); err != nil {
		return err
	}
	if err := s.repoManager.Params().Upsert(ctx, params); err != nil {
		return fmt.Errorf("failed to update params: %w", err)
	}

	log.WithFields(log.Fields{
		"governor":    params.Governor,
		"adjudicator": params.Adjudicator,
		"deposit":     params.RequesterDeposit,
	}).Info("updated params")
	return nil
}

func (s *service) getParams(ctx context.Context) (*domain.Params, error) {
	params, err := s.repoManager.Params().Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get params: %w", err)
	}
	if params == nil {
		return nil, errors.New("params not initialized")
	}
	return params, nil
}

func (s *service) validateParams(params domain.Params) error {
	if err := params.Validate(); err != nil {
		return err
	}
	if _, ok := s.adjudicators[params.Adjudicator]; !ok {
		return fmt.Errorf(
			"%w: unknown adjudicator %s", domain.ErrInvalidParams, params.Adjudicator,
		)
	}
	return nil
}

func (s *service) adjudicator(id string) (ports.Adjudicator, error) {
	adjudicator, ok := s.adjudicators[id]
	if !ok {
		return nil, fmt.Errorf("%w: adjudicator %s not registered", domain.ErrAdjudicatorCallFailed, id)
	}
	return adjudicator, nil
}
