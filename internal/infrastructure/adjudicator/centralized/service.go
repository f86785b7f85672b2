package centralized

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/crowdescrow/escrowd/internal/core/domain"
	"github.com/crowdescrow/escrowd/internal/core/ports"
	"github.com/dgraph-io/badger/v4"
	log "github.com/sirupsen/logrus"
)

const defaultRetryInterval = 30

// Adjudicator is an appealable court ruled by a single owner. Disputes are
// persisted and rulings not yet applied by the ruler are delivered again
// until it accepts or refuses them.
type Adjudicator interface {
	ports.Adjudicator
	Owner() string
	// RegisterRuler sets who receives the final rulings and resumes the
	// executions and deliveries left pending by a previous run.
	RegisterRuler(ruler ports.Ruler)
	// GiveRuling is reserved to the owner. The ruling becomes final once the
	// appeal period elapses without appeal.
	GiveRuling(ctx context.Context, caller string, disputeId uint64, ruling domain.Ruling) error
	// ExecuteRuling finalizes a dispute whose appeal window is over and
	// hands the ruling to the ruler. It delivers again a final ruling the
	// ruler failed to apply.
	ExecuteRuling(ctx context.Context, disputeId uint64) error
	Close()
}

type Config struct {
	Id              string
	Owner           string
	ArbitrationCost uint64
	AppealCost      uint64
	// AppealPeriod in seconds. Zero makes rulings final right away.
	AppealPeriod int64
	// Datadir holds the disputes, kept in memory if empty.
	Datadir string
	// RetryInterval in seconds between two deliveries of a ruling.
	RetryInterval int64
}

type Option func(*service)

func WithClock(clock func() time.Time) Option {
	return func(s *service) {
		s.clock = clock
	}
}

func WithLogger(logger badger.Logger) Option {
	return func(s *service) {
		s.logger = logger
	}
}

type service struct {
	cfg       Config
	scheduler ports.SchedulerService
	clock     func() time.Time
	logger    badger.Logger
	store     *disputeStore

	lock       *sync.RWMutex
	ruler      ports.Ruler
	disputes   map[uint64]*dispute
	nextId     uint64
	delivering map[uint64]bool
}

func NewAdjudicator(
	cfg Config, scheduler ports.SchedulerService, opts ...Option,
) (Adjudicator, error) {
	if len(cfg.Id) <= 0 {
		return nil, fmt.Errorf("missing adjudicator id")
	}
	if len(cfg.Owner) <= 0 {
		return nil, fmt.Errorf("missing adjudicator owner")
	}
	if cfg.AppealPeriod < 0 {
		return nil, fmt.Errorf("invalid appeal period %d", cfg.AppealPeriod)
	}
	if cfg.RetryInterval < 0 {
		return nil, fmt.Errorf("invalid retry interval %d", cfg.RetryInterval)
	}
	if cfg.RetryInterval == 0 {
		cfg.RetryInterval = defaultRetryInterval
	}

	svc := &service{
		cfg:        cfg,
		scheduler:  scheduler,
		clock:      time.Now,
		lock:       &sync.RWMutex{},
		disputes:   make(map[uint64]*dispute),
		delivering: make(map[uint64]bool),
	}
	for _, opt := range opts {
		opt(svc)
	}

	store, err := newDisputeStore(cfg.Datadir, svc.logger)
	if err != nil {
		return nil, err
	}
	disputes, err := store.all()
	if err != nil {
		_ = store.close()
		return nil, fmt.Errorf("failed to load disputes: %w", err)
	}
	for i := range disputes {
		d := disputes[i]
		svc.disputes[d.Id] = &d
		if d.Id >= svc.nextId {
			svc.nextId = d.Id + 1
		}
	}
	svc.store = store

	if len(disputes) > 0 {
		log.Debugf("adjudicator %s: loaded %d disputes", cfg.Id, len(disputes))
	}
	return svc, nil
}

func (s *service) Id() string {
	return s.cfg.Id
}

func (s *service) Owner() string {
	return s.cfg.Owner
}

// FeeAccount is the owner's account.
func (s *service) FeeAccount() string {
	return s.cfg.Owner
}

func (s *service) RegisterRuler(ruler ports.Ruler) {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.ruler = ruler

	now := s.clock().Unix()
	for id, d := range s.disputes {
		switch {
		case d.Status == ports.DisputeAppealable:
			s.scheduleExecution(id, max(d.Window.End, now))
		case d.Status == ports.DisputeFinal && !d.Delivered:
			s.scheduleDelivery(id, now)
		}
	}
}

func (s *service) CostForDispute(context.Context, []byte) (uint64, error) {
	return s.cfg.ArbitrationCost, nil
}

func (s *service) CostForAppeal(_ context.Context, disputeId uint64, _ []byte) (uint64, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	if _, err := s.getDispute(disputeId); err != nil {
		return 0, err
	}
	return s.cfg.AppealCost, nil
}

func (s *service) OpenDispute(
	_ context.Context, outcomes uint, _ []byte, payment uint64,
) (uint64, error) {
	if outcomes < 2 {
		return 0, fmt.Errorf("%w: at least 2 outcomes required", domain.ErrInvalidParams)
	}
	if payment < s.cfg.ArbitrationCost {
		return 0, fmt.Errorf(
			"%w: arbitration costs %d, got %d", domain.ErrInsufficientValue, s.cfg.ArbitrationCost, payment,
		)
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	d := dispute{
		Id:       s.nextId,
		Outcomes: outcomes,
		Status:   ports.DisputePending,
	}
	if err := s.store.upsert(d); err != nil {
		return 0, fmt.Errorf("failed to store dispute %d: %w", d.Id, err)
	}
	s.disputes[d.Id] = &d
	s.nextId++

	log.Debugf("adjudicator %s: created dispute %d", s.cfg.Id, d.Id)
	return d.Id, nil
}

func (s *service) OpenAppeal(
	_ context.Context, disputeId uint64, _ []byte, payment uint64,
) error {
	if payment < s.cfg.AppealCost {
		return fmt.Errorf(
			"%w: appeal costs %d, got %d", domain.ErrInsufficientValue, s.cfg.AppealCost, payment,
		)
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	d, err := s.getDispute(disputeId)
	if err != nil {
		return err
	}
	if d.Status != ports.DisputeAppealable {
		return fmt.Errorf("%w: dispute %d is %s", domain.ErrInvalidStateTransition, disputeId, d.Status)
	}
	if now := s.clock().Unix(); now >= d.Window.End {
		return fmt.Errorf("%w: appeal period of dispute %d is over", domain.ErrWindowExpired, disputeId)
	}
	if err := s.update(d, func(d *dispute) {
		d.Status = ports.DisputePending
		d.Ruling = domain.RulingUndecided
		d.Window = domain.AppealWindow{}
		d.Appeals++
	}); err != nil {
		return err
	}

	log.Debugf("adjudicator %s: dispute %d appealed", s.cfg.Id, disputeId)
	return nil
}

func (s *service) AppealWindow(_ context.Context, disputeId uint64) (domain.AppealWindow, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	d, err := s.getDispute(disputeId)
	if err != nil {
		return domain.AppealWindow{}, err
	}
	if d.Status != ports.DisputeAppealable {
		return domain.AppealWindow{}, nil
	}
	return d.Window, nil
}

func (s *service) CurrentLeaning(_ context.Context, disputeId uint64) (domain.Ruling, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	d, err := s.getDispute(disputeId)
	if err != nil {
		return domain.RulingUndecided, err
	}
	return d.Ruling, nil
}

func (s *service) Status(_ context.Context, disputeId uint64) (ports.DisputeStatus, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	d, err := s.getDispute(disputeId)
	if err != nil {
		return ports.DisputePending, err
	}
	return d.Status, nil
}

func (s *service) GiveRuling(
	ctx context.Context, caller string, disputeId uint64, ruling domain.Ruling,
) error {
	if caller != s.cfg.Owner {
		return fmt.Errorf("%w: only the owner can rule", domain.ErrUnauthorizedCaller)
	}
	if !ruling.Valid() {
		return fmt.Errorf("%w: invalid ruling %d", domain.ErrInvalidParams, ruling)
	}

	s.lock.Lock()
	d, err := s.getDispute(disputeId)
	if err != nil {
		s.lock.Unlock()
		return err
	}
	if d.Status != ports.DisputePending {
		s.lock.Unlock()
		return fmt.Errorf("%w: dispute %d is %s", domain.ErrInvalidStateTransition, disputeId, d.Status)
	}

	if s.cfg.AppealPeriod <= 0 {
		if err := s.update(d, func(d *dispute) {
			d.Ruling = ruling
			d.Status = ports.DisputeFinal
		}); err != nil {
			s.lock.Unlock()
			return err
		}
		s.lock.Unlock()

		log.Infof("adjudicator %s: ruled %s on dispute %d", s.cfg.Id, ruling, disputeId)
		return s.deliver(ctx, disputeId)
	}

	now := s.clock().Unix()
	if err := s.update(d, func(d *dispute) {
		d.Ruling = ruling
		d.Status = ports.DisputeAppealable
		d.Window = domain.AppealWindow{Start: now, End: now + s.cfg.AppealPeriod}
	}); err != nil {
		s.lock.Unlock()
		return err
	}
	end := d.Window.End
	s.scheduleExecution(disputeId, end)
	s.lock.Unlock()

	log.Infof(
		"adjudicator %s: ruled %s on dispute %d, appealable until %d",
		s.cfg.Id, ruling, disputeId, end,
	)
	return nil
}

func (s *service) ExecuteRuling(ctx context.Context, disputeId uint64) error {
	s.lock.Lock()
	d, err := s.getDispute(disputeId)
	if err != nil {
		s.lock.Unlock()
		return err
	}

	switch {
	case d.Status == ports.DisputeFinal && d.Delivered:
		err = fmt.Errorf("%w: ruling of dispute %d already executed", domain.ErrInvalidStateTransition, disputeId)
	case d.Status == ports.DisputeFinal:
	case d.Status != ports.DisputeAppealable:
		err = fmt.Errorf("%w: dispute %d is %s", domain.ErrInvalidStateTransition, disputeId, d.Status)
	case s.clock().Unix() < d.Window.End:
		err = fmt.Errorf("%w: appeal period of dispute %d is not over", domain.ErrWindowNotYetElapsed, disputeId)
	default:
		err = s.update(d, func(d *dispute) { d.Status = ports.DisputeFinal })
	}
	s.lock.Unlock()
	if err != nil {
		return err
	}

	return s.deliver(ctx, disputeId)
}

func (s *service) Close() {
	if err := s.store.close(); err != nil {
		log.WithError(err).Warnf("adjudicator %s: failed to close dispute store", s.cfg.Id)
	}
}

// deliver hands the final ruling of disputeId to the ruler. A failed
// delivery is scheduled again unless the ruler refused the ruling.
func (s *service) deliver(ctx context.Context, disputeId uint64) error {
	s.lock.Lock()
	d, err := s.getDispute(disputeId)
	if err != nil {
		s.lock.Unlock()
		return err
	}
	if d.Delivered || s.delivering[disputeId] {
		s.lock.Unlock()
		return nil
	}
	s.delivering[disputeId] = true
	ruler, ruling := s.ruler, d.Ruling
	s.lock.Unlock()

	ruleErr := fmt.Errorf("no ruler registered")
	if ruler != nil {
		ruleErr = ruler.Rule(ctx, s.cfg.Id, disputeId, ruling)
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	delete(s.delivering, disputeId)
	if ruleErr != nil && !refused(ruleErr) {
		s.scheduleDelivery(disputeId, s.clock().Unix()+s.cfg.RetryInterval)
		return fmt.Errorf(
			"failed to deliver ruling of dispute %d, retrying in %ds: %w",
			disputeId, s.cfg.RetryInterval, ruleErr,
		)
	}
	if err := s.update(d, func(d *dispute) { d.Delivered = true }); err != nil {
		return err
	}
	if ruleErr != nil {
		return fmt.Errorf("ruling of dispute %d refused: %w", disputeId, ruleErr)
	}
	return nil
}

// refused tells whether the ruler rejected the ruling for good.
func refused(err error) bool {
	return errors.Is(err, domain.ErrUnauthorizedCaller) ||
		errors.Is(err, domain.ErrInvalidStateTransition) ||
		errors.Is(err, domain.ErrInvalidParams)
}

// update stores the dispute modified by fn before making the change visible.
// Must be called with the lock held.
func (s *service) update(d *dispute, fn func(d *dispute)) error {
	updated := *d
	fn(&updated)
	if err := s.store.upsert(updated); err != nil {
		return fmt.Errorf("failed to store dispute %d: %w", d.Id, err)
	}
	*d = updated
	return nil
}

func (s *service) scheduleExecution(disputeId uint64, at int64) {
	s.schedule(at, func() {
		if err := s.ExecuteRuling(context.Background(), disputeId); err != nil {
			log.WithError(err).Warnf(
				"adjudicator %s: failed to execute ruling of dispute %d", s.cfg.Id, disputeId,
			)
		}
	})
}

func (s *service) scheduleDelivery(disputeId uint64, at int64) {
	s.schedule(at, func() {
		if err := s.deliver(context.Background(), disputeId); err != nil {
			log.WithError(err).Warnf(
				"adjudicator %s: failed to deliver ruling of dispute %d", s.cfg.Id, disputeId,
			)
		}
	})
}

// schedule runs task at the given time, at the earliest one second from now.
func (s *service) schedule(at int64, task func()) {
	at = max(at, s.clock().Unix()+1)
	if err := s.scheduler.ScheduleTaskOnce(at, task); err != nil {
		log.WithError(err).Warnf("adjudicator %s: failed to schedule task at %d", s.cfg.Id, at)
	}
}

func (s *service) getDispute(disputeId uint64) (*dispute, error) {
	d, ok := s.disputes[disputeId]
	if !ok {
		return nil, fmt.Errorf("%w: dispute %d not found", domain.ErrInvalidParams, disputeId)
	}
	return d, nil
}
