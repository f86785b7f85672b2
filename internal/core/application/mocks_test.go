package application_test

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/crowdescrow/escrowd/internal/core/domain"
	"github.com/crowdescrow/escrowd/internal/core/ports"
	"github.com/stretchr/testify/mock"
)

type mockedAdjudicator struct {
	mock.Mock
}

func (m *mockedAdjudicator) Id() string {
	args := m.Called()
	return args.String(0)
}

func (m *mockedAdjudicator) FeeAccount() string {
	args := m.Called()
	return args.String(0)
}

func (m *mockedAdjudicator) CostForDispute(ctx context.Context, extraData []byte) (uint64, error) {
	args := m.Called(ctx, extraData)

	var res uint64
	if a := args.Get(0); a != nil {
		res = a.(uint64)
	}
	return res, args.Error(1)
}

func (m *mockedAdjudicator) CostForAppeal(
	ctx context.Context, disputeId uint64, extraData []byte,
) (uint64, error) {
	args := m.Called(ctx, disputeId, extraData)

	var res uint64
	if a := args.Get(0); a != nil {
		res = a.(uint64)
	}
	return res, args.Error(1)
}

func (m *mockedAdjudicator) OpenDispute(
	ctx context.Context, outcomes uint, extraData []byte, payment uint64,
) (uint64, error) {
	args := m.Called(ctx, outcomes, extraData, payment)

	var res uint64
	if a := args.Get(0); a != nil {
		res = a.(uint64)
	}
	return res, args.Error(1)
}

func (m *mockedAdjudicator) OpenAppeal(
	ctx context.Context, disputeId uint64, extraData []byte, payment uint64,
) error {
	args := m.Called(ctx, disputeId, extraData, payment)
	return args.Error(0)
}

func (m *mockedAdjudicator) AppealWindow(
	ctx context.Context, disputeId uint64,
) (domain.AppealWindow, error) {
	args := m.Called(ctx, disputeId)

	var res domain.AppealWindow
	if a := args.Get(0); a != nil {
		res = a.(domain.AppealWindow)
	}
	return res, args.Error(1)
}

func (m *mockedAdjudicator) CurrentLeaning(
	ctx context.Context, disputeId uint64,
) (domain.Ruling, error) {
	args := m.Called(ctx, disputeId)

	var res domain.Ruling
	if a := args.Get(0); a != nil {
		res = a.(domain.Ruling)
	}
	return res, args.Error(1)
}

func (m *mockedAdjudicator) Status(
	ctx context.Context, disputeId uint64,
) (ports.DisputeStatus, error) {
	args := m.Called(ctx, disputeId)

	var res ports.DisputeStatus
	if a := args.Get(0); a != nil {
		res = a.(ports.DisputeStatus)
	}
	return res, args.Error(1)
}

// subjectStore keeps serialized snapshots so that aborted operations can
// never leak in-memory mutations.
type subjectStore struct {
	lock     sync.Mutex
	subjects map[string][]byte
	order    []string
	routes   map[string]string
	// failWrites makes every write fail.
	failWrites bool
}

func newSubjectStore() *subjectStore {
	return &subjectStore{
		subjects: make(map[string][]byte),
		routes:   make(map[string]string),
	}
}

func (s *subjectStore) AddOrUpdateSubject(_ context.Context, subject domain.Subject) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.failWrites {
		return fmt.Errorf("db unavailable")
	}
	buf, err := json.Marshal(subject)
	if err != nil {
		return err
	}
	if _, ok := s.subjects[subject.Id]; !ok {
		s.order = append(s.order, subject.Id)
	}
	s.subjects[subject.Id] = buf
	if adjudicator, disputeId, ok := subject.DisputeRoute(); ok {
		s.routes[routeKey(adjudicator, disputeId)] = subject.Id
	}
	return nil
}

func (s *subjectStore) GetSubject(_ context.Context, id string) (*domain.Subject, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	buf, ok := s.subjects[id]
	if !ok {
		return nil, domain.ErrSubjectNotFound
	}
	subject := &domain.Subject{}
	if err := json.Unmarshal(buf, subject); err != nil {
		return nil, err
	}
	return subject, nil
}

func (s *subjectStore) GetSubjectIdByDispute(
	_ context.Context, adjudicator string, disputeId uint64,
) (string, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	id, ok := s.routes[routeKey(adjudicator, disputeId)]
	if !ok {
		return "", domain.ErrSubjectNotFound
	}
	return id, nil
}

func (s *subjectStore) GetSubjectIds(_ context.Context, offset, limit int) ([]string, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if offset >= len(s.order) {
		return []string{}, nil
	}
	end := offset + limit
	if end > len(s.order) {
		end = len(s.order)
	}
	return append([]string{}, s.order[offset:end]...), nil
}

func (s *subjectStore) GetPendingSubjectIds(ctx context.Context) ([]string, error) {
	s.lock.Lock()
	ids := append([]string{}, s.order...)
	s.lock.Unlock()

	pending := make([]string, 0)
	for _, id := range ids {
		subject, err := s.GetSubject(ctx, id)
		if err != nil {
			return nil, err
		}
		if subject.Status.Pending() {
			pending = append(pending, id)
		}
	}
	sort.Strings(pending)
	return pending, nil
}

func (s *subjectStore) Close() {}

func routeKey(adjudicator string, disputeId uint64) string {
	return fmt.Sprintf("%s:%d", adjudicator, disputeId)
}

type paramsStore struct {
	lock   sync.Mutex
	params *domain.Params
}

func (s *paramsStore) Get(_ context.Context) (*domain.Params, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.params == nil {
		return nil, nil
	}
	p := *s.params
	return &p, nil
}

func (s *paramsStore) Upsert(_ context.Context, params domain.Params) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.params = &params
	return nil
}

func (s *paramsStore) Close() {}

type repoManager struct {
	subjects *subjectStore
	params   *paramsStore
}

func (r *repoManager) Subjects() domain.SubjectRepository { return r.subjects }
func (r *repoManager) Params() domain.ParamsRepository    { return r.params }
func (r *repoManager) Close()                             {}

type ledger struct {
	lock     sync.Mutex
	balances map[string]uint64
	escrow   uint64
	blocked  map[string]bool
}

func newLedger() *ledger {
	return &ledger{
		balances: make(map[string]uint64),
		blocked:  make(map[string]bool),
	}
}

func (l *ledger) Collect(_ context.Context, from string, amount uint64) error {
	l.lock.Lock()
	defer l.lock.Unlock()

	if l.balances[from] < amount {
		return fmt.Errorf("%w: balance of %s too low", domain.ErrInsufficientValue, from)
	}
	l.balances[from] -= amount
	l.escrow += amount
	return nil
}

func (l *ledger) Transfer(_ context.Context, to string, amount uint64) error {
	l.lock.Lock()
	defer l.lock.Unlock()

	if l.blocked[to] {
		return fmt.Errorf("account %s rejects transfers", to)
	}
	l.escrow -= amount
	l.balances[to] += amount
	return nil
}

func (l *ledger) Deposit(_ context.Context, to string, amount uint64) error {
	l.lock.Lock()
	defer l.lock.Unlock()

	l.balances[to] += amount
	return nil
}

func (l *ledger) Balance(_ context.Context, account string) (uint64, error) {
	l.lock.Lock()
	defer l.lock.Unlock()

	return l.balances[account], nil
}

func (l *ledger) Close() {}

type publisher struct {
	lock   sync.Mutex
	events []domain.SubjectEvent
}

func (p *publisher) Publish(_ context.Context, _ string, events ...domain.SubjectEvent) error {
	p.lock.Lock()
	defer p.lock.Unlock()

	p.events = append(p.events, events...)
	return nil
}

func (p *publisher) RegisterEventsHandler(string, func([]domain.SubjectEvent)) error {
	return nil
}

func (p *publisher) Close() {}

func (p *publisher) count(eventType domain.EventType) int {
	p.lock.Lock()
	defer p.lock.Unlock()

	n := 0
	for _, e := range p.events {
		if e.GetType() == eventType {
			n++
		}
	}
	return n
}

type locker struct {
	lock sync.Mutex
}

func (l *locker) Lock(context.Context, string) (func(), error) {
	l.lock.Lock()
	return l.lock.Unlock, nil
}

func (l *locker) Close() {}

type scheduler struct {
	tasks []func()
}

func (s *scheduler) Start() {}
func (s *scheduler) Stop()  {}

func (s *scheduler) ScheduleTask(_ int64, _ bool, task func()) error {
	s.tasks = append(s.tasks, task)
	return nil
}

func (s *scheduler) ScheduleTaskOnce(_ int64, task func()) error {
	s.tasks = append(s.tasks, task)
	return nil
}
