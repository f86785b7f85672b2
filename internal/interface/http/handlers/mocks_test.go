package handlers_test

import (
	"context"

	"github.com/crowdescrow/escrowd/internal/core/application"
	"github.com/crowdescrow/escrowd/internal/core/domain"
	"github.com/stretchr/testify/mock"
)

type mockedAppService struct {
	mock.Mock
}

func (m *mockedAppService) Start() error {
	args := m.Called()
	return args.Error(0)
}

func (m *mockedAppService) Stop() {
	m.Called()
}

func (m *mockedAppService) GetInfo(ctx context.Context) (*application.ServiceInfo, error) {
	args := m.Called(ctx)

	var res *application.ServiceInfo
	if a := args.Get(0); a != nil {
		res = a.(*application.ServiceInfo)
	}
	return res, args.Error(1)
}

func (m *mockedAppService) Submit(
	ctx context.Context, req application.SubmitRequest,
) (*application.SubmitResult, error) {
	args := m.Called(ctx, req)

	var res *application.SubmitResult
	if a := args.Get(0); a != nil {
		res = a.(*application.SubmitResult)
	}
	return res, args.Error(1)
}

func (m *mockedAppService) Challenge(
	ctx context.Context, req application.ChallengeRequest,
) (*application.ChallengeResult, error) {
	args := m.Called(ctx, req)

	var res *application.ChallengeResult
	if a := args.Get(0); a != nil {
		res = a.(*application.ChallengeResult)
	}
	return res, args.Error(1)
}

func (m *mockedAppService) Contribute(
	ctx context.Context, req application.ContributeRequest,
) (*application.ContributionResult, error) {
	args := m.Called(ctx, req)

	var res *application.ContributionResult
	if a := args.Get(0); a != nil {
		res = a.(*application.ContributionResult)
	}
	return res, args.Error(1)
}

func (m *mockedAppService) ExecuteUnchallenged(ctx context.Context, subjectId string) error {
	args := m.Called(ctx, subjectId)
	return args.Error(0)
}

func (m *mockedAppService) TimeoutFundingWindow(ctx context.Context, subjectId string) error {
	args := m.Called(ctx, subjectId)
	return args.Error(0)
}

func (m *mockedAppService) Rule(
	ctx context.Context, adjudicatorId string, disputeId uint64, ruling domain.Ruling,
) error {
	args := m.Called(ctx, adjudicatorId, disputeId, ruling)
	return args.Error(0)
}

func (m *mockedAppService) Withdraw(
	ctx context.Context, req application.WithdrawRequest,
) (uint64, error) {
	args := m.Called(ctx, req)

	var res uint64
	if a := args.Get(0); a != nil {
		res = a.(uint64)
	}
	return res, args.Error(1)
}

func (m *mockedAppService) WithdrawAll(
	ctx context.Context, beneficiary, subjectId string, request int,
) (uint64, error) {
	args := m.Called(ctx, beneficiary, subjectId, request)

	var res uint64
	if a := args.Get(0); a != nil {
		res = a.(uint64)
	}
	return res, args.Error(1)
}

func (m *mockedAppService) GetSubject(ctx context.Context, id string) (*domain.Subject, error) {
	args := m.Called(ctx, id)

	var res *domain.Subject
	if a := args.Get(0); a != nil {
		res = a.(*domain.Subject)
	}
	return res, args.Error(1)
}

func (m *mockedAppService) ListSubjects(ctx context.Context, offset, limit int) ([]string, error) {
	args := m.Called(ctx, offset, limit)

	var res []string
	if a := args.Get(0); a != nil {
		res = a.([]string)
	}
	return res, args.Error(1)
}

func (m *mockedAppService) GetParams(ctx context.Context) (*domain.Params, error) {
	args := m.Called(ctx)

	var res *domain.Params
	if a := args.Get(0); a != nil {
		res = a.(*domain.Params)
	}
	return res, args.Error(1)
}

func (m *mockedAppService) UpdateParams(
	ctx context.Context, caller string, params domain.Params,
) error {
	args := m.Called(ctx, caller, params)
	return args.Error(0)
}

type scheduler struct{}

func (scheduler) Start()                                 {}
func (scheduler) Stop()                                  {}
func (scheduler) ScheduleTask(int64, bool, func()) error { return nil }
func (scheduler) ScheduleTaskOnce(int64, func()) error   { return nil }
