package application_test

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/crowdescrow/escrowd/internal/core/application"
	"github.com/crowdescrow/escrowd/internal/core/domain"
	"github.com/crowdescrow/escrowd/internal/core/ports"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	subjectId     = "0xsubject"
	requester     = "alice"
	challenger    = "bob"
	backer        = "carol"
	governor      = "governor"
	adjudicatorId = "court"
	feeAccount    = "court-fees"
	disputeId     = uint64(7)
	startBalance  = uint64(10000)
)

var (
	ctx = context.Background()

	params = domain.Params{
		Governor:             governor,
		Adjudicator:          adjudicatorId,
		RequesterDeposit:     100,
		ChallengePeriod:      5,
		FundingWaitingPeriod: 10,
		SharedMultiplier:     10000,
		WinnerMultiplier:     5000,
		LoserMultiplier:      20000,
	}
)

type testService struct {
	application.Service

	adjudicator *mockedAdjudicator
	ledger      *ledger
	subjects    *subjectStore
	publisher   *publisher
	scheduler   *scheduler
	now         *atomic.Int64
}

func newTestService(t *testing.T, keeperInterval int64) *testService {
	adjudicator := &mockedAdjudicator{}
	adjudicator.On("Id").Return(adjudicatorId)
	adjudicator.On("FeeAccount").Return(feeAccount)

	l := newLedger()
	for _, account := range []string{requester, challenger, backer} {
		require.NoError(t, l.Deposit(ctx, account, startBalance))
	}

	now := &atomic.Int64{}
	now.Store(1)

	subjects := newSubjectStore()
	pub := &publisher{}
	sched := &scheduler{}
	svc, err := application.NewService(
		params, keeperInterval,
		&repoManager{subjects: subjects, params: &paramsStore{}},
		[]ports.Adjudicator{adjudicator}, l, pub, sched, &locker{},
		application.WithClock(func() time.Time { return time.Unix(now.Load(), 0) }),
	)
	require.NoError(t, err)
	require.NotNil(t, svc)

	return &testService{
		Service:     svc,
		adjudicator: adjudicator,
		ledger:      l,
		subjects:    subjects,
		publisher:   pub,
		scheduler:   sched,
		now:         now,
	}
}

func (s *testService) at(ts int64) *testService {
	s.now.Store(ts)
	return s
}

func (s *testService) balance(t *testing.T, account string) uint64 {
	b, err := s.ledger.Balance(ctx, account)
	require.NoError(t, err)
	return b
}

func (s *testService) subject(t *testing.T) *domain.Subject {
	subject, err := s.GetSubject(ctx, subjectId)
	require.NoError(t, err)
	return subject
}

// challenged submits a registration request at t=1 and challenges it at t=2.
func (s *testService) challenged(t *testing.T) {
	_, err := s.at(1).Submit(ctx, application.SubmitRequest{
		SubjectId: subjectId,
		Kind:      domain.RequestRegistration,
		Requester: requester,
		Value:     100,
	})
	require.NoError(t, err)

	_, err = s.at(2).Challenge(ctx, application.ChallengeRequest{
		SubjectId:  subjectId,
		Challenger: challenger,
		Value:      100,
	})
	require.NoError(t, err)
}

// disputed funds round 0 with a dispute cost of 1000 and raises the dispute.
func (s *testService) disputed(t *testing.T) {
	s.challenged(t)
	s.adjudicator.On("CostForDispute", mock.Anything, mock.Anything).Return(uint64(1000), nil)
	s.adjudicator.On(
		"OpenDispute", mock.Anything, uint(domain.NumberOfOutcomes), mock.Anything, uint64(1000),
	).Return(disputeId, nil)

	_, err := s.at(3).Contribute(ctx, application.ContributeRequest{
		SubjectId:   subjectId,
		Side:        domain.SideRequester,
		Contributor: requester,
		Value:       2000,
	})
	require.NoError(t, err)

	res, err := s.at(4).Contribute(ctx, application.ContributeRequest{
		SubjectId:   subjectId,
		Side:        domain.SideChallenger,
		Contributor: challenger,
		Value:       2500,
	})
	require.NoError(t, err)
	require.True(t, res.DisputeRaised)
	require.Equal(t, uint64(2000), res.Accepted)
	require.Equal(t, uint64(500), res.Refunded)
}

func (s *testService) appealable(leaning domain.Ruling, window domain.AppealWindow) {
	s.adjudicator.On("Status", mock.Anything, disputeId).Return(ports.DisputeAppealable, nil)
	s.adjudicator.On("CostForAppeal", mock.Anything, disputeId, mock.Anything).Return(uint64(1000), nil)
	s.adjudicator.On("CurrentLeaning", mock.Anything, disputeId).Return(leaning, nil)
	s.adjudicator.On("AppealWindow", mock.Anything, disputeId).Return(window, nil)
}

func TestNewService(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		svc := newTestService(t, 0)

		info, err := svc.GetInfo(ctx)
		require.NoError(t, err)
		require.Equal(t, []string{adjudicatorId}, info.Adjudicators)
		require.Equal(t, params.Governor, info.Params.Governor)

		require.NoError(t, svc.Start())
		require.Empty(t, svc.scheduler.tasks)
	})

	t.Run("invalid", func(t *testing.T) {
		adjudicator := &mockedAdjudicator{}
		adjudicator.On("Id").Return("other")

		repo := &repoManager{subjects: newSubjectStore(), params: &paramsStore{}}
		svc, err := application.NewService(
			params, 0, repo, []ports.Adjudicator{adjudicator},
			newLedger(), &publisher{}, &scheduler{}, &locker{},
		)
		require.ErrorIs(t, err, domain.ErrInvalidParams)
		require.Nil(t, svc)

		svc, err = application.NewService(
			params, 0, repo, nil, newLedger(), &publisher{}, &scheduler{}, &locker{},
		)
		require.Error(t, err)
		require.Nil(t, svc)
	})
}

func TestUnchallengedRequest(t *testing.T) {
	svc := newTestService(t, 0)

	res, err := svc.at(1).Submit(ctx, application.SubmitRequest{
		SubjectId: subjectId,
		Kind:      domain.RequestRegistration,
		Requester: requester,
		Value:     100,
	})
	require.NoError(t, err)
	require.NotEmpty(t, res.RequestId)
	require.Zero(t, res.Request)
	require.Nil(t, res.Contribution)
	require.Equal(t, startBalance-100, svc.balance(t, requester))

	err = svc.at(5).ExecuteUnchallenged(ctx, subjectId)
	require.ErrorIs(t, err, domain.ErrWindowNotYetElapsed)

	_, err = svc.at(6).Challenge(ctx, application.ChallengeRequest{
		SubjectId:  subjectId,
		Challenger: challenger,
		Value:      100,
	})
	require.ErrorIs(t, err, domain.ErrWindowExpired)
	require.Equal(t, startBalance, svc.balance(t, challenger))

	require.NoError(t, svc.at(6).ExecuteUnchallenged(ctx, subjectId))
	require.Equal(t, domain.StatusRegistered, svc.subject(t).Status)
	require.Equal(t, startBalance, svc.balance(t, requester))
	require.Equal(t, 1, svc.publisher.count(domain.EventTypeRequestResolved))

	err = svc.ExecuteUnchallenged(ctx, subjectId)
	require.ErrorIs(t, err, domain.ErrInvalidStateTransition)
}

func TestSubmit(t *testing.T) {
	t.Run("with surplus", func(t *testing.T) {
		svc := newTestService(t, 0)
		svc.adjudicator.On("CostForDispute", mock.Anything, mock.Anything).Return(uint64(1000), nil)

		res, err := svc.Submit(ctx, application.SubmitRequest{
			SubjectId: subjectId,
			Kind:      domain.RequestRegistration,
			Requester: requester,
			Value:     2600,
		})
		require.NoError(t, err)
		require.NotNil(t, res.Contribution)
		require.Equal(t, uint64(2000), res.Contribution.Accepted)
		require.Equal(t, uint64(500), res.Contribution.Refunded)
		require.Equal(t, startBalance-2100, svc.balance(t, requester))

		req, _, err := svc.subject(t).OpenRequest()
		require.NoError(t, err)
		require.Equal(t, uint64(2000), req.CurrentRound().PaidBy(domain.SideRequester))
	})

	t.Run("insufficient balance", func(t *testing.T) {
		svc := newTestService(t, 0)

		_, err := svc.Submit(ctx, application.SubmitRequest{
			SubjectId: subjectId,
			Kind:      domain.RequestRegistration,
			Requester: requester,
			Value:     startBalance + 1,
		})
		require.ErrorIs(t, err, domain.ErrInsufficientValue)

		_, err = svc.GetSubject(ctx, subjectId)
		require.ErrorIs(t, err, domain.ErrSubjectNotFound)
	})

	t.Run("invalid transition", func(t *testing.T) {
		svc := newTestService(t, 0)

		_, err := svc.Submit(ctx, application.SubmitRequest{
			SubjectId: subjectId,
			Kind:      domain.RequestClearing,
			Requester: requester,
			Value:     100,
		})
		require.ErrorIs(t, err, domain.ErrInvalidStateTransition)
		require.Equal(t, startBalance, svc.balance(t, requester))
	})
}

func TestDisputeAndRule(t *testing.T) {
	svc := newTestService(t, 0)
	svc.disputed(t)

	subject := svc.subject(t)
	require.Equal(t, domain.StatusRegistrationDisputed, subject.Status)
	req, _, err := subject.OpenRequest()
	require.NoError(t, err)
	require.True(t, req.Disputed)
	require.Equal(t, disputeId, req.DisputeId)
	require.Len(t, req.Rounds, 2)
	require.Equal(t, uint64(3000), req.Rounds[0].RewardPool)
	require.Equal(t, startBalance-2100, svc.balance(t, requester))
	require.Equal(t, startBalance-2100, svc.balance(t, challenger))

	t.Run("unauthorized", func(t *testing.T) {
		err := svc.Rule(ctx, "other", disputeId, domain.RulingReject)
		require.ErrorIs(t, err, domain.ErrUnauthorizedCaller)

		err = svc.Rule(ctx, adjudicatorId, disputeId+1, domain.RulingReject)
		require.ErrorIs(t, err, domain.ErrUnauthorizedCaller)

		err = svc.Rule(ctx, adjudicatorId, disputeId, domain.Ruling(9))
		require.ErrorIs(t, err, domain.ErrInvalidParams)
	})

	t.Run("withdraw before ruling", func(t *testing.T) {
		_, err := svc.Withdraw(ctx, application.WithdrawRequest{
			Beneficiary: challenger,
			SubjectId:   subjectId,
		})
		require.ErrorIs(t, err, domain.ErrInvalidStateTransition)
	})

	require.NoError(t, svc.at(30).Rule(ctx, adjudicatorId, disputeId, domain.RulingReject))
	require.Equal(t, domain.StatusAbsent, svc.subject(t).Status)
	require.Equal(t, startBalance-1900, svc.balance(t, challenger))

	t.Run("withdraw", func(t *testing.T) {
		reward, err := svc.Withdraw(ctx, application.WithdrawRequest{
			Beneficiary: challenger,
			SubjectId:   subjectId,
		})
		require.NoError(t, err)
		require.Equal(t, uint64(3000), reward)

		reward, err = svc.Withdraw(ctx, application.WithdrawRequest{
			Beneficiary: challenger,
			SubjectId:   subjectId,
		})
		require.NoError(t, err)
		require.Zero(t, reward)

		reward, err = svc.WithdrawAll(ctx, requester, subjectId, 0)
		require.NoError(t, err)
		require.Zero(t, reward)

		// The dispute cost went to the adjudicator, nothing is left in escrow.
		require.Equal(t, startBalance+1100, svc.balance(t, challenger))
		require.Equal(t, startBalance-2100, svc.balance(t, requester))
		require.Equal(t, uint64(1000), svc.balance(t, feeAccount))
		require.Zero(t, svc.ledger.escrow)
	})

	err = svc.Rule(ctx, adjudicatorId, disputeId, domain.RulingReject)
	require.ErrorIs(t, err, domain.ErrInvalidStateTransition)
}

func TestAppeal(t *testing.T) {
	window := domain.AppealWindow{Start: 10, End: 20}

	t.Run("loser only funded flips the ruling", func(t *testing.T) {
		svc := newTestService(t, 0)
		svc.disputed(t)
		svc.appealable(domain.RulingAccept, window)

		_, err := svc.at(9).Contribute(ctx, application.ContributeRequest{
			SubjectId:   subjectId,
			Side:        domain.SideChallenger,
			Contributor: backer,
			Value:       3000,
		})
		require.ErrorIs(t, err, domain.ErrWindowNotYetElapsed)
		require.Equal(t, startBalance, svc.balance(t, backer))

		_, err = svc.at(11).Contribute(ctx, application.ContributeRequest{
			SubjectId:   subjectId,
			Side:        domain.SideRequester,
			Contributor: requester,
			Value:       1500,
		})
		require.ErrorIs(t, err, domain.ErrWindowNotYetElapsed)

		res, err := svc.at(11).Contribute(ctx, application.ContributeRequest{
			SubjectId:   subjectId,
			Side:        domain.SideChallenger,
			Contributor: backer,
			Value:       3500,
		})
		require.NoError(t, err)
		require.Equal(t, 1, res.Round)
		require.Equal(t, uint64(3000), res.Accepted)
		require.Equal(t, uint64(500), res.Refunded)
		require.False(t, res.AppealRaised)

		_, err = svc.at(16).Contribute(ctx, application.ContributeRequest{
			SubjectId:   subjectId,
			Side:        domain.SideChallenger,
			Contributor: backer,
			Value:       100,
		})
		require.ErrorIs(t, err, domain.ErrWindowExpired)

		require.NoError(t, svc.at(21).Rule(ctx, adjudicatorId, disputeId, domain.RulingAccept))

		subject := svc.subject(t)
		require.Equal(t, domain.StatusAbsent, subject.Status)
		require.Equal(t, domain.RulingReject, subject.Requests[0].Ruling)

		reward, err := svc.WithdrawAll(ctx, backer, subjectId, 0)
		require.NoError(t, err)
		require.Equal(t, uint64(3000), reward)
		require.Equal(t, startBalance, svc.balance(t, backer))

		reward, err = svc.WithdrawAll(ctx, challenger, subjectId, 0)
		require.NoError(t, err)
		require.Equal(t, uint64(3000), reward)
	})

	t.Run("both funded raises appeal", func(t *testing.T) {
		svc := newTestService(t, 0)
		svc.disputed(t)
		svc.appealable(domain.RulingAccept, window)
		svc.adjudicator.On(
			"OpenAppeal", mock.Anything, disputeId, mock.Anything, uint64(1000),
		).Return(nil)

		_, err := svc.at(11).Contribute(ctx, application.ContributeRequest{
			SubjectId:   subjectId,
			Side:        domain.SideChallenger,
			Contributor: backer,
			Value:       3000,
		})
		require.NoError(t, err)

		res, err := svc.at(16).Contribute(ctx, application.ContributeRequest{
			SubjectId:   subjectId,
			Side:        domain.SideRequester,
			Contributor: requester,
			Value:       1500,
		})
		require.NoError(t, err)
		require.True(t, res.AppealRaised)
		svc.adjudicator.AssertCalled(
			t, "OpenAppeal", mock.Anything, disputeId, mock.Anything, uint64(1000),
		)

		req, _, err := svc.subject(t).OpenRequest()
		require.NoError(t, err)
		require.Len(t, req.Rounds, 3)
		require.True(t, req.Rounds[1].Appealed)
		require.Equal(t, uint64(3500), req.Rounds[1].RewardPool)
		require.Equal(t, 1, svc.publisher.count(domain.EventTypeAppealRaised))
	})

	t.Run("final dispute", func(t *testing.T) {
		svc := newTestService(t, 0)
		svc.disputed(t)
		svc.adjudicator.On("Status", mock.Anything, disputeId).Return(ports.DisputeFinal, nil)

		_, err := svc.Contribute(ctx, application.ContributeRequest{
			SubjectId:   subjectId,
			Side:        domain.SideChallenger,
			Contributor: backer,
			Value:       3000,
		})
		require.ErrorIs(t, err, domain.ErrInvalidStateTransition)
		require.Equal(t, startBalance, svc.balance(t, backer))
	})
}

func TestAdjudicatorFailure(t *testing.T) {
	svc := newTestService(t, 0)
	svc.challenged(t)
	svc.adjudicator.On("CostForDispute", mock.Anything, mock.Anything).Return(uint64(1000), nil)
	svc.adjudicator.On(
		"OpenDispute", mock.Anything, uint(domain.NumberOfOutcomes), mock.Anything, uint64(1000),
	).Return(nil, fmt.Errorf("court closed"))

	_, err := svc.at(3).Contribute(ctx, application.ContributeRequest{
		SubjectId:   subjectId,
		Side:        domain.SideRequester,
		Contributor: requester,
		Value:       2000,
	})
	require.NoError(t, err)

	_, err = svc.at(4).Contribute(ctx, application.ContributeRequest{
		SubjectId:   subjectId,
		Side:        domain.SideChallenger,
		Contributor: challenger,
		Value:       2000,
	})
	require.ErrorIs(t, err, domain.ErrAdjudicatorCallFailed)
	require.Equal(t, startBalance-100, svc.balance(t, challenger))

	req, _, err := svc.subject(t).OpenRequest()
	require.NoError(t, err)
	require.False(t, req.Disputed)
	require.Zero(t, req.CurrentRound().PaidBy(domain.SideChallenger))
	require.False(t, req.CurrentRound().HasContribution(domain.SideChallenger))
}

func TestStoreFailure(t *testing.T) {
	svc := newTestService(t, 0)
	svc.challenged(t)
	svc.adjudicator.On("CostForDispute", mock.Anything, mock.Anything).Return(uint64(1000), nil)
	svc.adjudicator.On(
		"OpenDispute", mock.Anything, uint(domain.NumberOfOutcomes), mock.Anything, uint64(1000),
	).Return(disputeId, nil)

	_, err := svc.at(3).Contribute(ctx, application.ContributeRequest{
		SubjectId:   subjectId,
		Side:        domain.SideRequester,
		Contributor: requester,
		Value:       2000,
	})
	require.NoError(t, err)
	escrow := svc.ledger.escrow

	svc.subjects.failWrites = true
	_, err = svc.at(4).Contribute(ctx, application.ContributeRequest{
		SubjectId:   subjectId,
		Side:        domain.SideChallenger,
		Contributor: challenger,
		Value:       2000,
	})
	require.Error(t, err)
	svc.adjudicator.AssertCalled(
		t, "OpenDispute", mock.Anything, uint(domain.NumberOfOutcomes), mock.Anything, uint64(1000),
	)

	require.Equal(t, startBalance-100, svc.balance(t, challenger))
	require.Zero(t, svc.balance(t, feeAccount))
	require.Equal(t, escrow, svc.ledger.escrow)
	require.Zero(t, svc.publisher.count(domain.EventTypeDisputeRaised))

	svc.subjects.failWrites = false
	req, _, err := svc.subject(t).OpenRequest()
	require.NoError(t, err)
	require.False(t, req.Disputed)
}

func TestTimeoutFundingWindow(t *testing.T) {
	t.Run("majority", func(t *testing.T) {
		svc := newTestService(t, 0)
		svc.challenged(t)
		svc.adjudicator.On("CostForDispute", mock.Anything, mock.Anything).Return(uint64(1000), nil)

		_, err := svc.at(3).Contribute(ctx, application.ContributeRequest{
			SubjectId:   subjectId,
			Side:        domain.SideRequester,
			Contributor: backer,
			Value:       500,
		})
		require.NoError(t, err)

		err = svc.at(11).TimeoutFundingWindow(ctx, subjectId)
		require.ErrorIs(t, err, domain.ErrWindowNotYetElapsed)

		_, err = svc.at(12).Contribute(ctx, application.ContributeRequest{
			SubjectId:   subjectId,
			Side:        domain.SideChallenger,
			Contributor: challenger,
			Value:       500,
		})
		require.ErrorIs(t, err, domain.ErrWindowExpired)

		require.NoError(t, svc.at(12).TimeoutFundingWindow(ctx, subjectId))
		require.Equal(t, domain.StatusRegistered, svc.subject(t).Status)
		require.Equal(t, startBalance+100, svc.balance(t, requester))
		require.Equal(t, startBalance-100, svc.balance(t, challenger))

		reward, err := svc.WithdrawAll(ctx, backer, subjectId, 0)
		require.NoError(t, err)
		require.Equal(t, uint64(500), reward)
		require.Equal(t, startBalance, svc.balance(t, backer))
	})

	t.Run("cost decrease raises dispute", func(t *testing.T) {
		svc := newTestService(t, 0)
		svc.challenged(t)
		svc.adjudicator.On("CostForDispute", mock.Anything, mock.Anything).
			Return(uint64(1000), nil).Times(2)
		svc.adjudicator.On("CostForDispute", mock.Anything, mock.Anything).
			Return(uint64(500), nil)
		svc.adjudicator.On(
			"OpenDispute", mock.Anything, uint(domain.NumberOfOutcomes), mock.Anything, uint64(500),
		).Return(disputeId, nil)

		for _, c := range []struct {
			side        domain.Side
			contributor string
		}{
			{domain.SideRequester, requester},
			{domain.SideChallenger, challenger},
		} {
			res, err := svc.at(3).Contribute(ctx, application.ContributeRequest{
				SubjectId:   subjectId,
				Side:        c.side,
				Contributor: c.contributor,
				Value:       1500,
			})
			require.NoError(t, err)
			require.False(t, res.DisputeRaised)
		}

		require.NoError(t, svc.at(12).TimeoutFundingWindow(ctx, subjectId))

		subject := svc.subject(t)
		require.Equal(t, domain.StatusRegistrationDisputed, subject.Status)
		req, _, err := subject.OpenRequest()
		require.NoError(t, err)
		require.Equal(t, uint64(2500), req.Rounds[0].RewardPool)
		require.Equal(t, [2]uint64{1500, 1500}, req.Rounds[0].Required)
	})
}

func TestUpdateParams(t *testing.T) {
	svc := newTestService(t, 0)

	updated := params
	updated.RequesterDeposit = 300

	err := svc.UpdateParams(ctx, requester, updated)
	require.ErrorIs(t, err, domain.ErrUnauthorizedCaller)

	invalid := updated
	invalid.Adjudicator = "other"
	err = svc.UpdateParams(ctx, governor, invalid)
	require.ErrorIs(t, err, domain.ErrInvalidParams)

	invalid = updated
	invalid.LoserMultiplier = 100001
	err = svc.UpdateParams(ctx, governor, invalid)
	require.ErrorIs(t, err, domain.ErrInvalidParams)

	require.NoError(t, svc.UpdateParams(ctx, governor, updated))
	got, err := svc.GetParams(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(300), got.RequesterDeposit)

	_, err = svc.Submit(ctx, application.SubmitRequest{
		SubjectId: subjectId,
		Kind:      domain.RequestRegistration,
		Requester: requester,
		Value:     100,
	})
	require.ErrorIs(t, err, domain.ErrInsufficientValue)
}

func TestListSubjects(t *testing.T) {
	svc := newTestService(t, 0)

	for i := 0; i < 3; i++ {
		_, err := svc.Submit(ctx, application.SubmitRequest{
			SubjectId: fmt.Sprintf("subject-%d", i),
			Kind:      domain.RequestRegistration,
			Requester: requester,
			Value:     100,
		})
		require.NoError(t, err)
	}

	ids, err := svc.ListSubjects(ctx, 1, 0)
	require.NoError(t, err)
	require.Equal(t, []string{"subject-1", "subject-2"}, ids)

	ids, err = svc.ListSubjects(ctx, 5, 10)
	require.NoError(t, err)
	require.Empty(t, ids)
}

func TestKeeper(t *testing.T) {
	svc := newTestService(t, 1)
	svc.challenged(t)
	svc.adjudicator.On("CostForDispute", mock.Anything, mock.Anything).Return(uint64(1000), nil)

	_, err := svc.at(2).Submit(ctx, application.SubmitRequest{
		SubjectId: "unchallenged",
		Kind:      domain.RequestRegistration,
		Requester: backer,
		Value:     100,
	})
	require.NoError(t, err)

	require.NoError(t, svc.Start())
	require.Len(t, svc.scheduler.tasks, 1)
	keeper := svc.scheduler.tasks[0]

	svc.at(6)
	keeper()
	require.Equal(t, domain.StatusRegistrationRequested, svc.subject(t).Status)
	unchallenged, err := svc.GetSubject(ctx, "unchallenged")
	require.NoError(t, err)
	require.Equal(t, domain.StatusRegistrationRequested, unchallenged.Status)

	svc.at(7)
	keeper()
	unchallenged, err = svc.GetSubject(ctx, "unchallenged")
	require.NoError(t, err)
	require.Equal(t, domain.StatusRegistered, unchallenged.Status)

	svc.at(12)
	keeper()
	require.Equal(t, domain.StatusRegistered, svc.subject(t).Status)
	require.Equal(t, startBalance+100, svc.balance(t, requester))
}
