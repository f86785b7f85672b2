package application

import (
	"context"

	"github.com/crowdescrow/escrowd/internal/core/domain"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

func (s *service) Submit(ctx context.Context, req SubmitRequest) (*SubmitResult, error) {
	var result *SubmitResult
	err := s.execute(
		ctx, req.SubjectId, true, req.Requester, req.Value,
		func(op *operation) error {
			requestId := uuid.New().String()
			events, err := op.subject.Submit(
				requestId, req.Kind, req.Requester, req.Value, op.params, op.now,
			)
			if err != nil {
				return err
			}
			submitted := events[0].(domain.RequestSubmitted)
			result = &SubmitResult{RequestId: requestId, Request: submitted.Request}

			surplus := req.Value - submitted.Deposit
			if surplus == 0 {
				return nil
			}
			contribution, err := s.fund(ctx, op, domain.SideRequester, req.Requester, surplus)
			if err != nil {
				return err
			}
			result.Contribution = contribution
			return nil
		},
	)
	if err != nil {
		return nil, err
	}

	log.Infof("submitted %s request %s for subject %s", req.Kind, result.RequestId, req.SubjectId)
	return result, nil
}

func (s *service) Challenge(ctx context.Context, req ChallengeRequest) (*ChallengeResult, error) {
	var result *ChallengeResult
	err := s.execute(
		ctx, req.SubjectId, false, req.Challenger, req.Value,
		func(op *operation) error {
			events, err := op.subject.Challenge(req.Challenger, req.Value, op.params, op.now)
			if err != nil {
				return err
			}
			posted := events[0].(domain.ChallengeDepositPosted)
			result = &ChallengeResult{Request: posted.Request}

			surplus := req.Value - posted.Deposit
			if surplus == 0 {
				return nil
			}
			contribution, err := s.fund(ctx, op, domain.SideChallenger, req.Challenger, surplus)
			if err != nil {
				return err
			}
			result.Contribution = contribution
			return nil
		},
	)
	if err != nil {
		return nil, err
	}

	log.Infof("subject %s challenged by %s", req.SubjectId, req.Challenger)
	return result, nil
}

func (s *service) ExecuteUnchallenged(ctx context.Context, subjectId string) error {
	if err := s.execute(ctx, subjectId, false, "", 0, func(op *operation) error {
		events, err := op.subject.ExecuteUnchallenged(op.params, op.now)
		if err != nil {
			return err
		}
		payDeposits(op, events)
		return nil
	}); err != nil {
		return err
	}

	log.Infof("executed unchallenged request for subject %s", subjectId)
	return nil
}

// TimeoutFundingWindow settles a challenged request whose funding window
// elapsed. A cost decrease that leaves both sides funded raises the dispute
// instead.
func (s *service) TimeoutFundingWindow(ctx context.Context, subjectId string) error {
	var disputed bool
	if err := s.execute(ctx, subjectId, false, "", 0, func(op *operation) error {
		if err := op.subject.CheckFundingTimeout(op.params, op.now); err != nil {
			return err
		}
		req, _, err := op.subject.OpenRequest()
		if err != nil {
			return err
		}
		adjudicator, err := s.adjudicator(req.Adjudicator)
		if err != nil {
			return err
		}
		cost, err := adjudicator.CostForDispute(ctx, req.AdjudicatorExtraData)
		if err != nil {
			return adjudicatorErr("cost for dispute", err)
		}

		round := req.CurrentRound()
		if round.FundedAt(op.params.SharedRequirement(cost)) {
			disputed = true
			return s.raiseDispute(ctx, op, cost)
		}

		ruling := domain.MajorityRuling(round)
		return finalize(op, op.subject, ruling, ruling)
	}); err != nil {
		return err
	}

	if disputed {
		log.Infof("raised dispute for subject %s after funding window", subjectId)
		return nil
	}
	log.Infof("resolved subject %s by default after funding window", subjectId)
	return nil
}
