package application

import (
	"context"
	"fmt"

	"github.com/crowdescrow/escrowd/internal/core/domain"
	"github.com/crowdescrow/escrowd/internal/core/ports"
	log "github.com/sirupsen/logrus"
)

func (s *service) Contribute(
	ctx context.Context, req ContributeRequest,
) (*ContributionResult, error) {
	var result *ContributionResult
	if err := s.execute(
		ctx, req.SubjectId, false, req.Contributor, req.Value,
		func(op *operation) (err error) {
			result, err = s.fund(ctx, op, req.Side, req.Contributor, req.Value)
			return
		},
	); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"subject":     req.SubjectId,
		"side":        req.Side,
		"contributor": req.Contributor,
		"accepted":    result.Accepted,
		"refunded":    result.Refunded,
	}).Info("accepted contribution")
	return result, nil
}

// fund adds amount to the current round of the open request on behalf of
// side and raises the dispute or the appeal as soon as both sides are
// fully funded. Any refund is scheduled as payout.
func (s *service) fund(
	ctx context.Context, op *operation, side domain.Side, contributor string, amount uint64,
) (*ContributionResult, error) {
	req, _, err := op.subject.OpenRequest()
	if err != nil {
		return nil, err
	}
	adjudicator, err := s.adjudicator(req.Adjudicator)
	if err != nil {
		return nil, err
	}

	funding := domain.Funding{
		Side:        side,
		Contributor: contributor,
		Amount:      amount,
	}
	var cost uint64
	if !req.Disputed {
		if err := op.subject.CheckDisputeFunding(side, op.params, op.now); err != nil {
			return nil, err
		}
		cost, err = adjudicator.CostForDispute(ctx, req.AdjudicatorExtraData)
		if err != nil {
			return nil, adjudicatorErr("cost for dispute", err)
		}
		funding.Required = op.params.SharedRequirement(cost)
	} else {
		if err := op.subject.CheckAppealFunding(side); err != nil {
			return nil, err
		}
		requirement, appealCost, err := s.appealRequirement(ctx, op, adjudicator, req, side)
		if err != nil {
			return nil, err
		}
		cost = appealCost
		funding.Required = requirement.Required
		funding.WinnerCost = requirement.WinnerCost
		funding.FullOnly = requirement.FullOnly
	}

	event, err := op.subject.Contribute(funding, op.now)
	if err != nil {
		return nil, err
	}
	op.pay(contributor, event.Refunded, "refund")

	result := contributionResult(event)
	if !req.CurrentRound().BothFunded() {
		return result, nil
	}

	if !req.Disputed {
		if err := s.raiseDispute(ctx, op, cost); err != nil {
			return nil, err
		}
		result.DisputeRaised = true
		return result, nil
	}

	if err := s.raiseAppeal(ctx, op, adjudicator, cost); err != nil {
		return nil, err
	}
	result.AppealRaised = true
	return result, nil
}

func (s *service) appealRequirement(
	ctx context.Context, op *operation, adjudicator ports.Adjudicator,
	req *domain.Request, side domain.Side,
) (*domain.AppealRequirement, uint64, error) {
	status, err := adjudicator.Status(ctx, req.DisputeId)
	if err != nil {
		return nil, 0, adjudicatorErr("dispute status", err)
	}
	if status != ports.DisputeAppealable {
		return nil, 0, fmt.Errorf(
			"%w: dispute %d is %s", domain.ErrInvalidStateTransition, req.DisputeId, status,
		)
	}
	cost, err := adjudicator.CostForAppeal(ctx, req.DisputeId, req.AdjudicatorExtraData)
	if err != nil {
		return nil, 0, adjudicatorErr("cost for appeal", err)
	}
	leaning, err := adjudicator.CurrentLeaning(ctx, req.DisputeId)
	if err != nil {
		return nil, 0, adjudicatorErr("current leaning", err)
	}
	window, err := adjudicator.AppealWindow(ctx, req.DisputeId)
	if err != nil {
		return nil, 0, adjudicatorErr("appeal window", err)
	}

	requirement, err := domain.ComputeAppealRequirement(
		req.CurrentRound(), side, cost, leaning, window, op.params, op.now,
	)
	if err != nil {
		return nil, 0, err
	}
	return requirement, cost, nil
}

// raiseDispute opens the dispute on the adjudicator of the open request,
// paying cost out of the round 0 pool. The fee leaves escrow only after the
// subject is stored.
func (s *service) raiseDispute(ctx context.Context, op *operation, cost uint64) error {
	req, _, err := op.subject.OpenRequest()
	if err != nil {
		return err
	}
	adjudicator, err := s.adjudicator(req.Adjudicator)
	if err != nil {
		return err
	}

	disputeId, err := adjudicator.OpenDispute(
		ctx, domain.NumberOfOutcomes, req.AdjudicatorExtraData, cost,
	)
	if err != nil {
		return adjudicatorErr("open dispute", err)
	}
	if _, err := op.subject.RaiseDispute(disputeId, cost, op.now); err != nil {
		return err
	}
	op.pay(adjudicator.FeeAccount(), cost, "dispute fee")

	log.Infof(
		"raised dispute %d on adjudicator %s for subject %s",
		disputeId, req.Adjudicator, op.subject.Id,
	)
	return nil
}

func (s *service) raiseAppeal(
	ctx context.Context, op *operation, adjudicator ports.Adjudicator, cost uint64,
) error {
	req, _, err := op.subject.OpenRequest()
	if err != nil {
		return err
	}

	if err := adjudicator.OpenAppeal(
		ctx, req.DisputeId, req.AdjudicatorExtraData, cost,
	); err != nil {
		return adjudicatorErr("open appeal", err)
	}
	if _, err := op.subject.RaiseAppeal(cost, op.now); err != nil {
		return err
	}
	op.pay(adjudicator.FeeAccount(), cost, "appeal fee")

	log.Infof(
		"appealed dispute %d on adjudicator %s for subject %s",
		req.DisputeId, req.Adjudicator, op.subject.Id,
	)
	return nil
}
