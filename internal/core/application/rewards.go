package application

import (
	"context"
	"fmt"

	"github.com/crowdescrow/escrowd/internal/core/domain"
	log "github.com/sirupsen/logrus"
)

func (s *service) Withdraw(ctx context.Context, req WithdrawRequest) (uint64, error) {
	if len(req.Beneficiary) <= 0 {
		return 0, fmt.Errorf("%w: missing beneficiary", domain.ErrInvalidParams)
	}

	var amount uint64
	if err := s.execute(ctx, req.SubjectId, false, "", 0, func(op *operation) error {
		reward, _, err := op.subject.WithdrawReward(
			req.Beneficiary, req.Request, req.Round, op.now,
		)
		if err != nil {
			return err
		}
		amount = reward
		op.pay(req.Beneficiary, reward, "reward")
		return nil
	}); err != nil {
		return 0, err
	}

	if amount > 0 {
		log.Infof(
			"withdrawn %d from round %d of subject %s for %s",
			amount, req.Round, req.SubjectId, req.Beneficiary,
		)
	}
	return amount, nil
}

// WithdrawAll withdraws the reward of beneficiary from every round of the
// given request at once.
func (s *service) WithdrawAll(
	ctx context.Context, beneficiary, subjectId string, request int,
) (uint64, error) {
	if len(beneficiary) <= 0 {
		return 0, fmt.Errorf("%w: missing beneficiary", domain.ErrInvalidParams)
	}

	var total uint64
	if err := s.execute(ctx, subjectId, false, "", 0, func(op *operation) error {
		req, err := op.subject.Request(request)
		if err != nil {
			return err
		}
		for round := range req.Rounds {
			reward, _, err := op.subject.WithdrawReward(beneficiary, request, round, op.now)
			if err != nil {
				return err
			}
			total += reward
		}
		op.pay(beneficiary, total, "reward")
		return nil
	}); err != nil {
		return 0, err
	}

	if total > 0 {
		log.Infof(
			"withdrawn %d from request %d of subject %s for %s",
			total, request, subjectId, beneficiary,
		)
	}
	return total, nil
}
