package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/crowdescrow/escrowd/internal/core/domain"
	"github.com/crowdescrow/escrowd/internal/core/ports"
	log "github.com/sirupsen/logrus"
)

type payout struct {
	to     string
	amount uint64
	reason string
}

// operation carries the state of a single engine call. The subject is
// loaded fresh, mutated in memory and persisted only if the whole call
// succeeds. Payouts are sent after persistence.
type operation struct {
	subject *domain.Subject
	params  domain.Params
	now     int64
	payouts []payout
}

func (op *operation) pay(to string, amount uint64, reason string) {
	if amount == 0 || len(to) <= 0 {
		return
	}
	op.payouts = append(op.payouts, payout{to, amount, reason})
}

// execute runs body against subjectId while holding the subject lock.
// value is collected from payer before body runs and sent back if the
// operation aborts.
func (s *service) execute(
	ctx context.Context, subjectId string, create bool,
	payer string, value uint64, body func(op *operation) error,
) error {
	if len(subjectId) <= 0 {
		return fmt.Errorf("%w: missing subject id", domain.ErrInvalidParams)
	}

	unlock, err := s.locker.Lock(ctx, subjectLockPrefix+subjectId)
	if err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}
	defer unlock()

	params, err := s.getParams(ctx)
	if err != nil {
		return err
	}

	subject, err := s.repoManager.Subjects().GetSubject(ctx, subjectId)
	if err != nil {
		if !create || !errors.Is(err, domain.ErrSubjectNotFound) {
			return err
		}
		subject = domain.NewSubject(subjectId)
	}

	if value > 0 {
		if err := s.ledger.Collect(ctx, payer, value); err != nil {
			return err
		}
	}

	op := &operation{
		subject: subject,
		params:  *params,
		now:     s.clock().Unix(),
	}
	if err := body(op); err != nil {
		s.refund(ctx, payer, value)
		return err
	}

	events := subject.Events()
	if len(events) <= 0 {
		s.refund(ctx, payer, value)
		return nil
	}

	if err := s.repoManager.Subjects().AddOrUpdateSubject(ctx, *subject); err != nil {
		s.refund(ctx, payer, value)
		return fmt.Errorf("failed to store subject: %w", err)
	}

	if err := s.publisher.Publish(ctx, domain.SubjectTopic, events...); err != nil {
		log.WithError(err).Warnf("failed to publish events for subject %s", subjectId)
	}

	s.sendPayouts(ctx, subjectId, op.payouts)
	return nil
}

// sendPayouts transfers value out of escrow. Failures are logged and never
// reported to the caller.
func (s *service) sendPayouts(ctx context.Context, subjectId string, payouts []payout) {
	for _, p := range payouts {
		if err := s.ledger.Transfer(ctx, p.to, p.amount); err != nil {
			log.WithError(err).WithFields(log.Fields{
				"subject": subjectId,
				"to":      p.to,
				"amount":  p.amount,
				"reason":  p.reason,
			}).Warn("failed to transfer payout")
			continue
		}
		log.WithFields(log.Fields{
			"subject": subjectId,
			"to":      p.to,
			"amount":  p.amount,
			"reason":  p.reason,
		}).Debug("sent payout")
	}
}

func (s *service) refund(ctx context.Context, payer string, value uint64) {
	if value == 0 {
		return
	}
	if err := s.ledger.Transfer(ctx, payer, value); err != nil {
		log.WithError(err).Warnf("failed to give back %d to %s", value, payer)
	}
}

// finalize resolves the open request and schedules the deposit payouts.
func finalize(op *operation, resolvable domain.Resolvable, adjudicatorRuling, ruling domain.Ruling) error {
	events, err := resolvable.Finalize(adjudicatorRuling, ruling, op.now)
	if err != nil {
		return err
	}
	payDeposits(op, events)
	return nil
}

func payDeposits(op *operation, events []domain.SubjectEvent) {
	for _, event := range events {
		if e, ok := event.(domain.RequestResolved); ok {
			op.pay(e.Requester, e.RequesterPayout, "deposit")
			op.pay(e.Challenger, e.ChallengerPayout, "deposit")
		}
	}
}

func adjudicatorErr(call string, err error) error {
	return fmt.Errorf("%w: %s: %s", domain.ErrAdjudicatorCallFailed, call, err)
}

func contributionResult(event *domain.ContributionAccepted) *ContributionResult {
	return &ContributionResult{
		Round:    event.Round,
		Accepted: event.Accepted,
		Refunded: event.Refunded,
		Required: event.Required,
		Paid:     event.Paid,
	}
}

var _ ports.Ruler = (*service)(nil)
