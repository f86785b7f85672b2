package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/crowdescrow/escrowd/internal/core/domain"
	log "github.com/sirupsen/logrus"
)

// Rule finalizes the request disputed as disputeId on adjudicatorId. The
// ruling is interpreted against the funding of the last round before
// being applied.
func (s *service) Rule(
	ctx context.Context, adjudicatorId string, disputeId uint64, ruling domain.Ruling,
) error {
	if !ruling.Valid() {
		return fmt.Errorf("%w: invalid ruling %d", domain.ErrInvalidParams, ruling)
	}

	subjectId, err := s.repoManager.Subjects().GetSubjectIdByDispute(ctx, adjudicatorId, disputeId)
	if err != nil {
		if errors.Is(err, domain.ErrSubjectNotFound) {
			return fmt.Errorf(
				"%w: no dispute %d for adjudicator %s",
				domain.ErrUnauthorizedCaller, disputeId, adjudicatorId,
			)
		}
		return err
	}

	var final domain.Ruling
	if err := s.execute(ctx, subjectId, false, "", 0, func(op *operation) error {
		req, _, err := op.subject.OpenRequest()
		if err != nil {
			return err
		}
		if req.Adjudicator != adjudicatorId {
			return fmt.Errorf(
				"%w: request is arbitrated by %s", domain.ErrUnauthorizedCaller, req.Adjudicator,
			)
		}
		if !req.Disputed || req.DisputeId != disputeId {
			return fmt.Errorf(
				"%w: dispute %d is not open on subject %s",
				domain.ErrInvalidStateTransition, disputeId, subjectId,
			)
		}

		final = domain.ResolveRuling(req.CurrentRound(), ruling)
		return finalize(op, op.subject, ruling, final)
	}); err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"subject":     subjectId,
		"adjudicator": adjudicatorId,
		"dispute":     disputeId,
		"ruling":      ruling,
		"final":       final,
	}).Info("resolved disputed request")
	return nil
}
