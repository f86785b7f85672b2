package application

import (
	"context"

	"github.com/crowdescrow/escrowd/internal/core/domain"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// settleExpiredRequests executes or times out every pending request whose
// window elapsed. Anyone can trigger the same transitions through the
// public operations, this only saves them the call.
func (s *service) settleExpiredRequests() {
	ctx := context.Background()

	ids, err := s.repoManager.Subjects().GetPendingSubjectIds(ctx)
	if err != nil {
		log.WithError(err).Warn("keeper: failed to list pending subjects")
		return
	}
	if len(ids) <= 0 {
		return
	}
	params, err := s.getParams(ctx)
	if err != nil {
		log.WithError(err).Warn("keeper: failed to get params")
		return
	}
	now := s.clock().Unix()

	g := new(errgroup.Group)
	g.SetLimit(keeperParallelism)
	for _, id := range ids {
		id := id
		g.Go(func() error {
			s.settleExpiredRequest(ctx, id, *params, now)
			return nil
		})
	}
	_ = g.Wait()
}

func (s *service) settleExpiredRequest(
	ctx context.Context, subjectId string, params domain.Params, now int64,
) {
	subject, err := s.repoManager.Subjects().GetSubject(ctx, subjectId)
	if err != nil {
		log.WithError(err).Debugf("keeper: failed to get subject %s", subjectId)
		return
	}
	req, _, err := subject.OpenRequest()
	if err != nil || req.Disputed {
		return
	}

	switch {
	case !req.Challenged() && now >= req.ChallengeDeadline(params):
		err = s.ExecuteUnchallenged(ctx, subjectId)
	case req.Challenged() && now >= req.FundingDeadline(params):
		err = s.TimeoutFundingWindow(ctx, subjectId)
	default:
		return
	}
	if err != nil {
		log.WithError(err).Debugf("keeper: failed to settle subject %s", subjectId)
	}
}
