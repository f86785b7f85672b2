package domain

import "context"

type SubjectRepository interface {
	// AddOrUpdateSubject stores the subject along with the dispute route of
	// its open request, all or nothing.
	AddOrUpdateSubject(ctx context.Context, subject Subject) error
	GetSubject(ctx context.Context, id string) (*Subject, error)
	GetSubjectIdByDispute(ctx context.Context, adjudicator string, disputeId uint64) (string, error)
	// GetSubjectIds lists subjects in submission order.
	GetSubjectIds(ctx context.Context, offset, limit int) ([]string, error)
	GetPendingSubjectIds(ctx context.Context) ([]string, error)
	Close()
}

// DisputeRoute returns the adjudicator and dispute id of the last request if
// it was ever disputed.
func (s *Subject) DisputeRoute() (string, uint64, bool) {
	req, _ := s.LastRequest()
	if req == nil || !req.Disputed {
		return "", 0, false
	}
	return req.Adjudicator, req.DisputeId, true
}
