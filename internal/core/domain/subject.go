package domain

import (
	"fmt"

	"github.com/crowdescrow/escrowd/pkg/safemath"
)

// Subject is the item whose status is disputed. Only the last of its
// requests can be open, older ones are history.
type Subject struct {
	Id       string
	Status   Status
	Requests []Request
	Version  uint
	changes  []SubjectEvent
}

// Funding describes a contribution to the current round of the open request.
type Funding struct {
	Side        Side
	Contributor string
	Amount      uint64
	// Required is the requirement computed from the current adjudicator cost.
	Required   uint64
	WinnerCost uint64
	// FullOnly rejects contributions that do not cover the whole remainder.
	FullOnly bool
}

func NewSubject(id string) *Subject {
	return &Subject{
		Id:       id,
		Requests: make([]Request, 0),
		changes:  make([]SubjectEvent, 0),
	}
}

func NewSubjectFromEvents(events []SubjectEvent) *Subject {
	s := &Subject{}

	for _, event := range events {
		s.On(event, true)
	}

	s.changes = append([]SubjectEvent{}, events...)

	return s
}

func (s *Subject) Events() []SubjectEvent {
	return s.changes
}

func (s *Subject) On(event SubjectEvent, replayed bool) {
	switch e := event.(type) {
	case RequestSubmitted:
		s.Id = e.SubjectId
		round := NewRound()
		s.Requests = append(s.Requests, Request{
			Id:                   e.RequestId,
			Kind:                 e.Kind,
			Parties:              [2]string{e.Requester, ""},
			SubmissionTime:       e.Timestamp,
			RequesterDeposit:     e.Deposit,
			Adjudicator:          e.Adjudicator,
			AdjudicatorExtraData: e.AdjudicatorExtraData,
			Rounds:               []Round{round},
		})
	case StatusChanged:
		s.Status = e.To
	case ChallengeDepositPosted:
		req := &s.Requests[e.Request]
		req.Parties[SideChallenger.index()] = e.Challenger
		req.ChallengerDeposit = e.Deposit
		req.ChallengeTime = e.Timestamp
	case ContributionAccepted:
		s.Requests[e.Request].Rounds[e.Round].contribute(e)
	case DisputeRaised:
		req := &s.Requests[e.Request]
		req.Disputed = true
		req.DisputeId = e.DisputeId
		req.Rounds[e.Round].escalate(e.Cost)
		req.Rounds = append(req.Rounds, NewRound())
	case AppealRaised:
		req := &s.Requests[e.Request]
		req.Rounds[e.Round].escalate(e.Cost)
		req.Rounds = append(req.Rounds, NewRound())
	case RequestResolved:
		req := &s.Requests[e.Request]
		req.Resolved = true
		req.Ruling = e.Ruling
	case RewardWithdrawn:
		round := &s.Requests[e.Request].Rounds[e.Round]
		delete(round.Contributions, e.Beneficiary)
		round.Withdrawn = safemath.SaturatingAdd(round.Withdrawn, e.Amount)
	}

	if replayed {
		s.Version++
	}
}

// LastRequest returns the most recent request, nil if none was ever submitted.
func (s *Subject) LastRequest() (*Request, int) {
	if len(s.Requests) <= 0 {
		return nil, -1
	}
	i := len(s.Requests) - 1
	return &s.Requests[i], i
}

// OpenRequest returns the pending request of the subject.
func (s *Subject) OpenRequest() (*Request, int, error) {
	req, i := s.LastRequest()
	if req == nil || req.Resolved || !s.Status.Pending() {
		return nil, -1, fmt.Errorf("%w: no pending request", ErrInvalidStateTransition)
	}
	return req, i, nil
}

func (s *Subject) Request(index int) (*Request, error) {
	if index < 0 || index >= len(s.Requests) {
		return nil, fmt.Errorf("%w: request %d out of range", ErrInvalidParams, index)
	}
	return &s.Requests[index], nil
}

// Submit opens a new request of the given kind. The requester deposit is
// taken from value, the caller handles whatever exceeds it.
func (s *Subject) Submit(
	requestId string, kind RequestKind, requester string, value uint64,
	params Params, now int64,
) ([]SubjectEvent, error) {
	if len(requester) <= 0 {
		return nil, fmt.Errorf("%w: missing requester", ErrInvalidParams)
	}
	if s.Status.Pending() {
		return nil, fmt.Errorf(
			"%w: subject already has a pending request", ErrInvalidStateTransition,
		)
	}
	if kind.from() != s.Status || kind == RequestNone {
		return nil, fmt.Errorf(
			"%w: cannot request %s from status %s", ErrInvalidStateTransition, kind, s.Status,
		)
	}
	if value < params.RequesterDeposit {
		return nil, fmt.Errorf(
			"%w: deposit %d below required %d", ErrInsufficientValue, value, params.RequesterDeposit,
		)
	}

	submitted := RequestSubmitted{
		SubjectId:            s.Id,
		Request:              len(s.Requests),
		RequestId:            requestId,
		Kind:                 kind,
		Requester:            requester,
		Deposit:              params.RequesterDeposit,
		Adjudicator:          params.Adjudicator,
		AdjudicatorExtraData: params.AdjudicatorExtraData,
		Timestamp:            now,
	}
	statusChanged := StatusChanged{
		SubjectId: s.Id,
		Request:   submitted.Request,
		From:      s.Status,
		To:        kind.requested(),
		Timestamp: now,
	}
	s.raise(submitted)
	s.raise(statusChanged)

	return []SubjectEvent{submitted, statusChanged}, nil
}

// Challenge posts the challenger deposit, which must match the requester's.
func (s *Subject) Challenge(
	challenger string, value uint64, params Params, now int64,
) ([]SubjectEvent, error) {
	if len(challenger) <= 0 {
		return nil, fmt.Errorf("%w: missing challenger", ErrInvalidParams)
	}
	req, i, err := s.OpenRequest()
	if err != nil {
		return nil, err
	}
	if req.Disputed || req.Challenged() {
		return nil, fmt.Errorf("%w: request already challenged", ErrInvalidStateTransition)
	}
	if now >= req.ChallengeDeadline(params) {
		return nil, fmt.Errorf("%w: challenge period is over", ErrWindowExpired)
	}
	if value < req.RequesterDeposit {
		return nil, fmt.Errorf(
			"%w: deposit %d below required %d", ErrInsufficientValue, value, req.RequesterDeposit,
		)
	}

	event := ChallengeDepositPosted{
		SubjectId:  s.Id,
		Request:    i,
		Challenger: challenger,
		Deposit:    req.RequesterDeposit,
		Timestamp:  now,
	}
	s.raise(event)

	return []SubjectEvent{event}, nil
}

// CheckDisputeFunding validates that side can fund round 0 at time now.
func (s *Subject) CheckDisputeFunding(side Side, params Params, now int64) error {
	if !side.Valid() {
		return fmt.Errorf("%w: invalid side", ErrInvalidParams)
	}
	req, _, err := s.OpenRequest()
	if err != nil {
		return err
	}
	if req.Disputed {
		return fmt.Errorf("%w: dispute already raised", ErrInvalidStateTransition)
	}
	if !req.Challenged() {
		if side == SideChallenger {
			return fmt.Errorf(
				"%w: challenge deposit not posted", ErrInvalidStateTransition,
			)
		}
		if now >= req.ChallengeDeadline(params) {
			return fmt.Errorf("%w: challenge period is over", ErrWindowExpired)
		}
		return nil
	}
	if now >= req.FundingDeadline(params) {
		return fmt.Errorf("%w: funding waiting period is over", ErrWindowExpired)
	}
	return nil
}

// CheckAppealFunding validates that the open request is waiting for appeal
// funding. Timing is up to the adjudicator window.
func (s *Subject) CheckAppealFunding(side Side) error {
	if !side.Valid() {
		return fmt.Errorf("%w: invalid side", ErrInvalidParams)
	}
	req, _, err := s.OpenRequest()
	if err != nil {
		return err
	}
	if !req.Disputed {
		return fmt.Errorf("%w: request is not disputed", ErrInvalidStateTransition)
	}
	return nil
}

// Contribute accepts up to the remaining headroom of the funded side into
// the current round of the open request. The rest is reported as refunded.
func (s *Subject) Contribute(funding Funding, now int64) (*ContributionAccepted, error) {
	if funding.Amount == 0 {
		return nil, fmt.Errorf("%w: zero contribution", ErrInsufficientValue)
	}
	if !funding.Side.Valid() {
		return nil, fmt.Errorf("%w: invalid side", ErrInvalidParams)
	}
	if len(funding.Contributor) <= 0 {
		return nil, fmt.Errorf("%w: missing contributor", ErrInvalidParams)
	}
	req, i, err := s.OpenRequest()
	if err != nil {
		return nil, err
	}

	round := req.CurrentRound()
	required, headroom := round.Headroom(funding.Side, funding.Required)
	if headroom == 0 && round.HasContribution(funding.Side) &&
		required == round.RequiredBy(funding.Side) && funding.WinnerCost <= round.WinnerCost {
		return nil, fmt.Errorf("%w: side already fully funded", ErrInvalidStateTransition)
	}
	if funding.FullOnly && funding.Amount < headroom {
		return nil, fmt.Errorf(
			"%w: funding must be paid in full, %d required", ErrInsufficientValue, headroom,
		)
	}
	accepted := safemath.Min(funding.Amount, headroom)

	event := ContributionAccepted{
		SubjectId:   s.Id,
		Request:     i,
		Round:       req.CurrentRoundIndex(),
		Side:        funding.Side,
		Contributor: funding.Contributor,
		Amount:      funding.Amount,
		Accepted:    accepted,
		Refunded:    funding.Amount - accepted,
		Required:    required,
		Paid:        round.PaidBy(funding.Side) + accepted,
		WinnerCost:  funding.WinnerCost,
		Timestamp:   now,
	}
	s.raise(event)

	return &event, nil
}

// RaiseDispute records the dispute opened on the adjudicator for round 0
// and appends the first appeal round.
func (s *Subject) RaiseDispute(disputeId, cost uint64, now int64) ([]SubjectEvent, error) {
	req, i, err := s.OpenRequest()
	if err != nil {
		return nil, err
	}
	if req.Disputed {
		return nil, fmt.Errorf("%w: dispute already raised", ErrInvalidStateTransition)
	}
	round := req.CurrentRound()
	if !round.HasContribution(SideRequester) || !round.HasContribution(SideChallenger) {
		return nil, fmt.Errorf("%w: both sides must be funded", ErrInvalidStateTransition)
	}

	raised := DisputeRaised{
		SubjectId:   s.Id,
		Request:     i,
		Round:       req.CurrentRoundIndex(),
		Adjudicator: req.Adjudicator,
		DisputeId:   disputeId,
		Cost:        cost,
		Timestamp:   now,
	}
	statusChanged := StatusChanged{
		SubjectId: s.Id,
		Request:   i,
		From:      s.Status,
		To:        req.Kind.disputed(),
		Timestamp: now,
	}
	s.raise(raised)
	s.raise(statusChanged)

	return []SubjectEvent{raised, statusChanged}, nil
}

// RaiseAppeal records the appeal of the current dispute and appends a new round.
func (s *Subject) RaiseAppeal(cost uint64, now int64) ([]SubjectEvent, error) {
	req, i, err := s.OpenRequest()
	if err != nil {
		return nil, err
	}
	if !req.Disputed {
		return nil, fmt.Errorf("%w: request is not disputed", ErrInvalidStateTransition)
	}
	if !req.CurrentRound().BothFunded() {
		return nil, fmt.Errorf("%w: both sides must be funded", ErrInvalidStateTransition)
	}

	event := AppealRaised{
		SubjectId:   s.Id,
		Request:     i,
		Round:       req.CurrentRoundIndex(),
		Adjudicator: req.Adjudicator,
		DisputeId:   req.DisputeId,
		Cost:        cost,
		Timestamp:   now,
	}
	s.raise(event)

	return []SubjectEvent{event}, nil
}

// ExecuteUnchallenged accepts the open request once its challenge period
// elapsed without challenger.
func (s *Subject) ExecuteUnchallenged(params Params, now int64) ([]SubjectEvent, error) {
	req, _, err := s.OpenRequest()
	if err != nil {
		return nil, err
	}
	if req.Challenged() || req.Disputed {
		return nil, fmt.Errorf("%w: request was challenged", ErrInvalidStateTransition)
	}
	if now < req.ChallengeDeadline(params) {
		return nil, fmt.Errorf("%w: challenge period is not over", ErrWindowNotYetElapsed)
	}
	return s.Finalize(RulingAccept, RulingAccept, now)
}

// CheckFundingTimeout validates that the funding waiting period of a
// challenged, undisputed request elapsed.
func (s *Subject) CheckFundingTimeout(params Params, now int64) error {
	req, _, err := s.OpenRequest()
	if err != nil {
		return err
	}
	if !req.Challenged() || req.Disputed {
		return fmt.Errorf(
			"%w: request must be challenged and not disputed", ErrInvalidStateTransition,
		)
	}
	if now < req.FundingDeadline(params) {
		return fmt.Errorf("%w: funding waiting period is not over", ErrWindowNotYetElapsed)
	}
	return nil
}

// Finalize resolves the open request with the given ruling, moves the
// subject status and reports how the deposit total is paid out.
func (s *Subject) Finalize(
	adjudicatorRuling, ruling Ruling, now int64,
) ([]SubjectEvent, error) {
	if !ruling.Valid() || !adjudicatorRuling.Valid() {
		return nil, fmt.Errorf("%w: invalid ruling", ErrInvalidParams)
	}
	req, i, err := s.OpenRequest()
	if err != nil {
		return nil, err
	}

	to := req.Kind.from()
	if ruling == RulingAccept {
		to = req.Kind.to()
	}
	requesterPayout, challengerPayout := req.depositPayouts(ruling)

	statusChanged := StatusChanged{
		SubjectId: s.Id,
		Request:   i,
		From:      s.Status,
		To:        to,
		Timestamp: now,
	}
	resolved := RequestResolved{
		SubjectId:         s.Id,
		Request:           i,
		AdjudicatorRuling: adjudicatorRuling,
		Ruling:            ruling,
		Requester:         req.Party(SideRequester),
		RequesterPayout:   requesterPayout,
		Challenger:        req.Party(SideChallenger),
		ChallengerPayout:  challengerPayout,
		Timestamp:         now,
	}
	s.raise(statusChanged)
	s.raise(resolved)

	return []SubjectEvent{statusChanged, resolved}, nil
}

// WithdrawReward pays beneficiary its share of a round of a resolved
// request. Withdrawing twice yields zero and raises nothing.
func (s *Subject) WithdrawReward(
	beneficiary string, request, round int, now int64,
) (uint64, []SubjectEvent, error) {
	req, err := s.Request(request)
	if err != nil {
		return 0, nil, err
	}
	if !req.Resolved {
		return 0, nil, fmt.Errorf("%w: request is not resolved", ErrInvalidStateTransition)
	}
	if round < 0 || round >= len(req.Rounds) {
		return 0, nil, fmt.Errorf("%w: round %d out of range", ErrInvalidParams, round)
	}
	r := &req.Rounds[round]
	if _, ok := r.Contributions[beneficiary]; !ok {
		return 0, nil, nil
	}

	amount := r.RewardOf(beneficiary, req.Ruling)
	event := RewardWithdrawn{
		SubjectId:   s.Id,
		Request:     request,
		Round:       round,
		Beneficiary: beneficiary,
		Amount:      amount,
		Timestamp:   now,
	}
	s.raise(event)

	return amount, []SubjectEvent{event}, nil
}

func (s *Subject) raise(event SubjectEvent) {
	if s.changes == nil {
		s.changes = make([]SubjectEvent, 0)
	}
	s.changes = append(s.changes, event)
	s.On(event, false)
}
