package handlers

import (
	"github.com/crowdescrow/escrowd/internal/core/application"
	"github.com/crowdescrow/escrowd/internal/core/domain"
)

type submitBody struct {
	Kind  string `json:"kind" binding:"required"`
	Value uint64 `json:"value"`
}

type challengeBody struct {
	Value uint64 `json:"value"`
}

type contributeBody struct {
	Side  string `json:"side" binding:"required"`
	Value uint64 `json:"value"`
}

type withdrawBody struct {
	// Beneficiary defaults to the caller.
	Beneficiary string `json:"beneficiary"`
	Request     int    `json:"request"`
	// Round is optional, all rounds of the request are withdrawn if missing.
	Round *int `json:"round"`
}

type depositBody struct {
	Account string `json:"account"`
	Amount  uint64 `json:"amount"`
}

type rulingBody struct {
	Ruling string `json:"ruling" binding:"required"`
}

type paramsView struct {
	Governor             string `json:"governor"`
	Adjudicator          string `json:"adjudicator"`
	AdjudicatorExtraData []byte `json:"adjudicator_extra_data,omitempty"`
	RequesterDeposit     uint64 `json:"requester_deposit"`
	ChallengePeriod      int64  `json:"challenge_period"`
	FundingWaitingPeriod int64  `json:"funding_waiting_period"`
	SharedMultiplier     uint64 `json:"shared_multiplier"`
	WinnerMultiplier     uint64 `json:"winner_multiplier"`
	LoserMultiplier      uint64 `json:"loser_multiplier"`
}

type infoView struct {
	Adjudicators   []string   `json:"adjudicators"`
	KeeperInterval int64      `json:"keeper_interval"`
	Params         paramsView `json:"params"`
}

type contributionView struct {
	Round         int    `json:"round"`
	Accepted      uint64 `json:"accepted"`
	Refunded      uint64 `json:"refunded"`
	Required      uint64 `json:"required"`
	Paid          uint64 `json:"paid"`
	DisputeRaised bool   `json:"dispute_raised"`
	AppealRaised  bool   `json:"appeal_raised"`
}

type submitView struct {
	RequestId    string            `json:"request_id"`
	Request      int               `json:"request"`
	Contribution *contributionView `json:"contribution,omitempty"`
}

type challengeView struct {
	Request      int               `json:"request"`
	Contribution *contributionView `json:"contribution,omitempty"`
}

type sideView struct {
	Required uint64 `json:"required"`
	Paid     uint64 `json:"paid"`
}

type roundView struct {
	Requester     sideView             `json:"requester"`
	Challenger    sideView             `json:"challenger"`
	Contributions map[string][2]uint64 `json:"contributions"`
	RewardPool    uint64               `json:"reward_pool"`
	Appealed      bool                 `json:"appealed"`
}

type requestView struct {
	Id                string      `json:"id"`
	Kind              string      `json:"kind"`
	Requester         string      `json:"requester"`
	Challenger        string      `json:"challenger,omitempty"`
	SubmissionTime    int64       `json:"submission_time"`
	ChallengeTime     int64       `json:"challenge_time,omitempty"`
	RequesterDeposit  uint64      `json:"requester_deposit"`
	ChallengerDeposit uint64      `json:"challenger_deposit"`
	Disputed          bool        `json:"disputed"`
	DisputeId         uint64      `json:"dispute_id"`
	Resolved          bool        `json:"resolved"`
	Ruling            string      `json:"ruling"`
	Adjudicator       string      `json:"adjudicator"`
	Rounds            []roundView `json:"rounds"`
}

type subjectView struct {
	Id       string        `json:"id"`
	Status   string        `json:"status"`
	Requests []requestView `json:"requests"`
}

// From app type to interface type

func toParamsView(p domain.Params) paramsView {
	return paramsView{
		Governor:             p.Governor,
		Adjudicator:          p.Adjudicator,
		AdjudicatorExtraData: p.AdjudicatorExtraData,
		RequesterDeposit:     p.RequesterDeposit,
		ChallengePeriod:      p.ChallengePeriod,
		FundingWaitingPeriod: p.FundingWaitingPeriod,
		SharedMultiplier:     p.SharedMultiplier,
		WinnerMultiplier:     p.WinnerMultiplier,
		LoserMultiplier:      p.LoserMultiplier,
	}
}

func toContributionView(r *application.ContributionResult) *contributionView {
	if r == nil {
		return nil
	}
	return &contributionView{
		Round:         r.Round,
		Accepted:      r.Accepted,
		Refunded:      r.Refunded,
		Required:      r.Required,
		Paid:          r.Paid,
		DisputeRaised: r.DisputeRaised,
		AppealRaised:  r.AppealRaised,
	}
}

func toSubjectView(s *domain.Subject) subjectView {
	requests := make([]requestView, 0, len(s.Requests))
	for i := range s.Requests {
		req := &s.Requests[i]
		rounds := make([]roundView, 0, len(req.Rounds))
		for j := range req.Rounds {
			round := &req.Rounds[j]
			contributions := round.Contributions
			if contributions == nil {
				contributions = map[string][2]uint64{}
			}
			rounds = append(rounds, roundView{
				Requester: sideView{
					Required: round.RequiredBy(domain.SideRequester),
					Paid:     round.PaidBy(domain.SideRequester),
				},
				Challenger: sideView{
					Required: round.RequiredBy(domain.SideChallenger),
					Paid:     round.PaidBy(domain.SideChallenger),
				},
				Contributions: contributions,
				RewardPool:    round.RewardPool,
				Appealed:      round.Appealed,
			})
		}
		requests = append(requests, requestView{
			Id:                req.Id,
			Kind:              req.Kind.String(),
			Requester:         req.Party(domain.SideRequester),
			Challenger:        req.Party(domain.SideChallenger),
			SubmissionTime:    req.SubmissionTime,
			ChallengeTime:     req.ChallengeTime,
			RequesterDeposit:  req.RequesterDeposit,
			ChallengerDeposit: req.ChallengerDeposit,
			Disputed:          req.Disputed,
			DisputeId:         req.DisputeId,
			Resolved:          req.Resolved,
			Ruling:            req.Ruling.String(),
			Adjudicator:       req.Adjudicator,
			Rounds:            rounds,
		})
	}
	return subjectView{
		Id:       s.Id,
		Status:   s.Status.String(),
		Requests: requests,
	}
}

// From interface type to app type

func (v paramsView) toParams() domain.Params {
	return domain.Params{
		Governor:             v.Governor,
		Adjudicator:          v.Adjudicator,
		AdjudicatorExtraData: v.AdjudicatorExtraData,
		RequesterDeposit:     v.RequesterDeposit,
		ChallengePeriod:      v.ChallengePeriod,
		FundingWaitingPeriod: v.FundingWaitingPeriod,
		SharedMultiplier:     v.SharedMultiplier,
		WinnerMultiplier:     v.WinnerMultiplier,
		LoserMultiplier:      v.LoserMultiplier,
	}
}
