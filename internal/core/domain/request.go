package domain

import "github.com/crowdescrow/escrowd/pkg/safemath"

// Request is one attempt to change the status of a subject.
type Request struct {
	Id                   string
	Kind                 RequestKind
	Parties              [2]string
	SubmissionTime       int64
	ChallengeTime        int64
	RequesterDeposit     uint64
	ChallengerDeposit    uint64
	Disputed             bool
	DisputeId            uint64
	Resolved             bool
	Ruling               Ruling
	Adjudicator          string
	AdjudicatorExtraData []byte
	Rounds               []Round
}

func (r *Request) Party(side Side) string {
	if !side.Valid() {
		return ""
	}
	return r.Parties[side.index()]
}

func (r *Request) Challenged() bool {
	return len(r.Parties[SideChallenger.index()]) > 0
}

func (r *Request) CurrentRoundIndex() int {
	return len(r.Rounds) - 1
}

func (r *Request) CurrentRound() *Round {
	return &r.Rounds[len(r.Rounds)-1]
}

// DepositTotal is the escrowed value disbursed on finalization.
func (r *Request) DepositTotal() uint64 {
	return safemath.SaturatingAdd(r.RequesterDeposit, r.ChallengerDeposit)
}

func (r *Request) ChallengeDeadline(params Params) int64 {
	return r.SubmissionTime + params.ChallengePeriod
}

func (r *Request) FundingDeadline(params Params) int64 {
	return r.ChallengeTime + params.FundingWaitingPeriod
}

// depositPayouts splits the deposit total according to ruling. An odd unit
// left by an even split goes to the requester.
func (r *Request) depositPayouts(ruling Ruling) (requester, challenger uint64) {
	total := r.DepositTotal()
	switch ruling {
	case RulingAccept:
		return total, 0
	case RulingReject:
		return 0, total
	default:
		challenger = total / 2
		return total - challenger, challenger
	}
}
