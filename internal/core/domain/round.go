package domain

import "github.com/crowdescrow/escrowd/pkg/safemath"

// Round is one funding window of a request. Index 0 funds the dispute, the
// following ones fund appeals. Per-side arrays are indexed by Side.index().
type Round struct {
	Required    [2]uint64
	Paid        [2]uint64
	RequiredSet [2]bool
	// Contributions maps a contributor to the amount accepted for each side.
	Contributions map[string][2]uint64
	RewardPool    uint64
	// Appealed marks that the round escalated: for round 0 the dispute was
	// raised, for later rounds an appeal was.
	Appealed   bool
	WinnerCost uint64
	// Withdrawn is the part of the reward pool already paid out.
	Withdrawn uint64
}

func NewRound() Round {
	return Round{Contributions: make(map[string][2]uint64)}
}

func (r *Round) RequiredBy(side Side) uint64 {
	return r.Required[side.index()]
}

func (r *Round) PaidBy(side Side) uint64 {
	return r.Paid[side.index()]
}

func (r *Round) HasContribution(side Side) bool {
	return r.RequiredSet[side.index()]
}

func (r *Round) ContributionOf(contributor string, side Side) uint64 {
	return r.Contributions[contributor][side.index()]
}

// FullyFunded is true once side received at least one contribution and its
// paid amount covers the requirement.
func (r *Round) FullyFunded(side Side) bool {
	i := side.index()
	return r.RequiredSet[i] && r.Paid[i] >= r.Required[i]
}

func (r *Round) BothFunded() bool {
	return r.FullyFunded(SideRequester) && r.FullyFunded(SideChallenger)
}

// FundedAt reports whether both sides would be fully funded if the
// requirement of each side dropped to required.
func (r *Round) FundedAt(required uint64) bool {
	for _, side := range sides {
		i := side.index()
		if !r.RequiredSet[i] || r.Paid[i] < required {
			return false
		}
	}
	return true
}

// Headroom clamps the computed requirement of side to what it already paid
// and returns it along with the amount the side can still accept.
func (r *Round) Headroom(side Side, computed uint64) (required, headroom uint64) {
	required = safemath.Max(computed, r.PaidBy(side))
	return required, required - r.PaidBy(side)
}

func (r *Round) TotalPaid() uint64 {
	return safemath.SaturatingAdd(r.Paid[0], r.Paid[1])
}

func (r *Round) contribute(e ContributionAccepted) {
	if r.Contributions == nil {
		r.Contributions = make(map[string][2]uint64)
	}
	i := e.Side.index()
	r.RequiredSet[i] = true
	r.Required[i] = e.Required
	if e.WinnerCost > r.WinnerCost {
		r.WinnerCost = e.WinnerCost
	}
	if e.Accepted == 0 {
		return
	}
	c := r.Contributions[e.Contributor]
	c[i] = safemath.SaturatingAdd(c[i], e.Accepted)
	r.Contributions[e.Contributor] = c
	r.Paid[i] = safemath.SaturatingAdd(r.Paid[i], e.Accepted)
	r.RewardPool = safemath.SaturatingAdd(r.RewardPool, e.Accepted)
}

// escalate charges the adjudicator cost to the pool and settles the
// requirements on what each side actually paid.
func (r *Round) escalate(cost uint64) {
	r.Appealed = true
	r.Required = r.Paid
	r.RewardPool = safemath.SaturatingSub(r.RewardPool, cost)
}
