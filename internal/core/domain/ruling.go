package domain

// Resolvable is implemented by anything whose open request can be finalized
// with a ruling.
type Resolvable interface {
	Finalize(adjudicatorRuling, ruling Ruling, now int64) ([]SubjectEvent, error)
}

// ResolveRuling interprets the ruling reported by the adjudicator against
// the funding of the last round:
//   - with no contribution on either side the ruling is respected;
//   - with contributions on one side only, that side wins;
//   - an undecided ruling goes to the side that paid the most;
//   - a decisive ruling is inverted if the loser fully funded and the
//     winner did not.
func ResolveRuling(round *Round, ruling Ruling) Ruling {
	requesterSet := round.HasContribution(SideRequester)
	challengerSet := round.HasContribution(SideChallenger)

	switch {
	case !requesterSet && !challengerSet:
		return ruling
	case requesterSet && !challengerSet:
		return RulingAccept
	case !requesterSet && challengerSet:
		return RulingReject
	}

	if ruling == RulingUndecided {
		return MajorityRuling(round)
	}

	winner, loser := ruling.Winner(), ruling.Loser()
	if round.FullyFunded(loser) && !round.FullyFunded(winner) {
		return RulingFavoring(loser)
	}
	return ruling
}

// MajorityRuling favors the side that paid the most in round. Ties go to
// the requester.
func MajorityRuling(round *Round) Ruling {
	if round.PaidBy(SideRequester) >= round.PaidBy(SideChallenger) {
		return RulingAccept
	}
	return RulingReject
}
