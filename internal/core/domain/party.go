package domain

import "fmt"

// Side identifies one of the two opposing parties of a request.
type Side uint8

const (
	SideNone Side = iota
	SideRequester
	SideChallenger
)

var sides = []Side{SideRequester, SideChallenger}

func (s Side) String() string {
	switch s {
	case SideRequester:
		return "requester"
	case SideChallenger:
		return "challenger"
	default:
		return "none"
	}
}

func (s Side) Valid() bool {
	return s == SideRequester || s == SideChallenger
}

func (s Side) Opponent() Side {
	switch s {
	case SideRequester:
		return SideChallenger
	case SideChallenger:
		return SideRequester
	default:
		return SideNone
	}
}

// index maps a valid side to its slot in per-side arrays.
func (s Side) index() int {
	return int(s) - 1
}

func ParseSide(str string) (Side, error) {
	switch str {
	case "requester":
		return SideRequester, nil
	case "challenger":
		return SideChallenger, nil
	default:
		return SideNone, fmt.Errorf("%w: unknown side %q", ErrInvalidParams, str)
	}
}

// Ruling is the outcome of a dispute, either as reported by the
// adjudicator or as finalized by the engine.
type Ruling uint8

const (
	RulingUndecided Ruling = iota
	RulingAccept
	RulingReject
)

// NumberOfOutcomes is the count of decisive rulings an adjudicator can give.
const NumberOfOutcomes = 2

func (r Ruling) String() string {
	switch r {
	case RulingAccept:
		return "accept"
	case RulingReject:
		return "reject"
	default:
		return "undecided"
	}
}

func (r Ruling) Valid() bool {
	return r <= RulingReject
}

// Winner returns the side favored by the ruling, SideNone when undecided.
func (r Ruling) Winner() Side {
	switch r {
	case RulingAccept:
		return SideRequester
	case RulingReject:
		return SideChallenger
	default:
		return SideNone
	}
}

// Loser returns the side the ruling goes against, SideNone when undecided.
func (r Ruling) Loser() Side {
	return r.Winner().Opponent()
}

// RulingFavoring returns the decisive ruling that makes side the winner.
func RulingFavoring(side Side) Ruling {
	switch side {
	case SideRequester:
		return RulingAccept
	case SideChallenger:
		return RulingReject
	default:
		return RulingUndecided
	}
}

func ParseRuling(str string) (Ruling, error) {
	switch str {
	case "undecided", "":
		return RulingUndecided, nil
	case "accept":
		return RulingAccept, nil
	case "reject":
		return RulingReject, nil
	default:
		return RulingUndecided, fmt.Errorf("%w: unknown ruling %q", ErrInvalidParams, str)
	}
}
