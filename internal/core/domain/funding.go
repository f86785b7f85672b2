package domain

import (
	"fmt"

	"github.com/crowdescrow/escrowd/pkg/safemath"
)

// AppealWindow is the period during which a dispute can be appealed. The
// zero window means the adjudicator does not report appeal timing.
type AppealWindow struct {
	Start int64
	End   int64
}

func (w AppealWindow) Supported() bool {
	return w.Start != 0 || w.End != 0
}

func (w AppealWindow) Half() int64 {
	return w.Start + (w.End-w.Start)/2
}

// AppealRequirement is the outcome of the multiplier selection for an
// appeal round contribution.
type AppealRequirement struct {
	Required   uint64
	WinnerCost uint64
	FullOnly   bool
}

// ComputeAppealRequirement decides whether side can fund the current appeal
// round at time now and how much it must pay given the adjudicator appeal
// cost and current leaning.
//
// With a decisive leaning the window is split in halves: the loser funds in
// the first one, the winner in the second one and only after the loser is
// fully funded. The winner requirement never decreases within the round.
// An undecided leaning lets both sides fund with the shared multiplier.
func ComputeAppealRequirement(
	round *Round, side Side, cost uint64, leaning Ruling, window AppealWindow,
	params Params, now int64,
) (*AppealRequirement, error) {
	if window.Supported() {
		if now < window.Start {
			return nil, fmt.Errorf("%w: appeal window not open", ErrWindowNotYetElapsed)
		}
		if now >= window.End {
			return nil, fmt.Errorf("%w: appeal window is over", ErrWindowExpired)
		}
	}

	if leaning == RulingUndecided {
		return &AppealRequirement{
			Required: params.SharedRequirement(cost),
			FullOnly: !window.Supported(),
		}, nil
	}

	if side == leaning.Loser() {
		if window.Supported() && now >= window.Half() {
			return nil, fmt.Errorf("%w: loser funding period is over", ErrWindowExpired)
		}
		return &AppealRequirement{
			Required: params.LoserRequirement(cost),
			FullOnly: !window.Supported(),
		}, nil
	}

	if window.Supported() && now < window.Half() {
		return nil, fmt.Errorf("%w: winner funding not open yet", ErrWindowNotYetElapsed)
	}
	if !round.FullyFunded(leaning.Loser()) {
		return nil, fmt.Errorf("%w: loser is not fully funded", ErrInvalidStateTransition)
	}
	required := safemath.Max(round.WinnerCost, params.WinnerRequirement(cost))
	return &AppealRequirement{
		Required:   required,
		WinnerCost: required,
		FullOnly:   !window.Supported(),
	}, nil
}
