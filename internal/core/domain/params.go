package domain

import (
	"context"
	"fmt"

	"github.com/crowdescrow/escrowd/pkg/safemath"
)

const (
	// MultiplierPrecision is the denominator of every stake multiplier,
	// 10000 stands for 100.00%.
	MultiplierPrecision = 10000
	maxMultiplier       = 10 * MultiplierPrecision
)

// Params is the governed configuration of the engine. Requests snapshot the
// adjudicator reference at submission, the rest is read fresh by every
// operation.
type Params struct {
	Governor             string
	Adjudicator          string
	AdjudicatorExtraData []byte
	RequesterDeposit     uint64
	// ChallengePeriod and FundingWaitingPeriod are expressed in seconds.
	ChallengePeriod      int64
	FundingWaitingPeriod int64
	SharedMultiplier     uint64
	WinnerMultiplier     uint64
	LoserMultiplier      uint64
}

func (p Params) Validate() error {
	if len(p.Governor) <= 0 {
		return fmt.Errorf("%w: missing governor", ErrInvalidParams)
	}
	if len(p.Adjudicator) <= 0 {
		return fmt.Errorf("%w: missing adjudicator", ErrInvalidParams)
	}
	if p.ChallengePeriod <= 0 {
		return fmt.Errorf("%w: challenge period must be positive", ErrInvalidParams)
	}
	if p.FundingWaitingPeriod <= 0 {
		return fmt.Errorf("%w: funding waiting period must be positive", ErrInvalidParams)
	}
	for _, m := range []uint64{p.SharedMultiplier, p.WinnerMultiplier, p.LoserMultiplier} {
		if m > maxMultiplier {
			return fmt.Errorf(
				"%w: multiplier %d exceeds max %d", ErrInvalidParams, m, maxMultiplier,
			)
		}
	}
	return nil
}

// SharedRequirement is the amount each side must pay when no prior winner exists.
func (p Params) SharedRequirement(cost uint64) uint64 {
	return safemath.ApplyMultiplier(cost, p.SharedMultiplier, MultiplierPrecision)
}

func (p Params) WinnerRequirement(cost uint64) uint64 {
	return safemath.ApplyMultiplier(cost, p.WinnerMultiplier, MultiplierPrecision)
}

func (p Params) LoserRequirement(cost uint64) uint64 {
	return safemath.ApplyMultiplier(cost, p.LoserMultiplier, MultiplierPrecision)
}

type ParamsRepository interface {
	Get(ctx context.Context) (*Params, error)
	Upsert(ctx context.Context, params Params) error
	Close()
}
