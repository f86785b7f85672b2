package ports

import (
	"context"

	"github.com/crowdescrow/escrowd/internal/core/domain"
)

type DisputeStatus int

const (
	DisputePending DisputeStatus = iota
	DisputeAppealable
	DisputeFinal
)

func (s DisputeStatus) String() string {
	switch s {
	case DisputePending:
		return "pending"
	case DisputeAppealable:
		return "appealable"
	case DisputeFinal:
		return "final"
	default:
		return "unknown"
	}
}

// Adjudicator prices and rules on disputes. It is trusted not to call back
// into the engine while serving one of these calls, rulings are delivered
// later through a Ruler.
type Adjudicator interface {
	Id() string
	// FeeAccount is the ledger account receiving the payments of disputes
	// and appeals once they are recorded.
	FeeAccount() string
	CostForDispute(ctx context.Context, extraData []byte) (uint64, error)
	CostForAppeal(ctx context.Context, disputeId uint64, extraData []byte) (uint64, error)
	// OpenDispute creates a dispute paid with payment, which must cover
	// CostForDispute.
	OpenDispute(
		ctx context.Context, outcomes uint, extraData []byte, payment uint64,
	) (uint64, error)
	OpenAppeal(ctx context.Context, disputeId uint64, extraData []byte, payment uint64) error
	// AppealWindow returns the zero window if appeal timing is not supported.
	AppealWindow(ctx context.Context, disputeId uint64) (domain.AppealWindow, error)
	CurrentLeaning(ctx context.Context, disputeId uint64) (domain.Ruling, error)
	Status(ctx context.Context, disputeId uint64) (DisputeStatus, error)
}

// Ruler receives final rulings from adjudicators.
type Ruler interface {
	Rule(ctx context.Context, adjudicatorId string, disputeId uint64, ruling domain.Ruling) error
}
