package application

import (
	"context"

	"github.com/crowdescrow/escrowd/internal/core/domain"
)

type Service interface {
	Start() error
	Stop()
	GetInfo(ctx context.Context) (*ServiceInfo, error)
	Submit(ctx context.Context, req SubmitRequest) (*SubmitResult, error)
	Challenge(ctx context.Context, req ChallengeRequest) (*ChallengeResult, error)
	Contribute(ctx context.Context, req ContributeRequest) (*ContributionResult, error)
	ExecuteUnchallenged(ctx context.Context, subjectId string) error
	TimeoutFundingWindow(ctx context.Context, subjectId string) error
	Rule(ctx context.Context, adjudicatorId string, disputeId uint64, ruling domain.Ruling) error
	Withdraw(ctx context.Context, req WithdrawRequest) (uint64, error)
	WithdrawAll(ctx context.Context, beneficiary, subjectId string, request int) (uint64, error)
	GetSubject(ctx context.Context, id string) (*domain.Subject, error)
	ListSubjects(ctx context.Context, offset, limit int) ([]string, error)
	GetParams(ctx context.Context) (*domain.Params, error)
	UpdateParams(ctx context.Context, caller string, params domain.Params) error
}

type ServiceInfo struct {
	Adjudicators   []string
	KeeperInterval int64
	Params         domain.Params
}

type SubmitRequest struct {
	SubjectId string
	Kind      domain.RequestKind
	Requester string
	// Value is the amount sent along, the deposit is taken from it and the
	// surplus funds the requester side.
	Value uint64
}

type SubmitResult struct {
	RequestId    string
	Request      int
	Contribution *ContributionResult
}

type ChallengeRequest struct {
	SubjectId  string
	Challenger string
	Value      uint64
}

type ChallengeResult struct {
	Request      int
	Contribution *ContributionResult
}

type ContributeRequest struct {
	SubjectId   string
	Side        domain.Side
	Contributor string
	Value       uint64
}

type ContributionResult struct {
	Round         int
	Accepted      uint64
	Refunded      uint64
	Required      uint64
	Paid          uint64
	DisputeRaised bool
	AppealRaised  bool
}

type WithdrawRequest struct {
	Beneficiary string
	SubjectId   string
	Request     int
	Round       int
}
