package domain

// SubjectTopic is the topic every subject event is published on.
const SubjectTopic = "subject"

type EventType string

const (
	EventTypeRequestSubmitted       EventType = "request_submitted"
	EventTypeStatusChanged          EventType = "status_changed"
	EventTypeChallengeDepositPosted EventType = "challenge_deposit_posted"
	EventTypeContributionAccepted   EventType = "contribution_accepted"
	EventTypeDisputeRaised          EventType = "dispute_raised"
	EventTypeAppealRaised           EventType = "appeal_raised"
	EventTypeRequestResolved        EventType = "request_resolved"
	EventTypeRewardWithdrawn        EventType = "reward_withdrawn"
)

type SubjectEvent interface {
	GetSubjectId() string
	GetType() EventType
}

func (e RequestSubmitted) GetSubjectId() string       { return e.SubjectId }
func (e StatusChanged) GetSubjectId() string          { return e.SubjectId }
func (e ChallengeDepositPosted) GetSubjectId() string { return e.SubjectId }
func (e ContributionAccepted) GetSubjectId() string   { return e.SubjectId }
func (e DisputeRaised) GetSubjectId() string          { return e.SubjectId }
func (e AppealRaised) GetSubjectId() string           { return e.SubjectId }
func (e RequestResolved) GetSubjectId() string        { return e.SubjectId }
func (e RewardWithdrawn) GetSubjectId() string        { return e.SubjectId }

func (e RequestSubmitted) GetType() EventType       { return EventTypeRequestSubmitted }
func (e StatusChanged) GetType() EventType          { return EventTypeStatusChanged }
func (e ChallengeDepositPosted) GetType() EventType { return EventTypeChallengeDepositPosted }
func (e ContributionAccepted) GetType() EventType   { return EventTypeContributionAccepted }
func (e DisputeRaised) GetType() EventType          { return EventTypeDisputeRaised }
func (e AppealRaised) GetType() EventType           { return EventTypeAppealRaised }
func (e RequestResolved) GetType() EventType        { return EventTypeRequestResolved }
func (e RewardWithdrawn) GetType() EventType        { return EventTypeRewardWithdrawn }

type RequestSubmitted struct {
	SubjectId            string
	Request              int
	RequestId            string
	Kind                 RequestKind
	Requester            string
	Deposit              uint64
	Adjudicator          string
	AdjudicatorExtraData []byte
	Timestamp            int64
}

type StatusChanged struct {
	SubjectId string
	Request   int
	From      Status
	To        Status
	Timestamp int64
}

type ChallengeDepositPosted struct {
	SubjectId  string
	Request    int
	Challenger string
	Deposit    uint64
	Timestamp  int64
}

type ContributionAccepted struct {
	SubjectId   string
	Request     int
	Round       int
	Side        Side
	Contributor string
	Amount      uint64
	Accepted    uint64
	Refunded    uint64
	Required    uint64
	// Paid is the side total after the contribution.
	Paid       uint64
	WinnerCost uint64
	Timestamp  int64
}

type DisputeRaised struct {
	SubjectId   string
	Request     int
	Round       int
	Adjudicator string
	DisputeId   uint64
	Cost        uint64
	Timestamp   int64
}

type AppealRaised struct {
	SubjectId   string
	Request     int
	Round       int
	Adjudicator string
	DisputeId   uint64
	Cost        uint64
	Timestamp   int64
}

type RequestResolved struct {
	SubjectId         string
	Request           int
	AdjudicatorRuling Ruling
	Ruling            Ruling
	Requester         string
	RequesterPayout   uint64
	Challenger        string
	ChallengerPayout  uint64
	Timestamp         int64
}

type RewardWithdrawn struct {
	SubjectId   string
	Request     int
	Round       int
	Beneficiary string
	Amount      uint64
	Timestamp   int64
}
