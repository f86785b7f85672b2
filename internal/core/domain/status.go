package domain

import "fmt"

type Status uint8

const (
	StatusAbsent Status = iota
	StatusRegistered
	StatusRegistrationRequested
	StatusClearingRequested
	StatusRegistrationDisputed
	StatusClearingDisputed
)

func (s Status) String() string {
	switch s {
	case StatusAbsent:
		return "absent"
	case StatusRegistered:
		return "registered"
	case StatusRegistrationRequested:
		return "registration_requested"
	case StatusClearingRequested:
		return "clearing_requested"
	case StatusRegistrationDisputed:
		return "registration_disputed"
	case StatusClearingDisputed:
		return "clearing_disputed"
	default:
		return "unknown"
	}
}

// Pending is true while a request is open on the subject, disputed or not.
func (s Status) Pending() bool {
	return s >= StatusRegistrationRequested && s <= StatusClearingDisputed
}

func (s Status) Disputed() bool {
	return s == StatusRegistrationDisputed || s == StatusClearingDisputed
}

// Kind returns the kind of the open request, RequestNone if not pending.
func (s Status) Kind() RequestKind {
	switch s {
	case StatusRegistrationRequested, StatusRegistrationDisputed:
		return RequestRegistration
	case StatusClearingRequested, StatusClearingDisputed:
		return RequestClearing
	default:
		return RequestNone
	}
}

// PendingStatuses lists every status with an open request.
var PendingStatuses = []Status{
	StatusRegistrationRequested,
	StatusClearingRequested,
	StatusRegistrationDisputed,
	StatusClearingDisputed,
}

type RequestKind uint8

const (
	RequestNone RequestKind = iota
	RequestRegistration
	RequestClearing
)

func (k RequestKind) String() string {
	switch k {
	case RequestRegistration:
		return "registration"
	case RequestClearing:
		return "clearing"
	default:
		return "none"
	}
}

func ParseRequestKind(str string) (RequestKind, error) {
	switch str {
	case "registration":
		return RequestRegistration, nil
	case "clearing":
		return RequestClearing, nil
	default:
		return RequestNone, fmt.Errorf("%w: unknown request kind %q", ErrInvalidParams, str)
	}
}

// from is the status a request of this kind can be submitted from. It is
// also where the subject falls back to when the request is rejected.
func (k RequestKind) from() Status {
	if k == RequestClearing {
		return StatusRegistered
	}
	return StatusAbsent
}

// to is the status the subject reaches when the request is accepted.
func (k RequestKind) to() Status {
	if k == RequestClearing {
		return StatusAbsent
	}
	return StatusRegistered
}

func (k RequestKind) requested() Status {
	if k == RequestClearing {
		return StatusClearingRequested
	}
	return StatusRegistrationRequested
}

func (k RequestKind) disputed() Status {
	if k == RequestClearing {
		return StatusClearingDisputed
	}
	return StatusRegistrationDisputed
}
