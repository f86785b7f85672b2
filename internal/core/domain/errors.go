package domain

import "errors"

var (
	ErrInsufficientValue      = errors.New("insufficient value")
	ErrInvalidStateTransition = errors.New("invalid state transition")
	ErrWindowExpired          = errors.New("window expired")
	ErrWindowNotYetElapsed    = errors.New("window not yet elapsed")
	ErrUnauthorizedCaller     = errors.New("unauthorized caller")
	ErrAdjudicatorCallFailed  = errors.New("adjudicator call failed")

	ErrSubjectNotFound   = errors.New("subject not found")
	ErrInvalidParams     = errors.New("invalid params")
	ErrDisputeRouteTaken = errors.New("dispute already routed to another subject")
)
