package domain

import dErrors "github.com/MandalaChain/E-Certificate/pkg/domain-errors"

// Status is the lifecycle state of a certificate record.
// Invariant: transitions are monotonic. Active may move to Redeemed or
// Expired; Expired may move to Redeemed; Redeemed is terminal. No state ever
// moves back to Active.
type Status string

const (
	StatusActive   Status = "active"
	StatusRedeemed Status = "redeemed"
	StatusExpired  Status = "expired"
)

var validStatuses = map[Status]bool{
	StatusActive:   true,
	StatusRedeemed: true,
	StatusExpired:  true,
}

// ParseStatus constructs a Status from stored or external input.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !validStatuses[st] {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid status")
	}
	return st, nil
}

// CanTransitionTo reports whether moving from s to next respects the
// monotonic lifecycle.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusActive:
		return next == StatusRedeemed || next == StatusExpired
	case StatusExpired:
		return next == StatusRedeemed
	default:
		return false
	}
}

func (s Status) String() string {
	return string(s)
}
