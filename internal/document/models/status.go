package models

import dErrors "onboarding/pkg/domain-errors"

// Status is the review/validity state of a DocumentRecord.
type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
	StatusExpired  Status = "expired"
)

// allowedTransitions: pending -> accepted|rejected|expired, accepted -> expired.
var allowedTransitions = map[Status][]Status{
	StatusPending:  {StatusAccepted, StatusRejected, StatusExpired},
	StatusAccepted: {StatusExpired},
}

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusRejected, StatusExpired:
		return true
	}
	return false
}

// IsTerminal is true for rejected and expired.
func (s Status) IsTerminal() bool {
	return s == StatusRejected || s == StatusExpired
}

// CanTransitionTo reports whether the state machine allows s -> to.
func (s Status) CanTransitionTo(to Status) bool {
	for _, allowed := range allowedTransitions[s] {
		if allowed == to {
			return true
		}
	}
	return false
}

// ParseStatus parses a stored or user-supplied status.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.IsValid() {
		return "", dErrors.Newf(dErrors.CodeInvalidInput, "invalid document status %q", s)
	}
	return st, nil
}

func (s Status) String() string {
	return string(s)
}
