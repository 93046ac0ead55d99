package enums

import "fmt"

// CSThreadStatus tracks a general customer-service conversation.
type CSThreadStatus string

const (
	CSThreadStatusOpen       CSThreadStatus = "open"
	CSThreadStatusBotHandled CSThreadStatus = "bot_handled"
	CSThreadStatusEscalated  CSThreadStatus = "escalated"
	CSThreadStatusAnswered   CSThreadStatus = "answered"
	CSThreadStatusClosed     CSThreadStatus = "closed"
)

var validCSThreadStatuses = []CSThreadStatus{
	CSThreadStatusOpen,
	CSThreadStatusBotHandled,
	CSThreadStatusEscalated,
	CSThreadStatusAnswered,
	CSThreadStatusClosed,
}

// String implements fmt.Stringer.
func (c CSThreadStatus) String() string {
	return string(c)
}

// IsValid reports whether the value is a known CSThreadStatus.
func (c CSThreadStatus) IsValid() bool {
	for _, candidate := range validCSThreadStatuses {
		if candidate == c {
			return true
		}
	}
	return false
}

// AcceptsReply reports whether a reply may still be posted to the thread.
func (c CSThreadStatus) AcceptsReply() bool {
	switch c {
	case CSThreadStatusOpen, CSThreadStatusBotHandled, CSThreadStatusEscalated:
		return true
	default:
		return false
	}
}

// ParseCSThreadStatus converts raw input into a CSThreadStatus.
func ParseCSThreadStatus(value string) (CSThreadStatus, error) {
	for _, candidate := range validCSThreadStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid cs thread status %q", value)
}
