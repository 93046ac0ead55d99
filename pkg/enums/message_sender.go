package enums

import "fmt"

// MessageSender identifies which side of a thread wrote a message. The
// responding side is recorded as admin for admin-targeted threads and for
// wholesaler replies alike.
type MessageSender string

const (
	MessageSenderUser  MessageSender = "user"
	MessageSenderAdmin MessageSender = "admin"
)

var validMessageSenders = []MessageSender{
	MessageSenderUser,
	MessageSenderAdmin,
}

// String implements fmt.Stringer.
func (m MessageSender) String() string {
	return string(m)
}

// IsValid reports whether the value is a known MessageSender.
func (m MessageSender) IsValid() bool {
	for _, candidate := range validMessageSenders {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseMessageSender converts raw input into a MessageSender.
func ParseMessageSender(value string) (MessageSender, error) {
	for _, candidate := range validMessageSenders {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid message sender %q", value)
}
