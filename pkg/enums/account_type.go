package enums

import "fmt"

// AccountType distinguishes the two trading sides of the marketplace.
type AccountType string

const (
	AccountTypeWholesaler AccountType = "wholesaler"
	AccountTypeRetailer   AccountType = "retailer"
)

var validAccountTypes = []AccountType{
	AccountTypeWholesaler,
	AccountTypeRetailer,
}

// String implements fmt.Stringer.
func (a AccountType) String() string {
	return string(a)
}

// IsValid reports whether the value is a known AccountType.
func (a AccountType) IsValid() bool {
	for _, candidate := range validAccountTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ProfileRole maps the account type to the profile role granted on approval.
func (a AccountType) ProfileRole() ProfileRole {
	switch a {
	case AccountTypeWholesaler:
		return ProfileRoleWholesaler
	case AccountTypeRetailer:
		return ProfileRoleRetailer
	default:
		return ""
	}
}

// ParseAccountType converts raw input into an AccountType.
func ParseAccountType(value string) (AccountType, error) {
	for _, candidate := range validAccountTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid account type %q", value)
}
