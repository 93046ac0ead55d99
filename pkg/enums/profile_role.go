package enums

import "fmt"

// ProfileRole is the marketplace-wide role assigned once onboarding completes.
type ProfileRole string

const (
	ProfileRoleWholesaler ProfileRole = "wholesaler"
	ProfileRoleRetailer   ProfileRole = "retailer"
	ProfileRoleAdmin      ProfileRole = "admin"
	// ProfileRoleApplicant is token-only: a signed-in profile that has not
	// completed onboarding. It is never stored on the profiles table.
	ProfileRoleApplicant ProfileRole = "applicant"
)

var validProfileRoles = []ProfileRole{
	ProfileRoleWholesaler,
	ProfileRoleRetailer,
	ProfileRoleAdmin,
	ProfileRoleApplicant,
}

// String implements fmt.Stringer.
func (p ProfileRole) String() string {
	return string(p)
}

// IsValid reports whether the value is a known ProfileRole.
func (p ProfileRole) IsValid() bool {
	for _, candidate := range validProfileRoles {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParseProfileRole converts raw input into a ProfileRole.
func ParseProfileRole(value string) (ProfileRole, error) {
	for _, candidate := range validProfileRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid profile role %q", value)
}
