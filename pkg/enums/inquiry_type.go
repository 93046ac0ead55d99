package enums

import "fmt"

// InquiryType names the two parties of a support inquiry thread.
type InquiryType string

const (
	InquiryTypeWholesalerToAdmin    InquiryType = "wholesaler_to_admin"
	InquiryTypeRetailerToWholesaler InquiryType = "retailer_to_wholesaler"
	InquiryTypeRetailerToAdmin      InquiryType = "retailer_to_admin"
)

var validInquiryTypes = []InquiryType{
	InquiryTypeWholesalerToAdmin,
	InquiryTypeRetailerToWholesaler,
	InquiryTypeRetailerToAdmin,
}

// String implements fmt.Stringer.
func (i InquiryType) String() string {
	return string(i)
}

// IsValid reports whether the value is a known InquiryType.
func (i InquiryType) IsValid() bool {
	for _, candidate := range validInquiryTypes {
		if candidate == i {
			return true
		}
	}
	return false
}

// TargetsAdmin reports whether the inquiry is answered by platform admins.
func (i InquiryType) TargetsAdmin() bool {
	return i == InquiryTypeWholesalerToAdmin || i == InquiryTypeRetailerToAdmin
}

// ParseInquiryType converts raw input into an InquiryType.
func ParseInquiryType(value string) (InquiryType, error) {
	for _, candidate := range validInquiryTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid inquiry type %q", value)
}
