package enums

import "fmt"

// CODFeeType selects how the cash-on-delivery surcharge is computed.
type CODFeeType string

const (
	CODFeeTypeSlab CODFeeType = "slab"
	CODFeeTypeFlat CODFeeType = "flat"
)

var validCODFeeTypes = []CODFeeType{
	CODFeeTypeSlab,
	CODFeeTypeFlat,
}

// String implements fmt.Stringer.
func (c CODFeeType) String() string {
	return string(c)
}

// IsValid reports whether the value is a known CODFeeType.
func (c CODFeeType) IsValid() bool {
	for _, candidate := range validCODFeeTypes {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCODFeeType converts raw input into a CODFeeType.
func ParseCODFeeType(value string) (CODFeeType, error) {
	for _, candidate := range validCODFeeTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid cod fee type %q", value)
}
