package domain

import dErrors "lifelink/pkg/domain-errors"

// BloodType is a domain value for one of the eight ABO/Rh combinations.
//
// Usage: construct via ParseBloodType at trust boundaries to enforce the
// allowlist; direct casting bypasses validation.
type BloodType string

const (
	BloodTypeOPositive  BloodType = "O_positive"
	BloodTypeONegative  BloodType = "O_negative"
	BloodTypeAPositive  BloodType = "A_positive"
	BloodTypeANegative  BloodType = "A_negative"
	BloodTypeBPositive  BloodType = "B_positive"
	BloodTypeBNegative  BloodType = "B_negative"
	BloodTypeABPositive BloodType = "AB_positive"
	BloodTypeABNegative BloodType = "AB_negative"
)

// AllBloodTypes lists every supported blood type in a stable order.
var AllBloodTypes = []BloodType{
	BloodTypeOPositive,
	BloodTypeONegative,
	BloodTypeAPositive,
	BloodTypeANegative,
	BloodTypeBPositive,
	BloodTypeBNegative,
	BloodTypeABPositive,
	BloodTypeABNegative,
}

// validBloodTypes is the single source of truth for valid blood types.
var validBloodTypes = map[BloodType]bool{
	BloodTypeOPositive:  true,
	BloodTypeONegative:  true,
	BloodTypeAPositive:  true,
	BloodTypeANegative:  true,
	BloodTypeBPositive:  true,
	BloodTypeBNegative:  true,
	BloodTypeABPositive: true,
	BloodTypeABNegative: true,
}

// ParseBloodType constructs a BloodType from external input.
//
// Errors: returns CodeInvalidInput when the value is empty or unsupported.
func ParseBloodType(s string) (BloodType, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "blood type cannot be empty")
	}
	bt := BloodType(s)
	if !bt.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid blood type")
	}
	return bt, nil
}

// IsValid checks if the blood type is one of the supported enum values.
func (bt BloodType) IsValid() bool {
	return validBloodTypes[bt]
}

// String returns the string representation of the blood type.
func (bt BloodType) String() string {
	return string(bt)
}

// Display returns the conventional short form, e.g. "O-" or "AB+".
func (bt BloodType) Display() string {
	switch bt {
	case BloodTypeOPositive:
		return "O+"
	case BloodTypeONegative:
		return "O-"
	case BloodTypeAPositive:
		return "A+"
	case BloodTypeANegative:
		return "A-"
	case BloodTypeBPositive:
		return "B+"
	case BloodTypeBNegative:
		return "B-"
	case BloodTypeABPositive:
		return "AB+"
	case BloodTypeABNegative:
		return "AB-"
	}
	return string(bt)
}
