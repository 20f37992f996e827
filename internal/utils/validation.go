package utils

import (
	"net/mail"
	"regexp"
	"strings"
)

var (
	mobilePattern  = regexp.MustCompile(`^\d{10}$`)
	pincodePattern = regexp.MustCompile(`^\d{6}$`)
)

// ValidateMobile checks for exactly ten ASCII digits.
func ValidateMobile(mobile string) error {
	if !mobilePattern.MatchString(mobile) {
		return NewValidationError("mobile", "Enter valid 10 digit mobile number")
	}
	return nil
}

// ValidateEmail validates an email address
func ValidateEmail(email string) error {
	if strings.TrimSpace(email) == "" {
		return NewValidationError("email", "email is required")
	}

	if _, err := mail.ParseAddress(email); err != nil {
		return NewValidationError("email", "invalid email format")
	}

	return nil
}

// ValidateRequired validates that a string is not blank
func ValidateRequired(value, fieldName string) error {
	if strings.TrimSpace(value) == "" {
		return NewValidationError(fieldName, fieldName+" is required")
	}
	return nil
}

// ValidatePincode validates an Indian postal code
func ValidatePincode(pincode string) error {
	if err := ValidateRequired(pincode, "pincode"); err != nil {
		return err
	}
	if !pincodePattern.MatchString(pincode) {
		return NewValidationError("pincode", "pincode must be 6 digits")
	}
	return nil
}

// ValidateOneOf validates that value is one of the allowed choices
func ValidateOneOf(value, fieldName string, allowed ...string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return NewValidationError(fieldName, fieldName+" must be one of "+strings.Join(allowed, ", "))
}

// MaskMobile renders a mobile number the way the OTP screen shows it.
func MaskMobile(mobile string) string {
	if len(mobile) < 5 {
		return "XXXXXXXXXX"
	}
	return "+91 " + mobile[:2] + "XXXXXX" + mobile[len(mobile)-3:]
}

// RedactToken keeps only enough of a token to correlate log lines.
func RedactToken(token string) string {
	if token == "" {
		return ""
	}
	if len(token) <= 8 {
		return "[REDACTED]"
	}
	return token[:4] + "…[REDACTED]"
}
