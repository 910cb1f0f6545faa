package shared

import (
	"regexp"
	"strings"
)

var (
	gstinPattern     = regexp.MustCompile(`^[0-9]{2}[A-Z]{5}[0-9]{4}[A-Z][1-9A-Z]Z[0-9A-Z]$`)
	stateCodePattern = regexp.MustCompile(`^[0-9]{2}$`)
)

// NormalizeGSTIN upper-cases and trims a GSTIN
func NormalizeGSTIN(gstin string) string {
	return strings.ToUpper(strings.TrimSpace(gstin))
}

// ValidGSTIN reports whether s is a structurally valid 15-character GSTIN
func ValidGSTIN(s string) bool {
	return gstinPattern.MatchString(NormalizeGSTIN(s))
}

// ValidStateCode reports whether s is a two digit GST state code (01-38, 97, 99)
func ValidStateCode(s string) bool {
	if !stateCodePattern.MatchString(s) {
		return false
	}
	n := int(s[0]-'0')*10 + int(s[1]-'0')
	return (n >= 1 && n <= 38) || n == 97 || n == 99
}

// StateCodeFromGSTIN returns the state code embedded in a GSTIN
func StateCodeFromGSTIN(gstin string) string {
	gstin = NormalizeGSTIN(gstin)
	if len(gstin) < 2 {
		return ""
	}
	return gstin[:2]
}

// ValidateGSTDetails checks an optional GSTIN and a state code together.
// When both are present the GSTIN must belong to the state.
func ValidateGSTDetails(gstin, stateCode string) error {
	if stateCode != "" && !ValidStateCode(stateCode) {
		return NewDomainError("INVALID_STATE_CODE", "State code must be a valid two digit GST state code")
	}
	if gstin == "" {
		return nil
	}
	if !ValidGSTIN(gstin) {
		return NewDomainError("INVALID_GSTIN", "GSTIN format is invalid")
	}
	if stateCode != "" && StateCodeFromGSTIN(gstin) != stateCode {
		return NewDomainError("INVALID_GSTIN", "GSTIN does not belong to the given state")
	}
	return nil
}
