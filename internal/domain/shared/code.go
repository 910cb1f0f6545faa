package shared

import (
	"regexp"
	"strings"
)

var codePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]*$`)

// ValidateCode checks a master-data code (company, labor, product, godown, vendor).
// Codes are stored upper-case.
func ValidateCode(code string, maxLen int) (string, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return "", NewDomainError("INVALID_CODE", "Code cannot be empty")
	}
	if len(code) > maxLen {
		return "", NewDomainErrorf("INVALID_CODE", "Code cannot exceed %d characters", maxLen)
	}
	if !codePattern.MatchString(code) {
		return "", NewDomainError("INVALID_CODE", "Code can only contain letters, numbers, underscores and hyphens")
	}
	return strings.ToUpper(code), nil
}

// ValidateName checks a required display name
func ValidateName(name string, maxLen int) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", NewDomainError("INVALID_NAME", "Name cannot be empty")
	}
	if len(name) > maxLen {
		return "", NewDomainErrorf("INVALID_NAME", "Name cannot exceed %d characters", maxLen)
	}
	return name, nil
}

// Status is the common active/inactive lifecycle of master data
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// IsValid reports whether the status is known
func (s Status) IsValid() bool {
	return s == StatusActive || s == StatusInactive
}
