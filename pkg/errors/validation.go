package errors

import (
	"strings"
	"unicode"
)

// maxProjectNameLength bounds project names shown in listings.
const maxProjectNameLength = 200

// ValidateProjectID validates a project identifier for safety.
// Project IDs become file names in the file store and key suffixes in the
// Redis store, so they are restricted to a conservative character set:
//   - No empty IDs
//   - Maximum length of 64 characters
//   - Only ASCII letters, digits, '-' and '_'
func ValidateProjectID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "project id cannot be empty")
	}
	if len(id) > 64 {
		return New(ErrCodeInvalidInput, "project id too long (max 64 characters)")
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return New(ErrCodeInvalidInput, "project id contains invalid character %q", r)
		}
	}
	return nil
}

// ValidateProjectName validates a human-readable project name.
// Names may be empty (the store falls back to the ID) but must not contain
// control characters or exceed the display limit.
func ValidateProjectName(name string) error {
	if len(name) > maxProjectNameLength {
		return New(ErrCodeInvalidInput, "project name too long (max %d characters)", maxProjectNameLength)
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "project name contains invalid control characters")
		}
	}
	if strings.TrimSpace(name) != name {
		return New(ErrCodeInvalidInput, "project name has leading or trailing whitespace")
	}
	return nil
}
