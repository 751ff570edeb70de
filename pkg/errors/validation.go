package errors

import (
	"strings"
	"unicode"
)

// ValidateLanguageID validates a raw language identifier for safety before
// it is resolved against the curated catalog. It rejects values that could
// be used for path traversal when interpolated into a trending page URL.
//
// The validation rules are intentionally conservative:
//   - No empty identifiers
//   - No control characters
//   - No path separators or traversal sequences
//   - Maximum length of 64 characters
//
// Catalog membership is checked separately by the trending package.
func ValidateLanguageID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidLanguage, "language identifier cannot be empty")
	}

	if len(id) > 64 {
		return New(ErrCodeInvalidLanguage, "language identifier too long (max 64 characters)")
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidLanguage, "language identifier contains control characters")
		}
	}

	dangerousPatterns := []string{
		"..",   // Parent directory
		"/",    // Path separator
		"\\",   // Backslash (Windows path)
		"\x00", // Null byte
		"?",    // Query injection
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(id, pattern) {
			return New(ErrCodeInvalidLanguage, "language identifier contains invalid characters: %q", pattern)
		}
	}

	return nil
}

// ValidateRepoFullName validates an "owner/repo" pair before it is used in
// an API path. The rules mirror ValidateLanguageID but allow exactly one
// path separator between owner and name.
func ValidateRepoFullName(fullName string) error {
	if fullName == "" {
		return New(ErrCodeInvalidInput, "repository name cannot be empty")
	}

	if len(fullName) > 256 {
		return New(ErrCodeInvalidInput, "repository name too long (max 256 characters)")
	}

	parts := strings.Split(fullName, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return New(ErrCodeInvalidInput, "repository name must be of the form owner/repo")
	}

	for _, r := range fullName {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "repository name contains control characters")
		}
	}

	if strings.Contains(fullName, "..") {
		return New(ErrCodeInvalidInput, "repository name contains invalid characters: %q", "..")
	}

	return nil
}
