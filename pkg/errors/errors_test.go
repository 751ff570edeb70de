package errors

import (
	"errors"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInvalidLanguage, "unknown language: %s", "fortran77")

	if err.Code != ErrCodeInvalidLanguage {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInvalidLanguage)
	}

	if err.Message != "unknown language: fortran77" {
		t.Errorf("Message = %v, want %v", err.Message, "unknown language: fortran77")
	}

	expected := "INVALID_LANGUAGE: unknown language: fortran77"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeSourceUnavailable, cause, "fetch trending page")

	if err.Code != ErrCodeSourceUnavailable {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeSourceUnavailable)
	}

	if err.Cause != cause {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}

	if unwrapped := errors.Unwrap(err); unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}

	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     Code
		expected bool
	}{
		{
			name:     "matching code",
			err:      New(ErrCodeInvalidLimit, "test"),
			code:     ErrCodeInvalidLimit,
			expected: true,
		},
		{
			name:     "non-matching code",
			err:      New(ErrCodeInvalidLimit, "test"),
			code:     ErrCodeNetwork,
			expected: false,
		},
		{
			name:     "wrapped error",
			err:      Wrap(ErrCodeNetwork, New(ErrCodeInvalidLimit, "inner"), "outer"),
			code:     ErrCodeNetwork,
			expected: true,
		},
		{
			name:     "non-Error type",
			err:      errors.New("plain error"),
			code:     ErrCodeInvalidLimit,
			expected: false,
		},
		{
			name:     "nil error",
			err:      nil,
			code:     ErrCodeInvalidLimit,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.expected {
				t.Errorf("Is() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGetCode(t *testing.T) {
	if got := GetCode(New(ErrCodeRateLimited, "quota spent")); got != ErrCodeRateLimited {
		t.Errorf("GetCode() = %v, want %v", got, ErrCodeRateLimited)
	}
	if got := GetCode(errors.New("plain")); got != Code("") {
		t.Errorf("GetCode() = %v, want empty", got)
	}
}

func TestUserMessage(t *testing.T) {
	err := New(ErrCodeInvalidTimeframe, "timeframe must be daily, weekly or monthly")
	if got := UserMessage(err); got != "timeframe must be daily, weekly or monthly" {
		t.Errorf("UserMessage() = %q", got)
	}
	plain := errors.New("plain error")
	if got := UserMessage(plain); got != "plain error" {
		t.Errorf("UserMessage() = %q", got)
	}
}

func TestIsValidation(t *testing.T) {
	if !IsValidation(New(ErrCodeInvalidLanguage, "bad")) {
		t.Error("IsValidation(INVALID_LANGUAGE) = false, want true")
	}
	if !IsValidation(New(ErrCodeInvalidInterval, "bad")) {
		t.Error("IsValidation(INVALID_INTERVAL) = false, want true")
	}
	if IsValidation(New(ErrCodeSourceUnavailable, "down")) {
		t.Error("IsValidation(SOURCE_UNAVAILABLE) = true, want false")
	}
	if IsValidation(errors.New("plain")) {
		t.Error("IsValidation(plain) = true, want false")
	}
}

func TestRateLimitedError(t *testing.T) {
	e := &RateLimitedError{RetryAfter: 30}
	if e.Error() != "rate limited: retry after 30 seconds" {
		t.Errorf("Error() = %q", e.Error())
	}
	if e.Code() != ErrCodeRateLimited {
		t.Errorf("Code() = %v, want %v", e.Code(), ErrCodeRateLimited)
	}

	none := &RateLimitedError{}
	if none.Error() != "rate limited" {
		t.Errorf("Error() = %q", none.Error())
	}
}

func TestValidateLanguageID(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		wantErr bool
	}{
		{"simple", "python", false},
		{"plus signs", "c++", false},
		{"sharp", "c#", false},
		{"hyphenated", "objective-c", false},
		{"empty", "", true},
		{"path traversal", "../admin", true},
		{"separator", "python/extra", true},
		{"query injection", "go?since=evil", true},
		{"control character", "go\x01", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateLanguageID(tt.id)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateLanguageID(%q) error = %v, wantErr %v", tt.id, err, tt.wantErr)
			}
		})
	}
}

func TestValidateRepoFullName(t *testing.T) {
	tests := []struct {
		name     string
		fullName string
		wantErr  bool
	}{
		{"simple", "golang/go", false},
		{"dotted", "dotnet/runtime.js", false},
		{"empty", "", true},
		{"no separator", "golang", true},
		{"too many parts", "a/b/c", true},
		{"empty owner", "/repo", true},
		{"traversal", "../x/repo", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRepoFullName(tt.fullName)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateRepoFullName(%q) error = %v, wantErr %v", tt.fullName, err, tt.wantErr)
			}
		})
	}
}
