package trending

import (
	"testing"

	"github.com/matzehuels/trendtower/pkg/errors"
)

func TestCanonicalLanguage(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"exact id", "go", "go"},
		{"case folded", "Python", "python"},
		{"surrounding whitespace", "  rust  ", "rust"},
		{"alias golang", "golang", "go"},
		{"alias cpp", "cpp", "c++"},
		{"alias csharp", "CSharp", "c#"},
		{"alias js", "js", "javascript"},
		{"alias node", "node", "javascript"},
		{"alias bash", "bash", "shell"},
		{"alias objc", "objc", "objective-c"},
		{"alias rlang", "rlang", "r"},
		{"all sentinel", "all", AllLanguages},
		{"all case folded", "ALL", AllLanguages},
		{"empty string", "", AllLanguages},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CanonicalLanguage(tt.input)
			if err != nil {
				t.Fatalf("CanonicalLanguage(%q) error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("CanonicalLanguage(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestCanonicalLanguageRejectsUnknown(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"not curated", "brainfuck"},
		{"typo", "pyton"},
		{"path traversal", "../etc"},
		{"slash", "c/c++"},
		{"query char", "go?since=evil"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CanonicalLanguage(tt.input)
			if err == nil {
				t.Fatalf("CanonicalLanguage(%q) succeeded, want error", tt.input)
			}
			code := errors.GetCode(err)
			if code != errors.ErrCodeInvalidLanguage && code != errors.ErrCodeInvalidInput {
				t.Errorf("error code = %v, want INVALID_LANGUAGE or INVALID_INPUT", code)
			}
		})
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		id   string
		want string
	}{
		{"go", "Go"},
		{"python", "Python"},
		{"c++", "C++"},
		{"c#", "C#"},
		{"javascript", "JavaScript"},
		{"css", "CSS"},
		{"objective-c", "Objective-C"},
		{AllLanguagesLabel, "All languages"},
	}

	for _, tt := range tests {
		if got := DisplayName(tt.id); got != tt.want {
			t.Errorf("DisplayName(%q) = %q, want %q", tt.id, got, tt.want)
		}
	}
}

func TestLanguagesCatalog(t *testing.T) {
	catalog := Languages()

	if len(catalog.Languages) != len(curated)+1 {
		t.Fatalf("catalog has %d entries, want %d", len(catalog.Languages), len(curated)+1)
	}
	if catalog.Languages[0].ID != AllLanguagesLabel {
		t.Errorf("first entry = %q, want the all sentinel", catalog.Languages[0].ID)
	}
	if catalog.Default != AllLanguagesLabel {
		t.Errorf("Default = %q, want %q", catalog.Default, AllLanguagesLabel)
	}
	if catalog.DefaultLimit != DefaultLimit {
		t.Errorf("DefaultLimit = %d, want %d", catalog.DefaultLimit, DefaultLimit)
	}
	if catalog.DefaultTimeframe != DefaultTimeframe {
		t.Errorf("DefaultTimeframe = %q, want %q", catalog.DefaultTimeframe, DefaultTimeframe)
	}

	// Every canonical id must round-trip through CanonicalLanguage.
	for _, info := range catalog.Languages[1:] {
		got, err := CanonicalLanguage(info.ID)
		if err != nil {
			t.Errorf("CanonicalLanguage(%q) error: %v", info.ID, err)
			continue
		}
		if got != info.ID {
			t.Errorf("CanonicalLanguage(%q) = %q, want identity", info.ID, got)
		}
		if info.DisplayName == "" {
			t.Errorf("catalog entry %q has empty display name", info.ID)
		}
	}
}

func TestLanguagesCatalogIsACopy(t *testing.T) {
	first := Languages()
	first.Languages[0].ID = "mutated"

	second := Languages()
	if second.Languages[0].ID != AllLanguagesLabel {
		t.Errorf("catalog mutated across calls: first entry = %q", second.Languages[0].ID)
	}
}
