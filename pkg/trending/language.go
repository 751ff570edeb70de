package trending

import (
	"strings"

	"github.com/matzehuels/trendtower/pkg/errors"
)

// curated is the supported language list, in catalog order. Matches the
// set of trending pages worth exposing; noisy or dead pages are left out.
var curated = []string{
	"python",
	"javascript",
	"typescript",
	"go",
	"java",
	"c",
	"c++",
	"c#",
	"rust",
	"ruby",
	"php",
	"swift",
	"kotlin",
	"scala",
	"dart",
	"css",
	"shell",
	"haskell",
	"elixir",
	"clojure",
	"r",
	"perl",
	"objective-c",
}

// aliases maps common spellings to canonical ids.
var aliases = map[string]string{
	"cpp":        "c++",
	"c++11":      "c++",
	"csharp":     "c#",
	"golang":     "go",
	"js":         "javascript",
	"node":       "javascript",
	"ts":         "typescript",
	"py":         "python",
	"rb":         "ruby",
	"bash":       "shell",
	"sh":         "shell",
	"zsh":        "shell",
	"objc":       "objective-c",
	"objectivec": "objective-c",
	"rlang":      "r",
}

// displayNames fixes up ids whose display form is not simple title case.
var displayNames = map[string]string{
	"c++":         "C++",
	"c#":          "C#",
	"css":         "CSS",
	"javascript":  "JavaScript",
	"typescript":  "TypeScript",
	"php":         "PHP",
	"r":           "R",
	"objective-c": "Objective-C",
}

var curatedSet = func() map[string]bool {
	m := make(map[string]bool, len(curated))
	for _, id := range curated {
		m[id] = true
	}
	return m
}()

// LanguageInfo describes one catalog entry.
type LanguageInfo struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// Catalog is the static language metadata returned by ListLanguages.
type Catalog struct {
	Languages        []LanguageInfo `json:"languages"`
	Default          string         `json:"default"`
	DefaultLimit     int            `json:"default_limit"`
	DefaultTimeframe Timeframe      `json:"default_timeframe"`
}

// Languages returns the full catalog, with the "all" sentinel first.
// The catalog is immutable after startup.
func Languages() Catalog {
	infos := make([]LanguageInfo, 0, len(curated)+1)
	infos = append(infos, LanguageInfo{ID: AllLanguagesLabel, DisplayName: "All languages"})
	for _, id := range curated {
		infos = append(infos, LanguageInfo{ID: id, DisplayName: DisplayName(id)})
	}
	return Catalog{
		Languages:        infos,
		Default:          AllLanguagesLabel,
		DefaultLimit:     DefaultLimit,
		DefaultTimeframe: DefaultTimeframe,
	}
}

// DisplayName returns the human-readable name for a canonical id.
func DisplayName(id string) string {
	if name, ok := displayNames[id]; ok {
		return name
	}
	if id == AllLanguages || id == AllLanguagesLabel {
		return "All languages"
	}
	return strings.ToUpper(id[:1]) + id[1:]
}

// CanonicalLanguage resolves a raw language string to its canonical id.
// Case is folded and aliases are applied. The "all" spelling (and the
// empty string) resolve to the AllLanguages sentinel.
func CanonicalLanguage(raw string) (string, error) {
	token := normalizeToken(raw)
	if token == "" || token == AllLanguagesLabel {
		return AllLanguages, nil
	}
	if err := errors.ValidateLanguageID(token); err != nil {
		return "", err
	}
	if canonical, ok := aliases[token]; ok {
		token = canonical
	}
	if !curatedSet[token] {
		return "", errors.New(errors.ErrCodeInvalidLanguage,
			"language %q is not in the curated supported list", raw)
	}
	return token, nil
}

func normalizeToken(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}
