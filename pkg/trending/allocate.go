package trending

import "fmt"

// Allocate splits a total limit into per-language quotas.
//
// With no languages (the unfiltered pull) the whole limit maps to the
// AllLanguages sentinel. Otherwise every language receives
// floor(limit/N), and the first limit%N languages in caller order
// receive one extra unit, so quotas always sum to exactly limit.
// Caller order is part of the contract, not incidental: remainder
// placement and the final group order both follow it.
//
// When limit < N, trailing languages receive quota 0 and are excluded
// from the fetch step entirely.
func Allocate(limit int, languages []string) map[string]int {
	assertAllocatable(limit, len(languages))

	if len(languages) == 0 {
		return map[string]int{AllLanguages: limit}
	}

	base := limit / len(languages)
	remainder := limit % len(languages)

	quotas := make(map[string]int, len(languages))
	for i, language := range languages {
		quota := base
		if i < remainder {
			quota++
		}
		quotas[language] = quota
	}
	return quotas
}

// assertAllocatable enforces the protective ceiling. Requests are bounded
// to MaxLimit at validation, so per-language quotas can never exceed
// MaxLimit; a violation here means a caller bypassed NewRequest.
func assertAllocatable(limit, languageCount int) {
	if limit < 1 {
		panic(fmt.Sprintf("trending: allocate called with non-positive limit %d", limit))
	}
	ceiling := MaxLimit
	if languageCount > 1 {
		ceiling = MaxLimit * languageCount
	}
	if limit > ceiling {
		panic(fmt.Sprintf("trending: allocation of %d exceeds protective ceiling %d", limit, ceiling))
	}
}
