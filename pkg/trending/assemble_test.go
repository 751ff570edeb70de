package trending

import "testing"

func TestPlanRedistributesShortfall(t *testing.T) {
	// A's listing has only 3 rows, B's has 20; limit 10 with quotas 5/5
	// must yield 3 A-entries and 7 B-entries.
	order := []string{"a", "b"}
	supply := map[string]int{"a": 3, "b": 20}
	quotas := map[string]int{"a": 5, "b": 5}

	take := Plan(order, supply, quotas, 10)

	if take["a"] != 3 {
		t.Errorf("take[a] = %d, want 3", take["a"])
	}
	if take["b"] != 7 {
		t.Errorf("take[b] = %d, want 7", take["b"])
	}
}

func TestPlanRoundRobinOrder(t *testing.T) {
	// c under-delivers by two; the shortfall goes round-robin in
	// original order to the languages that still have supply.
	order := []string{"a", "b", "c"}
	supply := map[string]int{"a": 10, "b": 10, "c": 1}
	quotas := map[string]int{"a": 4, "b": 3, "c": 3}

	take := Plan(order, supply, quotas, 10)

	if take["a"] != 5 || take["b"] != 4 || take["c"] != 1 {
		t.Errorf("take = %v, want a:5 b:4 c:1", take)
	}
}

func TestPlanShortTotalIsNotAnError(t *testing.T) {
	order := []string{"a", "b"}
	supply := map[string]int{"a": 2, "b": 1}
	quotas := map[string]int{"a": 5, "b": 5}

	take := Plan(order, supply, quotas, 10)

	if take["a"] != 2 || take["b"] != 1 {
		t.Errorf("take = %v, want everything available", take)
	}
}

func TestPlanNeverExceedsQuotaWithoutShortfall(t *testing.T) {
	order := []string{"a", "b"}
	supply := map[string]int{"a": 20, "b": 20}
	quotas := map[string]int{"a": 5, "b": 5}

	take := Plan(order, supply, quotas, 10)

	if take["a"] != 5 || take["b"] != 5 {
		t.Errorf("take = %v, want quotas honored exactly", take)
	}
}

func TestPlanFailedLanguageContributesNothing(t *testing.T) {
	// A language whose listing failed has no supply entry; its quota is
	// redistributed to the surviving language.
	order := []string{"a", "b"}
	supply := map[string]int{"b": 20}
	quotas := map[string]int{"a": 5, "b": 5}

	take := Plan(order, supply, quotas, 10)

	if take["a"] != 0 {
		t.Errorf("take[a] = %d, want 0", take["a"])
	}
	if take["b"] != 10 {
		t.Errorf("take[b] = %d, want 10", take["b"])
	}
}

func makeEntries(language string, n int) []Entry {
	entries := make([]Entry, n)
	for i := range entries {
		entries[i] = Entry{
			FullName: language + "/repo",
			Language: language,
			Rank:     i + 1,
		}
	}
	return entries
}

func TestAssembleGroupsInRequestOrder(t *testing.T) {
	order := []string{"go", "rust"}
	groups := map[string][]Entry{
		"go":   makeEntries("go", 2),
		"rust": makeEntries("rust", 2),
	}

	entries := Assemble(order, groups, 10)

	if len(entries) != 4 {
		t.Fatalf("len = %d, want 4", len(entries))
	}
	wantLangs := []string{"go", "go", "rust", "rust"}
	wantRanks := []int{1, 2, 1, 2}
	for i, entry := range entries {
		if entry.Language != wantLangs[i] {
			t.Errorf("entries[%d].Language = %q, want %q", i, entry.Language, wantLangs[i])
		}
		if entry.Rank != wantRanks[i] {
			t.Errorf("entries[%d].Rank = %d, want %d", i, entry.Rank, wantRanks[i])
		}
	}
}

func TestAssembleCapsAtLimit(t *testing.T) {
	order := []string{"go", "rust"}
	groups := map[string][]Entry{
		"go":   makeEntries("go", 3),
		"rust": makeEntries("rust", 3),
	}

	entries := Assemble(order, groups, 4)

	if len(entries) != 4 {
		t.Fatalf("len = %d, want 4", len(entries))
	}
	if entries[3].Language != "rust" || entries[3].Rank != 1 {
		t.Errorf("entries[3] = %+v, want first rust entry", entries[3])
	}
}
