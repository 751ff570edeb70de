package trending

// Plan decides how many listing rows each language contributes to the
// final result. It is pure: supply maps each language to the number of
// rows its listing page delivered, quotas comes from Allocate, and the
// returned take counts never exceed supply.
//
// Languages that under-deliver leave a shortfall. The shortfall is
// redistributed round-robin, in original language order, to languages
// that still have unexhausted listing supply, until the limit is met or
// supply runs out everywhere. A short total is not an error; the caller
// simply gets everything available.
func Plan(order []string, supply map[string]int, quotas map[string]int, limit int) map[string]int {
	take := make(map[string]int, len(order))
	total := 0
	for _, language := range order {
		n := min(quotas[language], supply[language])
		take[language] = n
		total += n
	}

	shortfall := limit - total
	for shortfall > 0 {
		progress := false
		for _, language := range order {
			if shortfall == 0 {
				break
			}
			if supply[language] > take[language] {
				take[language]++
				shortfall--
				progress = true
			}
		}
		if !progress {
			break
		}
	}
	return take
}

// Assemble concatenates per-language entry groups into the final ordered
// output: grouped by language in request order, each group rank-ascending,
// capped at limit. Groups are never re-sorted by stars or forks.
func Assemble(order []string, groups map[string][]Entry, limit int) []Entry {
	entries := make([]Entry, 0, limit)
	for _, language := range order {
		for _, entry := range groups[language] {
			if len(entries) == limit {
				return entries
			}
			entries = append(entries, entry)
		}
	}
	return entries
}
