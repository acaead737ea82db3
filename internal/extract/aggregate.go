package extract

import "strings"

// Aggregate flattens per-chunk item lists in chunk-index order and collapses
// duplicates by normalized key, first occurrence winning. The input slices
// are expected to already be ordered by chunk index.
func Aggregate(perChunk [][]Item) []Item {
	seen := make(map[string]bool)
	var out []Item

	for _, items := range perChunk {
		for _, it := range items {
			key := dedupKey(it)
			if key != "" {
				if seen[key] {
					continue
				}
				seen[key] = true
			}
			out = append(out, it)
		}
	}

	return out
}

// dedupKey normalizes the title (lower-cased, trimmed) as the identity of an
// item, falling back to the description when the title is blank. Exact-match
// only; near-duplicates phrased differently are kept.
func dedupKey(it Item) string {
	key := strings.ToLower(strings.TrimSpace(it.Title))
	if key == "" {
		key = strings.ToLower(strings.TrimSpace(it.Description))
	}
	return key
}
