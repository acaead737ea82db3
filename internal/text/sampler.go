package text

import "sort"

// Sample reduces an oversized chunk list to at most max chunks while keeping
// the document framing: the first and last chunk are always retained, and the
// interior is sampled at even index intervals so the whole document is
// represented, not just its prefix. Relative order is preserved.
func Sample(chunks []Chunk, max int) []Chunk {
	if max <= 0 {
		return nil
	}
	if len(chunks) <= max {
		return chunks
	}
	if max == 1 {
		return []Chunk{chunks[0]}
	}

	selected := make([]Chunk, 0, max)
	selected = append(selected, chunks[0])

	interior := len(chunks) - 2
	step := interior / (max - 1)
	if step < 1 {
		step = 1
	}

	for i := 1; i <= max-2; i++ {
		idx := i * step
		if idx < 1 {
			idx = 1
		}
		if idx > interior {
			idx = interior
		}
		selected = append(selected, chunks[idx])
	}

	selected = append(selected, chunks[len(chunks)-1])

	sort.Slice(selected, func(a, b int) bool {
		return selected[a].Index < selected[b].Index
	})

	return selected
}
