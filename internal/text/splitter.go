package text

// Chunk is a contiguous, size-bounded slice of a source document.
// Index is the ordinal position in the original document; IsFirst/IsLast
// mark the document framing so downstream prompts can say "chunk i of N".
type Chunk struct {
	Index   int
	Text    string
	IsFirst bool
	IsLast  bool
}

// boundaryWindow is how far back from a hard cut point we look for a natural
// boundary before giving up and cutting mid-text.
const boundaryWindow = 200

// Split cuts a document into chunks of at most size bytes, preferring to cut
// at a paragraph break, then at a sentence end, and only then at the hard
// size cap. Consecutive chunks share overlap bytes of context. The cursor
// always advances, so Split terminates on any input and never errors.
func Split(text string, size, overlap int) []Chunk {
	if text == "" || size <= 0 {
		return nil
	}

	if len(text) <= size {
		return []Chunk{{Index: 0, Text: text, IsFirst: true, IsLast: true}}
	}

	var chunks []Chunk
	cursor := 0

	for cursor < len(text) {
		end := cursor + size
		if end >= len(text) {
			chunks = append(chunks, Chunk{Text: text[cursor:]})
			break
		}

		cut := findBoundary(text, cursor, end)
		chunks = append(chunks, Chunk{Text: text[cursor:cut]})

		// Step back by the overlap so the next chunk keeps a short context
		// window, but never at or below the previous cursor.
		next := cut - overlap
		if next <= cursor {
			next = cut
		}
		cursor = next
	}

	for i := range chunks {
		chunks[i].Index = i
	}
	chunks[0].IsFirst = true
	chunks[len(chunks)-1].IsLast = true

	return chunks
}

// findBoundary returns the cut point for a chunk spanning [start, end).
// It searches the last boundaryWindow bytes of the window for a paragraph
// break, then for a sentence end, and falls back to the hard cap at end.
func findBoundary(text string, start, end int) int {
	winStart := end - boundaryWindow
	if winStart <= start {
		winStart = start + 1
	}

	// Paragraph break: cut just after the blank line.
	for i := end - 2; i >= winStart; i-- {
		if text[i] == '\n' && text[i+1] == '\n' {
			return i + 2
		}
	}

	// Sentence end: terminal punctuation, whitespace, then a capital letter.
	for i := end - 1; i >= winStart; i-- {
		if !isSentenceEnd(text[i]) {
			continue
		}
		j := i + 1
		if j >= len(text) || !isSpace(text[j]) {
			continue
		}
		for j < len(text) && isSpace(text[j]) {
			j++
		}
		if j < len(text) && text[j] >= 'A' && text[j] <= 'Z' {
			return i + 1
		}
	}

	return end
}

func isSentenceEnd(c byte) bool {
	return c == '.' || c == '!' || c == '?'
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
