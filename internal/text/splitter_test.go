package text

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildParagraphs produces deterministic, numbered prose with paragraph
// breaks every ~55 bytes.
func buildParagraphs(n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "Paragraph %03d has one sentence. It also has another.\n\n", i)
	}
	return b.String()
}

func TestSplit_SingleChunk(t *testing.T) {
	text := "A short document that fits in one chunk."
	chunks := Split(text, 1000, 50)

	require.Len(t, chunks, 1)
	assert.Equal(t, text, chunks[0].Text)
	assert.Equal(t, 0, chunks[0].Index)
	assert.True(t, chunks[0].IsFirst)
	assert.True(t, chunks[0].IsLast)
}

func TestSplit_EmptyInput(t *testing.T) {
	assert.Nil(t, Split("", 100, 10))
}

func TestSplit_IndexAndFraming(t *testing.T) {
	text := buildParagraphs(20)
	chunks := Split(text, 200, 20)

	require.Greater(t, len(chunks), 2)
	for i, c := range chunks {
		assert.Equal(t, i, c.Index)
		assert.NotEmpty(t, c.Text)
		assert.Equal(t, i == 0, c.IsFirst)
		assert.Equal(t, i == len(chunks)-1, c.IsLast)
	}
}

func TestSplit_ChunkSizeBudget(t *testing.T) {
	text := buildParagraphs(40)
	chunks := Split(text, 150, 30)

	require.Greater(t, len(chunks), 1)
	for _, c := range chunks {
		assert.LessOrEqual(t, len(c.Text), 150, "chunk %d exceeds size budget", c.Index)
	}
}

func TestSplit_RoundTrip(t *testing.T) {
	// Paragraphs are ~55 bytes and the chunk budget is well above the
	// overlap, so every advance applies the full overlap and the original
	// text is chunk 0 plus each later chunk minus its overlap prefix.
	text := buildParagraphs(30)
	overlap := 20
	chunks := Split(text, 120, overlap)
	require.Greater(t, len(chunks), 2)

	var b strings.Builder
	b.WriteString(chunks[0].Text)
	for _, c := range chunks[1:] {
		require.Greater(t, len(c.Text), overlap)
		b.WriteString(c.Text[overlap:])
	}

	assert.Equal(t, text, b.String())
}

func TestSplit_OverlapSharedWithPreviousChunk(t *testing.T) {
	text := buildParagraphs(30)
	overlap := 20
	chunks := Split(text, 120, overlap)
	require.Greater(t, len(chunks), 1)

	for i := 1; i < len(chunks); i++ {
		prefix := chunks[i].Text[:overlap]
		assert.True(t, strings.HasSuffix(chunks[i-1].Text, prefix),
			"chunk %d does not share its prefix with chunk %d", i, i-1)
	}
}

func TestSplit_NoWordSplitAtBoundaries(t *testing.T) {
	// Sentences only, no paragraph breaks, so the sentence fallback decides
	// every cut. With zero overlap the cut points are the cumulative chunk
	// lengths.
	var b strings.Builder
	for i := 0; i < 60; i++ {
		fmt.Fprintf(&b, "Sentence number %d ends here. ", i)
	}
	text := strings.TrimRight(b.String(), " ")

	chunks := Split(text, 100, 0)
	require.Greater(t, len(chunks), 1)

	isAlnum := func(c byte) bool {
		return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
	}

	cut := 0
	for _, c := range chunks[:len(chunks)-1] {
		cut += len(c.Text)
		assert.False(t, isAlnum(text[cut-1]) && isAlnum(text[cut]),
			"word split at byte %d: %q|%q", cut, text[cut-1:cut], text[cut:cut+1])
	}
}

func TestSplit_HardCapFallback(t *testing.T) {
	// Pathological input with no boundary candidates at all.
	text := strings.Repeat("a", 950)
	chunks := Split(text, 100, 0)

	require.Len(t, chunks, 10)
	for i, c := range chunks {
		if i < len(chunks)-1 {
			assert.Len(t, c.Text, 100)
		}
	}
	assert.Equal(t, text, strings.Join(collectTexts(chunks), ""))
}

func TestSplit_ExcessiveOverlapStillTerminates(t *testing.T) {
	// Overlap nearly as large as the chunk itself: the cursor guard must
	// force progress instead of looping.
	text := strings.Repeat("b", 500)
	chunks := Split(text, 10, 9)

	require.NotEmpty(t, chunks)
	assert.LessOrEqual(t, len(chunks), 500)
	last := chunks[len(chunks)-1]
	assert.True(t, strings.HasSuffix(text, last.Text))
}

func TestSplit_PrefersParagraphBreakOverSentence(t *testing.T) {
	para1 := strings.Repeat("x", 60) + ". Also more words here"
	para2 := strings.Repeat("y", 100)
	text := para1 + "\n\n" + para2

	chunks := Split(text, 100, 0)
	require.Greater(t, len(chunks), 1)
	assert.Equal(t, para1+"\n\n", chunks[0].Text)
}

func collectTexts(chunks []Chunk) []string {
	out := make([]string, len(chunks))
	for i, c := range chunks {
		out[i] = c.Text
	}
	return out
}
