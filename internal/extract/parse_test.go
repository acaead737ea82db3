package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseItems(t *testing.T) {
	t.Run("Bare Array", func(t *testing.T) {
		raw := `[{"title":"Login","description":"Users can log in","category":"auth","priority":"high"}]`
		items, err := ParseItems(raw)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "Login", items[0].Title)
		assert.Equal(t, "high", items[0].Priority)
	})

	t.Run("Array Wrapped In Prose", func(t *testing.T) {
		raw := "Sure! Here are the requirements I found:\n\n" +
			`[{"title":"Export","description":"Export to CSV","category":"reporting","priority":"low"},` +
			`{"title":"Audit","description":"Audit trail","category":"compliance","priority":"medium"}]` +
			"\n\nLet me know if you need more."
		items, err := ParseItems(raw)
		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, "Export", items[0].Title)
		assert.Equal(t, "Audit", items[1].Title)
	})

	t.Run("Array In Markdown Fence", func(t *testing.T) {
		raw := "```json\n[{\"title\":\"Search\",\"description\":\"Full text search\",\"category\":\"core\",\"priority\":\"high\"}]\n```"
		items, err := ParseItems(raw)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "Search", items[0].Title)
	})

	t.Run("Empty Response", func(t *testing.T) {
		_, err := ParseItems("   \n ")
		assert.Error(t, err)
	})

	t.Run("No JSON At All", func(t *testing.T) {
		_, err := ParseItems("I could not find any requirements in this text.")
		assert.Error(t, err)
	})

	t.Run("Object Instead Of Array", func(t *testing.T) {
		_, err := ParseItems(`{"title":"Not a list"}`)
		assert.Error(t, err)
	})

	t.Run("Empty Array", func(t *testing.T) {
		items, err := ParseItems("[]")
		require.NoError(t, err)
		assert.Empty(t, items)
	})
}
