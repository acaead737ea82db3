package extract

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// Models often wrap the JSON array in prose or a markdown fence, so we first
// try to locate an array inside the raw response before trusting the whole
// string to be JSON.
var jsonArrayRe = regexp.MustCompile(`(?s)\[.*\]`)

// ParseItems applies the two-stage tolerant parse to a raw model response:
// pattern-match a JSON array out of the text, then fall back to parsing the
// entire response. An error here is recoverable at chunk granularity.
func ParseItems(raw string) ([]Item, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("empty response")
	}

	if match := jsonArrayRe.FindString(raw); match != "" {
		var items []Item
		if err := json.Unmarshal([]byte(match), &items); err == nil {
			return items, nil
		}
	}

	var items []Item
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("no parsable item array in response: %w", err)
	}
	return items, nil
}
