package extract

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"reqtrack/backend/internal/text"
)

// Generator is the external structured-extraction service: prompt in, raw
// (usually JSON-ish) text out. May fail or return prose-wrapped output.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Client performs one extraction call per chunk and parses the response
// tolerantly. A malformed response yields zero items and an error the
// pipeline absorbs; it must never fail the whole job.
type Client struct {
	gen Generator
}

func NewClient(gen Generator) *Client {
	return &Client{gen: gen}
}

// ExtractChunk asks the external service for at least targetItems requirements
// from one chunk. position and total describe the chunk's place in the
// sampled sequence ("chunk i of N") so the model knows the framing.
func (c *Client) ExtractChunk(ctx context.Context, chunk text.Chunk, doc DocumentContext, position, total, targetItems int) ([]Item, error) {
	if targetItems < 2 {
		targetItems = 2
	}

	prompt := buildPrompt(chunk, doc, position, total, targetItems)

	raw, err := c.gen.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("extraction call failed: %w", err)
	}

	items, err := ParseItems(raw)
	if err != nil {
		return nil, err
	}

	for i := range items {
		items[i].Title = strings.TrimSpace(items[i].Title)
		items[i].Description = strings.TrimSpace(items[i].Description)
		items[i].SourceChunkIndex = chunk.Index
	}

	slog.DebugContext(ctx, "chunk extracted", "chunk_index", chunk.Index, "items", len(items))
	return items, nil
}

func buildPrompt(chunk text.Chunk, doc DocumentContext, position, total, targetItems int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are extracting software requirements for the project %q from the document %q", doc.ProjectName, doc.FileName)
	if doc.ContentType != "" {
		fmt.Fprintf(&b, " (%s)", doc.ContentType)
	}
	fmt.Fprintf(&b, ".\n\nThis is chunk %d of %d", position, total)
	switch {
	case chunk.IsFirst && chunk.IsLast:
		b.WriteString(", covering the whole document")
	case chunk.IsFirst:
		b.WriteString(", the beginning of the document")
	case chunk.IsLast:
		b.WriteString(", the end of the document")
	}
	b.WriteString(".\n\n")

	fmt.Fprintf(&b, "Extract at least %d distinct requirements from the text below. ", targetItems)
	b.WriteString("Respond with only a JSON array; each element must have the fields ")
	b.WriteString(`"title", "description", "category" and "priority" (one of "high", "medium", "low").`)
	b.WriteString("\n\n---\n")
	b.WriteString(chunk.Text)
	b.WriteString("\n---\n")

	return b.String()
}
