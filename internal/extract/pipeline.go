package extract

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"reqtrack/backend/internal/text"
)

// minDocumentBytes is the shortest decoded text worth sending to the model.
const minDocumentBytes = 20

// Options tunes the document pipeline. Values come from configuration; the
// pipeline itself never reads process-wide state.
type Options struct {
	ChunkSize     int
	ChunkOverlap  int
	MaxChunks     int
	MinTotalItems int
}

// Pipeline runs the full large-document flow: split into chunks at natural
// boundaries, sample down to the chunk budget, extract every sampled chunk
// concurrently, then aggregate and deduplicate. Per-chunk failures are
// absorbed; only document-level problems fail the run.
type Pipeline struct {
	client *Client
	opts   Options
}

func NewPipeline(client *Client, opts Options) *Pipeline {
	return &Pipeline{client: client, opts: opts}
}

// Run processes one document. report receives progress in the range 0..100
// and may be called from multiple goroutines.
func (p *Pipeline) Run(ctx context.Context, doc DocumentJob, report func(int)) (*Result, error) {
	if report == nil {
		report = func(int) {}
	}

	if len(strings.TrimSpace(doc.Content)) < minDocumentBytes {
		return nil, fmt.Errorf("%w: %q", ErrEmptyDocument, doc.FileName)
	}

	report(0)

	chunks := text.Split(doc.Content, p.opts.ChunkSize, p.opts.ChunkOverlap)
	sampled := text.Sample(chunks, p.opts.MaxChunks)

	slog.InfoContext(ctx, "document chunked",
		"file", doc.FileName, "bytes", len(doc.Content),
		"chunks", len(chunks), "sampled", len(sampled))

	target := (p.opts.MinTotalItems + len(sampled) - 1) / len(sampled)

	docCtx := DocumentContext{
		ProjectName: doc.ProjectName,
		FileName:    doc.FileName,
		ContentType: doc.ContentType,
	}

	// Fire all chunk extractions at once; each is I/O-bound on the external
	// service. Results land in a slice indexed by sampled position, so the
	// aggregation order is the chunk order, not completion order.
	perChunk := make([][]Item, len(sampled))
	var failed, done int32
	var wg sync.WaitGroup

	for i, chunk := range sampled {
		wg.Add(1)
		go func(pos int, ch text.Chunk) {
			defer wg.Done()

			items, err := p.client.ExtractChunk(ctx, ch, docCtx, pos+1, len(sampled), target)
			if err != nil {
				// Recoverable: this chunk contributes nothing.
				slog.WarnContext(ctx, "chunk extraction failed", "chunk_index", ch.Index, "error", err)
				atomic.AddInt32(&failed, 1)
			} else {
				perChunk[pos] = items
			}

			report(int(atomic.AddInt32(&done, 1)) * 100 / len(sampled))
		}(i, chunk)
	}

	wg.Wait()

	result := &Result{
		Items:         Aggregate(perChunk),
		ChunksTotal:   len(chunks),
		ChunksSampled: len(sampled),
		ChunksFailed:  int(failed),
	}

	slog.InfoContext(ctx, "document extraction finished",
		"file", doc.FileName, "items", len(result.Items), "chunks_failed", result.ChunksFailed)

	return result, nil
}
