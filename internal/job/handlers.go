package job

import (
	"context"
	"encoding/json"
	"fmt"

	"reqtrack/backend/internal/extract"
)

// TypeIngestDocument selects the large-document extraction handler.
const TypeIngestDocument = "ingest.document"

// NewIngestRegistry builds the registry both the worker binary and the
// in-process runner are wired with.
func NewIngestRegistry(pipeline *extract.Pipeline) *Registry {
	reg := NewRegistry()
	reg.Register(TypeIngestDocument, func(ctx context.Context, payload json.RawMessage, report func(int)) (any, error) {
		var doc extract.DocumentJob
		if err := json.Unmarshal(payload, &doc); err != nil {
			return nil, fmt.Errorf("invalid ingest.document payload: %w", err)
		}
		return pipeline.Run(ctx, doc, report)
	})
	return reg
}
