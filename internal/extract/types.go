package extract

import "errors"

// ErrEmptyDocument means the decoded document text is missing or too short
// to extract anything from. Fatal to the job, never retried.
var ErrEmptyDocument = errors.New("document text is empty or too short")

// Item is one structured requirement extracted from a document chunk.
type Item struct {
	Title            string `json:"title"`
	Description      string `json:"description"`
	Category         string `json:"category"`
	Priority         string `json:"priority"`
	SourceChunkIndex int    `json:"source_chunk_index"`
}

// DocumentContext carries the document-level framing embedded in every
// extraction prompt.
type DocumentContext struct {
	ProjectName string `json:"project_name"`
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
}

// DocumentJob is the payload of an ingest.document job: an already-decoded
// document plus its context. Binary-to-text conversion happens upstream.
type DocumentJob struct {
	ProjectName string `json:"project_name"`
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	Content     string `json:"content"`
}

// Result is the terminal payload of a completed ingestion job.
type Result struct {
	Items         []Item `json:"items"`
	ChunksTotal   int    `json:"chunks_total"`
	ChunksSampled int    `json:"chunks_sampled"`
	ChunksFailed  int    `json:"chunks_failed"`
}
