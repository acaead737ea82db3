package config

const (
	// TopicIngestDocument is the NSQ topic for queued document ingestion jobs
	// (retries of previously failed jobs land here).
	TopicIngestDocument = "ingest.document"

	// TopicIngestResult is the NSQ topic for ingestion results (success/failure).
	TopicIngestResult = "ingest.result"
)
