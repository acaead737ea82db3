package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

var ErrMissingRequired = errors.New("missing required configuration")

type Config struct {
	DBHost string `envconfig:"DB_HOST" default:"postgres"`
	DBPort int    `envconfig:"DB_PORT" default:"5432"`
	DBUser string `envconfig:"DB_USER" default:"reqtrack"`
	DBPass string `envconfig:"DB_PASS" default:"password"`
	DBName string `envconfig:"DB_NAME" default:"reqtrack"`

	NSQLookupd string `envconfig:"NSQ_LOOKUPD" default:"nsqlookupd:4161"`
	NSQDHost   string `envconfig:"NSQD_HOST" default:"nsqd:4150"`

	GeminiAPIKey string `envconfig:"GEMINI_API_KEY"`
	GeminiModel  string `envconfig:"GEMINI_MODEL" default:"gemini-1.5-flash"`

	// Document pipeline tuning. ChunkSize/ChunkOverlap are bytes; MaxChunks
	// caps external extraction calls per document; MinTotalItems drives the
	// per-chunk item target in the extraction prompt.
	ChunkSize     int `envconfig:"CHUNK_SIZE" default:"4000"`
	ChunkOverlap  int `envconfig:"CHUNK_OVERLAP" default:"200"`
	MaxChunks     int `envconfig:"MAX_CHUNKS" default:"8"`
	MinTotalItems int `envconfig:"MIN_TOTAL_ITEMS" default:"10"`

	// Worker process settings. WorkerBin is the ingest-worker binary the
	// dispatcher spawns; an empty value falls back to looking it up on PATH.
	WorkerBin            string `envconfig:"WORKER_BIN" default:"ingest-worker"`
	WorkerTimeoutSeconds int    `envconfig:"WORKER_TIMEOUT_SECONDS" default:"300"`

	EnableAPI          bool   `envconfig:"ENABLE_API" default:"true"`
	EnableQueueWorker  bool   `envconfig:"ENABLE_QUEUE_WORKER" default:"false"`
	MigrationPath      string `envconfig:"MIGRATION_PATH" default:"file://migrations"`
	ServerPort         int    `envconfig:"SERVER_PORT" default:"8081"`
	MaxUploadSizeMB    int64  `envconfig:"MAX_UPLOAD_SIZE_MB" default:"50"`
	BootstrapRetries   int    `envconfig:"BOOTSTRAP_RETRY_ATTEMPTS" default:"10"`
	BootstrapRetryWait int    `envconfig:"BOOTSTRAP_RETRY_DELAY_SECONDS" default:"2"`
}

func Load() (*Config, error) {
	// Try loading .env from current dir and repo root.
	// Ignore errors, as env vars might be set in the shell.
	_ = godotenv.Load(".env")

	cwd, _ := os.Getwd()
	rootEnv := filepath.Join(cwd, "../../.env")
	_ = godotenv.Load(rootEnv)

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.DBHost == "" {
		return fmt.Errorf("%w: DB_HOST", ErrMissingRequired)
	}
	if c.DBUser == "" {
		return fmt.Errorf("%w: DB_USER", ErrMissingRequired)
	}
	if c.DBName == "" {
		return fmt.Errorf("%w: DB_NAME", ErrMissingRequired)
	}
	if c.ChunkSize <= 0 {
		return fmt.Errorf("%w: CHUNK_SIZE must be positive", ErrMissingRequired)
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("%w: CHUNK_OVERLAP must be non-negative and smaller than CHUNK_SIZE", ErrMissingRequired)
	}
	if c.MaxChunks < 1 {
		return fmt.Errorf("%w: MAX_CHUNKS must be at least 1", ErrMissingRequired)
	}
	return nil
}

func (c *Config) WorkerTimeout() time.Duration {
	return time.Duration(c.WorkerTimeoutSeconds) * time.Second
}
