package job

import (
	"encoding/json"
	"fmt"
	"os"
)

// WriteFile serializes the job to a fresh temp file and returns its path.
// The file is write-once by the dispatcher and read-once by the worker; the
// dispatcher removes it after the terminal message, on both paths.
func WriteFile(j *Job) (string, error) {
	f, err := os.CreateTemp("", "reqtrack-job-*.json")
	if err != nil {
		return "", fmt.Errorf("create job file: %w", err)
	}

	if err := json.NewEncoder(f).Encode(j); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("write job file: %w", err)
	}

	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("close job file: %w", err)
	}

	return f.Name(), nil
}

// ReadFile loads a job from the path handed to the worker process.
func ReadFile(path string) (*Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read job file: %w", err)
	}

	var j Job
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, fmt.Errorf("parse job file: %w", err)
	}
	if j.Type == "" {
		return nil, fmt.Errorf("job file %s has no type", path)
	}

	return &j, nil
}
