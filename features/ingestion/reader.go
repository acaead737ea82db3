package ingestion

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// ContentReader turns an uploaded file into decoded text. PDF/DOCX conversion
// runs in an external service; this backend only accepts already-textual
// formats directly.
type ContentReader interface {
	ReadText(filename string, r io.Reader) (string, error)
}

// PlainTextReader handles the textual upload formats as-is.
type PlainTextReader struct{}

var textExtensions = map[string]bool{
	".txt": true, ".md": true, ".markdown": true,
}

func (PlainTextReader) ReadText(filename string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !textExtensions[ext] {
		return "", fmt.Errorf("unsupported file type %q", ext)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	return string(data), nil
}
