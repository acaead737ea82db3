package gemini_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	"reqtrack/backend/internal/adapter/gemini"
)

func fakeGeminiServer(t *testing.T, text string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"candidates": []map[string]interface{}{
				{
					"content": map[string]interface{}{
						"role": "model",
						"parts": []map[string]interface{}{
							{"text": text},
						},
					},
				},
			},
		})
	}))
}

func TestNewExtractor_MissingAPIKey(t *testing.T) {
	_, err := gemini.NewExtractor(context.Background(), "", "gemini-1.5-flash")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gemini api key not configured")
}

func TestExtractor_Generate(t *testing.T) {
	ts := fakeGeminiServer(t, `[{"title":"Login","description":"d","category":"auth","priority":"high"}]`)
	defer ts.Close()

	extractor, err := gemini.NewExtractor(context.Background(), "test-key", "gemini-1.5-flash",
		option.WithEndpoint(ts.URL),
	)
	require.NoError(t, err)
	defer extractor.Close()

	out, err := extractor.Generate(context.Background(), "extract requirements from: the system shall allow login")
	require.NoError(t, err)
	assert.Contains(t, out, `"title":"Login"`)
}

func TestExtractor_Generate_EmptyCandidates(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{"candidates": []interface{}{}})
	}))
	defer ts.Close()

	extractor, err := gemini.NewExtractor(context.Background(), "test-key", "gemini-1.5-flash",
		option.WithEndpoint(ts.URL),
	)
	require.NoError(t, err)
	defer extractor.Close()

	_, err = extractor.Generate(context.Background(), "prompt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty generation response")
}
