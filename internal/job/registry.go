package job

import (
	"context"
	"encoding/json"
)

// HandlerFunc executes one job type. report receives progress 0..100.
// Returning an error fails the job; retry policy belongs to the caller,
// never to the handler.
type HandlerFunc func(ctx context.Context, payload json.RawMessage, report func(int)) (any, error)

// Registry is the fixed job-type to handler mapping a worker is built with.
type Registry struct {
	handlers map[string]HandlerFunc
}

func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]HandlerFunc)}
}

func (r *Registry) Register(jobType string, h HandlerFunc) {
	r.handlers[jobType] = h
}

func (r *Registry) Lookup(jobType string) (HandlerFunc, bool) {
	h, ok := r.handlers[jobType]
	return h, ok
}
