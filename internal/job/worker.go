package job

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
)

// Emitter writes IPC messages as newline-delimited JSON. Safe for concurrent
// use; chunk extractions report progress from multiple goroutines.
type Emitter struct {
	mu  sync.Mutex
	enc *json.Encoder
}

func NewEmitter(w io.Writer) *Emitter {
	return &Emitter{enc: json.NewEncoder(w)}
}

func (e *Emitter) Progress(p int) {
	if p < 0 {
		p = 0
	}
	if p > 100 {
		p = 100
	}
	e.send(Message{Type: MessageProgress, Progress: p})
}

func (e *Emitter) Completed(result any) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	e.send(Message{Type: MessageCompleted, Result: data})
	return nil
}

func (e *Emitter) Failed(msg string) {
	if msg == "" {
		msg = "unknown error"
	}
	e.send(Message{Type: MessageFailed, Error: msg})
}

func (e *Emitter) send(m Message) {
	e.mu.Lock()
	defer e.mu.Unlock()
	// An encode error here means the parent is gone; nothing useful to do.
	_ = e.enc.Encode(m)
}

// Run is the worker process body: load the job file, look up the handler,
// execute it, and emit exactly one terminal message. Returns the process
// exit code (0 on completed, 1 on failed). Panics escaping the handler are
// reported as failed, never re-raised.
func Run(ctx context.Context, jobPath string, reg *Registry, out io.Writer) int {
	emit := NewEmitter(out)

	j, err := ReadFile(jobPath)
	if err != nil {
		emit.Failed(err.Error())
		return 1
	}

	handler, ok := reg.Lookup(j.Type)
	if !ok {
		emit.Failed(fmt.Sprintf("no handler registered for job type %q", j.Type))
		return 1
	}

	result, err := invoke(ctx, handler, j.Payload, emit.Progress)
	if err != nil {
		emit.Failed(err.Error())
		return 1
	}

	if err := emit.Completed(result); err != nil {
		emit.Failed(err.Error())
		return 1
	}
	return 0
}

func invoke(ctx context.Context, h HandlerFunc, payload json.RawMessage, report func(int)) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()
	return h(ctx, payload, report)
}
