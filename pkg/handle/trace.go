package handle

import (
	"context"
	"slices"
	"sync"
)

// Trace collects the non-fatal problems reported during one request.
type Trace struct {
	entries []string
	mu      sync.Mutex
}

// Add appends a line to the trace.
func (t *Trace) Add(line string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = append(t.entries, line)
}

// Entries returns a copy of the collected lines.
func (t *Trace) Entries() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.entries)
}

// Len returns the number of collected lines.
func (t *Trace) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

type traceKey struct{}

// WithTrace returns a context carrying a fresh Trace.
func WithTrace(ctx context.Context) (context.Context, *Trace) {
	t := &Trace{}
	return context.WithValue(ctx, traceKey{}, t), t
}

// TraceFrom returns the Trace stored in ctx, or nil.
func TraceFrom(ctx context.Context) *Trace {
	if ctx == nil {
		return nil
	}
	t, _ := ctx.Value(traceKey{}).(*Trace)
	return t
}
