// Package progress provides the checkpoint progress side-channel for tool
// invocations. A Sink is carried on the context so pipeline code can report
// fixed-percentage checkpoints without null-checks; the default is a no-op.
// Delivery is best-effort: a failing or panicking sink never fails the
// invocation that emitted the event.
package progress

import "context"

// Event is a single progress notification.
type Event struct {
	Type string    `json:"type"` // Always "progress".
	Data EventData `json:"data"`
}

// EventData carries the human message and the checkpoint percentage.
type EventData struct {
	Message  string `json:"message"`
	Progress int    `json:"progress"`
}

// Sink receives progress events.
type Sink interface {
	Emit(ctx context.Context, ev Event) error
}

// SinkFunc adapts a plain function to the Sink interface.
type SinkFunc func(ctx context.Context, ev Event) error

// Emit calls the underlying function.
func (f SinkFunc) Emit(ctx context.Context, ev Event) error {
	return f(ctx, ev)
}

type sinkCtxKey struct{}

// WithSink returns a context carrying the given sink.
func WithSink(ctx context.Context, s Sink) context.Context {
	return context.WithValue(ctx, sinkCtxKey{}, s)
}

// FromContext extracts the sink from the context, or nil if none is present.
func FromContext(ctx context.Context) Sink {
	s, _ := ctx.Value(sinkCtxKey{}).(Sink)
	return s
}

// Notify emits a checkpoint event to the context sink, if any. Sink errors
// are discarded and sink panics are contained; progress is never load-bearing.
func Notify(ctx context.Context, message string, checkpoint int) {
	s := FromContext(ctx)
	if s == nil {
		return
	}

	defer func() {
		_ = recover()
	}()

	_ = s.Emit(ctx, Event{
		Type: "progress",
		Data: EventData{
			Message:  message,
			Progress: checkpoint,
		},
	})
}
