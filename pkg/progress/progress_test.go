package progress

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	events []Event
}

func (r *recordingSink) Emit(_ context.Context, ev Event) error {
	r.events = append(r.events, ev)
	return nil
}

func TestWithSinkAndFromContext(t *testing.T) {
	sink := &recordingSink{}
	ctx := WithSink(context.Background(), sink)

	assert.Same(t, Sink(sink), FromContext(ctx))
}

func TestFromContextDefaultsToNil(t *testing.T) {
	assert.Nil(t, FromContext(context.Background()))
}

func TestNotifyEmitsEvent(t *testing.T) {
	sink := &recordingSink{}
	ctx := WithSink(context.Background(), sink)

	Notify(ctx, "Fetching...", 25)

	require.Len(t, sink.events, 1)
	assert.Equal(t, "progress", sink.events[0].Type)
	assert.Equal(t, "Fetching...", sink.events[0].Data.Message)
	assert.Equal(t, 25, sink.events[0].Data.Progress)
}

func TestNotifyWithoutSinkIsNoop(t *testing.T) {
	assert.NotPanics(t, func() {
		Notify(context.Background(), "no sink", 50)
	})
}

func TestNotifyIgnoresSinkError(t *testing.T) {
	failing := SinkFunc(func(_ context.Context, _ Event) error {
		return errors.New("sink down")
	})
	ctx := WithSink(context.Background(), failing)

	assert.NotPanics(t, func() {
		Notify(ctx, "best effort", 75)
	})
}

func TestNotifyContainsSinkPanic(t *testing.T) {
	panicking := SinkFunc(func(_ context.Context, _ Event) error {
		panic("sink exploded")
	})
	ctx := WithSink(context.Background(), panicking)

	assert.NotPanics(t, func() {
		Notify(ctx, "still fine", 100)
	})
}

func TestSinkFuncAdapts(t *testing.T) {
	var got Event
	fn := SinkFunc(func(_ context.Context, ev Event) error {
		got = ev
		return nil
	})

	err := fn.Emit(context.Background(), Event{Type: "progress", Data: EventData{Message: "m", Progress: 100}})

	require.NoError(t, err)
	assert.Equal(t, 100, got.Data.Progress)
}
