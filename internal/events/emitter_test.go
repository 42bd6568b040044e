package events

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingHandler struct {
	events []*MutationEvent
	err    error
}

func (h *recordingHandler) HandleEvent(_ context.Context, event *MutationEvent) error {
	h.events = append(h.events, event)
	return h.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestEmitEventDispatchesToAllHandlers(t *testing.T) {
	t.Parallel()
	emitter := NewInMemoryEventEmitter(testLogger())

	first := &recordingHandler{}
	second := &recordingHandler{}
	emitter.RegisterHandler(first)
	emitter.RegisterHandler(second)

	event := NewMutationEvent(uuid.New(), MutationUpdated, uuid.New())
	require.NoError(t, emitter.EmitEvent(context.Background(), event))

	require.Len(t, first.events, 1)
	require.Len(t, second.events, 1)
	assert.Equal(t, event.ID, first.events[0].ID)
}

func TestEmitEventWithNoHandlers(t *testing.T) {
	t.Parallel()
	emitter := NewInMemoryEventEmitter(testLogger())

	event := NewMutationEvent(uuid.New(), MutationCreated, uuid.New())
	assert.NoError(t, emitter.EmitEvent(context.Background(), event))
}

func TestEmitEventContinuesAfterHandlerFailure(t *testing.T) {
	t.Parallel()
	emitter := NewInMemoryEventEmitter(testLogger())

	firstErr := errors.New("first handler failed")
	failing := &recordingHandler{err: firstErr}
	healthy := &recordingHandler{}
	emitter.RegisterHandler(failing)
	emitter.RegisterHandler(healthy)

	event := NewMutationEvent(uuid.New(), MutationDeleted, uuid.New())
	err := emitter.EmitEvent(context.Background(), event)

	assert.ErrorIs(t, err, firstErr)
	require.Len(t, healthy.events, 1, "later handlers still receive the event")
}

func TestNewMutationEvent(t *testing.T) {
	t.Parallel()
	userID := uuid.New()
	entityID := uuid.New()

	event := NewMutationEvent(userID, MutationCreated, entityID)

	assert.NotEqual(t, uuid.Nil, event.ID)
	assert.Equal(t, userID, event.UserID)
	assert.Equal(t, entityID, event.EntityID)
	assert.Equal(t, MutationCreated, event.Mutation)
	assert.False(t, event.OccurredAt.IsZero())
}
