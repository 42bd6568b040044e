package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Mutation kinds describing what changed in a user's debt portfolio.
const (
	MutationCreated = "created"
	MutationUpdated = "updated"
	MutationDeleted = "deleted"
)

// MutationEvent represents a committed change to data that feeds insight
// generation. It carries enough information for handlers to invalidate or
// refresh cached results without direct dependencies on the service package.
type MutationEvent struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// UserID identifies the user whose data changed
	UserID uuid.UUID `json:"user_id"`

	// Mutation indicates the kind of change (created, updated, deleted)
	Mutation string `json:"mutation"`

	// EntityID identifies the record that changed, when applicable
	EntityID uuid.UUID `json:"entity_id"`

	// OccurredAt is the timestamp when the mutation was committed
	OccurredAt time.Time `json:"occurred_at"`
}

// NewMutationEvent creates a new MutationEvent for the given user and change.
func NewMutationEvent(userID uuid.UUID, mutation string, entityID uuid.UUID) *MutationEvent {
	return &MutationEvent{
		ID:         uuid.New(),
		UserID:     userID,
		Mutation:   mutation,
		EntityID:   entityID,
		OccurredAt: time.Now().UTC(),
	}
}

// EventHandler defines an interface for components that can handle events.
// Handlers are responsible for processing events and taking appropriate actions.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	// Returns an error if the event cannot be handled successfully.
	HandleEvent(ctx context.Context, event *MutationEvent) error
}

// EventEmitter defines an interface for components that can emit events.
// This allows the write path to publish events without direct knowledge of handlers.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	// Returns an error if the event cannot be emitted.
	EmitEvent(ctx context.Context, event *MutationEvent) error
}
