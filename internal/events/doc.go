// Package events provides types and interfaces for an event-driven architecture.
//
// This package defines event types and handler interfaces that allow for loose coupling
// between components in the system. The debt mutation path emits events without knowing
// which handlers will process them, which keeps cache invalidation decoupled from the
// write path and avoids circular dependencies.
//
// The primary components are:
// - MutationEvent: Represents a committed write to a user's insight-relevant data
// - EventHandler: Interface for components that can handle events
// - EventEmitter: Interface for components that can emit events
package events
