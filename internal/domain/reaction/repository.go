// Package reaction defines the repository interface for reaction persistence.
package reaction

import (
	"context"

	"github.com/turtacn/ChemRxn-Core/pkg/types/common"
)

// Repository defines the persistence contract for Reaction aggregates.
// Implementations persist the explicit record shape (see ToRecord) and must
// return errors.ErrCodeReactionNotFound for lookups that match nothing.
type Repository interface {
	// Save persists a new reaction or updates an existing one based on ID.
	Save(ctx context.Context, rxn *Reaction) error

	// FindByID retrieves a reaction by its unique identifier.
	FindByID(ctx context.Context, id common.ID) (*Reaction, error)

	// FindByLabel retrieves a reaction by its canonical label.
	FindByLabel(ctx context.Context, label string) (*Reaction, error)

	// List returns a page of reactions ordered by creation time.
	List(ctx context.Context, page common.Pagination) ([]*Reaction, int64, error)

	// Delete removes a reaction by ID.
	Delete(ctx context.Context, id common.ID) error

	// Count returns the total number of stored reactions.
	Count(ctx context.Context) (int64, error)

	// NextIndex reserves and returns the next project-wide reaction ordinal,
	// used to derive TS labels ("TS<index>").
	NextIndex(ctx context.Context) (int, error)
}

// ─────────────────────────────────────────────────────────────────────────────
// Capability interfaces (implemented by infrastructure)
// ─────────────────────────────────────────────────────────────────────────────

// AtomMapCache stores computed atom maps keyed by reaction ID.  Entries are
// invalidated only explicitly, mirroring the write-once semantics of the
// cached field on the aggregate.
type AtomMapCache interface {
	Get(ctx context.Context, id common.ID) ([]int, bool, error)
	Set(ctx context.Context, id common.ID, atomMap []int) error
	Invalidate(ctx context.Context, id common.ID) error
}

// EventPublisher publishes reaction domain events to downstream consumers.
type EventPublisher interface {
	Publish(ctx context.Context, event DomainEvent) error
}

// GeometryStore archives raw xyz blobs (TS guesses, wells) for a reaction.
type GeometryStore interface {
	PutTSGuess(ctx context.Context, id common.ID, index int, xyz string) error
	GetTSGuess(ctx context.Context, id common.ID, index int) (string, error)
}

// Metrics records reaction-core measurements.  The prometheus-backed
// implementation lives in the monitoring infrastructure; a no-op
// implementation serves tests.
type Metrics interface {
	ObserveBalanceCheck(balanced bool)
	ObserveMultiplicityResolution(status string)
	ObserveAtomMapLatency(seconds float64)
	ObserveReactionCreated()
}
