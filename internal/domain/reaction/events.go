package reaction

import "github.com/turtacn/ChemRxn-Core/pkg/types/common"

// ─────────────────────────────────────────────────────────────────────────────
// Domain Events
// ─────────────────────────────────────────────────────────────────────────────

// DomainEvent is a marker interface for all reaction-related domain events.
type DomainEvent interface {
	EventType() string
}

// ReactionCreatedEvent is published when a reaction is successfully built.
type ReactionCreatedEvent struct {
	ReactionID common.ID `json:"reaction_id"`
	Label      string    `json:"label"`
}

func (e ReactionCreatedEvent) EventType() string { return "reaction.created" }

// MultiplicityAssumedEvent is published when the multiplicity resolver fell
// back to an ambiguous row's default value.
type MultiplicityAssumedEvent struct {
	ReactionID   common.ID `json:"reaction_id"`
	Label        string    `json:"label"`
	Multiplicity int       `json:"multiplicity"`
}

func (e MultiplicityAssumedEvent) EventType() string { return "reaction.multiplicity_assumed" }

// BalanceFailedEvent is published when an atom-balance check finds a
// stoichiometric mismatch.
type BalanceFailedEvent struct {
	ReactionID   common.ID `json:"reaction_id"`
	Label        string    `json:"label"`
	FailedChecks []string  `json:"failed_checks"`
}

func (e BalanceFailedEvent) EventType() string { return "reaction.balance_failed" }

// AtomMapComputedEvent is published when the alignment service returns an
// atom map and it is cached on the reaction.
type AtomMapComputedEvent struct {
	ReactionID common.ID `json:"reaction_id"`
	Label      string    `json:"label"`
	AtomCount  int       `json:"atom_count"`
}

func (e AtomMapComputedEvent) EventType() string { return "reaction.atom_map_computed" }

// Events returns the accumulated, not-yet-published domain events.
func (r *Reaction) Events() []DomainEvent {
	return r.events
}

// ClearEvents discards the accumulated events after publishing.
func (r *Reaction) ClearEvents() {
	r.events = nil
}

func (r *Reaction) addEvent(e DomainEvent) {
	r.events = append(r.events, e)
}
