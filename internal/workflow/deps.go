package workflow

import (
	"context"
	"time"

	"go.uber.org/zap"

	"supportflow/internal/types"
)

type Classifier interface {
	Classify(ctx context.Context, subject, description string) types.Classification
}

type Gatherer interface {
	Gather(ctx context.Context, ticket types.Ticket, cls types.Classification) (types.ToolResultSet, float64)
}

// Resolver returns the finalized resolution, rules already applied.
type Resolver interface {
	Resolve(ctx context.Context, ticket types.Ticket, cls types.Classification, tools types.ToolResultSet) types.Resolution
}

type Escalator interface {
	Package(ctx context.Context, ticket types.Ticket, cls types.Classification, tools types.ToolResultSet, reason, priorResponse string) types.EscalationPackage
}

// TicketWriter persists the final ticket record. CreateTicket must be
// idempotent on the ticket id.
type TicketWriter interface {
	CreateTicket(ctx context.Context, rec types.SupportTicket) error
}

// Archive stores escalation packages for the human queue.
type Archive interface {
	Put(ctx context.Context, pkg types.EscalationPackage) (string, error)
}

// Publisher announces finished outcomes to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, outcome types.WorkflowOutcome) error
}

// Recorder receives per-state timings and final outcomes.
type Recorder interface {
	ObserveState(state string, took time.Duration)
	ObserveOutcome(outcome types.WorkflowOutcome)
}

// Deps are the collaborators of a Controller. Classifier, Gatherer, Resolver,
// Escalator and Store are required; the rest are optional side effects.
type Deps struct {
	Classifier Classifier
	Gatherer   Gatherer
	Resolver   Resolver
	Escalator  Escalator
	Store      TicketWriter

	Archive   Archive
	Publisher Publisher
	Metrics   Recorder
	Log       *zap.Logger

	// PersistTimeout bounds the final write and each side effect.
	PersistTimeout time.Duration
}
