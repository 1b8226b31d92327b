// Package events announces finished ticket outcomes to downstream consumers.
package events

import (
	"context"
	"time"

	"supportflow/internal/types"
)

// OutcomeEvent is the compact record published per processed ticket. Tool
// payloads are left out; consumers needing them read the hand-off archive.
type OutcomeEvent struct {
	TicketID      string    `json:"ticket_id"`
	Status        string    `json:"status"`
	Category      string    `json:"category"`
	Urgency       string    `json:"urgency"`
	Sentiment     string    `json:"sentiment"`
	Priority      int       `json:"priority,omitempty"`
	PriorityLabel string    `json:"priority_label,omitempty"`
	Reason        string    `json:"reason,omitempty"`
	RagConfidence float64   `json:"rag_confidence"`
	FailedLookups []string  `json:"failed_lookups,omitempty"`
	TicketSaved   bool      `json:"ticket_saved"`
	ProcessedAt   time.Time `json:"processed_at"`
}

func NewOutcomeEvent(o types.WorkflowOutcome, now time.Time) OutcomeEvent {
	ev := OutcomeEvent{
		TicketID:      o.TicketID,
		Status:        string(o.FinalStatus),
		Category:      string(o.Classification.Category),
		Urgency:       string(o.Classification.Urgency),
		Sentiment:     string(o.Classification.Sentiment),
		Reason:        o.EscalationReason,
		RagConfidence: o.RagConfidence,
		FailedLookups: o.ToolResults.FailedKeys(),
		TicketSaved:   o.TicketSaved,
		ProcessedAt:   now.UTC(),
	}
	if o.Escalation != nil {
		ev.Priority = int(o.Escalation.Priority)
		ev.PriorityLabel = o.Escalation.PriorityLabel
	}
	return ev
}

type Publisher interface {
	Publish(ctx context.Context, outcome types.WorkflowOutcome) error
	Close() error
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, types.WorkflowOutcome) error { return nil }
func (NopPublisher) Close() error                                          { return nil }
