package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"supportflow/internal/llm"
	t "supportflow/internal/types"
)

// Escalator builds the hand-off package for tickets routed to a human.
type Escalator struct {
	LLM     llm.LLMClient
	Timeout time.Duration
	Log     *zap.Logger
}

type priorityRule struct {
	priority t.Priority
	match    func(cls t.Classification, reason string) bool
}

// priorityRules are evaluated in order; P4 is the fallback.
var priorityRules = []priorityRule{
	{t.PriorityCritical, func(c t.Classification, _ string) bool {
		return c.Urgency == t.UrgencyCritical || c.Category == t.CategoryComplaint
	}},
	{t.PriorityHigh, func(c t.Classification, _ string) bool {
		return c.Urgency == t.UrgencyHigh && c.Sentiment == t.SentimentNegative
	}},
	{t.PriorityMedium, func(c t.Classification, reason string) bool {
		return c.Urgency == t.UrgencyMedium || c.Urgency == t.UrgencyHigh ||
			strings.Contains(strings.ToLower(reason), "confidence")
	}},
}

// ComputePriority maps a classification and escalation reason to P1..P4.
func ComputePriority(cls t.Classification, reason string) t.Priority {
	for _, r := range priorityRules {
		if r.match(cls, reason) {
			return r.priority
		}
	}
	return t.PriorityLow
}

// Package assembles the escalation record. The holding message falls back to
// GenericHoldingMessage when the model call fails or returns nothing.
func (e *Escalator) Package(
	ctx context.Context,
	ticket t.Ticket,
	cls t.Classification,
	tools t.ToolResultSet,
	reason string,
	priorResponse string,
) t.EscalationPackage {
	priority := ComputePriority(cls, reason)
	msg := e.holdingMessage(ctx, ticket, cls, reason)
	return t.NewEscalationPackage(ticket, cls, tools, reason, priority, priorResponse, msg)
}

func (e *Escalator) holdingMessage(ctx context.Context, ticket t.Ticket, cls t.Classification, reason string) string {
	if e.LLM == nil {
		return GenericHoldingMessage
	}
	ctx = llm.WithPhase(ctx, llm.PhaseEscalate)
	if e.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}
	summary := orDefault(cls.Summary, orDefault(ticket.Subject, "Your issue"))
	out, err := e.LLM.Generate(ctx, promptEscalate,
		fmt.Sprintf(promptEscalateUser, summary, cls.Category, cls.Urgency, cls.Sentiment, reason))
	if err != nil {
		logger(e.Log).Warn("escalation message failed", zap.String("ticket_id", ticket.ID), zap.Error(err))
		return GenericHoldingMessage
	}
	if out = strings.TrimSpace(out); out == "" {
		return GenericHoldingMessage
	}
	return out
}
