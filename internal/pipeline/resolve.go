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

// Resolver drafts the customer response from the gathered context and lets
// the rule engine finalize status and reason.
type Resolver struct {
	LLM     llm.LLMClient
	Rules   *RuleEngine
	Timeout time.Duration
	Log     *zap.Logger
}

var toneBySentiment = map[t.Sentiment]string{
	t.SentimentNegative: "Be empathetic, apologetic and understanding. Acknowledge the customer's frustration.",
	t.SentimentNeutral:  "Be professional, helpful and clear. Focus on solving the problem.",
	t.SentimentPositive: "Be friendly, enthusiastic and appreciative. Match the customer's positive energy.",
}

var lengthByUrgency = map[t.Urgency]string{
	t.UrgencyCritical: "2-3 sentences maximum. Be concise and action-focused.",
	t.UrgencyHigh:     "2-3 sentences. Get straight to the solution.",
	t.UrgencyMedium:   "4-5 sentences. Provide a balanced explanation.",
	t.UrgencyLow:      "5-7 sentences. Give a detailed, educational response.",
}

func (r *Resolver) Resolve(ctx context.Context, ticket t.Ticket, cls t.Classification, tools t.ToolResultSet) t.Resolution {
	arts := tools.KBArticles()
	confidence := bestRelevance(arts)

	system, user := resolvePrompt(ticket, cls, tools)
	ctx = llm.WithPhase(ctx, llm.PhaseResolve)
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}
	text, err := r.LLM.Generate(ctx, system, user)
	if err != nil {
		logger(r.Log).Warn("resolution call failed", zap.String("ticket_id", ticket.ID), zap.Error(err))
		return t.Resolution{
			Status:           t.StatusEscalated,
			EscalationReason: "resolution error: " + err.Error(),
			RagConfidence:    confidence,
		}
	}

	rules := r.Rules
	if rules == nil {
		rules = NewRuleEngine()
	}
	escalate, reason := rules.Decide(RuleInput{
		Classification: cls,
		RagConfidence:  confidence,
		KBResultCount:  len(arts),
		ResponseText:   text,
		Tools:          tools,
	})
	res := t.Resolution{
		Status:        t.StatusResolved,
		ResponseText:  text,
		RagConfidence: confidence,
	}
	if escalate {
		res.Status = t.StatusEscalated
		res.EscalationReason = reason
	}
	return res
}

func resolvePrompt(ticket t.Ticket, cls t.Classification, tools t.ToolResultSet) (string, string) {
	kb := "No relevant knowledge base articles found."
	if arts := tools.KBArticles(); len(arts) > 0 {
		if len(arts) > kbTopK {
			arts = arts[:kbTopK]
		}
		parts := make([]string, 0, len(arts))
		for _, a := range arts {
			parts = append(parts, fmt.Sprintf("**%s** (Relevance: %.1f%%)\n%s", a.Title, a.Relevance*100, a.Content))
		}
		kb = strings.Join(parts, "\n\n---\n\n")
	}

	var acct []string
	if r, ok := tools.Get(t.ToolCallerInfo); ok && !r.Failed() {
		if c, ok := r.Payload.(t.Caller); ok {
			acct = append(acct,
				"**Caller Account Information:**",
				"Name: "+orNA(c.FullName),
				"Email: "+orNA(c.Email),
				fmt.Sprintf("Subscription: %s (%s)", orDefault(c.SubscriptionTier, "basic"), orDefault(c.SubscriptionStatus, "active")),
			)
		}
	}
	if r, ok := tools.Get(t.ToolReservationInfo); ok && !r.Failed() {
		if res, ok := r.Payload.(t.Reservation); ok {
			acct = append(acct,
				"\n**Reservation Details:**",
				"Reservation ID: "+orNA(res.ReservationID),
				"Event: "+orNA(res.EventTitle),
				"Date: "+formatDate(res.EventDate),
				"Status: "+orNA(res.Status),
				fmt.Sprintf("Total: $%.2f", res.TotalPrice),
			)
		}
	}
	if r, ok := tools.Get(t.ToolCallerReservations); ok && !r.Failed() {
		if list, ok := r.Payload.([]t.Reservation); ok && len(list) > 0 {
			acct = append(acct, fmt.Sprintf("\n**Caller has %d reservation(s)**", len(list)))
		}
	}
	account := "No additional account information available."
	if len(acct) > 0 {
		account = strings.Join(acct, "\n")
	}

	tone, ok := toneBySentiment[cls.Sentiment]
	if !ok {
		tone = toneBySentiment[t.SentimentNeutral]
	}
	length, ok := lengthByUrgency[cls.Urgency]
	if !ok {
		length = lengthByUrgency[t.UrgencyMedium]
	}

	system := fmt.Sprintf(promptResolve, kb, account, tone, length)
	user := fmt.Sprintf(promptResolveUser, cls.Category, cls.Urgency, cls.Sentiment, cls.Summary, ticket.Question())
	return system, user
}

func orNA(s string) string { return orDefault(s, "N/A") }

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

func formatDate(ts time.Time) string {
	if ts.IsZero() {
		return "N/A"
	}
	return ts.Format("2006-01-02 15:04")
}
