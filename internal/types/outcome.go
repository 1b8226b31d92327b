package types

import (
	"fmt"
	"strings"
	"time"
)

type Status string

const (
	StatusResolved  Status = "resolved"
	StatusEscalated Status = "escalated"
)

// Resolution is the candidate answer plus the escalation decision.
type Resolution struct {
	Status           Status  `json:"status"`
	ResponseText     string  `json:"response_text"`
	EscalationReason string  `json:"escalation_reason,omitempty"`
	RagConfidence    float64 `json:"rag_confidence"`
}

func (r Resolution) Escalated() bool { return r.Status == StatusEscalated }

// Priority ranks escalated tickets for the human queue, 1 highest.
type Priority int

const (
	PriorityCritical Priority = 1
	PriorityHigh     Priority = 2
	PriorityMedium   Priority = 3
	PriorityLow      Priority = 4
)

func (p Priority) Label() string {
	switch p {
	case PriorityCritical:
		return "CRITICAL"
	case PriorityHigh:
		return "HIGH"
	case PriorityLow:
		return "LOW"
	default:
		return "MEDIUM"
	}
}

// EscalationPackage is the hand-off record for a human agent. Build it with
// NewEscalationPackage and pass it by value.
type EscalationPackage struct {
	Ticket            Ticket         `json:"ticket"`
	Classification    Classification `json:"classification"`
	Reason            string         `json:"reason"`
	Priority          Priority       `json:"priority"`
	PriorityLabel     string         `json:"priority_label"`
	ResolverAttempted bool           `json:"resolver_attempted"`
	PriorResponse     string         `json:"prior_response,omitempty"`
	CustomerMessage   string         `json:"customer_message"`
	ToolResults       ToolResultSet  `json:"tool_results"`
	CreatedAt         time.Time      `json:"created_at"`
}

func NewEscalationPackage(
	ticket Ticket,
	cls Classification,
	tools ToolResultSet,
	reason string,
	priority Priority,
	priorResponse string,
	customerMessage string,
) EscalationPackage {
	return EscalationPackage{
		Ticket:            ticket,
		Classification:    cls,
		Reason:            reason,
		Priority:          priority,
		PriorityLabel:     priority.Label(),
		ResolverAttempted: priorResponse != "",
		PriorResponse:     priorResponse,
		CustomerMessage:   customerMessage,
		ToolResults:       tools.Clone(),
		CreatedAt:         time.Now().UTC(),
	}
}

// Render formats the package for a human agent's terminal.
const renderDescriptionRunes = 300

func (p EscalationPackage) Render() string {
	var b strings.Builder
	rule := strings.Repeat("=", 72)
	sub := strings.Repeat("-", 40)
	fmt.Fprintf(&b, "%s\nESCALATED TICKET %s\n%s\n", rule, p.Ticket.ID, rule)
	fmt.Fprintf(&b, "Priority: P%d %s\nReason:   %s\n", int(p.Priority), p.PriorityLabel, p.Reason)

	fmt.Fprintf(&b, "\n%s\nTICKET\n%s\n", sub, sub)
	fmt.Fprintf(&b, "  Subject:     %s\n", p.Ticket.Subject)
	fmt.Fprintf(&b, "  Caller:      %s\n", orNA(p.Ticket.CallerEmail))
	if p.Ticket.HasReservation() {
		fmt.Fprintf(&b, "  Reservation: %s\n", p.Ticket.ReservationID)
	}
	desc := p.Ticket.Description
	if r := []rune(desc); len(r) > renderDescriptionRunes {
		desc = string(r[:renderDescriptionRunes]) + "..."
	}
	fmt.Fprintf(&b, "  Description: %s\n", desc)

	fmt.Fprintf(&b, "\n%s\nCLASSIFICATION\n%s\n", sub, sub)
	fmt.Fprintf(&b, "  %s | %s | %s\n", p.Classification.Category, p.Classification.Urgency, p.Classification.Sentiment)
	fmt.Fprintf(&b, "  Summary: %s\n", orNA(p.Classification.Summary))

	fmt.Fprintf(&b, "\n%s\nCONTEXT\n%s\n", sub, sub)
	for _, k := range p.ToolResults.Keys() {
		r := p.ToolResults[k]
		if r.Failed() {
			fmt.Fprintf(&b, "  %-24s error: %s\n", k, r.Err)
			continue
		}
		switch v := r.Payload.(type) {
		case []KBArticle:
			fmt.Fprintf(&b, "  %-24s %d article(s)\n", k, len(v))
			for i, a := range v {
				fmt.Fprintf(&b, "    %d. %s (relevance %.1f%%)\n", i+1, a.Title, a.Relevance*100)
			}
		case Caller:
			fmt.Fprintf(&b, "  %-24s %s <%s> %s (%s)\n", k, v.FullName, v.Email, v.SubscriptionTier, v.SubscriptionStatus)
		case Reservation:
			fmt.Fprintf(&b, "  %-24s %s %s %s $%.2f\n", k, v.ReservationID, v.EventTitle, v.Status, v.TotalPrice)
		case []Reservation:
			fmt.Fprintf(&b, "  %-24s %d reservation(s)\n", k, len(v))
		case []SupportTicket:
			fmt.Fprintf(&b, "  %-24s %d ticket(s)\n", k, len(v))
		default:
			fmt.Fprintf(&b, "  %-24s %v\n", k, v)
		}
	}

	fmt.Fprintf(&b, "\n%s\nMESSAGE SENT TO CUSTOMER\n%s\n  %s\n%s\n", sub, sub, p.CustomerMessage, rule)
	return b.String()
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}

// WorkflowOutcome is the terminal artifact of one ticket run.
type WorkflowOutcome struct {
	TicketID         string             `json:"ticket_id"`
	FinalStatus      Status             `json:"final_status"`
	FinalResponse    string             `json:"final_response"`
	Classification   Classification     `json:"classification"`
	ToolResults      ToolResultSet      `json:"tool_results"`
	RagConfidence    float64            `json:"rag_confidence"`
	EscalationReason string             `json:"escalation_reason,omitempty"`
	Escalation       *EscalationPackage `json:"escalation,omitempty"`
	TicketSaved      bool               `json:"ticket_saved"`
	TicketSaveError  string             `json:"ticket_save_error,omitempty"`
	States           []string           `json:"states"`
}
