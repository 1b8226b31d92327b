package workflow

import (
	"fmt"
	"time"

	"supportflow/internal/types"
)

// AgentNotes summarizes the automated triage for the human reading the record.
func AgentNotes(out types.WorkflowOutcome) string {
	c := out.Classification
	notes := fmt.Sprintf("AI Classification: %s | %s | %s\nSummary: %s\nRAG Confidence: %.1f%%",
		c.Category, c.Urgency, c.Sentiment, c.Summary, out.RagConfidence*100)
	if out.EscalationReason != "" {
		notes += "\nEscalation Reason: " + out.EscalationReason
	}
	if out.Escalation != nil {
		notes += fmt.Sprintf("\nEscalation Priority: P%d %s", out.Escalation.Priority, out.Escalation.PriorityLabel)
	}
	return notes
}

// TicketRecord is the row written to the data store at Done. The priority
// column carries the urgency label.
func TicketRecord(ticket types.Ticket, out types.WorkflowOutcome) types.SupportTicket {
	priority := string(out.Classification.Urgency)
	if priority == "" {
		priority = string(types.UrgencyMedium)
	}
	return types.SupportTicket{
		TicketID:      ticket.ID,
		UserEmail:     ticket.CallerEmail,
		Subject:       ticket.Subject,
		Description:   ticket.Description,
		Category:      string(out.Classification.Category),
		Priority:      priority,
		Status:        string(out.FinalStatus),
		ReservationID: ticket.ReservationID,
		AgentNotes:    AgentNotes(out),
		CreatedAt:     time.Now().UTC(),
	}
}
