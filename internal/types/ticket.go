package types

import (
	"strings"

	"github.com/google/uuid"
)

// Ticket is the inbound unit of support work. It is created once at
// pipeline entry and passed by value afterwards.
type Ticket struct {
	ID            string `json:"ticket_id" yaml:"ticket_id"`
	Subject       string `json:"subject" yaml:"subject"`
	Description   string `json:"description" yaml:"description"`
	CallerEmail   string `json:"caller_email,omitempty" yaml:"caller_email,omitempty"`
	ReservationID string `json:"reservation_id,omitempty" yaml:"reservation_id,omitempty"`
}

func NewTicket(id, subject, description, callerEmail, reservationID string) Ticket {
	return Ticket{
		ID:            strings.TrimSpace(id),
		Subject:       subject,
		Description:   description,
		CallerEmail:   strings.TrimSpace(callerEmail),
		ReservationID: strings.TrimSpace(reservationID),
	}
}

func (t Ticket) HasCaller() bool { return t.CallerEmail != "" }

func (t Ticket) HasReservation() bool { return t.ReservationID != "" }

// SearchQuery is the knowledge-base query text for the ticket.
func (t Ticket) SearchQuery() string {
	return t.Subject + " " + t.Description
}

// Question is the caller's question as shown to the model.
func (t Ticket) Question() string {
	return t.Subject + ". " + t.Description
}

// NewTicketID returns prefix + "-" + eight upper-case hex characters.
func NewTicketID(prefix string) string {
	return prefix + "-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}
