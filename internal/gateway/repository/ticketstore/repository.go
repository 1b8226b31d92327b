package ticketstore

import (
	"context"
	"errors"
	"time"

	"supportflow/internal/types"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrAlreadyCancelled = errors.New("reservation already cancelled")
)

// AnonymousUserID owns tickets whose caller is unknown.
const AnonymousUserID = "u_anonymous"

// EventFilter narrows SearchEvents. Zero values do not filter.
type EventFilter struct {
	Category  string
	City      string
	From      time.Time
	To        time.Time
	IsPremium *bool
	Limit     int
}

// Stats summarizes persisted tickets for operators.
type Stats struct {
	Total      int            `json:"total"`
	ByStatus   map[string]int `json:"by_status"`
	ByCategory map[string]int `json:"by_category"`
}

// Store is the relational data store behind the triage engine.
// Reads return ErrNotFound (wrapped) for unknown ids; list reads filter on
// status only when it is non-empty.
type Store interface {
	CallerByID(ctx context.Context, userID string) (types.Caller, error)
	CallerByEmail(ctx context.Context, email string) (types.Caller, error)
	Reservation(ctx context.Context, reservationID string) (types.Reservation, error)
	CallerReservations(ctx context.Context, email, status string, limit int) ([]types.Reservation, error)
	CallerTickets(ctx context.Context, email, status string, limit int) ([]types.SupportTicket, error)
	SearchEvents(ctx context.Context, f EventFilter) ([]types.Event, error)
	CancelReservation(ctx context.Context, reservationID, reason string) (types.Reservation, error)

	// CreateTicket is idempotent on TicketID: a repeated create is a no-op.
	CreateTicket(ctx context.Context, rec types.SupportTicket) error
	RecentTickets(ctx context.Context, limit int) ([]types.SupportTicket, error)
	Stats(ctx context.Context) (Stats, error)

	Close() error
}

func clampLimit(limit, def int) int {
	if limit <= 0 {
		return def
	}
	if limit > 100 {
		return 100
	}
	return limit
}
