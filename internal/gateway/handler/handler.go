package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"supportflow/internal/gateway/repository/ticketstore"
	"supportflow/internal/types"
)

// Processor runs one ticket through the workflow. It never fails; problems
// surface as an escalated outcome.
type Processor interface {
	Process(ctx context.Context, ticket types.Ticket) types.WorkflowOutcome
}

// TicketReader is the read side of the data store used by the operator routes.
type TicketReader interface {
	RecentTickets(ctx context.Context, limit int) ([]types.SupportTicket, error)
	Stats(ctx context.Context) (ticketstore.Stats, error)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
