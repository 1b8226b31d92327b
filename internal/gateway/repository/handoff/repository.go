package handoff

import (
	"context"
	"errors"
	"path"
	"strings"

	"supportflow/internal/types"
)

// Archive stores escalation packages for the human queue.
type Archive interface {
	Put(ctx context.Context, pkg types.EscalationPackage) (string, error)
	Get(ctx context.Context, ticketID string) (types.EscalationPackage, error)
	List(ctx context.Context) ([]string, error)
}

var ErrNotFound = errors.New("escalation package not found")

// objectKey files packages by priority so agents can pick the top queue.
func objectKey(pkg types.EscalationPackage) string {
	return path.Join("escalations", strings.ToLower(pkg.PriorityLabel), pkg.Ticket.ID+".json")
}
