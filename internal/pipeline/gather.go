package pipeline

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	t "supportflow/internal/types"
)

const (
	kbTopK             = 3
	reservationsLimit  = 10
	supportTicketLimit = 5
)

// Searcher is the knowledge-base search collaborator.
type Searcher interface {
	Search(ctx context.Context, query string, topK int) ([]t.KBArticle, error)
}

// Lookups is the read side of the data store used while gathering context.
// An empty status matches every status.
type Lookups interface {
	CallerByEmail(ctx context.Context, email string) (t.Caller, error)
	CallerReservations(ctx context.Context, email, status string, limit int) ([]t.Reservation, error)
	CallerTickets(ctx context.Context, email, status string, limit int) ([]t.SupportTicket, error)
	Reservation(ctx context.Context, reservationID string) (t.Reservation, error)
}

// Gatherer decides which lookups a ticket needs and runs them concurrently.
// Each lookup is a single call under Timeout; a failure becomes an error
// marker for its key and never aborts the others.
type Gatherer struct {
	Search  Searcher
	Store   Lookups
	Timeout time.Duration
	Log     *zap.Logger
}

// OffTopicResult is the marker set returned for off-topic tickets.
func OffTopicResult() t.ToolResultSet {
	return t.ToolResultSet{t.ToolOffTopic: t.OK(true)}
}

// Gather returns the tool results and the confidence of the best knowledge
// base match (0 when there is none).
func (g *Gatherer) Gather(ctx context.Context, ticket t.Ticket, cls t.Classification) (t.ToolResultSet, float64) {
	if cls.Category == t.CategoryOffTopic {
		return OffTopicResult(), 0
	}

	var (
		mu      sync.Mutex
		results = t.ToolResultSet{}
		eg      errgroup.Group
		log     = logger(g.Log)
	)
	run := func(key string, fn func(ctx context.Context) (any, error)) {
		eg.Go(func() error {
			cctx, cancel := g.callContext(ctx)
			defer cancel()
			start := time.Now()
			payload, err := fn(cctx)
			res := t.OK(payload)
			if err != nil {
				log.Warn("lookup failed",
					zap.String("ticket_id", ticket.ID),
					zap.String("lookup", key),
					zap.Duration("took", time.Since(start)),
					zap.Error(err))
				res = t.Failed(err)
			}
			mu.Lock()
			results[key] = res
			mu.Unlock()
			return nil
		})
	}

	run(t.ToolKBResults, func(ctx context.Context) (any, error) {
		return g.Search.Search(ctx, ticket.SearchQuery(), kbTopK)
	})
	if ticket.HasCaller() {
		email := ticket.CallerEmail
		run(t.ToolCallerInfo, func(ctx context.Context) (any, error) {
			return g.Store.CallerByEmail(ctx, email)
		})
		run(t.ToolCallerReservations, func(ctx context.Context) (any, error) {
			return g.Store.CallerReservations(ctx, email, "", reservationsLimit)
		})
		run(t.ToolCallerTickets, func(ctx context.Context) (any, error) {
			return g.Store.CallerTickets(ctx, email, "", supportTicketLimit)
		})
	}
	if ticket.HasReservation() && cls.Category.In(t.CategoryRefund, t.CategoryCancellation, t.CategoryComplaint) {
		id := ticket.ReservationID
		run(t.ToolReservationInfo, func(ctx context.Context) (any, error) {
			return g.Store.Reservation(ctx, id)
		})
	}
	_ = eg.Wait()

	return results, bestRelevance(results.KBArticles())
}

func (g *Gatherer) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if g.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, g.Timeout)
}

func bestRelevance(arts []t.KBArticle) float64 {
	best := 0.0
	for _, a := range arts {
		if a.Relevance > best {
			best = a.Relevance
		}
	}
	if best > 1 {
		best = 1
	}
	return best
}
