package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	types "supportflow/internal/types"
)

func TestGatherer_OffTopicSkipsEveryLookup(t *testing.T) {
	search := &stubSearcher{arts: []types.KBArticle{article("kb-1", 0.9)}}
	store := &stubLookups{}
	g := &Gatherer{Search: search, Store: store}

	ticket := types.NewTicket("T-1", "Weather", "Will it rain?", "a@b.c", "R-1")
	res, conf := g.Gather(context.Background(), ticket, types.Classification{Category: types.CategoryOffTopic})

	assert.True(t, res.OffTopic())
	assert.Zero(t, conf)
	assert.Zero(t, search.calls.Load())
	assert.Zero(t, store.total())
}

func TestGatherer_KBOnlyWithoutCaller(t *testing.T) {
	search := &stubSearcher{arts: []types.KBArticle{article("kb-1", 0.8), article("kb-2", 0.6), article("kb-3", 0.4), article("kb-4", 0.2)}}
	store := &stubLookups{}
	g := &Gatherer{Search: search, Store: store}

	ticket := types.NewTicket("T-1", "Refund request", "My event was cancelled", "", "R-1")
	res, conf := g.Gather(context.Background(), ticket, types.Classification{Category: types.CategoryGeneral})

	assert.Equal(t, []string{types.ToolKBResults}, res.Keys())
	assert.Len(t, res.KBArticles(), 3)
	assert.InDelta(t, 0.8, conf, 1e-9)
	assert.Equal(t, "Refund request My event was cancelled", search.query)
	assert.Zero(t, store.total())
}

func TestGatherer_CallerAndReservationLookups(t *testing.T) {
	search := &stubSearcher{arts: []types.KBArticle{article("kb-1", 0.7)}}
	store := &stubLookups{
		caller:       types.Caller{UserID: "u1", Email: "a@b.c"},
		reservations: []types.Reservation{{ReservationID: "R-1"}},
		reservation:  types.Reservation{ReservationID: "R-1", Status: "confirmed"},
	}
	g := &Gatherer{Search: search, Store: store}

	ticket := types.NewTicket("T-1", "Cancel", "Please cancel", "a@b.c", "R-1")
	res, _ := g.Gather(context.Background(), ticket, types.Classification{Category: types.CategoryCancellation})

	assert.ElementsMatch(t, []string{
		types.ToolKBResults, types.ToolCallerInfo, types.ToolCallerReservations,
		types.ToolCallerTickets, types.ToolReservationInfo,
	}, res.Keys())
	assert.Equal(t, reservationsLimit, store.limits[types.ToolCallerReservations])
	assert.Equal(t, supportTicketLimit, store.limits[types.ToolCallerTickets])

	r, ok := res.Get(types.ToolReservationInfo)
	require.True(t, ok)
	assert.Equal(t, "confirmed", r.Payload.(types.Reservation).Status)
}

func TestGatherer_ReservationDetailOnlyForMoneyCategories(t *testing.T) {
	store := &stubLookups{}
	g := &Gatherer{Search: &stubSearcher{}, Store: store}

	ticket := types.NewTicket("T-1", "Parking", "Where do I park?", "", "R-1")
	res, _ := g.Gather(context.Background(), ticket, types.Classification{Category: types.CategoryTechnical})
	_, ok := res.Get(types.ToolReservationInfo)
	assert.False(t, ok)
	assert.Zero(t, store.total())
}

func TestGatherer_FailuresAreIsolated(t *testing.T) {
	search := &stubSearcher{err: errors.New("weaviate unavailable")}
	store := &stubLookups{
		caller: types.Caller{Email: "a@b.c"},
		errs:   map[string]error{types.ToolCallerReservations: errors.New("connection refused")},
	}
	g := &Gatherer{Search: search, Store: store}

	ticket := types.NewTicket("T-1", "Refund", "Money back please", "a@b.c", "")
	res, conf := g.Gather(context.Background(), ticket, types.Classification{Category: types.CategoryRefund})

	assert.Zero(t, conf)
	assert.Equal(t, []string{types.ToolCallerReservations, types.ToolKBResults}, res.FailedKeys())
	info, ok := res.Get(types.ToolCallerInfo)
	require.True(t, ok)
	assert.False(t, info.Failed())
	assert.Equal(t, "connection refused", res[types.ToolCallerReservations].Err)
}

func TestGatherer_TimeoutBecomesErrorMarker(t *testing.T) {
	store := &stubLookups{block: time.Second}
	g := &Gatherer{Search: &stubSearcher{}, Store: store, Timeout: 20 * time.Millisecond}

	start := time.Now()
	ticket := types.NewTicket("T-1", "Hi", "Question", "a@b.c", "")
	res, _ := g.Gather(context.Background(), ticket, types.Classification{Category: types.CategoryGeneral})

	assert.Less(t, time.Since(start), 500*time.Millisecond)
	assert.True(t, res[types.ToolCallerInfo].Failed())
	assert.Contains(t, res[types.ToolCallerInfo].Err, "deadline exceeded")
}
