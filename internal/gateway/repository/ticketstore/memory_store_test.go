package ticketstore

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"supportflow/internal/types"
)

func newDemoStore(t *testing.T) *MemoryStore {
	t.Helper()
	return NewMemoryStore(DemoSeed())
}

func TestDemoSeed_Parses(t *testing.T) {
	s := DemoSeed()
	assert.NotEmpty(t, s.Callers)
	assert.NotEmpty(t, s.Reservations)
	assert.NotEmpty(t, s.Articles)
	assert.False(t, s.Reservations[0].BookingDate.IsZero())
}

func TestMemoryStore_CallerLookups(t *testing.T) {
	s := newDemoStore(t)
	ctx := context.Background()

	c, err := s.CallerByEmail(ctx, "  ADA@example.com ")
	require.NoError(t, err)
	assert.Equal(t, "u_00001", c.UserID)

	byID, err := s.CallerByID(ctx, "u_00001")
	require.NoError(t, err)
	assert.Equal(t, c, byID)

	_, err = s.CallerByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "nobody@example.com")
}

func TestMemoryStore_CallerReservations(t *testing.T) {
	s := newDemoStore(t)
	ctx := context.Background()

	all, err := s.CallerReservations(ctx, "ada@example.com", "", 10)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "r_00001", all[0].ReservationID, "newest booking first")

	one, err := s.CallerReservations(ctx, "ada@example.com", "", 1)
	require.NoError(t, err)
	assert.Len(t, one, 1)

	none, err := s.CallerReservations(ctx, "ada@example.com", "pending", 10)
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = s.CallerReservations(ctx, "ghost@example.com", "", 10)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_CreateTicketIsIdempotent(t *testing.T) {
	s := newDemoStore(t)
	ctx := context.Background()
	before, _ := s.Stats(ctx)

	rec := types.SupportTicket{TicketID: "T-1", UserEmail: "ada@example.com", Subject: "first", Category: "refund", Status: "resolved"}
	require.NoError(t, s.CreateTicket(ctx, rec))
	rec.Subject = "second"
	require.NoError(t, s.CreateTicket(ctx, rec))

	after, _ := s.Stats(ctx)
	assert.Equal(t, before.Total+1, after.Total)

	tickets, err := s.CallerTickets(ctx, "ada@example.com", "", 5)
	require.NoError(t, err)
	var found *types.SupportTicket
	for i := range tickets {
		if tickets[i].TicketID == "T-1" {
			found = &tickets[i]
		}
	}
	require.NotNil(t, found)
	assert.Equal(t, "first", found.Subject)
	assert.Equal(t, "u_00001", found.UserID)
}

func TestMemoryStore_UnknownCallerTicketIsAnonymous(t *testing.T) {
	s := newDemoStore(t)
	ctx := context.Background()
	require.NoError(t, s.CreateTicket(ctx, types.SupportTicket{TicketID: "T-2", UserEmail: "ghost@example.com"}))
	recent, err := s.RecentTickets(ctx, 1)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, AnonymousUserID, recent[0].UserID)

	assert.Error(t, s.CreateTicket(ctx, types.SupportTicket{TicketID: "  "}))
}

func TestMemoryStore_CancelReservation(t *testing.T) {
	s := newDemoStore(t)
	ctx := context.Background()

	r, err := s.CancelReservation(ctx, "r_00001", "customer request")
	require.NoError(t, err)
	assert.Equal(t, "cancelled", r.Status)

	_, err = s.CancelReservation(ctx, "r_00001", "again")
	assert.True(t, errors.Is(err, ErrAlreadyCancelled))

	_, err = s.CancelReservation(ctx, "r_missing", "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_SearchEvents(t *testing.T) {
	s := newDemoStore(t)
	ctx := context.Background()

	lisbon, err := s.SearchEvents(ctx, EventFilter{City: "lisbon"})
	require.NoError(t, err)
	require.Len(t, lisbon, 1, "cancelled events are excluded")
	assert.Equal(t, "e_00001", lisbon[0].EventID)
	assert.Equal(t, 188, lisbon[0].AvailableTickets())

	premium := false
	free, err := s.SearchEvents(ctx, EventFilter{IsPremium: &premium})
	require.NoError(t, err)
	require.Len(t, free, 1)
	assert.Equal(t, "e_00002", free[0].EventID)
}
