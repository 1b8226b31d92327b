package ticketstore

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"supportflow/internal/types"
)

// Runs only when SUPPORTFLOW_TEST_DATABASE_URL points at a disposable database.
func TestPostgresStore_Integration(t *testing.T) {
	dsn := os.Getenv("SUPPORTFLOW_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("SUPPORTFLOW_TEST_DATABASE_URL not set")
	}
	s, err := OpenPostgres(dsn)
	require.NoError(t, err)
	defer s.Close()
	ctx := context.Background()

	require.NoError(t, s.LoadSeed(ctx, DemoSeed()))
	require.NoError(t, s.LoadSeed(ctx, DemoSeed()))

	c, err := s.CallerByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u_00001", c.UserID)

	_, err = s.Reservation(ctx, "r_does_not_exist")
	assert.ErrorIs(t, err, ErrNotFound)

	rec := types.SupportTicket{TicketID: "IT-IDEMPOTENT", UserEmail: "ada@example.com", Subject: "x", Category: "general", Priority: "low", Status: "resolved"}
	require.NoError(t, s.CreateTicket(ctx, rec))
	require.NoError(t, s.CreateTicket(ctx, rec))
	tickets, err := s.CallerTickets(ctx, "ada@example.com", "resolved", 50)
	require.NoError(t, err)
	n := 0
	for _, tk := range tickets {
		if tk.TicketID == rec.TicketID {
			n++
		}
	}
	assert.Equal(t, 1, n)
}

func TestPostgresStore_SchemaRetriedAfterFailure(t *testing.T) {
	// Nothing listens on port 1, so a live attempt fails fast with a dial error.
	s, err := OpenPostgres("postgres://supportflow:x@127.0.0.1:1/supportflow?sslmode=disable&connect_timeout=2")
	require.NoError(t, err)
	defer s.Close()

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.Reservation(cancelled, "r_00001")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)

	_, err = s.Reservation(context.Background(), "r_00001")
	require.Error(t, err)
	assert.False(t, errors.Is(err, context.Canceled), "second call reused the first failure: %v", err)
	assert.False(t, s.schemaDone)
}
