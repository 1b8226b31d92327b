package ticketstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	_ "github.com/jackc/pgx/v5/stdlib"

	"supportflow/internal/types"
)

// PostgresStore implements Store on database/sql with the pgx driver.
// Caller rows are cached by email; they change rarely and every ticket
// with a known caller reads them up to four times.
type PostgresStore struct {
	db      *sql.DB
	callers *lru.Cache[string, types.Caller]

	schemaMu   sync.Mutex
	schemaDone bool
}

func OpenPostgres(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	db.SetMaxOpenConns(20)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return NewPostgresStore(db)
}

func NewPostgresStore(db *sql.DB) (*PostgresStore, error) {
	cache, err := lru.New[string, types.Caller](1024)
	if err != nil {
		return nil, err
	}
	return &PostgresStore{db: db, callers: cache}, nil
}

func (s *PostgresStore) Close() error { return s.db.Close() }

// ensureSchema creates the tables on first use. A failed attempt is not
// remembered; the next caller tries again.
func (s *PostgresStore) ensureSchema(ctx context.Context) error {
	s.schemaMu.Lock()
	defer s.schemaMu.Unlock()
	if s.schemaDone {
		return nil
	}
	if _, err := s.db.ExecContext(ctx, schemaDDL); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	s.schemaDone = true
	return nil
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS users (
  user_id TEXT PRIMARY KEY,
  email TEXT UNIQUE NOT NULL,
  full_name TEXT NOT NULL DEFAULT '',
  subscription_tier TEXT NOT NULL DEFAULT 'basic',
  subscription_status TEXT NOT NULL DEFAULT 'active',
  monthly_quota INTEGER NOT NULL DEFAULT 0,
  created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS events (
  event_id TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  category TEXT NOT NULL DEFAULT '',
  city TEXT NOT NULL DEFAULT '',
  venue_name TEXT NOT NULL DEFAULT '',
  event_date TIMESTAMP WITH TIME ZONE,
  is_premium BOOLEAN NOT NULL DEFAULT FALSE,
  total_tickets INTEGER NOT NULL DEFAULT 0,
  tickets_sold INTEGER NOT NULL DEFAULT 0,
  status TEXT NOT NULL DEFAULT 'active'
);

CREATE TABLE IF NOT EXISTS reservations (
  reservation_id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  event_id TEXT NOT NULL,
  event_title TEXT NOT NULL DEFAULT '',
  event_date TIMESTAMP WITH TIME ZONE,
  venue_name TEXT NOT NULL DEFAULT '',
  quantity INTEGER NOT NULL DEFAULT 1,
  total_price NUMERIC(10,2) NOT NULL DEFAULT 0,
  status TEXT NOT NULL DEFAULT 'confirmed',
  booking_date TIMESTAMP WITH TIME ZONE DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_reservations_user_id ON reservations (user_id);

CREATE TABLE IF NOT EXISTS support_tickets (
  ticket_id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  user_email TEXT,
  subject TEXT NOT NULL DEFAULT '',
  description TEXT NOT NULL DEFAULT '',
  category TEXT NOT NULL DEFAULT 'general',
  priority TEXT NOT NULL DEFAULT 'medium',
  status TEXT NOT NULL DEFAULT 'open',
  reservation_id TEXT,
  agent_notes TEXT,
  created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_support_tickets_user_id ON support_tickets (user_id);
CREATE INDEX IF NOT EXISTS idx_support_tickets_created_at ON support_tickets (created_at DESC);
`

type rowScanner interface {
	Scan(dest ...any) error
}

const callerColumns = `user_id, email, full_name, subscription_tier, subscription_status, monthly_quota, created_at`

func scanCaller(row rowScanner) (types.Caller, error) {
	var c types.Caller
	err := row.Scan(&c.UserID, &c.Email, &c.FullName, &c.SubscriptionTier, &c.SubscriptionStatus, &c.MonthlyQuota, &c.CreatedAt)
	return c, err
}

const reservationColumns = `reservation_id, user_id, event_id, event_title, event_date, venue_name, quantity, total_price, status, booking_date`

func scanReservation(row rowScanner) (types.Reservation, error) {
	var (
		r         types.Reservation
		eventDate sql.NullTime
	)
	err := row.Scan(&r.ReservationID, &r.UserID, &r.EventID, &r.EventTitle, &eventDate,
		&r.VenueName, &r.Quantity, &r.TotalPrice, &r.Status, &r.BookingDate)
	r.EventDate = eventDate.Time
	return r, err
}

const ticketColumns = `ticket_id, user_id, user_email, subject, description, category, priority, status, reservation_id, agent_notes, created_at`

func scanTicket(row rowScanner) (types.SupportTicket, error) {
	var (
		t                           types.SupportTicket
		email, reservation, notes sql.NullString
	)
	err := row.Scan(&t.TicketID, &t.UserID, &email, &t.Subject, &t.Description, &t.Category,
		&t.Priority, &t.Status, &reservation, &notes, &t.CreatedAt)
	t.UserEmail, t.ReservationID, t.AgentNotes = email.String, reservation.String, notes.String
	return t, err
}

func notFound(err error, what string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return err
}

func (s *PostgresStore) CallerByID(ctx context.Context, userID string) (types.Caller, error) {
	if err := s.ensureSchema(ctx); err != nil {
		return types.Caller{}, err
	}
	c, err := scanCaller(s.db.QueryRowContext(ctx,
		`SELECT `+callerColumns+` FROM users WHERE user_id = $1`, strings.TrimSpace(userID)))
	if err != nil {
		return types.Caller{}, notFound(err, "caller "+userID)
	}
	return c, nil
}

func (s *PostgresStore) CallerByEmail(ctx context.Context, email string) (types.Caller, error) {
	key := strings.ToLower(strings.TrimSpace(email))
	if c, ok := s.callers.Get(key); ok {
		return c, nil
	}
	if err := s.ensureSchema(ctx); err != nil {
		return types.Caller{}, err
	}
	c, err := scanCaller(s.db.QueryRowContext(ctx,
		`SELECT `+callerColumns+` FROM users WHERE lower(email) = $1`, key))
	if err != nil {
		return types.Caller{}, notFound(err, "caller with email "+email)
	}
	s.callers.Add(key, c)
	return c, nil
}

func (s *PostgresStore) Reservation(ctx context.Context, reservationID string) (types.Reservation, error) {
	if err := s.ensureSchema(ctx); err != nil {
		return types.Reservation{}, err
	}
	r, err := scanReservation(s.db.QueryRowContext(ctx,
		`SELECT `+reservationColumns+` FROM reservations WHERE reservation_id = $1`, strings.TrimSpace(reservationID)))
	if err != nil {
		return types.Reservation{}, notFound(err, "reservation "+reservationID)
	}
	return r, nil
}

func (s *PostgresStore) CallerReservations(ctx context.Context, email, status string, limit int) ([]types.Reservation, error) {
	c, err := s.CallerByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `SELECT `+reservationColumns+` FROM reservations
WHERE user_id = $1 AND ($2 = '' OR status = $2)
ORDER BY booking_date DESC LIMIT $3`, c.UserID, status, clampLimit(limit, 10))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []types.Reservation
	for rows.Next() {
		r, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *PostgresStore) CallerTickets(ctx context.Context, email, status string, limit int) ([]types.SupportTicket, error) {
	c, err := s.CallerByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `SELECT `+ticketColumns+` FROM support_tickets
WHERE user_id = $1 AND ($2 = '' OR status = $2)
ORDER BY created_at DESC LIMIT $3`, c.UserID, status, clampLimit(limit, 10))
	if err != nil {
		return nil, err
	}
	return collectTickets(rows)
}

func collectTickets(rows *sql.Rows) ([]types.SupportTicket, error) {
	defer rows.Close()
	var out []types.SupportTicket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *PostgresStore) SearchEvents(ctx context.Context, f EventFilter) ([]types.Event, error) {
	if err := s.ensureSchema(ctx); err != nil {
		return nil, err
	}
	q := `SELECT event_id, title, category, city, venue_name, event_date, is_premium, total_tickets, tickets_sold, status
FROM events WHERE status = 'active'`
	args := []any{}
	add := func(cond string, v any) {
		args = append(args, v)
		q += fmt.Sprintf(" AND "+cond, len(args))
	}
	if f.Category != "" {
		add("lower(category) = lower($%d)", f.Category)
	}
	if f.City != "" {
		add("lower(city) = lower($%d)", f.City)
	}
	if !f.From.IsZero() {
		add("event_date >= $%d", f.From)
	}
	if !f.To.IsZero() {
		add("event_date <= $%d", f.To)
	}
	if f.IsPremium != nil {
		add("is_premium = $%d", *f.IsPremium)
	}
	args = append(args, clampLimit(f.Limit, 10))
	q += fmt.Sprintf(" ORDER BY event_date ASC LIMIT $%d", len(args))

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []types.Event
	for rows.Next() {
		var (
			e    types.Event
			date sql.NullTime
		)
		if err := rows.Scan(&e.EventID, &e.Title, &e.Category, &e.City, &e.VenueName, &date,
			&e.IsPremium, &e.TotalTickets, &e.TicketsSold, &e.Status); err != nil {
			return nil, err
		}
		e.EventDate = date.Time
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *PostgresStore) CancelReservation(ctx context.Context, reservationID, _ string) (types.Reservation, error) {
	if err := s.ensureSchema(ctx); err != nil {
		return types.Reservation{}, err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return types.Reservation{}, err
	}
	defer func() { _ = tx.Rollback() }()

	r, err := scanReservation(tx.QueryRowContext(ctx,
		`SELECT `+reservationColumns+` FROM reservations WHERE reservation_id = $1 FOR UPDATE`, reservationID))
	if err != nil {
		return types.Reservation{}, notFound(err, "reservation "+reservationID)
	}
	if r.Status == "cancelled" {
		return r, ErrAlreadyCancelled
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE reservations SET status = 'cancelled' WHERE reservation_id = $1`, reservationID); err != nil {
		return types.Reservation{}, err
	}
	if err := tx.Commit(); err != nil {
		return types.Reservation{}, err
	}
	r.Status = "cancelled"
	return r, nil
}

func (s *PostgresStore) CreateTicket(ctx context.Context, rec types.SupportTicket) error {
	rec.TicketID = strings.TrimSpace(rec.TicketID)
	if rec.TicketID == "" {
		return fmt.Errorf("ticket_id is required")
	}
	if err := s.ensureSchema(ctx); err != nil {
		return err
	}
	rec.UserID = AnonymousUserID
	if rec.UserEmail != "" {
		if c, err := s.CallerByEmail(ctx, rec.UserEmail); err == nil {
			rec.UserID = c.UserID
		}
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO support_tickets (
  ticket_id, user_id, user_email, subject, description, category, priority, status, reservation_id, agent_notes, created_at
)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
ON CONFLICT (ticket_id) DO NOTHING`,
		rec.TicketID, rec.UserID, nullable(rec.UserEmail), rec.Subject, rec.Description, rec.Category,
		rec.Priority, rec.Status, nullable(rec.ReservationID), nullable(rec.AgentNotes), rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("create ticket %s: %w", rec.TicketID, err)
	}
	return nil
}

func (s *PostgresStore) RecentTickets(ctx context.Context, limit int) ([]types.SupportTicket, error) {
	if err := s.ensureSchema(ctx); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `SELECT `+ticketColumns+` FROM support_tickets
ORDER BY created_at DESC LIMIT $1`, clampLimit(limit, 20))
	if err != nil {
		return nil, err
	}
	return collectTickets(rows)
}

func (s *PostgresStore) Stats(ctx context.Context) (Stats, error) {
	if err := s.ensureSchema(ctx); err != nil {
		return Stats{}, err
	}
	rows, err := s.db.QueryContext(ctx, `SELECT status, category, COUNT(*) FROM support_tickets GROUP BY status, category`)
	if err != nil {
		return Stats{}, err
	}
	defer rows.Close()
	st := Stats{ByStatus: map[string]int{}, ByCategory: map[string]int{}}
	for rows.Next() {
		var (
			status, category string
			n                int
		)
		if err := rows.Scan(&status, &category, &n); err != nil {
			return Stats{}, err
		}
		st.Total += n
		st.ByStatus[status] += n
		st.ByCategory[category] += n
	}
	return st, rows.Err()
}

// LoadSeed inserts fixtures, skipping rows that already exist.
func (s *PostgresStore) LoadSeed(ctx context.Context, seed Seed) error {
	if err := s.ensureSchema(ctx); err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	for _, c := range seed.Callers {
		if _, err := tx.ExecContext(ctx, `INSERT INTO users (`+callerColumns+`)
VALUES ($1,$2,$3,$4,$5,$6,$7) ON CONFLICT (user_id) DO NOTHING`,
			c.UserID, c.Email, c.FullName, c.SubscriptionTier, c.SubscriptionStatus, c.MonthlyQuota, c.CreatedAt); err != nil {
			return fmt.Errorf("seed caller %s: %w", c.UserID, err)
		}
	}
	for _, e := range seed.Events {
		if _, err := tx.ExecContext(ctx, `INSERT INTO events (event_id, title, category, city, venue_name, event_date, is_premium, total_tickets, tickets_sold, status)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10) ON CONFLICT (event_id) DO NOTHING`,
			e.EventID, e.Title, e.Category, e.City, e.VenueName, e.EventDate, e.IsPremium, e.TotalTickets, e.TicketsSold, e.Status); err != nil {
			return fmt.Errorf("seed event %s: %w", e.EventID, err)
		}
	}
	for _, r := range seed.Reservations {
		if _, err := tx.ExecContext(ctx, `INSERT INTO reservations (`+reservationColumns+`)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10) ON CONFLICT (reservation_id) DO NOTHING`,
			r.ReservationID, r.UserID, r.EventID, r.EventTitle, r.EventDate, r.VenueName, r.Quantity, r.TotalPrice, r.Status, r.BookingDate); err != nil {
			return fmt.Errorf("seed reservation %s: %w", r.ReservationID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	for _, t := range seed.Tickets {
		if err := s.CreateTicket(ctx, t); err != nil {
			return err
		}
	}
	return nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
