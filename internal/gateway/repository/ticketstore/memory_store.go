package ticketstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"supportflow/internal/types"
)

// MemoryStore keeps everything in maps. It backs local runs and tests.
type MemoryStore struct {
	mu           sync.RWMutex
	callers      map[string]types.Caller // by user id
	byEmail      map[string]string       // lower(email) -> user id
	reservations map[string]types.Reservation
	events       map[string]types.Event
	tickets      map[string]types.SupportTicket
}

func NewMemoryStore(seed Seed) *MemoryStore {
	s := &MemoryStore{
		callers:      map[string]types.Caller{},
		byEmail:      map[string]string{},
		reservations: map[string]types.Reservation{},
		events:       map[string]types.Event{},
		tickets:      map[string]types.SupportTicket{},
	}
	for _, c := range seed.Callers {
		s.callers[c.UserID] = c
		s.byEmail[strings.ToLower(c.Email)] = c.UserID
	}
	for _, e := range seed.Events {
		s.events[e.EventID] = e
	}
	for _, r := range seed.Reservations {
		s.reservations[r.ReservationID] = r
	}
	for _, t := range seed.Tickets {
		s.tickets[t.TicketID] = t
	}
	return s
}

func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) CallerByID(_ context.Context, userID string) (types.Caller, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.callers[strings.TrimSpace(userID)]
	if !ok {
		return types.Caller{}, fmt.Errorf("caller %s: %w", userID, ErrNotFound)
	}
	return c, nil
}

func (s *MemoryStore) CallerByEmail(_ context.Context, email string) (types.Caller, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.callerByEmailLocked(email)
}

func (s *MemoryStore) callerByEmailLocked(email string) (types.Caller, error) {
	id, ok := s.byEmail[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return types.Caller{}, fmt.Errorf("caller with email %s: %w", email, ErrNotFound)
	}
	return s.callers[id], nil
}

func (s *MemoryStore) Reservation(_ context.Context, reservationID string) (types.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.reservations[strings.TrimSpace(reservationID)]
	if !ok {
		return types.Reservation{}, fmt.Errorf("reservation %s: %w", reservationID, ErrNotFound)
	}
	return r, nil
}

func (s *MemoryStore) CallerReservations(_ context.Context, email, status string, limit int) ([]types.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, err := s.callerByEmailLocked(email)
	if err != nil {
		return nil, err
	}
	var out []types.Reservation
	for _, r := range s.reservations {
		if r.UserID != c.UserID || (status != "" && r.Status != status) {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BookingDate.After(out[j].BookingDate) })
	if n := clampLimit(limit, 10); len(out) > n {
		out = out[:n]
	}
	return out, nil
}

func (s *MemoryStore) CallerTickets(_ context.Context, email, status string, limit int) ([]types.SupportTicket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, err := s.callerByEmailLocked(email)
	if err != nil {
		return nil, err
	}
	var out []types.SupportTicket
	for _, t := range s.tickets {
		if t.UserID != c.UserID || (status != "" && t.Status != status) {
			continue
		}
		out = append(out, t)
	}
	sortNewestFirst(out)
	if n := clampLimit(limit, 10); len(out) > n {
		out = out[:n]
	}
	return out, nil
}

func (s *MemoryStore) SearchEvents(_ context.Context, f EventFilter) ([]types.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []types.Event
	for _, e := range s.events {
		if e.Status != "active" {
			continue
		}
		if f.Category != "" && !strings.EqualFold(e.Category, f.Category) {
			continue
		}
		if f.City != "" && !strings.EqualFold(e.City, f.City) {
			continue
		}
		if !f.From.IsZero() && e.EventDate.Before(f.From) {
			continue
		}
		if !f.To.IsZero() && e.EventDate.After(f.To) {
			continue
		}
		if f.IsPremium != nil && e.IsPremium != *f.IsPremium {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EventDate.Before(out[j].EventDate) })
	if n := clampLimit(f.Limit, 10); len(out) > n {
		out = out[:n]
	}
	return out, nil
}

func (s *MemoryStore) CancelReservation(_ context.Context, reservationID, _ string) (types.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reservations[reservationID]
	if !ok {
		return types.Reservation{}, fmt.Errorf("reservation %s: %w", reservationID, ErrNotFound)
	}
	if r.Status == "cancelled" {
		return r, ErrAlreadyCancelled
	}
	r.Status = "cancelled"
	s.reservations[reservationID] = r
	return r, nil
}

func (s *MemoryStore) CreateTicket(_ context.Context, rec types.SupportTicket) error {
	rec.TicketID = strings.TrimSpace(rec.TicketID)
	if rec.TicketID == "" {
		return fmt.Errorf("ticket_id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.tickets[rec.TicketID]; exists {
		return nil
	}
	rec.UserID = AnonymousUserID
	if rec.UserEmail != "" {
		if c, err := s.callerByEmailLocked(rec.UserEmail); err == nil {
			rec.UserID = c.UserID
		}
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	s.tickets[rec.TicketID] = rec
	return nil
}

func (s *MemoryStore) RecentTickets(_ context.Context, limit int) ([]types.SupportTicket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]types.SupportTicket, 0, len(s.tickets))
	for _, t := range s.tickets {
		out = append(out, t)
	}
	sortNewestFirst(out)
	if n := clampLimit(limit, 20); len(out) > n {
		out = out[:n]
	}
	return out, nil
}

func (s *MemoryStore) Stats(_ context.Context) (Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := Stats{ByStatus: map[string]int{}, ByCategory: map[string]int{}}
	for _, t := range s.tickets {
		st.Total++
		st.ByStatus[t.Status]++
		st.ByCategory[t.Category]++
	}
	return st, nil
}

func sortNewestFirst(ts []types.SupportTicket) {
	sort.Slice(ts, func(i, j int) bool {
		if !ts[i].CreatedAt.Equal(ts[j].CreatedAt) {
			return ts[i].CreatedAt.After(ts[j].CreatedAt)
		}
		return ts[i].TicketID < ts[j].TicketID
	})
}
