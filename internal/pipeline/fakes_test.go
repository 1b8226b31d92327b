package pipeline

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	types "supportflow/internal/types"
)

type stubSearcher struct {
	arts  []types.KBArticle
	err   error
	calls atomic.Int32
	query string
	mu    sync.Mutex
}

func (s *stubSearcher) Search(ctx context.Context, query string, topK int) ([]types.KBArticle, error) {
	s.calls.Add(1)
	s.mu.Lock()
	s.query = query
	s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	if len(s.arts) > topK {
		return s.arts[:topK], nil
	}
	return s.arts, nil
}

type stubLookups struct {
	caller       types.Caller
	reservations []types.Reservation
	tickets      []types.SupportTicket
	reservation  types.Reservation
	errs         map[string]error
	block        time.Duration

	mu     sync.Mutex
	calls  map[string]int
	limits map[string]int
}

func (s *stubLookups) record(key string, limit int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.calls == nil {
		s.calls = map[string]int{}
		s.limits = map[string]int{}
	}
	s.calls[key]++
	s.limits[key] = limit
	return s.errs[key]
}

func (s *stubLookups) wait(ctx context.Context) error {
	if s.block <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(s.block):
		return nil
	}
}

func (s *stubLookups) total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		n += c
	}
	return n
}

func (s *stubLookups) CallerByEmail(ctx context.Context, email string) (types.Caller, error) {
	if err := s.record(types.ToolCallerInfo, 0); err != nil {
		return types.Caller{}, err
	}
	if err := s.wait(ctx); err != nil {
		return types.Caller{}, err
	}
	return s.caller, nil
}

func (s *stubLookups) CallerReservations(ctx context.Context, email, status string, limit int) ([]types.Reservation, error) {
	if err := s.record(types.ToolCallerReservations, limit); err != nil {
		return nil, err
	}
	return s.reservations, nil
}

func (s *stubLookups) CallerTickets(ctx context.Context, email, status string, limit int) ([]types.SupportTicket, error) {
	if err := s.record(types.ToolCallerTickets, limit); err != nil {
		return nil, err
	}
	return s.tickets, nil
}

func (s *stubLookups) Reservation(ctx context.Context, id string) (types.Reservation, error) {
	if err := s.record(types.ToolReservationInfo, 0); err != nil {
		return types.Reservation{}, err
	}
	return s.reservation, nil
}

func article(id string, relevance float64) types.KBArticle {
	return types.KBArticle{ArticleID: id, Title: "Article " + id, Content: "Body of " + id, Category: "refund", Relevance: relevance}
}
