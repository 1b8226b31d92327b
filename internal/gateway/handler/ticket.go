package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"supportflow/internal/types"
)

const defaultRecentLimit = 20

type TicketHandler struct {
	proc  Processor
	store TicketReader
	log   *zap.Logger
}

func NewTicketHandler(proc Processor, store TicketReader, log *zap.Logger) *TicketHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &TicketHandler{proc: proc, store: store, log: log}
}

type ticketRequest struct {
	TicketID      string `json:"ticket_id"`
	Subject       string `json:"subject"`
	Description   string `json:"description"`
	CallerEmail   string `json:"caller_email"`
	ReservationID string `json:"reservation_id"`
}

// toTicket validates the inbound fields and assigns an id when the
// caller did not supply one.
func (in ticketRequest) toTicket() (types.Ticket, bool) {
	if strings.TrimSpace(in.Subject) == "" && strings.TrimSpace(in.Description) == "" {
		return types.Ticket{}, false
	}
	id := strings.TrimSpace(in.TicketID)
	if id == "" {
		id = types.NewTicketID("TKT")
	}
	return types.NewTicket(id, in.Subject, in.Description, in.CallerEmail, in.ReservationID), true
}

func (h *TicketHandler) HandleProcess(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var in ticketRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	ticket, ok := in.toTicket()
	if !ok {
		http.Error(w, "subject or description is required", http.StatusBadRequest)
		return
	}
	out := h.proc.Process(r.Context(), ticket)
	h.log.Info("ticket processed",
		zap.String("ticket_id", out.TicketID),
		zap.String("status", string(out.FinalStatus)),
		zap.Bool("saved", out.TicketSaved))
	writeJSON(w, http.StatusOK, out)
}

func (h *TicketHandler) HandleRecent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	limit := defaultRecentLimit
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = n
	}
	tickets, err := h.store.RecentTickets(r.Context(), limit)
	if err != nil {
		h.log.Error("recent tickets", zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if tickets == nil {
		tickets = []types.SupportTicket{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"tickets": tickets})
}

func (h *TicketHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	st, err := h.store.Stats(r.Context())
	if err != nil {
		h.log.Error("ticket stats", zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, st)
}
