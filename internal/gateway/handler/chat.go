package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"supportflow/internal/types"
)

const chatSubjectRunes = 100

type chatRequest struct {
	Message       string `json:"message"`
	Email         string `json:"email,omitempty"`
	ReservationID string `json:"reservation_id,omitempty"`
}

type chatResponse struct {
	TicketID   string  `json:"ticket_id"`
	Status     string  `json:"status"`
	Response   string  `json:"response"`
	Category   string  `json:"category"`
	Urgency    string  `json:"urgency"`
	Sentiment  string  `json:"sentiment"`
	Confidence float64 `json:"confidence"`
}

// chatTicket turns a free-form message into a ticket: the subject is the
// first hundred characters, the description the whole message.
func chatTicket(in chatRequest) types.Ticket {
	msg := strings.TrimSpace(in.Message)
	subject := msg
	if r := []rune(msg); len(r) > chatSubjectRunes {
		subject = string(r[:chatSubjectRunes])
	}
	return types.NewTicket(types.NewTicketID("CHAT"), subject, msg, in.Email, in.ReservationID)
}

func toChatResponse(out types.WorkflowOutcome) chatResponse {
	return chatResponse{
		TicketID:   out.TicketID,
		Status:     string(out.FinalStatus),
		Response:   out.FinalResponse,
		Category:   string(out.Classification.Category),
		Urgency:    string(out.Classification.Urgency),
		Sentiment:  string(out.Classification.Sentiment),
		Confidence: out.RagConfidence,
	}
}

type ChatHandler struct {
	proc Processor
	log  *zap.Logger
}

func NewChatHandler(proc Processor, log *zap.Logger) *ChatHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &ChatHandler{proc: proc, log: log}
}

func (h *ChatHandler) HandleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var in chatRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(in.Message) == "" {
		http.Error(w, "message is required", http.StatusBadRequest)
		return
	}
	out := h.proc.Process(r.Context(), chatTicket(in))
	writeJSON(w, http.StatusOK, toChatResponse(out))
}
