package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	streamWriteWait = 10 * time.Second
	streamReadWait  = 60 * time.Second
)

var streamUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

type streamFrame struct {
	Type       string  `json:"type"`
	TicketID   string  `json:"ticket_id,omitempty"`
	Status     string  `json:"status,omitempty"`
	Category   string  `json:"category,omitempty"`
	Urgency    string  `json:"urgency,omitempty"`
	Sentiment  string  `json:"sentiment,omitempty"`
	Confidence float64 `json:"confidence,omitempty"`
	Content    string  `json:"content,omitempty"`
	Message    string  `json:"message,omitempty"`
}

// StreamHandler answers chat messages over a WebSocket. Each inbound chat
// request yields one metadata frame, the reply split into word frames and a
// done frame.
type StreamHandler struct {
	proc      Processor
	log       *zap.Logger
	wordDelay time.Duration
}

func NewStreamHandler(proc Processor, wordDelay time.Duration, log *zap.Logger) *StreamHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &StreamHandler{proc: proc, log: log, wordDelay: wordDelay}
}

func (h *StreamHandler) HandleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := streamUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ctx := r.Context()
	for {
		if err := conn.SetReadDeadline(time.Now().Add(streamReadWait)); err != nil {
			return
		}
		var in chatRequest
		if err := conn.ReadJSON(&in); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.log.Debug("chat stream read", zap.Error(err))
			}
			return
		}
		if strings.TrimSpace(in.Message) == "" {
			if err := h.write(conn, streamFrame{Type: "error", Message: "message is required"}); err != nil {
				return
			}
			continue
		}
		if err := h.answer(ctx, conn, in); err != nil {
			h.log.Debug("chat stream write", zap.Error(err))
			return
		}
	}
}

func (h *StreamHandler) answer(ctx context.Context, conn *websocket.Conn, in chatRequest) error {
	out := toChatResponse(h.proc.Process(ctx, chatTicket(in)))
	meta := streamFrame{
		Type:       "metadata",
		TicketID:   out.TicketID,
		Status:     out.Status,
		Category:   out.Category,
		Urgency:    out.Urgency,
		Sentiment:  out.Sentiment,
		Confidence: out.Confidence,
	}
	if err := h.write(conn, meta); err != nil {
		return err
	}
	for i, word := range strings.Split(out.Response, " ") {
		if i > 0 {
			word = " " + word
		}
		if err := h.write(conn, streamFrame{Type: "content", Content: word}); err != nil {
			return err
		}
		if h.wordDelay > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(h.wordDelay):
			}
		}
	}
	return h.write(conn, streamFrame{Type: "done", TicketID: out.TicketID})
}

func (h *StreamHandler) write(conn *websocket.Conn, f streamFrame) error {
	if err := conn.SetWriteDeadline(time.Now().Add(streamWriteWait)); err != nil {
		return err
	}
	return conn.WriteJSON(f)
}
