package server

import (
	"net/http"

	"go.uber.org/zap"

	"supportflow/internal/gateway/handler"
	"supportflow/internal/gateway/handler/rpc"
	"supportflow/internal/gateway/middleware"
)

type Handlers struct {
	Tickets *handler.TicketHandler
	Chat    *handler.ChatHandler
	Stream  *handler.StreamHandler
	RPC     *rpc.TicketHandler
	Metrics http.Handler
}

func NewMux(h Handlers, log *zap.Logger) http.Handler {
	mux := http.NewServeMux()

	// RPC Handlers
	mux.Handle(h.RPC.Handler())

	// HTTP Handlers
	mux.HandleFunc("/v1/tickets", h.Tickets.HandleProcess)
	mux.HandleFunc("/v1/tickets/recent", h.Tickets.HandleRecent)
	mux.HandleFunc("/v1/tickets/stats", h.Tickets.HandleStats)
	mux.HandleFunc("/chat", h.Chat.HandleChat)
	mux.HandleFunc("/chat/stream", h.Stream.HandleStream)

	// Ops Handlers
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok","service":"supportflow"}`))
	})
	if h.Metrics != nil {
		mux.Handle("/metrics", h.Metrics)
	}

	// Middleware
	return middleware.CORS(middleware.AccessLog(log)(mux))
}
