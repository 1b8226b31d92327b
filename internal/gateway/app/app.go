package app

import (
	"context"
	"time"

	"go.uber.org/zap"

	"supportflow/internal/gateway/config"
	"supportflow/internal/gateway/handler"
	"supportflow/internal/gateway/handler/rpc"
	"supportflow/internal/gateway/server"
)

const streamWordDelay = 30 * time.Millisecond

type App struct {
	server *server.Server
	engine *Engine
}

func New(ctx context.Context, cfg *config.Config, log *zap.Logger, opts ...EngineOption) (*App, error) {
	engine, err := NewEngine(ctx, cfg, log, opts...)
	if err != nil {
		return nil, err
	}

	// Routing & Server
	mux := server.NewMux(server.Handlers{
		Tickets: handler.NewTicketHandler(engine, engine.Store, log),
		Chat:    handler.NewChatHandler(engine, log),
		Stream:  handler.NewStreamHandler(engine, streamWordDelay, log),
		RPC:     rpc.NewTicketHandler(engine),
		Metrics: engine.Metrics.Handler(),
	}, log)
	srv := server.New(cfg.Port, mux, log)

	return &App{server: srv, engine: engine}, nil
}

func (a *App) Start() error {
	return a.server.Start()
}

func (a *App) Shutdown(ctx context.Context) error {
	err := a.server.Shutdown(ctx)
	if cerr := a.engine.Close(); err == nil {
		err = cerr
	}
	return err
}
