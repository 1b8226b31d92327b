package app

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"supportflow/internal/events"
	"supportflow/internal/gateway/config"
	"supportflow/internal/gateway/repository/handoff"
	"supportflow/internal/gateway/repository/ticketstore"
	"supportflow/internal/llm"
	"supportflow/internal/metrics"
	"supportflow/internal/pipeline"
	"supportflow/internal/search"
	"supportflow/internal/types"
	"supportflow/internal/workflow"
)

// Engine bundles the workflow controller with the backends it was built on.
// The gateway server and supportctl share it.
type Engine struct {
	Controller *workflow.Controller
	Store      ticketstore.Store
	Searcher   search.Searcher
	Indexer    search.Indexer
	Archive    handoff.Archive
	Publisher  events.Publisher
	Metrics    *metrics.Workflow
	LLM        llm.LLMClient

	log     *zap.Logger
	closers []func() error
}

// EngineOption overrides a collaborator before wiring, mostly for tests.
type EngineOption func(*engineOverrides)

type engineOverrides struct {
	llm   llm.LLMClient
	store ticketstore.Store
}

func WithLLM(c llm.LLMClient) EngineOption {
	return func(o *engineOverrides) { o.llm = c }
}

func WithStore(s ticketstore.Store) EngineOption {
	return func(o *engineOverrides) { o.store = s }
}

func NewEngine(ctx context.Context, cfg *config.Config, log *zap.Logger, opts ...EngineOption) (*Engine, error) {
	if log == nil {
		log = zap.NewNop()
	}
	var ov engineOverrides
	for _, o := range opts {
		o(&ov)
	}

	e := &Engine{log: log, Metrics: metrics.NewWorkflow()}
	ok := false
	defer func() {
		if !ok {
			_ = e.Close()
		}
	}()

	seed, err := loadSeed(cfg)
	if err != nil {
		return nil, err
	}

	e.Store = ov.store
	if e.Store == nil {
		if e.Store, err = initStore(ctx, cfg, seed, log); err != nil {
			return nil, err
		}
	}
	e.closers = append(e.closers, e.Store.Close)

	if err := e.initSearch(ctx, cfg, seed.Articles); err != nil {
		return nil, err
	}

	if e.Archive, err = chooseArchive(cfg, log); err != nil {
		return nil, err
	}
	e.Publisher = choosePublisher(cfg, log)
	e.closers = append(e.closers, e.Publisher.Close)

	e.LLM = ov.llm
	if e.LLM == nil {
		e.LLM, err = llm.New(ctx, llm.Options{
			Provider:      cfg.LLM.Provider,
			Model:         cfg.LLM.Model,
			APIKey:        cfg.LLM.APIKey,
			Temperature:   cfg.LLM.Temperature,
			MaxTokens:     cfg.LLM.MaxTokens,
			Timeout:       cfg.LLM.Timeout,
			RetryAttempts: cfg.LLM.RetryAttempts,
			RPS:           cfg.LLM.RPS,
			Burst:         cfg.LLM.Burst,
		}, log)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize llm: %w", err)
		}
	}
	e.closers = append(e.closers, e.LLM.Close)

	ctrl, err := workflow.New(workflow.Deps{
		Classifier: &pipeline.Classifier{LLM: e.LLM, Timeout: cfg.LLM.Timeout, Log: log},
		Gatherer:   &pipeline.Gatherer{Search: e.Searcher, Store: e.Store, Timeout: cfg.Search.LookupTimeout, Log: log},
		Resolver:   &pipeline.Resolver{LLM: e.LLM, Rules: pipeline.NewRuleEngine(), Timeout: cfg.LLM.Timeout, Log: log},
		Escalator:  &pipeline.Escalator{LLM: e.LLM, Timeout: cfg.LLM.Timeout, Log: log},
		Store:      e.Store,
		Archive:    e.Archive,
		Publisher:  e.Publisher,
		Metrics:    e.Metrics,
		Log:        log,
	})
	if err != nil {
		return nil, err
	}
	e.Controller = ctrl
	ok = true
	return e, nil
}

func (e *Engine) Process(ctx context.Context, ticket types.Ticket) types.WorkflowOutcome {
	return e.Controller.Process(ctx, ticket)
}

// Close releases backends in reverse construction order.
func (e *Engine) Close() error {
	var first error
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	e.closers = nil
	return first
}

func loadSeed(cfg *config.Config) (ticketstore.Seed, error) {
	if path := strings.TrimSpace(cfg.SeedFile); path != "" {
		seed, err := ticketstore.LoadSeedFile(path)
		if err != nil {
			return ticketstore.Seed{}, fmt.Errorf("failed to load seed: %w", err)
		}
		return seed, nil
	}
	return ticketstore.DemoSeed(), nil
}

func initStore(ctx context.Context, cfg *config.Config, seed ticketstore.Seed, log *zap.Logger) (ticketstore.Store, error) {
	dsn := strings.TrimSpace(cfg.DatabaseURL)
	if dsn == "" {
		log.Info("data store: in-memory", zap.Int("callers", len(seed.Callers)))
		return ticketstore.NewMemoryStore(seed), nil
	}
	store, err := ticketstore.OpenPostgres(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	if strings.TrimSpace(cfg.SeedFile) != "" {
		if err := store.LoadSeed(ctx, seed); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("failed to seed db: %w", err)
		}
	}
	log.Info("data store: postgres")
	return store, nil
}

func (e *Engine) initSearch(ctx context.Context, cfg *config.Config, articles []types.KBArticle) error {
	var origin search.Searcher
	if host := strings.TrimSpace(cfg.Search.WeaviateHost); host != "" {
		w, err := search.NewWeaviateSearcher(host, cfg.Search.WeaviateScheme, cfg.Search.WeaviateAPIKey, cfg.Search.Class, e.log)
		if err != nil {
			return fmt.Errorf("failed to initialize weaviate: %w", err)
		}
		origin, e.Indexer = w, w
		e.log.Info("kb search: weaviate", zap.String("host", host), zap.String("class", cfg.Search.Class))
	} else {
		m := search.NewMemorySearcher(articles...)
		origin, e.Indexer = m, m
		e.log.Info("kb search: in-memory", zap.Int("articles", len(articles)))
	}

	if url := strings.TrimSpace(cfg.Search.RedisURL); url != "" {
		client, err := search.NewRedisClient(url)
		if err != nil {
			return fmt.Errorf("failed to initialize redis: %w", err)
		}
		rc := search.NewRedisCache(origin, client, cfg.Search.CacheTTL, e.log)
		e.closers = append(e.closers, rc.Close)
		origin = rc
	}
	if cfg.Search.CacheSize > 0 {
		origin = search.NewCachedSearcher(origin, cfg.Search.CacheSize, cfg.Search.CacheTTL)
	}
	e.Searcher = origin
	return nil
}

func chooseArchive(cfg *config.Config, log *zap.Logger) (handoff.Archive, error) {
	if !cfg.Archive.CanUseS3() {
		log.Info("escalation archive: in-memory")
		return handoff.NewMemoryArchive(), nil
	}
	s3Cfg := handoff.S3Config{
		Endpoint:  cfg.Archive.Endpoint,
		Region:    cfg.Archive.Region,
		AccessKey: cfg.Archive.AccessKey,
		SecretKey: cfg.Archive.SecretKey,
		Bucket:    cfg.Archive.Bucket,
		UseSSL:    cfg.Archive.UseSSL,
	}
	a, err := handoff.NewS3Archive(s3Cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize escalation archive: %w", err)
	}
	log.Info("escalation archive: s3", zap.String("bucket", s3Cfg.Bucket), zap.String("endpoint", s3Cfg.Endpoint))
	return a, nil
}

func choosePublisher(cfg *config.Config, log *zap.Logger) events.Publisher {
	if !cfg.Kafka.Enabled() {
		return events.NopPublisher{}
	}
	log.Info("outcome events: kafka", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.Topic))
	return events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
}
