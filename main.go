package main

import (
	"context"
	"log"
	"net/http"

	"go.uber.org/zap"

	"github.com/metaquery-ai/metaquery-engine/pkg/auth"
	"github.com/metaquery-ai/metaquery-engine/pkg/config"
	"github.com/metaquery-ai/metaquery-engine/pkg/graph"
	"github.com/metaquery-ai/metaquery-engine/pkg/handlers"
	"github.com/metaquery-ai/metaquery-engine/pkg/llm"
	"github.com/metaquery-ai/metaquery-engine/pkg/logging"
	"github.com/metaquery-ai/metaquery-engine/pkg/middleware"
	"github.com/metaquery-ai/metaquery-engine/pkg/orchestrator"
	"github.com/metaquery-ai/metaquery-engine/pkg/retrieval"
	"github.com/metaquery-ai/metaquery-engine/pkg/session"
	"github.com/metaquery-ai/metaquery-engine/pkg/warehouse"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("configuration loaded",
		zap.String("environment", cfg.Env),
		zap.String("warehouse_type", cfg.Warehouse.Type),
		zap.String("ai_provider", cfg.AI.Provider),
		zap.Bool("auth_enabled", cfg.Auth.SigningKey != ""))

	ctx := context.Background()

	graphClient, err := graph.NewClient(&cfg.Graph, logger)
	if err != nil {
		logger.Fatal("Failed to connect to graph store", zap.Error(err))
	}
	defer func() { _ = graphClient.Close(ctx) }()
	store := graph.NewStore(graphClient, logger)

	modelClient, err := llm.NewClient(&cfg.AI, logger)
	if err != nil {
		logger.Fatal("Failed to init model client", zap.Error(err))
	}

	executor, err := warehouse.New(ctx, &cfg.Warehouse, logger)
	if err != nil {
		logger.Fatal("Failed to connect to warehouse", zap.Error(err))
	}
	defer executor.Close()

	sessions, err := session.New(&cfg.Session, logger)
	if err != nil {
		logger.Fatal("Failed to init session store", zap.Error(err))
	}

	retriever := retrieval.NewMetadataService(store, modelClient, logger)
	pipeline := orchestrator.NewFromClients(retriever, modelClient, executor, sessions, cfg.Warehouse.Type, logger)

	authMW := auth.NewMiddleware(&cfg.Auth, logger)

	mux := http.NewServeMux()
	handlers.NewHealthHandler(cfg, logger).RegisterRoutes(mux)
	handlers.NewQueryHandler(pipeline, retriever, logger).RegisterRoutes(mux, authMW)
	handlers.NewSessionHandler(sessions, logger).RegisterRoutes(mux, authMW)

	handler := middleware.RequestLogger(logger)(mux)

	addr := cfg.BindAddr + ":" + cfg.Port
	logger.Info("starting metaquery-engine", zap.String("addr", addr), zap.String("version", cfg.Version))
	if err := http.ListenAndServe(addr, handler); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}
