package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	pgxvec "github.com/pgvector/pgvector-go/pgx"

	"github.com/faisal1025/Q-AChatBotAirtribe/config"
	"github.com/faisal1025/Q-AChatBotAirtribe/pipeline"
	"github.com/faisal1025/Q-AChatBotAirtribe/server"
	"github.com/faisal1025/Q-AChatBotAirtribe/vectorstore"
	"github.com/faisal1025/Q-AChatBotAirtribe/vectorstore/memory"
	pgstore "github.com/faisal1025/Q-AChatBotAirtribe/vectorstore/pgvector"
	"github.com/faisal1025/Q-AChatBotAirtribe/vectorstore/qdrant"
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	_ = godotenv.Load()

	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		slog.Error("failed to load config", "path", *cfgPath, "err", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	store, cleanup, err := buildStore(ctx, cfg)
	if err != nil {
		slog.Error("failed to build vector store", "type", cfg.VectorStore.Type, "err", err)
		os.Exit(1)
	}
	defer cleanup()

	apiKey := os.Getenv(cfg.Embedding.APIKeyEnv)
	embedder, err := pipeline.NewOpenAIEmbedder(pipeline.EmbedderConfig{
		Endpoint: cfg.Embedding.Endpoint,
		APIKey:   apiKey,
		Model:    cfg.Embedding.Model,
		Timeout:  time.Duration(cfg.Embedding.TimeoutSecs) * time.Second,
	})
	if err != nil {
		slog.Error("failed to build embedder", "err", err)
		os.Exit(1)
	}

	generator, err := pipeline.NewOpenAIGenerator(pipeline.GeneratorConfig{
		Endpoint: cfg.Generation.Endpoint,
		APIKey:   os.Getenv(cfg.Generation.APIKeyEnv),
		Model:    cfg.Generation.Model,
		Timeout:  time.Duration(cfg.Generation.TimeoutSecs) * time.Second,
	})
	if err != nil {
		slog.Error("failed to build generator", "err", err)
		os.Exit(1)
	}

	artifacts := pipeline.NewArtifactStore(cfg.Crawler.ContentDir)
	crawler := pipeline.NewCrawler(artifacts, pipeline.CrawlerConfig{
		Timeout:      time.Duration(cfg.Crawler.TimeoutSecs) * time.Second,
		RatePerSec:   cfg.Crawler.RatePerSec,
		UserAgent:    cfg.Crawler.UserAgent,
		MaxBodyBytes: cfg.Crawler.MaxBodyBytes,
	}, slog.Default())

	svc := pipeline.NewService(crawler, pipeline.NewChunker(cfg.Chunker.Size, cfg.Chunker.Overlap),
		embedder, generator, store, pipeline.ServiceConfig{
			MaxDepth:  cfg.Crawler.MaxDepth,
			BatchSize: cfg.Embedding.BatchSize,
			TopK:      cfg.TopK,
		}, slog.Default())

	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: server.New(svc, slog.Default()).Router(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	slog.Info("chatbot API listening", "addr", cfg.ListenAddr, "store", cfg.VectorStore.Type)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server failed", "err", err)
		os.Exit(1)
	}
	slog.Info("chatbot API stopped")
}

func buildStore(ctx context.Context, cfg *config.AppConfig) (vectorstore.Store, func(), error) {
	switch cfg.VectorStore.Type {
	case "pgvector":
		if cfg.VectorStore.Pgvector == nil {
			return nil, nil, fmt.Errorf("pgvector config missing")
		}
		poolCfg, err := pgxpool.ParseConfig(cfg.VectorStore.Pgvector.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid database URL: %w", err)
		}
		poolCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
			return pgxvec.RegisterTypes(ctx, conn)
		}
		pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to database: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("database ping: %w", err)
		}
		store, err := pgstore.NewStore(pool, cfg.VectorStore.Collection)
		if err != nil {
			pool.Close()
			return nil, nil, err
		}
		return store, pool.Close, nil
	case "qdrant":
		if cfg.VectorStore.Qdrant == nil {
			return nil, nil, fmt.Errorf("qdrant config missing")
		}
		store, err := qdrant.NewStore(qdrant.Config{
			URL:        cfg.VectorStore.Qdrant.URL,
			APIKey:     cfg.VectorStore.Qdrant.APIKey,
			Collection: cfg.VectorStore.Collection,
			Timeout:    time.Duration(cfg.VectorStore.Qdrant.TimeoutSecs) * time.Second,
		})
		if err != nil {
			return nil, nil, err
		}
		return store, func() {}, nil
	case "memory":
		return memory.NewStore(), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown vector store type %q", cfg.VectorStore.Type)
	}
}
