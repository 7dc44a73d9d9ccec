package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/patentdraft/internal/api"
	"github.com/dgallion1/patentdraft/internal/config"
	"github.com/dgallion1/patentdraft/internal/generate"
	"github.com/dgallion1/patentdraft/internal/knowledge"
	"github.com/dgallion1/patentdraft/internal/logging"
	"github.com/dgallion1/patentdraft/internal/metrics"
	"github.com/dgallion1/patentdraft/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load configuration", "error", err)
		os.Exit(1)
	}

	log, logCloser, err := logging.New(os.Stdout, cfg.LogFile, cfg.LogLevel)
	if err != nil {
		slog.Error("init logging", "error", err)
		os.Exit(1)
	}
	defer logCloser.Close()

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize clients.
	var (
		gen    generate.Generator = generate.TemplateGenerator{}
		claude *generate.ClaudeGenerator
	)
	if cfg.AnthropicAPIKey != "" {
		claude = generate.NewClaudeGenerator(cfg.AnthropicAPIKey, cfg.AnthropicModel)
		gen = claude
	} else {
		log.Warn("ANTHROPIC_API_KEY not set, sections get template drafts")
	}

	source, err := knowledge.Open(cfg.KnowledgeURL, cfg.KnowledgeAPIKey, cfg.CorpusFile, log)
	if err != nil {
		log.Error("open knowledge source", "error", err)
		os.Exit(1)
	}
	if source == nil {
		log.Warn("no knowledge source configured, examination runs without retrieval")
	}

	coll := metrics.NewCollector("pgtree")

	// Initialize pipeline.
	orch := pipeline.NewOrchestrator(cfg, gen, source, coll, log)
	orch.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(orch, claude, coll, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown. The HTTP server stops accepting drafts before the
	// workers are stopped.
	done := make(chan struct{})
	go func() {
		defer close(done)
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Warn("http shutdown", "error", err)
		}

		orch.Stop()

		if claude != nil {
			claude.Close()
		}
		if c, ok := source.(*knowledge.Client); ok {
			c.Close()
		}
	}()

	log.Info("starting patent drafting service", "port", cfg.Port, "workers", cfg.WorkerCount)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
	<-done
}
