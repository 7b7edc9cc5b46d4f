package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"alfredoptarigan/eco-assessor/internal/config"
	"alfredoptarigan/eco-assessor/internal/handlers"
	"alfredoptarigan/eco-assessor/internal/repositories"
	"alfredoptarigan/eco-assessor/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()

	logger, err := config.InitLogger(cfg.Server.Env)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if !cfg.EnvFileLoaded {
		logger.Info("no .env file found, using environment and defaults")
	}

	rubric, err := services.RubricByName(cfg.Server.Rubric)
	if err != nil {
		logger.Fatal("invalid rubric", zap.Error(err))
	}
	logger.Info("config loaded",
		zap.String("env", cfg.Server.Env),
		zap.String("rubric", rubric.Name),
		zap.String("llm_provider", cfg.LLM.Provider),
		zap.String("llm_model", cfg.LLM.Model),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize retrieval
	scraper := services.NewScraperService(
		cfg.Scrape.Timeout,
		cfg.Scrape.MaxBytes,
		cfg.Scrape.RatePerSec,
		services.NewPDFParserService(),
	)
	search := services.NewSearchService(cfg.Search.URL, cfg.Search.Timeout)
	retriever := services.NewDocumentRetriever(search, scraper, cfg.Search.TopN)

	// Initialize model client
	var llm services.LLMService
	if cfg.HasAPIKey() {
		llm, err = services.NewLLMService(ctx, services.LLMOptions{
			Provider:    cfg.LLM.Provider,
			APIKey:      cfg.LLM.APIKey,
			BaseURL:     cfg.LLM.BaseURL,
			Model:       cfg.LLM.Model,
			Temperature: cfg.LLM.Temperature,
			Timeout:     cfg.LLM.Timeout,
		})
		if err != nil {
			logger.Fatal("failed to initialize model client", zap.Error(err))
		}
	} else {
		logger.Warn("API_KEY is not set, /api/assess will answer 500")
	}

	promptBuilder := services.NewPromptBuilder(rubric, services.NewTextChunker(), cfg.Scrape.MaxDocumentChars)
	assessor := services.NewAssessorService(retriever, llm, promptBuilder, rubric, services.AssessorOptions{
		MaxAttempts:        cfg.LLM.MaxAttempts,
		RetryDelay:         cfg.LLM.RetryDelay,
		SearchAlternatives: cfg.Search.Alternatives,
	})

	// Initialize history
	var (
		repo     repositories.AssessmentRepository
		recorder services.Recorder
	)
	if cfg.Database.Enabled {
		db, err := config.InitDatabase(cfg)
		if err != nil {
			logger.Fatal("failed to initialize database", zap.Error(err))
		}
		repo = repositories.NewAssessmentRepository(db)
		recorder = services.NewRecorder(repo, cfg.Recorder.Concurrency, cfg.Recorder.QueueSize)
		recorder.Start(ctx)
	}

	app := handlers.NewApp(handlers.AppConfig{
		Assess:        handlers.NewAssessHandler(assessor, recorder, cfg.HasAPIKey()),
		Result:        handlers.NewResultHandler(repo),
		AccessLogging: true,
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	done := make(chan struct{})

	go func() {
		<-quit
		logger.Info("shutting down server")
		shutdown(app, recorder)
		close(done)
	}()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	logger.Info("server starting", zap.String("addr", addr))

	if err := app.Listen(addr); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}
	<-done
}

type shutdowner interface {
	Shutdown() error
}

// shutdown stops accepting requests, lets in-flight ones finish, then
// flushes the history queue they filled.
func shutdown(app shutdowner, recorder services.Recorder) {
	if err := app.Shutdown(); err != nil {
		zap.L().Error("server forced to shutdown", zap.Error(err))
	}
	if recorder != nil {
		recorder.Stop()
	}
}
