package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"minuta/internal/ai"
	"minuta/internal/config"
	"minuta/internal/handler"
	"minuta/internal/knowledge"
	"minuta/internal/middleware"
	"minuta/internal/service"
	"minuta/internal/storage"
	"minuta/internal/store"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg := config.Load()

	// Setup structured logging
	logLevel := slog.LevelInfo
	if cfg.Environment == "dev" {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"db_path", cfg.DBPath,
	)

	// Storage adapter
	kv, err := storage.NewSQLite(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open storage: %v", err)
	}
	defer kv.Close()

	// Document store and knowledge base
	docStore, err := store.New(kv, logger)
	if err != nil {
		log.Fatalf("Failed to load document store: %v", err)
	}
	base, err := knowledge.NewBase(kv, logger)
	if err != nil {
		log.Fatalf("Failed to load knowledge base: %v", err)
	}
	pipeline := knowledge.NewPipeline(cfg.ChunkBudget, logger)

	// Generative text client
	ctx := context.Background()
	var generator ai.Generator = ai.Disabled{}
	if cfg.GeminiAPIKey != "" {
		gemini, err := ai.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			log.Fatalf("Failed to create Gemini client: %v", err)
		}
		defer gemini.Close()
		generator = gemini
	} else {
		logger.Warn("GEMINI_API_KEY not set: generation endpoints will fail until configured")
	}

	// Services
	documentService := service.NewDocumentService(docStore, logger)
	knowledgeService := service.NewKnowledgeService(pipeline, base, logger)
	editors := service.NewEditors(docStore, cfg.AutosaveDebounce, cfg.AutosaveInterval, logger)
	generationService := service.NewGenerationService(generator, documentService, knowledgeService, editors, logger)

	// Handlers
	docHandler := handler.NewDocumentHandler(documentService, logger)
	knowledgeHandler := handler.NewKnowledgeHandler(knowledgeService, logger)
	editorHandler := handler.NewEditorHandler(editors, logger)
	generateHandler := handler.NewGenerateHandler(generationService, logger)

	logger.Info("services initialized")

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", docHandler.HealthCheck)

	// Section schema routes
	mux.HandleFunc("GET /api/schemas/{type}", docHandler.GetSchema)

	// Document routes
	mux.HandleFunc("GET /api/documents/{type}", docHandler.ListDocuments)
	mux.HandleFunc("POST /api/documents/{type}", docHandler.CreateDocument)
	mux.HandleFunc("GET /api/documents/{type}/{id}", docHandler.GetDocument)
	mux.HandleFunc("PUT /api/documents/{type}/{id}", docHandler.UpdateDocument)
	mux.HandleFunc("PATCH /api/documents/{type}/{id}", docHandler.RenameDocument)
	mux.HandleFunc("DELETE /api/documents/{type}/{id}", docHandler.DeleteDocument)
	mux.HandleFunc("GET /api/documents/{type}/{id}/history", docHandler.GetHistory)
	mux.HandleFunc("GET /api/documents/{type}/{id}/export", docHandler.ExportDocument)
	mux.HandleFunc("GET /api/documents/etp/{id}/context", docHandler.GetParentContext)

	// Knowledge-base routes
	mux.HandleFunc("POST /api/knowledge", knowledgeHandler.Upload)
	mux.HandleFunc("GET /api/knowledge", knowledgeHandler.List)
	mux.HandleFunc("PATCH /api/knowledge/{name}", knowledgeHandler.SetSelected)
	mux.HandleFunc("DELETE /api/knowledge/{name}", knowledgeHandler.Delete)

	// Editing-session routes
	mux.HandleFunc("POST /api/editor/{type}/{id}", editorHandler.Open)
	mux.HandleFunc("PUT /api/editor/{type}/{id}/sections/{section}", editorHandler.EditSection)
	mux.HandleFunc("DELETE /api/editor/{type}/{id}/sections/{section}/generation", editorHandler.CancelSection)
	mux.HandleFunc("DELETE /api/editor/{type}/{id}", editorHandler.Close)

	// Generation routes
	mux.HandleFunc("POST /api/documents/{type}/{id}/generate/draft", generateHandler.Draft)
	mux.HandleFunc("POST /api/documents/{type}/{id}/generate/refine", generateHandler.Refine)
	mux.HandleFunc("POST /api/documents/{type}/{id}/generate/risks", generateHandler.Risks)
	mux.HandleFunc("POST /api/documents/{type}/{id}/generate/compliance", generateHandler.Compliance)
	mux.HandleFunc("POST /api/documents/{type}/{id}/generate/summary", generateHandler.Summary)

	// Build middleware chain (applied in reverse order, they wrap each other)
	var h http.Handler = mux
	h = middleware.RequestLog(logger)(h)
	h = middleware.Recovery(logger)(h)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept"},
		AllowCredentials: true,
	})
	h = corsHandler.Handler(h)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second, // generation calls can be slow
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT/SIGTERM
	shutdownCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	<-shutdownCtx.Done()
	logger.Info("shutting down")

	timeoutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(timeoutCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}
