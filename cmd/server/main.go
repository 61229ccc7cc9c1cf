package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"quizbot-backend/internal/config"
	"quizbot-backend/internal/database"
	"quizbot-backend/internal/handlers"
	"quizbot-backend/internal/quiz"
	"quizbot-backend/internal/repository"
	"quizbot-backend/internal/router"
	"quizbot-backend/internal/services"
)

func main() {
	log.Println("🚀 Starting QuizBot Backend...")

	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()
	log.Println("✓ Environment variables loaded")

	// ──── Step 2: Initialize PostgreSQL Connection Pool ────
	pool, err := database.NewPostgresPool(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("✗ PostgreSQL connection failed: %v", err)
	}
	defer pool.Close()
	log.Println("✓ PostgreSQL connected")

	// ──── Step 3: Initialize Redis Client ────
	redisClient, err := database.NewRedisClient(cfg.RedisURL)
	if err != nil {
		log.Fatalf("✗ Redis connection failed: %v", err)
	}
	defer redisClient.Close()
	log.Println("✓ Redis connected")

	// ──── Step 4: Run Database Migrations ────
	if err := database.RunMigrations(pool, "migrations"); err != nil {
		log.Fatalf("✗ Database migration failed: %v", err)
	}
	log.Println("✓ Database migrations applied")

	// ──── Initialize Repositories ────
	documentRepo := repository.NewDocumentRepo(pool)
	chunkRepo := repository.NewChunkRepo(pool)

	// ──── Step 5: Initialize Gemini Client ────
	geminiService, err := services.NewGeminiService(cfg.GeminiAPIKey, cfg.GeminiConcurrentReqs)
	if err != nil {
		log.Fatalf("✗ Gemini client initialization failed: %v", err)
	}
	defer geminiService.Close()
	log.Println("✓ Gemini client initialized")

	// ──── Initialize Services ────
	retriever := services.NewDocRetriever(chunkRepo, geminiService, redisClient)
	ingestService := services.NewIngestService(geminiService, documentRepo, chunkRepo)
	session := quiz.NewSession()
	assistant := services.NewAssistant(retriever, geminiService, session, cfg.RetrievalTopK, cfg.MaxContextChars)

	// ──── Initialize Handlers ────
	chatHandler := handlers.NewChatHandler(assistant)
	quizHandler := handlers.NewQuizHandler(session)
	documentHandler := handlers.NewDocumentHandler(ingestService, documentRepo, cfg.StoragePath)

	// ──── Step 6: Start HTTP Server ────
	r := router.New(chatHandler, quizHandler, documentHandler, cfg.FrontendURL)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Printf("✓ QuizBot Backend ready on http://localhost:%s", cfg.Port)
	log.Printf("  API: http://localhost:%s/api/v1", cfg.Port)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}
