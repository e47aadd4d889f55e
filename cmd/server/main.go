package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/UtshoDeyTech/pdfchat/internal/api"
	"github.com/UtshoDeyTech/pdfchat/internal/config"
	"github.com/UtshoDeyTech/pdfchat/internal/core"
	"github.com/UtshoDeyTech/pdfchat/internal/extract"
	"github.com/UtshoDeyTech/pdfchat/internal/registry"
	"github.com/UtshoDeyTech/pdfchat/internal/vectorstore"
	"github.com/UtshoDeyTech/pdfchat/internal/vectorstore/pinecone"
	"github.com/UtshoDeyTech/pdfchat/internal/vectorstore/sqlite"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Setup logging
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	if cfg.LogLevel == "DEBUG" {
		log.Println("Service starting in DEBUG mode")
	}

	// Command line flag for a one-shot reconciliation pass
	syncFlag := flag.Bool("sync", false, "Reconcile the vector store against the PDF folder and exit")
	flag.Parse()

	ctx := context.Background()

	// Initialize document registry
	reg, err := registry.NewFilesystem(cfg.PDFFolder)
	if err != nil {
		log.Fatalf("Failed to initialize document registry: %v", err)
	}

	// Initialize vector store backend
	store, err := newVectorStore(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize vector store: %v", err)
	}
	defer store.Close()

	// Handle one-shot sync if flag is set
	syncService := core.NewSyncService(reg, store)
	if *syncFlag {
		log.Println("Starting vector store synchronization...")
		report, err := syncService.Sync(ctx)
		if err != nil {
			log.Fatalf("Synchronization failed: %v", err)
		}
		log.Printf("Synchronization complete. Deleted %d vectors from %d PDFs. Exiting.", report.DeletedVectors, len(report.DeletedPDFs))
		store.Close()
		os.Exit(0)
	}

	// Initialize LLM service
	llmService, err := core.NewLLMService(ctx, cfg.GeminiAPIKey)
	if err != nil {
		log.Fatalf("Failed to initialize LLM service: %v", err)
	}
	defer llmService.Close()

	// Initialize pipeline services
	splitter := extract.NewSplitter(cfg.ChunkSize, cfg.ChunkOverlap)
	documentService := core.NewDocumentService(reg, store, llmService, extract.NewPDFExtractor(), splitter)
	queryService := core.NewQueryService(store, llmService, llmService)

	// Initialize API Handler and Router
	apiHandler := api.NewAPIHandler(documentService, queryService, syncService)
	router := api.NewRouter(apiHandler)

	// Start HTTP server
	serverAddr := fmt.Sprintf(":%s", cfg.HTTPPort)

	srv := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  30 * time.Second, // Uploads can be large
		WriteTimeout: 60 * time.Second, // Embedding and completion calls can take time
		IdleTimeout:  120 * time.Second,
	}

	// Graceful shutdown handling
	go func() {
		log.Printf("Starting server on %s. Press Ctrl+C to quit.", serverAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v\n", serverAddr, err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Give active connections time to finish.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting gracefully")
}

func newVectorStore(cfg *config.Config) (vectorstore.Store, error) {
	switch cfg.VectorBackend {
	case config.BackendPinecone:
		return pinecone.New(pinecone.Config{
			Host:   cfg.PineconeHost,
			APIKey: cfg.PineconeAPIKey,
		}), nil
	default:
		return sqlite.New(cfg.DatabaseURL)
	}
}
