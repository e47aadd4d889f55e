package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const (
	BackendSQLite   = "sqlite"
	BackendPinecone = "pinecone"
)

type Config struct {
	GeminiAPIKey string

	VectorBackend  string
	DatabaseURL    string
	PineconeHost   string
	PineconeAPIKey string

	PDFFolder string
	HTTPPort  string
	LogLevel  string

	ChunkSize    int
	ChunkOverlap int
}

// Load reads configuration from the environment (and a .env file if present).
// It fails fast on anything the selected backend cannot run without.
func Load() *Config {
	err := godotenv.Load() // Load .env file if it exists
	if err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	cfg := &Config{
		GeminiAPIKey:   getEnv("GEMINI_API_KEY", ""),
		VectorBackend:  getEnv("VECTOR_BACKEND", BackendSQLite),
		DatabaseURL:    getEnv("DATABASE_URL", "pdfchat.db"),
		PineconeHost:   getEnv("PINECONE_HOST", ""),
		PineconeAPIKey: getEnv("PINECONE_API_KEY", ""),
		PDFFolder:      getEnv("PDF_FOLDER", "files"),
		HTTPPort:       getEnv("HTTP_PORT", "8080"),
		LogLevel:       getEnv("LOG_LEVEL", "INFO"),
		ChunkSize:      getEnvAsInt("CHUNK_SIZE", 1000),
		ChunkOverlap:   getEnvAsInt("CHUNK_OVERLAP", 200),
	}

	if cfg.GeminiAPIKey == "" {
		log.Fatal("GEMINI_API_KEY environment variable is required")
	}

	switch cfg.VectorBackend {
	case BackendSQLite:
		// DatabaseURL default is enough
	case BackendPinecone:
		if cfg.PineconeHost == "" || cfg.PineconeAPIKey == "" {
			log.Fatal("PINECONE_HOST and PINECONE_API_KEY are required when VECTOR_BACKEND=pinecone")
		}
	default:
		log.Fatalf("Unknown VECTOR_BACKEND %q (expected %q or %q)", cfg.VectorBackend, BackendSQLite, BackendPinecone)
	}

	if cfg.ChunkOverlap >= cfg.ChunkSize {
		log.Fatalf("CHUNK_OVERLAP (%d) must be smaller than CHUNK_SIZE (%d)", cfg.ChunkOverlap, cfg.ChunkSize)
	}

	return cfg
}

func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}
