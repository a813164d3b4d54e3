package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Keys      APIKeys
	Ai        AIConfig
	Retrieval RetrievalConfig
	Session   SessionConfig
	Tracing   TracingConfig
	Ingest    IngestConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	NatsEnabled        bool
	RedisURL           string
	RoutingFile        string // optional YAML override of routing, keywords and crisis phrases
}

type DatabaseConfig struct {
	Connection string
	LogSQL     bool
}

type APIKeys struct {
	GoogleGemini string
	OpenAI       string
}

type AIConfig struct {
	EmbeddingProvider   string // "gemini", "ollama" or "openai"
	EmbeddingModel      string
	EmbeddingBaseURL    string
	EmbeddingDimensions int

	LLMProvider string // "gemini", "ollama" or "openai"
	LLMModel    string
	LLMBaseURL  string

	IntentStrategy string // "keyword" or "llm"
}

type RetrievalConfig struct {
	TopKPerDB           int
	SimilarityThreshold float64
	MaxContextTokens    int
	FewShotExamples     int
}

type SessionConfig struct {
	Store string        // "memory" or "redis"
	TTL   time.Duration // 0 keeps sessions until cleared
}

type TracingConfig struct {
	Enabled  bool
	Endpoint string
}

type IngestConfig struct {
	DataDir       string
	NIMHDir       string
	NIMHMetadata  string
	CounselingCSV string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "8000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			NatsEnabled:        getEnvAsBool("NATS_ENABLED", false),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			RoutingFile:        getEnv("ROUTING_FILE", ""),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
			LogSQL:     getEnvAsBool("DB_LOG_SQL", false),
		},
		Keys: APIKeys{
			GoogleGemini: getEnv("GEMINI_API_KEY", ""),
			OpenAI:       getEnv("OPENAI_API_KEY", ""),
		},
		Ai: AIConfig{
			EmbeddingProvider:   getEnv("EMBEDDING_PROVIDER", "gemini"),
			EmbeddingModel:      getEnv("EMBEDDING_MODEL", ""),
			EmbeddingBaseURL:    getEnv("EMBEDDING_BASE_URL", ""),
			EmbeddingDimensions: getEnvAsInt("EMBEDDING_DIMENSIONS", 0),
			LLMProvider:         getEnv("LLM_PROVIDER", "gemini"),
			LLMModel:            getEnv("LLM_MODEL", ""),
			LLMBaseURL:          getEnv("LLM_BASE_URL", ""),
			IntentStrategy:      getEnv("INTENT_STRATEGY", "keyword"),
		},
		Retrieval: RetrievalConfig{
			TopKPerDB:           getEnvAsInt("RETRIEVAL_TOP_K_PER_DB", 3),
			SimilarityThreshold: getEnvAsFloat("RETRIEVAL_SIMILARITY_THRESHOLD", 0.7),
			MaxContextTokens:    getEnvAsInt("RETRIEVAL_MAX_CONTEXT_TOKENS", 8000),
			FewShotExamples:     getEnvAsInt("RETRIEVAL_FEW_SHOT_EXAMPLES", 2),
		},
		Session: SessionConfig{
			Store: getEnv("SESSION_STORE", "memory"),
			TTL:   getEnvAsDuration("SESSION_TTL", 0),
		},
		Tracing: TracingConfig{
			Enabled:  getEnvAsBool("OTEL_ENABLED", false),
			Endpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
		},
		Ingest: IngestConfig{
			DataDir:       getEnv("INGEST_DATA_DIR", "data/sources"),
			NIMHDir:       getEnv("INGEST_NIMH_DIR", "nimh_text_data"),
			NIMHMetadata:  getEnv("INGEST_NIMH_METADATA", "nimh_metadata.json"),
			CounselingCSV: getEnv("INGEST_COUNSELING_CSV", "dataset/counseling_conversations.csv"),
		},
	}
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

// getEnvAsDuration accepts Go durations ("30m") or plain seconds ("1800").
func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	if secs, err := strconv.Atoi(strValue); err == nil {
		return time.Duration(secs) * time.Second
	}
	return fallback
}
