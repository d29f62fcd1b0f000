package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Qdrant   QdrantConfig
	Gemini   GeminiConfig
	Tika     TikaConfig
	Matcher  MatcherConfig
	Chat     ChatConfig
	Upload   UploadConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

type QdrantConfig struct {
	URL        string
	APIKey     string
	Collection string
}

type GeminiConfig struct {
	APIKey         string
	Model          string
	EmbeddingModel string
	EmbeddingDim   uint64
	MaxRetries     int
}

type TikaConfig struct {
	URL string
}

type MatcherConfig struct {
	DefaultTopK      int
	RescoreTimeout   time.Duration
	AnalysisTimeout  time.Duration
	EmbedConcurrency int
}

type ChatConfig struct {
	MaxTurns      int
	HistoryBudget int
	Timeout       time.Duration
}

type UploadConfig struct {
	MaxFileSize int64
}

func Load() *Config {
	// No .env file is fine; environment variables still apply.
	_ = godotenv.Load()

	return &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "3000"),
			Env:  getEnv("ENV", "development"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "job_matcher"),
		},
		Qdrant: QdrantConfig{
			URL:        getEnv("QDRANT_URL", "http://localhost:6333"),
			APIKey:     getEnv("QDRANT_API_KEY", ""),
			Collection: getEnv("QDRANT_COLLECTION", "job_postings"),
		},
		Gemini: GeminiConfig{
			APIKey:         getEnv("GEMINI_API_KEY", ""),
			Model:          getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
			EmbeddingModel: getEnv("EMBEDDING_MODEL", "text-embedding-004"),
			EmbeddingDim:   uint64(getEnvAsInt64("EMBEDDING_DIM", 768)),
			MaxRetries:     getEnvAsInt("LLM_MAX_RETRIES", 3),
		},
		Tika: TikaConfig{
			URL: getEnv("TIKA_URL", ""),
		},
		Matcher: MatcherConfig{
			DefaultTopK:      getEnvAsInt("MATCH_TOP_K", 10),
			RescoreTimeout:   getEnvAsDuration("RESCORE_TIMEOUT", "30s"),
			AnalysisTimeout:  getEnvAsDuration("ANALYSIS_TIMEOUT", "30s"),
			EmbedConcurrency: getEnvAsInt("EMBED_CONCURRENCY", 3),
		},
		Chat: ChatConfig{
			MaxTurns:      getEnvAsInt("CHAT_MAX_TURNS", 10),
			HistoryBudget: getEnvAsInt("CHAT_HISTORY_BUDGET", 12000),
			Timeout:       getEnvAsDuration("CHAT_TIMEOUT", "45s"),
		},
		Upload: UploadConfig{
			MaxFileSize: getEnvAsInt64("MAX_FILE_SIZE", 10485760),
		},
	}
}

func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
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

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
