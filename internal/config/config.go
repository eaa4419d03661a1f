package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds the whole application configuration.
// Populated from environment variables.
type Config struct {
	App        AppConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	MinIO      MinIOConfig
	Generation GenerationConfig
	Retrieval  RetrievalConfig
}

type AppConfig struct {
	Name        string
	Environment string // development, staging, production
	Port        string
	Version     string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int
	MinConns int
}

type RedisConfig struct {
	Host     string
	Password string
	DB       int
}

type MinIOConfig struct {
	Endpoint  string // localhost:9000
	AccessKey string // minioadmin
	SecretKey string // minioadmin
	Bucket    string // designlab
	UseSSL    bool   // false for local
}

// =====================================================
// GENERATION CONFIGURATION
// =====================================================

// GenerationConfig controls the text/image provider policy.
type GenerationConfig struct {
	// ImageProvider selects the configured image adapter:
	// gemini, openai, stability, replicate, placeholder.
	// Deployment configuration, never a per-request choice.
	ImageProvider string

	// PreviewCount is the number of render jobs enqueued per design.
	PreviewCount int

	// PreviewTTLSeconds is the presigned GET URL expiry.
	PreviewTTLSeconds int

	// Default brief options when the client omits them
	DefaultProduct string
	DefaultStyle   string
	CanvasWidth    int
	CanvasHeight   int

	// Secret names resolved through the credential resolver
	GeminiKeyName     string
	OpenAIKeyName     string
	StabilityKeyName  string
	ReplicateKeyName  string
	PerplexityKeyName string
}

type RetrievalConfig struct {
	// APIURL is the fact-retrieval endpoint (Perplexity-style).
	APIURL string
	// MaxFacts caps the retrieved context snippets per prompt.
	MaxFacts int
}

// Load reads config from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "DesignLab API"),
			Environment: getEnv("APP_ENV", "development"),
			Port:        getEnv("APP_PORT", "8080"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "designlab"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			MaxConns: getEnvInt("DB_MAX_CONNS", 25),
			MinConns: getEnvInt("DB_MIN_CONNS", 5),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", "localhost:9000"),
			AccessKey: getEnv("MINIO_ACCESS_KEY", "minioadmin"),
			SecretKey: getEnv("MINIO_SECRET_KEY", "minioadmin"),
			Bucket:    getEnv("MINIO_BUCKET", "designlab"),
			UseSSL:    false,
		},
		Generation: GenerationConfig{
			ImageProvider:     getEnv("GEN_IMAGE_PROVIDER", "placeholder"),
			PreviewCount:      getEnvInt("GEN_PREVIEW_COUNT", 1),
			PreviewTTLSeconds: getEnvInt("GEN_PREVIEW_TTL", 300),
			DefaultProduct:    getEnv("GEN_DEFAULT_PRODUCT", "t-shirt"),
			DefaultStyle:      getEnv("GEN_DEFAULT_STYLE", "classic vintage"),
			CanvasWidth:       getEnvInt("GEN_CANVAS_WIDTH", 4500),
			CanvasHeight:      getEnvInt("GEN_CANVAS_HEIGHT", 5400),
			GeminiKeyName:     getEnv("GEMINI_KEY_NAME", "GEMINI_API_KEY"),
			OpenAIKeyName:     getEnv("OPENAI_KEY_NAME", "OPENAI_API_KEY"),
			StabilityKeyName:  getEnv("STABILITY_KEY_NAME", "STABILITY_API_KEY"),
			ReplicateKeyName:  getEnv("REPLICATE_KEY_NAME", "REPLICATE_API_TOKEN"),
			PerplexityKeyName: getEnv("PERPLEXITY_KEY_NAME", "PERPLEXITY_API_KEY"),
		},
		Retrieval: RetrievalConfig{
			APIURL:   getEnv("RETRIEVAL_API_URL", "https://api.perplexity.ai/search"),
			MaxFacts: getEnvInt("RETRIEVAL_MAX_FACTS", 3),
		},
	}

	// Validate critical config
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks config consistency.
func (c *Config) Validate() error {
	switch c.Generation.ImageProvider {
	case "gemini", "openai", "stability", "replicate", "placeholder":
	default:
		return fmt.Errorf("GEN_IMAGE_PROVIDER %q is not one of gemini|openai|stability|replicate|placeholder", c.Generation.ImageProvider)
	}

	if c.Generation.PreviewCount < 1 {
		return fmt.Errorf("GEN_PREVIEW_COUNT must be at least 1")
	}

	if c.App.Environment == "production" {
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD must be set in production")
		}
	}

	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
