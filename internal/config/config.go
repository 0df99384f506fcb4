package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Ingest bounds. Values below the floor are clamped so a misconfigured
// environment cannot disable the memory protection entirely.
const (
	DefaultMaxTextChars = 300_000
	MinTextChars        = 50_000
	DefaultMaxChunks    = 200
	MinChunks           = 1
)

type Config struct {
	Port  string `envconfig:"PORT" default:"8080"`
	Debug bool   `envconfig:"DEBUG" default:"false"`

	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	S3Endpoint  string `envconfig:"S3_ENDPOINT"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY_ID"`
	S3SecretKey string `envconfig:"S3_SECRET_ACCESS_KEY"`
	S3Bucket    string `envconfig:"S3_BUCKET" default:"doctrove-documents"`
	S3Region    string `envconfig:"S3_REGION" default:"us-east-1"`

	OpenAIAPIKey string `envconfig:"OPENAI_API_KEY"`

	// Ingestion bounds, read once at startup and handed to the pipeline.
	MaxTextChars int `envconfig:"DOC_MAX_TEXT_CHARS" default:"300000"`
	MaxChunks    int `envconfig:"DOC_MAX_CHUNKS" default:"200"`

	WorkerPollInterval time.Duration `envconfig:"WORKER_POLL_INTERVAL" default:"2s"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("DOCTROVE", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

func (c *Config) HasS3() bool {
	return c.S3Endpoint != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}

func (c *Config) HasOpenAI() bool {
	return c.OpenAIAPIKey != ""
}

// BoundedMaxTextChars applies the default and floor to the configured value.
func (c *Config) BoundedMaxTextChars() int {
	if c.MaxTextChars <= 0 {
		return DefaultMaxTextChars
	}
	if c.MaxTextChars < MinTextChars {
		return MinTextChars
	}
	return c.MaxTextChars
}

// BoundedMaxChunks applies the default and floor to the configured value.
func (c *Config) BoundedMaxChunks() int {
	if c.MaxChunks <= 0 {
		return DefaultMaxChunks
	}
	if c.MaxChunks < MinChunks {
		return MinChunks
	}
	return c.MaxChunks
}
