package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port string `yaml:"port"`

	// Auth
	DraftAPIKey string `yaml:"draft_api_key"`

	// Claude generation
	AnthropicAPIKey string `yaml:"anthropic_api_key"`
	AnthropicModel  string `yaml:"anthropic_model"`

	// Knowledge source
	KnowledgeURL    string `yaml:"knowledge_url"`
	KnowledgeAPIKey string `yaml:"knowledge_api_key"`
	CorpusFile      string `yaml:"corpus_file"`

	// Examination policy
	TopK            int     `yaml:"top_k"`
	MaxClaimQueries int     `yaml:"max_claim_queries"`
	MinSimilarity   float64 `yaml:"min_similarity"`

	// Worker pool
	WorkerCount  int `yaml:"worker_count"`
	MaxQueueSize int `yaml:"max_queue_size"`

	// Upload limits
	MaxUploadBytes int64 `yaml:"max_upload_bytes"`

	// Job state
	JobTTL time.Duration `yaml:"job_ttl"`

	// Logging
	LogFile  string `yaml:"log_file"`
	LogLevel string `yaml:"log_level"`
}

func defaults() Config {
	return Config{
		Port:            "8090",
		AnthropicModel:  "claude-sonnet-4-5-20250929",
		TopK:            3,
		MaxClaimQueries: 2,
		WorkerCount:     4,
		MaxQueueSize:    100,
		MaxUploadBytes:  10485760, // 10MB
		JobTTL:          1 * time.Hour,
		LogLevel:        "info",
	}
}

// Load reads the optional CONFIG_FILE overlay and then environment
// variables. Environment values win over the file.
func Load() (Config, error) {
	cfg := defaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return cfg, err
		}
	}

	cfg.Port = envOr("PORT", cfg.Port)

	cfg.DraftAPIKey = envOr("DRAFT_API_KEY", cfg.DraftAPIKey)

	cfg.AnthropicAPIKey = envOr("ANTHROPIC_API_KEY", cfg.AnthropicAPIKey)
	cfg.AnthropicModel = envOr("ANTHROPIC_MODEL", cfg.AnthropicModel)

	cfg.KnowledgeURL = envOr("KNOWLEDGE_URL", cfg.KnowledgeURL)
	cfg.KnowledgeAPIKey = envOr("KNOWLEDGE_API_KEY", cfg.KnowledgeAPIKey)
	cfg.CorpusFile = envOr("CORPUS_FILE", cfg.CorpusFile)

	cfg.TopK = envInt("TOP_K", cfg.TopK)
	cfg.MaxClaimQueries = envInt("MAX_CLAIM_QUERIES", cfg.MaxClaimQueries)
	cfg.MinSimilarity = envFloat("MIN_SIMILARITY", cfg.MinSimilarity)

	cfg.WorkerCount = envInt("WORKER_COUNT", cfg.WorkerCount)
	cfg.MaxQueueSize = envInt("MAX_QUEUE_SIZE", cfg.MaxQueueSize)

	cfg.MaxUploadBytes = envInt64("MAX_UPLOAD_BYTES", cfg.MaxUploadBytes)

	cfg.JobTTL = envDuration("JOB_TTL", cfg.JobTTL)

	cfg.LogFile = envOr("LOG_FILE", cfg.LogFile)
	cfg.LogLevel = envOr("LOG_LEVEL", cfg.LogLevel)

	cfg.clamp()
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) clamp() {
	d := defaults()
	if c.TopK <= 0 {
		c.TopK = d.TopK
	}
	if c.MaxClaimQueries <= 0 {
		c.MaxClaimQueries = d.MaxClaimQueries
	}
	if c.WorkerCount <= 0 {
		c.WorkerCount = d.WorkerCount
	}
	if c.MaxQueueSize <= 0 {
		c.MaxQueueSize = d.MaxQueueSize
	}
	if c.MaxUploadBytes <= 0 {
		c.MaxUploadBytes = d.MaxUploadBytes
	}
	if c.JobTTL <= 0 {
		c.JobTTL = d.JobTTL
	}
}

// Validate checks the settings the server cannot run without.
func (c Config) Validate() error {
	if c.DraftAPIKey == "" {
		return fmt.Errorf("DRAFT_API_KEY is required")
	}
	if c.MinSimilarity < 0 || c.MinSimilarity > 1 {
		return fmt.Errorf("MIN_SIMILARITY must be within [0, 1], got %v", c.MinSimilarity)
	}
	if c.KnowledgeURL != "" && c.CorpusFile != "" {
		return fmt.Errorf("KNOWLEDGE_URL and CORPUS_FILE are mutually exclusive")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
