package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultFile is read when present and no explicit path is given.
const DefaultFile = "supportflow.yaml"

type Config struct {
	Port        string       `yaml:"port"`
	Env         string       `yaml:"env"`
	LogLevel    string       `yaml:"log_level"`
	LogFormat   string       `yaml:"log_format"`
	DatabaseURL string       `yaml:"database_url"`
	SeedFile    string       `yaml:"seed_file"`
	LLM         LLMConfig    `yaml:"llm"`
	Search      SearchConfig `yaml:"search"`
	Archive     S3Config     `yaml:"archive"`
	Kafka       KafkaConfig  `yaml:"kafka"`
}

type LLMConfig struct {
	Provider      string        `yaml:"provider"`
	Model         string        `yaml:"model"`
	APIKey        string        `yaml:"api_key"`
	Temperature   float32       `yaml:"temperature"`
	MaxTokens     int           `yaml:"max_tokens"`
	Timeout       time.Duration `yaml:"timeout"`
	RetryAttempts int           `yaml:"retry_attempts"`
	RPS           float64       `yaml:"rps"`
	Burst         int           `yaml:"burst"`
}

type SearchConfig struct {
	WeaviateHost   string        `yaml:"weaviate_host"`
	WeaviateScheme string        `yaml:"weaviate_scheme"`
	WeaviateAPIKey string        `yaml:"weaviate_api_key"`
	Class          string        `yaml:"class"`
	RedisURL       string        `yaml:"redis_url"`
	CacheSize      int           `yaml:"cache_size"`
	CacheTTL       time.Duration `yaml:"cache_ttl"`
	LookupTimeout  time.Duration `yaml:"lookup_timeout"`
}

type S3Config struct {
	Endpoint  string `yaml:"endpoint"`
	Region    string `yaml:"region"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"use_ssl"`
}

func (c S3Config) CanUseS3() bool {
	return strings.TrimSpace(c.Endpoint) != "" &&
		strings.TrimSpace(c.AccessKey) != "" &&
		strings.TrimSpace(c.SecretKey) != "" &&
		strings.TrimSpace(c.Bucket) != ""
}

type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

func (c KafkaConfig) Enabled() bool { return len(c.Brokers) > 0 && c.Topic != "" }

func Default() Config {
	return Config{
		Port:      ":8081",
		Env:       "local",
		LogLevel:  "info",
		LogFormat: "json",
		LLM: LLMConfig{
			Provider:    "gemini",
			Temperature: 0.2,
			MaxTokens:   1024,
			Timeout:     20 * time.Second,
			RPS:         2,
			Burst:       4,
		},
		Search: SearchConfig{
			WeaviateScheme: "http",
			Class:          "KnowledgeArticle",
			CacheSize:      256,
			CacheTTL:       5 * time.Minute,
			LookupTimeout:  5 * time.Second,
		},
		Archive: S3Config{
			Region: "us-east-1",
			Bucket: "supportflow-escalations",
		},
		Kafka: KafkaConfig{Topic: "supportflow.outcomes"},
	}
}

// Load reads .env, then the YAML file at path (DefaultFile when empty and
// present), then applies environment overrides.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if err := loadFile(&cfg, path); err != nil {
		return nil, err
	}
	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadFile(cfg *Config, path string) error {
	explicit := strings.TrimSpace(path) != ""
	if !explicit {
		path = firstNonEmpty(os.Getenv("SUPPORTFLOW_CONFIG"), DefaultFile)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	if p := env("PORT"); p != "" {
		if strings.HasPrefix(p, ":") {
			cfg.Port = p
		} else {
			cfg.Port = ":" + p
		}
	}
	cfg.Env = firstNonEmpty(env("APP_ENV"), cfg.Env)
	cfg.LogLevel = firstNonEmpty(env("LOG_LEVEL"), cfg.LogLevel)
	cfg.LogFormat = firstNonEmpty(env("LOG_FORMAT"), cfg.LogFormat)
	cfg.DatabaseURL = firstNonEmpty(env("DATABASE_URL"), cfg.DatabaseURL)
	cfg.SeedFile = firstNonEmpty(env("SUPPORTFLOW_SEED_FILE"), cfg.SeedFile)

	cfg.LLM.Provider = firstNonEmpty(env("LLM_PROVIDER"), cfg.LLM.Provider)
	cfg.LLM.Model = firstNonEmpty(env("LLM_MODEL"), cfg.LLM.Model)
	switch strings.ToLower(cfg.LLM.Provider) {
	case "groq":
		cfg.LLM.APIKey = firstNonEmpty(env("GROQ_API_KEY"), env("LLM_API_KEY"), cfg.LLM.APIKey)
	default:
		cfg.LLM.APIKey = firstNonEmpty(env("GEMINI_API_KEY"), env("LLM_API_KEY"), cfg.LLM.APIKey)
	}
	if err := envDuration("LLM_TIMEOUT", &cfg.LLM.Timeout); err != nil {
		return err
	}
	if err := envInt("LLM_RETRY_ATTEMPTS", &cfg.LLM.RetryAttempts); err != nil {
		return err
	}
	if err := envFloat("LLM_RPS", &cfg.LLM.RPS); err != nil {
		return err
	}

	cfg.Search.WeaviateHost = firstNonEmpty(env("WEAVIATE_HOST"), cfg.Search.WeaviateHost)
	cfg.Search.WeaviateScheme = firstNonEmpty(env("WEAVIATE_SCHEME"), cfg.Search.WeaviateScheme)
	cfg.Search.WeaviateAPIKey = firstNonEmpty(env("WEAVIATE_API_KEY"), cfg.Search.WeaviateAPIKey)
	cfg.Search.Class = firstNonEmpty(env("WEAVIATE_CLASS"), cfg.Search.Class)
	cfg.Search.RedisURL = firstNonEmpty(env("REDIS_URL"), cfg.Search.RedisURL)
	if err := envDuration("LOOKUP_TIMEOUT", &cfg.Search.LookupTimeout); err != nil {
		return err
	}

	cfg.Archive.Endpoint = firstNonEmpty(env("ARCHIVE_S3_ENDPOINT"), cfg.Archive.Endpoint)
	cfg.Archive.Region = firstNonEmpty(env("ARCHIVE_S3_REGION"), cfg.Archive.Region)
	cfg.Archive.AccessKey = firstNonEmpty(env("ARCHIVE_S3_ACCESS_KEY"), env("MINIO_ROOT_USER"), cfg.Archive.AccessKey)
	cfg.Archive.SecretKey = firstNonEmpty(env("ARCHIVE_S3_SECRET_KEY"), env("MINIO_ROOT_PASSWORD"), cfg.Archive.SecretKey)
	cfg.Archive.Bucket = firstNonEmpty(env("ARCHIVE_S3_BUCKET"), cfg.Archive.Bucket)
	if raw := env("ARCHIVE_S3_USE_SSL"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("ARCHIVE_S3_USE_SSL: %w", err)
		}
		cfg.Archive.UseSSL = v
	}

	if raw := env("KAFKA_BROKERS"); raw != "" {
		cfg.Kafka.Brokers = splitList(raw)
	}
	cfg.Kafka.Topic = firstNonEmpty(env("KAFKA_TOPIC"), cfg.Kafka.Topic)
	return nil
}

func env(key string) string { return strings.TrimSpace(os.Getenv(key)) }

func envDuration(key string, dst *time.Duration) error {
	raw := env(key)
	if raw == "" {
		return nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = d
	return nil
}

func envInt(key string, dst *int) error {
	raw := env(key)
	if raw == "" {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = v
	return nil
}

func envFloat(key string, dst *float64) error {
	raw := env(key)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = v
	return nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
