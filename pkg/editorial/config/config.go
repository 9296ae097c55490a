package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// Option applies configuration to a ServerConfig instance.
type Option func(*ServerConfig) error

// Load constructs a ServerConfig by applying the supplied options on top of library defaults.
func Load(opts ...Option) (*ServerConfig, error) {
	cfg := defaults()

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// DefaultFilesURLPrefix is where the HTTP API serves media of local blob stores
const DefaultFilesURLPrefix = "/api/v1/public/files"

func defaults() ServerConfig {
	return ServerConfig{
		Port:         "8080",
		Environment:  "development",
		LogLevel:     "info",
		DatabaseType: "memory",
		DBSchema:     "editorial",
		Storage: StorageConfig{
			Type:      "memory",
			URLPrefix: DefaultFilesURLPrefix,
		},
		KafkaTopic:      "editorial.events",
		CORSOrigins:     []string{"*"},
		PublishSchedule: "@every 1m",
		FlushSchedule:   "@every 5m",
		JobTimeout:      2 * time.Minute,
		RequestTimeout:  60 * time.Second,
	}
}

// ServerConfig represents configuration for the editorial server and admin tools
type ServerConfig struct {
	Port        string
	Environment string // development, production, testing
	LogLevel    string // debug, info, warn, error

	// Database configuration
	DatabaseURL  string
	DatabaseType string // "memory", "postgres"
	DBSchema     string // Postgres schema to use (default: editorial)
	AutoMigrate  bool   // Apply the schema on startup

	// Media blob storage
	Storage StorageConfig

	// Optional collaborators; empty disables them
	RedisURL     string   // Buffers view counts when set
	KafkaBrokers []string // Publishes lifecycle events when set
	KafkaTopic   string

	// HTTP
	JWTSecret      string
	CORSOrigins    []string
	RequestTimeout time.Duration

	// Background jobs; an empty schedule disables the job
	PublishSchedule string
	FlushSchedule   string
	JobTimeout      time.Duration
}

// StorageConfig selects and configures the media blob store
type StorageConfig struct {
	Type string // "memory", "fs", "s3"

	// memory and fs
	BaseDir   string
	URLPrefix string

	// s3
	Bucket                 string
	Region                 string
	Endpoint               string
	AccessKeyID            string
	SecretAccessKey        string
	UsePathStyle           bool
	PublicBaseURL          string
	CreateBucketIfNotExist bool
}

// IsProduction reports whether the server runs in production
func (c *ServerConfig) IsProduction() bool {
	return c.Environment == "production"
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Port == "" {
		return errors.New("port is required")
	}

	if c.DatabaseType != "memory" && c.DatabaseType != "postgres" {
		return errors.New("database_type must be 'memory' or 'postgres'")
	}
	if c.DatabaseType == "postgres" && c.DatabaseURL == "" {
		return errors.New("database_url is required when using postgres")
	}

	switch c.Storage.Type {
	case "memory":
	case "fs":
		if c.Storage.BaseDir == "" {
			return errors.New("storage base_dir is required for fs storage")
		}
	case "s3":
		if c.Storage.Bucket == "" {
			return errors.New("storage bucket is required for s3 storage")
		}
	default:
		return fmt.Errorf("unsupported storage type: %s", c.Storage.Type)
	}

	if len(c.KafkaBrokers) > 0 && c.KafkaTopic == "" {
		return errors.New("kafka topic is required when kafka brokers are set")
	}

	if c.IsProduction() && c.JWTSecret == "" {
		return errors.New("jwt_secret is required in production")
	}

	for name, spec := range map[string]string{"publish": c.PublishSchedule, "flush": c.FlushSchedule} {
		if spec == "" {
			continue
		}
		if _, err := cron.ParseStandard(spec); err != nil {
			return fmt.Errorf("invalid %s schedule %q: %w", name, spec, err)
		}
	}

	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}

	return nil
}

// NewLogger builds the process logger: JSON in production, text elsewhere
func (c *ServerConfig) NewLogger() *slog.Logger {
	level, err := parseLevel(c.LogLevel)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.IsProduction() {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level: %s", s)
	}
}
