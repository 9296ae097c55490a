package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// settings is the flat, file- and environment-readable form of ServerConfig.
// Empty fields leave the current value untouched.
type settings struct {
	Port        string `yaml:"port" json:"port" env:"PORT"`
	Environment string `yaml:"environment" json:"environment" env:"ENVIRONMENT"`
	LogLevel    string `yaml:"log_level" json:"log_level" env:"LOG_LEVEL"`

	DatabaseURL string `yaml:"database_url" json:"database_url" env:"DATABASE_URL"`
	DBSchema    string `yaml:"db_schema" json:"db_schema" env:"DB_SCHEMA"`
	AutoMigrate string `yaml:"auto_migrate" json:"auto_migrate" env:"AUTO_MIGRATE"`

	StorageURL       string `yaml:"storage_url" json:"storage_url" env:"STORAGE_URL"`
	StoragePublicURL string `yaml:"storage_public_url" json:"storage_public_url" env:"STORAGE_PUBLIC_URL"`
	AWSAccessKeyID   string `yaml:"aws_access_key_id" json:"aws_access_key_id" env:"AWS_ACCESS_KEY_ID"`
	AWSSecretKey     string `yaml:"aws_secret_access_key" json:"aws_secret_access_key" env:"AWS_SECRET_ACCESS_KEY"`
	AWSRegion        string `yaml:"aws_region" json:"aws_region" env:"AWS_REGION"`

	RedisURL     string   `yaml:"redis_url" json:"redis_url" env:"REDIS_URL"`
	KafkaBrokers []string `yaml:"kafka_brokers" json:"kafka_brokers" env:"KAFKA_BROKERS" env-separator:","`
	KafkaTopic   string   `yaml:"kafka_topic" json:"kafka_topic" env:"KAFKA_TOPIC"`

	JWTSecret      string        `yaml:"jwt_secret" json:"jwt_secret" env:"JWT_SECRET"`
	CORSOrigins    []string      `yaml:"cors_origins" json:"cors_origins" env:"CORS_ALLOWED_ORIGINS" env-separator:","`
	RequestTimeout time.Duration `yaml:"request_timeout" json:"request_timeout" env:"REQUEST_TIMEOUT"`

	PublishSchedule string        `yaml:"publish_schedule" json:"publish_schedule" env:"PUBLISH_SCHEDULE"`
	FlushSchedule   string        `yaml:"flush_schedule" json:"flush_schedule" env:"VIEW_FLUSH_SCHEDULE"`
	JobTimeout      time.Duration `yaml:"job_timeout" json:"job_timeout" env:"JOB_TIMEOUT"`
}

// WithEnv loads configuration from environment variables
func WithEnv() Option {
	return func(c *ServerConfig) error {
		var s settings
		if err := cleanenv.ReadEnv(&s); err != nil {
			return fmt.Errorf("read environment: %w", err)
		}
		return s.apply(c)
	}
}

// WithFile loads configuration from a YAML, JSON or TOML file. Environment
// variables override values from the file.
func WithFile(path string) Option {
	return func(c *ServerConfig) error {
		var s settings
		if err := cleanenv.ReadConfig(path, &s); err != nil {
			return fmt.Errorf("read config file %s: %w", path, err)
		}
		return s.apply(c)
	}
}

func (s settings) apply(c *ServerConfig) error {
	if s.Port != "" {
		c.Port = s.Port
	}
	if s.Environment != "" {
		c.Environment = s.Environment
	}
	if s.LogLevel != "" {
		c.LogLevel = s.LogLevel
	}

	if err := applyDatabaseURL(c, s.DatabaseURL); err != nil {
		return err
	}
	if s.DBSchema != "" {
		c.DBSchema = s.DBSchema
	}
	if s.AutoMigrate != "" {
		enabled, err := strconv.ParseBool(s.AutoMigrate)
		if err != nil {
			return fmt.Errorf("invalid AUTO_MIGRATE value %q: %w", s.AutoMigrate, err)
		}
		c.AutoMigrate = enabled
	}

	if err := applyStorageURL(c, s.StorageURL); err != nil {
		return err
	}
	if s.StoragePublicURL != "" {
		if c.Storage.Type == "s3" {
			c.Storage.PublicBaseURL = s.StoragePublicURL
		} else {
			c.Storage.URLPrefix = s.StoragePublicURL
		}
	}
	if c.Storage.Type == "s3" {
		if s.AWSAccessKeyID != "" {
			c.Storage.AccessKeyID = s.AWSAccessKeyID
		}
		if s.AWSSecretKey != "" {
			c.Storage.SecretAccessKey = s.AWSSecretKey
		}
		if s.AWSRegion != "" && c.Storage.Region == "" {
			c.Storage.Region = s.AWSRegion
		}
		if c.Storage.Region == "" {
			c.Storage.Region = "us-east-1"
		}
	}

	if s.RedisURL != "" {
		c.RedisURL = s.RedisURL
	}
	if brokers := trimAll(s.KafkaBrokers); len(brokers) > 0 {
		c.KafkaBrokers = brokers
	}
	if s.KafkaTopic != "" {
		c.KafkaTopic = s.KafkaTopic
	}

	if s.JWTSecret != "" {
		c.JWTSecret = s.JWTSecret
	}
	if origins := trimAll(s.CORSOrigins); len(origins) > 0 {
		c.CORSOrigins = origins
	}
	if s.RequestTimeout > 0 {
		c.RequestTimeout = s.RequestTimeout
	}

	// "off" disables a job explicitly
	if s.PublishSchedule != "" {
		c.PublishSchedule = scheduleValue(s.PublishSchedule)
	}
	if s.FlushSchedule != "" {
		c.FlushSchedule = scheduleValue(s.FlushSchedule)
	}
	if s.JobTimeout > 0 {
		c.JobTimeout = s.JobTimeout
	}

	return nil
}

func applyDatabaseURL(c *ServerConfig, dbURL string) error {
	switch {
	case dbURL == "":
		return nil
	case dbURL == "memory" || strings.HasPrefix(dbURL, "memory://"):
		c.DatabaseType = "memory"
		c.DatabaseURL = ""
	case strings.HasPrefix(dbURL, "postgres://") || strings.HasPrefix(dbURL, "postgresql://"):
		c.DatabaseType = "postgres"
		c.DatabaseURL = dbURL
	default:
		return fmt.Errorf("unsupported DATABASE_URL scheme: %s", dbURL)
	}
	return nil
}

// applyStorageURL understands memory://, file://<dir> and
// s3://<bucket>?region=..&endpoint=..&path_style=true&public_url=..&create_bucket=true
func applyStorageURL(c *ServerConfig, storageURL string) error {
	switch {
	case storageURL == "":
		return nil
	case storageURL == "memory" || strings.HasPrefix(storageURL, "memory://"):
		c.Storage = StorageConfig{Type: "memory", URLPrefix: c.Storage.URLPrefix}
	case strings.HasPrefix(storageURL, "file://"):
		dir := strings.TrimPrefix(storageURL, "file://")
		if dir == "" {
			return fmt.Errorf("STORAGE_URL %q has no directory", storageURL)
		}
		c.Storage = StorageConfig{Type: "fs", BaseDir: dir, URLPrefix: c.Storage.URLPrefix}
	case strings.HasPrefix(storageURL, "s3://"):
		u, err := url.Parse(storageURL)
		if err != nil {
			return fmt.Errorf("invalid STORAGE_URL: %w", err)
		}
		if u.Host == "" {
			return fmt.Errorf("STORAGE_URL %q has no bucket", storageURL)
		}
		q := u.Query()
		storage := StorageConfig{
			Type:          "s3",
			Bucket:        u.Host,
			Region:        q.Get("region"),
			Endpoint:      q.Get("endpoint"),
			PublicBaseURL: q.Get("public_url"),
		}
		if v := q.Get("path_style"); v != "" {
			if storage.UsePathStyle, err = strconv.ParseBool(v); err != nil {
				return fmt.Errorf("invalid path_style value %q: %w", v, err)
			}
		}
		if v := q.Get("create_bucket"); v != "" {
			if storage.CreateBucketIfNotExist, err = strconv.ParseBool(v); err != nil {
				return fmt.Errorf("invalid create_bucket value %q: %w", v, err)
			}
		}
		c.Storage = storage
	default:
		return fmt.Errorf("unsupported STORAGE_URL scheme: %s", storageURL)
	}
	return nil
}

func scheduleValue(v string) string {
	if strings.EqualFold(v, "off") {
		return ""
	}
	return v
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
