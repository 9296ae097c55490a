package config

import (
	"fmt"
	"time"
)

// WithPort sets the server port
func WithPort(port string) Option {
	return func(c *ServerConfig) error {
		if port == "" {
			return fmt.Errorf("port cannot be empty")
		}
		c.Port = port
		return nil
	}
}

// WithEnvironment sets the environment (development, production, testing)
func WithEnvironment(env string) Option {
	return func(c *ServerConfig) error {
		if env == "" {
			return fmt.Errorf("environment cannot be empty")
		}
		c.Environment = env
		return nil
	}
}

// WithLogLevel sets the minimum log level
func WithLogLevel(level string) Option {
	return func(c *ServerConfig) error {
		if _, err := parseLevel(level); err != nil {
			return err
		}
		c.LogLevel = level
		return nil
	}
}

// WithDatabase configures the database backend
func WithDatabase(dbType, url string) Option {
	return func(c *ServerConfig) error {
		if dbType != "memory" && dbType != "postgres" {
			return fmt.Errorf("database type must be 'memory' or 'postgres', got: %s", dbType)
		}
		if dbType == "postgres" && url == "" {
			return fmt.Errorf("database URL is required for postgres")
		}
		c.DatabaseType = dbType
		c.DatabaseURL = url
		return nil
	}
}

// WithDatabaseSchema sets the database schema (for Postgres)
func WithDatabaseSchema(schema string) Option {
	return func(c *ServerConfig) error {
		c.DBSchema = schema
		return nil
	}
}

// WithAutoMigrate applies the database schema when the components are built
func WithAutoMigrate(enabled bool) Option {
	return func(c *ServerConfig) error {
		c.AutoMigrate = enabled
		return nil
	}
}

// WithMemoryStorage keeps media in process memory
func WithMemoryStorage(urlPrefix string) Option {
	return func(c *ServerConfig) error {
		if urlPrefix == "" {
			urlPrefix = DefaultFilesURLPrefix
		}
		c.Storage = StorageConfig{Type: "memory", URLPrefix: urlPrefix}
		return nil
	}
}

// WithFilesystemStorage stores media below baseDir
func WithFilesystemStorage(baseDir, urlPrefix string) Option {
	return func(c *ServerConfig) error {
		if baseDir == "" {
			return fmt.Errorf("filesystem base directory cannot be empty")
		}
		if urlPrefix == "" {
			urlPrefix = DefaultFilesURLPrefix
		}
		c.Storage = StorageConfig{Type: "fs", BaseDir: baseDir, URLPrefix: urlPrefix}
		return nil
	}
}

// WithS3Storage stores media in an S3-compatible bucket
func WithS3Storage(storage StorageConfig) Option {
	return func(c *ServerConfig) error {
		if storage.Bucket == "" {
			return fmt.Errorf("s3 bucket cannot be empty")
		}
		storage.Type = "s3"
		if storage.Region == "" {
			storage.Region = "us-east-1"
		}
		c.Storage = storage
		return nil
	}
}

// WithRedis buffers view counts in the Redis server at url
func WithRedis(url string) Option {
	return func(c *ServerConfig) error {
		c.RedisURL = url
		return nil
	}
}

// WithKafka publishes lifecycle events to topic
func WithKafka(brokers []string, topic string) Option {
	return func(c *ServerConfig) error {
		if len(brokers) > 0 && topic == "" {
			return fmt.Errorf("kafka topic cannot be empty")
		}
		c.KafkaBrokers = brokers
		c.KafkaTopic = topic
		return nil
	}
}

// WithJWTSecret sets the HS256 secret admin tokens are verified with
func WithJWTSecret(secret string) Option {
	return func(c *ServerConfig) error {
		c.JWTSecret = secret
		return nil
	}
}

// WithCORSOrigins sets the allowed CORS origins
func WithCORSOrigins(origins ...string) Option {
	return func(c *ServerConfig) error {
		c.CORSOrigins = origins
		return nil
	}
}

// WithSchedules sets the cron specs of the publish sweep and the view count flush
func WithSchedules(publish, flush string) Option {
	return func(c *ServerConfig) error {
		c.PublishSchedule = publish
		c.FlushSchedule = flush
		return nil
	}
}

// WithJobTimeout bounds a single background job run
func WithJobTimeout(d time.Duration) Option {
	return func(c *ServerConfig) error {
		if d <= 0 {
			return fmt.Errorf("job timeout must be positive")
		}
		c.JobTimeout = d
		return nil
	}
}
