package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("expected port 8080, got %q", cfg.Port)
	}
	if cfg.DatabaseType != "memory" {
		t.Errorf("expected memory database, got %q", cfg.DatabaseType)
	}
	if cfg.Storage.Type != "memory" || cfg.Storage.URLPrefix != DefaultFilesURLPrefix {
		t.Errorf("expected memory storage under %s, got %+v", DefaultFilesURLPrefix, cfg.Storage)
	}
	if cfg.PublishSchedule == "" || cfg.FlushSchedule == "" {
		t.Error("expected jobs enabled by default")
	}
	if cfg.IsProduction() {
		t.Error("expected development by default")
	}
}

func TestOptions(t *testing.T) {
	cfg, err := Load(
		WithPort("9000"),
		WithEnvironment("testing"),
		WithLogLevel("debug"),
		WithDatabase("postgres", "postgres://localhost/cms"),
		WithDatabaseSchema("newsroom"),
		WithAutoMigrate(true),
		WithFilesystemStorage("/tmp/media", ""),
		WithRedis("redis://localhost:6379"),
		WithKafka([]string{"localhost:9092"}, "cms.events"),
		WithJWTSecret("secret"),
		WithCORSOrigins("https://admin.example.com"),
		WithSchedules("@every 30s", ""),
		WithJobTimeout(time.Minute),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != "9000" || cfg.Environment != "testing" || cfg.LogLevel != "debug" {
		t.Errorf("unexpected server settings: %q %q %q", cfg.Port, cfg.Environment, cfg.LogLevel)
	}
	if cfg.DatabaseType != "postgres" || cfg.DBSchema != "newsroom" || !cfg.AutoMigrate {
		t.Errorf("unexpected database settings: %+v", cfg)
	}
	if cfg.Storage.Type != "fs" || cfg.Storage.URLPrefix != DefaultFilesURLPrefix {
		t.Errorf("unexpected storage: %+v", cfg.Storage)
	}
	if cfg.FlushSchedule != "" {
		t.Errorf("expected flush disabled, got %q", cfg.FlushSchedule)
	}
	if cfg.JobTimeout != time.Minute {
		t.Errorf("expected job timeout 1m, got %v", cfg.JobTimeout)
	}
}

func TestS3StorageOption(t *testing.T) {
	cfg, err := Load(WithS3Storage(StorageConfig{Bucket: "media"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Storage.Type != "s3" || cfg.Storage.Region != "us-east-1" {
		t.Errorf("expected s3 in us-east-1, got %+v", cfg.Storage)
	}
}

func TestOptionErrors(t *testing.T) {
	tests := []struct {
		name string
		opt  Option
	}{
		{"empty port", WithPort("")},
		{"empty environment", WithEnvironment("")},
		{"unknown log level", WithLogLevel("verbose")},
		{"unknown database", WithDatabase("sqlite", "")},
		{"postgres without url", WithDatabase("postgres", "")},
		{"fs without directory", WithFilesystemStorage("", "")},
		{"s3 without bucket", WithS3Storage(StorageConfig{})},
		{"kafka without topic", WithKafka([]string{"localhost:9092"}, "")},
		{"bad schedule", WithSchedules("sometimes", "")},
		{"non-positive job timeout", WithJobTimeout(0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(tt.opt); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestNilOptionIgnored(t *testing.T) {
	if _, err := Load(nil, WithPort("8081")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
