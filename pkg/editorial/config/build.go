package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/tendant/simple-editorial/pkg/editorial"
	"github.com/tendant/simple-editorial/pkg/editorial/events/kafka"
	"github.com/tendant/simple-editorial/pkg/editorial/repo/memory"
	repopg "github.com/tendant/simple-editorial/pkg/editorial/repo/postgres"
	fsstorage "github.com/tendant/simple-editorial/pkg/editorial/storage/fs"
	memorystorage "github.com/tendant/simple-editorial/pkg/editorial/storage/memory"
	s3storage "github.com/tendant/simple-editorial/pkg/editorial/storage/s3"
	"github.com/tendant/simple-editorial/pkg/editorial/viewcount"
)

// Components holds everything built from a ServerConfig. Close releases the
// connections in reverse order of creation.
type Components struct {
	Service    editorial.Service
	Repository editorial.Repository
	BlobStore  editorial.BlobStore
	Pool       *pgxpool.Pool
	Redis      *redis.Client
	// ViewCounter is set when views are buffered in Redis and need flushing
	ViewCounter *viewcount.RedisCounter

	closers []func() error
}

// Close releases pools and clients
func (c *Components) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Build creates the repository, blob store, optional collaborators and the service
func (c *ServerConfig) Build(ctx context.Context, logger *slog.Logger) (*Components, error) {
	if logger == nil {
		logger = slog.Default()
	}
	comps := &Components{}
	fail := func(err error) (*Components, error) {
		_ = comps.Close()
		return nil, err
	}

	repo, err := c.buildRepository(ctx, comps)
	if err != nil {
		return fail(err)
	}
	comps.Repository = repo

	store, err := c.buildBlobStore()
	if err != nil {
		return fail(err)
	}
	comps.BlobStore = store

	opts := []editorial.Option{
		editorial.WithRepository(repo),
		editorial.WithBlobStore(store),
		editorial.WithLogger(logger),
	}

	if c.RedisURL != "" {
		redisOpts, err := redis.ParseURL(c.RedisURL)
		if err != nil {
			return fail(fmt.Errorf("failed to parse REDIS_URL: %w", err))
		}
		client := redis.NewClient(redisOpts)
		comps.Redis = client
		comps.closers = append(comps.closers, client.Close)
		if err := client.Ping(ctx).Err(); err != nil {
			return fail(fmt.Errorf("failed to reach redis: %w", err))
		}
		comps.ViewCounter = viewcount.NewRedisCounter(client, repo, viewcount.WithLogger(logger))
		opts = append(opts, editorial.WithViewCounter(comps.ViewCounter))
	}

	if len(c.KafkaBrokers) > 0 {
		sink, err := kafka.New(kafka.Config{Brokers: c.KafkaBrokers, Topic: c.KafkaTopic}, logger)
		if err != nil {
			return fail(err)
		}
		comps.closers = append(comps.closers, sink.Close)
		opts = append(opts, editorial.WithEventSink(sink))
	} else {
		opts = append(opts, editorial.WithEventSink(editorial.NewLogEventSink(logger)))
	}

	svc, err := editorial.New(opts...)
	if err != nil {
		return fail(err)
	}
	comps.Service = svc
	return comps, nil
}

func (c *ServerConfig) buildRepository(ctx context.Context, comps *Components) (editorial.Repository, error) {
	switch c.DatabaseType {
	case "memory":
		return memory.New(), nil
	case "postgres":
		pool, err := OpenPostgres(ctx, c.DatabaseURL, c.DBSchema)
		if err != nil {
			return nil, err
		}
		comps.Pool = pool
		comps.closers = append(comps.closers, func() error { pool.Close(); return nil })

		if c.AutoMigrate {
			if err := MigratePostgres(ctx, pool, c.DBSchema); err != nil {
				return nil, err
			}
		}
		return repopg.NewWithPool(pool), nil
	default:
		return nil, fmt.Errorf("unsupported database type: %s", c.DatabaseType)
	}
}

func (c *ServerConfig) buildBlobStore() (editorial.BlobStore, error) {
	prefix := c.Storage.URLPrefix
	if prefix == "" {
		prefix = DefaultFilesURLPrefix
	}

	switch c.Storage.Type {
	case "memory":
		return memorystorage.New(prefix), nil
	case "fs":
		return fsstorage.New(fsstorage.Config{BaseDir: c.Storage.BaseDir, URLPrefix: prefix})
	case "s3":
		return s3storage.New(s3storage.Config{
			Region:                 c.Storage.Region,
			Bucket:                 c.Storage.Bucket,
			AccessKeyID:            c.Storage.AccessKeyID,
			SecretAccessKey:        c.Storage.SecretAccessKey,
			Endpoint:               c.Storage.Endpoint,
			UsePathStyle:           c.Storage.UsePathStyle,
			PublicBaseURL:          c.Storage.PublicBaseURL,
			CreateBucketIfNotExist: c.Storage.CreateBucketIfNotExist,
		})
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", c.Storage.Type)
	}
}

// OpenPostgres creates a pool whose sessions use schema as search_path and
// verifies connectivity.
func OpenPostgres(ctx context.Context, databaseURL, schema string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DATABASE_URL: %w", err)
	}
	if schema != "" {
		cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
			_, err := conn.Exec(ctx, "SET search_path TO "+pgx.Identifier{schema}.Sanitize())
			return err
		}
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}
	return pool, nil
}

// MigratePostgres creates schema if needed and applies the editorial tables to it
func MigratePostgres(ctx context.Context, pool *pgxpool.Pool, schema string) error {
	if schema != "" {
		if _, err := pool.Exec(ctx, "CREATE SCHEMA IF NOT EXISTS "+pgx.Identifier{schema}.Sanitize()); err != nil {
			return fmt.Errorf("failed to create schema %s: %w", schema, err)
		}
	}
	if err := repopg.Migrate(ctx, pool); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	return nil
}
