package storage

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"healthcare-booking-api/internal/config"
)

// Backend opens collections on one configured storage service and owns the
// connection shared by them.
type Backend struct {
	open  func(name string) Collection
	close func()
}

func (b *Backend) Collection(name string) Collection { return b.open(name) }

func (b *Backend) Close() {
	if b.close != nil {
		b.close()
	}
}

// Open connects to the backend named in cfg. migrationPath is only used by
// the postgres backend.
func Open(ctx context.Context, cfg config.StorageConfig, migrationPath string) (*Backend, error) {
	switch cfg.Backend {
	case config.BackendFile:
		return &Backend{open: func(name string) Collection {
			return NewFile(cfg.DataDir, name)
		}}, nil

	case config.BackendPostgres:
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("db: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("db ping: %w", err)
		}
		if _, err := Migrate(ctx, pool, migrationPath); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
		return &Backend{
			open:  func(name string) Collection { return NewPostgres(pool, name) },
			close: pool.Close,
		}, nil

	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("redis ping: %w", err)
		}
		return &Backend{
			open:  func(name string) Collection { return NewRedis(client, name) },
			close: func() { client.Close() },
		}, nil

	case config.BackendS3:
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("aws config: %w", err)
		}
		client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			o.UsePathStyle = true
		})
		return &Backend{open: func(name string) Collection {
			return NewS3(client, cfg.S3Bucket, cfg.S3Prefix, name)
		}}, nil
	}
	return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
}
