package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	BackendFile     = "file"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendS3       = "s3"

	EventsNone  = "none"
	EventsKafka = "kafka"
	EventsSQS   = "sqs"
)

type Config struct {
	Port     string
	GRPCPort string
	LogLevel string

	Storage StorageConfig
	Events  EventsConfig

	RateLimitRPS   float64
	RateLimitBurst int
	CORSOrigin     string
}

type StorageConfig struct {
	Backend       string
	DataDir       string
	DatabaseURL   string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	S3Bucket      string
	S3Prefix      string
}

type EventsConfig struct {
	Backend      string
	KafkaBrokers []string
	KafkaTopic   string
	SQSQueueName string
}

func defaults(v *viper.Viper) {
	v.SetDefault("port", "5000")
	v.SetDefault("grpc_port", "50051")
	v.SetDefault("log_level", "info")
	v.SetDefault("storage_backend", BackendFile)
	v.SetDefault("data_dir", "data")
	v.SetDefault("redis_db", 0)
	v.SetDefault("s3_prefix", "collections/")
	v.SetDefault("events_backend", EventsNone)
	v.SetDefault("kafka_topic", "appointments")
	v.SetDefault("rate_limit_rps", 5)
	v.SetDefault("rate_limit_burst", 10)
	v.SetDefault("cors_origin", "*")
}

// Load reads .env (if present) into the process environment and resolves the
// configuration from it.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromViper(viper.New())
}

// FromViper resolves the configuration from environment variables bound to v.
func FromViper(v *viper.Viper) (*Config, error) {
	defaults(v)
	v.AutomaticEnv()

	c := &Config{
		Port:     v.GetString("port"),
		GRPCPort: v.GetString("grpc_port"),
		LogLevel: v.GetString("log_level"),
		Storage: StorageConfig{
			Backend:       strings.ToLower(v.GetString("storage_backend")),
			DataDir:       v.GetString("data_dir"),
			DatabaseURL:   v.GetString("database_url"),
			RedisAddr:     v.GetString("redis_addr"),
			RedisPassword: v.GetString("redis_password"),
			RedisDB:       v.GetInt("redis_db"),
			S3Bucket:      v.GetString("s3_bucket"),
			S3Prefix:      v.GetString("s3_prefix"),
		},
		Events: EventsConfig{
			Backend:      strings.ToLower(v.GetString("events_backend")),
			KafkaBrokers: splitList(v.GetString("kafka_brokers")),
			KafkaTopic:   v.GetString("kafka_topic"),
			SQSQueueName: v.GetString("sqs_queue_name"),
		},
		RateLimitRPS:   v.GetFloat64("rate_limit_rps"),
		RateLimitBurst: v.GetInt("rate_limit_burst"),
		CORSOrigin:     v.GetString("cors_origin"),
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendFile:
		if c.Storage.DataDir == "" {
			return fmt.Errorf("config: DATA_DIR is required for %s storage", BackendFile)
		}
	case BackendPostgres:
		if c.Storage.DatabaseURL == "" {
			return fmt.Errorf("config: DATABASE_URL is required for %s storage", BackendPostgres)
		}
	case BackendRedis:
		if c.Storage.RedisAddr == "" {
			return fmt.Errorf("config: REDIS_ADDR is required for %s storage", BackendRedis)
		}
	case BackendS3:
		if c.Storage.S3Bucket == "" {
			return fmt.Errorf("config: S3_BUCKET is required for %s storage", BackendS3)
		}
	default:
		return fmt.Errorf("config: unknown STORAGE_BACKEND %q", c.Storage.Backend)
	}

	switch c.Events.Backend {
	case EventsNone:
	case EventsKafka:
		if len(c.Events.KafkaBrokers) == 0 {
			return fmt.Errorf("config: KAFKA_BROKERS is required for %s events", EventsKafka)
		}
	case EventsSQS:
		if c.Events.SQSQueueName == "" {
			return fmt.Errorf("config: SQS_QUEUE_NAME is required for %s events", EventsSQS)
		}
	default:
		return fmt.Errorf("config: unknown EVENTS_BACKEND %q", c.Events.Backend)
	}

	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		return fmt.Errorf("config: rate limit must be positive")
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
