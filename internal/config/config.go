package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Env      Env
	Minio    MinioConfig
	Upload   UploadConfig
	Download DownloadConfig
	Dispatch DispatchConfig
	NATS     NATSConfig
	Database DatabaseConfig
	Server   ServerConfig
}

type Env struct {
	Env string `envconfig:"ENV" default:"DEV"`
}

type ServerConfig struct {
	Host string `envconfig:"SERVER_HOST" default:"localhost"`
	Port string `envconfig:"SERVER_PORT" default:"8080"`
}

type MinioConfig struct {
	Endpoint                   string        `envconfig:"MINIO_ENDPOINT" required:"true"`
	BucketName                 string        `envconfig:"MINIO_BUCKET_NAME" required:"true"`
	AccessKey                  string        `envconfig:"MINIO_ACCESS_KEY" required:"true"`
	SecretKey                  string        `envconfig:"MINIO_SECRET_KEY" required:"true"`
	SimplePresignedDuration    time.Duration `envconfig:"MINIO_SIMPLE_PRESIGNED_DURATION" default:"15m"`
	MultiPartPresignedDuration time.Duration `envconfig:"MINIO_MULTIPART_PRESIGNED_DURATION" default:"15m"`
	UseSSL                     bool          `envconfig:"MINIO_USE_SSL" default:"false"`
}

type UploadConfig struct {
	SessionTTL          time.Duration `envconfig:"UPLOAD_SESSION_TTL" default:"30m"`
	DefaultPartSize     int64         `envconfig:"UPLOAD_DEFAULT_PART_SIZE" default:"10485760"` // 10MB
	ExpireEvery         time.Duration `envconfig:"UPLOAD_EXPIRE_EVERY" default:"15m"`
	ExpireBatchSize     int           `envconfig:"UPLOAD_EXPIRE_BATCH_SIZE" default:"100"`
	CompletedTopic      string        `envconfig:"UPLOAD_COMPLETED_TOPIC" default:"fileflow.uploads.completed"`
	SingleUploadMaxSize int64         `envconfig:"UPLOAD_SINGLE_UPLOAD_MAX_SIZE" default:"104857600"` // 100MB
}

type DownloadConfig struct {
	MaxRetries       int           `envconfig:"DOWNLOAD_MAX_RETRIES" default:"3"`
	FetchTimeout     time.Duration `envconfig:"DOWNLOAD_FETCH_TIMEOUT" default:"60s"`
	MaxFetchSize     int64         `envconfig:"DOWNLOAD_MAX_FETCH_SIZE" default:"104857600"` // 100MB
	DispatchTopic    string        `envconfig:"DOWNLOAD_DISPATCH_TOPIC" default:"fileflow.downloads.dispatch"`
	FallbackAssetKey string        `envconfig:"DOWNLOAD_FALLBACK_ASSET_KEY" default:"public/defaults/placeholder.png"`
}

type DispatchConfig struct {
	BatchSize      int           `envconfig:"DISPATCH_BATCH_SIZE" default:"50"`
	PollEvery      time.Duration `envconfig:"DISPATCH_POLL_EVERY" default:"2s"`
	MaxRetries     int           `envconfig:"DISPATCH_MAX_RETRIES" default:"3"`
	LeaseDuration  time.Duration `envconfig:"DISPATCH_LEASE_DURATION" default:"30s"`
	WebhookTimeout time.Duration `envconfig:"DISPATCH_WEBHOOK_TIMEOUT" default:"10s"`
}

type NATSConfig struct {
	URL          string `envconfig:"NATS_URL" required:"true"`
	StreamName   string `envconfig:"NATS_STREAM_NAME" required:"true"`
	ConsumerName string `envconfig:"NATS_CONSUMER_NAME" required:"true"`
	Subject      string `envconfig:"NATS_SUBJECT" required:"true"`
	DeliverGroup string `envconfig:"NATS_DELIVER_GROUP" required:"true"`
	MaxDeliver   int    `envconfig:"NATS_MAX_DELIVER" default:"4"`
}

type DatabaseConfig struct {
	Host           string        `envconfig:"DB_HOST" required:"true"`
	Port           int           `envconfig:"DB_PORT" default:"5432"`
	User           string        `envconfig:"DB_USER" required:"true"`
	Password       string        `envconfig:"DB_PASSWORD" required:"true"`
	Name           string        `envconfig:"DB_NAME" required:"true"`
	SSLMode        string        `envconfig:"DB_SSLMODE" default:"disable"`
	MaxOpenCons    int           `envconfig:"DB_MAX_OPEN_CONS" default:"25"`
	MaxIdleCons    int           `envconfig:"DB_MAX_IDLE_CONS" default:"5"`
	ConMaxLifeTime time.Duration `envconfig:"DB_CONMAX_LIFE_TIME" default:"5m"`
}

func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
