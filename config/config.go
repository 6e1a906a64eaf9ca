package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type (
	Config struct {
		App         App
		HTTP        HTTP
		Log         Log
		PG          PG
		S3          S3
		Auth        Auth
		Upload      Upload
		Submission  Submission
		Report      Report
		OutboxRelay OutboxRelay
		Kafka       Kafka
		Metrics     Metrics
		Swagger     Swagger
	}

	App struct {
		Name    string `env:"APP_NAME" envDefault:"oral-screening"`
		Version string `env:"APP_VERSION" envDefault:"1.0.0"`
	}

	HTTP struct {
		Port           string        `env:"HTTP_PORT,required"`
		UsePreforkMode bool          `env:"HTTP_USE_PREFORK_MODE" envDefault:"false"`
		ReadTimeout    time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"30s"`
		WriteTimeout   time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"60s"`
		BodyLimit      int           `env:"HTTP_BODY_LIMIT" envDefault:"33554432"` // 32 MiB: 3 images of 10 MiB plus form fields
	}

	Log struct {
		Level string `env:"LOG_LEVEL,required"`
	}

	PG struct {
		PoolMax int    `env:"PG_POOL_MAX,required"`
		URL     string `env:"PG_URL,required"`
	}

	S3 struct {
		Endpoint       string        `env:"S3_ENDPOINT,required"`
		AccessKey      string        `env:"S3_ACCESS_KEY,required"`
		SecretKey      string        `env:"S3_SECRET_KEY,required"`
		Bucket         string        `env:"S3_BUCKET,required"`
		Region         string        `env:"S3_REGION" envDefault:"us-east-1"`
		UsePathStyle   bool          `env:"S3_USE_PATH_STYLE" envDefault:"true"`
		CreateBucket   bool          `env:"S3_CREATE_BUCKET" envDefault:"true"`
		PresignTTL     time.Duration `env:"S3_PRESIGN_TTL" envDefault:"15m"`
		CfgLoadTimeout time.Duration `env:"S3_LOAD_CFG_TIMEOUT" envDefault:"10s"`
	}

	Auth struct {
		JWTSecret string `env:"AUTH_JWT_SECRET,required,notEmpty"`
		Issuer    string `env:"AUTH_JWT_ISSUER"`
	}

	Upload struct {
		MaxFileSize int64 `env:"UPLOAD_MAX_FILE_SIZE" envDefault:"10485760"`
	}

	Submission struct {
		// ReannotatePolicy is revert or block.
		ReannotatePolicy string `env:"SUBMISSION_REANNOTATE_POLICY" envDefault:"revert"`
	}

	Report struct {
		Prefix      string `env:"REPORT_PREFIX" envDefault:"reports"`
		JPEGQuality int    `env:"REPORT_JPEG_QUALITY" envDefault:"85"`
	}

	// Kafka is optional. Without brokers outbox events are written to the log.
	Kafka struct {
		Brokers      []string      `env:"KAFKA_BROKERS"`
		Topic        string        `env:"KAFKA_TOPIC" envDefault:"submission-events"`
		BatchTimeout time.Duration `env:"KAFKA_BATCH_TIMEOUT" envDefault:"50ms"`
		WriteTimeout time.Duration `env:"KAFKA_WRITE_TIMEOUT" envDefault:"10s"`
	}

	OutboxRelay struct {
		PollInterval        time.Duration `env:"OUTBOX_RELAY_POLL_INTERVAL" envDefault:"2s"`
		MarkFailedInterval  time.Duration `env:"OUTBOX_RELAY_MARK_FAILED_INTERVAL" envDefault:"2m"`
		CleanupInterval     time.Duration `env:"OUTBOX_RELAY_CLEANUP_INTERVAL" envDefault:"24h"`
		ProcessBatchTimeout time.Duration `env:"OUTBOX_RELAY_PROCESS_BATCH_TIMEOUT" envDefault:"15s"`
		ShutdownTimeout     time.Duration `env:"OUTBOX_RELAY_SHUTDOWN_TIMEOUT" envDefault:"5s"`
		BatchSize           int           `env:"OUTBOX_RELAY_BATCH_SIZE" envDefault:"100"`
		MaxRetries          int           `env:"OUTBOX_RELAY_MAX_RETRIES" envDefault:"3"`
	}

	Metrics struct {
		Enabled bool `env:"METRICS_ENABLED" envDefault:"true"`
	}

	Swagger struct {
		Enabled bool `env:"SWAGGER_ENABLED" envDefault:"false"`
	}
)

func New() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	switch cfg.Submission.ReannotatePolicy {
	case "revert", "block":
	default:
		return nil, fmt.Errorf("config error: SUBMISSION_REANNOTATE_POLICY must be revert or block, got %q", cfg.Submission.ReannotatePolicy)
	}

	return cfg, nil
}
