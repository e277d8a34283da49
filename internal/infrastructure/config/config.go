package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port           string   `env:"PORT,            default=8080"`
	Env            string   `env:"ENV,             default=development"`
	LogLevel       string   `env:"LOG_LEVEL,       default=info"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS, default=http://localhost:3000"`

	Auth   AuthConfig
	Mongo  MongoConfig
	Redis  RedisConfig
	SMTP   SMTPConfig
	Google GoogleConfig
	S3     S3Config
}

// AuthConfig carries the three independent token secrets. Sharing a secret
// across kinds would let one token kind impersonate another.
type AuthConfig struct {
	AccessSecret  string        `env:"ACCESS_TOKEN_SECRET,  required"`
	RefreshSecret string        `env:"REFRESH_TOKEN_SECRET, required"`
	ResetSecret   string        `env:"RESET_TOKEN_SECRET,   required"`
	AccessTTL     time.Duration `env:"ACCESS_TOKEN_TTL,     default=30m"`
	RefreshTTL    time.Duration `env:"REFRESH_TOKEN_TTL,    default=168h"`
	ResetTTL      time.Duration `env:"RESET_TOKEN_TTL,      default=10m"`
	BcryptCost    int           `env:"BCRYPT_COST,          default=12"`

	// ResetURL is the frontend page the emailed reset link points at; the
	// token is appended as a query parameter.
	ResetURL      string        `env:"RESET_URL,       default=http://localhost:3000/reset_password"`
	ResetCooldown time.Duration `env:"RESET_COOLDOWN,  default=2m"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=poll_api"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

type SMTPConfig struct {
	Host     string `env:"SMTP_HOST, default=localhost"`
	Port     int    `env:"SMTP_PORT, default=587"`
	Username string `env:"SMTP_USER"`
	Password string `env:"SMTP_PASS"`
	From     string `env:"SMTP_FROM, default=no-reply@pollwise.io"`
}

type GoogleConfig struct {
	// ClientID is the OAuth client the Google ID token must be issued for.
	// Federated login is disabled when empty.
	ClientID string `env:"GOOGLE_CLIENT_ID"`
}

type S3Config struct {
	Region string `env:"S3_REGION, default=us-east-1"`
	Bucket string `env:"S3_BUCKET, default=pollwise-uploads"`
	// Endpoint overrides the AWS endpoint for S3-compatible stores (MinIO).
	Endpoint  string `env:"S3_ENDPOINT"`
	AccessKey string `env:"S3_ACCESS_KEY"`
	SecretKey string `env:"S3_SECRET_KEY"`
	// PublicURL is the base URL objects are served from. Defaults to the
	// bucket's virtual-hosted AWS URL when empty.
	PublicURL string `env:"S3_PUBLIC_URL"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return &cfg, nil
}
