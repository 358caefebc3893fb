package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string        `env:"PORT,      default=8080"`
	Env       string        `env:"ENV,       default=development"`
	JWTSecret string        `env:"JWT_SECRET"`
	TokenTTL  time.Duration `env:"TOKEN_TTL, default=24h"`
	LogLevel  string        `env:"LOG_LEVEL, default=info"`

	// StoreDriver selects the entity store: mongo or memory.
	StoreDriver string `env:"STORE_DRIVER, default=mongo"`

	Mongo     MongoConfig
	Redis     RedisConfig
	Storage   StorageConfig
	Workers   WorkerConfig
	UserCache UserCacheConfig
}

type MongoConfig struct {
	URI          string `env:"MONGO_URI,          default=mongodb://localhost:27017"`
	Database     string `env:"MONGO_DB,           default=moody"`
	Transactions bool   `env:"MONGO_TRANSACTIONS, default=false"`
}

type RedisConfig struct {
	Addr     string        `env:"REDIS_ADDR,     default=localhost:6379"`
	DB       int           `env:"REDIS_DB,       default=0"`
	Password string        `env:"REDIS_PASSWORD"`
	PoolSize int           `env:"REDIS_POOL_SIZE, default=10"`
	LockTTL  time.Duration `env:"LOCK_TTL,       default=5s"`
}

type StorageConfig struct {
	// Driver selects image storage: local or s3.
	Driver    string `env:"STORAGE_DRIVER,     default=local"`
	Dir       string `env:"STORAGE_DIR,        default=./uploads"`
	PublicURL string `env:"STORAGE_PUBLIC_URL, default=/uploads"`
	MaxBytes  int64  `env:"UPLOAD_MAX_BYTES,   default=10485760"`

	S3Bucket    string `env:"S3_BUCKET"`
	S3Region    string `env:"S3_REGION, default=us-east-1"`
	S3Endpoint  string `env:"S3_ENDPOINT"`
	S3AccessKey string `env:"S3_ACCESS_KEY"`
	S3SecretKey string `env:"S3_SECRET_KEY"`
	S3PublicURL string `env:"S3_PUBLIC_URL"`
}

type WorkerConfig struct {
	// ImageDelete is the image deletion worker count; 0 deletes synchronously.
	ImageDelete int `env:"IMAGE_DELETE_WORKERS, default=4"`
}

type UserCacheConfig struct {
	Size int           `env:"USER_CACHE_SIZE, default=1024"`
	TTL  time.Duration `env:"USER_CACHE_TTL,  default=5m"`
}

// IsDevelopment reports whether the process runs with development defaults.
func (c *Config) IsDevelopment() bool { return c.Env == "development" }

// Validate checks cross-field constraints envconfig cannot express.
func (c *Config) Validate() error {
	var errs []error
	if c.JWTSecret == "" && !c.IsDevelopment() {
		errs = append(errs, errors.New("JWT_SECRET is required outside development"))
	}
	switch c.StoreDriver {
	case "mongo", "memory":
	default:
		errs = append(errs, fmt.Errorf("STORE_DRIVER must be mongo or memory, got %q", c.StoreDriver))
	}
	switch c.Storage.Driver {
	case "local":
	case "s3":
		if c.Storage.S3Bucket == "" {
			errs = append(errs, errors.New("S3_BUCKET is required when STORAGE_DRIVER=s3"))
		}
	default:
		errs = append(errs, fmt.Errorf("STORAGE_DRIVER must be local or s3, got %q", c.Storage.Driver))
	}
	if c.Storage.MaxBytes <= 0 {
		errs = append(errs, errors.New("UPLOAD_MAX_BYTES must be positive"))
	}
	if c.Workers.ImageDelete < 0 {
		errs = append(errs, errors.New("IMAGE_DELETE_WORKERS must not be negative"))
	}
	return errors.Join(errs...)
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return LoadFrom(ctx, envconfig.OsLookuper())
}

// LoadFrom reads configuration through l and validates it.
func LoadFrom(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: failed to load configuration: %w", err)
	}
	if cfg.JWTSecret == "" && cfg.IsDevelopment() {
		cfg.JWTSecret = "development-secret"
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}
