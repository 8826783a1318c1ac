package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultAppName        = "Suvichar"
	defaultAppEnv         = "development"
	defaultPort           = "8080"
	defaultLogLevel       = "info"
	defaultLogFormat      = "json"
	defaultStorageDriver  = "sqlite"
	defaultSQLitePath     = "suvichar.db"
	defaultLibraryDriver  = "local"
	defaultLibraryDir     = "library"
	defaultExportDir      = "exports"
	defaultShutdownDelay  = 10 * time.Second
	defaultIdempotencyTTL = 24 * time.Hour
	defaultLatencyMin     = 300 * time.Millisecond
	defaultLatencyMax     = 600 * time.Millisecond
	defaultCodeRequests   = 5
	devSessionSecret      = "suvichar-dev-secret"

	idemTTLSecondsEnvVar   = "IDEMPOTENCY_TTL_SECONDS"
	idemTTLDurEnvVar       = "IDEMPOTENCY_TTL"
	shutdownSecondsEnvVar  = "SHUTDOWN_TIMEOUT_SECONDS"
	shutdownDurationEnvVar = "SHUTDOWN_TIMEOUT"
)

// Storage drivers accepted by STORAGE_DRIVER.
const (
	StorageMemory   = "memory"
	StorageSQLite   = "sqlite"
	StorageRedis    = "redis"
	StoragePostgres = "postgres"
)

// Library drivers accepted by LIBRARY_DRIVER.
const (
	LibraryLocal = "local"
	LibraryS3    = "s3"
)

// S3 holds object storage settings for the s3 library driver.
type S3 struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

// Config captures application runtime configuration loaded from environment variables.
type Config struct {
	AppName   string
	AppEnv    string
	Port      string
	LogLevel  string
	LogFormat string

	StorageDriver string
	SQLitePath    string
	DatabaseURL   string
	RedisURL      string

	SessionSecret string
	OTPStrict     bool

	LatencyMin time.Duration
	LatencyMax time.Duration

	LibraryDriver string
	LibraryDir    string
	ExportDir     string
	S3            S3

	CodeRequestsPerMinute int
	ShutdownPeriod        time.Duration
	IdempotencyTTL        time.Duration
}

// Load reads an optional .env file, then the environment, and populates a Config instance.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from the current process environment only.
func FromEnv() (Config, error) {
	cfg := Config{
		AppName:       getEnv("APP_NAME", defaultAppName),
		AppEnv:        strings.ToLower(getEnv("APP_ENV", defaultAppEnv)),
		Port:          getEnv("PORT", defaultPort),
		LogLevel:      strings.ToLower(getEnv("LOG_LEVEL", defaultLogLevel)),
		LogFormat:     strings.ToLower(getEnv("LOG_FORMAT", defaultLogFormat)),
		StorageDriver: strings.ToLower(getEnv("STORAGE_DRIVER", defaultStorageDriver)),
		SQLitePath:    getEnv("SQLITE_PATH", defaultSQLitePath),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		RedisURL:      os.Getenv("REDIS_URL"),
		SessionSecret: os.Getenv("SESSION_SECRET"),
		LibraryDriver: strings.ToLower(getEnv("LIBRARY_DRIVER", defaultLibraryDriver)),
		LibraryDir:    getEnv("LIBRARY_DIR", defaultLibraryDir),
		ExportDir:     getEnv("EXPORT_DIR", defaultExportDir),
		S3: S3{
			Bucket:    os.Getenv("S3_BUCKET"),
			Region:    os.Getenv("S3_REGION"),
			Endpoint:  os.Getenv("S3_ENDPOINT"),
			AccessKey: os.Getenv("S3_ACCESS_KEY"),
			SecretKey: os.Getenv("S3_SECRET_KEY"),
		},
		LatencyMin:            defaultLatencyMin,
		LatencyMax:            defaultLatencyMax,
		CodeRequestsPerMinute: defaultCodeRequests,
		ShutdownPeriod:        defaultShutdownDelay,
		IdempotencyTTL:        defaultIdempotencyTTL,
	}

	var err error
	if cfg.OTPStrict, err = getBool("OTP_STRICT", false); err != nil {
		return Config{}, err
	}
	if cfg.LatencyMin, err = getDuration("GATEWAY_LATENCY_MIN", cfg.LatencyMin); err != nil {
		return Config{}, err
	}
	if cfg.LatencyMax, err = getDuration("GATEWAY_LATENCY_MAX", cfg.LatencyMax); err != nil {
		return Config{}, err
	}
	if cfg.LatencyMax < cfg.LatencyMin {
		return Config{}, fmt.Errorf("GATEWAY_LATENCY_MAX (%s) is below GATEWAY_LATENCY_MIN (%s)", cfg.LatencyMax, cfg.LatencyMin)
	}
	if v := os.Getenv("CODE_REQUESTS_PER_MINUTE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid CODE_REQUESTS_PER_MINUTE: %w", err)
		}
		cfg.CodeRequestsPerMinute = n
	}

	if v := os.Getenv(shutdownSecondsEnvVar); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", shutdownSecondsEnvVar, err)
		}
		cfg.ShutdownPeriod = time.Duration(seconds) * time.Second
	} else if cfg.ShutdownPeriod, err = getDuration(shutdownDurationEnvVar, cfg.ShutdownPeriod); err != nil {
		return Config{}, err
	}

	if v := os.Getenv(idemTTLSecondsEnvVar); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", idemTTLSecondsEnvVar, err)
		}
		cfg.IdempotencyTTL = time.Duration(seconds) * time.Second
	} else if cfg.IdempotencyTTL, err = getDuration(idemTTLDurEnvVar, cfg.IdempotencyTTL); err != nil {
		return Config{}, err
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.StorageDriver {
	case StorageMemory:
	case StorageSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH must be set when STORAGE_DRIVER=%s", c.StorageDriver)
		}
	case StorageRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL must be set when STORAGE_DRIVER=%s", c.StorageDriver)
		}
	case StoragePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL must be set when STORAGE_DRIVER=%s", c.StorageDriver)
		}
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver)
	}

	switch c.LibraryDriver {
	case LibraryLocal:
		if c.LibraryDir == "" {
			return fmt.Errorf("LIBRARY_DIR must be set when LIBRARY_DRIVER=%s", c.LibraryDriver)
		}
	case LibraryS3:
		if c.S3.Bucket == "" {
			return fmt.Errorf("S3_BUCKET must be set when LIBRARY_DRIVER=%s", c.LibraryDriver)
		}
	default:
		return fmt.Errorf("unknown LIBRARY_DRIVER %q", c.LibraryDriver)
	}

	if c.SessionSecret == "" {
		if !c.IsDev() {
			return fmt.Errorf("SESSION_SECRET must be set when APP_ENV=%s", c.AppEnv)
		}
		c.SessionSecret = devSessionSecret
	}
	return nil
}

// IsDev reports whether the service runs in a local development environment.
func (c Config) IsDev() bool {
	switch c.AppEnv {
	case "dev", "development", "local", "test":
		return true
	default:
		return false
	}
}

// Address returns the listen address in the format Fiber expects.
func (c Config) Address() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return fmt.Sprintf(":%s", c.Port)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}
