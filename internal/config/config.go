package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	BackendMongo    = "mongo"
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
)

// Config holds all service configuration loaded from environment variables.
type Config struct {
	Port string

	DataBackend string
	UserBackend string
	MongoURI    string
	MongoDB     string
	PostgresDSN string

	RedisAddr          string
	RedisPassword      string
	RateLimitPerMinute int

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool

	JWTSecret string
	JWTTTL    time.Duration

	GitHubAPIURL  string
	GitHubToken   string
	GitHubTimeout time.Duration

	CORSOrigins []string
	LogLevel    string
	LogFormat   string
}

func Load() *Config {
	return &Config{
		Port:               getenv("PORT", "5000"),
		DataBackend:        strings.ToLower(getenv("DATA_BACKEND", BackendMongo)),
		UserBackend:        strings.ToLower(getenv("USER_BACKEND", "")),
		MongoURI:           getenv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:            getenv("MONGO_DB", "devconnector"),
		PostgresDSN:        getenv("POSTGRES_DSN", ""),
		RedisAddr:          getenv("REDIS_ADDR", ""),
		RedisPassword:      getenv("REDIS_PASSWORD", ""),
		RateLimitPerMinute: getenvInt("RATE_LIMIT_PER_MINUTE", 20),
		MinioEndpoint:      getenv("MINIO_ENDPOINT", ""),
		MinioAccessKey:     getenv("MINIO_ACCESS_KEY", ""),
		MinioSecretKey:     getenv("MINIO_SECRET_KEY", ""),
		MinioBucket:        getenv("MINIO_BUCKET", "devconnector-avatars"),
		MinioUseSSL:        getenv("MINIO_USE_SSL", "false") == "true",
		JWTSecret:          getenv("JWT_SECRET", ""),
		JWTTTL:             getenvDuration("JWT_TTL", 1000*time.Hour),
		GitHubAPIURL:       getenv("GITHUB_API_URL", "https://api.github.com"),
		GitHubToken:        getenv("GITHUB_TOKEN", ""),
		GitHubTimeout:      getenvDuration("GITHUB_TIMEOUT", 10*time.Second),
		CORSOrigins:        splitCSV(getenv("CORS_ORIGINS", "http://localhost:3000")),
		LogLevel:           getenv("LOG_LEVEL", "info"),
		LogFormat:          getenv("LOG_FORMAT", "json"),
	}
}

// Validate reports settings the server cannot start with.
func (c *Config) Validate() error {
	var errs []error
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	switch c.DataBackend {
	case BackendMongo, BackendMemory:
	default:
		errs = append(errs, fmt.Errorf("DATA_BACKEND must be %q or %q, got %q", BackendMongo, BackendMemory, c.DataBackend))
	}
	switch c.UserBackend {
	case "", c.DataBackend:
	case BackendPostgres:
		if c.PostgresDSN == "" {
			errs = append(errs, errors.New("POSTGRES_DSN is required when USER_BACKEND=postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("USER_BACKEND must be empty, %q or match DATA_BACKEND, got %q", BackendPostgres, c.UserBackend))
	}
	if c.DataBackend == BackendMongo && c.MongoURI == "" {
		errs = append(errs, errors.New("MONGO_URI is required when DATA_BACKEND=mongo"))
	}
	if c.MinioEndpoint != "" && (c.MinioAccessKey == "" || c.MinioSecretKey == "") {
		errs = append(errs, errors.New("MINIO_ACCESS_KEY and MINIO_SECRET_KEY are required with MINIO_ENDPOINT"))
	}
	if c.JWTTTL <= 0 {
		errs = append(errs, errors.New("JWT_TTL must be positive"))
	}
	return errors.Join(errs...)
}

// SlogLevel maps LOG_LEVEL onto a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	n, err := strconv.Atoi(getenv(key, ""))
	if err != nil {
		return fallback
	}
	return n
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(getenv(key, ""))
	if err != nil {
		return fallback
	}
	return d
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
