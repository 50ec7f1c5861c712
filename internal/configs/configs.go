package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	StoreSQLite = "sqlite"
	StoreMongo  = "mongo"

	RevocationMemory = "memory"
	RevocationRedis  = "redis"
)

type Config struct {
	AppURL                 string
	StoreDriver            string
	DatabaseDSN            string
	MongoURI               string
	MongoDatabase          string
	JWTSecret              string
	JWTIssuer              string
	TokenTTL               time.Duration
	BcryptCost             int
	RevocationBackend      string
	RedisAddr              string
	RedisRevocationPrefix  string
	RateLimit              int
	RateLimitBurst         int
	CORSAllowOrigins       []string
	LogLevel               string
	LogFormat              string
	ShutdownTimeoutSeconds int
}

func Load() (Config, error) {
	appHost := getEnv("APP_HOST", "0.0.0.0")
	appPort := getEnv("APP_PORT", "5000")
	redisHost := getEnv("REDIS_HOST", "127.0.0.1")
	redisPort := getEnv("REDIS_PORT", "6379")

	var errs []error
	intVar := func(key string, def int) int {
		v, err := getEnvAsInt(key, def)
		if err != nil {
			errs = append(errs, err)
		}
		return v
	}

	cfg := Config{
		AppURL:                 fmt.Sprintf("%s:%s", appHost, appPort),
		StoreDriver:            strings.ToLower(getEnv("STORE_DRIVER", StoreSQLite)),
		DatabaseDSN:            getEnv("DATABASE_DSN", "tasks.db"),
		MongoURI:               getEnv("MONGODB_URI", ""),
		MongoDatabase:          getEnv("MONGODB_DATABASE", "task-manager"),
		JWTSecret:              getEnv("JWT_SECRET", ""),
		JWTIssuer:              getEnv("JWT_ISSUER", "task-manager"),
		TokenTTL:               time.Duration(intVar("TOKEN_TTL_HOURS", 7*24)) * time.Hour,
		BcryptCost:             intVar("BCRYPT_COST", 10),
		RevocationBackend:      strings.ToLower(getEnv("REVOCATION_BACKEND", RevocationMemory)),
		RedisAddr:              fmt.Sprintf("%s:%s", redisHost, redisPort),
		RedisRevocationPrefix:  getEnv("REDIS_REVOCATION_PREFIX", "task-manager:revoked:"),
		RateLimit:              intVar("RATE_LIMIT_PER_MINUTE", 120),
		RateLimitBurst:         intVar("RATE_LIMIT_BURST", 30),
		CORSAllowOrigins:       splitList(getEnv("CORS_ALLOW_ORIGINS", "*")),
		LogLevel:               strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFormat:              strings.ToLower(getEnv("LOG_FORMAT", "json")),
		ShutdownTimeoutSeconds: intVar("SHUTDOWN_TIMEOUT_SECONDS", 20),
	}

	errs = append(errs, validate(cfg)...)
	if len(errs) > 0 {
		return Config{}, errors.Join(errs...)
	}
	return cfg, nil
}

func validate(cfg Config) []error {
	var errs []error
	check := func(ok bool, msg string) {
		if !ok {
			errs = append(errs, errors.New(msg))
		}
	}

	check(cfg.JWTSecret != "", "JWT_SECRET must not be empty")
	check(cfg.TokenTTL > 0, "TOKEN_TTL_HOURS must be greater than 0")
	check(cfg.RateLimit > 0, "RATE_LIMIT_PER_MINUTE must be greater than 0")
	check(cfg.RateLimitBurst > 0, "RATE_LIMIT_BURST must be greater than 0")
	check(cfg.ShutdownTimeoutSeconds > 0, "SHUTDOWN_TIMEOUT_SECONDS must be greater than 0")

	switch cfg.StoreDriver {
	case StoreSQLite:
		check(cfg.DatabaseDSN != "", "DATABASE_DSN must not be empty")
	case StoreMongo:
		check(cfg.MongoURI != "", "MONGODB_URI must not be empty when STORE_DRIVER=mongo")
		check(cfg.MongoDatabase != "", "MONGODB_DATABASE must not be empty")
	default:
		check(false, "STORE_DRIVER must be sqlite or mongo")
	}

	switch cfg.RevocationBackend {
	case RevocationMemory, RevocationRedis:
	default:
		check(false, "REVOCATION_BACKEND must be memory or redis")
	}

	return errs
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) (int, error) {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err != nil {
			return defaultVal, fmt.Errorf("invalid integer value for %s", key)
		}
		return i, nil
	}
	return defaultVal, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
