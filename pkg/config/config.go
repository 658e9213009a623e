package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	CORS      CORSConfig
	Log       LogConfig
	Scheduler SchedulerConfig
	Exports   ExportsConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
	Issuer     string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// SchedulerConfig tunes the coverage matcher and long-shift resolution.
type SchedulerConfig struct {
	// OverloadThreshold is the weekly assignment count past which a placement
	// is flagged (bulk) or requires confirmation (interactive).
	OverloadThreshold int
	// LongShiftEndTime is the extended wall-clock end ("HH:MM") applied to
	// long-shift assignments unless a per-day override exists.
	LongShiftEndTime string
	// LongShiftEndTimeByDay overrides the extended end per day-of-week,
	// keyed by lowercase day name ("wednesday": "18:30").
	LongShiftEndTimeByDay map[string]string
	// CatalogCacheTTL bounds the Redis slot-catalog cache.
	CatalogCacheTTL time.Duration
}

// ExportsConfig controls week schedule export generation.
type ExportsConfig struct {
	StorageDir      string
	SignedURLSecret string
	SignedURLTTL    time.Duration
	Workers         int
}

// Load reads environment variables (and an optional .env file) into a Config.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "")
	v.SetDefault("DB_NAME", "rota")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 20)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_EXPIRATION", "12h")
	v.SetDefault("JWT_ISSUER", "rota-api")

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("SCHEDULER_OVERLOAD_THRESHOLD", 6)
	v.SetDefault("SCHEDULER_LONG_SHIFT_END", "19:30")
	v.SetDefault("SCHEDULER_LONG_SHIFT_END_BY_DAY", "wednesday=18:30")
	v.SetDefault("SCHEDULER_CATALOG_CACHE_TTL", "5m")

	v.SetDefault("EXPORTS_STORAGE_DIR", "./exports")
	v.SetDefault("EXPORTS_SIGNED_URL_TTL", "24h")
	v.SetDefault("EXPORTS_WORKERS", 2)

	cfg := &Config{
		Env:       v.GetString("ENV"),
		Port:      v.GetInt("PORT"),
		APIPrefix: v.GetString("API_PREFIX"),
		Database: DatabaseConfig{
			Host:         v.GetString("DB_HOST"),
			Port:         v.GetInt("DB_PORT"),
			User:         v.GetString("DB_USER"),
			Password:     v.GetString("DB_PASSWORD"),
			Name:         v.GetString("DB_NAME"),
			SSLMode:      v.GetString("DB_SSLMODE"),
			MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetInt("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Secret:     v.GetString("JWT_SECRET"),
			Expiration: v.GetDuration("JWT_EXPIRATION"),
			Issuer:     v.GetString("JWT_ISSUER"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
		Scheduler: SchedulerConfig{
			OverloadThreshold:     v.GetInt("SCHEDULER_OVERLOAD_THRESHOLD"),
			LongShiftEndTime:      v.GetString("SCHEDULER_LONG_SHIFT_END"),
			LongShiftEndTimeByDay: parsePairs(v.GetString("SCHEDULER_LONG_SHIFT_END_BY_DAY")),
			CatalogCacheTTL:       v.GetDuration("SCHEDULER_CATALOG_CACHE_TTL"),
		},
		Exports: ExportsConfig{
			StorageDir:      v.GetString("EXPORTS_STORAGE_DIR"),
			SignedURLSecret: v.GetString("EXPORTS_SIGNED_URL_SECRET"),
			SignedURLTTL:    v.GetDuration("EXPORTS_SIGNED_URL_TTL"),
			Workers:         v.GetInt("EXPORTS_WORKERS"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Env == EnvProduction && c.JWT.Secret == "" {
		return errors.New("JWT_SECRET is required in production")
	}
	if c.Scheduler.OverloadThreshold <= 0 {
		return errors.New("SCHEDULER_OVERLOAD_THRESHOLD must be positive")
	}
	if c.Scheduler.LongShiftEndTime == "" {
		return errors.New("SCHEDULER_LONG_SHIFT_END must be set")
	}
	return nil
}

// splitList parses a comma separated env value into a trimmed slice.
func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// parsePairs parses "key=value,key=value" env values into a map.
func parsePairs(raw string) map[string]string {
	out := map[string]string{}
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		kv := strings.SplitN(pair, "=", 2)
		if len(kv) != 2 {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(kv[0]))
		val := strings.TrimSpace(kv[1])
		if key != "" && val != "" {
			out[key] = val
		}
	}
	return out
}
