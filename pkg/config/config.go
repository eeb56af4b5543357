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
	Env string

	API     APIConfig
	Preview PreviewConfig
	Redis   RedisConfig
	Cache   CacheConfig
	Log     LogConfig
	Sandbox SandboxConfig
	Export  ExportConfig
}

// APIConfig locates the remote enrollment service.
type APIConfig struct {
	BaseURL     string
	Timeout     time.Duration
	UserAgent   string
	RefreshSkew time.Duration
}

// PreviewConfig carries the advisory fee-preview rates. The server-computed
// assessment stays authoritative regardless of these values.
type PreviewConfig struct {
	CreditPerSubject int
	RatePerUnit      float64
	MiscRate         float64
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// CacheConfig governs the optional schedule-catalog cache.
type CacheConfig struct {
	Enabled bool
	TTL     time.Duration
}

type LogConfig struct {
	Level  string
	Format string
}

// SandboxConfig configures the in-memory reference server.
type SandboxConfig struct {
	Port       int
	JWTSecret  string
	JWTExpiry  time.Duration
	SeedDemo   bool
	CORSOrigin []string
}

// ExportConfig controls statement/receipt output.
type ExportConfig struct {
	Dir string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")

	cfg.API = APIConfig{
		BaseURL:     v.GetString("API_BASE_URL"),
		Timeout:     parseDuration(v.GetString("API_TIMEOUT"), 15*time.Second),
		UserAgent:   v.GetString("API_USER_AGENT"),
		RefreshSkew: parseDuration(v.GetString("API_REFRESH_SKEW"), 2*time.Minute),
	}

	cfg.Preview = PreviewConfig{
		CreditPerSubject: v.GetInt("PREVIEW_CREDIT_PER_SUBJECT"),
		RatePerUnit:      v.GetFloat64("PREVIEW_RATE_PER_UNIT"),
		MiscRate:         v.GetFloat64("PREVIEW_MISC_RATE"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.Cache = CacheConfig{
		Enabled: v.GetBool("ENABLE_SCHEDULE_CACHE"),
		TTL:     parseDuration(v.GetString("SCHEDULE_CACHE_TTL"), 5*time.Minute),
	}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Sandbox = SandboxConfig{
		Port:       v.GetInt("SANDBOX_PORT"),
		JWTSecret:  v.GetString("SANDBOX_JWT_SECRET"),
		JWTExpiry:  parseDuration(v.GetString("SANDBOX_JWT_EXPIRY"), 24*time.Hour),
		SeedDemo:   v.GetBool("SANDBOX_SEED_DEMO"),
		CORSOrigin: splitAndTrim(v.GetString("SANDBOX_ALLOWED_ORIGINS")),
	}

	cfg.Export = ExportConfig{
		Dir: v.GetString("EXPORT_DIR"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("API_BASE_URL", "http://localhost:8088/api")
	v.SetDefault("API_TIMEOUT", "15s")
	v.SetDefault("API_USER_AGENT", "enroll-client/0.1")
	v.SetDefault("API_REFRESH_SKEW", "2m")

	v.SetDefault("PREVIEW_CREDIT_PER_SUBJECT", 3)
	v.SetDefault("PREVIEW_RATE_PER_UNIT", 500.0)
	v.SetDefault("PREVIEW_MISC_RATE", 0.1)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("ENABLE_SCHEDULE_CACHE", false)
	v.SetDefault("SCHEDULE_CACHE_TTL", "5m")

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("SANDBOX_PORT", 8088)
	v.SetDefault("SANDBOX_JWT_SECRET", "sandbox-not-a-secret")
	v.SetDefault("SANDBOX_JWT_EXPIRY", "24h")
	v.SetDefault("SANDBOX_SEED_DEMO", true)

	v.SetDefault("EXPORT_DIR", ".")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return d
}

func splitAndTrim(raw string) []string {
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
