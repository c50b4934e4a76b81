package config

import (
	"errors"
	"io/fs"
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

	Database    DatabaseConfig
	Redis       RedisConfig
	JWT         JWTConfig
	CORS        CORSConfig
	Log         LogConfig
	RateLimit   RateLimitConfig
	Scoring     ScoringConfig
	Competency  CompetencyConfig
	Attachments AttachmentsConfig
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
	Secret            string
	Expiration        time.Duration
	RefreshExpiration time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// RateLimitConfig bounds login attempts per client IP.
type RateLimitConfig struct {
	Enabled         bool
	LoginPerMinute  int
	LoginBurst      int
	IdleEviction    time.Duration
	CleanupInterval time.Duration
}

// ScoringConfig overrides the business weights of the scoring engine.
// Zero values fall back to scoring.DefaultConfig.
type ScoringConfig struct {
	ManualGPAWeight     float64
	RequirementWeight   float64
	SelfWeight          float64
	PeerWeight          float64
	ActivityPerHour     float64
	ActivityStaffFactor float64
	ActivityTarget      float64
}

// CompetencyConfig tunes overview caching and background recalculation.
type CompetencyConfig struct {
	CacheTTL          time.Duration
	LowScoreThreshold float64
	WorkerConcurrency int
	WorkerRetries     int
	QueueBuffer       int
}

// AttachmentsConfig controls certificate storage and validation.
type AttachmentsConfig struct {
	StorageDir       string
	SignedURLSecret  string
	SignedURLTTL     time.Duration
	MaxFileSizeBytes int64
	AllowedMIMEs     []string
	PurgeRetention   time.Duration
	PurgeInterval    time.Duration
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
		if !errors.As(err, &notFound) && !isMissingFile(err) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:            v.GetString("JWT_SECRET"),
		Expiration:        parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
		RefreshExpiration: parseDuration(v.GetString("REFRESH_TOKEN_EXPIRATION"), 7*24*time.Hour),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.RateLimit = RateLimitConfig{
		Enabled:         v.GetBool("ENABLE_LOGIN_RATE_LIMIT"),
		LoginPerMinute:  v.GetInt("LOGIN_RATE_PER_MINUTE"),
		LoginBurst:      v.GetInt("LOGIN_RATE_BURST"),
		IdleEviction:    parseDuration(v.GetString("LOGIN_RATE_IDLE_EVICTION"), 10*time.Minute),
		CleanupInterval: parseDuration(v.GetString("LOGIN_RATE_CLEANUP_INTERVAL"), time.Minute),
	}

	cfg.Scoring = ScoringConfig{
		ManualGPAWeight:     v.GetFloat64("SCORING_MANUAL_GPA_WEIGHT"),
		RequirementWeight:   v.GetFloat64("SCORING_REQUIREMENT_WEIGHT"),
		SelfWeight:          v.GetFloat64("SCORING_SELF_WEIGHT"),
		PeerWeight:          v.GetFloat64("SCORING_PEER_WEIGHT"),
		ActivityPerHour:     v.GetFloat64("SCORING_ACTIVITY_PER_HOUR"),
		ActivityStaffFactor: v.GetFloat64("SCORING_ACTIVITY_STAFF_FACTOR"),
		ActivityTarget:      v.GetFloat64("SCORING_ACTIVITY_TARGET"),
	}

	cfg.Competency = CompetencyConfig{
		CacheTTL:          parseDuration(v.GetString("COMPETENCY_CACHE_TTL"), 5*time.Minute),
		LowScoreThreshold: v.GetFloat64("COMPETENCY_LOW_SCORE_THRESHOLD"),
		WorkerConcurrency: v.GetInt("COMPETENCY_WORKER_CONCURRENCY"),
		WorkerRetries:     v.GetInt("COMPETENCY_WORKER_RETRIES"),
		QueueBuffer:       v.GetInt("COMPETENCY_QUEUE_BUFFER"),
	}

	maxAttachmentSize := v.GetInt64("ATTACHMENTS_MAX_FILE_SIZE")
	if maxAttachmentSize <= 0 {
		maxAttachmentSize = 5 * 1024 * 1024
	}
	cfg.Attachments = AttachmentsConfig{
		StorageDir:       v.GetString("ATTACHMENTS_STORAGE_DIR"),
		SignedURLSecret:  v.GetString("ATTACHMENTS_SIGNED_URL_SECRET"),
		SignedURLTTL:     parseDuration(v.GetString("ATTACHMENTS_SIGNED_URL_TTL"), 15*time.Minute),
		MaxFileSizeBytes: maxAttachmentSize,
		AllowedMIMEs:     splitAndTrim(v.GetString("ATTACHMENTS_ALLOWED_MIME_TYPES")),
		PurgeRetention:   parseDuration(v.GetString("ATTACHMENTS_PURGE_RETENTION"), 720*time.Hour),
		PurgeInterval:    parseDuration(v.GetString("ATTACHMENTS_PURGE_INTERVAL"), time.Hour),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "student_competency")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "24h")
	v.SetDefault("REFRESH_TOKEN_EXPIRATION", "168h")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ENABLE_LOGIN_RATE_LIMIT", true)
	v.SetDefault("LOGIN_RATE_PER_MINUTE", 10)
	v.SetDefault("LOGIN_RATE_BURST", 5)
	v.SetDefault("LOGIN_RATE_IDLE_EVICTION", "10m")
	v.SetDefault("LOGIN_RATE_CLEANUP_INTERVAL", "1m")

	v.SetDefault("SCORING_MANUAL_GPA_WEIGHT", 0.4)
	v.SetDefault("SCORING_REQUIREMENT_WEIGHT", 0.6)
	v.SetDefault("SCORING_SELF_WEIGHT", 0.2)
	v.SetDefault("SCORING_PEER_WEIGHT", 0.8)
	v.SetDefault("SCORING_ACTIVITY_PER_HOUR", 1.0)
	v.SetDefault("SCORING_ACTIVITY_STAFF_FACTOR", 1.5)
	v.SetDefault("SCORING_ACTIVITY_TARGET", 40.0)

	v.SetDefault("COMPETENCY_CACHE_TTL", "5m")
	v.SetDefault("COMPETENCY_LOW_SCORE_THRESHOLD", 50.0)
	v.SetDefault("COMPETENCY_WORKER_CONCURRENCY", 2)
	v.SetDefault("COMPETENCY_WORKER_RETRIES", 3)
	v.SetDefault("COMPETENCY_QUEUE_BUFFER", 64)

	v.SetDefault("ATTACHMENTS_STORAGE_DIR", "./attachments")
	v.SetDefault("ATTACHMENTS_SIGNED_URL_SECRET", "dev_attachments_secret")
	v.SetDefault("ATTACHMENTS_SIGNED_URL_TTL", "15m")
	v.SetDefault("ATTACHMENTS_MAX_FILE_SIZE", 5*1024*1024)
	v.SetDefault("ATTACHMENTS_ALLOWED_MIME_TYPES", "application/pdf,image/png,image/jpeg")
	v.SetDefault("ATTACHMENTS_PURGE_RETENTION", "720h")
	v.SetDefault("ATTACHMENTS_PURGE_INTERVAL", "1h")
}

// isMissingFile reports whether viper failed only because .env is absent.
func isMissingFile(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
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
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
