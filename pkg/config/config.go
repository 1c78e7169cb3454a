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

// Storage drivers backing the key-value persistence layer.
const (
	StorageMemory   = "memory"
	StorageFile     = "file"
	StorageRedis    = "redis"
	StoragePostgres = "postgres"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Storage    StorageConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	CORS       CORSConfig
	Log        LogConfig
	Auth       AuthConfig
	Sync       SyncConfig
	Attendance AttendanceConfig
	Receipt    ReceiptConfig
	Backup     BackupConfig
}

// StorageConfig selects where ledger keys are persisted.
type StorageConfig struct {
	Driver    string
	Dir       string
	KeyPrefix string
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

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// AuthConfig configures the passcode gate in front of the ledger routes.
type AuthConfig struct {
	Enabled        bool
	SecretCodeHash string
}

// SyncConfig tunes the remote single-file store client.
type SyncConfig struct {
	APIBaseURL    string
	Timeout       time.Duration
	DefaultPath   string
	AutoSyncOnRun bool
}

// AttendanceConfig governs back-dated attendance seeding.
type AttendanceConfig struct {
	SeedSessions int
	ClampSeed    bool
}

// ReceiptConfig points at the QR image renderer.
type ReceiptConfig struct {
	QRBaseURL string
}

// BackupConfig controls the exported envelope.
type BackupConfig struct {
	Version string
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

	cfg.Storage = StorageConfig{
		Driver:    strings.ToLower(v.GetString("STORAGE_DRIVER")),
		Dir:       v.GetString("STORAGE_DIR"),
		KeyPrefix: v.GetString("STORAGE_KEY_PREFIX"),
	}

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

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Auth = AuthConfig{
		Enabled:        v.GetBool("AUTH_ENABLED"),
		SecretCodeHash: v.GetString("AUTH_SECRET_CODE_HASH"),
	}

	cfg.Sync = SyncConfig{
		APIBaseURL:    strings.TrimRight(v.GetString("SYNC_API_BASE_URL"), "/"),
		Timeout:       parseDuration(v.GetString("SYNC_TIMEOUT"), 20*time.Second),
		DefaultPath:   v.GetString("SYNC_DEFAULT_PATH"),
		AutoSyncOnRun: v.GetBool("SYNC_AUTO_ON_START"),
	}

	seed := v.GetInt("ATTENDANCE_SEED_SESSIONS")
	if seed <= 0 {
		seed = 8
	}
	cfg.Attendance = AttendanceConfig{
		SeedSessions: seed,
		ClampSeed:    v.GetBool("ATTENDANCE_CLAMP_SEED"),
	}

	cfg.Receipt = ReceiptConfig{
		QRBaseURL: strings.TrimRight(v.GetString("RECEIPT_QR_BASE_URL"), "/"),
	}

	cfg.Backup = BackupConfig{
		Version: v.GetString("BACKUP_VERSION"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("STORAGE_DRIVER", StorageFile)
	v.SetDefault("STORAGE_DIR", "./data")
	v.SetDefault("STORAGE_KEY_PREFIX", "")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "smart_tuition")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 5)
	v.SetDefault("DB_MAX_IDLE_CONNS", 2)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("AUTH_ENABLED", false)
	v.SetDefault("AUTH_SECRET_CODE_HASH", "")

	v.SetDefault("SYNC_API_BASE_URL", "https://api.github.com")
	v.SetDefault("SYNC_TIMEOUT", "20s")
	v.SetDefault("SYNC_DEFAULT_PATH", "data/tuition_backup.json")
	v.SetDefault("SYNC_AUTO_ON_START", true)

	v.SetDefault("ATTENDANCE_SEED_SESSIONS", 8)
	v.SetDefault("ATTENDANCE_CLAMP_SEED", true)

	v.SetDefault("RECEIPT_QR_BASE_URL", "https://img.vietqr.io/image")
	v.SetDefault("BACKUP_VERSION", "1.0")
}

func isMissingFile(err error) bool {
	return strings.Contains(err.Error(), "no such file or directory")
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
