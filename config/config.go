package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/fenilmodi00/lotto-backend/shared"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// ErrMissingRemoteCredentials is returned when SUPABASE_URL or SUPABASE_KEY is unset.
var ErrMissingRemoteCredentials = errors.New("SUPABASE_URL 또는 SUPABASE_KEY 환경변수가 설정되지 않았습니다")

// Config mirrors the raw environment; typed settings live in shared.UnifiedConfiguration.
type Config struct {
	BaseURL            string
	DrawDir            string
	RoundDir           string
	SinkMode           string
	FetchMode          string
	DatabaseURL        string
	SupabaseURL        string
	SupabaseKey        string
	ServerPort         string
	LogLevel           string
	LogFormat          string
	RequestDelayMillis string
	HTTPTimeoutSeconds string
	EnableMetrics      string
}

// LoadConfig loads .env (when present) and reads the process environment.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("No .env file loaded, using system environment variables")
	}

	return &Config{
		BaseURL:            getEnv("LOTTO_BASE_URL", shared.DefaultBaseURL),
		DrawDir:            getEnv("DRAW_DIR", shared.DefaultDrawDir),
		RoundDir:           getEnv("ROUND_DIR", shared.DefaultRoundDir),
		SinkMode:           getEnv("SINK_MODE", shared.DefaultSinkMode),
		FetchMode:          getEnv("FETCH_MODE", shared.DefaultFetchMode),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		SupabaseURL:        getEnv("SUPABASE_URL", ""),
		SupabaseKey:        getEnv("SUPABASE_KEY", ""),
		ServerPort:         getEnv("SERVER_PORT", "8080"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogFormat:          getEnv("LOG_FORMAT", "text"),
		RequestDelayMillis: getEnv("REQUEST_DELAY_MS", "0"),
		HTTPTimeoutSeconds: getEnv("HTTP_TIMEOUT_SECONDS", "30"),
		EnableMetrics:      getEnv("ENABLE_METRICS", "true"),
	}
}

// Unified converts the raw environment into the typed application configuration.
func (c *Config) Unified() *shared.UnifiedConfiguration {
	unified := shared.NewDefaultUnifiedConfiguration()

	unified.Service.BaseURL = c.BaseURL
	unified.Service.FetchMode = c.FetchMode
	unified.Service.RequestRateLimit = c.getRequestDelay()
	unified.Service.HTTPRequestTimeout = c.getHTTPTimeout()
	unified.Service.EnableMetrics = c.getEnableMetrics()
	unified.Storage.DrawDir = c.DrawDir
	unified.Storage.RoundDir = c.RoundDir
	unified.Storage.SinkMode = c.SinkMode
	unified.Remote.URL = c.SupabaseURL
	unified.Remote.Key = c.SupabaseKey
	unified.Database.URL = c.DatabaseURL
	unified.Server.Port = c.ServerPort
	unified.Logging.Level = c.LogLevel
	unified.Logging.Format = c.LogFormat

	unified.ValidateAndApplyDefaults()
	return unified
}

// LoadRemoteStoreConfig reads the remote table store credentials and fails
// fast when either one is missing.
func LoadRemoteStoreConfig() (shared.RemoteConfig, error) {
	cfg := LoadConfig()
	return NewRemoteStoreConfig(cfg.SupabaseURL, cfg.SupabaseKey)
}

// NewRemoteStoreConfig validates explicitly supplied remote credentials.
func NewRemoteStoreConfig(url, key string) (shared.RemoteConfig, error) {
	if url == "" || key == "" {
		return shared.RemoteConfig{}, shared.NewServiceError(
			shared.ErrorCategoryConfiguration,
			"MISSING_REMOTE_CREDENTIALS",
			"remote table store is not configured",
			"Config",
			"NewRemoteStoreConfig",
			false,
			ErrMissingRemoteCredentials,
		)
	}
	return shared.RemoteConfig{URL: url, Key: key}, nil
}

func (c *Config) getRequestDelay() time.Duration {
	millis, err := strconv.Atoi(c.RequestDelayMillis)
	if err != nil || millis < 0 {
		logrus.Warnf("Invalid REQUEST_DELAY_MS value: %s, using no delay", c.RequestDelayMillis)
		return 0
	}
	return time.Duration(millis) * time.Millisecond
}

func (c *Config) getHTTPTimeout() time.Duration {
	seconds, err := strconv.Atoi(c.HTTPTimeoutSeconds)
	if err != nil || seconds <= 0 {
		logrus.Warnf("Invalid HTTP_TIMEOUT_SECONDS value: %s, using default 30 seconds", c.HTTPTimeoutSeconds)
		return 30 * time.Second
	}
	return time.Duration(seconds) * time.Second
}

func (c *Config) getEnableMetrics() bool {
	enabled, err := strconv.ParseBool(c.EnableMetrics)
	if err != nil {
		logrus.Warnf("Invalid ENABLE_METRICS value: %s, keeping metrics enabled", c.EnableMetrics)
		return true
	}
	return enabled
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// String hides credentials when the config is printed.
func (c *Config) String() string {
	return fmt.Sprintf("Config{BaseURL:%s SinkMode:%s FetchMode:%s DrawDir:%s RoundDir:%s}",
		c.BaseURL, c.SinkMode, c.FetchMode, c.DrawDir, c.RoundDir)
}
