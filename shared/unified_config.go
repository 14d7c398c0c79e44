package shared

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	DefaultBaseURL   = "https://dhlottery.co.kr"
	DefaultDrawDir   = "src/constant/draw_no"
	DefaultRoundDir  = "./constant/round_no"
	DefaultSinkMode  = SinkModeFile
	DefaultFetchMode = FetchModeHTTP
)

// Sink modes select where ingested draw records are written.
const (
	SinkModeFile     = "file"
	SinkModeRemote   = "remote"
	SinkModePostgres = "postgres"
)

// Fetch modes select how draw pages are retrieved.
const (
	FetchModeHTTP    = "http"
	FetchModeBrowser = "browser"
)

// UnifiedConfiguration holds all configuration parameters for the application
type UnifiedConfiguration struct {
	Service  ServiceConfig  `json:"service"`
	Storage  StorageConfig  `json:"storage"`
	Remote   RemoteConfig   `json:"remote"`
	Database DatabaseConfig `json:"database"`
	Server   ServerConfig   `json:"server"`
	Logging  LoggingConfig  `json:"logging"`
}

// ServiceConfig holds scraping transport configuration
type ServiceConfig struct {
	BaseURL            string        `json:"base_url"`
	HTTPRequestTimeout time.Duration `json:"http_timeout"`
	RequestRateLimit   time.Duration `json:"rate_limit"`
	MaxRetryAttempts   int           `json:"max_retries"`
	FetchMode          string        `json:"fetch_mode"`
	EnableMetrics      bool          `json:"enable_metrics"`
}

// LandingPageURL is the page carrying the latest draw number.
func (c ServiceConfig) LandingPageURL() string {
	return c.BaseURL + "/common.do?method=main"
}

// DrawResultURL is the result page of a single draw.
func (c ServiceConfig) DrawResultURL(drawNo int) string {
	return fmt.Sprintf("%s/gameResult.do?method=byWin&drwNo=%d", c.BaseURL, drawNo)
}

// StorageConfig holds the local JSON layout and the active sink
type StorageConfig struct {
	DrawDir  string `json:"draw_dir"`
	RoundDir string `json:"round_dir"`
	SinkMode string `json:"sink_mode"`
}

// RemoteConfig holds the remote table store credentials
type RemoteConfig struct {
	URL string `json:"url"`
	Key string `json:"-"`
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	URL             string        `json:"-"`
	MaxOpenConns    int           `json:"max_open_conns"`
	MaxIdleConns    int           `json:"max_idle_conns"`
	ConnMaxLifetime time.Duration `json:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `json:"conn_max_idle_time"`
	PingTimeout     time.Duration `json:"ping_timeout"`
}

// ServerConfig holds the draw query API configuration
type ServerConfig struct {
	Port string `json:"port"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level       string `json:"level"`
	Format      string `json:"format"`
	ServiceName string `json:"service_name"`
}

// NewDefaultUnifiedConfiguration returns production-ready default configuration
func NewDefaultUnifiedConfiguration() *UnifiedConfiguration {
	return &UnifiedConfiguration{
		Service: ServiceConfig{
			BaseURL:            DefaultBaseURL,
			HTTPRequestTimeout: 30 * time.Second,
			RequestRateLimit:   0,
			MaxRetryAttempts:   0,
			FetchMode:          DefaultFetchMode,
			EnableMetrics:      true,
		},
		Storage: StorageConfig{
			DrawDir:  DefaultDrawDir,
			RoundDir: DefaultRoundDir,
			SinkMode: DefaultSinkMode,
		},
		Database: DatabaseConfig{
			MaxOpenConns:    5,
			MaxIdleConns:    2,
			ConnMaxLifetime: 5 * time.Minute,
			ConnMaxIdleTime: 5 * time.Minute,
			PingTimeout:     5 * time.Second,
		},
		Server: ServerConfig{
			Port: "8080",
		},
		Logging: LoggingConfig{
			Level:       "info",
			Format:      "text",
			ServiceName: "lotto-backend",
		},
	}
}

// ValidateAndApplyDefaults validates configuration and applies defaults for invalid values
func (c *UnifiedConfiguration) ValidateAndApplyDefaults() {
	logger := logrus.WithField("component", "UnifiedConfiguration")
	defaults := NewDefaultUnifiedConfiguration()

	if c.Service.BaseURL == "" {
		c.Service.BaseURL = defaults.Service.BaseURL
		logger.Debug("Applied default Service.BaseURL")
	}

	if c.Service.HTTPRequestTimeout <= 0 {
		c.Service.HTTPRequestTimeout = defaults.Service.HTTPRequestTimeout
		logger.Debug("Applied default Service.HTTPRequestTimeout")
	}

	if c.Service.RequestRateLimit < 0 {
		c.Service.RequestRateLimit = 0
		logger.Debug("Applied default Service.RequestRateLimit")
	}

	if c.Service.MaxRetryAttempts < 0 {
		c.Service.MaxRetryAttempts = 0
		logger.Debug("Applied default Service.MaxRetryAttempts")
	}

	if c.Service.FetchMode != FetchModeHTTP && c.Service.FetchMode != FetchModeBrowser {
		if c.Service.FetchMode != "" {
			logger.Warnf("Unknown fetch mode %q, falling back to %q", c.Service.FetchMode, DefaultFetchMode)
		}
		c.Service.FetchMode = DefaultFetchMode
	}

	if c.Storage.DrawDir == "" {
		c.Storage.DrawDir = defaults.Storage.DrawDir
		logger.Debug("Applied default Storage.DrawDir")
	}

	if c.Storage.RoundDir == "" {
		c.Storage.RoundDir = defaults.Storage.RoundDir
		logger.Debug("Applied default Storage.RoundDir")
	}

	switch c.Storage.SinkMode {
	case SinkModeFile, SinkModeRemote, SinkModePostgres:
	default:
		if c.Storage.SinkMode != "" {
			logger.Warnf("Unknown sink mode %q, falling back to %q", c.Storage.SinkMode, DefaultSinkMode)
		}
		c.Storage.SinkMode = DefaultSinkMode
	}

	if c.Database.MaxOpenConns <= 0 {
		c.Database.MaxOpenConns = defaults.Database.MaxOpenConns
		logger.Debug("Applied default Database.MaxOpenConns")
	}

	if c.Database.MaxIdleConns <= 0 {
		c.Database.MaxIdleConns = defaults.Database.MaxIdleConns
		logger.Debug("Applied default Database.MaxIdleConns")
	}

	if c.Database.ConnMaxLifetime <= 0 {
		c.Database.ConnMaxLifetime = defaults.Database.ConnMaxLifetime
	}

	if c.Database.PingTimeout <= 0 {
		c.Database.PingTimeout = defaults.Database.PingTimeout
	}

	if c.Server.Port == "" {
		c.Server.Port = defaults.Server.Port
	}

	if c.Logging.Level == "" {
		c.Logging.Level = defaults.Logging.Level
		logger.Debug("Applied default Logging.Level")
	}

	if c.Logging.Format == "" {
		c.Logging.Format = defaults.Logging.Format
		logger.Debug("Applied default Logging.Format")
	}

	if c.Logging.ServiceName == "" {
		c.Logging.ServiceName = defaults.Logging.ServiceName
	}
}
