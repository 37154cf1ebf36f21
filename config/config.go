// Package config loads the drivefmd configuration: built-in defaults, then an optional YAML file, then environment
// variables.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/c2fo/drivefm/gdrive"
	"github.com/c2fo/drivefm/utils"
)

// Version is set at build time through -ldflags.
var Version = "dev"

// Environment variables read by Load.
const (
	EnvConfigFile     = "DRIVEFM_CONFIG"
	EnvAddr           = "DRIVEFM_ADDR"
	EnvLogLevel       = "DRIVEFM_LOG_LEVEL"
	EnvLogFormat      = "DRIVEFM_LOG_FORMAT"
	EnvFolderID       = "DRIVEFM_FOLDER_ID"
	EnvLegacyFolderID = "GOOGLE_DRIVE_FOLDER_ID"

	EnvDriveEndpoint       = "DRIVEFM_DRIVE_ENDPOINT"
	EnvDriveUploadEndpoint = "DRIVEFM_DRIVE_UPLOAD_ENDPOINT"
	EnvDrivePageSize       = "DRIVEFM_DRIVE_PAGE_SIZE"

	EnvThumbnailMaxBytes    = "DRIVEFM_THUMBNAIL_MAX_BYTES"
	EnvThumbnailMaxEdge     = "DRIVEFM_THUMBNAIL_MAX_EDGE"
	EnvThumbnailCacheMaxAge = "DRIVEFM_THUMBNAIL_CACHE_MAX_AGE"

	EnvMaxUploadBytes   = "DRIVEFM_MAX_UPLOAD_BYTES"
	EnvHTTPReadTimeout  = "DRIVEFM_HTTP_READ_TIMEOUT"
	EnvHTTPWriteTimeout = "DRIVEFM_HTTP_WRITE_TIMEOUT"
	EnvHTTPIdleTimeout  = "DRIVEFM_HTTP_IDLE_TIMEOUT"
	EnvShutdownTimeout  = "DRIVEFM_SHUTDOWN_TIMEOUT"
)

// Config holds every drivefmd setting.
type Config struct {
	// Addr is the listen address of the HTTP server.
	Addr string `yaml:"addr"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	// LogFormat is json or text.
	LogFormat string `yaml:"log_format"`

	// FolderID scopes listings and uploads to one Drive folder. Empty means the whole drive.
	FolderID string `yaml:"folder_id"`

	Drive     DriveConfig     `yaml:"drive"`
	Thumbnail ThumbnailConfig `yaml:"thumbnail"`
	HTTP      HTTPConfig      `yaml:"http"`

	// Level is LogLevel parsed.
	Level slog.Level `yaml:"-"`
}

// DriveConfig configures the Drive gateway.
type DriveConfig struct {
	Endpoint       string `yaml:"endpoint"`
	UploadEndpoint string `yaml:"upload_endpoint"`
	PageSize       int    `yaml:"page_size"`
}

// ThumbnailConfig configures the thumbnail route.
type ThumbnailConfig struct {
	// MaxBytes caps an image downloaded in full as its own thumbnail.
	MaxBytes int64 `yaml:"max_bytes"`

	// MaxEdge is the longest edge, in pixels, full images are downscaled to. Zero disables downscaling.
	MaxEdge int `yaml:"max_edge"`

	// CacheMaxAge is advertised in the Cache-Control header of thumbnail responses.
	CacheMaxAge time.Duration `yaml:"cache_max_age"`
}

// HTTPConfig configures the HTTP server.
type HTTPConfig struct {
	// MaxUploadBytes caps the body of an upload request.
	MaxUploadBytes int64 `yaml:"max_upload_bytes"`

	// ReadTimeout and WriteTimeout are zero by default so uploads and downloads can stream for as long as they need.
	// Slow clients are still bounded by the header timeout.
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`

	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Addr:      ":8080",
		LogLevel:  "info",
		LogFormat: "json",
		Drive: DriveConfig{
			Endpoint:       gdrive.DefaultEndpoint,
			UploadEndpoint: gdrive.DefaultUploadEndpoint,
			PageSize:       gdrive.DefaultPageSize,
		},
		Thumbnail: ThumbnailConfig{
			MaxBytes:    gdrive.DefaultMaxFallbackBytes,
			MaxEdge:     320,
			CacheMaxAge: time.Hour,
		},
		HTTP: HTTPConfig{
			MaxUploadBytes:  512 << 20,
			IdleTimeout:     120 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Level: slog.LevelInfo,
	}
}

// Load builds the configuration from defaults, the YAML file named by DRIVEFM_CONFIG (if set) and DRIVEFM_*
// environment variables, in that order of precedence, lowest first.
func Load() (*Config, error) {
	cfg := Default()

	if path := os.Getenv(EnvConfigFile); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, fmt.Errorf("%s: %w", EnvConfigFile, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	expanded, err := utils.ExpandPath(path)
	if err != nil {
		return err
	}
	f, err := os.Open(expanded)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	return c.Decode(f)
}

// Decode overlays YAML read from r onto c. Unknown keys are rejected.
func (c *Config) Decode(r io.Reader) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode yaml: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	var err error

	c.Addr = getEnvDefault(EnvAddr, c.Addr)
	c.LogLevel = getEnvDefault(EnvLogLevel, c.LogLevel)
	c.LogFormat = getEnvDefault(EnvLogFormat, c.LogFormat)
	c.FolderID = getEnvDefault(EnvFolderID, getEnvDefault(EnvLegacyFolderID, c.FolderID))

	c.Drive.Endpoint = getEnvDefault(EnvDriveEndpoint, c.Drive.Endpoint)
	c.Drive.UploadEndpoint = getEnvDefault(EnvDriveUploadEndpoint, c.Drive.UploadEndpoint)
	if c.Drive.PageSize, err = getEnvInt(EnvDrivePageSize, c.Drive.PageSize); err != nil {
		return fmt.Errorf("%s: %w", EnvDrivePageSize, err)
	}

	if c.Thumbnail.MaxBytes, err = getEnvInt64(EnvThumbnailMaxBytes, c.Thumbnail.MaxBytes); err != nil {
		return fmt.Errorf("%s: %w", EnvThumbnailMaxBytes, err)
	}
	if c.Thumbnail.MaxEdge, err = getEnvInt(EnvThumbnailMaxEdge, c.Thumbnail.MaxEdge); err != nil {
		return fmt.Errorf("%s: %w", EnvThumbnailMaxEdge, err)
	}
	if c.Thumbnail.CacheMaxAge, err = getEnvDuration(EnvThumbnailCacheMaxAge, c.Thumbnail.CacheMaxAge); err != nil {
		return fmt.Errorf("%s: %w", EnvThumbnailCacheMaxAge, err)
	}

	if c.HTTP.MaxUploadBytes, err = getEnvInt64(EnvMaxUploadBytes, c.HTTP.MaxUploadBytes); err != nil {
		return fmt.Errorf("%s: %w", EnvMaxUploadBytes, err)
	}
	if c.HTTP.ReadTimeout, err = getEnvDuration(EnvHTTPReadTimeout, c.HTTP.ReadTimeout); err != nil {
		return fmt.Errorf("%s: %w", EnvHTTPReadTimeout, err)
	}
	if c.HTTP.WriteTimeout, err = getEnvDuration(EnvHTTPWriteTimeout, c.HTTP.WriteTimeout); err != nil {
		return fmt.Errorf("%s: %w", EnvHTTPWriteTimeout, err)
	}
	if c.HTTP.IdleTimeout, err = getEnvDuration(EnvHTTPIdleTimeout, c.HTTP.IdleTimeout); err != nil {
		return fmt.Errorf("%s: %w", EnvHTTPIdleTimeout, err)
	}
	if c.HTTP.ShutdownTimeout, err = getEnvDuration(EnvShutdownTimeout, c.HTTP.ShutdownTimeout); err != nil {
		return fmt.Errorf("%s: %w", EnvShutdownTimeout, err)
	}
	return nil
}

func (c *Config) validate() error {
	var err error
	if c.Level, err = parseLogLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%s: %w", EnvLogLevel, err)
	}
	if c.LogFormat != "json" && c.LogFormat != "text" {
		return fmt.Errorf("%s: invalid format %q, expected json or text", EnvLogFormat, c.LogFormat)
	}
	if c.Addr == "" {
		return fmt.Errorf("%s: listen address is empty", EnvAddr)
	}
	if c.Drive.PageSize < 1 || c.Drive.PageSize > 1000 {
		return fmt.Errorf("%s: page size %d out of range 1-1000", EnvDrivePageSize, c.Drive.PageSize)
	}
	if c.Thumbnail.MaxEdge < 0 {
		return fmt.Errorf("%s: must not be negative", EnvThumbnailMaxEdge)
	}
	if c.Thumbnail.CacheMaxAge < 0 {
		return fmt.Errorf("%s: must not be negative", EnvThumbnailCacheMaxAge)
	}
	if c.HTTP.MaxUploadBytes <= 0 {
		return fmt.Errorf("%s: must be > 0", EnvMaxUploadBytes)
	}
	if c.HTTP.ShutdownTimeout <= 0 {
		return fmt.Errorf("%s: must be > 0", EnvShutdownTimeout)
	}
	return nil
}

// GatewayOptions returns the gateway settings of the configuration.
func (c *Config) GatewayOptions() gdrive.Options {
	return gdrive.Options{
		Endpoint:         c.Drive.Endpoint,
		UploadEndpoint:   c.Drive.UploadEndpoint,
		PageSize:         c.Drive.PageSize,
		MaxFallbackBytes: c.Thumbnail.MaxBytes,
		UserAgent:        "drivefm/" + Version,
	}
}

// SetupLogger builds the process logger from the configuration and installs it as the slog default.
func SetupLogger(cfg *Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.Level,
	}

	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

func getEnvDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("invalid integer: %q", val)
	}
	return n, nil
}

func getEnvInt64(key string, defaultVal int64) (int64, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid integer: %q", val)
	}
	return n, nil
}

func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("invalid duration: %q (use Go syntax: 30s, 1h, 15m)", val)
	}
	return d, nil
}

func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("invalid level %q, expected debug, info, warn or error", level)
	}
}
