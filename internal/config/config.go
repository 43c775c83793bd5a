// Package config provides configuration management for the console
package config

import (
	stderrors "errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Config holds the runtime configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Backend  BackendConfig  `yaml:"backend"`
	Session  SessionConfig  `yaml:"session"`
	Database DatabaseConfig `yaml:"database"`
	CORS     CORSConfig     `yaml:"cors"`
	Display  DisplayConfig  `yaml:"display"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServerConfig holds server settings
type ServerConfig struct {
	Port            string        `yaml:"port"`
	Mode            string        `yaml:"mode"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// BackendConfig points at the marketplace REST API
type BackendConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// SessionConfig controls console sessions and token storage
type SessionConfig struct {
	Store         string        `yaml:"store"` // memory, postgres
	Secret        string        `yaml:"secret"`
	CookieName    string        `yaml:"cookie_name"`
	CookieSecure  bool          `yaml:"cookie_secure"`
	IdleTimeout   time.Duration `yaml:"idle_timeout"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

// DatabaseConfig holds database settings
type DatabaseConfig struct {
	Host         string `yaml:"host"`
	Port         string `yaml:"port"`
	User         string `yaml:"user"`
	Password     string `yaml:"password"`
	Name         string `yaml:"name"`
	SSLMode      string `yaml:"sslmode"`
	MaxOpenConns int    `yaml:"max_open_conns"`
	MaxIdleConns int    `yaml:"max_idle_conns"`
	LogQueries   bool   `yaml:"log_queries"`
}

// CORSConfig holds CORS settings
type CORSConfig struct {
	AllowedOrigins   []string `yaml:"allowed_origins"`
	AllowCredentials bool     `yaml:"allow_credentials"`
}

// DisplayConfig holds the default display preferences
type DisplayConfig struct {
	PageSize   int    `yaml:"page_size"`
	Currency   string `yaml:"currency"`
	TimeLayout string `yaml:"time_layout"`
	TimeZone   string `yaml:"time_zone"`
	Language   string `yaml:"language"`
}

// LoggingConfig selects the zap configuration
type LoggingConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

// Default returns the configuration used when nothing overrides it
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            "8090",
			Mode:            "release",
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Backend: BackendConfig{
			BaseURL: "http://localhost:8000/api/v1",
			Timeout: 15 * time.Second,
		},
		Session: SessionConfig{
			Store:         StoreMemory,
			CookieName:    "console_session",
			IdleTimeout:   2 * time.Hour,
			SweepInterval: 5 * time.Minute,
		},
		Database: DatabaseConfig{
			Host:         "localhost",
			Port:         "5432",
			User:         "console",
			Name:         "console",
			SSLMode:      "disable",
			MaxOpenConns: 10,
			MaxIdleConns: 5,
		},
		CORS: CORSConfig{
			AllowedOrigins:   []string{"http://localhost:3000"},
			AllowCredentials: true,
		},
		Display: DisplayConfig{
			PageSize:   20,
			Currency:   "¥",
			TimeLayout: "2006-01-02 15:04",
			TimeZone:   "Local",
			Language:   "en",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file and the
// environment, in that order of precedence (environment wins).
func Load(path string, getenv func(string) string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if getenv == nil {
		getenv = os.Getenv
	}
	if err := cfg.applyEnv(getenv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

type envBinding struct {
	names []string
	set   func(string) error
}

func str(dst *string) func(string) error {
	return func(v string) error {
		*dst = v
		return nil
	}
}

func boolean(dst *bool) func(string) error {
	return func(v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return err
		}
		*dst = b
		return nil
	}
}

func integer(dst *int) func(string) error {
	return func(v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		*dst = n
		return nil
	}
}

func duration(dst *time.Duration) func(string) error {
	return func(v string) error {
		d, err := time.ParseDuration(v)
		if err != nil {
			return err
		}
		*dst = d
		return nil
	}
}

func list(dst *[]string) func(string) error {
	return func(v string) error {
		*dst = splitString(v)
		return nil
	}
}

func (c *Config) envBindings() []envBinding {
	return []envBinding{
		{[]string{"CONSOLE_PORT", "PORT"}, str(&c.Server.Port)},
		{[]string{"CONSOLE_MODE", "GIN_MODE"}, str(&c.Server.Mode)},
		{[]string{"CONSOLE_READ_TIMEOUT"}, duration(&c.Server.ReadTimeout)},
		{[]string{"CONSOLE_WRITE_TIMEOUT"}, duration(&c.Server.WriteTimeout)},
		{[]string{"CONSOLE_BACKEND_URL"}, str(&c.Backend.BaseURL)},
		{[]string{"CONSOLE_BACKEND_TIMEOUT"}, duration(&c.Backend.Timeout)},
		{[]string{"CONSOLE_SESSION_STORE"}, str(&c.Session.Store)},
		{[]string{"CONSOLE_SESSION_SECRET", "ENCRYPTION_KEY"}, str(&c.Session.Secret)},
		{[]string{"CONSOLE_COOKIE_NAME"}, str(&c.Session.CookieName)},
		{[]string{"CONSOLE_COOKIE_SECURE"}, boolean(&c.Session.CookieSecure)},
		{[]string{"CONSOLE_SESSION_IDLE_TIMEOUT"}, duration(&c.Session.IdleTimeout)},
		{[]string{"CONSOLE_DB_HOST", "DB_HOST"}, str(&c.Database.Host)},
		{[]string{"CONSOLE_DB_PORT", "DB_PORT"}, str(&c.Database.Port)},
		{[]string{"CONSOLE_DB_USER", "DB_USER"}, str(&c.Database.User)},
		{[]string{"CONSOLE_DB_PASSWORD", "DB_PASSWORD"}, str(&c.Database.Password)},
		{[]string{"CONSOLE_DB_NAME", "DB_NAME"}, str(&c.Database.Name)},
		{[]string{"CONSOLE_DB_SSLMODE", "DB_SSLMODE"}, str(&c.Database.SSLMode)},
		{[]string{"CONSOLE_CORS_ALLOWED_ORIGINS", "CORS_ALLOWED_ORIGINS"}, list(&c.CORS.AllowedOrigins)},
		{[]string{"CONSOLE_CORS_ALLOW_CREDENTIALS", "CORS_ALLOW_CREDENTIALS"}, boolean(&c.CORS.AllowCredentials)},
		{[]string{"CONSOLE_PAGE_SIZE"}, integer(&c.Display.PageSize)},
		{[]string{"CONSOLE_CURRENCY"}, str(&c.Display.Currency)},
		{[]string{"CONSOLE_TIME_LAYOUT"}, str(&c.Display.TimeLayout)},
		{[]string{"CONSOLE_TIME_ZONE", "TZ"}, str(&c.Display.TimeZone)},
		{[]string{"CONSOLE_LANGUAGE"}, str(&c.Display.Language)},
		{[]string{"CONSOLE_LOG_LEVEL"}, str(&c.Logging.Level)},
		{[]string{"CONSOLE_LOG_DEVELOPMENT"}, boolean(&c.Logging.Development)},
	}
}

// applyEnv applies the first non-empty variable of each binding
func (c *Config) applyEnv(getenv func(string) string) error {
	for _, b := range c.envBindings() {
		for _, name := range b.names {
			v := strings.TrimSpace(getenv(name))
			if v == "" {
				continue
			}
			if err := b.set(v); err != nil {
				return fmt.Errorf("invalid %s: %w", name, err)
			}
			break
		}
	}
	return nil
}

// Validate rejects configurations the console cannot run with
func (c *Config) Validate() error {
	var errs []error

	if p, err := strconv.Atoi(c.Server.Port); err != nil || p < 1 || p > 65535 {
		errs = append(errs, fmt.Errorf("server.port %q is not a valid port", c.Server.Port))
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		errs = append(errs, fmt.Errorf("server.mode %q must be debug, release or test", c.Server.Mode))
	}

	if u, err := url.Parse(c.Backend.BaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("backend.base_url %q must be an absolute http(s) URL", c.Backend.BaseURL))
	}
	if c.Backend.Timeout <= 0 {
		errs = append(errs, stderrors.New("backend.timeout must be positive"))
	}

	switch c.Session.Store {
	case StoreMemory:
	case StorePostgres:
		if c.Database.Host == "" || c.Database.Name == "" {
			errs = append(errs, stderrors.New("database.host and database.name are required for the postgres session store"))
		}
	default:
		errs = append(errs, fmt.Errorf("session.store %q must be memory or postgres", c.Session.Store))
	}
	if c.Session.CookieName == "" {
		errs = append(errs, stderrors.New("session.cookie_name is required"))
	}
	if c.Session.IdleTimeout <= 0 {
		errs = append(errs, stderrors.New("session.idle_timeout must be positive"))
	}
	if c.Session.SweepInterval <= 0 {
		errs = append(errs, stderrors.New("session.sweep_interval must be positive"))
	}

	if c.Display.PageSize < 1 || c.Display.PageSize > 100 {
		errs = append(errs, fmt.Errorf("display.page_size %d must be between 1 and 100", c.Display.PageSize))
	}
	if _, err := time.LoadLocation(c.Display.TimeZone); err != nil {
		errs = append(errs, fmt.Errorf("display.time_zone %q: %w", c.Display.TimeZone, err))
	}

	if _, err := zapcore.ParseLevel(c.Logging.Level); err != nil {
		errs = append(errs, fmt.Errorf("logging.level %q: %w", c.Logging.Level, err))
	}

	return stderrors.Join(errs...)
}

// DSN returns the PostgreSQL connection string
func (d DatabaseConfig) DSN() string {
	sslmode := d.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, sslmode)
}

// Redacted returns a copy safe to print
func (c *Config) Redacted() *Config {
	cp := *c
	cp.CORS.AllowedOrigins = append([]string(nil), c.CORS.AllowedOrigins...)
	if cp.Session.Secret != "" {
		cp.Session.Secret = "********"
	}
	if cp.Database.Password != "" {
		cp.Database.Password = "********"
	}
	return &cp
}

// YAML renders the configuration as a YAML document
func (c *Config) YAML() (string, error) {
	out, err := yaml.Marshal(c)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// NewLogger builds the zap logger described by the logging section
func (l LoggingConfig) NewLogger() (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if l.Development {
		zc = zap.NewDevelopmentConfig()
	}
	level, err := zapcore.ParseLevel(l.Level)
	if err != nil {
		return nil, fmt.Errorf("failed to parse log level: %w", err)
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}

// splitString splits a comma-separated string into a slice
func splitString(s string) []string {
	if s == "" {
		return []string{}
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
