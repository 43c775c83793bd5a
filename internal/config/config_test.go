package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/aethra/marketconsole/internal/errors"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", envMap(nil))
	require.NoError(t, err)
	assert.Equal(t, "8090", cfg.Server.Port)
	assert.Equal(t, StoreMemory, cfg.Session.Store)
	assert.Equal(t, 20, cfg.Display.PageSize)
}

func TestLoadFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "console.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: "9000"
backend:
  base_url: https://market.example.com/api/v1
  timeout: 5s
session:
  idle_timeout: 30m
display:
  page_size: 50
logging:
  level: debug
`), 0o600))

	cfg, err := Load(path, envMap(map[string]string{
		"PORT":                 "9100",
		"CONSOLE_PORT":         "9200",
		"DB_HOST":              "db.internal",
		"CORS_ALLOWED_ORIGINS": "https://a.example, https://b.example",
	}))
	require.NoError(t, err)

	assert.Equal(t, "9200", cfg.Server.Port, "prefixed name wins over plain name")
	assert.Equal(t, "https://market.example.com/api/v1", cfg.Backend.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, 30*time.Minute, cfg.Session.IdleTimeout)
	assert.Equal(t, 50, cfg.Display.PageSize)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadRejectsBadValues(t *testing.T) {
	_, err := Load("", envMap(map[string]string{"CONSOLE_COOKIE_SECURE": "maybe"}))
	assert.ErrorContains(t, err, "CONSOLE_COOKIE_SECURE")

	_, err = Load("", envMap(map[string]string{"CONSOLE_BACKEND_URL": "market.local"}))
	assert.ErrorContains(t, err, "backend.base_url")

	_, err = Load("", envMap(map[string]string{"CONSOLE_SESSION_STORE": "redis"}))
	assert.ErrorContains(t, err, "session.store")

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"), envMap(nil))
	assert.Error(t, err)
}

func TestRedacted(t *testing.T) {
	cfg := Default()
	cfg.Session.Secret = "s3cret"
	cfg.Database.Password = "hunter2"

	out, err := cfg.Redacted().YAML()
	require.NoError(t, err)
	assert.NotContains(t, out, "s3cret")
	assert.NotContains(t, out, "hunter2")
	assert.Equal(t, "s3cret", cfg.Session.Secret)
}

func TestDSN(t *testing.T) {
	d := DatabaseConfig{Host: "h", Port: "5432", User: "u", Password: "p", Name: "n"}
	assert.Equal(t, "host=h port=5432 user=u password=p dbname=n sslmode=disable", d.DSN())
}

func TestSettingsService(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySettings()
	core, logs := observer.New(zap.WarnLevel)
	svc := NewSettingsService(store, Default().Display, zap.New(core))

	d, err := svc.Display(ctx)
	require.NoError(t, err)
	assert.Equal(t, 20, d.PageSize)

	d, err = svc.UpdateDisplay(ctx, map[string]string{KeyPageSize: "50", KeyCurrency: "$"})
	require.NoError(t, err)
	assert.Equal(t, 50, d.PageSize)
	assert.Equal(t, "$", d.Currency)

	_, err = svc.UpdateDisplay(ctx, map[string]string{KeyPageSize: "500"})
	assert.True(t, errors.IsValidation(err))

	_, err = svc.UpdateDisplay(ctx, map[string]string{KeyTimeLayout: "nonsense"})
	assert.True(t, errors.IsValidation(err))

	_, err = svc.UpdateDisplay(ctx, map[string]string{"theme": "dark"})
	assert.True(t, errors.IsValidation(err))

	d, err = svc.Display(ctx)
	require.NoError(t, err)
	assert.Equal(t, 50, d.PageSize, "rejected updates leave stored values alone")

	require.NoError(t, store.Set(ctx, KeyTimeZone, "Mars/Olympus", "display"))
	d, err = svc.Display(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Local", d.TimeZone, "invalid stored values fall back to defaults")
	assert.Equal(t, 50, d.PageSize, "valid stored values still apply")

	warned := logs.FilterMessage("ignoring stored display setting").All()
	require.Len(t, warned, 1)
	assert.Contains(t, warned[0].ContextMap()["error"], "Mars/Olympus")
}
