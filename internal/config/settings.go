package config

import (
	"context"
	stderrors "errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/aethra/marketconsole/internal/errors"
	"github.com/aethra/marketconsole/internal/models"
)

// Display setting keys
const (
	KeyPageSize   = "page_size"
	KeyCurrency   = "currency"
	KeyTimeLayout = "time_layout"
	KeyTimeZone   = "time_zone"

	categoryDisplay = "display"
)

// SettingsStore persists console settings as strings
type SettingsStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value, category string) error
	All(ctx context.Context) (map[string]string, error)
}

// GormSettings is a SettingsStore backed by the console_settings table with a read cache
type GormSettings struct {
	db    *gorm.DB
	cache map[string]string
	mu    sync.RWMutex
}

// NewGormSettings creates the store and warms its cache
func NewGormSettings(ctx context.Context, db *gorm.DB) (*GormSettings, error) {
	s := &GormSettings{
		db:    db,
		cache: make(map[string]string),
	}
	if err := s.loadCache(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// loadCache loads all settings into memory
func (s *GormSettings) loadCache(ctx context.Context) error {
	var rows []models.ConsoleSetting
	if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, row := range rows {
		s.cache[row.Key] = row.Value
	}
	return nil
}

func (s *GormSettings) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	if val, ok := s.cache[key]; ok {
		s.mu.RUnlock()
		return val, true, nil
	}
	s.mu.RUnlock()

	var row models.ConsoleSetting
	err := s.db.WithContext(ctx).Where("key = ?", key).First(&row).Error
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get setting %s: %w", key, err)
	}

	s.mu.Lock()
	s.cache[key] = row.Value
	s.mu.Unlock()
	return row.Value, true, nil
}

func (s *GormSettings) Set(ctx context.Context, key, value, category string) error {
	row := models.ConsoleSetting{
		ID:        uuid.New(),
		Key:       key,
		Value:     value,
		ValueType: valueType(value),
		Category:  category,
		UpdatedAt: time.Now(),
	}

	// Upsert on the unique key; the generated id only sticks for new rows
	err := s.db.WithContext(ctx).
		Where(models.ConsoleSetting{Key: key}).
		Assign(models.ConsoleSetting{Value: row.Value, ValueType: row.ValueType, Category: category, UpdatedAt: row.UpdatedAt}).
		FirstOrCreate(&row).Error
	if err != nil {
		return fmt.Errorf("set setting %s: %w", key, err)
	}

	s.mu.Lock()
	s.cache[key] = value
	s.mu.Unlock()
	return nil
}

func (s *GormSettings) All(ctx context.Context) (map[string]string, error) {
	if err := s.loadCache(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(s.cache))
	for k, v := range s.cache {
		out[k] = v
	}
	return out, nil
}

// MemorySettings is a SettingsStore for single-process deployments and tests
type MemorySettings struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemorySettings() *MemorySettings {
	return &MemorySettings{values: make(map[string]string)}
}

func (m *MemorySettings) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *MemorySettings) Set(_ context.Context, key, value, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *MemorySettings) All(_ context.Context) (map[string]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]string, len(m.values))
	for k, v := range m.values {
		out[k] = v
	}
	return out, nil
}

// SettingsService overlays stored display preferences on the configured defaults
type SettingsService struct {
	store    SettingsStore
	defaults DisplayConfig
	logger   *zap.Logger
}

func NewSettingsService(store SettingsStore, defaults DisplayConfig, logger *zap.Logger) *SettingsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SettingsService{store: store, defaults: defaults, logger: logger.Named("settings")}
}

// Display returns the effective display settings. Stored values that no
// longer validate are logged and ignored in favour of the defaults.
func (s *SettingsService) Display(ctx context.Context) (DisplayConfig, error) {
	d := s.defaults
	stored, err := s.store.All(ctx)
	if err != nil {
		return d, err
	}
	for _, bad := range applyDisplay(&d, stored) {
		s.logger.Warn("ignoring stored display setting", zap.Error(bad))
	}
	return d, nil
}

// UpdateDisplay validates and stores new display settings. Unknown keys are rejected.
func (s *SettingsService) UpdateDisplay(ctx context.Context, values map[string]string) (DisplayConfig, error) {
	current, err := s.Display(ctx)
	if err != nil {
		return current, err
	}
	next := current
	if errs := applyDisplay(&next, values); len(errs) > 0 {
		return current, errs[0]
	}
	for _, key := range []string{KeyPageSize, KeyCurrency, KeyTimeLayout, KeyTimeZone} {
		v, ok := values[key]
		if !ok {
			continue
		}
		if err := s.store.Set(ctx, key, strings.TrimSpace(v), categoryDisplay); err != nil {
			return current, err
		}
	}
	return next, nil
}

// applyDisplay sets every valid value on d and returns one error per rejected key
func applyDisplay(d *DisplayConfig, values map[string]string) []error {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var errs []error
	for _, key := range keys {
		v := strings.TrimSpace(values[key])
		switch key {
		case KeyPageSize:
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 || n > 100 {
				errs = append(errs, errors.NewValidationError(key, "Page size must be a number between 1 and 100"))
				continue
			}
			d.PageSize = n
		case KeyCurrency:
			if v == "" || len(v) > 8 {
				errs = append(errs, errors.NewValidationError(key, "Currency symbol must be 1 to 8 characters"))
				continue
			}
			d.Currency = v
		case KeyTimeLayout:
			if !validLayout(v) {
				errs = append(errs, errors.NewValidationError(key, fmt.Sprintf("Time layout %q does not format a date", v)))
				continue
			}
			d.TimeLayout = v
		case KeyTimeZone:
			if _, err := time.LoadLocation(v); err != nil || v == "" {
				errs = append(errs, errors.NewValidationError(key, fmt.Sprintf("Unknown time zone %q", v)))
				continue
			}
			d.TimeZone = v
		default:
			errs = append(errs, errors.NewValidationError(key, fmt.Sprintf("Unknown setting %q", key)))
		}
	}
	return errs
}

// validLayout accepts layouts that print at least the year or the day
func validLayout(layout string) bool {
	if layout == "" {
		return false
	}
	ref := time.Date(2023, 11, 29, 0, 0, 0, 0, time.UTC)
	out := ref.Format(layout)
	return strings.Contains(out, "2023") || strings.Contains(out, "29")
}

func valueType(v string) string {
	if _, err := strconv.Atoi(v); err == nil {
		return "int"
	}
	if _, err := strconv.ParseBool(v); err == nil {
		return "bool"
	}
	return "string"
}
