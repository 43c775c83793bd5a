// Package audit keeps a trail of the mutating calls operators make through the console
package audit

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/aethra/marketconsole/internal/models"
)

// Entry describes one successful backend mutation
type Entry struct {
	SessionID string
	Actor     string
	Action    string
	Resource  string
	RecordIDs []string
	Method    string
	Path      string
	Payload   map[string]any
	At        time.Time
}

// Recorder stores audit entries. Recording never fails the operation it
// describes, so implementations log their own errors.
type Recorder interface {
	Record(ctx context.Context, e Entry)
}

// GormRecorder writes entries to the console_audit table
type GormRecorder struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewGormRecorder(db *gorm.DB, logger *zap.Logger) *GormRecorder {
	return &GormRecorder{db: db, logger: logger.Named("audit")}
}

func (r *GormRecorder) Record(ctx context.Context, e Entry) {
	row := toModel(e)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		r.logger.Error("audit write failed",
			zap.String("action", e.Action),
			zap.String("resource", e.Resource),
			zap.Error(err))
	}
}

func toModel(e Entry) models.AuditEntry {
	at := e.At
	if at.IsZero() {
		at = time.Now()
	}
	row := models.AuditEntry{
		ID:        uuid.New(),
		Actor:     e.Actor,
		Action:    e.Action,
		Resource:  e.Resource,
		RecordIDs: pq.StringArray(e.RecordIDs),
		Method:    e.Method,
		Path:      e.Path,
		Payload:   models.JSONB(e.Payload),
		CreatedAt: at,
	}
	if sid, err := uuid.Parse(e.SessionID); err == nil {
		row.SessionID = sid
	}
	return row
}

// MemoryRecorder keeps the most recent entries in memory
type MemoryRecorder struct {
	mu      sync.Mutex
	entries []Entry
	limit   int
}

// NewMemoryRecorder keeps at most limit entries; zero means 1000
func NewMemoryRecorder(limit int) *MemoryRecorder {
	if limit <= 0 {
		limit = 1000
	}
	return &MemoryRecorder{limit: limit}
}

func (m *MemoryRecorder) Record(_ context.Context, e Entry) {
	if e.At.IsZero() {
		e.At = time.Now()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, e)
	if over := len(m.entries) - m.limit; over > 0 {
		m.entries = append([]Entry(nil), m.entries[over:]...)
	}
}

// Entries returns a copy of the recorded entries, oldest first
func (m *MemoryRecorder) Entries() []Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Entry(nil), m.entries...)
}

// Nop discards entries
type Nop struct{}

func (Nop) Record(context.Context, Entry) {}
