// Package session owns the admin bearer token of each console session
package session

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/aethra/marketconsole/internal/auth"
	"github.com/aethra/marketconsole/internal/models"
)

// TokenStore persists one token per console session id
type TokenStore interface {
	Get(ctx context.Context, sid string) (string, bool, error)
	Put(ctx context.Context, sid, token string) error
	Delete(ctx context.Context, sid string) error
}

// MemoryStore keeps tokens in process memory
type MemoryStore struct {
	mu     sync.RWMutex
	tokens map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tokens: make(map[string]string)}
}

func (m *MemoryStore) Get(_ context.Context, sid string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	tok, ok := m.tokens[sid]
	return tok, ok, nil
}

func (m *MemoryStore) Put(_ context.Context, sid, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[sid] = token
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, sid string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tokens, sid)
	return nil
}

// GormStore keeps sealed tokens in the console_sessions table
type GormStore struct {
	db     *gorm.DB
	sealer *auth.Sealer
}

func NewGormStore(db *gorm.DB, sealer *auth.Sealer) *GormStore {
	return &GormStore{db: db, sealer: sealer}
}

func (s *GormStore) Get(ctx context.Context, sid string) (string, bool, error) {
	id, err := uuid.Parse(sid)
	if err != nil {
		return "", false, nil
	}
	var row models.ConsoleSession
	err = s.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("load session %s: %w", sid, err)
	}
	tok, err := s.sealer.Open(row.SealedToken)
	if err != nil {
		// Sealed under a previous key; the row is useless now
		_ = s.Delete(ctx, sid)
		return "", false, nil
	}
	return tok, true, nil
}

func (s *GormStore) Put(ctx context.Context, sid, token string) error {
	id, err := uuid.Parse(sid)
	if err != nil {
		return fmt.Errorf("invalid session id %q: %w", sid, err)
	}
	sealed, err := s.sealer.Seal(token)
	if err != nil {
		return err
	}
	row := models.ConsoleSession{
		ID:          id,
		SealedToken: sealed,
		UpdatedAt:   time.Now(),
	}
	if info, err := auth.Inspect(token); err == nil {
		row.AdminName = info.Username
	}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"sealed_token", "admin_name", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("store session %s: %w", sid, err)
	}
	return nil
}

func (s *GormStore) Delete(ctx context.Context, sid string) error {
	id, err := uuid.Parse(sid)
	if err != nil {
		return nil
	}
	if err := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.ConsoleSession{}).Error; err != nil {
		return fmt.Errorf("delete session %s: %w", sid, err)
	}
	return nil
}
