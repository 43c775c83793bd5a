// Package models contains the tables the console itself owns.
// Marketplace records stay in the backend and are never stored here.
package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// ConsoleSession holds the admin token of one browser session, sealed at rest
type ConsoleSession struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	SealedToken string    `json:"-" gorm:"type:text;not null"`
	AdminName   string    `json:"admin_name" gorm:"size:100"`
	ClientIP    string    `json:"client_ip" gorm:"size:64"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName returns the table name for ConsoleSession
func (ConsoleSession) TableName() string {
	return "console_sessions"
}

// ConsoleSetting is one key/value display preference
type ConsoleSetting struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	Key       string    `gorm:"uniqueIndex;not null;size:100"`
	Value     string    `gorm:"type:text"`
	ValueType string    `gorm:"size:20"` // string, int, bool
	Category  string    `gorm:"size:50;index"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// TableName returns the table name for ConsoleSetting
func (ConsoleSetting) TableName() string {
	return "console_settings"
}

// AuditEntry records one successful mutating call made through the console
type AuditEntry struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primary_key"`
	SessionID uuid.UUID      `json:"session_id" gorm:"type:uuid;index"`
	Actor     string         `json:"actor" gorm:"size:100"`
	Action    string         `json:"action" gorm:"size:50;not null"`
	Resource  string         `json:"resource" gorm:"size:50;index"`
	RecordIDs pq.StringArray `json:"record_ids" gorm:"type:text[]"`
	Method    string         `json:"method" gorm:"size:10"`
	Path      string         `json:"path" gorm:"size:255"`
	Payload   JSONB          `json:"payload" gorm:"type:jsonb;default:'{}'"`
	CreatedAt time.Time      `json:"created_at" gorm:"index"`
}

// TableName returns the table name for AuditEntry
func (AuditEntry) TableName() string {
	return "console_audit"
}
