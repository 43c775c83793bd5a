package audit

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestMemoryRecorderKeepsNewest(t *testing.T) {
	r := NewMemoryRecorder(2)
	for _, action := range []string{"create", "update", "delete"} {
		r.Record(context.Background(), Entry{Action: action, Resource: "categories"})
	}

	got := r.Entries()
	assert.Len(t, got, 2)
	assert.Equal(t, "update", got[0].Action)
	assert.Equal(t, "delete", got[1].Action)
	assert.False(t, got[1].At.IsZero())
}

func TestToModel(t *testing.T) {
	sid := uuid.New()
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	row := toModel(Entry{
		SessionID: sid.String(),
		Action:    "batch:disable",
		Resource:  "users",
		RecordIDs: []string{"1", "2"},
		Method:    "POST",
		Path:      "/admin/batch/disable",
		Payload:   map[string]any{"ids": []int64{1, 2}},
		At:        at,
	})

	assert.NotEqual(t, uuid.Nil, row.ID)
	assert.Equal(t, sid, row.SessionID)
	assert.Equal(t, []string{"1", "2"}, []string(row.RecordIDs))
	assert.Equal(t, at, row.CreatedAt)
	assert.Contains(t, row.Payload, "ids")

	row = toModel(Entry{SessionID: "not-a-uuid"})
	assert.Equal(t, uuid.Nil, row.SessionID)
	assert.False(t, row.CreatedAt.IsZero())
}
