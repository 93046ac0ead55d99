// Package audit persists a trail of admin mutations. Recording is
// best-effort: callers log failures and proceed with the mutation result.
package audit

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tradelinkhq/tradelink-backend/pkg/db/models"
	"github.com/tradelinkhq/tradelink-backend/pkg/types"
)

// Entry describes one admin action to record.
type Entry struct {
	ActorProfileID uuid.UUID
	Action         string
	TargetType     string
	TargetID       uuid.UUID
	Details        types.JSONMap
	IPAddress      string
}

// Recorder writes audit entries.
type Recorder interface {
	Record(ctx context.Context, entry Entry) error
}

type recorder struct {
	db *gorm.DB
}

// NewRecorder builds a recorder bound to the provided DB.
func NewRecorder(db *gorm.DB) (Recorder, error) {
	if db == nil {
		return nil, fmt.Errorf("db required")
	}
	return &recorder{db: db}, nil
}

func (r *recorder) Record(ctx context.Context, entry Entry) error {
	if entry.ActorProfileID == uuid.Nil {
		return fmt.Errorf("actor profile id required")
	}
	if entry.Action == "" {
		return fmt.Errorf("action required")
	}
	if entry.TargetType == "" || entry.TargetID == uuid.Nil {
		return fmt.Errorf("target required")
	}

	row := models.AuditLogEntry{
		ActorProfileID: entry.ActorProfileID,
		Action:         entry.Action,
		TargetType:     entry.TargetType,
		TargetID:       entry.TargetID,
		Details:        entry.Details,
		IPAddress:      entry.IPAddress,
	}
	return r.db.WithContext(ctx).Create(&row).Error
}
