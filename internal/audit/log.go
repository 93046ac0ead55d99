package audit

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/tradelinkhq/tradelink-backend/internal/authz"
	"github.com/tradelinkhq/tradelink-backend/pkg/db/models"
	pkgerrors "github.com/tradelinkhq/tradelink-backend/pkg/errors"
	"github.com/tradelinkhq/tradelink-backend/pkg/pagination"
)

// ListParams describe the admin audit trail filters.
type ListParams struct {
	Action     string
	TargetType string
	Page       int
	Size       int
}

// ListResult wraps the filtered entries plus the unpaginated total.
type ListResult struct {
	Items []models.AuditLogEntry `json:"items"`
	Total int64                  `json:"total"`
}

// Log reads back the recorded trail.
type Log interface {
	List(ctx context.Context, actor authz.Actor, params ListParams) (*ListResult, error)
}

type log struct {
	db *gorm.DB
}

// NewLog builds an audit trail reader bound to the provided DB.
func NewLog(db *gorm.DB) (Log, error) {
	if db == nil {
		return nil, fmt.Errorf("db required")
	}
	return &log{db: db}, nil
}

func (l *log) List(ctx context.Context, actor authz.Actor, params ListParams) (*ListResult, error) {
	if !actor.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "admin role required")
	}

	base := l.db.WithContext(ctx).Model(&models.AuditLogEntry{})
	if action := strings.TrimSpace(params.Action); action != "" {
		base = base.Where("action = ?", action)
	}
	if targetType := strings.TrimSpace(params.TargetType); targetType != "" {
		base = base.Where("target_type = ?", targetType)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count audit entries")
	}

	offset, limit := pagination.OffsetParams{Page: params.Page, Size: params.Size}.Normalize()

	var rows []models.AuditLogEntry
	err := base.
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list audit entries")
	}
	return &ListResult{Items: rows, Total: total}, nil
}
