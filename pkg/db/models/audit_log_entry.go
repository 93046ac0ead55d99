package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/tradelinkhq/tradelink-backend/pkg/types"
)

// AuditLogEntry records an admin mutation. Writes are best-effort: a failed
// insert never blocks the mutation it describes.
type AuditLogEntry struct {
	ID             uuid.UUID     `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ActorProfileID uuid.UUID     `gorm:"column:actor_profile_id;type:uuid;not null;index"`
	Action         string        `gorm:"type:text;not null"`
	TargetType     string        `gorm:"column:target_type;type:text;not null"`
	TargetID       uuid.UUID     `gorm:"column:target_id;type:uuid;not null"`
	Details        types.JSONMap `gorm:"column:details;type:jsonb;serializer:json"`
	IPAddress      string        `gorm:"column:ip_address;type:text"`
	CreatedAt      time.Time     `gorm:"column:created_at;autoCreateTime"`
}
