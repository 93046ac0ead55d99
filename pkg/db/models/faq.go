package models

import (
	"time"

	"github.com/google/uuid"
)

// FAQ is an admin-curated question/answer pair shown on the marketplace.
type FAQ struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Category  string    `gorm:"type:text;not null"`
	Question  string    `gorm:"type:text;not null"`
	Answer    string    `gorm:"type:text;not null"`
	Position  int       `gorm:"column:position;not null;default:0"`
	Published bool      `gorm:"column:published;not null;default:false"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
