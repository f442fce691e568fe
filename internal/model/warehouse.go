package model

import (
	"time"

	"github.com/google/uuid"
)

// Warehouse is a physical stock location. A single default warehouse is
// provisioned at seed time; the model supports more.
type Warehouse struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name      string    `gorm:"uniqueIndex;not null"`
	Location  *string
	CreatedAt time.Time
}
