package model

import (
	"time"

	"github.com/google/uuid"
)

// Roles, from most to least privileged.
const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleSeller  = "seller"
	RoleViewer  = "viewer"
)

// User is an application account. FullName is what gets denormalized into
// StockMovement.ActorLabel at write time.
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Username     string    `gorm:"uniqueIndex;not null"`
	FullName     string    `gorm:"not null"`
	Email        *string
	PasswordHash string `gorm:"not null"`
	Role         string `gorm:"not null;default:'viewer'"`
	Active       bool   `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
