package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role classifies an account within the registry.
type Role string

const (
	RoleCommunity  Role = "community"
	RoleNGO        Role = "ngo"
	RoleGovernment Role = "government"
	RoleInvestor   Role = "investor"
)

// Roles lists every valid account role.
var Roles = []Role{RoleCommunity, RoleNGO, RoleGovernment, RoleInvestor}

// Valid reports whether r is one of the defined roles.
func (r Role) Valid() bool {
	switch r {
	case RoleCommunity, RoleNGO, RoleGovernment, RoleInvestor:
		return true
	}
	return false
}

// User represents a registry account.
type User struct {
	ID           uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	Username     string    `json:"username" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string    `json:"-" gorm:"size:255;not null"` // Never expose in JSON
	Role         Role      `json:"role" gorm:"size:50;not null;index"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// BeforeCreate sets UUID before creating the record.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
