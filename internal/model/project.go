package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProjectType distinguishes what kind of credits a project generates.
type ProjectType string

const (
	ProjectBlueCarbon   ProjectType = "blue-carbon"
	ProjectBiodiversity ProjectType = "biodiversity"
	ProjectBoth         ProjectType = "both"
)

// ProjectStatus follows a project through verification.
type ProjectStatus string

const (
	StatusPending  ProjectStatus = "pending"
	StatusVerified ProjectStatus = "verified"
	StatusApproved ProjectStatus = "approved"
	StatusActive   ProjectStatus = "active"
)

// Project is a credit-generating restoration project listed in the registry.
type Project struct {
	ID                  uuid.UUID     `json:"id" gorm:"type:char(36);primaryKey"`
	Title               string        `json:"title" gorm:"size:255;not null"`
	Description         string        `json:"description" gorm:"type:text"`
	Location            string        `json:"location" gorm:"size:255"`
	AreaHectares        float64       `json:"area_hectares"`
	ProjectType         ProjectType   `json:"project_type" gorm:"size:32;not null"`
	Status              ProjectStatus `json:"status" gorm:"size:32;not null;index"`
	CarbonCredits       int64         `json:"carbon_credits"`
	BiodiversityCredits int64         `json:"biodiversity_credits"`
	SubmittedBy         uuid.UUID     `json:"submitted_by" gorm:"type:char(36);index"`
	VerifiedBy          *uuid.UUID    `json:"verified_by,omitempty" gorm:"type:char(36)"`
	CreatedAt           time.Time     `json:"created_at"`
	UpdatedAt           time.Time     `json:"updated_at"`
}

// BeforeCreate sets UUID before creating the record.
func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
