package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Photo is an uploaded field photo. The binary payload lives in the same row
// as its metadata; a single-row read or delete is all the atomicity the
// upload subsystem needs. OwnerID is set once at upload and never changes —
// it is the sole authority for delete permission.
type Photo struct {
	ID           uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	Filename     string    `json:"filename" gorm:"size:512;not null"`
	OriginalName string    `json:"original_name" gorm:"size:512"`
	OwnerID      uuid.UUID `json:"-" gorm:"type:char(36);not null;index"`
	OwnerRole    Role      `json:"-" gorm:"size:50"`
	ProjectID    string    `json:"project_id,omitempty" gorm:"size:64;index"`
	SizeBytes    int64     `json:"size" gorm:"not null"`
	MimeType     string    `json:"type" gorm:"size:128;not null"`
	Content      []byte    `json:"-" gorm:"type:longblob"`
	UploadedAt   time.Time `json:"uploaded_at" gorm:"autoCreateTime"`
}

// BeforeCreate sets UUID before creating the record.
func (p *Photo) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// URL returns the public fetch path for the photo.
func (p *Photo) URL() string {
	return "/api/upload/photos/" + p.ID.String()
}
