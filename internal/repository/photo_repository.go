package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"bluecarbon/internal/model"
)

// PhotoRepository defines photo persistence operations. Metadata-only reads
// omit the blob column so listings and ownership checks stay cheap.
type PhotoRepository interface {
	Create(ctx context.Context, photo *model.Photo) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Photo, error)
	FindMetaByID(ctx context.Context, id uuid.UUID) (*model.Photo, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Photo, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// photoMetaColumns are the columns selected for metadata-only reads.
var photoMetaColumns = []string{
	"id", "filename", "original_name", "owner_id", "owner_role",
	"project_id", "size_bytes", "mime_type", "uploaded_at",
}

type photoRepository struct {
	db *gorm.DB
}

// NewPhotoRepository creates a new photo repository.
func NewPhotoRepository(db *gorm.DB) PhotoRepository {
	return &photoRepository{db: db}
}

// Create stores a new photo with its binary content.
func (r *photoRepository) Create(ctx context.Context, photo *model.Photo) error {
	return r.db.WithContext(ctx).Create(photo).Error
}

// FindByID finds a photo by ID including its content.
func (r *photoRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Photo, error) {
	var photo model.Photo
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&photo).Error; err != nil {
		return nil, err
	}
	return &photo, nil
}

// FindMetaByID finds a photo's metadata by ID without loading the content.
func (r *photoRepository) FindMetaByID(ctx context.Context, id uuid.UUID) (*model.Photo, error) {
	var photo model.Photo
	if err := r.db.WithContext(ctx).Select(photoMetaColumns).
		Where("id = ?", id).First(&photo).Error; err != nil {
		return nil, err
	}
	return &photo, nil
}

// ListByOwner lists photo metadata owned by the given user, newest first.
func (r *photoRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Photo, error) {
	var photos []model.Photo
	if err := r.db.WithContext(ctx).Select(photoMetaColumns).
		Where("owner_id = ?", ownerID).
		Order("uploaded_at DESC").
		Find(&photos).Error; err != nil {
		return nil, err
	}
	return photos, nil
}

// Delete removes a photo row.
func (r *photoRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Photo{}).Error
}
