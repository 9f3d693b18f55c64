package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"bluecarbon/internal/auth"
	"bluecarbon/internal/cache"
	apperrors "bluecarbon/internal/errors"
	"bluecarbon/internal/model"
	"bluecarbon/internal/repository"
)

const (
	// DefaultMaxFilesPerUpload bounds how many photos one request may carry.
	DefaultMaxFilesPerUpload = 10
	// DefaultMaxFileSizeBytes bounds a single photo payload (10 MB).
	DefaultMaxFileSizeBytes = 10 << 20

	photoListCacheTTL    = time.Minute
	photoListCachePrefix = "photos:owner:"
)

// UploadLimits bounds a single upload request. The router additionally caps
// the whole request body before it is read, so these checks run on data that
// was already bounded in flight.
type UploadLimits struct {
	MaxFiles     int
	MaxFileBytes int64
}

// DefaultUploadLimits returns the stock 10-file, 10 MB-per-file limits.
func DefaultUploadLimits() UploadLimits {
	return UploadLimits{MaxFiles: DefaultMaxFilesPerUpload, MaxFileBytes: DefaultMaxFileSizeBytes}
}

// PhotoService handles photo upload, retrieval, listing, and owner-gated
// deletion.
type PhotoService interface {
	Upload(ctx context.Context, actor auth.Identity, projectID string, files []*multipart.FileHeader) ([]model.Photo, error)
	Get(ctx context.Context, id string) (*model.Photo, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Photo, error)
	Delete(ctx context.Context, actor auth.Identity, id string) error
}

type photoService struct {
	photoRepo repository.PhotoRepository
	cache     *cache.Client
	limits    UploadLimits
}

// NewPhotoService creates a new photo service. Zero or negative limits fall
// back to the defaults.
func NewPhotoService(photoRepo repository.PhotoRepository, cacheClient *cache.Client, limits UploadLimits) PhotoService {
	if limits.MaxFiles <= 0 {
		limits.MaxFiles = DefaultMaxFilesPerUpload
	}
	if limits.MaxFileBytes <= 0 {
		limits.MaxFileBytes = DefaultMaxFileSizeBytes
	}
	return &photoService{
		photoRepo: photoRepo,
		cache:     cacheClient,
		limits:    limits,
	}
}

// Upload validates and stores a batch of photos for the acting user. The
// whole batch is validated (count, per-file size, sniffed content type)
// before the first byte is persisted, so an oversized or non-image file
// rejects the request without leaving partial state behind.
func (s *photoService) Upload(ctx context.Context, actor auth.Identity, projectID string, files []*multipart.FileHeader) ([]model.Photo, error) {
	if len(files) == 0 {
		return nil, apperrors.Validation("no files uploaded")
	}
	if len(files) > s.limits.MaxFiles {
		return nil, apperrors.Validation("too many files: got %d, maximum is %d", len(files), s.limits.MaxFiles)
	}

	photos := make([]model.Photo, 0, len(files))
	for _, fh := range files {
		if fh.Size > s.limits.MaxFileBytes {
			return nil, apperrors.Validation("file %q exceeds the %d byte size limit", fh.Filename, s.limits.MaxFileBytes)
		}

		content, err := readFile(fh, s.limits.MaxFileBytes)
		if err != nil {
			return nil, fmt.Errorf("read upload %q: %w", fh.Filename, err)
		}

		if int64(len(content)) > s.limits.MaxFileBytes {
			return nil, apperrors.Validation("file %q exceeds the %d byte size limit", fh.Filename, s.limits.MaxFileBytes)
		}

		mtype := mimetype.Detect(content)
		if !strings.HasPrefix(mtype.String(), "image/") {
			return nil, apperrors.Validation("file %q is not an image", fh.Filename)
		}

		photos = append(photos, model.Photo{
			Filename:     fmt.Sprintf("%d-%s", time.Now().UnixMilli(), fh.Filename),
			OriginalName: fh.Filename,
			OwnerID:      actor.UserID,
			OwnerRole:    actor.Role,
			ProjectID:    projectID,
			SizeBytes:    int64(len(content)),
			MimeType:     mtype.String(),
			Content:      content,
		})
	}

	for i := range photos {
		if err := s.photoRepo.Create(ctx, &photos[i]); err != nil {
			return nil, apperrors.Unavailable(err)
		}
	}

	s.invalidateOwnerList(ctx, actor.UserID)

	// Strip payloads from the response descriptors.
	for i := range photos {
		photos[i].Content = nil
	}
	return photos, nil
}

// Get fetches a photo with its content by id. No authentication is required;
// photo ids are unguessable UUIDs and fetches are read-only.
func (s *photoService) Get(ctx context.Context, id string) (*model.Photo, error) {
	photoID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperrors.ErrInvalidIdentifier
	}

	photo, err := s.photoRepo.FindByID(ctx, photoID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.Unavailable(err)
	}
	return photo, nil
}

// ListByOwner returns the metadata of photos owned by the given user, newest
// first, read through the cache.
func (s *photoService) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Photo, error) {
	key := photoListCachePrefix + ownerID.String()
	if data, _ := s.cache.Get(ctx, key); data != nil {
		var cached []model.Photo
		if err := json.Unmarshal(data, &cached); err == nil {
			return cached, nil
		}
	}

	photos, err := s.photoRepo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, apperrors.Unavailable(err)
	}

	if data, err := json.Marshal(photos); err == nil {
		_ = s.cache.Set(ctx, key, data, photoListCacheTTL)
	}
	return photos, nil
}

// Delete removes a photo after the ownership gate passes. Ownership is
// re-read from the store on every call; a non-owner gets the same Forbidden
// whether or not they could learn anything else about the photo.
func (s *photoService) Delete(ctx context.Context, actor auth.Identity, id string) error {
	photoID, err := uuid.Parse(id)
	if err != nil {
		return apperrors.ErrInvalidIdentifier
	}

	meta, err := s.photoRepo.FindMetaByID(ctx, photoID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrNotFound
		}
		return apperrors.Unavailable(err)
	}

	if meta.OwnerID != actor.UserID {
		return apperrors.ErrForbidden
	}

	if err := s.photoRepo.Delete(ctx, photoID); err != nil {
		return apperrors.Unavailable(err)
	}

	s.invalidateOwnerList(ctx, meta.OwnerID)
	return nil
}

func (s *photoService) invalidateOwnerList(ctx context.Context, ownerID uuid.UUID) {
	_ = s.cache.Delete(ctx, photoListCachePrefix+ownerID.String())
}

func readFile(fh *multipart.FileHeader, maxBytes int64) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	// Size was checked against the limit already; the extra byte detects a
	// header lying about the real length.
	return io.ReadAll(io.LimitReader(f, maxBytes+1))
}
