package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"bluecarbon/internal/auth"
	apperrors "bluecarbon/internal/errors"
	"bluecarbon/internal/model"
	"bluecarbon/internal/service"
)

// PhotoHandler handles photo upload endpoints.
type PhotoHandler struct {
	photoService service.PhotoService
}

// NewPhotoHandler creates a new photo handler.
func NewPhotoHandler(photoService service.PhotoService) *PhotoHandler {
	return &PhotoHandler{photoService: photoService}
}

// photoDescriptor is the response shape for an uploaded or listed photo.
type photoDescriptor struct {
	ID           string `json:"id"`
	Filename     string `json:"filename"`
	OriginalName string `json:"originalName"`
	Size         int64  `json:"size"`
	Type         string `json:"type"`
	UploadedAt   string `json:"uploadedAt"`
	URL          string `json:"url"`
}

func toDescriptor(p *model.Photo) photoDescriptor {
	return photoDescriptor{
		ID:           p.ID.String(),
		Filename:     p.Filename,
		OriginalName: p.OriginalName,
		Size:         p.SizeBytes,
		Type:         p.MimeType,
		UploadedAt:   p.UploadedAt.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		URL:          p.URL(),
	}
}

// Upload godoc
// @Summary Upload field photos
// @Tags upload
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param photos formData file true "Image files (max 10, 10MB each)"
// @Param projectId formData string false "Associated project ID"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /upload/photos [post]
func (h *PhotoHandler) Upload(c echo.Context) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return unauthenticated()
	}

	form, err := c.MultipartForm()
	if err != nil {
		httpErr := apperrors.MapErrorToHTTP(apperrors.Validation("no files uploaded"))
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	projectID := c.FormValue("projectId")
	photos, err := h.photoService.Upload(c.Request().Context(), identity, projectID, form.File["photos"])
	if err != nil {
		httpErr := apperrors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	descriptors := make([]photoDescriptor, len(photos))
	for i := range photos {
		descriptors[i] = toDescriptor(&photos[i])
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "photos uploaded successfully",
		"photos":  descriptors,
		"count":   len(descriptors),
	})
}

// Get godoc
// @Summary Fetch a photo by ID
// @Tags upload
// @Produce octet-stream
// @Param id path string true "Photo ID"
// @Success 200 {file} binary
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /upload/photos/{id} [get]
func (h *PhotoHandler) Get(c echo.Context) error {
	photo, err := h.photoService.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		httpErr := apperrors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.Blob(http.StatusOK, photo.MimeType, photo.Content)
}

// List godoc
// @Summary List the caller's photos
// @Tags upload
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /upload/photos [get]
func (h *PhotoHandler) List(c echo.Context) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return unauthenticated()
	}

	photos, err := h.photoService.ListByOwner(c.Request().Context(), identity.UserID)
	if err != nil {
		httpErr := apperrors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	descriptors := make([]photoDescriptor, len(photos))
	for i := range photos {
		descriptors[i] = toDescriptor(&photos[i])
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"photos": descriptors,
	})
}

// Delete godoc
// @Summary Delete an owned photo
// @Tags upload
// @Produce json
// @Security BearerAuth
// @Param id path string true "Photo ID"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /upload/photos/{id} [delete]
func (h *PhotoHandler) Delete(c echo.Context) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return unauthenticated()
	}

	if err := h.photoService.Delete(c.Request().Context(), identity, c.Param("id")); err != nil {
		httpErr := apperrors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "photo deleted successfully",
	})
}

func unauthenticated() error {
	httpErr := apperrors.MapErrorToHTTP(apperrors.ErrUnauthenticated)
	return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
}
