package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"bluecarbon/internal/auth"
	apperrors "bluecarbon/internal/errors"
	"bluecarbon/internal/model"
	"bluecarbon/internal/service"
)

// RegistryHandler handles registry endpoints.
type RegistryHandler struct {
	registryService service.RegistryService
}

// NewRegistryHandler creates a new registry handler.
func NewRegistryHandler(registryService service.RegistryService) *RegistryHandler {
	return &RegistryHandler{registryService: registryService}
}

// SubmitProjectRequest represents a project submission.
type SubmitProjectRequest struct {
	Title        string  `json:"title" validate:"required,max=255"`
	Description  string  `json:"description"`
	Location     string  `json:"location" validate:"max=255"`
	AreaHectares float64 `json:"area_hectares" validate:"gte=0"`
	ProjectType  string  `json:"project_type" validate:"required,oneof=blue-carbon biodiversity both"`
}

// List godoc
// @Summary List registry projects
// @Description Restricted to government and NGO accounts.
// @Tags registry
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /registry [get]
func (h *RegistryHandler) List(c echo.Context) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return unauthenticated()
	}

	projects, err := h.registryService.ListProjects(c.Request().Context())
	if err != nil {
		httpErr := apperrors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "Welcome to Registry!",
		"user": map[string]interface{}{
			"id":   identity.UserID,
			"role": identity.Role,
		},
		"projects": projects,
	})
}

// Submit godoc
// @Summary Submit a project for registry listing
// @Tags registry
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body SubmitProjectRequest true "Project data"
// @Success 201 {object} model.Project
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /registry/projects [post]
func (h *RegistryHandler) Submit(c echo.Context) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return unauthenticated()
	}

	var req SubmitProjectRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	project, err := h.registryService.SubmitProject(c.Request().Context(), identity, service.SubmitProjectInput{
		Title:        req.Title,
		Description:  req.Description,
		Location:     req.Location,
		AreaHectares: req.AreaHectares,
		ProjectType:  model.ProjectType(req.ProjectType),
	})
	if err != nil {
		httpErr := apperrors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusCreated, project)
}
