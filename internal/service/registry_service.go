package service

import (
	"context"
	"encoding/json"
	"time"

	"bluecarbon/internal/auth"
	"bluecarbon/internal/cache"
	apperrors "bluecarbon/internal/errors"
	"bluecarbon/internal/model"
	"bluecarbon/internal/repository"
)

const (
	registryCacheKey = "registry:projects"
	registryCacheTTL = time.Minute
)

// SubmitProjectInput carries the fields a caller provides when submitting a
// project for registry listing.
type SubmitProjectInput struct {
	Title        string
	Description  string
	Location     string
	AreaHectares float64
	ProjectType  model.ProjectType
}

// RegistryService serves the credit project registry.
type RegistryService interface {
	ListProjects(ctx context.Context) ([]model.Project, error)
	SubmitProject(ctx context.Context, actor auth.Identity, input SubmitProjectInput) (*model.Project, error)
}

type registryService struct {
	projectRepo repository.ProjectRepository
	cache       *cache.Client
}

// NewRegistryService creates a new registry service.
func NewRegistryService(projectRepo repository.ProjectRepository, cacheClient *cache.Client) RegistryService {
	return &registryService{
		projectRepo: projectRepo,
		cache:       cacheClient,
	}
}

// ListProjects returns the listed (verified or further) projects, read
// through the cache.
func (s *registryService) ListProjects(ctx context.Context) ([]model.Project, error) {
	if data, _ := s.cache.Get(ctx, registryCacheKey); data != nil {
		var cached []model.Project
		if err := json.Unmarshal(data, &cached); err == nil {
			return cached, nil
		}
	}

	projects, err := s.projectRepo.ListListed(ctx)
	if err != nil {
		return nil, apperrors.Unavailable(err)
	}

	if data, err := json.Marshal(projects); err == nil {
		_ = s.cache.Set(ctx, registryCacheKey, data, registryCacheTTL)
	}
	return projects, nil
}

// SubmitProject records a new pending project submitted by the acting user.
// Pending projects do not appear in the registry until verified, so the
// listing cache stays valid.
func (s *registryService) SubmitProject(ctx context.Context, actor auth.Identity, input SubmitProjectInput) (*model.Project, error) {
	switch input.ProjectType {
	case model.ProjectBlueCarbon, model.ProjectBiodiversity, model.ProjectBoth:
	default:
		return nil, apperrors.Validation("unknown project type %q", input.ProjectType)
	}

	project := &model.Project{
		Title:        input.Title,
		Description:  input.Description,
		Location:     input.Location,
		AreaHectares: input.AreaHectares,
		ProjectType:  input.ProjectType,
		Status:       model.StatusPending,
		SubmittedBy:  actor.UserID,
	}

	if err := s.projectRepo.Create(ctx, project); err != nil {
		return nil, apperrors.Unavailable(err)
	}
	return project, nil
}
