package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"bluecarbon/internal/auth"
	apperrors "bluecarbon/internal/errors"
	"bluecarbon/internal/model"
)

// MockProjectRepository is a mock implementation of ProjectRepository.
type MockProjectRepository struct {
	mock.Mock
}

func (m *MockProjectRepository) Create(ctx context.Context, project *model.Project) error {
	args := m.Called(ctx, project)
	return args.Error(0)
}

func (m *MockProjectRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Project, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Project), args.Error(1)
}

func (m *MockProjectRepository) ListListed(ctx context.Context) ([]model.Project, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Project), args.Error(1)
}

func TestRegistryService_ListProjects(t *testing.T) {
	repo := new(MockProjectRepository)
	listed := []model.Project{{ID: uuid.New(), Title: "Sundarbans", Status: model.StatusActive}}
	repo.On("ListListed", mock.Anything).Return(listed, nil)

	svc := NewRegistryService(repo, nil)
	projects, err := svc.ListProjects(context.Background())
	require.NoError(t, err)
	assert.Equal(t, listed, projects)
}

func TestRegistryService_SubmitProject(t *testing.T) {
	actor := auth.Identity{UserID: uuid.New(), Role: model.RoleCommunity}

	t.Run("creates pending project", func(t *testing.T) {
		repo := new(MockProjectRepository)
		repo.On("Create", mock.Anything, mock.MatchedBy(func(p *model.Project) bool {
			return p.Status == model.StatusPending && p.SubmittedBy == actor.UserID
		})).Return(nil)

		svc := NewRegistryService(repo, nil)
		project, err := svc.SubmitProject(context.Background(), actor, SubmitProjectInput{
			Title:       "Kelp Highway",
			ProjectType: model.ProjectBlueCarbon,
		})
		require.NoError(t, err)
		assert.Equal(t, model.StatusPending, project.Status)
		repo.AssertExpectations(t)
	})

	t.Run("rejects unknown project type", func(t *testing.T) {
		repo := new(MockProjectRepository)
		svc := NewRegistryService(repo, nil)
		_, err := svc.SubmitProject(context.Background(), actor, SubmitProjectInput{
			Title:       "Mystery",
			ProjectType: model.ProjectType("geothermal"),
		})
		assert.ErrorIs(t, err, apperrors.ErrValidation)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}
