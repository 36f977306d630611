package services

import (
	"context"

	"github.com/dmitrijs2005/taskflow/internal/client/models"
	"github.com/dmitrijs2005/taskflow/internal/client/query"
)

type ProjectService interface {
	List(ctx context.Context) ([]models.Project, error)
	Get(ctx context.Context, projectID int64) (models.Project, error)
	Create(ctx context.Context, req models.ProjectCreateRequest) (models.Project, error)
}

var projectsEntity = query.Entity{Kind: "projects"}

type projectService struct {
	backend  ProjectsBackend
	cache    *query.Cache
	inflight *query.InFlight
}

func NewProjectService(backend ProjectsBackend, cache *query.Cache, inflight *query.InFlight) ProjectService {
	return &projectService{backend: backend, cache: cache, inflight: inflight}
}

func (s *projectService) List(ctx context.Context) ([]models.Project, error) {
	return query.Get(ctx, s.cache, query.ProjectsKey(), s.backend.List)
}

func (s *projectService) Get(ctx context.Context, projectID int64) (models.Project, error) {
	return query.Get(ctx, s.cache, query.ProjectKey(projectID), func(ctx context.Context) (models.Project, error) {
		return s.backend.Get(ctx, projectID)
	})
}

func (s *projectService) Create(ctx context.Context, req models.ProjectCreateRequest) (models.Project, error) {
	if err := models.Validate(req); err != nil {
		return models.Project{}, err
	}
	return query.Mutate(ctx, s.inflight, s.cache, projectsEntity, query.OpCreate,
		func(ctx context.Context) (models.Project, error) { return s.backend.Create(ctx, req) },
		func(models.Project) []query.Key { return []query.Key{query.ProjectsKey()} },
	)
}
