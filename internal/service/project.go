package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/sakif/devdesk/internal/model"
	"github.com/sakif/devdesk/internal/repository"
	"github.com/sakif/devdesk/internal/validation"
)

// ProjectService manages the caller's projects. Every lookup is scoped to
// the owner, so another user's project is simply not found.
type ProjectService struct {
	projects repository.ProjectRepository
	logger   *slog.Logger
}

func NewProjectService(projects repository.ProjectRepository, logger *slog.Logger) *ProjectService {
	return &ProjectService{projects: projects, logger: logger}
}

func (s *ProjectService) Create(ctx context.Context, callerID string, req validation.CreateProjectRequest) (*model.Project, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	p := &model.Project{
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		OwnerID:     callerID,
	}
	if err := s.projects.CreateProject(ctx, p); err != nil {
		return nil, err
	}

	s.logger.Info("project created",
		slog.String("projectID", p.ID),
		slog.String("ownerID", callerID),
	)
	return p, nil
}

func (s *ProjectService) List(ctx context.Context, callerID string, opts repository.ListOptions) ([]model.Project, error) {
	return s.projects.ListProjects(ctx, callerID, opts)
}

func (s *ProjectService) Get(ctx context.Context, callerID, id string) (*model.Project, error) {
	return s.projects.GetProject(ctx, id, callerID)
}

func (s *ProjectService) Update(ctx context.Context, callerID, id string, req validation.UpdateProjectRequest) (*model.Project, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	return s.projects.UpdateProject(ctx, id, callerID, model.ProjectPatch{
		Name:        trimmed(req.Name),
		Description: trimmed(req.Description),
	})
}

// Delete removes the project together with its tickets, comments, activity
// and repository links.
func (s *ProjectService) Delete(ctx context.Context, callerID, id string) (*model.Project, error) {
	p, err := s.projects.DeleteProject(ctx, id, callerID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("project deleted", slog.String("projectID", id))
	return p, nil
}
