package handler

import (
	"net/http"

	"github.com/sakif/devdesk/internal/service"
	"github.com/sakif/devdesk/internal/validation"
)

// ProjectHandler serves /projects. A project is only ever visible to its
// owner: every service call is scoped to the caller.
type ProjectHandler struct {
	projects *service.ProjectService
}

func NewProjectHandler(projects *service.ProjectService) *ProjectHandler {
	return &ProjectHandler{projects: projects}
}

// List handles GET /projects.
func (h *ProjectHandler) List(r *http.Request) (*Result, error) {
	user, err := caller(r)
	if err != nil {
		return nil, err
	}
	opts, err := listOptions(r)
	if err != nil {
		return nil, err
	}
	ps, err := h.projects.List(r.Context(), user.ID, opts)
	if err != nil {
		return nil, err
	}
	return success(list(ps), ""), nil
}

// Create handles POST /projects. The caller becomes the owner.
func (h *ProjectHandler) Create(r *http.Request) (*Result, error) {
	user, err := caller(r)
	if err != nil {
		return nil, err
	}
	var req validation.CreateProjectRequest
	if err := decode(r, &req); err != nil {
		return nil, err
	}
	p, err := h.projects.Create(r.Context(), user.ID, req)
	if err != nil {
		return nil, err
	}
	return created(p, "Project created"), nil
}

func (h *ProjectHandler) Get(r *http.Request) (*Result, error) {
	user, err := caller(r)
	if err != nil {
		return nil, err
	}
	id, err := uuidParam(r, "id")
	if err != nil {
		return nil, err
	}
	p, err := h.projects.Get(r.Context(), user.ID, id)
	if err != nil {
		return nil, err
	}
	return success(p, ""), nil
}

func (h *ProjectHandler) Update(r *http.Request) (*Result, error) {
	user, err := caller(r)
	if err != nil {
		return nil, err
	}
	id, err := uuidParam(r, "id")
	if err != nil {
		return nil, err
	}
	var req validation.UpdateProjectRequest
	if err := decode(r, &req); err != nil {
		return nil, err
	}
	p, err := h.projects.Update(r.Context(), user.ID, id, req)
	if err != nil {
		return nil, err
	}
	return success(p, "Project updated"), nil
}

// Delete handles DELETE /projects/{id}. Tickets and linked repositories are
// removed with the project.
func (h *ProjectHandler) Delete(r *http.Request) (*Result, error) {
	user, err := caller(r)
	if err != nil {
		return nil, err
	}
	id, err := uuidParam(r, "id")
	if err != nil {
		return nil, err
	}
	p, err := h.projects.Delete(r.Context(), user.ID, id)
	if err != nil {
		return nil, err
	}
	return success(p, "Project deleted"), nil
}
