package handler

import (
	"net/http"

	"github.com/sakif/devdesk/internal/service"
	"github.com/sakif/devdesk/internal/validation"
)

// ProfileHandler serves /profiles. Listing is public so the frontend can
// show assignee pickers before sign-in; a profile's id is its owner's user
// id, and only that user may change or delete it.
type ProfileHandler struct {
	profiles *service.ProfileService
}

func NewProfileHandler(profiles *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

// List is public.
func (h *ProfileHandler) List(r *http.Request) (*Result, error) {
	opts, err := listOptions(r)
	if err != nil {
		return nil, err
	}
	ps, err := h.profiles.List(r.Context(), opts)
	if err != nil {
		return nil, err
	}
	return success(list(ps), ""), nil
}

func (h *ProfileHandler) Get(r *http.Request) (*Result, error) {
	id, err := uuidParam(r, "id")
	if err != nil {
		return nil, err
	}
	p, err := h.profiles.Get(r.Context(), id)
	if err != nil {
		return nil, err
	}
	return success(p, ""), nil
}

func (h *ProfileHandler) Create(r *http.Request) (*Result, error) {
	user, err := caller(r)
	if err != nil {
		return nil, err
	}
	var req validation.CreateProfileRequest
	if err := decode(r, &req); err != nil {
		return nil, err
	}
	p, err := h.profiles.Create(r.Context(), user.ID, req)
	if err != nil {
		return nil, err
	}
	return created(p, "Profile created"), nil
}

func (h *ProfileHandler) Update(r *http.Request) (*Result, error) {
	user, err := caller(r)
	if err != nil {
		return nil, err
	}
	id, err := uuidParam(r, "id")
	if err != nil {
		return nil, err
	}
	var req validation.UpdateProfileRequest
	if err := decode(r, &req); err != nil {
		return nil, err
	}
	p, err := h.profiles.Update(r.Context(), user.ID, id, req)
	if err != nil {
		return nil, err
	}
	return success(p, "Profile updated"), nil
}

func (h *ProfileHandler) Delete(r *http.Request) (*Result, error) {
	user, err := caller(r)
	if err != nil {
		return nil, err
	}
	id, err := uuidParam(r, "id")
	if err != nil {
		return nil, err
	}
	p, err := h.profiles.Delete(r.Context(), user.ID, id)
	if err != nil {
		return nil, err
	}
	return success(p, "Profile deleted"), nil
}
