package validation

import (
	"bytes"
	"encoding/json"
)

type SignUpRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required,notblank"`
}

type CreateProfileRequest struct {
	Username  string `json:"username" validate:"required,notblank,max=50"`
	FullName  string `json:"full_name" validate:"max=100"`
	AvatarURL string `json:"avatar_url" validate:"omitempty,url,max=2048"`
	Role      string `json:"role" validate:"max=50"`
}

type UpdateProfileRequest struct {
	Username  *string `json:"username" validate:"omitnil,notblank,max=50"`
	FullName  *string `json:"full_name" validate:"omitnil,max=100"`
	AvatarURL *string `json:"avatar_url" validate:"omitnil,optionalurl,max=2048"`
	Role      *string `json:"role" validate:"omitnil,max=50"`
}

func (r UpdateProfileRequest) Empty() bool {
	return r.Username == nil && r.FullName == nil && r.AvatarURL == nil && r.Role == nil
}

type CreateProjectRequest struct {
	Name        string `json:"name" validate:"required,notblank,max=200"`
	Description string `json:"description" validate:"max=5000"`
}

type UpdateProjectRequest struct {
	Name        *string `json:"name" validate:"omitnil,notblank,max=200"`
	Description *string `json:"description" validate:"omitnil,max=5000"`
}

func (r UpdateProjectRequest) Empty() bool {
	return r.Name == nil && r.Description == nil
}

type CreateTicketRequest struct {
	Title       string  `json:"title" validate:"required,notblank,max=300"`
	Description string  `json:"description" validate:"required,notblank"`
	Status      string  `json:"status" validate:"omitempty,oneof=open in_progress resolved closed"`
	Priority    string  `json:"priority" validate:"omitempty,oneof=low medium high critical"`
	AssignedTo  *string `json:"assigned_to" validate:"omitnil,uuid"`
}

// UpdateTicketRequest accepts "assigned_to": null to remove the assignee.
type UpdateTicketRequest struct {
	Title       *string `json:"title" validate:"omitnil,notblank,max=300"`
	Description *string `json:"description" validate:"omitnil,notblank"`
	Status      *string `json:"status" validate:"omitnil,oneof=open in_progress resolved closed"`
	Priority    *string `json:"priority" validate:"omitnil,oneof=low medium high critical"`
	AssignedTo  *string `json:"assigned_to" validate:"omitnil,uuid"`

	ClearAssignee bool `json:"-"`
}

func (r *UpdateTicketRequest) UnmarshalJSON(data []byte) error {
	type plain UpdateTicketRequest
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if v, ok := raw["assigned_to"]; ok && bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
		p.ClearAssignee = true
	}

	*r = UpdateTicketRequest(p)
	return nil
}

func (r UpdateTicketRequest) Empty() bool {
	return r.Title == nil && r.Description == nil && r.Status == nil &&
		r.Priority == nil && r.AssignedTo == nil && !r.ClearAssignee
}

type CreateCommentRequest struct {
	Content string `json:"content" validate:"required,notblank,max=10000"`
}

type CreateActivityRequest struct {
	Action  string `json:"action" validate:"required,notblank,max=100"`
	Details string `json:"details" validate:"max=2000"`
}

type LinkRepoRequest struct {
	RepoOwner    string `json:"repo_owner" validate:"required,notblank,max=100"`
	RepoName     string `json:"repo_name" validate:"required,notblank,max=100"`
	GitHubRepoID int64  `json:"github_repo_id" validate:"required,gt=0"`
}
