package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/sakif/devdesk/internal/apperror"
	"github.com/sakif/devdesk/internal/model"
	"github.com/sakif/devdesk/internal/repository"
	"github.com/sakif/devdesk/internal/validation"
)

// ProfileService manages public profiles, one per user.
type ProfileService struct {
	profiles repository.ProfileRepository
	logger   *slog.Logger
}

func NewProfileService(profiles repository.ProfileRepository, logger *slog.Logger) *ProfileService {
	return &ProfileService{profiles: profiles, logger: logger}
}

func (s *ProfileService) List(ctx context.Context, opts repository.ListOptions) ([]model.Profile, error) {
	return s.profiles.ListProfiles(ctx, opts)
}

func (s *ProfileService) Get(ctx context.Context, id string) (*model.Profile, error) {
	return s.profiles.GetProfile(ctx, id)
}

// Create makes the caller's own profile. A second profile for the same user
// or a taken username is a conflict.
func (s *ProfileService) Create(ctx context.Context, callerID string, req validation.CreateProfileRequest) (*model.Profile, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	p := &model.Profile{
		ID:        callerID,
		Username:  strings.TrimSpace(req.Username),
		FullName:  strings.TrimSpace(req.FullName),
		AvatarURL: req.AvatarURL,
		Role:      strings.TrimSpace(req.Role),
	}
	if err := s.profiles.CreateProfile(ctx, p); err != nil {
		return nil, err
	}

	s.logger.Info("profile created", slog.String("userID", callerID))
	return p, nil
}

func (s *ProfileService) Update(ctx context.Context, callerID, id string, req validation.UpdateProfileRequest) (*model.Profile, error) {
	if callerID != id {
		return nil, apperror.NotFound("profile", id)
	}
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	return s.profiles.UpdateProfile(ctx, id, model.ProfilePatch{
		Username:  trimmed(req.Username),
		FullName:  trimmed(req.FullName),
		AvatarURL: req.AvatarURL,
		Role:      trimmed(req.Role),
	})
}

func (s *ProfileService) Delete(ctx context.Context, callerID, id string) (*model.Profile, error) {
	if callerID != id {
		return nil, apperror.NotFound("profile", id)
	}
	p, err := s.profiles.DeleteProfile(ctx, id)
	if err != nil {
		return nil, err
	}
	s.logger.Info("profile deleted", slog.String("userID", id))
	return p, nil
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
