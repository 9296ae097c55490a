package editorial

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

func (s *service) CreateProfile(ctx context.Context, req CreateProfileRequest) (*Profile, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.DisplayName = strings.TrimSpace(req.DisplayName)
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	id := req.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	now := s.now()
	profile := &Profile{
		ID:          id,
		Email:       req.Email,
		DisplayName: req.DisplayName,
		AvatarURL:   req.AvatarURL,
		Role:        req.Role,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.CreateProfile(ctx, profile); err != nil {
		return nil, fmt.Errorf("create profile: %w", asDependency(err))
	}
	return profile, nil
}

func (s *service) UpdateProfile(ctx context.Context, id uuid.UUID, req UpdateProfileRequest) (*Profile, error) {
	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		req.Email = &email
	}
	trimPtr(req.DisplayName)
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	profile, err := s.repo.GetProfile(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("update profile %s: %w", id, asDependency(err))
	}
	if req.Email != nil {
		profile.Email = *req.Email
	}
	if req.DisplayName != nil {
		profile.DisplayName = *req.DisplayName
	}
	if req.AvatarURL != nil {
		profile.AvatarURL = *req.AvatarURL
	}
	if req.Role != nil {
		profile.Role = *req.Role
	}
	profile.UpdatedAt = s.now()

	if err := s.repo.UpdateProfile(ctx, profile); err != nil {
		return nil, fmt.Errorf("update profile %s: %w", id, asDependency(err))
	}
	return profile, nil
}

func (s *service) GetProfile(ctx context.Context, id uuid.UUID) (*Profile, error) {
	profile, err := s.repo.GetProfile(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get profile %s: %w", id, asDependency(err))
	}
	return profile, nil
}

func (s *service) ListProfiles(ctx context.Context) ([]*Profile, error) {
	profiles, err := s.repo.ListProfiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", asDependency(err))
	}
	if profiles == nil {
		profiles = []*Profile{}
	}
	return profiles, nil
}
