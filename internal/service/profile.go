package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shelfmark/shelfmark-server/internal/domain"
	"github.com/shelfmark/shelfmark-server/internal/store"
)

// ProfileService manages user profiles and lifetime reading stats.
type ProfileService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewProfileService creates a new profile service.
func NewProfileService(st *store.Store, logger *slog.Logger) *ProfileService {
	return &ProfileService{
		store:  st,
		logger: logger,
	}
}

// GetProfile returns the user's profile. Users who never completed a
// book or set a display name get an empty profile view.
func (s *ProfileService) GetProfile(ctx context.Context, userID string) (*domain.UserProfile, error) {
	profile, err := s.store.GetProfile(ctx, userID)
	if errors.Is(err, store.ErrProfileNotFound) {
		return domain.NewUserProfile(userID, time.Now().UTC()), nil
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return profile, nil
}

// UpdateProfileRequest changes profile fields.
type UpdateProfileRequest struct {
	DisplayName string `json:"display_name" validate:"max=100"`
}

// UpdateProfile updates the user's display name. Reading counters are
// maintained by completion accounting and cannot be edited here.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID string, req UpdateProfileRequest) (*domain.UserProfile, error) {
	if err := validate.Struct(req); err != nil {
		return nil, formatValidationError(err)
	}

	now := time.Now().UTC()
	profile, err := s.store.GetProfile(ctx, userID)
	if errors.Is(err, store.ErrProfileNotFound) {
		profile = domain.NewUserProfile(userID, now)
	} else if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}

	profile.DisplayName = req.DisplayName
	profile.UpdatedAt = now

	if err := s.store.SaveProfile(ctx, profile); err != nil {
		return nil, fmt.Errorf("save profile: %w", err)
	}
	return profile, nil
}
