package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shelfmark/shelfmark-server/internal/domain"
	"github.com/shelfmark/shelfmark-server/internal/id"
	"github.com/shelfmark/shelfmark-server/internal/store"
)

// ChallengeService manages yearly reading challenges.
type ChallengeService struct {
	store         *store.Store
	logger        *slog.Logger
	defaultTarget int
}

// NewChallengeService creates a new challenge service.
func NewChallengeService(st *store.Store, defaultTarget int, logger *slog.Logger) *ChallengeService {
	if defaultTarget <= 0 {
		defaultTarget = domain.DefaultChallengeTarget
	}
	return &ChallengeService{
		store:         st,
		logger:        logger,
		defaultTarget: defaultTarget,
	}
}

// GetChallenge returns the user's challenge for a year, creating one
// with the default target on first access. Completions recorded before
// the first explicit access are already counted because the store
// creates the challenge lazily too.
func (s *ChallengeService) GetChallenge(ctx context.Context, userID string, year int) (*domain.ReadingChallenge, error) {
	if year <= 0 {
		year = time.Now().UTC().Year()
	}

	challenge, err := s.store.GetChallenge(ctx, userID, year)
	if err == nil {
		return challenge, nil
	}
	if !errors.Is(err, store.ErrChallengeNotFound) {
		return nil, fmt.Errorf("get challenge: %w", err)
	}

	challengeID, err := id.Generate("chal")
	if err != nil {
		return nil, fmt.Errorf("generate challenge ID: %w", err)
	}
	challenge = domain.NewReadingChallenge(challengeID, userID, year, s.defaultTarget, time.Now().UTC())

	err = s.store.CreateChallenge(ctx, challenge)
	if errors.Is(err, store.ErrChallengeExists) {
		// Lost a race with a completion; read back the winner.
		return s.store.GetChallenge(ctx, userID, year)
	}
	if err != nil {
		return nil, fmt.Errorf("create challenge: %w", err)
	}
	return challenge, nil
}

// ListChallenges returns all of the user's challenges, newest year first.
func (s *ChallengeService) ListChallenges(ctx context.Context, userID string) ([]*domain.ReadingChallenge, error) {
	challenges, err := s.store.ListChallenges(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list challenges: %w", err)
	}
	return challenges, nil
}

// SetGoalRequest sets the yearly book target.
type SetGoalRequest struct {
	Year   int `json:"year" validate:"gte=0"`
	Target int `json:"target" validate:"required,gt=0,lte=10000"`
}

// SetGoal creates the year's challenge with the given target, or changes
// the target of an existing one. The completed count is never reset.
func (s *ChallengeService) SetGoal(ctx context.Context, userID string, req SetGoalRequest) (*domain.ReadingChallenge, error) {
	if err := validate.Struct(req); err != nil {
		return nil, formatValidationError(err)
	}

	year := req.Year
	if year == 0 {
		year = time.Now().UTC().Year()
	}
	now := time.Now().UTC()

	challenge, err := s.store.UpdateChallengeTarget(ctx, userID, year, req.Target, now)
	if err == nil {
		return challenge, nil
	}
	if !errors.Is(err, store.ErrChallengeNotFound) {
		return nil, fmt.Errorf("update challenge target: %w", err)
	}

	challengeID, err := id.Generate("chal")
	if err != nil {
		return nil, fmt.Errorf("generate challenge ID: %w", err)
	}
	challenge = domain.NewReadingChallenge(challengeID, userID, year, req.Target, now)

	err = s.store.CreateChallenge(ctx, challenge)
	if errors.Is(err, store.ErrChallengeExists) {
		// Lost a race; apply the target to the existing challenge.
		challenge, err = s.store.UpdateChallengeTarget(ctx, userID, year, req.Target, now)
		if err != nil {
			return nil, fmt.Errorf("update challenge target: %w", err)
		}
		return challenge, nil
	}
	if err != nil {
		return nil, fmt.Errorf("create challenge: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("reading goal set", "user_id", userID, "year", year, "target", req.Target)
	}
	return challenge, nil
}
