package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/shelfmark/shelfmark-server/internal/domain"
	"github.com/shelfmark/shelfmark-server/internal/service"
)

func (s *Server) registerChallengeRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listChallenges",
		Method:      http.MethodGet,
		Path:        "/api/v1/challenges",
		Summary:     "List challenges",
		Description: "Returns all of the user's reading challenges, newest year first",
		Tags:        []string{"Challenges"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListChallenges)

	huma.Register(s.api, huma.Operation{
		OperationID: "getChallenge",
		Method:      http.MethodGet,
		Path:        "/api/v1/challenges/{year}",
		Summary:     "Get challenge",
		Description: "Returns the challenge for a year, creating one with the default target on first access",
		Tags:        []string{"Challenges"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetChallenge)

	huma.Register(s.api, huma.Operation{
		OperationID: "setChallengeGoal",
		Method:      http.MethodPost,
		Path:        "/api/v1/challenges",
		Summary:     "Set reading goal",
		Description: "Creates or updates the yearly book target without resetting progress",
		Tags:        []string{"Challenges"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleSetChallengeGoal)
}

// === DTOs ===

// ChallengeResponse contains one reading challenge in API responses.
type ChallengeResponse struct {
	ID          string     `json:"id" doc:"Challenge ID"`
	Year        int        `json:"year" doc:"Calendar year"`
	Target      int        `json:"target" doc:"Books to read this year"`
	Completed   int        `json:"completed" doc:"Books finished this year"`
	Progress    int        `json:"progress" doc:"Completion percent, capped at 100"`
	Achieved    bool       `json:"achieved" doc:"Whether the target has been met"`
	CompletedAt *time.Time `json:"completed_at,omitempty" doc:"When the target was first reached"`
}

func toChallengeResponse(c *domain.ReadingChallenge) ChallengeResponse {
	return ChallengeResponse{
		ID:          c.ID,
		Year:        c.Year,
		Target:      c.Target,
		Completed:   c.Completed,
		Progress:    c.ProgressPercent(),
		Achieved:    c.Achieved(),
		CompletedAt: c.CompletedAt,
	}
}

// ListChallengesResponse contains the user's challenges.
type ListChallengesResponse struct {
	Challenges []ChallengeResponse `json:"challenges" doc:"Challenges, newest year first"`
}

// ListChallengesOutput wraps the challenge listing for Huma.
type ListChallengesOutput struct {
	Body ListChallengesResponse
}

// GetChallengeInput identifies a challenge year.
type GetChallengeInput struct {
	Year int `path:"year" doc:"Calendar year"`
}

// ChallengeOutput wraps a single challenge for Huma.
type ChallengeOutput struct {
	Body ChallengeResponse
}

// SetGoalRequest is the request body for setting a yearly goal.
type SetGoalRequest struct {
	Year   int `json:"year,omitempty" doc:"Calendar year, defaults to the current one"`
	Target int `json:"target" doc:"Books to read this year"`
}

// SetGoalInput wraps the goal request for Huma.
type SetGoalInput struct {
	Body SetGoalRequest
}

// === Handlers ===

func (s *Server) handleListChallenges(ctx context.Context, _ *struct{}) (*ListChallengesOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	challenges, err := s.services.Challenge.ListChallenges(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := make([]ChallengeResponse, len(challenges))
	for i, c := range challenges {
		resp[i] = toChallengeResponse(c)
	}

	return &ListChallengesOutput{Body: ListChallengesResponse{Challenges: resp}}, nil
}

func (s *Server) handleGetChallenge(ctx context.Context, input *GetChallengeInput) (*ChallengeOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	challenge, err := s.services.Challenge.GetChallenge(ctx, userID, input.Year)
	if err != nil {
		return nil, err
	}

	return &ChallengeOutput{Body: toChallengeResponse(challenge)}, nil
}

func (s *Server) handleSetChallengeGoal(ctx context.Context, input *SetGoalInput) (*ChallengeOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	challenge, err := s.services.Challenge.SetGoal(ctx, userID, service.SetGoalRequest{
		Year:   input.Body.Year,
		Target: input.Body.Target,
	})
	if err != nil {
		return nil, err
	}

	return &ChallengeOutput{Body: toChallengeResponse(challenge)}, nil
}
