package api

import (
	"github.com/shelfmark/shelfmark-server/internal/service"
)

// Services groups all business logic services used by the API server.
// This reduces the parameter count for NewServer and improves testability.
type Services struct {
	Catalog   *service.CatalogService
	Library   *service.LibraryService
	Recommend *service.RecommendationService
	Challenge *service.ChallengeService
	Profile   *service.ProfileService
}
