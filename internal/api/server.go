package api

import (
	"context"
	"sync"

	"github.com/memotica/memotica/internal/services"
)

// HealthChecker reports whether a backing resource can serve requests.
type HealthChecker interface {
	Check(ctx context.Context) error
}

type Server struct {
	DB               HealthChecker
	DeckService      services.DeckService
	FlashcardService services.FlashcardService
	ReviewService    services.ReviewService
	// CORSOrigins lists the browser origins allowed to call the API.
	// Cross-origin requests are not answered when it is empty.
	CORSOrigins []string

	mu     sync.Mutex
	active *activeSession
}
