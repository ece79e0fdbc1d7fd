package ports

import (
	"context"
	"time"

	"github.com/stagepass/presence-api/internal/core/domain"
)

// CandidateFilter selects show candidates for a match pass. The matcher never
// queries the store itself — it is handed the candidate set.
type CandidateFilter struct {
	// StartFrom/StartTo bound the show start time (the temporal relevance window).
	StartFrom time.Time
	StartTo   time.Time
	// Statuses restricts candidates to the given lifecycle states; empty means
	// any state except cancelled.
	Statuses []domain.ShowStatus
	// Limit caps the number of candidates returned; <= 0 means the store default.
	Limit int
}

// ShowRepository supplies show/venue records from the external store.
type ShowRepository interface {
	FindCandidates(ctx context.Context, filter CandidateFilter) ([]domain.ShowCandidate, error)
}
