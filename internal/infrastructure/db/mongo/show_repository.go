package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/stagepass/presence-api/internal/core/domain"
	"github.com/stagepass/presence-api/internal/core/ports"
)

const (
	collectionShows       = "shows"
	defaultCandidateLimit = 500
)

// ShowRepository reads show/venue records from the shows collection. The
// matcher core never queries this directly — it receives the candidate set.
type ShowRepository struct {
	col *mongo.Collection
}

func NewShowRepository(db *mongo.Database) *ShowRepository {
	return &ShowRepository{col: db.Collection(collectionShows)}
}

// FindCandidates returns shows whose start time falls inside the filter
// window, soonest first. Cancelled shows are excluded unless explicitly
// requested.
func (r *ShowRepository) FindCandidates(ctx context.Context, filter ports.CandidateFilter) ([]domain.ShowCandidate, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := bson.M{}
	timeBounds := bson.M{}
	if !filter.StartFrom.IsZero() {
		timeBounds["$gte"] = filter.StartFrom
	}
	if !filter.StartTo.IsZero() {
		timeBounds["$lte"] = filter.StartTo
	}
	if len(timeBounds) > 0 {
		query["start_time"] = timeBounds
	}

	if len(filter.Statuses) > 0 {
		query["status"] = bson.M{"$in": filter.Statuses}
	} else {
		query["status"] = bson.M{"$ne": domain.ShowCancelled}
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultCandidateLimit
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "start_time", Value: 1}}).
		SetLimit(int64(limit))

	cursor, err := r.col.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("find shows: %w", err)
	}
	defer cursor.Close(ctx)

	var candidates []domain.ShowCandidate
	if err := cursor.All(ctx, &candidates); err != nil {
		return nil, fmt.Errorf("decode shows: %w", err)
	}
	return candidates, nil
}

// EnsureIndexes creates the indexes the candidate query relies on.
func (r *ShowRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "start_time", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
