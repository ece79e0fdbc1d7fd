package queue

import (
	"context"
	"hash/fnv"
	"time"

	"github.com/rs/zerolog"

	"github.com/stagepass/presence-api/internal/core/domain"
	"github.com/stagepass/presence-api/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 128
)

// MatchJob asks a worker to recompute ranked matches for a session that just
// acquired a location.
type MatchJob struct {
	SessionID string
	Location  domain.UserLocation
}

// Dispatcher routes match jobs to a fixed set of workers using consistent
// hashing on the session id, so recomputations for one session never race
// each other.
type Dispatcher struct {
	workers   []chan MatchJob
	matcher   ports.MatchService
	cache     ports.MatchCache
	resultTTL time.Duration
	log       zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers. If
// numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, matcher ports.MatchService, cache ports.MatchCache, resultTTL time.Duration, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	if resultTTL <= 0 {
		resultTTL = 5 * time.Minute
	}
	d := &Dispatcher{
		workers:   make([]chan MatchJob, numWorkers),
		matcher:   matcher,
		cache:     cache,
		resultTTL: resultTTL,
		log:       log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan MatchJob, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue sends a job to the worker responsible for its session. Non-blocking
// up to channelBuffer capacity.
func (d *Dispatcher) Enqueue(job MatchJob) {
	d.workers[d.shardIndex(job.SessionID)] <- job
}

// shardIndex maps a session id deterministically to a worker index.
func (d *Dispatcher) shardIndex(sessionID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(sessionID))
	return int(h.Sum32()) % len(d.workers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan MatchJob) {
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-ch:
			if !ok {
				return
			}
			d.process(ctx, id, job)
		}
	}
}

func (d *Dispatcher) process(ctx context.Context, workerID int, job MatchJob) {
	results, err := d.matcher.MatchNearby(ctx, job.Location, ports.MatchOptions{})
	if err != nil {
		d.log.Error().Err(err).
			Str("session_id", job.SessionID).
			Int("worker_id", workerID).
			Msg("match recomputation failed")
		return
	}

	if err := d.cache.Put(ctx, job.SessionID, results, d.resultTTL); err != nil {
		d.log.Error().Err(err).
			Str("session_id", job.SessionID).
			Msg("failed to cache match results")
		return
	}

	d.log.Debug().
		Str("session_id", job.SessionID).
		Int("results", len(results)).
		Msg("matches recomputed")
}
