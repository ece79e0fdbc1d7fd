package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/stagepass/presence-api/internal/core/domain"
	"github.com/stagepass/presence-api/internal/core/ports"
)

// GeolocateConfig carries the acquisition defaults. They mirror the
// per-call overridable options: high accuracy on, 12 s timeout, readings
// cached for 5 minutes.
type GeolocateConfig struct {
	EnableHighAccuracy bool
	Timeout            time.Duration
	MaximumAge         time.Duration
}

// DefaultGeolocateConfig returns the standard acquisition settings.
func DefaultGeolocateConfig() GeolocateConfig {
	return GeolocateConfig{
		EnableHighAccuracy: true,
		Timeout:            12 * time.Second,
		MaximumAge:         5 * time.Minute,
	}
}

// session is the single mutable status + location pair per acquisition
// session. All mutation happens under mu; the generation counter invalidates
// callbacks from superseded attempts.
type session struct {
	id string

	mu         sync.Mutex
	generation uint64
	status     domain.GeolocationStatus
	location   *domain.UserLocation
	message    string
	updatedAt  time.Time
	cancel     context.CancelFunc
}

// FoundFunc is invoked after a session reaches the found state, outside the
// session lock. Used to kick off match recomputation.
type FoundFunc func(sessionID string, loc domain.UserLocation)

// GeolocateService owns acquisition sessions and drives the status state
// machine: detecting → found | error | permission-denied | timeout. One
// sensor request is outstanding per session at a time; a refetch supersedes
// the in-flight attempt rather than racing it.
type GeolocateService struct {
	cfg      GeolocateConfig
	provider ports.SourceProvider
	cache    ports.LocationCache
	matches  ports.MatchCache
	onFound  FoundFunc
	log      zerolog.Logger

	mu       sync.RWMutex
	sessions map[string]*session
}

// NewGeolocateService creates the session manager. provider may be nil when
// the runtime has no positioning capability — sessions then terminate in the
// error state without a sensor call. cache and matches are optional.
func NewGeolocateService(
	cfg GeolocateConfig,
	provider ports.SourceProvider,
	cache ports.LocationCache,
	matches ports.MatchCache,
	onFound FoundFunc,
	log zerolog.Logger,
) *GeolocateService {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 12 * time.Second
	}
	return &GeolocateService{
		cfg:      cfg,
		provider: provider,
		cache:    cache,
		matches:  matches,
		onFound:  onFound,
		log:      log,
		sessions: make(map[string]*session),
	}
}

// Create opens a new session in the detecting state and starts acquisition.
func (g *GeolocateService) Create(ctx context.Context, opts ports.AcquireOptions) (*ports.SessionView, error) {
	s := &session{
		id:        uuid.NewString(),
		status:    domain.StatusDetecting,
		updatedAt: time.Now().UTC(),
	}

	g.mu.Lock()
	g.sessions[s.id] = s
	g.mu.Unlock()

	g.start(s, g.resolve(opts))
	return g.view(s), nil
}

// Get returns the current snapshot of a session.
func (g *GeolocateService) Get(ctx context.Context, sessionID string) (*ports.SessionView, error) {
	s, err := g.lookup(sessionID)
	if err != nil {
		return nil, err
	}
	return g.view(s), nil
}

// Refetch resets the session to detecting and restarts acquisition. Any
// in-flight attempt is cancelled; its eventual callback is discarded by the
// generation guard, so only one terminal status is ever reached per logical
// user action.
func (g *GeolocateService) Refetch(ctx context.Context, sessionID string, opts ports.AcquireOptions) (*ports.SessionView, error) {
	s, err := g.lookup(sessionID)
	if err != nil {
		return nil, err
	}
	g.start(s, g.resolve(opts))
	return g.view(s), nil
}

// Matches returns the ranked matches last computed for the session together
// with the cardinality status.
func (g *GeolocateService) Matches(ctx context.Context, sessionID string) ([]domain.MatchResult, domain.GeolocationStatus, error) {
	s, err := g.lookup(sessionID)
	if err != nil {
		return nil, "", err
	}
	if g.matches == nil {
		return nil, domain.StatusNone, nil
	}
	results, ok, err := g.matches.Fetch(ctx, s.id)
	if err != nil {
		return nil, "", fmt.Errorf("fetch matches: %w", err)
	}
	if !ok {
		return nil, domain.StatusNone, nil
	}
	return results, domain.StatusForMatches(results), nil
}

// start begins a new acquisition attempt, superseding any in-flight one.
func (g *GeolocateService) start(s *session, cfg GeolocateConfig) {
	ctx, cancel := context.WithCancel(context.Background())

	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.generation++
	gen := s.generation
	s.status = domain.StatusDetecting
	s.location = nil
	s.message = ""
	s.updatedAt = time.Now().UTC()
	s.cancel = cancel
	s.mu.Unlock()

	go g.acquire(ctx, s, gen, cfg)
}

// acquire runs one sensor read and settles the session into a terminal
// status. It only mutates the session when its generation is still current.
func (g *GeolocateService) acquire(ctx context.Context, s *session, gen uint64, cfg GeolocateConfig) {
	if g.provider == nil {
		g.settle(s, gen, domain.StatusError, nil, domain.ErrUnsupported.Error())
		return
	}

	// A cached reading no older than MaximumAge short-circuits the sensor.
	if g.cache != nil && cfg.MaximumAge > 0 {
		if cached, err := g.cache.Get(ctx, s.id, cfg.MaximumAge); err == nil && cached != nil {
			g.settle(s, gen, domain.StatusFound, cached, "")
			g.notifyFound(s.id, *cached)
			return
		}
	}

	readCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	reading, err := g.provider.Source(s.id).Read(readCtx, ports.ReadOptions{
		EnableHighAccuracy: cfg.EnableHighAccuracy,
		Timeout:            cfg.Timeout,
		MaximumAge:         cfg.MaximumAge,
	})
	if err != nil {
		status, msg := failureStatus(err)
		g.settle(s, gen, status, nil, msg)
		return
	}

	loc := domain.UserLocation{
		Coordinate:     domain.Coordinate{Lat: reading.Latitude, Lng: reading.Longitude},
		AccuracyMeters: reading.Accuracy,
		Timestamp:      reading.Timestamp,
	}
	if loc.Timestamp.IsZero() {
		loc.Timestamp = time.Now().UTC()
	}
	if err := loc.Validate(); err != nil {
		g.settle(s, gen, domain.StatusError, nil, err.Error())
		return
	}

	if g.cache != nil && cfg.MaximumAge > 0 {
		if err := g.cache.Set(context.Background(), s.id, loc, cfg.MaximumAge); err != nil {
			g.log.Warn().Err(err).Str("session_id", s.id).Msg("failed to cache reading")
		}
	}

	g.settle(s, gen, domain.StatusFound, &loc, "")
	g.notifyFound(s.id, loc)
}

// settle writes a terminal status. Late callbacks from a superseded attempt
// carry a stale generation and are dropped without touching the session.
func (g *GeolocateService) settle(s *session, gen uint64, status domain.GeolocationStatus, loc *domain.UserLocation, msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.generation != gen {
		g.log.Debug().Str("session_id", s.id).Uint64("generation", gen).Msg("stale acquisition result dropped")
		return
	}

	s.status = status
	s.location = loc
	s.message = msg
	s.updatedAt = time.Now().UTC()

	g.log.Info().
		Str("session_id", s.id).
		Str("status", string(status)).
		Msg("acquisition settled")
}

func (g *GeolocateService) notifyFound(sessionID string, loc domain.UserLocation) {
	if g.onFound != nil {
		g.onFound(sessionID, loc)
	}
}

// failureStatus maps a sensor error onto the status taxonomy.
func failureStatus(err error) (domain.GeolocationStatus, string) {
	var failure *ports.ReadFailure
	if errors.As(err, &failure) {
		switch failure.Code {
		case ports.FailurePermissionDenied:
			return domain.StatusPermissionDenied, domain.ErrPermissionDenied.Error()
		case ports.FailurePositionUnavailable:
			return domain.StatusError, domain.ErrUnavailable.Error()
		case ports.FailureTimeout:
			return domain.StatusTimeout, domain.ErrTimeout.Error()
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.StatusTimeout, domain.ErrTimeout.Error()
	}
	// Cancelled reads come from superseded attempts; the generation guard
	// drops the result regardless of what is returned here.
	return domain.StatusError, err.Error()
}

func (g *GeolocateService) lookup(sessionID string) (*session, error) {
	g.mu.RLock()
	s, ok := g.sessions[sessionID]
	g.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrSessionNotFound, sessionID)
	}
	return s, nil
}

func (g *GeolocateService) view(s *session) *ports.SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()

	var loc *domain.UserLocation
	if s.location != nil {
		clone := *s.location
		loc = &clone
	}
	return &ports.SessionView{
		ID:        s.id,
		Status:    s.status,
		Location:  loc,
		Message:   s.message,
		UpdatedAt: s.updatedAt,
	}
}

// resolve merges per-call options over the configured defaults.
func (g *GeolocateService) resolve(opts ports.AcquireOptions) GeolocateConfig {
	cfg := g.cfg
	if opts.EnableHighAccuracy != nil {
		cfg.EnableHighAccuracy = *opts.EnableHighAccuracy
	}
	if opts.Timeout > 0 {
		cfg.Timeout = opts.Timeout
	}
	if opts.MaximumAge > 0 {
		cfg.MaximumAge = opts.MaximumAge
	}
	return cfg
}
