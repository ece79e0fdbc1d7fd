// Package sensor provides LocationSource implementations: a push-based hub
// fed by device reports, and a static fixture source for tests and local
// development.
package sensor

import (
	"context"
	"sync"

	"github.com/stagepass/presence-api/internal/core/ports"
)

// Hub is a push-based SourceProvider. Each session's Read blocks until a
// device reports a position (or failure) for that session, or the read
// context expires. Reports arriving with no waiting read are dropped — a late
// callback after a timeout cannot resurrect the attempt.
type Hub struct {
	mu      sync.Mutex
	waiters map[string]chan readOutcome
}

type readOutcome struct {
	reading *ports.Reading
	err     error
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{waiters: make(map[string]chan readOutcome)}
}

// Source returns the LocationSource bound to sessionID.
func (h *Hub) Source(sessionID string) ports.LocationSource {
	return &reportedSource{hub: h, sessionID: sessionID}
}

// Report delivers a device position to the session's pending read. Returns
// false when no read is waiting (expired, superseded, or never started).
func (h *Hub) Report(sessionID string, reading ports.Reading) bool {
	return h.deliver(sessionID, readOutcome{reading: &reading})
}

// ReportFailure delivers a structured sensor failure to the pending read.
func (h *Hub) ReportFailure(sessionID string, code ports.FailureCode, message string) bool {
	return h.deliver(sessionID, readOutcome{err: &ports.ReadFailure{Code: code, Message: message}})
}

func (h *Hub) deliver(sessionID string, out readOutcome) bool {
	h.mu.Lock()
	ch, ok := h.waiters[sessionID]
	if ok {
		delete(h.waiters, sessionID)
	}
	h.mu.Unlock()

	if !ok {
		return false
	}
	ch <- out
	return true
}

func (h *Hub) register(sessionID string) chan readOutcome {
	ch := make(chan readOutcome, 1)
	h.mu.Lock()
	// A superseding read replaces the previous waiter; the old channel is
	// abandoned and its eventual report dropped.
	h.waiters[sessionID] = ch
	h.mu.Unlock()
	return ch
}

func (h *Hub) unregister(sessionID string, ch chan readOutcome) {
	h.mu.Lock()
	if h.waiters[sessionID] == ch {
		delete(h.waiters, sessionID)
	}
	h.mu.Unlock()
}

type reportedSource struct {
	hub       *Hub
	sessionID string
}

// Read waits for a device report for this session.
func (r *reportedSource) Read(ctx context.Context, _ ports.ReadOptions) (*ports.Reading, error) {
	ch := r.hub.register(r.sessionID)
	defer r.hub.unregister(r.sessionID, ch)

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case out := <-ch:
		return out.reading, out.err
	}
}
