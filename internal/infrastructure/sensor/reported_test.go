package sensor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stagepass/presence-api/internal/core/ports"
)

func TestHub_ReportDeliveredToWaitingRead(t *testing.T) {
	hub := NewHub()
	src := hub.Source("sess-1")

	type result struct {
		reading *ports.Reading
		err     error
	}
	done := make(chan result, 1)
	go func() {
		reading, err := src.Read(context.Background(), ports.ReadOptions{})
		done <- result{reading, err}
	}()

	// Wait for the read to register its waiter before reporting.
	accepted := false
	for i := 0; i < 100 && !accepted; i++ {
		accepted = hub.Report("sess-1", ports.Reading{Latitude: 40.0, Longitude: -75.0, Accuracy: 15})
		if !accepted {
			time.Sleep(2 * time.Millisecond)
		}
	}
	if !accepted {
		t.Fatal("report never found a waiting read")
	}

	select {
	case r := <-done:
		if r.err != nil {
			t.Fatalf("read: %v", r.err)
		}
		if r.reading.Latitude != 40.0 || r.reading.Longitude != -75.0 {
			t.Errorf("reading = %+v, want the reported position", r.reading)
		}
	case <-time.After(time.Second):
		t.Fatal("read never returned")
	}
}

func TestHub_ReportFailureDeliveredAsReadFailure(t *testing.T) {
	hub := NewHub()
	src := hub.Source("sess-1")

	errc := make(chan error, 1)
	go func() {
		_, err := src.Read(context.Background(), ports.ReadOptions{})
		errc <- err
	}()

	delivered := false
	for i := 0; i < 100 && !delivered; i++ {
		delivered = hub.ReportFailure("sess-1", ports.FailurePermissionDenied, "user declined")
		if !delivered {
			time.Sleep(2 * time.Millisecond)
		}
	}
	if !delivered {
		t.Fatal("failure never found a waiting read")
	}

	select {
	case err := <-errc:
		var failure *ports.ReadFailure
		if !errors.As(err, &failure) {
			t.Fatalf("expected *ReadFailure, got %v", err)
		}
		if failure.Code != ports.FailurePermissionDenied {
			t.Errorf("code = %s, want %s", failure.Code, ports.FailurePermissionDenied)
		}
	case <-time.After(time.Second):
		t.Fatal("read never returned")
	}
}

func TestHub_ReportWithoutWaiterDropped(t *testing.T) {
	hub := NewHub()

	if hub.Report("nobody", ports.Reading{Latitude: 1, Longitude: 2}) {
		t.Error("report with no waiting read must be dropped")
	}
	if hub.ReportFailure("nobody", ports.FailureTimeout, "") {
		t.Error("failure with no waiting read must be dropped")
	}
}

func TestHub_LateReportAfterTimeoutDropped(t *testing.T) {
	hub := NewHub()
	src := hub.Source("sess-1")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := src.Read(ctx, ports.ReadOptions{})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected DeadlineExceeded, got %v", err)
	}

	// The read has unwound and unregistered; a late device report must not be
	// accepted.
	if hub.Report("sess-1", ports.Reading{Latitude: 40.0, Longitude: -75.0}) {
		t.Error("late report after timeout must be dropped")
	}
}

func TestHub_SupersedingReadReplacesWaiter(t *testing.T) {
	hub := NewHub()

	// First read on the session, then a second one superseding it. The report
	// must reach only the second.
	firstCtx, cancelFirst := context.WithCancel(context.Background())
	defer cancelFirst()

	firstErr := make(chan error, 1)
	go func() {
		_, err := hub.Source("sess-1").Read(firstCtx, ports.ReadOptions{})
		firstErr <- err
	}()

	// Let the first read register.
	firstCh := waitForWaiter(t, hub, "sess-1", nil)

	second := make(chan *ports.Reading, 1)
	go func() {
		reading, _ := hub.Source("sess-1").Read(context.Background(), ports.ReadOptions{})
		second <- reading
	}()

	// Wait until the second read has replaced the waiter map entry.
	waitForWaiter(t, hub, "sess-1", firstCh)

	if !hub.Report("sess-1", ports.Reading{Latitude: 40.0, Longitude: -75.0}) {
		t.Fatal("report must reach the superseding read")
	}

	select {
	case reading := <-second:
		if reading == nil || reading.Latitude != 40.0 {
			t.Errorf("superseding read got %+v", reading)
		}
	case <-time.After(time.Second):
		t.Fatal("superseding read never returned")
	}

	// The first read is abandoned until its context is cancelled.
	cancelFirst()
	select {
	case err := <-firstErr:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("superseded read: expected Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("superseded read never unwound")
	}
}

// waitForWaiter polls until a waiter other than skip is registered for the
// session and returns it.
func waitForWaiter(t *testing.T, hub *Hub, sessionID string, skip chan readOutcome) chan readOutcome {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		hub.mu.Lock()
		ch, ok := hub.waiters[sessionID]
		hub.mu.Unlock()
		if ok && ch != skip {
			return ch
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("read never registered a waiter")
	return nil
}

func TestStatic_ReturnsFixture(t *testing.T) {
	src := &Static{Reading: ports.Reading{Latitude: 40.0, Longitude: -75.0, Accuracy: 20}}

	reading, err := src.Source("any").Read(context.Background(), ports.ReadOptions{})
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if reading.Latitude != 40.0 || reading.Accuracy != 20 {
		t.Errorf("reading = %+v, want the fixture", reading)
	}
	if reading.Timestamp.IsZero() {
		t.Error("fixture without timestamp must be stamped")
	}
}

func TestStatic_DelayHonoursContext(t *testing.T) {
	src := &Static{
		Reading: ports.Reading{Latitude: 40.0, Longitude: -75.0},
		Delay:   time.Second,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if _, err := src.Read(ctx, ports.ReadOptions{}); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected DeadlineExceeded, got %v", err)
	}
}

func TestStatic_Error(t *testing.T) {
	want := &ports.ReadFailure{Code: ports.FailurePositionUnavailable}
	src := &Static{Err: want}

	_, err := src.Read(context.Background(), ports.ReadOptions{})
	var failure *ports.ReadFailure
	if !errors.As(err, &failure) || failure.Code != ports.FailurePositionUnavailable {
		t.Errorf("expected position-unavailable failure, got %v", err)
	}
}
