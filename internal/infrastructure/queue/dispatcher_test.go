package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/silab/attendance-system/internal/core/ports"
)

type recordingDashboard struct {
	mu     sync.Mutex
	events []ports.LedgerEvent
	err    error
}

func (d *recordingDashboard) OnLedgerChange(_ context.Context, event ports.LedgerEvent) error {
	d.mu.Lock()
	d.events = append(d.events, event)
	d.mu.Unlock()
	return d.err
}

func (d *recordingDashboard) Build(context.Context, string, string) (*ports.Snapshot, error) {
	return &ports.Snapshot{}, nil
}

func (d *recordingDashboard) DayDetail(context.Context, string) ([]ports.AttendanceRow, error) {
	return nil, nil
}

func (d *recordingDashboard) seen() []ports.LedgerEvent {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]ports.LedgerEvent, len(d.events))
	copy(out, d.events)
	return out
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met in time")
}

func TestDispatcher_DeliversEvents(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dash := &recordingDashboard{}
	d := NewDispatcher(2, dash, zerolog.Nop())
	d.Start(ctx)

	d.Notify(ports.LedgerEvent{UserID: "user_1", Date: "2026-03-02"})
	d.Notify(ports.LedgerEvent{UserID: "user_2", Date: "2026-03-02"})

	waitFor(t, func() bool { return len(dash.seen()) == 2 })
}

func TestDispatcher_SameUserStaysOrdered(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dash := &recordingDashboard{}
	d := NewDispatcher(4, dash, zerolog.Nop())
	d.Start(ctx)

	for i := 0; i < 20; i++ {
		d.Notify(ports.LedgerEvent{UserID: "user_1", Date: "2026-03-02", User: ports.ScanUser{Semester: i}})
	}

	waitFor(t, func() bool { return len(dash.seen()) == 20 })

	for i, ev := range dash.seen() {
		if ev.User.Semester != i {
			t.Fatalf("event %d delivered out of order: got %d", i, ev.User.Semester)
		}
	}
}

func TestDispatcher_ServiceFailureDoesNotStopWorkers(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dash := &recordingDashboard{err: errors.New("publish failed")}
	d := NewDispatcher(1, dash, zerolog.Nop())
	d.Start(ctx)

	d.Notify(ports.LedgerEvent{UserID: "user_1"})
	d.Notify(ports.LedgerEvent{UserID: "user_1"})

	waitFor(t, func() bool { return len(dash.seen()) == 2 })
}
