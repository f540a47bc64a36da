package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/silab/attendance-system/internal/core/domain"
	"github.com/silab/attendance-system/internal/core/ports"
)

type stubPublisher struct {
	published []*ports.Snapshot
	err       error
}

func (p *stubPublisher) Publish(_ context.Context, snap *ports.Snapshot) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, snap)
	return nil
}

func newDashboardFixture(ledger *stubLedger, users *stubUserRepo, pub *stubPublisher, at time.Time) *dashboardService {
	svc := NewDashboardService(ledger, users, pub, 7, zerolog.Nop()).(*dashboardService)
	svc.now = func() time.Time { return at }
	return svc
}

func TestDashboardService_Build_Stats(t *testing.T) {
	ledger := newStubLedger()
	ledger.checkins = 5
	ledger.checkedOut = 3
	users := newStubUserRepo()
	users.active = 12

	svc := newDashboardFixture(ledger, users, &stubPublisher{}, time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC))

	snap, err := svc.Build(context.Background(), "", "")
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if snap.Event != ports.SnapshotEvent {
		t.Errorf("unexpected event name: %q", snap.Event)
	}
	if snap.Stats.TotalAslabs != 12 {
		t.Errorf("total_aslabs = %d, want 12", snap.Stats.TotalAslabs)
	}
	if snap.Stats.TodayCheckins != 5 || snap.Stats.TodayCheckouts != 3 {
		t.Errorf("counts = %d/%d, want 5/3", snap.Stats.TodayCheckins, snap.Stats.TodayCheckouts)
	}
	if snap.Stats.ActiveToday != 2 {
		t.Errorf("active_today = %d, want 2", snap.Stats.ActiveToday)
	}
}

func TestDashboardService_Build_ActiveNeverNegative(t *testing.T) {
	ledger := newStubLedger()
	ledger.checkins = 1
	ledger.checkedOut = 4 // stale data can over-count check-outs

	svc := newDashboardFixture(ledger, newStubUserRepo(), &stubPublisher{}, time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC))

	snap, err := svc.Build(context.Background(), "", "")
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if snap.Stats.ActiveToday != 0 {
		t.Errorf("active_today = %d, want clamp to 0", snap.Stats.ActiveToday)
	}
}

func TestDashboardService_Build_PastRangeSkipsActive(t *testing.T) {
	ledger := newStubLedger()
	ledger.checkins = 9

	svc := newDashboardFixture(ledger, newStubUserRepo(), &stubPublisher{}, time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC))

	snap, err := svc.Build(context.Background(), "2026-02-01", "2026-02-07")
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if snap.Stats.ActiveToday != 0 {
		t.Errorf("active_today must be 0 for a range excluding today, got %d", snap.Stats.ActiveToday)
	}
}

func TestDashboardService_Build_WeeklyChartZeroFilled(t *testing.T) {
	ledger := newStubLedger()
	ledger.daily = map[string]int64{
		"2026-03-01": 4,
		"2026-03-02": 6,
	}

	svc := newDashboardFixture(ledger, newStubUserRepo(), &stubPublisher{}, time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC))

	snap, err := svc.Build(context.Background(), "", "")
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if len(snap.WeeklyChartData) != 7 {
		t.Fatalf("expected 7 daily buckets, got %d", len(snap.WeeklyChartData))
	}
	first := snap.WeeklyChartData[0]
	if first.Date != "24/02" || first.Count != 0 {
		t.Errorf("first bucket = %+v, want 24/02 with 0", first)
	}
	last := snap.WeeklyChartData[6]
	if last.Date != "02/03" || last.Count != 6 {
		t.Errorf("last bucket = %+v, want 02/03 with 6", last)
	}
}

func TestDashboardService_Build_LongRangeBucketsMonthly(t *testing.T) {
	ledger := newStubLedger()
	ledger.daily = map[string]int64{
		"2026-01-05": 2,
		"2026-01-20": 3,
		"2026-02-10": 7,
	}

	svc := newDashboardFixture(ledger, newStubUserRepo(), &stubPublisher{}, time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC))

	snap, err := svc.Build(context.Background(), "2026-01-01", "2026-03-02")
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if len(snap.WeeklyChartData) != 3 {
		t.Fatalf("expected 3 monthly buckets, got %d", len(snap.WeeklyChartData))
	}
	if snap.WeeklyChartData[0].Date != "Jan 2026" || snap.WeeklyChartData[0].Count != 5 {
		t.Errorf("january bucket = %+v, want Jan 2026 with 5", snap.WeeklyChartData[0])
	}
	if snap.WeeklyChartData[1].Date != "Feb 2026" || snap.WeeklyChartData[1].Count != 7 {
		t.Errorf("february bucket = %+v, want Feb 2026 with 7", snap.WeeklyChartData[1])
	}
}

func TestDashboardService_OnLedgerChange_PublishesFullSnapshot(t *testing.T) {
	ledger := newStubLedger()
	ledger.checkins = 1
	users := newStubUserRepo()
	users.active = 3
	pub := &stubPublisher{}

	svc := newDashboardFixture(ledger, users, pub, time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC))

	event := ports.LedgerEvent{
		UserID:    "user_1",
		Action:    domain.ActionCheckIn,
		Timestamp: time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC),
		Date:      "2026-03-02",
		User:      ports.ScanUser{Name: "Budi"},
	}
	if err := svc.OnLedgerChange(context.Background(), event); err != nil {
		t.Fatalf("on ledger change failed: %v", err)
	}

	if len(pub.published) != 1 {
		t.Fatalf("expected one published snapshot, got %d", len(pub.published))
	}
	snap := pub.published[0]
	if snap.Attendance == nil || snap.Attendance.UserID != "user_1" {
		t.Errorf("triggering event not attached: %+v", snap.Attendance)
	}
	if snap.Stats.TotalAslabs != 3 {
		t.Errorf("snapshot must carry full stats, got %+v", snap.Stats)
	}
}

func TestDashboardService_OnLedgerChange_PublishFailure(t *testing.T) {
	pub := &stubPublisher{err: errors.New("broker down")}
	svc := newDashboardFixture(newStubLedger(), newStubUserRepo(), pub, time.Now())

	err := svc.OnLedgerChange(context.Background(), ports.LedgerEvent{UserID: "user_1"})
	if err == nil {
		t.Fatalf("expected publish error to surface")
	}
}

func TestDashboardService_DayDetail_RejectsBadDate(t *testing.T) {
	svc := newDashboardFixture(newStubLedger(), newStubUserRepo(), &stubPublisher{}, time.Now())

	if _, err := svc.DayDetail(context.Background(), "02/03/2026"); err == nil {
		t.Fatalf("expected invalid date error")
	}
}

func TestDashboardService_DayDetail(t *testing.T) {
	ledger := newStubLedger()
	ledger.rows = []ports.AttendanceRow{{Date: "2026-03-02", Status: domain.StatusPresent}}
	svc := newDashboardFixture(ledger, newStubUserRepo(), &stubPublisher{}, time.Now())

	rows, err := svc.DayDetail(context.Background(), "2026-03-02")
	if err != nil {
		t.Fatalf("day detail failed: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected one row, got %d", len(rows))
	}
}
