package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/silab/attendance-system/internal/api/metrics"
	"github.com/silab/attendance-system/internal/core/domain"
	"github.com/silab/attendance-system/internal/core/ports"
)

// Ranges longer than this many days are bucketed monthly in the chart series.
const dailyBucketMaxDays = 31

const mostActiveLimit = 10

type dashboardService struct {
	ledger    ports.AttendanceRepository
	users     ports.UserRepository
	publisher ports.SnapshotPublisher
	chartDays int
	now       func() time.Time
	log       zerolog.Logger
}

// NewDashboardService returns the aggregation and broadcast service.
// chartDays is the default trailing window of the chart series.
func NewDashboardService(
	ledger ports.AttendanceRepository,
	users ports.UserRepository,
	publisher ports.SnapshotPublisher,
	chartDays int,
	log zerolog.Logger,
) ports.DashboardService {
	if chartDays <= 0 {
		chartDays = 7
	}
	return &dashboardService{
		ledger:    ledger,
		users:     users,
		publisher: publisher,
		chartDays: chartDays,
		now:       time.Now,
		log:       log,
	}
}

// OnLedgerChange rebuilds the full snapshot and publishes it to the broadcast
// channel. Publish failures are reported to the caller for logging but the
// triggering ledger write is already committed and is never unwound.
func (s *dashboardService) OnLedgerChange(ctx context.Context, event ports.LedgerEvent) error {
	snap, err := s.Build(ctx, "", "")
	if err != nil {
		metrics.SnapshotErrorsTotal.WithLabelValues("build").Inc()
		return fmt.Errorf("on ledger change: %w", err)
	}
	snap.Attendance = &event

	if err := s.publisher.Publish(ctx, snap); err != nil {
		metrics.SnapshotErrorsTotal.WithLabelValues("publish").Inc()
		return fmt.Errorf("on ledger change: publish: %w", err)
	}
	metrics.SnapshotPublishedTotal.Inc()

	s.log.Debug().
		Str("user_id", event.UserID).
		Str("action", string(event.Action)).
		Int64("today_checkins", snap.Stats.TodayCheckins).
		Msg("snapshot published")

	return nil
}

// Build recomputes every dashboard aggregate in one pass over the repository.
// Empty bounds default to today; the chart and ranking windows widen to the
// trailing week and month-to-date respectively, matching what subscribers
// render.
func (s *dashboardService) Build(ctx context.Context, startDate, endDate string) (*ports.Snapshot, error) {
	timer := metrics.SnapshotBuildDuration
	started := s.now()

	today := started.Format(domain.DateLayout)
	if startDate == "" {
		startDate = today
	}
	if endDate == "" {
		endDate = startDate
	}

	checkins, err := s.ledger.CountByAction(ctx, domain.ActionCheckIn, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("build snapshot: count check-ins: %w", err)
	}
	checkouts, err := s.ledger.CountByAction(ctx, domain.ActionCheckOut, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("build snapshot: count check-outs: %w", err)
	}
	totalAslabs, err := s.users.CountActiveAslabs(ctx)
	if err != nil {
		return nil, fmt.Errorf("build snapshot: count aslabs: %w", err)
	}

	// "Currently in" only makes sense when the range includes today.
	var active int64
	if startDate <= today && endDate >= today {
		in, err := s.ledger.CountByAction(ctx, domain.ActionCheckIn, today, today)
		if err != nil {
			return nil, fmt.Errorf("build snapshot: %w", err)
		}
		out, err := s.ledger.CountByAction(ctx, domain.ActionCheckOut, today, today)
		if err != nil {
			return nil, fmt.Errorf("build snapshot: %w", err)
		}
		active = in - out
		if active < 0 {
			active = 0
		}
	}

	rows, err := s.ledger.ListWithUsers(ctx, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("build snapshot: list rows: %w", err)
	}

	rankStart := time.Date(started.Year(), started.Month(), 1, 0, 0, 0, 0, started.Location()).Format(domain.DateLayout)
	ranking, err := s.ledger.MostActive(ctx, rankStart, today, mostActiveLimit)
	if err != nil {
		return nil, fmt.Errorf("build snapshot: ranking: %w", err)
	}

	chart, err := s.chartSeries(ctx, startDate, endDate, today)
	if err != nil {
		return nil, fmt.Errorf("build snapshot: %w", err)
	}

	timer.Observe(time.Since(started).Seconds())

	return &ports.Snapshot{
		Event: ports.SnapshotEvent,
		Stats: ports.Stats{
			TotalAslabs:    totalAslabs,
			TodayCheckins:  checkins,
			TodayCheckouts: checkouts,
			ActiveToday:    active,
		},
		TodayAttendances: rows,
		MostActiveAslabs: ranking,
		WeeklyChartData:  chart,
		GeneratedAt:      started.UTC(),
	}, nil
}

// chartSeries produces one bucket per day (or per month for long ranges) with
// a zero entry for days without check-ins, so subscribers can chart the slice
// as-is.
func (s *dashboardService) chartSeries(ctx context.Context, startDate, endDate, today string) ([]ports.ChartPoint, error) {
	start, err := time.Parse(domain.DateLayout, startDate)
	if err != nil {
		return nil, fmt.Errorf("chart series: %w", err)
	}
	end, err := time.Parse(domain.DateLayout, endDate)
	if err != nil {
		return nil, fmt.Errorf("chart series: %w", err)
	}

	// The default single-day window widens to the trailing week.
	if startDate == endDate && endDate == today {
		start = end.AddDate(0, 0, -(s.chartDays - 1))
	}

	counts, err := s.ledger.DailyCounts(ctx, start.Format(domain.DateLayout), end.Format(domain.DateLayout))
	if err != nil {
		return nil, fmt.Errorf("chart series: %w", err)
	}

	if int(end.Sub(start).Hours()/24) <= dailyBucketMaxDays {
		points := make([]ports.ChartPoint, 0, s.chartDays)
		for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
			points = append(points, ports.ChartPoint{
				Date:  d.Format("02/01"),
				Count: counts[d.Format(domain.DateLayout)],
			})
		}
		return points, nil
	}

	// Long ranges collapse to monthly buckets.
	var points []ports.ChartPoint
	for m := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC); !m.After(end); m = m.AddDate(0, 1, 0) {
		var total int64
		for date, n := range counts {
			if d, err := time.Parse(domain.DateLayout, date); err == nil &&
				d.Year() == m.Year() && d.Month() == m.Month() {
				total += n
			}
		}
		points = append(points, ports.ChartPoint{Date: m.Format("Jan 2006"), Count: total})
	}
	return points, nil
}

// DayDetail returns the per-user rows for a single date.
func (s *dashboardService) DayDetail(ctx context.Context, date string) ([]ports.AttendanceRow, error) {
	if _, err := time.Parse(domain.DateLayout, date); err != nil {
		return nil, fmt.Errorf("day detail: invalid date %q: %w", date, err)
	}
	rows, err := s.ledger.ListWithUsers(ctx, date, date)
	if err != nil {
		return nil, fmt.Errorf("day detail: %w", err)
	}
	return rows, nil
}
