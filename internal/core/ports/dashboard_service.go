package ports

import (
	"context"
	"time"

	"github.com/silab/attendance-system/internal/core/domain"
)

// SnapshotEvent is the broadcast name subscribers filter on.
const SnapshotEvent = "attendance.updated"

// LedgerEvent describes one committed attendance mutation. It drives the
// asynchronous snapshot rebuild and is embedded in the published snapshot so
// dashboards can flash the triggering user.
type LedgerEvent struct {
	UserID    string            `json:"user_id"`
	Action    domain.ScanAction `json:"action"`
	Timestamp time.Time         `json:"timestamp"`
	Date      string            `json:"date"`
	User      ScanUser          `json:"user"`
}

// Stats are the headline dashboard counters.
type Stats struct {
	TotalAslabs    int64 `json:"total_aslabs"`
	TodayCheckins  int64 `json:"today_checkins"`
	TodayCheckouts int64 `json:"today_checkouts"`
	// ActiveToday is checked-in-and-not-yet-out, clamped non-negative.
	ActiveToday int64 `json:"active_today"`
}

// Snapshot is the full replacement payload published to every dashboard
// subscriber after each ledger mutation. It is deliberately complete rather
// than a diff: applying it is idempotent and order-insensitive, so
// at-least-once unordered delivery cannot leave a subscriber inconsistent.
type Snapshot struct {
	Event            string          `json:"event"`
	Attendance       *LedgerEvent    `json:"attendance,omitempty"`
	Stats            Stats           `json:"stats"`
	TodayAttendances []AttendanceRow `json:"today_attendances"`
	MostActiveAslabs []ActiveAslab   `json:"most_active_aslabs"`
	WeeklyChartData  []ChartPoint    `json:"weekly_chart_data"`
	GeneratedAt      time.Time       `json:"generated_at"`
}

// SnapshotPublisher fans a snapshot out to the single well-known broadcast
// channel. Delivery is best-effort at-least-once.
type SnapshotPublisher interface {
	Publish(ctx context.Context, snap *Snapshot) error
}

// DashboardService recomputes aggregates and publishes snapshots.
type DashboardService interface {
	// OnLedgerChange rebuilds the full snapshot and publishes it. Called
	// asynchronously after each successful scan; errors are logged by the
	// caller and never reach the scan response.
	OnLedgerChange(ctx context.Context, event LedgerEvent) error
	// Build assembles a snapshot on demand for the given inclusive range.
	// Empty bounds default to today (stats/rows) and the trailing week (chart).
	Build(ctx context.Context, startDate, endDate string) (*Snapshot, error)
	// DayDetail returns the per-user rows for one date.
	DayDetail(ctx context.Context, date string) ([]AttendanceRow, error)
}
