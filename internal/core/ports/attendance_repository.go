package ports

import (
	"context"
	"time"

	"github.com/silab/attendance-system/internal/core/domain"
)

// ListAttendanceFilter carries the query parameters for the paginated
// attendance log listing.
type ListAttendanceFilter struct {
	Date  string // optional: exact date (YYYY-MM-DD)
	Page  int    // 1-based
	Limit int    // rows per page (capped by the service)
}

// AttendanceRow is an attendance record joined with the owning user's
// profile, as rendered by the dashboard and report tables.
type AttendanceRow struct {
	User   ScanUser `json:"user"`
	Date   string   `json:"date"`
	// Times are formatted HH:MM:SS; nil when the half-day has not happened.
	CheckIn  *string                 `json:"check_in"`
	CheckOut *string                 `json:"check_out"`
	Status   domain.AttendanceStatus `json:"status"`
}

// ActiveAslab is one entry of the most-attendance-days ranking.
type ActiveAslab struct {
	Name            string `json:"name"`
	Prodi           string `json:"prodi"`
	Semester        int    `json:"semester"`
	TotalAttendance int64  `json:"total_attendance"`
}

// ChartPoint is one fixed bucket of the attendance time series.
type ChartPoint struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

// AttendanceRepository is the durable per-user/per-day ledger plus the
// aggregate queries the dashboard recomputes after every mutation.
type AttendanceRepository interface {
	// FindByUserDate returns the record for (userID, date) or
	// domain.ErrRecordNotFound.
	FindByUserDate(ctx context.Context, userID, date string) (*domain.AttendanceRecord, error)
	// CreateCheckIn inserts the first record of the day with check_in set.
	// A duplicate (user_id, date) insert returns domain.ErrAlreadyCheckedIn.
	CreateCheckIn(ctx context.Context, rec *domain.AttendanceRecord) error
	// SetCheckOut completes the record. The update filter requires check_in
	// set and check_out unset; zero matched documents returns
	// domain.ErrAlreadyCheckedOut.
	SetCheckOut(ctx context.Context, userID, date string, at time.Time, method string) error

	// ListRange returns a page of rows joined with user info and the total count.
	ListRange(ctx context.Context, filter ListAttendanceFilter) ([]AttendanceRow, int64, error)
	// ListWithUsers returns all rows for the inclusive date range, newest first.
	ListWithUsers(ctx context.Context, startDate, endDate string) ([]AttendanceRow, error)
	// CountByAction counts check-ins or check-outs in the inclusive range.
	CountByAction(ctx context.Context, action domain.ScanAction, startDate, endDate string) (int64, error)
	// MostActive ranks users by check-in days within the range.
	MostActive(ctx context.Context, startDate, endDate string, limit int) ([]ActiveAslab, error)
	// DailyCounts returns check-in counts grouped by date within the range.
	DailyCounts(ctx context.Context, startDate, endDate string) (map[string]int64, error)
}
