package ports

import (
	"context"

	"github.com/silab/attendance-system/internal/core/domain"
)

// ScheduleUpdate is one entry of a reconciliation batch: the final desired
// day for one user. A nil NewPiketDay unassigns the user.
type ScheduleUpdate struct {
	UserID      string
	NewPiketDay *domain.PiketDay
}

// ScheduleRepository owns the duty-day assignment state (the piket_day field
// on user documents, keyed by user id).
type ScheduleRepository interface {
	// ListAssignments returns active aslabs ordered by day then name.
	ListAssignments(ctx context.Context) ([]domain.User, error)
	// ApplyBatch applies every update in one transaction; on error nothing
	// is written.
	ApplyBatch(ctx context.Context, updates []ScheduleUpdate) error
	// SetDay reassigns a single user.
	SetDay(ctx context.Context, userID string, day *domain.PiketDay) (*domain.User, error)
	// Regenerate clears every aslab's day and applies the given assignments
	// in the same transaction.
	Regenerate(ctx context.Context, updates []ScheduleUpdate) error
	// ResetAll unassigns every aslab.
	ResetAll(ctx context.Context) error
}

// ScheduleService is the batch reconciliation surface plus the two
// non-batch mutation paths (single swap, regenerate/reset).
type ScheduleService interface {
	List(ctx context.Context) ([]domain.User, error)
	// ApplyBatch validates the batch (duplicate users with conflicting days
	// are rejected as domain.ErrBatchConflict before any write) and applies
	// it atomically. Returns the number of users updated.
	ApplyBatch(ctx context.Context, updates []ScheduleUpdate) (int, error)
	Swap(ctx context.Context, userID string, newDay *domain.PiketDay) (*domain.User, error)
	// Generate shuffles active aslabs and deals days round-robin.
	Generate(ctx context.Context) (int, error)
	Reset(ctx context.Context) error
}
