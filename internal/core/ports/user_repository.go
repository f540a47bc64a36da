package ports

import (
	"context"

	"github.com/silab/attendance-system/internal/core/domain"
)

// UserRepository defines persistence operations on the users collection.
// It covers operator authentication lookups, the read-only card resolution
// used by the scan pipeline, and the registration bind flow.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	// FindByRFID resolves a scanned code to an active aslab.
	// Returns domain.ErrUnknownCard when no active user holds the code.
	FindByRFID(ctx context.Context, rfidCode string) (*domain.User, error)
	// BindRFID attaches a card code to the user. The caller has already
	// verified the code is unbound; the unique index is the second guard.
	BindRFID(ctx context.Context, userID, rfidCode string) (*domain.User, error)
	// ListAslabs returns all aslab accounts ordered by name.
	ListAslabs(ctx context.Context) ([]domain.User, error)
	CountActiveAslabs(ctx context.Context) (int64, error)
}
