package service

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/rs/zerolog"

	"github.com/silab/attendance-system/internal/core/domain"
	"github.com/silab/attendance-system/internal/core/ports"
)

type scheduleService struct {
	repo ports.ScheduleRepository
	log  zerolog.Logger
}

// NewScheduleService returns the duty schedule reconciliation service.
func NewScheduleService(repo ports.ScheduleRepository, log zerolog.Logger) ports.ScheduleService {
	return &scheduleService{repo: repo, log: log}
}

func (s *scheduleService) List(ctx context.Context) ([]domain.User, error) {
	return s.repo.ListAssignments(ctx)
}

// ApplyBatch treats the batch as the final desired day per user, not an
// ordered sequence of moves. Duplicate entries for one user with the same
// day collapse; with different days the batch is malformed and rejected
// before any write. Application is all-or-nothing.
func (s *scheduleService) ApplyBatch(ctx context.Context, updates []ports.ScheduleUpdate) (int, error) {
	if len(updates) == 0 {
		return 0, fmt.Errorf("apply batch: empty batch: %w", domain.ErrBatchConflict)
	}

	seen := make(map[string]*domain.PiketDay, len(updates))
	deduped := make([]ports.ScheduleUpdate, 0, len(updates))
	for _, u := range updates {
		if u.NewPiketDay != nil && !u.NewPiketDay.IsValid() {
			return 0, fmt.Errorf("apply batch: user %s: %w", u.UserID, domain.ErrInvalidPiketDay)
		}
		if prev, dup := seen[u.UserID]; dup {
			if !sameDay(prev, u.NewPiketDay) {
				return 0, fmt.Errorf("apply batch: user %s: %w", u.UserID, domain.ErrBatchConflict)
			}
			continue
		}
		seen[u.UserID] = u.NewPiketDay
		deduped = append(deduped, u)
	}

	if err := s.repo.ApplyBatch(ctx, deduped); err != nil {
		return 0, fmt.Errorf("apply batch: %w", err)
	}

	s.log.Info().Int("updated", len(deduped)).Msg("schedule batch applied")
	return len(deduped), nil
}

func (s *scheduleService) Swap(ctx context.Context, userID string, newDay *domain.PiketDay) (*domain.User, error) {
	if newDay != nil && !newDay.IsValid() {
		return nil, fmt.Errorf("swap schedule: %w", domain.ErrInvalidPiketDay)
	}
	user, err := s.repo.SetDay(ctx, userID, newDay)
	if err != nil {
		return nil, fmt.Errorf("swap schedule: %w", err)
	}
	s.log.Info().Str("user_id", userID).Msg("schedule swapped")
	return user, nil
}

// Generate deals days round-robin over a shuffled list of active aslabs, so
// repeated runs produce different but always balanced schedules. The reset
// and the new assignments land in one transaction.
func (s *scheduleService) Generate(ctx context.Context) (int, error) {
	aslabs, err := s.repo.ListAssignments(ctx)
	if err != nil {
		return 0, fmt.Errorf("generate schedule: %w", err)
	}

	rand.Shuffle(len(aslabs), func(i, j int) {
		aslabs[i], aslabs[j] = aslabs[j], aslabs[i]
	})

	updates := make([]ports.ScheduleUpdate, 0, len(aslabs))
	for i := range aslabs {
		day := domain.PiketDays[i%len(domain.PiketDays)]
		updates = append(updates, ports.ScheduleUpdate{UserID: aslabs[i].ID, NewPiketDay: &day})
	}

	if err := s.repo.Regenerate(ctx, updates); err != nil {
		return 0, fmt.Errorf("generate schedule: %w", err)
	}

	s.log.Info().Int("assigned", len(updates)).Msg("schedule regenerated")
	return len(updates), nil
}

func (s *scheduleService) Reset(ctx context.Context) error {
	if err := s.repo.ResetAll(ctx); err != nil {
		return fmt.Errorf("reset schedule: %w", err)
	}
	s.log.Info().Msg("schedule reset")
	return nil
}

func sameDay(a, b *domain.PiketDay) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
