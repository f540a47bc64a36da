package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/silab/attendance-system/internal/core/domain"
	"github.com/silab/attendance-system/internal/core/ports"
)

type modeService struct {
	store ports.ModeStore
	log   zerolog.Logger
}

// NewModeService wraps the mode register with validation.
func NewModeService(store ports.ModeStore, log zerolog.Logger) ports.ModeService {
	return &modeService{store: store, log: log}
}

func (s *modeService) Current(ctx context.Context) (domain.ScannerMode, error) {
	mode, err := s.store.Get(ctx)
	if err != nil {
		return "", fmt.Errorf("get mode: %w", err)
	}
	return mode, nil
}

// Switch validates and persists an operator mode toggle. Unrecognised values
// are rejected before any write.
func (s *modeService) Switch(ctx context.Context, mode string) (domain.ScannerMode, error) {
	next := domain.ScannerMode(mode)
	if !next.IsValid() {
		return "", fmt.Errorf("set mode %q: %w", mode, domain.ErrInvalidMode)
	}
	if err := s.store.Set(ctx, next); err != nil {
		return "", fmt.Errorf("set mode: %w", err)
	}
	s.log.Info().Str("mode", mode).Msg("scanner mode switched")
	return next, nil
}
