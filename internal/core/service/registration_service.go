package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/silab/attendance-system/internal/core/domain"
	"github.com/silab/attendance-system/internal/core/ports"
)

type registrationService struct {
	users    ports.UserRepository
	lastScan ports.LastScanStore
	log      zerolog.Logger
}

// NewRegistrationService returns the explicit card bind flow. Taps observed
// while the scanner is in registration mode are routed here, never through
// the attendance ingestion pipeline.
func NewRegistrationService(users ports.UserRepository, lastScan ports.LastScanStore, log zerolog.Logger) ports.RegistrationService {
	return &registrationService{users: users, lastScan: lastScan, log: log}
}

func (s *registrationService) Bind(ctx context.Context, rfidCode, userID string) (*domain.User, error) {
	code := normalizeCode(rfidCode)

	holder, err := s.users.FindByRFID(ctx, code)
	if err == nil {
		return nil, fmt.Errorf("bind card to %s: held by %s: %w", userID, holder.Name, domain.ErrCardAlreadyBound)
	}
	if !errors.Is(err, domain.ErrUnknownCard) {
		return nil, fmt.Errorf("bind card: %w", err)
	}

	user, err := s.users.BindRFID(ctx, userID, code)
	if err != nil {
		return nil, fmt.Errorf("bind card: %w", err)
	}

	s.log.Info().Str("user_id", user.ID).Str("rfid_code", code).Msg("card registered")
	return user, nil
}

// Probe records the tap in the last-scan bridge and reports availability.
// The bridge write is best-effort; a probe response is still useful without it.
func (s *registrationService) Probe(ctx context.Context, rfidCode string) (*ports.CardProbe, error) {
	code := normalizeCode(rfidCode)

	if err := s.lastScan.Remember(ctx, code); err != nil {
		s.log.Warn().Err(err).Str("rfid_code", code).Msg("failed to record last scan")
	}

	holder, err := s.users.FindByRFID(ctx, code)
	if err != nil {
		if errors.Is(err, domain.ErrUnknownCard) {
			return &ports.CardProbe{RFIDCode: code}, nil
		}
		return nil, fmt.Errorf("probe card: %w", err)
	}

	return &ports.CardProbe{
		RFIDCode:     code,
		IsRegistered: true,
		RegisteredTo: holder.Name,
	}, nil
}

func (s *registrationService) LastScan(ctx context.Context) (*ports.LastScan, error) {
	return s.lastScan.Take(ctx)
}

func (s *registrationService) Users(ctx context.Context) ([]domain.User, error) {
	return s.users.ListAslabs(ctx)
}
