package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/silab/attendance-system/internal/api/metrics"
	"github.com/silab/attendance-system/internal/core/domain"
	"github.com/silab/attendance-system/internal/core/ports"
)

// DebounceStore abstracts the scan idempotency store (Redis). A successful
// result is remembered for the debounce window; a second observation of the
// same code within that window replays the stored result without touching
// the ledger.
type DebounceStore interface {
	Lookup(ctx context.Context, rfidCode string) (*ports.ScanResult, error)
	Remember(ctx context.Context, rfidCode string, result *ports.ScanResult) error
}

// LedgerNotifier hands a committed mutation to the broadcast path.
// Implementations must not block the scan response on delivery.
type LedgerNotifier interface {
	Notify(event ports.LedgerEvent)
}

type scanService struct {
	users    ports.UserRepository
	ledger   ports.AttendanceRepository
	modes    ports.ModeStore
	debounce DebounceStore
	notifier LedgerNotifier
	locks    keyedMutex
	log      zerolog.Logger
}

// NewScanService returns the scan ingestion pipeline.
func NewScanService(
	users ports.UserRepository,
	ledger ports.AttendanceRepository,
	modes ports.ModeStore,
	debounce DebounceStore,
	notifier LedgerNotifier,
	log zerolog.Logger,
) ports.ScanService {
	return &scanService{
		users:    users,
		ledger:   ledger,
		modes:    modes,
		debounce: debounce,
		notifier: notifier,
		log:      log,
	}
}

// Ingest turns one observed tap into an idempotent ledger transition.
func (s *scanService) Ingest(ctx context.Context, in ports.ScanInput) (*ports.ScanResult, error) {
	code := normalizeCode(in.RFIDCode)

	// 1. Debounce: the same physical tap may be observed by more than one
	// poller. Replay the stored result instead of re-mutating the ledger.
	prior, err := s.debounce.Lookup(ctx, code)
	if err != nil {
		s.log.Warn().Err(err).Str("rfid_code", code).Msg("debounce lookup failed, processing anyway")
	} else if prior != nil {
		metrics.ScanDedupTotal.WithLabelValues("hit").Inc()
		s.log.Debug().Str("rfid_code", code).Msg("duplicate scan replayed")
		replay := *prior
		replay.Replayed = true
		return &replay, nil
	}
	metrics.ScanDedupTotal.WithLabelValues("miss").Inc()

	// 2. Resolve the card; unregistered codes are terminal in every mode.
	user, err := s.users.FindByRFID(ctx, code)
	if err != nil {
		if errors.Is(err, domain.ErrUnknownCard) {
			metrics.ScanErrorsTotal.WithLabelValues("unknown_card").Inc()
		}
		return nil, fmt.Errorf("ingest scan: %w", err)
	}

	// 3. Mode gate. Registration taps belong to the bind flow.
	mode, err := s.modes.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("ingest scan: read mode: %w", err)
	}
	if mode == domain.ModeRegistration {
		metrics.ScanErrorsTotal.WithLabelValues("wrong_mode").Inc()
		return nil, domain.ErrWrongMode
	}

	// 4. Serialize the read-modify-write per user so two near-simultaneous
	// scans cannot both pass the "not yet set" check.
	mu := s.locks.Lock(user.ID)
	defer mu.Unlock()

	date := in.ObservedAt.Format(domain.DateLayout)
	result, err := s.transition(ctx, user, mode, in, date)
	if err != nil {
		metrics.ScanErrorsTotal.WithLabelValues(errReason(err)).Inc()
		return nil, err
	}
	metrics.ScansProcessedTotal.WithLabelValues(string(result.Action)).Inc()

	if err := s.debounce.Remember(ctx, code, result); err != nil {
		s.log.Warn().Err(err).Str("rfid_code", code).Msg("failed to set debounce key")
	}

	// 5. Broadcast is fire-and-forget; the ledger write is the source of
	// truth and is never rolled back on delivery problems.
	s.notifier.Notify(ports.LedgerEvent{
		UserID:    user.ID,
		Action:    result.Action,
		Timestamp: result.Timestamp,
		Date:      date,
		User:      result.User,
	})

	s.log.Info().
		Str("user_id", user.ID).
		Str("action", string(result.Action)).
		Str("date", date).
		Msg("scan processed")

	return result, nil
}

func (s *scanService) transition(ctx context.Context, user *domain.User, mode domain.ScannerMode, in ports.ScanInput, date string) (*ports.ScanResult, error) {
	rec, err := s.ledger.FindByUserDate(ctx, user.ID, date)
	if err != nil && !errors.Is(err, domain.ErrRecordNotFound) {
		return nil, fmt.Errorf("ingest scan: read ledger: %w", err)
	}

	switch mode {
	case domain.ModeCheckIn:
		if rec != nil && rec.CheckIn != nil {
			return nil, domain.ErrAlreadyCheckedIn
		}
		at := in.ObservedAt
		fresh := &domain.AttendanceRecord{
			UserID:        user.ID,
			Date:          date,
			CheckIn:       &at,
			CheckInMethod: domain.MethodRFID,
		}
		fresh.Status = domain.DeriveStatus(fresh)
		if err := s.ledger.CreateCheckIn(ctx, fresh); err != nil {
			return nil, fmt.Errorf("ingest scan: %w", err)
		}
		return s.result(user, domain.ActionCheckIn, in, date,
			fmt.Sprintf("Selamat datang, %s! Check-in berhasil.", user.Name)), nil

	case domain.ModeCheckOut:
		if rec == nil || rec.CheckIn == nil {
			return nil, domain.ErrNotCheckedInYet
		}
		if rec.CheckOut != nil {
			return nil, domain.ErrAlreadyCheckedOut
		}
		if err := s.ledger.SetCheckOut(ctx, user.ID, date, in.ObservedAt, domain.MethodRFID); err != nil {
			return nil, fmt.Errorf("ingest scan: %w", err)
		}
		return s.result(user, domain.ActionCheckOut, in, date,
			fmt.Sprintf("Sampai jumpa, %s! Check-out berhasil.", user.Name)), nil
	}

	return nil, domain.ErrInvalidMode
}

func (s *scanService) result(user *domain.User, action domain.ScanAction, in ports.ScanInput, date, msg string) *ports.ScanResult {
	return &ports.ScanResult{
		Action:    action,
		Message:   msg,
		User:      toScanUser(user),
		Timestamp: in.ObservedAt,
		Date:      date,
	}
}

// Status returns today's record for a card without mutating anything.
func (s *scanService) Status(ctx context.Context, rfidCode string) (*ports.ScanStatus, error) {
	user, err := s.users.FindByRFID(ctx, normalizeCode(rfidCode))
	if err != nil {
		return nil, fmt.Errorf("scan status: %w", err)
	}

	date := time.Now().Format(domain.DateLayout)
	rec, err := s.ledger.FindByUserDate(ctx, user.ID, date)
	if err != nil && !errors.Is(err, domain.ErrRecordNotFound) {
		return nil, fmt.Errorf("scan status: %w", err)
	}

	return &ports.ScanStatus{User: toScanUser(user), Record: rec}, nil
}

func toScanUser(u *domain.User) ports.ScanUser {
	return ports.ScanUser{ID: u.ID, Name: u.Name, Prodi: u.Prodi, Semester: u.Semester}
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func errReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrAlreadyCheckedIn):
		return "already_checked_in"
	case errors.Is(err, domain.ErrAlreadyCheckedOut):
		return "already_checked_out"
	case errors.Is(err, domain.ErrNotCheckedInYet):
		return "not_checked_in_yet"
	default:
		return "internal"
	}
}
