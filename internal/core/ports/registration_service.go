package ports

import (
	"context"
	"errors"
	"time"

	"github.com/silab/attendance-system/internal/core/domain"
)

// ErrNoRecentScan is returned by the last-scan bridge when no tap has been
// observed within the bridge TTL (or the last one was already consumed).
var ErrNoRecentScan = errors.New("no recent scan")

// LastScan is the most recently observed raw code, polled by the
// registration UI to auto-fill the bind form. A convenience bridge only,
// never a source of truth.
type LastScan struct {
	RFIDCode  string    `json:"rfid_code"`
	Timestamp time.Time `json:"timestamp"`
}

// LastScanStore holds the bridge value. Take consumes it so each tap
// auto-fills at most one form.
type LastScanStore interface {
	Remember(ctx context.Context, rfidCode string) error
	Take(ctx context.Context) (*LastScan, error)
}

// CardProbe is the scan-for-registration outcome.
type CardProbe struct {
	RFIDCode     string `json:"rfid_code"`
	IsRegistered bool   `json:"is_registered"`
	RegisteredTo string `json:"registered_to,omitempty"`
}

// RegistrationService is the explicit admin bind flow. Registration-mode
// taps are handled here, never by the scan ingestion pipeline.
type RegistrationService interface {
	// Bind attaches a free code to a user; an already-bound code returns
	// domain.ErrCardAlreadyBound.
	Bind(ctx context.Context, rfidCode, userID string) (*domain.User, error)
	// Probe records the tap in the last-scan bridge and reports whether the
	// code is free.
	Probe(ctx context.Context, rfidCode string) (*CardProbe, error)
	LastScan(ctx context.Context) (*LastScan, error)
	// Users lists aslab accounts for the registration picker.
	Users(ctx context.Context) ([]domain.User, error)
}
