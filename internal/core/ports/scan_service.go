package ports

import (
	"context"
	"time"

	"github.com/silab/attendance-system/internal/core/domain"
)

// ScanInput is the DTO passed from the transport layer to the ingestion
// pipeline. ObservedAt is when the tap was observed, not when the request
// reached the server.
type ScanInput struct {
	RFIDCode   string
	ObservedAt time.Time
}

// ScanUser is the user summary echoed back on every scan response and carried
// inside broadcast snapshots.
type ScanUser struct {
	ID       string `json:"id,omitempty"`
	Name     string `json:"name"`
	Prodi    string `json:"prodi"`
	Semester int    `json:"semester"`
}

// ScanResult is the outcome of a successful ledger transition.
type ScanResult struct {
	Action    domain.ScanAction `json:"action"`
	Message   string            `json:"message"`
	User      ScanUser          `json:"user"`
	Timestamp time.Time         `json:"timestamp"`
	Date      string            `json:"date"`
	// Replayed marks an idempotent replay of a tap already ingested within
	// the debounce window; the ledger was not touched again.
	Replayed bool `json:"replayed,omitempty"`
}

// ScanStatus is the non-mutating today view for one card.
type ScanStatus struct {
	User   ScanUser                 `json:"user"`
	Record *domain.AttendanceRecord `json:"record"`
}

// ScanService is the scan ingestion pipeline.
type ScanService interface {
	Ingest(ctx context.Context, in ScanInput) (*ScanResult, error)
	Status(ctx context.Context, rfidCode string) (*ScanStatus, error)
}

// ModeStore is the single global scanner mode register. Reads may be stale
// up to the device polling interval; mode changes are rare operator actions.
type ModeStore interface {
	Get(ctx context.Context) (domain.ScannerMode, error)
	Set(ctx context.Context, mode domain.ScannerMode) error
}

// ModeService validates and applies operator mode toggles.
type ModeService interface {
	Current(ctx context.Context) (domain.ScannerMode, error)
	Switch(ctx context.Context, mode string) (domain.ScannerMode, error)
}
