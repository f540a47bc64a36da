package domain

import "errors"

// ScannerMode is the single global operating intent of the RFID scanner.
// It is operator-controlled and read by every scan ingestion attempt.
type ScannerMode string

const (
	ModeRegistration ScannerMode = "registration"
	ModeCheckIn      ScannerMode = "check_in"
	ModeCheckOut     ScannerMode = "check_out"
)

// DefaultMode is the mode assumed when the register has never been written
// or its entry expired.
const DefaultMode = ModeRegistration

var ErrInvalidMode = errors.New("invalid scanner mode")

// ErrWrongMode is returned when an attendance scan arrives while the scanner
// is in registration mode; registration taps go through the bind flow instead.
var ErrWrongMode = errors.New("scanner is in registration mode")

// IsValid reports whether m is one of the three recognised modes.
func (m ScannerMode) IsValid() bool {
	switch m {
	case ModeRegistration, ModeCheckIn, ModeCheckOut:
		return true
	}
	return false
}
