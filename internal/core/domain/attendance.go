package domain

import (
	"errors"
	"time"
)

// DateLayout is the canonical layout for ledger dates (one record per user per date).
const DateLayout = "2006-01-02"

// MethodRFID marks a check-in/check-out produced by a physical card tap.
const MethodRFID = "rfid"

// AttendanceStatus is the derived per-day presence state of an aslab.
type AttendanceStatus string

const (
	StatusAbsent  AttendanceStatus = "absent"
	StatusPartial AttendanceStatus = "partial"
	StatusPresent AttendanceStatus = "present"
)

// ScanAction is the ledger transition a successful scan performed.
type ScanAction string

const (
	ActionCheckIn  ScanAction = "check_in"
	ActionCheckOut ScanAction = "check_out"
)

var ErrRecordNotFound = errors.New("attendance record not found")
var ErrAlreadyCheckedIn = errors.New("already checked in today")
var ErrAlreadyCheckedOut = errors.New("already checked out today")
var ErrNotCheckedInYet = errors.New("not checked in yet")

// AttendanceRecord is the single ledger entry for one aslab on one date.
// CheckIn is set at most once, CheckOut at most once and only after CheckIn.
type AttendanceRecord struct {
	ID             string           `json:"id" bson:"_id,omitempty"`
	UserID         string           `json:"user_id" bson:"user_id"`
	Date           string           `json:"date" bson:"date"`
	CheckIn        *time.Time       `json:"check_in" bson:"check_in,omitempty"`
	CheckInMethod  string           `json:"check_in_method,omitempty" bson:"check_in_method,omitempty"`
	CheckOut       *time.Time       `json:"check_out" bson:"check_out,omitempty"`
	CheckOutMethod string           `json:"check_out_method,omitempty" bson:"check_out_method,omitempty"`
	Status         AttendanceStatus `json:"status" bson:"status"`
}

// DeriveStatus computes the presence status from the two timestamps:
// both set = present, exactly one set = partial, neither = absent.
func DeriveStatus(r *AttendanceRecord) AttendanceStatus {
	if r == nil {
		return StatusAbsent
	}
	switch {
	case r.CheckIn != nil && r.CheckOut != nil:
		return StatusPresent
	case r.CheckIn != nil || r.CheckOut != nil:
		return StatusPartial
	default:
		return StatusAbsent
	}
}
