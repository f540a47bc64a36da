package domain

import (
	"errors"
	"time"
)

const (
	RoleAdmin = "admin"
	RoleAslab = "aslab"
)

var ErrUserNotFound = errors.New("user not found")
var ErrUserExists = errors.New("user already exists")
var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrForbidden = errors.New("access forbidden")

// ErrUnknownCard is returned when a scanned code is not bound to any active
// aslab, regardless of the current scanner mode.
var ErrUnknownCard = errors.New("rfid code not registered")

// ErrCardAlreadyBound is returned when a registration attempt targets a code
// that is already bound to another user.
var ErrCardAlreadyBound = errors.New("rfid code already registered")

// User models both tracked aslabs and operator accounts. Aslab profile fields
// (Prodi, Semester, RFIDCode, PiketDay) are empty for admin users.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email,omitempty"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	Prodi        string    `json:"prodi,omitempty"`
	Semester     int       `json:"semester,omitempty"`
	RFIDCode     string    `json:"rfid_code,omitempty"`
	PiketDay     *PiketDay `json:"piket_day"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
