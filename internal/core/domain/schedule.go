package domain

import "errors"

// PiketDay is a weekday an aslab is assigned duty on. A user has at most one
// assigned day at any time; a nil day means unassigned.
type PiketDay string

const (
	Senin  PiketDay = "senin"
	Selasa PiketDay = "selasa"
	Rabu   PiketDay = "rabu"
	Kamis  PiketDay = "kamis"
	Jumat  PiketDay = "jumat"
)

// PiketDays lists the five assignable weekdays in calendar order.
var PiketDays = []PiketDay{Senin, Selasa, Rabu, Kamis, Jumat}

var ErrInvalidPiketDay = errors.New("invalid piket day")

// ErrBatchConflict is returned when a schedule batch carries two entries for
// the same user with different target days; such a batch is malformed and is
// rejected before any write.
var ErrBatchConflict = errors.New("conflicting entries for one user in batch")

// IsValid reports whether d is one of the five assignable days.
func (d PiketDay) IsValid() bool {
	for _, v := range PiketDays {
		if v == d {
			return true
		}
	}
	return false
}
