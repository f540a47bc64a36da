package domain

import (
	"testing"
	"time"
)

func TestDeriveStatus(t *testing.T) {
	now := time.Now()

	cases := []struct {
		name string
		rec  *AttendanceRecord
		want AttendanceStatus
	}{
		{"nil record", nil, StatusAbsent},
		{"empty record", &AttendanceRecord{}, StatusAbsent},
		{"check-in only", &AttendanceRecord{CheckIn: &now}, StatusPartial},
		{"both set", &AttendanceRecord{CheckIn: &now, CheckOut: &now}, StatusPresent},
	}

	for _, tc := range cases {
		if got := DeriveStatus(tc.rec); got != tc.want {
			t.Errorf("%s: got %s, want %s", tc.name, got, tc.want)
		}
	}
}
