package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/silab/attendance-system/internal/core/domain"
	"github.com/silab/attendance-system/internal/core/ports"
)

type stubScanService struct {
	ingestFn func(ctx context.Context, in ports.ScanInput) (*ports.ScanResult, error)
	statusFn func(ctx context.Context, rfidCode string) (*ports.ScanStatus, error)
}

func (s *stubScanService) Ingest(ctx context.Context, in ports.ScanInput) (*ports.ScanResult, error) {
	return s.ingestFn(ctx, in)
}

func (s *stubScanService) Status(ctx context.Context, rfidCode string) (*ports.ScanStatus, error) {
	return s.statusFn(ctx, rfidCode)
}

func newScanContext(t *testing.T, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(http.MethodPost, "/v1/scan", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestScanHandler_Scan_Success(t *testing.T) {
	at := time.Date(2026, 3, 2, 8, 15, 30, 0, time.Local)
	stub := &stubScanService{
		ingestFn: func(_ context.Context, in ports.ScanInput) (*ports.ScanResult, error) {
			if in.RFIDCode != "CARD001" {
				t.Fatalf("unexpected code: %s", in.RFIDCode)
			}
			return &ports.ScanResult{
				Action:    domain.ActionCheckIn,
				Message:   "Selamat datang, Budi! Check-in berhasil.",
				User:      ports.ScanUser{Name: "Budi", Prodi: "Informatika", Semester: 5},
				Timestamp: at,
				Date:      "2026-03-02",
			}, nil
		},
	}
	c, rec := newScanContext(t, `{"rfid_code":"CARD001"}`)

	if err := NewScanHandler(stub).Scan(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["success"] != true {
		t.Errorf("expected success envelope")
	}
	if resp["message"] != "Selamat datang, Budi! Check-in berhasil." {
		t.Errorf("unexpected message: %v", resp["message"])
	}

	data := resp["data"].(map[string]any)
	user := data["user"].(map[string]any)
	if user["name"] != "Budi" || user["prodi"] != "Informatika" {
		t.Errorf("unexpected user payload: %+v", user)
	}
	att := data["attendance"].(map[string]any)
	if att["type"] != "check_in" {
		t.Errorf("unexpected attendance type: %v", att["type"])
	}
	if att["timestamp"] != "08:15:30" {
		t.Errorf("timestamp not formatted as clock time: %v", att["timestamp"])
	}
	if att["date"] != "02/03/2026" {
		t.Errorf("date not formatted for display: %v", att["date"])
	}
}

func TestScanHandler_Scan_MissingCode(t *testing.T) {
	stub := &stubScanService{
		ingestFn: func(context.Context, ports.ScanInput) (*ports.ScanResult, error) {
			t.Fatalf("service must not be called on invalid payload")
			return nil, nil
		},
	}
	c, _ := newScanContext(t, `{}`)

	err := NewScanHandler(stub).Scan(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got: %v", err)
	}
}

func TestScanHandler_Scan_DomainErrorPassedThrough(t *testing.T) {
	stub := &stubScanService{
		ingestFn: func(context.Context, ports.ScanInput) (*ports.ScanResult, error) {
			return nil, domain.ErrUnknownCard
		},
	}
	c, _ := newScanContext(t, `{"rfid_code":"NOPE"}`)

	err := NewScanHandler(stub).Scan(c)
	if err != domain.ErrUnknownCard {
		t.Fatalf("domain errors must reach the error handler unwrapped, got: %v", err)
	}
}

func TestScanHandler_Status(t *testing.T) {
	checkIn := time.Date(2026, 3, 2, 8, 0, 0, 0, time.Local)
	stub := &stubScanService{
		statusFn: func(_ context.Context, code string) (*ports.ScanStatus, error) {
			return &ports.ScanStatus{
				User: ports.ScanUser{ID: "user_1", Name: "Budi"},
				Record: &domain.AttendanceRecord{
					UserID:  "user_1",
					Date:    "2026-03-02",
					CheckIn: &checkIn,
					Status:  domain.StatusPartial,
				},
			}, nil
		},
	}
	c, rec := newScanContext(t, `{"rfid_code":"CARD001"}`)

	if err := NewScanHandler(stub).Status(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	data := resp["data"].(map[string]any)
	record := data["record"].(map[string]any)
	if record["status"] != "partial" {
		t.Errorf("unexpected status: %v", record["status"])
	}
}
