package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/silab/attendance-system/internal/core/domain"
	"github.com/silab/attendance-system/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Stubs
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	mu      sync.Mutex
	byID    map[string]*domain.User
	byEmail map[string]*domain.User
	byRFID  map[string]*domain.User

	createErr error
	bindErr   error
	aslabs    []domain.User
	active    int64
	bound     map[string]string // userID -> code
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{
		byID:    make(map[string]*domain.User),
		byEmail: make(map[string]*domain.User),
		byRFID:  make(map[string]*domain.User),
		bound:   make(map[string]string),
	}
}

func (r *stubUserRepo) add(u *domain.User) {
	r.byID[u.ID] = u
	if u.Email != "" {
		r.byEmail[u.Email] = u
	}
	if u.RFIDCode != "" {
		r.byRFID[u.RFIDCode] = u
	}
}

func (r *stubUserRepo) Create(_ context.Context, u *domain.User) (*domain.User, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	if _, ok := r.byEmail[u.Email]; ok {
		return nil, domain.ErrUserExists
	}
	u.ID = "user_" + u.Email
	r.add(u)
	return u, nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	u, ok := r.byEmail[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return u, nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return u, nil
}

func (r *stubUserRepo) FindByRFID(_ context.Context, code string) (*domain.User, error) {
	u, ok := r.byRFID[code]
	if !ok {
		return nil, domain.ErrUnknownCard
	}
	return u, nil
}

func (r *stubUserRepo) BindRFID(_ context.Context, userID, code string) (*domain.User, error) {
	if r.bindErr != nil {
		return nil, r.bindErr
	}
	u, ok := r.byID[userID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	u.RFIDCode = code
	r.byRFID[code] = u
	r.bound[userID] = code
	return u, nil
}

func (r *stubUserRepo) ListAslabs(_ context.Context) ([]domain.User, error) {
	return r.aslabs, nil
}

func (r *stubUserRepo) CountActiveAslabs(_ context.Context) (int64, error) {
	return r.active, nil
}

type stubLedger struct {
	mu      sync.Mutex
	records map[string]*domain.AttendanceRecord // userID|date

	findErr   error
	createErr error
	setErr    error

	created   []*domain.AttendanceRecord
	checkouts []string // userID|date

	rows       []ports.AttendanceRow
	checkins   int64
	checkedOut int64
	ranking    []ports.ActiveAslab
	daily      map[string]int64
}

func newStubLedger() *stubLedger {
	return &stubLedger{
		records: make(map[string]*domain.AttendanceRecord),
		daily:   make(map[string]int64),
	}
}

func (l *stubLedger) key(userID, date string) string { return userID + "|" + date }

func (l *stubLedger) FindByUserDate(_ context.Context, userID, date string) (*domain.AttendanceRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.findErr != nil {
		return nil, l.findErr
	}
	rec, ok := l.records[l.key(userID, date)]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}
	cp := *rec
	return &cp, nil
}

func (l *stubLedger) CreateCheckIn(_ context.Context, rec *domain.AttendanceRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.createErr != nil {
		return l.createErr
	}
	k := l.key(rec.UserID, rec.Date)
	if _, ok := l.records[k]; ok {
		return domain.ErrAlreadyCheckedIn
	}
	l.records[k] = rec
	l.created = append(l.created, rec)
	return nil
}

func (l *stubLedger) SetCheckOut(_ context.Context, userID, date string, at time.Time, method string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.setErr != nil {
		return l.setErr
	}
	rec, ok := l.records[l.key(userID, date)]
	if !ok || rec.CheckIn == nil || rec.CheckOut != nil {
		return domain.ErrAlreadyCheckedOut
	}
	rec.CheckOut = &at
	rec.CheckOutMethod = method
	rec.Status = domain.DeriveStatus(rec)
	l.checkouts = append(l.checkouts, l.key(userID, date))
	return nil
}

func (l *stubLedger) ListRange(_ context.Context, _ ports.ListAttendanceFilter) ([]ports.AttendanceRow, int64, error) {
	return l.rows, int64(len(l.rows)), nil
}

func (l *stubLedger) ListWithUsers(_ context.Context, _, _ string) ([]ports.AttendanceRow, error) {
	return l.rows, nil
}

func (l *stubLedger) CountByAction(_ context.Context, action domain.ScanAction, _, _ string) (int64, error) {
	if action == domain.ActionCheckIn {
		return l.checkins, nil
	}
	return l.checkedOut, nil
}

func (l *stubLedger) MostActive(_ context.Context, _, _ string, _ int) ([]ports.ActiveAslab, error) {
	return l.ranking, nil
}

func (l *stubLedger) DailyCounts(_ context.Context, _, _ string) (map[string]int64, error) {
	return l.daily, nil
}

type stubModeStore struct {
	mode   domain.ScannerMode
	getErr error
	setErr error
	set    []domain.ScannerMode
}

func (m *stubModeStore) Get(_ context.Context) (domain.ScannerMode, error) {
	if m.getErr != nil {
		return "", m.getErr
	}
	return m.mode, nil
}

func (m *stubModeStore) Set(_ context.Context, mode domain.ScannerMode) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.mode = mode
	m.set = append(m.set, mode)
	return nil
}

type stubDebounce struct {
	mu        sync.Mutex
	stored    map[string]*ports.ScanResult
	lookupErr error
	storeErr  error
}

func newStubDebounce() *stubDebounce {
	return &stubDebounce{stored: make(map[string]*ports.ScanResult)}
}

func (d *stubDebounce) Lookup(_ context.Context, code string) (*ports.ScanResult, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.lookupErr != nil {
		return nil, d.lookupErr
	}
	return d.stored[code], nil
}

func (d *stubDebounce) Remember(_ context.Context, code string, res *ports.ScanResult) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.storeErr != nil {
		return d.storeErr
	}
	d.stored[code] = res
	return nil
}

type stubNotifier struct {
	mu     sync.Mutex
	events []ports.LedgerEvent
}

func (n *stubNotifier) Notify(event ports.LedgerEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func aslabUser(id, name, code string) *domain.User {
	return &domain.User{
		ID:       id,
		Name:     name,
		Role:     domain.RoleAslab,
		Prodi:    "Informatika",
		Semester: 5,
		RFIDCode: code,
		IsActive: true,
	}
}

type scanFixture struct {
	users    *stubUserRepo
	ledger   *stubLedger
	modes    *stubModeStore
	debounce *stubDebounce
	notifier *stubNotifier
	svc      ports.ScanService
}

func newScanFixture(mode domain.ScannerMode) *scanFixture {
	f := &scanFixture{
		users:    newStubUserRepo(),
		ledger:   newStubLedger(),
		modes:    &stubModeStore{mode: mode},
		debounce: newStubDebounce(),
		notifier: &stubNotifier{},
	}
	f.users.add(aslabUser("user_1", "Budi", "CARD001"))
	f.svc = NewScanService(f.users, f.ledger, f.modes, f.debounce, f.notifier, zerolog.Nop())
	return f
}

func scanAt(t *testing.T, svc ports.ScanService, code string, at time.Time) (*ports.ScanResult, error) {
	t.Helper()
	return svc.Ingest(context.Background(), ports.ScanInput{RFIDCode: code, ObservedAt: at})
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestScanService_CheckIn_HappyPath(t *testing.T) {
	f := newScanFixture(domain.ModeCheckIn)
	at := time.Date(2026, 3, 2, 8, 15, 0, 0, time.Local)

	res, err := scanAt(t, f.svc, "CARD001", at)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if res.Action != domain.ActionCheckIn {
		t.Errorf("expected check_in action, got %s", res.Action)
	}
	if res.Message != "Selamat datang, Budi! Check-in berhasil." {
		t.Errorf("unexpected message: %q", res.Message)
	}
	if res.Date != "2026-03-02" {
		t.Errorf("unexpected date: %q", res.Date)
	}
	if len(f.ledger.created) != 1 {
		t.Fatalf("expected one ledger insert, got %d", len(f.ledger.created))
	}
	if f.ledger.created[0].Status != domain.StatusPartial {
		t.Errorf("half-day record should be partial, got %s", f.ledger.created[0].Status)
	}
	if len(f.notifier.events) != 1 {
		t.Errorf("expected one broadcast event, got %d", len(f.notifier.events))
	}
}

func TestScanService_CheckOut_HappyPath(t *testing.T) {
	f := newScanFixture(domain.ModeCheckIn)
	morning := time.Date(2026, 3, 2, 8, 0, 0, 0, time.Local)
	if _, err := scanAt(t, f.svc, "CARD001", morning); err != nil {
		t.Fatalf("check-in failed: %v", err)
	}

	f.modes.mode = domain.ModeCheckOut
	f.debounce.stored = map[string]*ports.ScanResult{} // outside the window

	res, err := scanAt(t, f.svc, "CARD001", morning.Add(8*time.Hour))
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if res.Action != domain.ActionCheckOut {
		t.Errorf("expected check_out action, got %s", res.Action)
	}
	if res.Message != "Sampai jumpa, Budi! Check-out berhasil." {
		t.Errorf("unexpected message: %q", res.Message)
	}

	rec := f.ledger.records["user_1|2026-03-02"]
	if rec.CheckOut == nil {
		t.Fatalf("check_out not persisted")
	}
	if rec.Status != domain.StatusPresent {
		t.Errorf("completed day should be present, got %s", rec.Status)
	}
	if len(f.notifier.events) != 2 {
		t.Errorf("expected two broadcast events, got %d", len(f.notifier.events))
	}
}

func TestScanService_NormalizesCode(t *testing.T) {
	f := newScanFixture(domain.ModeCheckIn)

	res, err := scanAt(t, f.svc, "  card001 ", time.Now())
	if err != nil {
		t.Fatalf("expected normalized code to resolve, got: %v", err)
	}
	if res.User.Name != "Budi" {
		t.Errorf("resolved wrong user: %s", res.User.Name)
	}
}

func TestScanService_UnknownCard(t *testing.T) {
	f := newScanFixture(domain.ModeCheckIn)

	_, err := scanAt(t, f.svc, "NOPE", time.Now())
	if !errors.Is(err, domain.ErrUnknownCard) {
		t.Fatalf("expected ErrUnknownCard, got: %v", err)
	}
	if len(f.ledger.created) != 0 {
		t.Errorf("ledger must not be touched for unknown cards")
	}
	if len(f.notifier.events) != 0 {
		t.Errorf("no broadcast for rejected scans")
	}
}

func TestScanService_RegistrationModeRejected(t *testing.T) {
	f := newScanFixture(domain.ModeRegistration)

	_, err := scanAt(t, f.svc, "CARD001", time.Now())
	if !errors.Is(err, domain.ErrWrongMode) {
		t.Fatalf("expected ErrWrongMode, got: %v", err)
	}
	if len(f.ledger.created) != 0 {
		t.Errorf("registration taps must not reach the ledger")
	}
}

func TestScanService_DoubleCheckIn(t *testing.T) {
	f := newScanFixture(domain.ModeCheckIn)
	at := time.Date(2026, 3, 2, 8, 0, 0, 0, time.Local)
	if _, err := scanAt(t, f.svc, "CARD001", at); err != nil {
		t.Fatalf("first check-in failed: %v", err)
	}
	f.debounce.stored = map[string]*ports.ScanResult{}

	_, err := scanAt(t, f.svc, "CARD001", at.Add(time.Hour))
	if !errors.Is(err, domain.ErrAlreadyCheckedIn) {
		t.Fatalf("expected ErrAlreadyCheckedIn, got: %v", err)
	}
	if len(f.ledger.created) != 1 {
		t.Errorf("second check-in must not insert, got %d", len(f.ledger.created))
	}
}

func TestScanService_CheckOutBeforeCheckIn(t *testing.T) {
	f := newScanFixture(domain.ModeCheckOut)

	_, err := scanAt(t, f.svc, "CARD001", time.Now())
	if !errors.Is(err, domain.ErrNotCheckedInYet) {
		t.Fatalf("expected ErrNotCheckedInYet, got: %v", err)
	}
}

func TestScanService_DoubleCheckOut(t *testing.T) {
	f := newScanFixture(domain.ModeCheckIn)
	at := time.Date(2026, 3, 2, 8, 0, 0, 0, time.Local)
	if _, err := scanAt(t, f.svc, "CARD001", at); err != nil {
		t.Fatalf("check-in failed: %v", err)
	}

	f.modes.mode = domain.ModeCheckOut
	f.debounce.stored = map[string]*ports.ScanResult{}
	if _, err := scanAt(t, f.svc, "CARD001", at.Add(8*time.Hour)); err != nil {
		t.Fatalf("check-out failed: %v", err)
	}

	f.debounce.stored = map[string]*ports.ScanResult{}
	_, err := scanAt(t, f.svc, "CARD001", at.Add(9*time.Hour))
	if !errors.Is(err, domain.ErrAlreadyCheckedOut) {
		t.Fatalf("expected ErrAlreadyCheckedOut, got: %v", err)
	}
	if len(f.ledger.checkouts) != 1 {
		t.Errorf("second check-out must not write, got %d", len(f.ledger.checkouts))
	}
}

func TestScanService_DebounceReplaysWithoutMutation(t *testing.T) {
	f := newScanFixture(domain.ModeCheckIn)
	at := time.Date(2026, 3, 2, 8, 0, 0, 0, time.Local)
	if _, err := scanAt(t, f.svc, "CARD001", at); err != nil {
		t.Fatalf("first scan failed: %v", err)
	}

	// Same tap observed again inside the window.
	res, err := scanAt(t, f.svc, "CARD001", at.Add(time.Second))
	if err != nil {
		t.Fatalf("replay must not error: %v", err)
	}
	if !res.Replayed {
		t.Errorf("replay not flagged")
	}
	if res.Action != domain.ActionCheckIn {
		t.Errorf("replay must carry the original action, got %s", res.Action)
	}
	if len(f.ledger.created) != 1 {
		t.Errorf("replay must not touch the ledger, got %d inserts", len(f.ledger.created))
	}
	if len(f.notifier.events) != 1 {
		t.Errorf("replay must not rebroadcast, got %d events", len(f.notifier.events))
	}
}

func TestScanService_DebounceFailureProcessesAnyway(t *testing.T) {
	f := newScanFixture(domain.ModeCheckIn)
	f.debounce.lookupErr = errors.New("redis down")
	f.debounce.storeErr = errors.New("redis down")

	res, err := scanAt(t, f.svc, "CARD001", time.Now())
	if err != nil {
		t.Fatalf("scan must survive a debounce outage: %v", err)
	}
	if res.Action != domain.ActionCheckIn {
		t.Errorf("expected check_in, got %s", res.Action)
	}
	if len(f.ledger.created) != 1 {
		t.Errorf("ledger write expected despite debounce outage")
	}
}

func TestScanService_ErrorsAreNotCached(t *testing.T) {
	f := newScanFixture(domain.ModeRegistration)

	if _, err := scanAt(t, f.svc, "CARD001", time.Now()); !errors.Is(err, domain.ErrWrongMode) {
		t.Fatalf("expected ErrWrongMode, got: %v", err)
	}

	// The failed tap must not leave a replayable entry behind.
	f.modes.mode = domain.ModeCheckIn
	res, err := scanAt(t, f.svc, "CARD001", time.Now())
	if err != nil {
		t.Fatalf("expected fresh processing after mode fix: %v", err)
	}
	if res.Replayed {
		t.Errorf("rejected tap must not be replayed")
	}
}

func TestScanService_ConcurrentSameCard(t *testing.T) {
	f := newScanFixture(domain.ModeCheckIn)
	f.debounce.lookupErr = errors.New("unavailable") // force both through the pipeline
	at := time.Date(2026, 3, 2, 8, 0, 0, 0, time.Local)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = scanAt(t, f.svc, "CARD001", at)
		}(i)
	}
	wg.Wait()

	var ok, dup int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, domain.ErrAlreadyCheckedIn):
			dup++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok != 1 || dup != 1 {
		t.Fatalf("expected exactly one success and one duplicate, got ok=%d dup=%d", ok, dup)
	}
	if len(f.ledger.created) != 1 {
		t.Errorf("expected exactly one ledger insert, got %d", len(f.ledger.created))
	}
}

func TestScanService_Status(t *testing.T) {
	f := newScanFixture(domain.ModeCheckIn)
	if _, err := scanAt(t, f.svc, "CARD001", time.Now()); err != nil {
		t.Fatalf("check-in failed: %v", err)
	}

	st, err := f.svc.Status(context.Background(), "CARD001")
	if err != nil {
		t.Fatalf("status failed: %v", err)
	}
	if st.User.Name != "Budi" {
		t.Errorf("unexpected user: %s", st.User.Name)
	}
	if st.Record == nil || st.Record.CheckIn == nil {
		t.Errorf("expected today's record with check_in set")
	}
}

func TestScanService_Status_NoRecordYet(t *testing.T) {
	f := newScanFixture(domain.ModeCheckIn)

	st, err := f.svc.Status(context.Background(), "CARD001")
	if err != nil {
		t.Fatalf("status failed: %v", err)
	}
	if st.Record != nil {
		t.Errorf("expected nil record before the first scan of the day")
	}
}
