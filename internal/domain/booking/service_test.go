package booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/carebook/carebook/internal/domain/directory"
)

// passTx runs the unit of work directly; transaction scope is the pg
// repo's concern and is not exercised here.
func passTx(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

type mockSlotRepo struct {
	mu    sync.Mutex
	slots map[uuid.UUID]*Slot
}

func newMockSlotRepo() *mockSlotRepo {
	return &mockSlotRepo{slots: make(map[uuid.UUID]*Slot)}
}

func (m *mockSlotRepo) Create(_ context.Context, s *Slot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.slots {
		if existing.DoctorID == s.DoctorID && existing.SlotDate == s.SlotDate &&
			existing.StartTime == s.StartTime && existing.EndTime == s.EndTime {
			return ErrDuplicateSlot
		}
	}
	s.ID = uuid.New()
	s.CreatedAt = time.Now()
	s.UpdatedAt = s.CreatedAt
	m.slots[s.ID] = s
	return nil
}

func (m *mockSlotRepo) GetByID(_ context.Context, id uuid.UUID) (*Slot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.slots[id]
	if !ok {
		return nil, ErrSlotNotFound
	}
	copied := *s
	return &copied, nil
}

func (m *mockSlotRepo) ListFreeByDoctor(_ context.Context, doctorID uuid.UUID, limit, offset int) ([]*Slot, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*Slot
	for _, s := range m.slots {
		if s.DoctorID == doctorID && !s.IsBooked {
			copied := *s
			result = append(result, &copied)
		}
	}
	return result, len(result), nil
}

func (m *mockSlotRepo) Reserve(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.slots[id]
	if !ok {
		return ErrSlotNotFound
	}
	if s.IsBooked {
		return ErrSlotAlreadyBooked
	}
	s.IsBooked = true
	return nil
}

func (m *mockSlotRepo) Release(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.slots[id]
	if !ok {
		return ErrSlotNotFound
	}
	s.IsBooked = false
	return nil
}

type mockApptRepo struct {
	mu    sync.Mutex
	appts map[uuid.UUID]*Appointment
}

func newMockApptRepo() *mockApptRepo {
	return &mockApptRepo{appts: make(map[uuid.UUID]*Appointment)}
}

func (m *mockApptRepo) Create(_ context.Context, a *Appointment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a.ID = uuid.New()
	if a.Status == "" {
		a.Status = StatusBooked
	}
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt
	m.appts[a.ID] = a
	return nil
}

func (m *mockApptRepo) GetByID(_ context.Context, id uuid.UUID) (*Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.appts[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	copied := *a
	return &copied, nil
}

func (m *mockApptRepo) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.appts[id]; !ok {
		return ErrAppointmentNotFound
	}
	delete(m.appts, id)
	return nil
}

func (m *mockApptRepo) ListByUser(_ context.Context, userID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*Appointment
	for _, a := range m.appts {
		if a.UserID == userID {
			result = append(result, a)
		}
	}
	return result, len(result), nil
}

func (m *mockApptRepo) ListAll(_ context.Context, limit, offset int) ([]*Appointment, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*Appointment
	for _, a := range m.appts {
		result = append(result, a)
	}
	return result, len(result), nil
}

type mockDoctorDirectory struct {
	doctors map[uuid.UUID]*directory.Doctor
	err     error
}

func (m *mockDoctorDirectory) GetDoctor(_ context.Context, id uuid.UUID) (*directory.Doctor, error) {
	if m.err != nil {
		return nil, m.err
	}
	d, ok := m.doctors[id]
	if !ok {
		return nil, directory.ErrDoctorNotFound
	}
	return d, nil
}

type bookingFixture struct {
	svc      *Service
	slots    *mockSlotRepo
	appts    *mockApptRepo
	docs     *mockDoctorDirectory
	doctorID uuid.UUID
}

func newBookingFixture(t *testing.T) *bookingFixture {
	t.Helper()
	doctorID := uuid.New()
	docs := &mockDoctorDirectory{doctors: map[uuid.UUID]*directory.Doctor{
		doctorID: {ID: doctorID, Name: "Dr. A"},
	}}
	slots := newMockSlotRepo()
	appts := newMockApptRepo()
	return &bookingFixture{
		svc:      NewService(passTx, slots, appts, docs),
		slots:    slots,
		appts:    appts,
		docs:     docs,
		doctorID: doctorID,
	}
}

func (f *bookingFixture) mustCreateSlot(t *testing.T, date, start, end string) *Slot {
	t.Helper()
	slot, err := f.svc.CreateSlot(context.Background(), f.doctorID, date, start, end)
	if err != nil {
		t.Fatalf("create slot: %v", err)
	}
	return slot
}

func TestCreateSlot_Validation(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()

	cases := []struct {
		name             string
		date, start, end string
	}{
		{"bad date", "tomorrow", "09:00", "10:00"},
		{"bad start", "2026-10-01", "9am", "10:00"},
		{"bad end", "2026-10-01", "09:00", "noon"},
		{"start after end", "2026-10-01", "11:00", "10:00"},
		{"start equals end", "2026-10-01", "10:00", "10:00"},
	}
	for _, tc := range cases {
		if _, err := f.svc.CreateSlot(ctx, f.doctorID, tc.date, tc.start, tc.end); err == nil {
			t.Errorf("%s: expected error", tc.name)
		}
	}

	if _, err := f.svc.CreateSlot(ctx, uuid.New(), "2026-10-01", "09:00", "10:00"); !errors.Is(err, ErrDoctorNotFound) {
		t.Errorf("expected ErrDoctorNotFound, got %v", err)
	}
}

func TestListFreeSlots_UnknownDoctor(t *testing.T) {
	f := newBookingFixture(t)

	_, _, err := f.svc.ListFreeSlots(context.Background(), uuid.New(), 20, 0)
	if !errors.Is(err, ErrDoctorNotFound) {
		t.Errorf("expected ErrDoctorNotFound, got %v", err)
	}
}

func TestListFreeSlots_DirectoryFailure(t *testing.T) {
	f := newBookingFixture(t)
	f.docs.err = errors.New("connection refused")

	_, _, err := f.svc.ListFreeSlots(context.Background(), f.doctorID, 20, 0)
	if err == nil || errors.Is(err, ErrDoctorNotFound) {
		t.Errorf("directory failure must not look like a missing doctor, got %v", err)
	}
}

func TestCreateSlot_Duplicate(t *testing.T) {
	f := newBookingFixture(t)

	f.mustCreateSlot(t, "2026-10-01", "09:00", "10:00")
	_, err := f.svc.CreateSlot(context.Background(), f.doctorID, "2026-10-01", "09:00", "10:00")
	if !errors.Is(err, ErrDuplicateSlot) {
		t.Errorf("expected ErrDuplicateSlot, got %v", err)
	}
}

func TestBook(t *testing.T) {
	f := newBookingFixture(t)
	slot := f.mustCreateSlot(t, "2026-10-01", "09:00", "10:00")
	userID := uuid.New()

	appt, err := f.svc.Book(context.Background(), userID, f.doctorID, slot.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if appt.UserID != userID || appt.SlotID == nil || *appt.SlotID != slot.ID {
		t.Errorf("appointment does not reference user and slot: %+v", appt)
	}
	if appt.Status != StatusBooked {
		t.Errorf("expected status booked, got %s", appt.Status)
	}

	// The slot must have left the free list.
	free, _, err := f.svc.ListFreeSlots(context.Background(), f.doctorID, 20, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(free) != 0 {
		t.Errorf("expected no free slots after booking, got %d", len(free))
	}
}

func TestBook_SlotNotFound(t *testing.T) {
	f := newBookingFixture(t)

	_, err := f.svc.Book(context.Background(), uuid.New(), f.doctorID, uuid.New())
	if !errors.Is(err, ErrSlotNotFound) {
		t.Errorf("expected ErrSlotNotFound, got %v", err)
	}
}

func TestBook_DoctorMismatch(t *testing.T) {
	f := newBookingFixture(t)
	slot := f.mustCreateSlot(t, "2026-10-01", "09:00", "10:00")

	_, err := f.svc.Book(context.Background(), uuid.New(), uuid.New(), slot.ID)
	if !errors.Is(err, ErrDoctorMismatch) {
		t.Errorf("expected ErrDoctorMismatch, got %v", err)
	}
	// A mismatch must not consume the slot.
	free, _, _ := f.svc.ListFreeSlots(context.Background(), f.doctorID, 20, 0)
	if len(free) != 1 {
		t.Errorf("expected slot still free, got %d free", len(free))
	}
}

func TestBook_SecondCallerLoses(t *testing.T) {
	f := newBookingFixture(t)
	slot := f.mustCreateSlot(t, "2026-10-01", "09:00", "10:00")

	if _, err := f.svc.Book(context.Background(), uuid.New(), f.doctorID, slot.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err := f.svc.Book(context.Background(), uuid.New(), f.doctorID, slot.ID)
	if !errors.Is(err, ErrSlotAlreadyBooked) {
		t.Errorf("expected ErrSlotAlreadyBooked, got %v", err)
	}
}

func TestBook_ConcurrentSingleWinner(t *testing.T) {
	f := newBookingFixture(t)
	slot := f.mustCreateSlot(t, "2026-10-01", "09:00", "10:00")

	const callers = 16
	var wg sync.WaitGroup
	results := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = f.svc.Book(context.Background(), uuid.New(), f.doctorID, slot.ID)
		}(i)
	}
	wg.Wait()

	var wins, losses int
	for _, err := range results {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, ErrSlotAlreadyBooked):
			losses++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if wins != 1 {
		t.Errorf("expected exactly one winner, got %d", wins)
	}
	if losses != callers-1 {
		t.Errorf("expected %d losers, got %d", callers-1, losses)
	}
}

func TestCancel_OwnerOnly(t *testing.T) {
	f := newBookingFixture(t)
	slot := f.mustCreateSlot(t, "2026-10-01", "09:00", "10:00")
	owner := uuid.New()

	appt, err := f.svc.Book(context.Background(), owner, f.doctorID, slot.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := f.svc.Cancel(context.Background(), uuid.New(), appt.ID); !errors.Is(err, ErrNotOwner) {
		t.Errorf("expected ErrNotOwner, got %v", err)
	}
	// Failed cancellation leaves everything in place.
	if _, _, err := f.svc.ListMyAppointments(context.Background(), owner, 20, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if free, _, _ := f.svc.ListFreeSlots(context.Background(), f.doctorID, 20, 0); len(free) != 0 {
		t.Error("slot must stay booked after a rejected cancel")
	}
}

func TestCancel_FreesSlotForRebooking(t *testing.T) {
	f := newBookingFixture(t)
	slot := f.mustCreateSlot(t, "2026-10-01", "09:00", "10:00")
	owner := uuid.New()

	appt, err := f.svc.Book(context.Background(), owner, f.doctorID, slot.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := f.svc.Cancel(context.Background(), owner, appt.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	items, total, err := f.svc.ListMyAppointments(context.Background(), owner, 20, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 0 || len(items) != 0 {
		t.Errorf("expected no appointments after cancel, got %d", total)
	}

	// The slot is free again and bookable by someone else.
	if _, err := f.svc.Book(context.Background(), uuid.New(), f.doctorID, slot.ID); err != nil {
		t.Errorf("expected rebooking to succeed, got %v", err)
	}
}

func TestCancel_UnknownAppointment(t *testing.T) {
	f := newBookingFixture(t)

	err := f.svc.Cancel(context.Background(), uuid.New(), uuid.New())
	if !errors.Is(err, ErrAppointmentNotFound) {
		t.Errorf("expected ErrAppointmentNotFound, got %v", err)
	}
}
