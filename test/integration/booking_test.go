package integration

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/carebook/carebook/internal/domain/booking"
)

func TestSlotUniqueness(t *testing.T) {
	ctx := context.Background()
	_, directorySvc, bookingSvc := services()
	doctor := createTestDoctor(t, ctx, directorySvc, "Dr. Unique")

	if _, err := bookingSvc.CreateSlot(ctx, doctor.ID, "2026-10-01", "09:00", "09:30"); err != nil {
		t.Fatalf("create slot: %v", err)
	}
	_, err := bookingSvc.CreateSlot(ctx, doctor.ID, "2026-10-01", "09:00", "09:30")
	if !errors.Is(err, booking.ErrDuplicateSlot) {
		t.Errorf("expected ErrDuplicateSlot from the unique constraint, got %v", err)
	}

	// The same window for another doctor is fine.
	other := createTestDoctor(t, ctx, directorySvc, "Dr. Other")
	if _, err := bookingSvc.CreateSlot(ctx, other.ID, "2026-10-01", "09:00", "09:30"); err != nil {
		t.Errorf("same window for a different doctor must be allowed: %v", err)
	}
}

func TestBookLifecycle(t *testing.T) {
	ctx := context.Background()
	identitySvc, directorySvc, bookingSvc := services()
	doctor := createTestDoctor(t, ctx, directorySvc, "Dr. Lifecycle")
	alice := createTestUser(t, ctx, identitySvc, "alice-"+uuid.NewString()[:8])
	bob := createTestUser(t, ctx, identitySvc, "bob-"+uuid.NewString()[:8])

	slot, err := bookingSvc.CreateSlot(ctx, doctor.ID, "2026-10-02", "10:00", "10:30")
	if err != nil {
		t.Fatalf("create slot: %v", err)
	}

	appt, err := bookingSvc.Book(ctx, alice.ID, doctor.ID, slot.ID)
	if err != nil {
		t.Fatalf("book: %v", err)
	}

	// Bob loses the same slot.
	if _, err := bookingSvc.Book(ctx, bob.ID, doctor.ID, slot.ID); !errors.Is(err, booking.ErrSlotAlreadyBooked) {
		t.Errorf("expected ErrSlotAlreadyBooked, got %v", err)
	}

	// Bob may not cancel Alice's booking.
	if err := bookingSvc.Cancel(ctx, bob.ID, appt.ID); !errors.Is(err, booking.ErrNotOwner) {
		t.Errorf("expected ErrNotOwner, got %v", err)
	}

	// Alice cancels; the slot frees up and Bob can take it.
	if err := bookingSvc.Cancel(ctx, alice.ID, appt.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if _, err := bookingSvc.Book(ctx, bob.ID, doctor.ID, slot.ID); err != nil {
		t.Errorf("rebooking a cancelled slot must succeed: %v", err)
	}
}

func TestBookConcurrentSingleWinner(t *testing.T) {
	ctx := context.Background()
	identitySvc, directorySvc, bookingSvc := services()
	doctor := createTestDoctor(t, ctx, directorySvc, "Dr. Race")

	slot, err := bookingSvc.CreateSlot(ctx, doctor.ID, "2026-10-03", "11:00", "11:30")
	if err != nil {
		t.Fatalf("create slot: %v", err)
	}

	const callers = 10
	users := make([]uuid.UUID, callers)
	for i := range users {
		users[i] = createTestUser(t, ctx, identitySvc, "racer-"+uuid.NewString()[:8]).ID
	}

	var wg sync.WaitGroup
	results := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = bookingSvc.Book(ctx, users[i], doctor.ID, slot.ID)
		}(i)
	}
	wg.Wait()

	var wins int
	for _, err := range results {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, booking.ErrSlotAlreadyBooked):
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if wins != 1 {
		t.Errorf("expected exactly one winner, got %d", wins)
	}
}

func TestBookRollbackFreesSlot(t *testing.T) {
	ctx := context.Background()
	_, directorySvc, bookingSvc := services()
	doctor := createTestDoctor(t, ctx, directorySvc, "Dr. Rollback")

	slot, err := bookingSvc.CreateSlot(ctx, doctor.ID, "2026-10-04", "12:00", "12:30")
	if err != nil {
		t.Fatalf("create slot: %v", err)
	}

	// A user id that violates the appointment FK makes the insert fail
	// after the reservation succeeded; the rollback must free the slot.
	if _, err := bookingSvc.Book(ctx, uuid.New(), doctor.ID, slot.ID); err == nil {
		t.Fatal("expected the appointment insert to fail")
	}

	free, _, err := bookingSvc.ListFreeSlots(ctx, doctor.ID, 20, 0)
	if err != nil {
		t.Fatalf("list free slots: %v", err)
	}
	if len(free) != 1 {
		t.Errorf("expected the slot back on the free list after rollback, got %d free", len(free))
	}
}

func TestReleaseContract(t *testing.T) {
	ctx := context.Background()
	_, directorySvc, bookingSvc := services()
	doctor := createTestDoctor(t, ctx, directorySvc, "Dr. Release")
	slots := booking.NewSlotRepoPG(globalDB.Pool)

	slot, err := bookingSvc.CreateSlot(ctx, doctor.ID, "2026-10-07", "09:00", "09:30")
	if err != nil {
		t.Fatalf("create slot: %v", err)
	}

	// Releasing a free slot keeps it free.
	if err := slots.Release(ctx, slot.ID); err != nil {
		t.Errorf("releasing a free slot must succeed, got %v", err)
	}

	if err := slots.Reserve(ctx, slot.ID); err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if err := slots.Release(ctx, slot.ID); err != nil {
		t.Errorf("releasing a booked slot must succeed, got %v", err)
	}

	// A slot that never existed is an error, not a silent no-op.
	if err := slots.Release(ctx, uuid.New()); !errors.Is(err, booking.ErrSlotNotFound) {
		t.Errorf("expected ErrSlotNotFound for a missing slot, got %v", err)
	}
}

func TestListFreeSlotsOrdering(t *testing.T) {
	ctx := context.Background()
	_, directorySvc, bookingSvc := services()
	doctor := createTestDoctor(t, ctx, directorySvc, "Dr. Order")

	// Created out of order on purpose.
	for _, w := range [][3]string{
		{"2026-10-06", "09:00", "09:30"},
		{"2026-10-05", "14:00", "14:30"},
		{"2026-10-05", "08:00", "08:30"},
	} {
		if _, err := bookingSvc.CreateSlot(ctx, doctor.ID, w[0], w[1], w[2]); err != nil {
			t.Fatalf("create slot: %v", err)
		}
	}

	free, total, err := bookingSvc.ListFreeSlots(ctx, doctor.ID, 20, 0)
	if err != nil {
		t.Fatalf("list free slots: %v", err)
	}
	if total != 3 {
		t.Fatalf("expected 3 free slots, got %d", total)
	}
	want := [][2]string{
		{"2026-10-05", "08:00:00"},
		{"2026-10-05", "14:00:00"},
		{"2026-10-06", "09:00:00"},
	}
	for i, s := range free {
		if s.SlotDate != want[i][0] || s.StartTime != want[i][1] {
			t.Errorf("slot %d: got %s %s, want %s %s", i, s.SlotDate, s.StartTime, want[i][0], want[i][1])
		}
	}
}
