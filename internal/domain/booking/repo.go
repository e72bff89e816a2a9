package booking

import (
	"context"

	"github.com/google/uuid"
)

type SlotRepository interface {
	// Create inserts a slot; an existing identical window yields
	// ErrDuplicateSlot.
	Create(ctx context.Context, s *Slot) error
	GetByID(ctx context.Context, id uuid.UUID) (*Slot, error)
	// ListFreeByDoctor returns unbooked slots ordered by date, then start
	// time.
	ListFreeByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*Slot, int, error)
	// Reserve flips a free slot to booked. At most one caller wins a given
	// slot; losers get ErrSlotAlreadyBooked, a missing slot ErrSlotNotFound.
	Reserve(ctx context.Context, id uuid.UUID) error
	// Release frees a slot. Releasing an already-free slot is a no-op
	// success; a missing slot yields ErrSlotNotFound.
	Release(ctx context.Context, id uuid.UUID) error
}

type AppointmentRepository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Appointment, int, error)
	ListAll(ctx context.Context, limit, offset int) ([]*Appointment, int, error)
}
