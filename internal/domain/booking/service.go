package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/carebook/carebook/internal/domain/directory"
	"github.com/carebook/carebook/internal/platform/db"
)

// DoctorDirectory is the slice of the directory the booking engine needs:
// existence checks when slots are created or listed.
type DoctorDirectory interface {
	GetDoctor(ctx context.Context, id uuid.UUID) (*directory.Doctor, error)
}

// Service is the booking engine. It owns the availability ledger and the
// appointment book; every state change that touches both runs inside one
// transaction so a half-booked state can never be observed.
type Service struct {
	tx      db.TxRunner
	slots   SlotRepository
	appts   AppointmentRepository
	doctors DoctorDirectory
}

func NewService(tx db.TxRunner, slots SlotRepository, appts AppointmentRepository, doctors DoctorDirectory) *Service {
	return &Service{tx: tx, slots: slots, appts: appts, doctors: doctors}
}

// CreateSlot publishes a new availability window for a doctor. An identical
// window is rejected with ErrDuplicateSlot.
func (s *Service) CreateSlot(ctx context.Context, doctorID uuid.UUID, date, start, end string) (*Slot, error) {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return nil, fmt.Errorf("invalid date %q, want YYYY-MM-DD", date)
	}
	startT, err := parseClock(start)
	if err != nil {
		return nil, err
	}
	endT, err := parseClock(end)
	if err != nil {
		return nil, err
	}
	if !startT.Before(endT) {
		return nil, fmt.Errorf("start_time must be before end_time")
	}
	if err := s.checkDoctor(ctx, doctorID); err != nil {
		return nil, err
	}

	slot := &Slot{DoctorID: doctorID, SlotDate: date, StartTime: start, EndTime: end}
	if err := s.slots.Create(ctx, slot); err != nil {
		return nil, err
	}
	return slot, nil
}

func parseClock(v string) (time.Time, error) {
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, v); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time %q, want HH:MM or HH:MM:SS", v)
}

// ListFreeSlots returns a doctor's unbooked windows, soonest first.
func (s *Service) ListFreeSlots(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*Slot, int, error) {
	if err := s.checkDoctor(ctx, doctorID); err != nil {
		return nil, 0, err
	}
	return s.slots.ListFreeByDoctor(ctx, doctorID, limit, offset)
}

// checkDoctor distinguishes a doctor the directory does not know from a
// directory lookup that failed outright.
func (s *Service) checkDoctor(ctx context.Context, doctorID uuid.UUID) error {
	if _, err := s.doctors.GetDoctor(ctx, doctorID); err != nil {
		if errors.Is(err, directory.ErrDoctorNotFound) {
			return fmt.Errorf("unknown doctor %s: %w", doctorID, ErrDoctorNotFound)
		}
		return fmt.Errorf("check doctor: %w", err)
	}
	return nil
}

// Book reserves the named slot for userID and records the appointment, all
// in one transaction. The slot must belong to doctorID. A lost reservation
// race surfaces as ErrSlotAlreadyBooked; if the appointment insert fails the
// rollback frees the slot again.
func (s *Service) Book(ctx context.Context, userID, doctorID, slotID uuid.UUID) (*Appointment, error) {
	var appt *Appointment
	attempt := func(ctx context.Context) error {
		slot, err := s.slots.GetByID(ctx, slotID)
		if err != nil {
			return err
		}
		if slot.DoctorID != doctorID {
			return ErrDoctorMismatch
		}
		if err := s.slots.Reserve(ctx, slotID); err != nil {
			return err
		}
		appt = &Appointment{UserID: userID, DoctorID: doctorID, SlotID: &slotID, Status: StatusBooked}
		return s.appts.Create(ctx, appt)
	}

	err := s.tx(ctx, attempt)
	if db.IsSerializationFailure(err) {
		// One retry; a second conflict is the caller's problem.
		err = s.tx(ctx, attempt)
	}
	if err != nil {
		return nil, err
	}
	return appt, nil
}

// Cancel deletes the caller's appointment and frees its slot in one
// transaction. Only the booking owner may cancel; admins are not exempt.
func (s *Service) Cancel(ctx context.Context, userID, appointmentID uuid.UUID) error {
	attempt := func(ctx context.Context) error {
		appt, err := s.appts.GetByID(ctx, appointmentID)
		if err != nil {
			return err
		}
		if appt.UserID != userID {
			return ErrNotOwner
		}
		if appt.SlotID != nil {
			if err := s.slots.Release(ctx, *appt.SlotID); err != nil {
				return err
			}
		}
		return s.appts.Delete(ctx, appointmentID)
	}

	err := s.tx(ctx, attempt)
	if db.IsSerializationFailure(err) {
		err = s.tx(ctx, attempt)
	}
	return err
}

func (s *Service) ListMyAppointments(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return s.appts.ListByUser(ctx, userID, limit, offset)
}

func (s *Service) ListAllAppointments(ctx context.Context, limit, offset int) ([]*Appointment, int, error) {
	return s.appts.ListAll(ctx, limit, offset)
}
