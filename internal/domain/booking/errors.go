package booking

import "errors"

var (
	// ErrSlotNotFound is returned when the referenced slot does not exist.
	ErrSlotNotFound = errors.New("slot not found")
	// ErrSlotAlreadyBooked is returned when a reservation loses the race:
	// the slot exists but another booking already holds it.
	ErrSlotAlreadyBooked = errors.New("slot already booked")
	// ErrDuplicateSlot is returned when an identical
	// (doctor, date, start, end) window already exists in the ledger.
	ErrDuplicateSlot = errors.New("duplicate slot")
	// ErrDoctorMismatch is returned when the slot belongs to a different
	// doctor than the booking request names.
	ErrDoctorMismatch = errors.New("slot belongs to a different doctor")
	// ErrDoctorNotFound is returned when the named doctor does not exist
	// in the directory.
	ErrDoctorNotFound = errors.New("doctor not found")

	ErrAppointmentNotFound = errors.New("appointment not found")
	// ErrNotOwner is returned when a caller tries to cancel an appointment
	// they did not book. Admins get no exemption here.
	ErrNotOwner = errors.New("appointment belongs to a different user")
)
