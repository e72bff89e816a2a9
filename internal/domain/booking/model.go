package booking

import (
	"time"

	"github.com/google/uuid"
)

const StatusBooked = "booked"

// Slot maps to the availability table: one bookable window of a doctor's
// time. Dates and times travel as strings ("2006-01-02", "15:04:05") so the
// JSON surface matches the date/time columns exactly.
type Slot struct {
	ID        uuid.UUID `db:"id" json:"id"`
	DoctorID  uuid.UUID `db:"doctor_id" json:"doctor_id"`
	SlotDate  string    `db:"slot_date" json:"date"`
	StartTime string    `db:"start_time" json:"start_time"`
	EndTime   string    `db:"end_time" json:"end_time"`
	IsBooked  bool      `db:"is_booked" json:"is_booked"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Appointment maps to the appointment table. SlotID is nullable so an
// appointment survives its slot being removed from the ledger.
type Appointment struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	UserID    uuid.UUID  `db:"user_id" json:"user_id"`
	DoctorID  uuid.UUID  `db:"doctor_id" json:"doctor_id"`
	SlotID    *uuid.UUID `db:"slot_id" json:"slot_id,omitempty"`
	Status    string     `db:"status" json:"status"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
}
