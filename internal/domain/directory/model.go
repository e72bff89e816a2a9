package directory

import (
	"time"

	"github.com/google/uuid"
)

// Location maps to the location table; a region served by hospitals.
type Location struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Region    string    `db:"region" json:"region"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Hospital maps to the hospital table.
type Hospital struct {
	ID         uuid.UUID `db:"id" json:"id"`
	Name       string    `db:"name" json:"name"`
	LocationID uuid.UUID `db:"location_id" json:"location_id"`
	Region     string    `db:"region" json:"region"` // joined from location
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// Doctor maps to the doctor table. The hospital link is optional; a doctor
// may be listed before being attached to a hospital.
type Doctor struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	Name           string     `db:"name" json:"name"`
	Specialization *string    `db:"specialization" json:"specialization,omitempty"`
	HospitalID     *uuid.UUID `db:"hospital_id" json:"hospital_id,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
}
