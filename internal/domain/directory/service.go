package directory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Service is the read-mostly hospital/doctor/location directory. It has no
// booking invariants; it exists so the presentation layer never touches
// repositories directly.
type Service struct {
	locations LocationRepository
	hospitals HospitalRepository
	doctors   DoctorRepository
}

func NewService(locations LocationRepository, hospitals HospitalRepository, doctors DoctorRepository) *Service {
	return &Service{locations: locations, hospitals: hospitals, doctors: doctors}
}

// -- Location --

func (s *Service) CreateLocation(ctx context.Context, l *Location) error {
	l.Region = strings.TrimSpace(l.Region)
	if l.Region == "" {
		return fmt.Errorf("region is required")
	}
	return s.locations.Create(ctx, l)
}

func (s *Service) ListLocations(ctx context.Context, limit, offset int) ([]*Location, int, error) {
	return s.locations.List(ctx, limit, offset)
}

// -- Hospital --

func (s *Service) CreateHospital(ctx context.Context, h *Hospital) error {
	if strings.TrimSpace(h.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if h.LocationID == uuid.Nil {
		return fmt.Errorf("location_id is required")
	}
	if _, err := s.locations.GetByID(ctx, h.LocationID); err != nil {
		if errors.Is(err, ErrLocationNotFound) {
			return fmt.Errorf("unknown location %s: %w", h.LocationID, ErrLocationNotFound)
		}
		return fmt.Errorf("check location: %w", err)
	}
	return s.hospitals.Create(ctx, h)
}

func (s *Service) GetHospital(ctx context.Context, id uuid.UUID) (*Hospital, error) {
	return s.hospitals.GetByID(ctx, id)
}

// ListHospitals filters by region substring (case-insensitive) when region
// is non-empty, otherwise returns all hospitals with their location joined.
func (s *Service) ListHospitals(ctx context.Context, region string, limit, offset int) ([]*Hospital, int, error) {
	return s.hospitals.ListByRegion(ctx, strings.TrimSpace(region), limit, offset)
}

// -- Doctor --

func (s *Service) CreateDoctor(ctx context.Context, d *Doctor) error {
	if strings.TrimSpace(d.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if d.HospitalID != nil {
		if _, err := s.hospitals.GetByID(ctx, *d.HospitalID); err != nil {
			if errors.Is(err, ErrHospitalNotFound) {
				return fmt.Errorf("unknown hospital %s: %w", *d.HospitalID, ErrHospitalNotFound)
			}
			return fmt.Errorf("check hospital: %w", err)
		}
	}
	return s.doctors.Create(ctx, d)
}

func (s *Service) GetDoctor(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	return s.doctors.GetByID(ctx, id)
}

func (s *Service) ListDoctors(ctx context.Context, limit, offset int) ([]*Doctor, int, error) {
	return s.doctors.List(ctx, limit, offset)
}

func (s *Service) ListDoctorsByHospital(ctx context.Context, hospitalID uuid.UUID, limit, offset int) ([]*Doctor, int, error) {
	if _, err := s.hospitals.GetByID(ctx, hospitalID); err != nil {
		if errors.Is(err, ErrHospitalNotFound) {
			return nil, 0, fmt.Errorf("unknown hospital %s: %w", hospitalID, ErrHospitalNotFound)
		}
		return nil, 0, fmt.Errorf("check hospital: %w", err)
	}
	return s.doctors.ListByHospital(ctx, hospitalID, limit, offset)
}
