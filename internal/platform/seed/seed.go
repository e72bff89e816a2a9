// Package seed bulk-loads directory, user and availability data from CSV
// files. Rows go through the regular services so every invariant the API
// enforces holds for seeded data too: passwords end up hashed, duplicate
// usernames and duplicate slots are rejected.
package seed

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/carebook/carebook/internal/domain/booking"
	"github.com/carebook/carebook/internal/domain/directory"
	"github.com/carebook/carebook/internal/domain/identity"
)

// listPageSize bounds the lookups used to resolve names to ids.
const listPageSize = 1000

type UserRegistrar interface {
	Register(ctx context.Context, username, password, role string) (*identity.User, error)
}

type Directory interface {
	CreateLocation(ctx context.Context, l *directory.Location) error
	ListLocations(ctx context.Context, limit, offset int) ([]*directory.Location, int, error)
	CreateHospital(ctx context.Context, h *directory.Hospital) error
	ListHospitals(ctx context.Context, region string, limit, offset int) ([]*directory.Hospital, int, error)
	CreateDoctor(ctx context.Context, d *directory.Doctor) error
	ListDoctors(ctx context.Context, limit, offset int) ([]*directory.Doctor, int, error)
}

type SlotCreator interface {
	CreateSlot(ctx context.Context, doctorID uuid.UUID, date, start, end string) (*booking.Slot, error)
}

type Seeder struct {
	users UserRegistrar
	dir   Directory
	slots SlotCreator
	log   zerolog.Logger
}

func New(users UserRegistrar, dir Directory, slots SlotCreator, log zerolog.Logger) *Seeder {
	return &Seeder{users: users, dir: dir, slots: slots, log: log}
}

// Run loads every CSV file present in dir. Missing files are skipped; rows
// rejected by the services (duplicates, bad references) are logged and
// skipped so reruns are safe.
func (s *Seeder) Run(ctx context.Context, dir string) error {
	if err := s.loadLocations(ctx, filepath.Join(dir, "locations.csv")); err != nil {
		return err
	}
	if err := s.loadHospitals(ctx, filepath.Join(dir, "hospitals.csv")); err != nil {
		return err
	}
	if err := s.loadDoctors(ctx, filepath.Join(dir, "doctors.csv")); err != nil {
		return err
	}
	if err := s.loadUsers(ctx, filepath.Join(dir, "users.csv")); err != nil {
		return err
	}
	return s.loadAvailability(ctx, filepath.Join(dir, "availability.csv"))
}

// readRows reads a CSV file and returns its data rows, header excluded.
// A missing file returns no rows and no error.
func readRows(path string, wantCols int) ([][]string, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = wantCols
	r.TrimLeadingSpace = true
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	if len(records) <= 1 {
		return nil, nil
	}
	return records[1:], nil
}

func (s *Seeder) loadLocations(ctx context.Context, path string) error {
	rows, err := readRows(path, 1)
	if err != nil {
		return err
	}
	existing, err := s.regionIndex(ctx)
	if err != nil {
		return err
	}
	var created int
	for _, row := range rows {
		region := strings.TrimSpace(row[0])
		if _, ok := existing[strings.ToLower(region)]; ok {
			continue
		}
		l := &directory.Location{Region: region}
		if err := s.dir.CreateLocation(ctx, l); err != nil {
			s.log.Warn().Err(err).Str("region", region).Msg("skipping location row")
			continue
		}
		existing[strings.ToLower(region)] = l.ID
		created++
	}
	s.log.Info().Int("created", created).Int("rows", len(rows)).Msg("seeded locations")
	return nil
}

func (s *Seeder) loadHospitals(ctx context.Context, path string) error {
	rows, err := readRows(path, 2)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}
	regions, err := s.regionIndex(ctx)
	if err != nil {
		return err
	}
	hospitals, err := s.hospitalIndex(ctx)
	if err != nil {
		return err
	}
	var created int
	for _, row := range rows {
		name, region := strings.TrimSpace(row[0]), strings.TrimSpace(row[1])
		if _, ok := hospitals[strings.ToLower(name)]; ok {
			continue
		}
		locID, ok := regions[strings.ToLower(region)]
		if !ok {
			s.log.Warn().Str("hospital", name).Str("region", region).Msg("skipping hospital row: unknown region")
			continue
		}
		h := &directory.Hospital{Name: name, LocationID: locID}
		if err := s.dir.CreateHospital(ctx, h); err != nil {
			s.log.Warn().Err(err).Str("hospital", name).Msg("skipping hospital row")
			continue
		}
		hospitals[strings.ToLower(name)] = h.ID
		created++
	}
	s.log.Info().Int("created", created).Int("rows", len(rows)).Msg("seeded hospitals")
	return nil
}

func (s *Seeder) loadDoctors(ctx context.Context, path string) error {
	rows, err := readRows(path, 3)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}
	hospitals, err := s.hospitalIndex(ctx)
	if err != nil {
		return err
	}
	doctors, err := s.doctorIndex(ctx)
	if err != nil {
		return err
	}
	var created int
	for _, row := range rows {
		name := strings.TrimSpace(row[0])
		if _, ok := doctors[strings.ToLower(name)]; ok {
			continue
		}
		d := &directory.Doctor{Name: name}
		if specialty := strings.TrimSpace(row[1]); specialty != "" {
			d.Specialization = &specialty
		}
		if hospital := strings.TrimSpace(row[2]); hospital != "" {
			id, ok := hospitals[strings.ToLower(hospital)]
			if !ok {
				s.log.Warn().Str("doctor", name).Str("hospital", hospital).Msg("skipping doctor row: unknown hospital")
				continue
			}
			d.HospitalID = &id
		}
		if err := s.dir.CreateDoctor(ctx, d); err != nil {
			s.log.Warn().Err(err).Str("doctor", name).Msg("skipping doctor row")
			continue
		}
		doctors[strings.ToLower(name)] = d.ID
		created++
	}
	s.log.Info().Int("created", created).Int("rows", len(rows)).Msg("seeded doctors")
	return nil
}

func (s *Seeder) loadUsers(ctx context.Context, path string) error {
	rows, err := readRows(path, 3)
	if err != nil {
		return err
	}
	var created int
	for _, row := range rows {
		username := strings.TrimSpace(row[0])
		_, err := s.users.Register(ctx, username, row[1], strings.TrimSpace(row[2]))
		if errors.Is(err, identity.ErrUsernameTaken) {
			continue
		}
		if err != nil {
			s.log.Warn().Err(err).Str("username", username).Msg("skipping user row")
			continue
		}
		created++
	}
	s.log.Info().Int("created", created).Int("rows", len(rows)).Msg("seeded users")
	return nil
}

func (s *Seeder) loadAvailability(ctx context.Context, path string) error {
	rows, err := readRows(path, 4)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}
	doctors, err := s.doctorIndex(ctx)
	if err != nil {
		return err
	}
	var created int
	for _, row := range rows {
		doctor := strings.TrimSpace(row[0])
		id, ok := doctors[strings.ToLower(doctor)]
		if !ok {
			s.log.Warn().Str("doctor", doctor).Msg("skipping availability row: unknown doctor")
			continue
		}
		_, err := s.slots.CreateSlot(ctx, id, strings.TrimSpace(row[1]), strings.TrimSpace(row[2]), strings.TrimSpace(row[3]))
		if errors.Is(err, booking.ErrDuplicateSlot) {
			continue
		}
		if err != nil {
			s.log.Warn().Err(err).Str("doctor", doctor).Msg("skipping availability row")
			continue
		}
		created++
	}
	s.log.Info().Int("created", created).Int("rows", len(rows)).Msg("seeded availability")
	return nil
}

func (s *Seeder) regionIndex(ctx context.Context) (map[string]uuid.UUID, error) {
	items, _, err := s.dir.ListLocations(ctx, listPageSize, 0)
	if err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	index := make(map[string]uuid.UUID, len(items))
	for _, l := range items {
		index[strings.ToLower(l.Region)] = l.ID
	}
	return index, nil
}

func (s *Seeder) hospitalIndex(ctx context.Context) (map[string]uuid.UUID, error) {
	items, _, err := s.dir.ListHospitals(ctx, "", listPageSize, 0)
	if err != nil {
		return nil, fmt.Errorf("list hospitals: %w", err)
	}
	index := make(map[string]uuid.UUID, len(items))
	for _, h := range items {
		index[strings.ToLower(h.Name)] = h.ID
	}
	return index, nil
}

func (s *Seeder) doctorIndex(ctx context.Context) (map[string]uuid.UUID, error) {
	items, _, err := s.dir.ListDoctors(ctx, listPageSize, 0)
	if err != nil {
		return nil, fmt.Errorf("list doctors: %w", err)
	}
	index := make(map[string]uuid.UUID, len(items))
	for _, d := range items {
		index[strings.ToLower(d.Name)] = d.ID
	}
	return index, nil
}
