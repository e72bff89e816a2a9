package directory

import "errors"

var (
	ErrLocationNotFound = errors.New("location not found")
	ErrHospitalNotFound = errors.New("hospital not found")
	ErrDoctorNotFound   = errors.New("doctor not found")
)
