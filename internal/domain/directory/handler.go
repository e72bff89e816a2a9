package directory

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/carebook/carebook/internal/domain/identity"
	"github.com/carebook/carebook/internal/platform/auth"
	"github.com/carebook/carebook/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the directory endpoints on the authenticated group.
// Reads are open to any signed-in user; writes are admin only.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/hospitals", h.ListHospitals)
	api.GET("/hospitals/:id", h.GetHospital)
	api.GET("/hospitals/:id/doctors", h.ListDoctors)

	admin := auth.RequireRole(identity.RoleAdmin)
	api.POST("/locations", h.CreateLocation, admin)
	api.GET("/locations", h.ListLocations, admin)
	api.POST("/hospitals", h.CreateHospital, admin)
	api.POST("/doctors", h.CreateDoctor, admin)
}

type createLocationRequest struct {
	Region string `json:"region"`
}

func (h *Handler) CreateLocation(c echo.Context) error {
	var req createLocationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	l := &Location{Region: req.Region}
	if err := h.svc.CreateLocation(c.Request().Context(), l); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, l)
}

func (h *Handler) ListLocations(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListLocations(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

type createHospitalRequest struct {
	Name       string    `json:"name"`
	LocationID uuid.UUID `json:"location_id"`
}

func (h *Handler) CreateHospital(c echo.Context) error {
	var req createHospitalRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	hosp := &Hospital{Name: req.Name, LocationID: req.LocationID}
	if err := h.svc.CreateHospital(c.Request().Context(), hosp); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, hosp)
}

func (h *Handler) GetHospital(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid hospital id")
	}
	hosp, err := h.svc.GetHospital(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrHospitalNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "hospital not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, hosp)
}

// ListHospitals supports ?region= for a case-insensitive substring match on
// the hospital's location region.
func (h *Handler) ListHospitals(c echo.Context) error {
	pg := pagination.FromContext(c)
	region := c.QueryParam("region")
	items, total, err := h.svc.ListHospitals(c.Request().Context(), region, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

type createDoctorRequest struct {
	Name           string     `json:"name"`
	Specialization *string    `json:"specialization"`
	HospitalID     *uuid.UUID `json:"hospital_id"`
}

func (h *Handler) CreateDoctor(c echo.Context) error {
	var req createDoctorRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	d := &Doctor{Name: req.Name, Specialization: req.Specialization, HospitalID: req.HospitalID}
	if err := h.svc.CreateDoctor(c.Request().Context(), d); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, d)
}

func (h *Handler) ListDoctors(c echo.Context) error {
	hospitalID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid hospital id")
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListDoctorsByHospital(c.Request().Context(), hospitalID, pg.Limit, pg.Offset)
	if err != nil {
		if errors.Is(err, ErrHospitalNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "hospital not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}
