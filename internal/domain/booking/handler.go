package booking

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

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/doctors/:id/slots", h.ListSlots)
	api.POST("/appointments", h.Book)
	api.GET("/appointments", h.ListAppointments)
	api.DELETE("/appointments/:id", h.Cancel)

	api.POST("/availability", h.CreateSlot, auth.RequireRole(identity.RoleAdmin))
}

type createSlotRequest struct {
	DoctorID  uuid.UUID `json:"doctor_id"`
	Date      string    `json:"date"`
	StartTime string    `json:"start_time"`
	EndTime   string    `json:"end_time"`
}

func (h *Handler) CreateSlot(c echo.Context) error {
	var req createSlotRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	slot, err := h.svc.CreateSlot(c.Request().Context(), req.DoctorID, req.Date, req.StartTime, req.EndTime)
	if err != nil {
		if errors.Is(err, ErrDuplicateSlot) {
			return echo.NewHTTPError(http.StatusConflict, "slot already exists")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, slot)
}

func (h *Handler) ListSlots(c echo.Context) error {
	doctorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid doctor id")
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListFreeSlots(c.Request().Context(), doctorID, pg.Limit, pg.Offset)
	if err != nil {
		if errors.Is(err, ErrDoctorNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "doctor not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

type bookRequest struct {
	DoctorID uuid.UUID `json:"doctor_id"`
	SlotID   uuid.UUID `json:"slot_id"`
}

func (h *Handler) Book(c echo.Context) error {
	var req bookRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.DoctorID == uuid.Nil || req.SlotID == uuid.Nil {
		return echo.NewHTTPError(http.StatusBadRequest, "doctor_id and slot_id are required")
	}
	userID := auth.UserIDFromContext(c.Request().Context())

	appt, err := h.svc.Book(c.Request().Context(), userID, req.DoctorID, req.SlotID)
	switch {
	case err == nil:
		return c.JSON(http.StatusCreated, appt)
	case errors.Is(err, ErrSlotNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "slot not found")
	case errors.Is(err, ErrSlotAlreadyBooked):
		return echo.NewHTTPError(http.StatusConflict, "slot already booked")
	case errors.Is(err, ErrDoctorMismatch):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "slot does not belong to this doctor")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "could not book appointment")
	}
}

// ListAppointments returns the caller's own bookings. Admins may pass
// ?all=true to see everyone's.
func (h *Handler) ListAppointments(c echo.Context) error {
	ctx := c.Request().Context()
	pg := pagination.FromContext(c)

	if c.QueryParam("all") == "true" {
		if auth.RoleFromContext(ctx) != identity.RoleAdmin {
			return echo.NewHTTPError(http.StatusForbidden, "admin role required")
		}
		items, total, err := h.svc.ListAllAppointments(ctx, pg.Limit, pg.Offset)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
	}

	items, total, err := h.svc.ListMyAppointments(ctx, auth.UserIDFromContext(ctx), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) Cancel(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid appointment id")
	}
	userID := auth.UserIDFromContext(c.Request().Context())

	err = h.svc.Cancel(c.Request().Context(), userID, id)
	switch {
	case err == nil:
		return c.NoContent(http.StatusNoContent)
	case errors.Is(err, ErrAppointmentNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "appointment not found")
	case errors.Is(err, ErrNotOwner):
		return echo.NewHTTPError(http.StatusForbidden, "not your appointment")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "could not cancel appointment")
	}
}
