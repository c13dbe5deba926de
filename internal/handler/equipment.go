package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/lab-resource-booking/internal/booking"
	"github.com/iliyamo/lab-resource-booking/internal/model"
	"github.com/iliyamo/lab-resource-booking/internal/repository"
)

// EquipmentHandler serves the equipment registry: the catalogue is
// readable by any authenticated user, while create/update/delete and
// status overrides are staff operations wired behind the role guard.
type EquipmentHandler struct {
	Equipment    *repository.EquipmentRepo
	Reservations *repository.ReservationRepo
}

func NewEquipmentHandler(e *repository.EquipmentRepo, r *repository.ReservationRepo) *EquipmentHandler {
	return &EquipmentHandler{Equipment: e, Reservations: r}
}

type equipmentReq struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	Category     string `json:"category"`
	SerialNumber string `json:"serial_number"`
	Location     string `json:"location"`
}

type equipmentResp struct {
	ID           uint64    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Category     string    `json:"category"`
	SerialNumber string    `json:"serial_number"`
	Location     string    `json:"location"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func toEquipmentResp(e *model.Equipment) equipmentResp {
	return equipmentResp{
		ID:           e.ID,
		Name:         e.Name,
		Description:  e.Description,
		Category:     e.Category,
		SerialNumber: e.SerialNumber,
		Location:     e.Location,
		Status:       e.Status,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
}

// List returns the equipment catalogue, optionally filtered by ?status=.
func (h *EquipmentHandler) List(c echo.Context) error {
	status := strings.ToUpper(strings.TrimSpace(c.QueryParam("status")))
	if status != "" && !booking.ValidEquipmentStatus(status) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown status filter"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Equipment.List(ctx, status)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]equipmentResp, 0, len(items))
	for i := range items {
		out = append(out, toEquipmentResp(&items[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"equipment": out})
}

// Get returns one equipment row.
func (h *EquipmentHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid equipment id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	e, err := h.Equipment.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrEquipmentNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "equipment not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, toEquipmentResp(e))
}

// Schedule returns the pending and confirmed reservations of one piece
// of equipment ordered by start time, so clients can render an
// availability view before requesting a slot.
func (h *EquipmentHandler) Schedule(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid equipment id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Equipment.GetByID(ctx, id); err != nil {
		if err == repository.ErrEquipmentNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "equipment not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	list, err := h.Reservations.ListByEquipment(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]reservationResp, 0, len(list))
	for i := range list {
		out = append(out, toReservationResp(&list[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"equipment_id": id, "reservations": out})
}

// Create registers a new equipment row (staff only).
func (h *EquipmentHandler) Create(c echo.Context) error {
	var req equipmentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	req.SerialNumber = strings.TrimSpace(req.SerialNumber)
	if req.Name == "" || req.SerialNumber == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name/serial_number required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	e := model.Equipment{
		Name:         req.Name,
		Description:  req.Description,
		Category:     strings.ToUpper(strings.TrimSpace(req.Category)),
		SerialNumber: req.SerialNumber,
		Location:     strings.TrimSpace(req.Location),
	}
	if err := h.Equipment.Create(ctx, &e); err != nil {
		if err == repository.ErrDuplicateSerial {
			return c.JSON(http.StatusConflict, echo.Map{"error": "serial number already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create equipment failed"})
	}
	created, err := h.Equipment.GetByID(ctx, e.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusCreated, toEquipmentResp(created))
}

// Update rewrites the descriptive attributes of an equipment row (staff
// only).  Status is changed through SetStatus, never here.
func (h *EquipmentHandler) Update(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid equipment id"})
	}
	var req equipmentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	req.SerialNumber = strings.TrimSpace(req.SerialNumber)
	if req.Name == "" || req.SerialNumber == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name/serial_number required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	e := model.Equipment{
		ID:           id,
		Name:         req.Name,
		Description:  req.Description,
		Category:     strings.ToUpper(strings.TrimSpace(req.Category)),
		SerialNumber: req.SerialNumber,
		Location:     strings.TrimSpace(req.Location),
	}
	if err := h.Equipment.Update(ctx, &e); err != nil {
		switch err {
		case repository.ErrEquipmentNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "equipment not found"})
		case repository.ErrDuplicateSerial:
			return c.JSON(http.StatusConflict, echo.Map{"error": "serial number already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update equipment failed"})
	}
	updated, err := h.Equipment.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, toEquipmentResp(updated))
}

type equipmentStatusReq struct {
	Status string `json:"status"`
}

// SetStatus applies an administrative status override (staff only).  A
// transition to AVAILABLE is refused while confirmed reservations still
// cover the present or the future.
func (h *EquipmentHandler) SetStatus(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid equipment id"})
	}
	var req equipmentStatusReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	status := strings.ToUpper(strings.TrimSpace(req.Status))
	if !booking.ValidEquipmentStatus(status) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown status"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Equipment.SetStatus(ctx, id, status); err != nil {
		switch err {
		case repository.ErrEquipmentNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "equipment not found"})
		case repository.ErrActiveReservations:
			return c.JSON(http.StatusConflict, echo.Map{"error": "equipment has active reservations"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update status failed"})
	}
	e, err := h.Equipment.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, toEquipmentResp(e))
}

// Delete removes an equipment row (staff only).  Refused while
// confirmed reservations still reference it.
func (h *EquipmentHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid equipment id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Equipment.Delete(ctx, id); err != nil {
		switch err {
		case repository.ErrEquipmentNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "equipment not found"})
		case repository.ErrEquipmentInUse:
			return c.JSON(http.StatusConflict, echo.Map{"error": "equipment is referenced by confirmed reservations"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete equipment failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
