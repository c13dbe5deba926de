package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/lab-resource-booking/internal/booking"
	"github.com/iliyamo/lab-resource-booking/internal/config"
	"github.com/iliyamo/lab-resource-booking/internal/model"
	"github.com/iliyamo/lab-resource-booking/internal/queue"
	"github.com/iliyamo/lab-resource-booking/internal/repository"
	queue_publisher "github.com/iliyamo/lab-resource-booking/internal/service"
)

// ReservationHandler implements the reservation ledger endpoints.  Every
// mutating path runs inside a transaction that first locks the equipment
// row, so the availability check and the write cannot interleave with a
// concurrent request for the same equipment.
type ReservationHandler struct {
	Cfg          config.Config
	Reservations *repository.ReservationRepo
	Equipment    *repository.EquipmentRepo
}

func NewReservationHandler(cfg config.Config, r *repository.ReservationRepo, e *repository.EquipmentRepo) *ReservationHandler {
	return &ReservationHandler{Cfg: cfg, Reservations: r, Equipment: e}
}

type reservationReq struct {
	EquipmentID uint64    `json:"equipment_id"`
	StartsAt    time.Time `json:"starts_at"`
	EndsAt      time.Time `json:"ends_at"`
	Purpose     string    `json:"purpose"`
}

type reservationResp struct {
	ID              uint64    `json:"id"`
	UserID          uint64    `json:"user_id"`
	EquipmentID     uint64    `json:"equipment_id"`
	StartsAt        time.Time `json:"starts_at"`
	EndsAt          time.Time `json:"ends_at"`
	Purpose         string    `json:"purpose"`
	Status          string    `json:"status"`
	ApprovedBy      *uint64   `json:"approved_by,omitempty"`
	RejectionReason *string   `json:"rejection_reason,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func toReservationResp(r *model.Reservation) reservationResp {
	return reservationResp{
		ID:              r.ID,
		UserID:          r.UserID,
		EquipmentID:     r.EquipmentID,
		StartsAt:        r.StartsAt,
		EndsAt:          r.EndsAt,
		Purpose:         r.Purpose,
		Status:          r.Status,
		ApprovedBy:      r.ApprovedBy,
		RejectionReason: r.RejectionReason,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

// notify publishes a notification event without failing the request.
func notify(ev queue.NotificationEvent) {
	ev.OccurredAt = time.Now().UTC().Format(time.RFC3339)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = queue_publisher.PublishNotification(ctx, ev)
}

// Create books equipment for a half-open interval [starts_at, ends_at).
// The interval is validated, the equipment row is locked, and the
// confirmed ledger is scanned for overlaps before the row is written.
// Under the auto-approve policy the reservation is created CONFIRMED and
// the equipment flips to BOOKED; otherwise it is created PENDING and
// staff are notified.
func (h *ReservationHandler) Create(c echo.Context) error {
	uid := getUserID(c)
	if uid == 0 {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req reservationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Purpose = strings.TrimSpace(req.Purpose)
	if req.EquipmentID == 0 || req.Purpose == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "equipment_id/purpose required"})
	}
	start := req.StartsAt.UTC()
	end := req.EndsAt.UTC()
	if err := booking.ValidateInterval(start, end, time.Now().UTC()); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	tx, err := h.Reservations.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "begin tx failed"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	eqStatus, err := h.Equipment.LockTx(ctx, tx, req.EquipmentID)
	if err != nil {
		if err == repository.ErrEquipmentNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "equipment not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "lock equipment failed"})
	}
	if !booking.Bookable(eqStatus) {
		return c.JSON(http.StatusConflict, echo.Map{"error": "equipment not bookable"})
	}
	n, err := h.Reservations.CountOverlappingTx(ctx, tx, req.EquipmentID, start, end, 0)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "conflict check failed"})
	}
	if n > 0 {
		return c.JSON(http.StatusConflict, echo.Map{"error": "interval conflicts with a confirmed reservation"})
	}

	res := model.Reservation{
		UserID:      uid,
		EquipmentID: req.EquipmentID,
		StartsAt:    start,
		EndsAt:      end,
		Purpose:     req.Purpose,
		Status:      booking.StatusPending,
	}
	if h.Cfg.AutoApprove {
		res.Status = booking.StatusConfirmed
	}
	if err := h.Reservations.CreateTx(ctx, tx, &res); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create reservation failed"})
	}
	if res.Status == booking.StatusConfirmed {
		if err := h.Equipment.SetStatusTx(ctx, tx, req.EquipmentID, booking.EquipmentBooked); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update equipment failed"})
		}
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit failed"})
	}
	committed = true

	if res.Status == booking.StatusConfirmed {
		notify(queue.NotificationEvent{
			Kind:     model.NotifyBooking,
			Audience: queue.AudienceUser,
			UserID:   uid,
			Title:    "Reservation confirmed",
			Message:  fmt.Sprintf("Reservation #%d for equipment #%d is confirmed.", res.ID, res.EquipmentID),
		})
	} else {
		notify(queue.NotificationEvent{
			Kind:     model.NotifyBooking,
			Audience: queue.AudienceStaff,
			Title:    "New booking request",
			Message:  fmt.Sprintf("Reservation #%d for equipment #%d awaits review.", res.ID, res.EquipmentID),
		})
	}
	return c.JSON(http.StatusCreated, toReservationResp(&res))
}

// Approve confirms a pending reservation (staff only).  The overlap
// check is repeated under the equipment lock because another request may
// have been confirmed between submission and review.
func (h *ReservationHandler) Approve(c echo.Context) error {
	staffID := getUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	tx, err := h.Reservations.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "begin tx failed"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, err := h.Reservations.GetByIDTx(ctx, tx, id)
	if err != nil {
		if err == repository.ErrReservationNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if err := booking.Transition(res.Status, booking.StatusConfirmed); err != nil {
		return c.JSON(http.StatusConflict, echo.Map{"error": fmt.Sprintf("cannot confirm a %s reservation", res.Status)})
	}
	eqStatus, err := h.Equipment.LockTx(ctx, tx, res.EquipmentID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "lock equipment failed"})
	}
	// The equipment may have gone into MAINTENANCE or UNAVAILABLE while
	// the request sat in the review queue.
	if !booking.Bookable(eqStatus) {
		return c.JSON(http.StatusConflict, echo.Map{"error": "equipment not bookable"})
	}
	n, err := h.Reservations.CountOverlappingTx(ctx, tx, res.EquipmentID, res.StartsAt, res.EndsAt, res.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "conflict check failed"})
	}
	if n > 0 {
		return c.JSON(http.StatusConflict, echo.Map{"error": "interval conflicts with a confirmed reservation"})
	}
	if err := h.Reservations.UpdateStatusTx(ctx, tx, id, booking.StatusConfirmed, &staffID, nil); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update reservation failed"})
	}
	if err := h.Equipment.SetStatusTx(ctx, tx, res.EquipmentID, booking.EquipmentBooked); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update equipment failed"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit failed"})
	}
	committed = true

	notify(queue.NotificationEvent{
		Kind:     model.NotifyBooking,
		Audience: queue.AudienceUser,
		UserID:   res.UserID,
		Title:    "Reservation confirmed",
		Message:  fmt.Sprintf("Reservation #%d for equipment #%d was confirmed.", res.ID, res.EquipmentID),
	})

	out, err := h.Reservations.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, toReservationResp(out))
}

type rejectReq struct {
	Reason string `json:"reason"`
}

// Reject declines a pending reservation with a reason (staff only).
// Rejecting twice fails with 409; the first decision stands.
func (h *ReservationHandler) Reject(c echo.Context) error {
	staffID := getUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	var req rejectReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "reason required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	tx, err := h.Reservations.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "begin tx failed"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, err := h.Reservations.GetByIDTx(ctx, tx, id)
	if err != nil {
		if err == repository.ErrReservationNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if err := booking.Transition(res.Status, booking.StatusRejected); err != nil {
		return c.JSON(http.StatusConflict, echo.Map{"error": fmt.Sprintf("cannot reject a %s reservation", res.Status)})
	}
	if err := h.Reservations.UpdateStatusTx(ctx, tx, id, booking.StatusRejected, &staffID, &reason); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update reservation failed"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit failed"})
	}
	committed = true

	notify(queue.NotificationEvent{
		Kind:     model.NotifyBooking,
		Audience: queue.AudienceUser,
		UserID:   res.UserID,
		Title:    "Reservation rejected",
		Message:  fmt.Sprintf("Reservation #%d was rejected: %s", res.ID, reason),
	})

	out, err := h.Reservations.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, toReservationResp(out))
}

// Cancel withdraws a reservation.  The owner may cancel their own
// pending or confirmed reservation; staff may cancel any.  When a
// confirmed reservation is cancelled and no other confirmed reservation
// on the equipment still lies ahead, BOOKED equipment reverts to
// AVAILABLE.
func (h *ReservationHandler) Cancel(c echo.Context) error {
	uid := getUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	tx, err := h.Reservations.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "begin tx failed"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, err := h.Reservations.GetByIDTx(ctx, tx, id)
	if err != nil {
		if err == repository.ErrReservationNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if res.UserID != uid && !isStaff(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	wasConfirmed := res.Status == booking.StatusConfirmed
	if err := booking.Transition(res.Status, booking.StatusCancelled); err != nil {
		return c.JSON(http.StatusConflict, echo.Map{"error": fmt.Sprintf("cannot cancel a %s reservation", res.Status)})
	}
	if wasConfirmed {
		eqStatus, err := h.Equipment.LockTx(ctx, tx, res.EquipmentID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "lock equipment failed"})
		}
		ahead, err := h.Reservations.HasConfirmedEndingAfterTx(ctx, tx, res.EquipmentID, time.Now().UTC(), res.ID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "conflict check failed"})
		}
		if booking.ShouldRevert(eqStatus, ahead) {
			if err := h.Equipment.SetStatusTx(ctx, tx, res.EquipmentID, booking.EquipmentAvailable); err != nil {
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update equipment failed"})
			}
		}
	}
	if err := h.Reservations.UpdateStatusTx(ctx, tx, id, booking.StatusCancelled, nil, nil); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update reservation failed"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit failed"})
	}
	committed = true

	if uid != res.UserID {
		// Cancelled by staff on the owner's behalf.
		notify(queue.NotificationEvent{
			Kind:     model.NotifyBooking,
			Audience: queue.AudienceUser,
			UserID:   res.UserID,
			Title:    "Reservation cancelled",
			Message:  fmt.Sprintf("Reservation #%d was cancelled by staff.", res.ID),
		})
	} else {
		notify(queue.NotificationEvent{
			Kind:     model.NotifyBooking,
			Audience: queue.AudienceStaff,
			Title:    "Reservation cancelled",
			Message:  fmt.Sprintf("Reservation #%d for equipment #%d was cancelled by its owner.", res.ID, res.EquipmentID),
		})
	}

	out, err := h.Reservations.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, toReservationResp(out))
}

// Mine lists the caller's reservations, newest first.
func (h *ReservationHandler) Mine(c echo.Context) error {
	uid := getUserID(c)
	if uid == 0 {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	list, err := h.Reservations.ListByUser(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]reservationResp, 0, len(list))
	for i := range list {
		out = append(out, toReservationResp(&list[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"reservations": out})
}

// ListAll lists every reservation for staff review, optionally filtered
// by ?status=.
func (h *ReservationHandler) ListAll(c echo.Context) error {
	status := strings.ToUpper(strings.TrimSpace(c.QueryParam("status")))
	switch status {
	case "", booking.StatusPending, booking.StatusConfirmed, booking.StatusRejected,
		booking.StatusCancelled, booking.StatusCompleted:
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown status filter"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	list, err := h.Reservations.ListAll(ctx, status)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]reservationResp, 0, len(list))
	for i := range list {
		out = append(out, toReservationResp(&list[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"reservations": out})
}

// Get returns one reservation.  Students see only their own; staff see
// all.
func (h *ReservationHandler) Get(c echo.Context) error {
	uid := getUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	res, err := h.Reservations.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrReservationNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if res.UserID != uid && !isStaff(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	return c.JSON(http.StatusOK, toReservationResp(res))
}

type usageResp struct {
	EquipmentID   uint64 `json:"equipment_id"`
	Reservations  int64  `json:"reservations"`
	BookedMinutes int64  `json:"booked_minutes"`
}

// Usage returns per-equipment booking totals over confirmed and
// completed reservations (staff only), most reserved first.
func (h *ReservationHandler) Usage(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	list, err := h.Reservations.UsageSummary(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]usageResp, 0, len(list))
	for i := range list {
		out = append(out, usageResp{
			EquipmentID:   list[i].EquipmentID,
			Reservations:  list[i].Reservations,
			BookedMinutes: list[i].BookedMinutes,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"usage": out})
}

// Sweep flips confirmed reservations whose interval has ended to
// COMPLETED and frees equipment left BOOKED with nothing ahead (staff
// only).  Triggered manually or by an external scheduler hitting this
// endpoint.
func (h *ReservationHandler) Sweep(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	n, err := h.Reservations.CompleteExpired(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "sweep failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"completed": n})
}
