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
	"github.com/iliyamo/lab-resource-booking/internal/model"
	"github.com/iliyamo/lab-resource-booking/internal/queue"
	"github.com/iliyamo/lab-resource-booking/internal/repository"
)

// LabSessionHandler serves scheduled lab sessions and their rosters.
// Registration and cancellation run inside a transaction holding the
// session row lock, so the capacity check and the roster write stay
// consistent under concurrent joins.
type LabSessionHandler struct {
	Sessions *repository.LabSessionRepo
}

func NewLabSessionHandler(s *repository.LabSessionRepo) *LabSessionHandler {
	return &LabSessionHandler{Sessions: s}
}

type sessionReq struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Room        string    `json:"room"`
	StartsAt    time.Time `json:"starts_at"`
	EndsAt      time.Time `json:"ends_at"`
	Capacity    int       `json:"capacity"`
}

type sessionResp struct {
	ID          uint64    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Room        string    `json:"room"`
	CreatedBy   uint64    `json:"created_by"`
	StartsAt    time.Time `json:"starts_at"`
	EndsAt      time.Time `json:"ends_at"`
	Capacity    int       `json:"capacity"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toSessionResp(s *model.LabSession) sessionResp {
	return sessionResp{
		ID:          s.ID,
		Title:       s.Title,
		Description: s.Description,
		Room:        s.Room,
		CreatedBy:   s.CreatedBy,
		StartsAt:    s.StartsAt,
		EndsAt:      s.EndsAt,
		Capacity:    s.Capacity,
		Status:      s.Status,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

func validSessionStatus(s string) bool {
	switch s {
	case booking.SessionOpen, booking.SessionClosed, booking.SessionCompleted, booking.SessionCancelled:
		return true
	}
	return false
}

// Create schedules a lab session (staff only).  Two non-cancelled
// sessions in the same room must not overlap in time.
func (h *LabSessionHandler) Create(c echo.Context) error {
	uid := getUserID(c)
	var req sessionReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Title = strings.TrimSpace(req.Title)
	req.Room = strings.TrimSpace(req.Room)
	if req.Title == "" || req.Room == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title/room required"})
	}
	if req.Capacity <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "capacity must be positive"})
	}
	start := req.StartsAt.UTC()
	end := req.EndsAt.UTC()
	if err := booking.ValidateInterval(start, end, time.Now().UTC()); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	// The room conflict check and the insert share one transaction; the
	// locked overlap scan makes a concurrent create for the same room
	// wait instead of passing the check alongside us.
	tx, err := h.Sessions.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "begin tx failed"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	overlaps, err := h.Sessions.FindOverlappingRoomTx(ctx, tx, req.Room, start, end, 0)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "conflict check failed"})
	}
	if len(overlaps) > 0 {
		return c.JSON(http.StatusConflict, echo.Map{"error": "room already hosts a session in that interval"})
	}

	s := model.LabSession{
		Title:       req.Title,
		Description: req.Description,
		Room:        req.Room,
		CreatedBy:   uid,
		StartsAt:    start,
		EndsAt:      end,
		Capacity:    req.Capacity,
		Status:      booking.SessionOpen,
	}
	if err := h.Sessions.CreateTx(ctx, tx, &s); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create session failed"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit failed"})
	}
	committed = true

	created, err := h.Sessions.GetByID(ctx, s.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusCreated, toSessionResp(created))
}

// List returns upcoming, non-cancelled sessions soonest first.
func (h *LabSessionHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	list, err := h.Sessions.ListUpcoming(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]sessionResp, 0, len(list))
	for i := range list {
		out = append(out, toSessionResp(&list[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"sessions": out})
}

// Mine lists sessions created by the calling staff member, newest first.
func (h *LabSessionHandler) Mine(c echo.Context) error {
	uid := getUserID(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	list, err := h.Sessions.ListByCreator(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]sessionResp, 0, len(list))
	for i := range list {
		out = append(out, toSessionResp(&list[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"sessions": out})
}

// Get returns one session.
func (h *LabSessionHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid session id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	s, err := h.Sessions.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrSessionNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "session not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, toSessionResp(s))
}

// Register takes a roster seat for the calling user.  The session row is
// locked before the roster is read, so two concurrent joins for the last
// seat serialize and only one succeeds.
func (h *LabSessionHandler) Register(c echo.Context) error {
	uid := getUserID(c)
	if uid == 0 {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid session id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	tx, err := h.Sessions.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "begin tx failed"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	s, err := h.Sessions.GetByIDTx(ctx, tx, id)
	if err != nil {
		if err == repository.ErrSessionNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "session not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !s.EndsAt.After(time.Now().UTC()) {
		return c.JSON(http.StatusConflict, echo.Map{"error": "session already ended"})
	}
	participants, err := h.Sessions.ParticipantIDsTx(ctx, tx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if err := booking.CanRegister(s.Status, s.Capacity, participants, uid); err != nil {
		switch err {
		case booking.ErrSessionClosed:
			return c.JSON(http.StatusConflict, echo.Map{"error": "session is not open for registration"})
		case booking.ErrAlreadyRegistered:
			return c.JSON(http.StatusConflict, echo.Map{"error": "already registered"})
		case booking.ErrSessionFull:
			return c.JSON(http.StatusConflict, echo.Map{"error": "session is at full capacity"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration failed"})
	}
	if err := h.Sessions.AddParticipantTx(ctx, tx, id, uid); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration failed"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit failed"})
	}
	committed = true

	notify(queue.NotificationEvent{
		Kind:     model.NotifySession,
		Audience: queue.AudienceUser,
		UserID:   s.CreatedBy,
		Title:    "New session registration",
		Message:  fmt.Sprintf("User #%d registered for session #%d (%s).", uid, s.ID, s.Title),
	})
	return c.JSON(http.StatusCreated, echo.Map{"session_id": id, "registered": len(participants) + 1, "capacity": s.Capacity})
}

// Unregister frees the caller's roster seat.
func (h *LabSessionHandler) Unregister(c echo.Context) error {
	uid := getUserID(c)
	if uid == 0 {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid session id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	tx, err := h.Sessions.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "begin tx failed"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if _, err := h.Sessions.GetByIDTx(ctx, tx, id); err != nil {
		if err == repository.ErrSessionNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "session not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	participants, err := h.Sessions.ParticipantIDsTx(ctx, tx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if err := booking.CanCancelRegistration(participants, uid); err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not registered"})
	}
	if _, err := h.Sessions.RemoveParticipantTx(ctx, tx, id, uid); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "cancel registration failed"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit failed"})
	}
	committed = true
	return c.NoContent(http.StatusNoContent)
}

// Participants returns the roster in registration order (staff only).
func (h *LabSessionHandler) Participants(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid session id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Sessions.GetByID(ctx, id); err != nil {
		if err == repository.ErrSessionNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "session not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	roster, err := h.Sessions.Participants(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]participantResp, 0, len(roster))
	for i := range roster {
		out = append(out, participantResp{
			UserID:       roster[i].UserID,
			RegisteredAt: roster[i].RegisteredAt,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"session_id": id, "participants": out, "count": len(out)})
}

type participantResp struct {
	UserID       uint64    `json:"user_id"`
	RegisteredAt time.Time `json:"registered_at"`
}

type sessionStatusReq struct {
	Status string `json:"status"`
}

// SetStatus flips a session to an arbitrary roster state from the
// request body.  Only the creator may change their session.
func (h *LabSessionHandler) SetStatus(c echo.Context) error {
	var req sessionStatusReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	status := strings.ToUpper(strings.TrimSpace(req.Status))
	if !validSessionStatus(status) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown status"})
	}
	return h.applyStatus(c, status)
}

// Close stops further registrations without cancelling the session.
func (h *LabSessionHandler) Close(c echo.Context) error {
	return h.applyStatus(c, booking.SessionClosed)
}

// Open reopens a closed session for registration.
func (h *LabSessionHandler) Open(c echo.Context) error {
	return h.applyStatus(c, booking.SessionOpen)
}

// CancelSession cancels a session.  Cancelled sessions drop out of the
// upcoming list and the room conflict check; the roster is kept for the
// record.
func (h *LabSessionHandler) CancelSession(c echo.Context) error {
	return h.applyStatus(c, booking.SessionCancelled)
}

func (h *LabSessionHandler) applyStatus(c echo.Context, status string) error {
	uid := getUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid session id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	s, err := h.Sessions.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrSessionNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "session not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if s.CreatedBy != uid {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	if err := h.Sessions.UpdateStatus(ctx, id, status); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update status failed"})
	}
	updated, err := h.Sessions.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, toSessionResp(updated))
}
