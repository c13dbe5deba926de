package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/lab-resource-booking/internal/handler"
	"github.com/iliyamo/lab-resource-booking/internal/middleware"
	"github.com/iliyamo/lab-resource-booking/internal/model"
)

// RegisterBooking registers the endpoints shared by students and staff:
// browsing the equipment catalogue, requesting and cancelling
// reservations, joining lab sessions and reading notifications.  All
// routes require a valid JWT; the rate limiter shields the conflict
// checker, and the catalogue reads sit behind the response cache.
func RegisterBooking(
	e *echo.Echo,
	eq *handler.EquipmentHandler,
	res *handler.ReservationHandler,
	sess *handler.LabSessionHandler,
	notif *handler.NotificationHandler,
	jwtSecret string,
	limit echo.MiddlewareFunc,
	cache echo.MiddlewareFunc,
) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleStudent, model.RoleStaff),
	)

	// Equipment catalogue and per-equipment schedule.
	g.GET("/equipment", eq.List, cache)
	g.GET("/equipment/:id", eq.Get)
	g.GET("/equipment/:id/reservations", eq.Schedule)

	// Reservation lifecycle, caller-scoped.
	g.POST("/reservations", res.Create, limit)
	g.GET("/my-reservations", res.Mine)
	g.GET("/reservations/:id", res.Get)
	g.DELETE("/reservations/:id", res.Cancel)

	// Lab sessions and rosters.
	g.GET("/sessions", sess.List, cache)
	g.GET("/sessions/:id", sess.Get)
	g.POST("/sessions/:id/register", sess.Register, limit)
	g.DELETE("/sessions/:id/register", sess.Unregister)

	// Notification feed.
	g.GET("/notifications", notif.List)
	g.POST("/notifications/:id/read", notif.MarkRead)
	g.POST("/notifications/read-all", notif.MarkAllRead)
}
