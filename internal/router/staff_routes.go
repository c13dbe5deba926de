package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/lab-resource-booking/internal/handler"
	"github.com/iliyamo/lab-resource-booking/internal/middleware"
	"github.com/iliyamo/lab-resource-booking/internal/model"
)

// RegisterStaff registers the staff-only endpoints: equipment registry
// management, reservation review, session administration and the
// consumables inventory.  All routes require a valid JWT carrying the
// STAFF role.
func RegisterStaff(
	e *echo.Echo,
	eq *handler.EquipmentHandler,
	res *handler.ReservationHandler,
	sess *handler.LabSessionHandler,
	inv *handler.InventoryHandler,
	jwtSecret string,
) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleStaff),
	)

	// Equipment registry.
	g.POST("/equipment", eq.Create)
	g.PUT("/equipment/:id", eq.Update)
	g.PUT("/equipment/:id/status", eq.SetStatus)
	g.DELETE("/equipment/:id", eq.Delete)

	// Reservation review.
	g.GET("/reservations", res.ListAll)
	g.POST("/reservations/:id/approve", res.Approve)
	g.POST("/reservations/:id/reject", res.Reject)
	g.GET("/reservations/usage", res.Usage)
	// Flips ended confirmed reservations to COMPLETED; wired to a cron
	// hitting this endpoint instead of an in-process scheduler.
	g.POST("/reservations/sweep", res.Sweep)

	// Session administration; status flips are creator-only, checked in
	// the handler.
	g.POST("/sessions", sess.Create)
	g.GET("/my-sessions", sess.Mine)
	g.POST("/sessions/:id/close", sess.Close)
	g.POST("/sessions/:id/open", sess.Open)
	g.DELETE("/sessions/:id", sess.CancelSession)
	g.PUT("/sessions/:id/status", sess.SetStatus)
	g.GET("/sessions/:id/participants", sess.Participants)

	// Consumables inventory.
	g.POST("/inventory", inv.Create)
	g.GET("/inventory", inv.List)
	g.GET("/inventory/low-stock", inv.LowStock)
	g.GET("/inventory/:id", inv.Get)
	g.PUT("/inventory/:id", inv.Update)
	g.DELETE("/inventory/:id", inv.Delete)
	g.POST("/inventory/:id/movements", inv.Move)
	g.GET("/inventory/:id/movements", inv.Movements)
}
