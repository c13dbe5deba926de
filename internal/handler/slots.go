package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/lab-resource-booking/internal/booking"
	"github.com/iliyamo/lab-resource-booking/internal/config"
)

// SlotHandler offers the HH:MM slot ladder that booking UIs render for
// start-time pickers.  The ladder is inclusive of the end hour and
// configurable through query parameters; defaults come from the server
// configuration.
type SlotHandler struct {
	Cfg config.Config
}

func NewSlotHandler(cfg config.Config) *SlotHandler { return &SlotHandler{Cfg: cfg} }

// List returns the slot ladder.  ?start_hour=, ?end_hour= and
// ?interval= override the configured defaults; invalid combinations
// produce an empty ladder, mirroring the generator.
func (h *SlotHandler) List(c echo.Context) error {
	startHour := queryInt(c, "start_hour", h.Cfg.SlotStartHour)
	endHour := queryInt(c, "end_hour", h.Cfg.SlotEndHour)
	interval := queryInt(c, "interval", h.Cfg.SlotIntervalMin)

	slots := booking.GenerateSlots(startHour, endHour, interval)
	return c.JSON(http.StatusOK, echo.Map{
		"start_hour": startHour,
		"end_hour":   endHour,
		"interval":   interval,
		"slots":      slots,
	})
}

func queryInt(c echo.Context, name string, def int) int {
	v := c.QueryParam(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
