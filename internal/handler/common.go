package handler

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/lab-resource-booking/internal/model"
)

// getUserID extracts the authenticated user's ID from the request
// context.  JWTAuth stores the raw subject claim, which the jwt library
// decodes as float64 for numbers; string subjects are parsed.  A zero
// return means the request carries no usable identity.
func getUserID(c echo.Context) uint64 {
	switch v := c.Get("user_id").(type) {
	case float64:
		return uint64(v)
	case uint64:
		return v
	case string:
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			return n
		}
	}
	return 0
}

// isStaff reports whether the authenticated user holds the STAFF role.
func isStaff(c echo.Context) bool {
	role, _ := c.Get("role").(string)
	return role == model.RoleStaff
}
