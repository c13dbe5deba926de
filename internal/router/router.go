// Package router wires handlers to their HTTP routes and middleware.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/lab-resource-booking/internal/handler"
	"github.com/iliyamo/lab-resource-booking/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication.
// Currently the health check and the public slot ladder.
func RegisterRoutes(e *echo.Echo, slots *handler.SlotHandler, cache echo.MiddlewareFunc) {
	// Load balancers and monitoring probe this endpoint.
	e.GET("/healthz", handler.Health)
	// The slot ladder is static per configuration, so it sits behind the
	// response cache.
	e.GET("/v1/slots", slots.List, cache)
}

// RegisterAuth registers authentication routes.  Unauthenticated
// operations live under /v1/auth; /v1/me requires a valid access token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	// Rotates the refresh token.
	g.POST("/refresh", a.Refresh)
	// Issues a new access token without rotating the refresh token.
	g.POST("/refresh-access", a.RefreshAccess)
	// Logout accepts either a bearer token (revoke all sessions) or a
	// refresh_token body (revoke one session); no JWT middleware needed.
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.GET("/me", a.Me)
}
