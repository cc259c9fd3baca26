package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/tablewire/restaurant-pos/internal/handler"    // import the handlers that implement business logic
	"github.com/tablewire/restaurant-pos/internal/middleware" // import middleware for JWT authentication and role enforcement
	"github.com/tablewire/restaurant-pos/internal/model"      // staff role constants
)

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance. Currently it exposes only a health check,
// used by load balancers and monitoring to verify the service is up.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers all authentication-related routes and applies the
// necessary middleware. Unauthenticated operations live under /v1/auth,
// while protected endpoints live under /v1.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	// Session management does not require an existing session: staff
	// register, sign in, and exchange tokens here.
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	// Refresh rotates the refresh token; refresh-access issues a new
	// access token without rotation.
	g.POST("/refresh", a.Refresh)
	g.POST("/refresh-access", a.RefreshAccess)
	// Logout accepts either a refresh token in the body (ends one
	// session) or a bearer token (ends all sessions), so it lives
	// outside the JWT middleware.
	g.POST("/logout", a.Logout)

	// Protected introspection endpoint.
	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(middleware.RequireRole(model.RoleManager, model.RoleServer))
	auth.GET("/me", a.Me)
}

// RegisterPOS wires the check engine surface: floor plan and seat
// resolution, the menu catalog slice, and every check operation. All
// routes require an authenticated staff member; the table reset (a
// cash-handling step) is restricted to managers.
//
// cacheMW is applied only to catalog reads. Check reads are never
// cached: every GET must reflect the latest accepted revision or
// terminals would submit mutations against revisions that look current
// but are not.
func RegisterPOS(e *echo.Echo, t *handler.TableHandler, m *handler.MenuHandler, ch *handler.CheckHandler, jwtSecret string, cacheMW echo.MiddlewareFunc) {
	g := e.Group("/v1")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole(model.RoleManager, model.RoleServer))

	// Floor plan and selection handling. Table status changes with
	// check activity, so the list is not cached either.
	g.GET("/tables", t.List)
	g.POST("/tables/resolve-seats", t.ResolveSeats)
	// The kitchen display marks a table's order as fired.
	g.POST("/tables/:id/served", t.MarkServed)

	// Catalog reads used while ringing in items. Reference data, safe
	// to cache.
	g.GET("/menu-items/:id", m.GetItem, cacheMW)
	g.GET("/menu-items/:id/modifiers", m.GetModifierSuggestions, cacheMW)

	// Check lifecycle and line mutations. Every mutating route carries
	// expected_revision in the body and returns 409 on a stale value.
	g.POST("/checks/open", ch.Open)
	g.GET("/checks/:id", ch.Get)
	g.POST("/checks/:id/lines", ch.AddLine)
	g.PUT("/checks/:id/lines/:lineID/qty", ch.SetQty)
	g.POST("/checks/:id/lines/:lineID/comp", ch.ToggleComp)
	g.PUT("/checks/:id/lines/:lineID/split", ch.SetSplitMode)
	g.PUT("/checks/:id/lines/:lineID/split-note", ch.SetSplitNote)
	g.PUT("/checks/:id/lines/:lineID/transfer", ch.SetTransfer)
	g.POST("/checks/:id/lines/:lineID/modifiers", ch.ToggleModifier)
	g.POST("/checks/:id/clear-lines", ch.ClearLines)
	g.PUT("/checks/:id/note", ch.SetNote)
	g.POST("/checks/:id/close", ch.Close)

	// Manager-only: return a settled table to service.
	mgr := e.Group("/v1")
	mgr.Use(middleware.JWTAuth(jwtSecret))
	mgr.Use(middleware.RequireRole(model.RoleManager))
	mgr.POST("/tables/:id/reset", t.Reset)
}
