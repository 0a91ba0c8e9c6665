package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing
	"github.com/redis/go-redis/v9"

	"github.com/ducnm/oto-dealer/internal/config"     // middleware configuration
	"github.com/ducnm/oto-dealer/internal/handler"    // import the handlers that implement business logic
	"github.com/ducnm/oto-dealer/internal/middleware" // import middleware for auth, guard, cache and rate limiting
	"github.com/ducnm/oto-dealer/internal/model"
)

// RegisterRoutes registers routes that do not require authentication
// on the provided Echo instance plus the site-wide page guard.
// The guard runs before every request: it only redirects page
// navigation based on cookie presence; API routes are untouched.
func RegisterRoutes(e *echo.Echo) {
	e.Use(middleware.NewRouteGuard().Middleware())
	// Health check for load balancers and monitoring.
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers all authentication-related routes. The
// unauthenticated operations live under /api/auth; endpoints that need
// a verified session (me) additionally run CookieAuth. A Redis token
// bucket shields the credential endpoints from brute force when a
// Redis client is available.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string, rdb *redis.Client) {
	g := e.Group("/api/auth")
	g.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/logout", a.Logout)
	g.POST("/forgot-password", a.ForgotPassword)
	g.POST("/reset-password", a.ResetPassword)
	// Me verifies the cookie cryptographically; the page guard's
	// presence check never substitutes for this.
	g.GET("/me", a.Me, middleware.CookieAuth(jwtSecret))
}

// RegisterPublic registers the catalog, contact form and test drive
// endpoints. None of them require a session: the booking form collects
// contact details directly. Catalog GETs go through the Redis response
// cache when available.
func RegisterPublic(e *echo.Echo, cars *handler.CarHandler, contact *handler.ContactHandler, td *handler.TestDriveHandler, rdb *redis.Client) {
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)
	e.GET("/api/cars", cars.List, cache)
	e.GET("/api/cars/:id", cars.Get, cache)

	e.POST("/api/contact", contact.Create)

	e.GET("/api/test-drive/available-slots", td.AvailableSlots)
	e.POST("/api/test-drive", td.Create)
}

// RegisterOrders registers checkout endpoints behind CookieAuth.
func RegisterOrders(e *echo.Echo, o *handler.OrderHandler, jwtSecret string) {
	g := e.Group("/api/orders")
	g.Use(middleware.CookieAuth(jwtSecret))
	g.POST("", o.Create)
	g.GET("", o.List)
	g.GET("/:id", o.Get)
}

// RegisterAdmin registers staff-only booking management endpoints.
// CookieAuth verifies the session and RequireRole narrows it to admins.
func RegisterAdmin(e *echo.Echo, td *handler.TestDriveHandler, jwtSecret string) {
	g := e.Group("/api/test-drive")
	g.Use(middleware.CookieAuth(jwtSecret))
	g.Use(middleware.RequireRole(model.RoleAdmin))
	g.GET("", td.List)
	g.PATCH("/:id/status", td.UpdateStatus)
}
