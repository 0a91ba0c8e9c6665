package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
	"net/http" // HTTP status codes for responses

	"github.com/labstack/echo/v4" // Echo framework used for defining middleware and handlers

	"github.com/ducnm/oto-dealer/internal/utils"
)

// TokenCookie is the name of the HTTP-only cookie carrying the session
// token. The cookie is unreadable by client script, so the client
// re-establishes auth state through GET /api/auth/me.
const TokenCookie = "token"

// CookieAuth returns an Echo middleware that validates the session
// token cookie and injects the verified claims into the request
// context. The provided secret must match the one used when issuing
// tokens. Handlers behind this middleware read the identity via
// c.Get("user_id"), c.Get("email") and c.Get("role").
func CookieAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(TokenCookie)
			if err != nil || cookie.Value == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Vui lòng đăng nhập"})
			}
			claims, err := utils.VerifySessionToken(secret, cookie.Value)
			if err != nil {
				// Malformed, tampered and expired tokens all land here.
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Phiên đăng nhập không hợp lệ"})
			}
			c.Set("user_id", claims.UserID)
			c.Set("email", claims.Email)
			c.Set("role", claims.Role)
			return next(c)
		}
	}
}
