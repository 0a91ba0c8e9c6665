package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
)

// RouteGuard implements the coarse first layer of a two-layer access
// model for server-rendered pages. It only checks that a token cookie
// EXISTS: an expired or forged cookie passes this layer and is caught
// later by CookieAuth on the endpoints that actually serve data. The
// guard therefore decides redirects, never authentication.
//
//   - A request to a protected prefix without a cookie is redirected to
//     /login?callbackUrl=<original destination>.
//   - A request to an auth-only page (login/register) with a cookie is
//     redirected to the home page.
type RouteGuard struct {
	Protected []string // path prefixes that require a session cookie
	AuthOnly  []string // pages shown only to anonymous visitors
}

// NewRouteGuard returns a guard with the site's default page lists.
func NewRouteGuard() *RouteGuard {
	return &RouteGuard{
		Protected: []string{"/account", "/orders", "/checkout"},
		AuthOnly:  []string{"/login", "/register"},
	}
}

// Middleware evaluates the guard once per request before routing
// reaches page handlers. API paths are never redirected; they answer
// with JSON status codes instead.
func (g *RouteGuard) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := c.Request().URL.Path
			if strings.HasPrefix(path, "/api/") {
				return next(c)
			}

			cookie, err := c.Cookie(TokenCookie)
			hasCookie := err == nil && cookie.Value != ""

			if g.matches(g.Protected, path) && !hasCookie {
				dest := c.Request().URL.RequestURI()
				return c.Redirect(http.StatusFound, "/login?callbackUrl="+url.QueryEscape(dest))
			}
			if g.matches(g.AuthOnly, path) && hasCookie {
				return c.Redirect(http.StatusFound, "/")
			}
			return next(c)
		}
	}
}

func (g *RouteGuard) matches(prefixes []string, path string) bool {
	for _, p := range prefixes {
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}
