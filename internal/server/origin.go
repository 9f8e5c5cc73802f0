// ABOUTME: Same-origin checks for state-changing requests and websocket upgrades
// ABOUTME: Requests from a browser page on another host are refused with 403

package server

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
)

var ErrCrossOrigin = errors.New("cross-origin request")

// sameOrigin reports whether the Origin header, when present, names the host
// the request was sent to. Clients that send no Origin, such as curl and the
// CLI, pass.
func sameOrigin(r *http.Request) bool {
	origin := r.Header.Get(echo.HeaderOrigin)
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return false
	}
	return strings.EqualFold(u.Host, r.Host)
}

// originGuard rejects unsafe methods whose Origin is another host.
func originGuard() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			switch c.Request().Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
			default:
				if !sameOrigin(c.Request()) {
					return ErrCrossOrigin
				}
			}
			return next(c)
		}
	}
}
