package middleware

// identity.go defines helpers shared across middleware files for naming
// the caller a request belongs to. Rate limit keys are built from this,
// so a scraper fleet authenticating as one account shares one bucket.

import (
	"fmt"

	"github.com/labstack/echo/v4"
)

// currentUserID extracts the caller identifier stored by JWTAuth. It
// returns "anon" for unauthenticated requests so public routes still
// produce a usable key.
func currentUserID(c echo.Context) string {
	if v := c.Get("user_id"); v != nil {
		switch s := v.(type) {
		case string:
			if s != "" {
				return s
			}
		case float64:
			return fmt.Sprintf("%.0f", s)
		}
	}
	return "anon"
}
