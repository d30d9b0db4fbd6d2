package middleware

import (
	"crypto/subtle"
	"net/http"
	"strconv"
	"strings"

	echo "github.com/labstack/echo/v4"
)

const ctxClientID = "client_id"

// ClientIDFromCtx extracts the authenticated client id set by APIKeyMiddleware.
func ClientIDFromCtx(c echo.Context) (string, bool) {
	id, ok := c.Get(ctxClientID).(string)
	return id, ok && id != ""
}

// APIKeyMiddleware authenticates requests using the X-API-Key header against
// the configured keys. The client id is the key's position ("key-0", ...), so
// keys themselves never reach logs or Redis. With no keys configured (dev)
// every request passes as "anonymous".
func APIKeyMiddleware(keys []string) echo.MiddlewareFunc {
	clean := make([]string, 0, len(keys))
	for _, k := range keys {
		if k = strings.TrimSpace(k); k != "" {
			clean = append(clean, k)
		}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if len(clean) == 0 {
				c.Set(ctxClientID, "anonymous")
				return next(c)
			}

			key := strings.TrimSpace(c.Request().Header.Get("X-API-Key"))
			if key == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "missing api key"})
			}

			for i, k := range clean {
				if subtle.ConstantTimeCompare([]byte(key), []byte(k)) == 1 {
					c.Set(ctxClientID, "key-"+strconv.Itoa(i))
					return next(c)
				}
			}

			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid api key"})
		}
	}
}
