package middleware

import (
	"sync"

	"github.com/labstack/echo/v4"
)

// Serialize runs handlers one at a time under mu. The clinic services keep
// plain in-memory state and are not safe for concurrent use.
func Serialize(mu *sync.Mutex) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			mu.Lock()
			defer mu.Unlock()
			return next(c)
		}
	}
}
