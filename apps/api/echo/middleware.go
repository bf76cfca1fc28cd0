package echoapi

import (
	"github.com/labstack/echo/v4"
)

func adminMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			if getContextSession(ctx).IsAdmin() {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}
