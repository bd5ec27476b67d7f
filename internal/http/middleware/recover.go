package middleware

import (
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/gofiber/fiber/v2"
)

// Recover turns a panicking handler into a 500 passed to the app's error handler.
func Recover(log *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				rid, _ := c.Locals(RequestIDLocalKey).(string)
				log.ErrorContext(c.UserContext(), "handler panicked",
					slog.String("request_id", rid),
					slog.String("path", c.Path()),
					slog.String("panic", fmt.Sprint(r)),
					slog.String("stack", string(debug.Stack())),
				)
				err = fiber.ErrInternalServerError
			}
		}()
		return c.Next()
	}
}
