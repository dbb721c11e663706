package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"face-insight-api/pkg/logger"
	"face-insight-api/pkg/utils"
)

// ErrorHandler renders errors that escape a handler. Internal error text is
// logged but not returned to the client.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "An error occurred"

		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
			message = fe.Message
		}

		logger.Error(logger.CategoryAPI, "error_handler", "Request error occurred", err, map[string]interface{}{
			"status_code": code,
			"path":        c.Path(),
			"method":      c.Method(),
			"request_id":  RequestID(c),
		})

		if fe == nil {
			err = nil
		}
		return utils.ErrorResponse(c, code, message, err)
	}
}
