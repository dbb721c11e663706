package utils

import (
	"github.com/gofiber/fiber/v2"
)

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorBody  `json:"error,omitempty"`
}

var statusCodes = map[int]string{
	fiber.StatusBadRequest:          "BAD_REQUEST",
	fiber.StatusUnauthorized:        "UNAUTHORIZED",
	fiber.StatusForbidden:           "FORBIDDEN",
	fiber.StatusNotFound:            "NOT_FOUND",
	fiber.StatusMethodNotAllowed:    "METHOD_NOT_ALLOWED",
	fiber.StatusTooManyRequests:     "RATE_LIMIT_EXCEEDED",
	fiber.StatusInternalServerError: "INTERNAL_ERROR",
	fiber.StatusBadGateway:          "BAD_GATEWAY",
	fiber.StatusServiceUnavailable:  "SERVICE_UNAVAILABLE",
	fiber.StatusGatewayTimeout:      "TIMEOUT",
}

// ErrorResponse writes an error body whose code is derived from status.
func ErrorResponse(c *fiber.Ctx, status int, message string, err error) error {
	code, ok := statusCodes[status]
	if !ok {
		code = "ERROR"
	}
	return CodedErrorResponse(c, status, code, message, err)
}

// CodedErrorResponse writes {"success":false,"error":{...}} with an explicit code.
func CodedErrorResponse(c *fiber.Ctx, status int, code, message string, err error) error {
	body := &ErrorBody{Code: code, Message: message}
	if err != nil {
		body.Details = err.Error()
	}
	return c.Status(status).JSON(Response{Success: false, Error: body})
}

func SuccessResponse(c *fiber.Ctx, message string, data interface{}) error {
	return c.Status(fiber.StatusOK).JSON(Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

func UnauthorizedResponse(c *fiber.Ctx, message string) error {
	return ErrorResponse(c, fiber.StatusUnauthorized, message, nil)
}
