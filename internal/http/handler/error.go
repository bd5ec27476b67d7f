package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"propdocs/internal/draft"
	"propdocs/internal/http/middleware"
	"propdocs/internal/logger"
	"propdocs/internal/service"
)

// errorPayload defines the standardized error response body.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// requestIDFromCtx extracts request_id previously stored by middleware.RequestID.
func requestIDFromCtx(c *fiber.Ctx) string {
	if v := c.Locals(middleware.RequestIDLocalKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// writeError writes a standardized JSON error response without leaking internal errors.
//
// Parameters:
// - status: HTTP status code to return
// - code: machine-readable short error code (e.g., "INVALID_ID", "NOT_FOUND", "INTERNAL_ERROR")
// - message: human-readable safe message (no internal details)
func writeError(c *fiber.Ctx, status int, code, message string) error {
	res := errorPayload{
		RequestID: requestIDFromCtx(c),
		Error: errorEnvelope{
			Code:    code,
			Message: message,
		},
	}
	return c.Status(status).JSON(res)
}

// writeServiceError maps a service or draft error onto the error envelope.
// Validation messages are passed through; everything else gets a fixed message.
func writeServiceError(c *fiber.Ctx, err error) error {
	var (
		valErr *draft.ValidationError
		upErr  *service.UploadError
		delErr *service.DeleteError
	)
	switch {
	case errors.As(err, &valErr):
		return writeError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", valErr.Error())
	case errors.Is(err, service.ErrNotFound):
		return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "document not found")
	case errors.Is(err, service.ErrPropertyNotFound):
		return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "property not found")
	case errors.Is(err, service.ErrIDRequired),
		errors.Is(err, service.ErrPropertyRequired),
		errors.Is(err, service.ErrReaderNil),
		errors.Is(err, service.ErrPathRequired),
		errors.Is(err, service.ErrPathMismatch),
		errors.Is(err, service.ErrTagNameRequired):
		return writeError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.As(err, &upErr):
		logger.Log.WarnContext(c.UserContext(), "upload failed",
			"request_id", requestIDFromCtx(c), "op", upErr.Op, "error", upErr.Err.Error())
		return writeError(c, fiber.StatusBadGateway, "UPLOAD_FAILED", "upload failed, please retry")
	case errors.As(err, &delErr):
		if delErr.Orphaned {
			return writeError(c, fiber.StatusBadGateway, "DELETE_PARTIAL", "document removed but some files could not be deleted")
		}
		logger.Log.WarnContext(c.UserContext(), "delete failed",
			"request_id", requestIDFromCtx(c), "document_id", delErr.DocumentID, "error", delErr.Err.Error())
		return writeError(c, fiber.StatusBadGateway, "DELETE_FAILED", "delete failed, please retry")
	default:
		logger.Log.ErrorContext(c.UserContext(), "request failed",
			"request_id", requestIDFromCtx(c), "path", c.Path(), "error", err.Error())
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		var e *fiber.Error
		if errors.As(err, &e) {
			status = e.Code
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, "BAD_REQUEST", "bad request")
		case fiber.StatusNotFound:
			return writeError(c, status, "NOT_FOUND", "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "METHOD_NOT_ALLOWED", "method not allowed")
		case fiber.StatusRequestEntityTooLarge:
			return writeError(c, status, "PAYLOAD_TOO_LARGE", "upload exceeds the size limit")
		default:
			return writeError(c, status, "INTERNAL_ERROR", "internal server error")
		}
	}
}
