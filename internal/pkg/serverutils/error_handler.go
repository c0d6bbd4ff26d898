package serverutils

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"saraswati-be/internal/apperror"
	"saraswati-be/internal/pkg/logger"
)

// NewErrorHandler builds the fiber error handler that maps the workflow
// error taxonomy onto HTTP statuses and the standard response envelope.
func NewErrorHandler(log logger.ILogger) fiber.ErrorHandler {
	return func(ctx *fiber.Ctx, err error) error {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			status := apperror.HTTPStatus(appErr)
			if status >= 500 {
				log.Error("http", "request failed", map[string]interface{}{
					"path":   ctx.Path(),
					"method": ctx.Method(),
					"code":   appErr.Code(),
					"error":  appErr.Error(),
				})
			}
			return ctx.Status(status).JSON(ErrorResponse(appErr.Message, appErr.Code(), nil))
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Message, "http_error", nil))
		}

		log.Error("http", "unhandled error", map[string]interface{}{
			"path":   ctx.Path(),
			"method": ctx.Method(),
			"error":  err.Error(),
		})
		return ctx.Status(fiber.StatusInternalServerError).JSON(ErrorResponse("internal server error", "internal_error", nil))
	}
}
