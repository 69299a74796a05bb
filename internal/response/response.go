// Package response renders the JSON envelope shared by every endpoint:
//
//	{ "success": bool, "message"?: string, "error"?: string, ...payload }
package response

import (
	"errors"

	"freight-backend/internal/apperr"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func envelope(message string, payload fiber.Map) fiber.Map {
	body := fiber.Map{"success": true}
	if message != "" {
		body["message"] = message
	}
	for k, v := range payload {
		body[k] = v
	}
	return body
}

func OK(c *fiber.Ctx, message string, payload fiber.Map) error {
	return c.Status(fiber.StatusOK).JSON(envelope(message, payload))
}

func Created(c *fiber.Ctx, message string, payload fiber.Map) error {
	return c.Status(fiber.StatusCreated).JSON(envelope(message, payload))
}

// ErrorHandler is installed as fiber.Config.ErrorHandler. Internal errors surface
// their cause in "error"; this is an internal admin tool.
func ErrorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var appErr *apperr.Error
		if errors.As(err, &appErr) {
			body := fiber.Map{"success": false, "message": appErr.Message}
			if appErr.Kind == apperr.KindInternal {
				log.Error("request failed",
					zap.String("method", c.Method()),
					zap.String("path", c.Path()),
					zap.Error(err),
				)
				if appErr.Err != nil {
					body["error"] = appErr.Err.Error()
				}
			}
			return c.Status(appErr.Kind.Status()).JSON(body)
		}

		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(fiber.Map{"success": false, "message": fe.Message})
		}

		log.Error("unexpected error",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Internal server error",
			"error":   err.Error(),
		})
	}
}
