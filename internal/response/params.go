package response

import (
	"freight-backend/internal/apperr"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// ParamID parses the ":id" route parameter. A malformed id cannot match any
// record, so it is reported as NotFound(entity).
func ParamID(c *fiber.Ctx, entity string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, apperr.NotFound(entity)
	}
	return id, nil
}
