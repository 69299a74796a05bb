package audit

import (
	"freight-backend/internal/apperr"
	"freight-backend/internal/auth"
	"freight-backend/internal/database"
	"freight-backend/internal/models"
	"freight-backend/internal/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const maxListed = 200

// GET /api/audit-logs?entityType=invoice&entityId=<uuid>
func ListAuditLogsHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		accountID, err := auth.AccountID(c)
		if err != nil {
			return err
		}

		q := db.WithContext(c.UserContext()).
			Model(&models.AuditLog{}).
			Scopes(database.AccountScope(accountID))

		if entityType := c.Query("entityType"); entityType != "" {
			q = q.Where("entity_type = ?", entityType)
		}
		if raw := c.Query("entityId"); raw != "" {
			entityID, err := uuid.Parse(raw)
			if err != nil {
				return apperr.Validation("entityId", "Invalid entityId")
			}
			q = q.Where("entity_id = ?", entityID)
		}

		logs := make([]models.AuditLog, 0)
		if err := q.Order("created_at DESC").Limit(maxListed).Find(&logs).Error; err != nil {
			return apperr.Internal("Error fetching audit logs", err)
		}

		return response.OK(c, "", fiber.Map{"auditLogs": logs})
	}
}
