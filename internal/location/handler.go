package location

import (
	"strings"

	"freight-backend/internal/apperr"
	"freight-backend/internal/audit"
	"freight-backend/internal/auth"
	"freight-backend/internal/database"
	"freight-backend/internal/models"
	"freight-backend/internal/response"
	"freight-backend/internal/validation"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const entityName = "Location"

type LocationRequest struct {
	Name string `json:"name" validate:"required,min=2,max=100"`
}

func (r *LocationRequest) normalize() error {
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return apperr.Validation("name", "Location name is required")
	}
	return validation.Struct(r)
}

func ListLocationsHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		accountID, err := auth.AccountID(c)
		if err != nil {
			return err
		}

		locations := make([]models.Location, 0)
		if err := db.WithContext(c.UserContext()).
			Scopes(database.AccountScope(accountID)).
			Order("created_at DESC").
			Find(&locations).Error; err != nil {
			return apperr.Internal("Error fetching locations", err)
		}

		return response.OK(c, "", fiber.Map{"locations": locations})
	}
}

func CreateLocationHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		accountID, err := auth.AccountID(c)
		if err != nil {
			return err
		}

		var body LocationRequest
		if err := c.BodyParser(&body); err != nil {
			return apperr.Validation("body", "Invalid request body")
		}
		if err := body.normalize(); err != nil {
			return err
		}

		location := models.Location{AccountID: accountID, Name: body.Name}
		err = db.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&location).Error; err != nil {
				return err
			}
			return audit.WriteLog(tx, audit.LogOptions{
				AccountID:   accountID,
				EntityType:  audit.EntityLocation,
				EntityID:    location.ID,
				Action:      models.AuditActionCreate,
				Description: "Location created: " + location.Name,
				After:       location,
			})
		})
		if err != nil {
			return apperr.Internal("Error creating location", err)
		}

		return response.Created(c, "Location created successfully", fiber.Map{"location": location})
	}
}

func UpdateLocationHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		accountID, err := auth.AccountID(c)
		if err != nil {
			return err
		}
		id, err := response.ParamID(c, entityName)
		if err != nil {
			return err
		}

		var body LocationRequest
		if err := c.BodyParser(&body); err != nil {
			return apperr.Validation("body", "Invalid request body")
		}
		if err := body.normalize(); err != nil {
			return err
		}

		var location models.Location
		err = db.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
			if err := tx.Scopes(database.AccountScope(accountID)).First(&location, "id = ?", id).Error; err != nil {
				return err
			}
			before := location
			location.Name = body.Name
			if err := tx.Save(&location).Error; err != nil {
				return err
			}
			return audit.WriteLog(tx, audit.LogOptions{
				AccountID:   accountID,
				EntityType:  audit.EntityLocation,
				EntityID:    location.ID,
				Action:      models.AuditActionUpdate,
				Description: "Location updated: " + location.Name,
				Before:      before,
				After:       location,
			})
		})
		if err != nil {
			if database.IsNotFound(err) {
				return apperr.NotFound(entityName)
			}
			return apperr.Internal("Error updating location", err)
		}

		return response.OK(c, "Location updated successfully", fiber.Map{"location": location})
	}
}

func DeleteLocationHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		accountID, err := auth.AccountID(c)
		if err != nil {
			return err
		}
		id, err := response.ParamID(c, entityName)
		if err != nil {
			return err
		}

		err = db.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
			var location models.Location
			if err := tx.Scopes(database.AccountScope(accountID)).First(&location, "id = ?", id).Error; err != nil {
				return err
			}
			if err := tx.Delete(&location).Error; err != nil {
				return err
			}
			return audit.WriteLog(tx, audit.LogOptions{
				AccountID:   accountID,
				EntityType:  audit.EntityLocation,
				EntityID:    location.ID,
				Action:      models.AuditActionDelete,
				Description: "Location deleted: " + location.Name,
				Before:      location,
			})
		})
		if err != nil {
			if database.IsNotFound(err) {
				return apperr.NotFound(entityName)
			}
			return apperr.Internal("Error deleting location", err)
		}

		return response.OK(c, "Location deleted successfully", nil)
	}
}
