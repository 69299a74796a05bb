package appuser

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
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const entityName = "App user"

type CreateAppUserRequest struct {
	Name   string `json:"name" validate:"required,min=2,max=100"`
	Mobile string `json:"mobile" validate:"required,mobile"`
	Gstin  string `json:"gstin" validate:"omitempty,gstin"`
}

// UpdateAppUserRequest is partial: only the fields present in the payload change.
type UpdateAppUserRequest struct {
	Name   *string `json:"name" validate:"omitempty,min=2,max=100"`
	Mobile *string `json:"mobile" validate:"omitempty,mobile"`
	Gstin  *string `json:"gstin"`
}

func trimPtr(s *string, upper bool) {
	if s == nil {
		return
	}
	*s = strings.TrimSpace(*s)
	if upper {
		*s = strings.ToUpper(*s)
	}
}

func mobileTaken(tx *gorm.DB, accountID uuid.UUID, mobile string, exclude uuid.UUID) (bool, error) {
	q := tx.Model(&models.AppUser{}).Scopes(database.AccountScope(accountID)).Where("mobile = ?", mobile)
	if exclude != uuid.Nil {
		q = q.Where("id <> ?", exclude)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func ListAppUsersHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		accountID, err := auth.AccountID(c)
		if err != nil {
			return err
		}

		appUsers := make([]models.AppUser, 0)
		if err := db.WithContext(c.UserContext()).
			Scopes(database.AccountScope(accountID)).
			Order("created_at DESC").
			Find(&appUsers).Error; err != nil {
			return apperr.Internal("Error fetching app users", err)
		}

		return response.OK(c, "", fiber.Map{"appusers": appUsers})
	}
}

func CreateAppUserHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		accountID, err := auth.AccountID(c)
		if err != nil {
			return err
		}

		var body CreateAppUserRequest
		if err := c.BodyParser(&body); err != nil {
			return apperr.Validation("body", "Invalid request body")
		}
		body.Name = strings.TrimSpace(body.Name)
		body.Mobile = strings.TrimSpace(body.Mobile)
		body.Gstin = strings.ToUpper(strings.TrimSpace(body.Gstin))
		if body.Name == "" || body.Mobile == "" {
			return apperr.Validation("", "Name and mobile are required")
		}
		if err := validation.Struct(body); err != nil {
			return err
		}

		tx := db.WithContext(c.UserContext())
		taken, err := mobileTaken(tx, accountID, body.Mobile, uuid.Nil)
		if err != nil {
			return apperr.Internal("Error creating app user", err)
		}
		if taken {
			return apperr.Conflict("mobile", "App user with this mobile already exists")
		}

		appUser := models.AppUser{
			AccountID: accountID,
			Name:      body.Name,
			Mobile:    body.Mobile,
			Gstin:     body.Gstin,
		}
		err = tx.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&appUser).Error; err != nil {
				return err
			}
			return audit.WriteLog(tx, audit.LogOptions{
				AccountID:   accountID,
				EntityType:  audit.EntityAppUser,
				EntityID:    appUser.ID,
				Action:      models.AuditActionCreate,
				Description: "App user created: " + appUser.Name,
				After:       appUser,
			})
		})
		if err != nil {
			if database.IsDuplicate(err) {
				return apperr.Conflict("mobile", "App user with this mobile already exists")
			}
			return apperr.Internal("Error creating app user", err)
		}

		return response.Created(c, "App user created successfully", fiber.Map{"appuser": appUser})
	}
}

func UpdateAppUserHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		accountID, err := auth.AccountID(c)
		if err != nil {
			return err
		}
		id, err := response.ParamID(c, entityName)
		if err != nil {
			return err
		}

		var body UpdateAppUserRequest
		if err := c.BodyParser(&body); err != nil {
			return apperr.Validation("body", "Invalid request body")
		}
		trimPtr(body.Name, false)
		trimPtr(body.Mobile, false)
		trimPtr(body.Gstin, true)

		// A blank name or mobile counts as absent; a blank gstin clears it.
		if body.Name != nil && *body.Name == "" {
			body.Name = nil
		}
		if body.Mobile != nil && *body.Mobile == "" {
			body.Mobile = nil
		}
		if body.Name == nil && body.Mobile == nil && body.Gstin == nil {
			return apperr.Validation("", "Nothing to update")
		}
		if err := validation.Struct(body); err != nil {
			return err
		}
		if body.Gstin != nil && *body.Gstin != "" && !validation.IsGSTIN(*body.Gstin) {
			return apperr.Validation("gstin", "Invalid GSTIN format")
		}

		tx := db.WithContext(c.UserContext())

		var appUser models.AppUser
		if err := tx.Scopes(database.AccountScope(accountID)).First(&appUser, "id = ?", id).Error; err != nil {
			if database.IsNotFound(err) {
				return apperr.NotFound(entityName)
			}
			return apperr.Internal("Error updating app user", err)
		}
		before := appUser

		if body.Name != nil {
			appUser.Name = *body.Name
		}
		if body.Mobile != nil {
			taken, err := mobileTaken(tx, accountID, *body.Mobile, appUser.ID)
			if err != nil {
				return apperr.Internal("Error updating app user", err)
			}
			if taken {
				return apperr.Conflict("mobile", "Another app user with this mobile already exists")
			}
			appUser.Mobile = *body.Mobile
		}
		if body.Gstin != nil {
			appUser.Gstin = *body.Gstin
		}

		err = tx.Transaction(func(tx *gorm.DB) error {
			if err := tx.Save(&appUser).Error; err != nil {
				return err
			}
			return audit.WriteLog(tx, audit.LogOptions{
				AccountID:   accountID,
				EntityType:  audit.EntityAppUser,
				EntityID:    appUser.ID,
				Action:      models.AuditActionUpdate,
				Description: "App user updated: " + appUser.Name,
				Before:      before,
				After:       appUser,
			})
		})
		if err != nil {
			if database.IsDuplicate(err) {
				return apperr.Conflict("mobile", "Another app user with this mobile already exists")
			}
			return apperr.Internal("Error updating app user", err)
		}

		return response.OK(c, "App user updated successfully", fiber.Map{"appuser": appUser})
	}
}

// DeleteAppUserHandler keeps invoices billed to the app user; their snapshots remain.
func DeleteAppUserHandler(db *gorm.DB) fiber.Handler {
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
			var appUser models.AppUser
			if err := tx.Scopes(database.AccountScope(accountID)).First(&appUser, "id = ?", id).Error; err != nil {
				return err
			}
			if err := tx.Delete(&appUser).Error; err != nil {
				return err
			}
			return audit.WriteLog(tx, audit.LogOptions{
				AccountID:   accountID,
				EntityType:  audit.EntityAppUser,
				EntityID:    appUser.ID,
				Action:      models.AuditActionDelete,
				Description: "App user deleted: " + appUser.Name,
				Before:      appUser,
			})
		})
		if err != nil {
			if database.IsNotFound(err) {
				return apperr.NotFound(entityName)
			}
			return apperr.Internal("Error deleting app user", err)
		}

		return response.OK(c, "App user deleted successfully", nil)
	}
}
