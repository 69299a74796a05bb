package vehicle

import (
	"strings"

	"freight-backend/internal/apperr"
	"freight-backend/internal/audit"
	"freight-backend/internal/auth"
	"freight-backend/internal/database"
	"freight-backend/internal/models"
	"freight-backend/internal/response"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const entityName = "Vehicle"

var errDuplicateNumber = apperr.Conflict("vehicleNumber", "Vehicle number already exists")

type VehicleRequest struct {
	VehicleNumber string           `json:"vehicleNumber"`
	Capacity      *decimal.Decimal `json:"capacity"`
}

func (r *VehicleRequest) normalize() error {
	r.VehicleNumber = strings.ToUpper(strings.TrimSpace(r.VehicleNumber))
	if r.VehicleNumber == "" {
		return apperr.Validation("vehicleNumber", "Vehicle number is required")
	}
	if len(r.VehicleNumber) > 20 {
		return apperr.Validation("vehicleNumber", "Vehicle number must be at most 20 characters")
	}
	if r.Capacity == nil {
		return apperr.Validation("capacity", "Capacity is required")
	}
	if r.Capacity.IsNegative() {
		return apperr.Validation("capacity", "Capacity cannot be negative")
	}
	return nil
}

func ListVehiclesHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		accountID, err := auth.AccountID(c)
		if err != nil {
			return err
		}

		vehicles := make([]models.Vehicle, 0)
		if err := db.WithContext(c.UserContext()).
			Scopes(database.AccountScope(accountID)).
			Order("created_at DESC").
			Find(&vehicles).Error; err != nil {
			return apperr.Internal("Failed to fetch vehicles", err)
		}

		return response.OK(c, "", fiber.Map{"vehicles": vehicles})
	}
}

// CreateVehicleHandler relies on the (account, vehicle number) unique index for duplicates.
func CreateVehicleHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		accountID, err := auth.AccountID(c)
		if err != nil {
			return err
		}

		var body VehicleRequest
		if err := c.BodyParser(&body); err != nil {
			return apperr.Validation("body", "Invalid request body")
		}
		if err := body.normalize(); err != nil {
			return err
		}

		vehicle := models.Vehicle{
			AccountID:     accountID,
			VehicleNumber: body.VehicleNumber,
			Capacity:      *body.Capacity,
		}

		err = db.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&vehicle).Error; err != nil {
				return err
			}
			return audit.WriteLog(tx, audit.LogOptions{
				AccountID:   accountID,
				EntityType:  audit.EntityVehicle,
				EntityID:    vehicle.ID,
				Action:      models.AuditActionCreate,
				Description: "Vehicle created: " + vehicle.VehicleNumber,
				After:       vehicle,
			})
		})
		if err != nil {
			if database.IsDuplicate(err) {
				return errDuplicateNumber
			}
			return apperr.Internal("Failed to create vehicle", err)
		}

		return response.Created(c, "Vehicle created successfully", fiber.Map{"vehicle": vehicle})
	}
}

func UpdateVehicleHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		accountID, err := auth.AccountID(c)
		if err != nil {
			return err
		}
		id, err := response.ParamID(c, entityName)
		if err != nil {
			return err
		}

		var body VehicleRequest
		if err := c.BodyParser(&body); err != nil {
			return apperr.Validation("body", "Invalid request body")
		}
		if err := body.normalize(); err != nil {
			return err
		}

		var vehicle models.Vehicle
		err = db.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
			if err := tx.Scopes(database.AccountScope(accountID)).First(&vehicle, "id = ?", id).Error; err != nil {
				return err
			}
			before := vehicle
			vehicle.VehicleNumber = body.VehicleNumber
			vehicle.Capacity = *body.Capacity
			if err := tx.Save(&vehicle).Error; err != nil {
				return err
			}
			return audit.WriteLog(tx, audit.LogOptions{
				AccountID:   accountID,
				EntityType:  audit.EntityVehicle,
				EntityID:    vehicle.ID,
				Action:      models.AuditActionUpdate,
				Description: "Vehicle updated: " + vehicle.VehicleNumber,
				Before:      before,
				After:       vehicle,
			})
		})
		switch {
		case err == nil:
		case database.IsNotFound(err):
			return apperr.NotFound(entityName)
		case database.IsDuplicate(err):
			return errDuplicateNumber
		default:
			return apperr.Internal("Failed to update vehicle", err)
		}

		return response.OK(c, "Vehicle updated successfully", fiber.Map{"vehicle": vehicle})
	}
}

// DeleteVehicleHandler does not touch invoice rows; truck numbers on rows are plain text.
func DeleteVehicleHandler(db *gorm.DB) fiber.Handler {
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
			var vehicle models.Vehicle
			if err := tx.Scopes(database.AccountScope(accountID)).First(&vehicle, "id = ?", id).Error; err != nil {
				return err
			}
			if err := tx.Delete(&vehicle).Error; err != nil {
				return err
			}
			return audit.WriteLog(tx, audit.LogOptions{
				AccountID:   accountID,
				EntityType:  audit.EntityVehicle,
				EntityID:    vehicle.ID,
				Action:      models.AuditActionDelete,
				Description: "Vehicle deleted: " + vehicle.VehicleNumber,
				Before:      vehicle,
			})
		})
		if err != nil {
			if database.IsNotFound(err) {
				return apperr.NotFound(entityName)
			}
			return apperr.Internal("Failed to delete vehicle", err)
		}

		return response.OK(c, "Vehicle deleted successfully", nil)
	}
}
