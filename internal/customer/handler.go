package customer

import (
	"fmt"
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

const entityName = "Customer"

var errDuplicateGstin = apperr.Conflict("gstin", "Customer with this GSTIN already exists")

type CustomerRequest struct {
	Name       string                   `json:"name" validate:"required,min=2,max=100"`
	Gstin      string                   `json:"gstin" validate:"omitempty,gstin"`
	Taluka     string                   `json:"taluka" validate:"max=100"`
	District   string                   `json:"district" validate:"max=100"`
	Address    string                   `json:"address" validate:"max=255"`
	Products   []models.CustomerProduct `json:"products"`
	Consignors []string                 `json:"consignors"`
}

// normalize trims and uppercases the payload in place, then validates it.
func (r *CustomerRequest) normalize() error {
	r.Name = strings.TrimSpace(r.Name)
	r.Gstin = strings.ToUpper(strings.TrimSpace(r.Gstin))
	r.Taluka = strings.TrimSpace(r.Taluka)
	r.District = strings.TrimSpace(r.District)
	r.Address = strings.TrimSpace(r.Address)

	if r.Name == "" {
		return apperr.Validation("name", "Name is required")
	}
	if err := validation.Struct(r); err != nil {
		return err
	}

	products := make([]models.CustomerProduct, 0, len(r.Products))
	for i, p := range r.Products {
		p.ProductName = strings.TrimSpace(p.ProductName)
		if p.ProductName == "" {
			return apperr.Validation(fmt.Sprintf("products[%d].productName", i), "Product name is required")
		}
		if p.ProductRate.IsNegative() {
			return apperr.Validation(fmt.Sprintf("products[%d].productRate", i), "Product rate cannot be negative")
		}
		products = append(products, p)
	}
	r.Products = products

	consignors := make([]string, 0, len(r.Consignors))
	for _, name := range r.Consignors {
		if name = strings.TrimSpace(name); name != "" {
			consignors = append(consignors, name)
		}
	}
	r.Consignors = consignors
	return nil
}

func (r *CustomerRequest) apply(c *models.Customer) {
	c.Name = r.Name
	c.Gstin = r.Gstin
	c.Taluka = r.Taluka
	c.District = r.District
	c.Address = r.Address
	c.Products = r.Products
	c.Consignors = r.Consignors
}

// gstinTaken checks the friendly pre-condition; the partial unique index is the real guarantee.
func gstinTaken(tx *gorm.DB, accountID uuid.UUID, gstin string, exclude uuid.UUID) (bool, error) {
	if gstin == "" {
		return false, nil
	}
	q := tx.Model(&models.Customer{}).Scopes(database.AccountScope(accountID)).Where("gstin = ?", gstin)
	if exclude != uuid.Nil {
		q = q.Where("id <> ?", exclude)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func ListCustomersHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		accountID, err := auth.AccountID(c)
		if err != nil {
			return err
		}

		customers := make([]models.Customer, 0)
		if err := db.WithContext(c.UserContext()).
			Scopes(database.AccountScope(accountID)).
			Order("created_at DESC").
			Find(&customers).Error; err != nil {
			return apperr.Internal("Error fetching customers", err)
		}

		return response.OK(c, "", fiber.Map{"customers": customers})
	}
}

func CreateCustomerHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		accountID, err := auth.AccountID(c)
		if err != nil {
			return err
		}

		var body CustomerRequest
		if err := c.BodyParser(&body); err != nil {
			return apperr.Validation("body", "Invalid request body")
		}
		if err := body.normalize(); err != nil {
			return err
		}

		tx := db.WithContext(c.UserContext())
		taken, err := gstinTaken(tx, accountID, body.Gstin, uuid.Nil)
		if err != nil {
			return apperr.Internal("Error creating customer", err)
		}
		if taken {
			return errDuplicateGstin
		}

		customer := models.Customer{AccountID: accountID}
		body.apply(&customer)

		err = tx.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&customer).Error; err != nil {
				return err
			}
			return audit.WriteLog(tx, audit.LogOptions{
				AccountID:   accountID,
				EntityType:  audit.EntityCustomer,
				EntityID:    customer.ID,
				Action:      models.AuditActionCreate,
				Description: "Customer created: " + customer.Name,
				After:       customer,
			})
		})
		if err != nil {
			if database.IsDuplicate(err) {
				return errDuplicateGstin
			}
			return apperr.Internal("Error creating customer", err)
		}

		return response.Created(c, "Customer created successfully", fiber.Map{"customer": customer})
	}
}

func UpdateCustomerHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		accountID, err := auth.AccountID(c)
		if err != nil {
			return err
		}
		id, err := response.ParamID(c, entityName)
		if err != nil {
			return err
		}

		var body CustomerRequest
		if err := c.BodyParser(&body); err != nil {
			return apperr.Validation("body", "Invalid request body")
		}
		if err := body.normalize(); err != nil {
			return err
		}

		tx := db.WithContext(c.UserContext())

		var customer models.Customer
		if err := tx.Scopes(database.AccountScope(accountID)).First(&customer, "id = ?", id).Error; err != nil {
			if database.IsNotFound(err) {
				return apperr.NotFound(entityName)
			}
			return apperr.Internal("Error updating customer", err)
		}

		taken, err := gstinTaken(tx, accountID, body.Gstin, customer.ID)
		if err != nil {
			return apperr.Internal("Error updating customer", err)
		}
		if taken {
			return errDuplicateGstin
		}

		before := customer
		body.apply(&customer)

		err = tx.Transaction(func(tx *gorm.DB) error {
			if err := tx.Save(&customer).Error; err != nil {
				return err
			}
			return audit.WriteLog(tx, audit.LogOptions{
				AccountID:   accountID,
				EntityType:  audit.EntityCustomer,
				EntityID:    customer.ID,
				Action:      models.AuditActionUpdate,
				Description: "Customer updated: " + customer.Name,
				Before:      before,
				After:       customer,
			})
		})
		if err != nil {
			if database.IsDuplicate(err) {
				return errDuplicateGstin
			}
			return apperr.Internal("Error updating customer", err)
		}

		return response.OK(c, "Customer updated successfully", fiber.Map{"customer": customer})
	}
}

// DeleteCustomerHandler leaves invoices that reference the customer untouched;
// they keep their name snapshot and populate the reference as null.
func DeleteCustomerHandler(db *gorm.DB) fiber.Handler {
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
			var customer models.Customer
			if err := tx.Scopes(database.AccountScope(accountID)).First(&customer, "id = ?", id).Error; err != nil {
				return err
			}
			if err := tx.Delete(&customer).Error; err != nil {
				return err
			}
			return audit.WriteLog(tx, audit.LogOptions{
				AccountID:   accountID,
				EntityType:  audit.EntityCustomer,
				EntityID:    customer.ID,
				Action:      models.AuditActionDelete,
				Description: "Customer deleted: " + customer.Name,
				Before:      customer,
			})
		})
		if err != nil {
			if database.IsNotFound(err) {
				return apperr.NotFound(entityName)
			}
			return apperr.Internal("Error deleting customer", err)
		}

		return response.OK(c, "Customer deleted successfully", nil)
	}
}
