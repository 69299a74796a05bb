// Package invoice stores freight invoices: cross-account reference checks,
// compound uniqueness, server-side totals, filtered pagination and exports.
package invoice

import (
	"context"
	"strings"

	"freight-backend/internal/apperr"
	"freight-backend/internal/audit"
	"freight-backend/internal/database"
	"freight-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const entityName = "Invoice"

var errDuplicateInvoiceID = apperr.Conflict("invoiceId", "Invoice ID already exists")

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

func orderedRows(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

// populated loads the rows and the live customer and app user behind an invoice.
func populated(db *gorm.DB) *gorm.DB {
	return db.Preload("Rows", orderedRows).Preload("Customer").Preload("AppUser")
}

func (s *Service) Get(ctx context.Context, accountID, id uuid.UUID) (*models.Invoice, error) {
	var inv models.Invoice
	err := populated(s.db.WithContext(ctx)).
		Scopes(database.AccountScope(accountID)).
		First(&inv, "id = ?", id).Error
	if err != nil {
		if database.IsNotFound(err) {
			return nil, apperr.NotFound(entityName)
		}
		return nil, apperr.Internal("Error fetching invoice", err)
	}
	return &inv, nil
}

// Create validates references, then uniqueness, then the payload, and writes
// the invoice, its rows and the audit entry in one transaction.
func (s *Service) Create(ctx context.Context, accountID uuid.UUID, in *Input) (*models.Invoice, error) {
	const failure = "Error creating invoice"
	db := s.db.WithContext(ctx)

	inv := models.Invoice{AccountID: accountID}
	if err := resolveReferences(db, accountID, in, &inv, failure); err != nil {
		return nil, err
	}
	if err := checkInvoiceID(db, accountID, in.normalizedInvoiceID(), uuid.Nil, failure); err != nil {
		return nil, err
	}
	if err := in.build(&inv); err != nil {
		return nil, err
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&inv).Error; err != nil {
			return err
		}
		if err := createRows(tx, inv.ID, inv.Rows); err != nil {
			return err
		}
		return audit.WriteLog(tx, audit.LogOptions{
			AccountID:   accountID,
			EntityType:  audit.EntityInvoice,
			EntityID:    inv.ID,
			Action:      models.AuditActionCreate,
			Description: "Invoice created: " + inv.InvoiceID,
			After:       inv,
		})
	})
	if err != nil {
		return nil, writeError(db, accountID, inv.InvoiceID, inv.ID, err, failure)
	}

	return s.Get(ctx, accountID, inv.ID)
}

// Update replaces every mutable field and all rows. The id, account and
// creation time are kept.
func (s *Service) Update(ctx context.Context, accountID, id uuid.UUID, in *Input) (*models.Invoice, error) {
	const failure = "Error updating invoice"
	db := s.db.WithContext(ctx)

	existing, err := s.Get(ctx, accountID, id)
	if err != nil {
		return nil, err
	}

	inv := models.Invoice{Base: existing.Base, AccountID: accountID}
	if err := resolveReferences(db, accountID, in, &inv, failure); err != nil {
		return nil, err
	}
	if err := checkInvoiceID(db, accountID, in.normalizedInvoiceID(), id, failure); err != nil {
		return nil, err
	}
	if err := in.build(&inv); err != nil {
		return nil, err
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(&inv).Error; err != nil {
			return err
		}
		if err := tx.Where("invoice_id = ?", inv.ID).Delete(&models.InvoiceRow{}).Error; err != nil {
			return err
		}
		if err := createRows(tx, inv.ID, inv.Rows); err != nil {
			return err
		}
		return audit.WriteLog(tx, audit.LogOptions{
			AccountID:   accountID,
			EntityType:  audit.EntityInvoice,
			EntityID:    inv.ID,
			Action:      models.AuditActionUpdate,
			Description: "Invoice updated: " + inv.InvoiceID,
			Before:      existing,
			After:       inv,
		})
	})
	if err != nil {
		return nil, writeError(db, accountID, inv.InvoiceID, inv.ID, err, failure)
	}

	return s.Get(ctx, accountID, inv.ID)
}

// Delete removes the invoice and its rows. Referenced customers, app users and
// vehicles are not touched.
func (s *Service) Delete(ctx context.Context, accountID, id uuid.UUID) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var inv models.Invoice
		if err := tx.Preload("Rows", orderedRows).
			Scopes(database.AccountScope(accountID)).
			First(&inv, "id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Where("invoice_id = ?", inv.ID).Delete(&models.InvoiceRow{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.Invoice{}, "id = ?", inv.ID).Error; err != nil {
			return err
		}
		return audit.WriteLog(tx, audit.LogOptions{
			AccountID:   accountID,
			EntityType:  audit.EntityInvoice,
			EntityID:    inv.ID,
			Action:      models.AuditActionDelete,
			Description: "Invoice deleted: " + inv.InvoiceID,
			Before:      inv,
		})
	})
	if err != nil {
		if database.IsNotFound(err) {
			return apperr.NotFound(entityName)
		}
		return apperr.Internal("Error deleting invoice", err)
	}
	return nil
}

func createRows(tx *gorm.DB, invoiceID uuid.UUID, rows []models.InvoiceRow) error {
	for i := range rows {
		rows[i].ID = uuid.Nil
		rows[i].InvoiceID = invoiceID
		rows[i].Position = i
	}
	return tx.Create(&rows).Error
}

// resolveReferences checks that a given customer and app user belong to the
// account and copies their name snapshots. Without an id the submitted names are kept.
func resolveReferences(db *gorm.DB, accountID uuid.UUID, in *Input, inv *models.Invoice, failure string) error {
	inv.CustomerID = nil
	inv.CustomerName = strings.TrimSpace(in.CustomerName)
	if raw := strings.TrimSpace(in.CustomerID); raw != "" {
		var customer models.Customer
		if err := findOwned(db, accountID, raw, &customer); err != nil {
			if database.IsNotFound(err) {
				return apperr.NotFound("Customer")
			}
			return apperr.Internal(failure, err)
		}
		inv.CustomerID = &customer.ID
		inv.CustomerName = customer.Name
	}

	inv.AppUserID = nil
	inv.AppUserName = strings.TrimSpace(in.AppUserName)
	inv.AppUserGstin = strings.ToUpper(strings.TrimSpace(in.AppUserGstin))
	if raw := strings.TrimSpace(in.AppUserID); raw != "" {
		var appUser models.AppUser
		if err := findOwned(db, accountID, raw, &appUser); err != nil {
			if database.IsNotFound(err) {
				return apperr.NotFound("App User")
			}
			return apperr.Internal(failure, err)
		}
		inv.AppUserID = &appUser.ID
		inv.AppUserName = appUser.Name
		inv.AppUserGstin = appUser.Gstin
	}
	return nil
}

// findOwned loads the record with the given id inside the account. A malformed
// id is reported as not found.
func findOwned(db *gorm.DB, accountID uuid.UUID, rawID string, dest any) error {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return gorm.ErrRecordNotFound
	}
	return db.Scopes(database.AccountScope(accountID)).First(dest, "id = ?", id).Error
}

func invoiceIDTaken(db *gorm.DB, accountID uuid.UUID, invoiceID string, exclude uuid.UUID) (bool, error) {
	q := db.Model(&models.Invoice{}).
		Scopes(database.AccountScope(accountID)).
		Where("invoice_id = ?", invoiceID)
	if exclude != uuid.Nil {
		q = q.Where("id <> ?", exclude)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func checkInvoiceID(db *gorm.DB, accountID uuid.UUID, invoiceID string, exclude uuid.UUID, failure string) error {
	taken, err := invoiceIDTaken(db, accountID, invoiceID, exclude)
	if err != nil {
		return apperr.Internal(failure, err)
	}
	if taken {
		return errDuplicateInvoiceID
	}
	return nil
}

// writeError maps a failed write transaction. A unique violation is either a
// lost race on the invoice id or a repeated invoice number for the app user.
func writeError(db *gorm.DB, accountID uuid.UUID, invoiceID string, self uuid.UUID, err error, failure string) error {
	if !database.IsDuplicate(err) {
		return apperr.Internal(failure, err)
	}
	if taken, checkErr := invoiceIDTaken(db, accountID, invoiceID, self); checkErr == nil && taken {
		return errDuplicateInvoiceID
	}
	return apperr.Conflict("invoiceNo", "Invoice number already exists for this app user")
}
