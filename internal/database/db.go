package database

import (
	"errors"
	"fmt"
	"strings"

	"freight-backend/internal/logger"
	"freight-backend/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Open connects through dialector. Driver errors are translated so unique
// violations surface as gorm.ErrDuplicatedKey on every supported database.
func Open(dialector gorm.Dialector, log *zap.Logger, logLevel string) (*gorm.DB, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.NewGormLogger(log, logger.GormLevel(logLevel)),
		TranslateError: true,
		// Rows are removed explicitly with their invoice; references to customers
		// and app users may outlive the referenced record.
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return db, nil
}

func OpenPostgres(dsn string, log *zap.Logger, logLevel string) (*gorm.DB, error) {
	return Open(postgres.Open(dsn), log, logLevel)
}

// uniqueIndexes are the storage-level guarantees behind the friendly pre-checks
// done by the handlers. NULL app_user_id values never collide with each other.
var uniqueIndexes = []string{
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_invoices_account_invoice_id ON invoices (account_id, invoice_id)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_invoices_account_app_user_invoice_no ON invoices (account_id, app_user_id, invoice_no)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_customers_account_gstin ON customers (account_id, gstin) WHERE gstin <> ''`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_vehicles_account_vehicle_number ON vehicles (account_id, vehicle_number)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_app_users_account_mobile ON app_users (account_id, mobile)`,
}

func Migrate(db *gorm.DB, log *zap.Logger) error {
	err := db.AutoMigrate(
		&models.Account{},
		&models.Customer{},
		&models.Vehicle{},
		&models.Location{},
		&models.AppUser{},
		&models.Invoice{},
		&models.InvoiceRow{},
		&models.AuditLog{},
	)
	if err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	for _, stmt := range uniqueIndexes {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("creating index: %w", err)
		}
	}

	log.Info("database migrated", zap.Int("unique_indexes", len(uniqueIndexes)))
	return nil
}

// AccountScope restricts a query to one account's records.
func AccountScope(accountID uuid.UUID) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("account_id = ?", accountID)
	}
}

// IsDuplicate reports a unique index violation.
func IsDuplicate(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "duplicate key value")
}

func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
