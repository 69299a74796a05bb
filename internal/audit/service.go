package audit

import (
	"encoding/json"
	"fmt"

	"freight-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	EntityInvoice  = "invoice"
	EntityCustomer = "customer"
	EntityVehicle  = "vehicle"
	EntityLocation = "location"
	EntityAppUser  = "app_user"
)

type LogOptions struct {
	AccountID   uuid.UUID
	EntityType  string
	EntityID    uuid.UUID
	Action      models.AuditAction
	Description string
	Before      any
	After       any
}

// WriteLog records one mutation. Pass the transaction that performs the
// mutation so the entry commits or rolls back with it.
func WriteLog(tx *gorm.DB, opts LogOptions) error {
	before, err := snapshot(opts.Before)
	if err != nil {
		return err
	}
	after, err := snapshot(opts.After)
	if err != nil {
		return err
	}

	entry := models.AuditLog{
		ID:          uuid.New(),
		AccountID:   opts.AccountID,
		EntityType:  opts.EntityType,
		EntityID:    opts.EntityID,
		Action:      opts.Action,
		Description: opts.Description,
		BeforeData:  before,
		AfterData:   after,
	}
	if err := tx.Create(&entry).Error; err != nil {
		return fmt.Errorf("writing audit log: %w", err)
	}
	return nil
}

// snapshot encodes v; a missing side is stored as the JSON literal null.
func snapshot(v any) (datatypes.JSON, error) {
	if v == nil {
		return datatypes.JSON("null"), nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding audit snapshot: %w", err)
	}
	return datatypes.JSON(b), nil
}
