package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type AuditAction string

const (
	AuditActionCreate AuditAction = "create"
	AuditActionUpdate AuditAction = "update"
	AuditActionDelete AuditAction = "delete"
)

type AuditLog struct {
	ID        uuid.UUID `gorm:"type:char(36);primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`

	AccountID uuid.UUID `gorm:"type:char(36);not null;index" json:"-"`

	// e.g. "invoice", "customer", "vehicle"
	EntityType string    `gorm:"size:50;index" json:"entityType"`
	EntityID   uuid.UUID `gorm:"type:char(36);index" json:"entityId"`

	Action      AuditAction `gorm:"size:20" json:"action"`
	Description string      `gorm:"size:255" json:"description"`

	// "null" when there is no state on that side (create has no before, delete no after).
	BeforeData datatypes.JSON `json:"before"`
	AfterData  datatypes.JSON `json:"after"`
}
