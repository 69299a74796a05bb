package models

import "github.com/google/uuid"

// AppUser is a secondary contact billed through invoices; it is not a login.
type AppUser struct {
	Base
	AccountID uuid.UUID `gorm:"type:char(36);not null;index" json:"-"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	Mobile    string    `gorm:"size:10;not null" json:"mobile"`
	Gstin     string    `gorm:"size:15;not null;default:''" json:"gstin"`
}
