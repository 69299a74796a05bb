package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Vehicle struct {
	Base
	AccountID     uuid.UUID       `gorm:"type:char(36);not null;index" json:"-"`
	VehicleNumber string          `gorm:"size:20;not null" json:"vehicleNumber"`
	Capacity      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"capacity"`
}
