package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// CustomerProduct is a product the customer is usually billed for, with its agreed rate.
type CustomerProduct struct {
	ProductName string          `json:"productName"`
	ProductRate decimal.Decimal `json:"productRate"`
}

type Customer struct {
	Base
	AccountID uuid.UUID `gorm:"type:char(36);not null;index" json:"-"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	// Empty when the customer is not GST registered; unique per account otherwise.
	Gstin      string                              `gorm:"size:15;not null;default:''" json:"gstin"`
	Taluka     string                              `gorm:"size:100" json:"taluka"`
	District   string                              `gorm:"size:100" json:"district"`
	Address    string                              `gorm:"size:255" json:"address"`
	Products   datatypes.JSONSlice[CustomerProduct] `json:"products"`
	Consignors datatypes.JSONSlice[string]          `json:"consignors"`
}
