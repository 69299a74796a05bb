package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func init() {
	// Amounts are exchanged as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

type InvoiceStatus string

const (
	InvoiceStatusPaid          InvoiceStatus = "Paid"
	InvoiceStatusUnpaid        InvoiceStatus = "Unpaid"
	InvoiceStatusPartiallyPaid InvoiceStatus = "Partially Paid"
)

func (s InvoiceStatus) Valid() bool {
	switch s {
	case InvoiceStatusPaid, InvoiceStatusUnpaid, InvoiceStatusPartiallyPaid:
		return true
	}
	return false
}

// Invoice is a freight bill. CustomerName, AppUserName and AppUserGstin are
// snapshots taken at write time and are not refreshed when the source record changes.
type Invoice struct {
	Base
	AccountID uuid.UUID `gorm:"type:char(36);not null;index:idx_invoices_account_date,priority:1" json:"-"`
	InvoiceID string    `gorm:"size:50;not null" json:"invoiceId"`
	InvoiceNo string    `gorm:"size:50;not null" json:"invoiceNo"`
	Date      time.Time `gorm:"not null;index:idx_invoices_account_date,priority:2" json:"date"`

	From     string `gorm:"size:100;not null" json:"from"`
	To       string `gorm:"size:100;not null" json:"to"`
	Taluka   string `gorm:"size:100;not null" json:"taluka"`
	District string `gorm:"size:100;not null" json:"district"`

	CustomerID   *uuid.UUID `gorm:"type:char(36);index" json:"customerId"`
	Customer     *Customer  `gorm:"foreignKey:CustomerID" json:"-"`
	CustomerName string     `gorm:"size:100" json:"customerName"`

	AppUserID    *uuid.UUID `gorm:"type:char(36);index" json:"appUserId"`
	AppUser      *AppUser   `gorm:"foreignKey:AppUserID" json:"-"`
	AppUserName  string     `gorm:"size:100" json:"appUserName"`
	AppUserGstin string     `gorm:"size:15" json:"appUserGstin"`

	Consignor string        `gorm:"size:150;not null" json:"consignor"`
	Consignee string        `gorm:"size:150;not null" json:"consignee"`
	Status    InvoiceStatus `gorm:"size:20;not null;default:'Unpaid'" json:"status"`
	Remarks   string        `gorm:"size:255" json:"remarks"`

	Rows []InvoiceRow `gorm:"foreignKey:InvoiceID;references:ID" json:"rows"`
}

// GrandTotal is always derived from the rows; it is never stored.
func (i Invoice) GrandTotal() decimal.Decimal {
	sum := decimal.Zero
	for _, r := range i.Rows {
		sum = sum.Add(r.Total)
	}
	return sum
}

// InvoiceRow belongs to exactly one invoice and has no lifecycle of its own.
type InvoiceRow struct {
	Base
	InvoiceID uuid.UUID `gorm:"type:char(36);not null;index" json:"-"`
	Position  int       `gorm:"not null" json:"-"`

	Product  string          `gorm:"size:150" json:"product"`
	HsnNo    string          `gorm:"size:20;not null" json:"hsnNo"`
	TruckNo  string          `gorm:"size:20;index" json:"truckNo"`
	Articles string          `gorm:"size:100;not null" json:"articles"`
	Weight   decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"weight"`
	Rate     decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"rate"`
	CgstSgst decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"cgstSgst"`
	// Wide enough for weight * rate + cgstSgst of two decimal(18,4) values without rounding.
	Total    decimal.Decimal `gorm:"type:decimal(38,8);not null" json:"total"`
	Remarks  string          `gorm:"size:255" json:"remarks"`
}

// RowTotal is weight * rate + cgstSgst.
func RowTotal(weight, rate, cgstSgst decimal.Decimal) decimal.Decimal {
	return weight.Mul(rate).Add(cgstSgst)
}
