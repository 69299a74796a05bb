package invoice

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"freight-backend/internal/apperr"
	"freight-backend/internal/models"
	"freight-backend/internal/validation"

	"github.com/shopspring/decimal"
)

// RowInput is one line as submitted. Numbers are pointers so a missing value
// can be told apart from zero. Total is accepted and ignored.
//
// Amounts are limited to the precision of the stored columns so the stored
// total stays equal to weight * rate + cgstSgst.
type RowInput struct {
	Product  string           `json:"product" validate:"max=150"`
	HsnNo    string           `json:"hsnNo" validate:"required,max=20"`
	TruckNo  string           `json:"truckNo" validate:"max=20"`
	Articles string           `json:"articles" validate:"required,max=100"`
	Weight   *decimal.Decimal `json:"weight" validate:"required,nonneg,maxdecimals=4,maxintdigits=14"`
	Rate     *decimal.Decimal `json:"rate" validate:"required,nonneg,maxdecimals=4,maxintdigits=14"`
	CgstSgst *decimal.Decimal `json:"cgstSgst" validate:"omitempty,nonneg,maxdecimals=4,maxintdigits=14"`
	Total    *decimal.Decimal `json:"total"`
	Remarks  string           `json:"remarks" validate:"max=255"`
}

// Input is the create and update payload. CustomerName, AppUserName and
// AppUserGstin are only used when the matching id is blank.
type Input struct {
	InvoiceID string `json:"invoiceId" validate:"required,max=50"`
	InvoiceNo string `json:"invoiceNo" validate:"required,max=50"`
	From      string `json:"from" validate:"required,max=100"`
	To        string `json:"to" validate:"required,max=100"`
	Taluka    string `json:"taluka" validate:"required,max=100"`
	District  string `json:"district" validate:"required,max=100"`
	Consignor string `json:"consignor" validate:"required,max=150"`
	Consignee string `json:"consignee" validate:"required,max=150"`
	Date      string `json:"date" validate:"required"`

	CustomerID   string `json:"customerId"`
	CustomerName string `json:"customerName" validate:"max=100"`

	AppUserID    string `json:"appUserId"`
	AppUserName  string `json:"appUserName" validate:"max=100"`
	AppUserGstin string `json:"appUserGstin" validate:"max=15"`

	Status  string `json:"status"`
	Remarks string `json:"remarks" validate:"max=255"`

	Rows []RowInput `json:"rows"`
}

// normalizedInvoiceID is the form used for storage and uniqueness checks.
func (in *Input) normalizedInvoiceID() string {
	return strings.ToUpper(strings.TrimSpace(in.InvoiceID))
}

// ParseDate accepts a calendar date (2006-01-02) or an RFC 3339 timestamp and returns it in UTC.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// normalize trims every text field and uppercases the identifiers.
func (in *Input) normalize() {
	for _, f := range []*string{
		&in.InvoiceID, &in.InvoiceNo, &in.Date, &in.From, &in.To, &in.Taluka, &in.District,
		&in.CustomerID, &in.CustomerName, &in.AppUserID, &in.AppUserName, &in.AppUserGstin,
		&in.Consignor, &in.Consignee, &in.Status, &in.Remarks,
	} {
		*f = strings.TrimSpace(*f)
	}
	in.InvoiceID = strings.ToUpper(in.InvoiceID)
	in.InvoiceNo = strings.ToUpper(in.InvoiceNo)
	in.AppUserGstin = strings.ToUpper(in.AppUserGstin)
	for i := range in.Rows {
		in.Rows[i].normalize()
	}
}

func (r *RowInput) normalize() {
	for _, f := range []*string{&r.Product, &r.HsnNo, &r.TruckNo, &r.Articles, &r.Remarks} {
		*f = strings.TrimSpace(*f)
	}
	r.TruckNo = strings.ToUpper(r.TruckNo)
}

// build validates the payload and fills every field of inv except the account,
// the references and their snapshots. Row totals are always recomputed.
func (in *Input) build(inv *models.Invoice) error {
	in.normalize()
	if err := validation.Struct(in); err != nil {
		return err
	}

	date, err := ParseDate(in.Date)
	if err != nil {
		return apperr.Validation("date", "Invalid date")
	}

	status := models.InvoiceStatus(in.Status)
	if status == "" {
		status = models.InvoiceStatusUnpaid
	}
	if !status.Valid() {
		return apperr.Validation("status", "status must be one of: Paid, Unpaid, Partially Paid")
	}

	if len(in.Rows) == 0 {
		return apperr.Validation("rows", "At least one row is required")
	}
	rows := make([]models.InvoiceRow, 0, len(in.Rows))
	for i := range in.Rows {
		row, err := in.Rows[i].build(i)
		if err != nil {
			return err
		}
		rows = append(rows, row)
	}

	inv.InvoiceID = in.InvoiceID
	inv.InvoiceNo = in.InvoiceNo
	inv.Date = date
	inv.From = in.From
	inv.To = in.To
	inv.Taluka = in.Taluka
	inv.District = in.District
	inv.Consignor = in.Consignor
	inv.Consignee = in.Consignee
	inv.Status = status
	inv.Remarks = in.Remarks
	inv.Rows = rows
	return nil
}

// build expects a normalized row. Failures name the row, e.g. "Row 2: hsnNo is required".
func (r *RowInput) build(i int) (models.InvoiceRow, error) {
	if err := validation.Struct(r); err != nil {
		var ve *apperr.Error
		if errors.As(err, &ve) && ve.Kind == apperr.KindValidation {
			return models.InvoiceRow{}, apperr.Validation(
				fmt.Sprintf("rows[%d].%s", i, ve.Field),
				fmt.Sprintf("Row %d: %s", i+1, ve.Message),
			)
		}
		return models.InvoiceRow{}, err
	}

	cgstSgst := decimal.Zero
	if r.CgstSgst != nil {
		cgstSgst = *r.CgstSgst
	}
	return models.InvoiceRow{
		Position: i,
		Product:  r.Product,
		HsnNo:    r.HsnNo,
		TruckNo:  r.TruckNo,
		Articles: r.Articles,
		Weight:   *r.Weight,
		Rate:     *r.Rate,
		CgstSgst: cgstSgst,
		Total:    models.RowTotal(*r.Weight, *r.Rate, cgstSgst),
		Remarks:  r.Remarks,
	}, nil
}
