package invoice

import (
	"time"

	"freight-backend/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Ref is a populated reference: the live customer or app user, or null once it is gone.
type Ref struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Gstin string    `json:"gstin"`
}

// View is the invoice as returned by every endpoint.
type View struct {
	ID        uuid.UUID `json:"id"`
	InvoiceID string    `json:"invoiceId"`
	InvoiceNo string    `json:"invoiceNo"`
	Date      time.Time `json:"date"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	Taluka    string    `json:"taluka"`
	District  string    `json:"district"`

	Customer     *Ref   `json:"customerId"`
	CustomerName string `json:"customerName"`

	AppUser      *Ref   `json:"appUserId"`
	AppUserName  string `json:"appUserName"`
	AppUserGstin string `json:"appUserGstin"`

	Consignor string               `json:"consignor"`
	Consignee string               `json:"consignee"`
	Status    models.InvoiceStatus `json:"status"`
	Remarks   string               `json:"remarks"`

	Rows       []models.InvoiceRow `json:"rows"`
	GrandTotal decimal.Decimal     `json:"grandTotal"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewView expects Customer, AppUser and Rows to be preloaded.
func NewView(inv *models.Invoice) View {
	v := View{
		ID:           inv.ID,
		InvoiceID:    inv.InvoiceID,
		InvoiceNo:    inv.InvoiceNo,
		Date:         inv.Date,
		From:         inv.From,
		To:           inv.To,
		Taluka:       inv.Taluka,
		District:     inv.District,
		CustomerName: inv.CustomerName,
		AppUserName:  inv.AppUserName,
		AppUserGstin: inv.AppUserGstin,
		Consignor:    inv.Consignor,
		Consignee:    inv.Consignee,
		Status:       inv.Status,
		Remarks:      inv.Remarks,
		Rows:         inv.Rows,
		GrandTotal:   inv.GrandTotal(),
		CreatedAt:    inv.CreatedAt,
		UpdatedAt:    inv.UpdatedAt,
	}
	if v.Rows == nil {
		v.Rows = []models.InvoiceRow{}
	}
	if inv.Customer != nil {
		v.Customer = &Ref{ID: inv.Customer.ID, Name: inv.Customer.Name, Gstin: inv.Customer.Gstin}
	}
	if inv.AppUser != nil {
		v.AppUser = &Ref{ID: inv.AppUser.ID, Name: inv.AppUser.Name, Gstin: inv.AppUser.Gstin}
	}
	return v
}

func NewViews(invoices []models.Invoice) []View {
	views := make([]View, 0, len(invoices))
	for i := range invoices {
		views = append(views, NewView(&invoices[i]))
	}
	return views
}
