// Package printing renders invoices as HTML and converts HTML to PDF.
package printing

import (
	"embed"
	"fmt"
	"html/template"
	"io"
)

//go:embed templates/*.html
var templateFS embed.FS

var invoiceTemplate = template.Must(
	template.New("invoice.html").
		Funcs(template.FuncMap{"inc": func(i int) int { return i + 1 }}).
		ParseFS(templateFS, "templates/invoice.html"),
)

// Line is one printed invoice row. Numbers are preformatted.
type Line struct {
	Product  string
	HsnNo    string
	TruckNo  string
	Articles string
	Weight   string
	Rate     string
	CgstSgst string
	Total    string
	Remarks  string
}

// InvoiceDocument is everything the invoice template prints.
type InvoiceDocument struct {
	InvoiceID string
	InvoiceNo string
	Date      string
	Status    string

	From     string
	To       string
	Taluka   string
	District string

	CustomerName  string
	CustomerGstin string
	AppUserName   string
	AppUserGstin  string
	Consignor     string
	Consignee     string
	Remarks       string

	Lines      []Line
	GrandTotal string
}

// RenderInvoice writes doc as a standalone HTML page.
func RenderInvoice(w io.Writer, doc *InvoiceDocument) error {
	if err := invoiceTemplate.Execute(w, doc); err != nil {
		return fmt.Errorf("render invoice template: %w", err)
	}
	return nil
}
