package invoice

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"freight-backend/internal/apperr"
	"freight-backend/internal/auth"
	"freight-backend/internal/models"
	"freight-backend/internal/printing"
	"freight-backend/internal/response"

	"github.com/gofiber/fiber/v2"
)

var unsafeFilename = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// Document maps a populated invoice onto the print template.
func Document(inv *models.Invoice) *printing.InvoiceDocument {
	doc := &printing.InvoiceDocument{
		InvoiceID:    inv.InvoiceID,
		InvoiceNo:    inv.InvoiceNo,
		Date:         inv.Date.Format(DisplayDate),
		Status:       string(inv.Status),
		From:         inv.From,
		To:           inv.To,
		Taluka:       inv.Taluka,
		District:     inv.District,
		CustomerName: inv.CustomerName,
		AppUserName:  inv.AppUserName,
		AppUserGstin: inv.AppUserGstin,
		Consignor:    inv.Consignor,
		Consignee:    inv.Consignee,
		Remarks:      inv.Remarks,
		GrandTotal:   inv.GrandTotal().StringFixed(2),
		Lines:        make([]printing.Line, 0, len(inv.Rows)),
	}
	if inv.Customer != nil {
		doc.CustomerGstin = inv.Customer.Gstin
	}
	for _, r := range inv.Rows {
		doc.Lines = append(doc.Lines, printing.Line{
			Product:  r.Product,
			HsnNo:    r.HsnNo,
			TruckNo:  r.TruckNo,
			Articles: r.Articles,
			Weight:   r.Weight.String(),
			Rate:     r.Rate.StringFixed(2),
			CgstSgst: r.CgstSgst.StringFixed(2),
			Total:    r.Total.StringFixed(2),
			Remarks:  r.Remarks,
		})
	}
	return doc
}

// PDFFilename is "Invoice-<invoiceId>.pdf" with characters unsafe in a header replaced.
func PDFFilename(invoiceID string) string {
	name := strings.Trim(unsafeFilename.ReplaceAllString(invoiceID, "-"), "-")
	if name == "" {
		name = "invoice"
	}
	return "Invoice-" + name + ".pdf"
}

// PrintInvoiceHandler renders one invoice as HTML (default) or PDF. Without a
// renderer, PDF requests are answered with 501.
func PrintInvoiceHandler(svc *Service, renderer printing.PDFRenderer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		accountID, err := auth.AccountID(c)
		if err != nil {
			return err
		}
		id, err := response.ParamID(c, entityName)
		if err != nil {
			return err
		}

		format := strings.ToLower(strings.TrimSpace(c.Query("format", "html")))
		if format != "html" && format != "pdf" {
			return apperr.Validation("format", "format must be html or pdf")
		}

		inv, err := svc.Get(c.UserContext(), accountID, id)
		if err != nil {
			return err
		}

		var html bytes.Buffer
		if err := printing.RenderInvoice(&html, Document(inv)); err != nil {
			return apperr.Internal("Error rendering invoice", err)
		}

		if format == "html" {
			c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
			return c.Status(fiber.StatusOK).Send(html.Bytes())
		}

		if renderer == nil {
			return fiber.NewError(fiber.StatusNotImplemented, "PDF rendering is not enabled")
		}
		pdf, err := renderer.Render(c.UserContext(), html.String())
		if err != nil {
			return apperr.Internal("Error rendering invoice", err)
		}

		c.Set(fiber.HeaderContentType, "application/pdf")
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`inline; filename="%s"`, PDFFilename(inv.InvoiceID)))
		return c.Status(fiber.StatusOK).Send(pdf)
	}
}
