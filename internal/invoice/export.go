package invoice

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"freight-backend/internal/apperr"
	"freight-backend/internal/auth"
	"freight-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
)

// DisplayDate is the day format used in exports and printouts.
const DisplayDate = "02-01-2006"

const (
	mimeCSV  = "text/csv; charset=utf-8"
	mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	exportSheet = "Invoices"
)

var exportHeader = []string{
	"Invoice ID",
	"Invoice No",
	"Date",
	"Customer",
	"From",
	"To",
	"Taluka",
	"District",
	"Consignor",
	"Consignee",
	"Product",
	"Truck No",
	"Articles",
	"Weight",
	"Rate",
	"CGST/SGST",
	"Row Total",
	"Status",
	"Remarks",
	"Grand Total",
}

// Column indexes written as numbers in spreadsheets.
var numericColumns = map[int]bool{13: true, 14: true, 15: true, 16: true, 19: true}

// customerLabel prefers the live customer's name over the snapshot.
func customerLabel(inv *models.Invoice) string {
	if inv.Customer != nil && inv.Customer.Name != "" {
		return inv.Customer.Name
	}
	return inv.CustomerName
}

// exportRecords returns one record per invoice row. Invoice-level columns are
// only filled on the first row of each invoice. Invoices without rows are skipped.
func exportRecords(invoices []models.Invoice) [][]string {
	records := make([][]string, 0, len(invoices))
	for i := range invoices {
		inv := &invoices[i]
		grandTotal := inv.GrandTotal().StringFixed(2)
		for j, row := range inv.Rows {
			first := func(v string) string {
				if j == 0 {
					return v
				}
				return ""
			}
			records = append(records, []string{
				first(inv.InvoiceID),
				first(inv.InvoiceNo),
				first(inv.Date.Format(DisplayDate)),
				first(customerLabel(inv)),
				first(inv.From),
				first(inv.To),
				first(inv.Taluka),
				first(inv.District),
				first(inv.Consignor),
				first(inv.Consignee),
				row.Product,
				row.TruckNo,
				row.Articles,
				row.Weight.String(),
				row.Rate.String(),
				row.CgstSgst.String(),
				row.Total.StringFixed(2),
				first(string(inv.Status)),
				row.Remarks,
				first(grandTotal),
			})
		}
	}
	return records
}

func writeCSV(w io.Writer, records [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return err
	}
	if err := cw.WriteAll(records); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

func buildXLSX(records [][]string) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, err
	}

	header := make([]any, len(exportHeader))
	for i, h := range exportHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(exportSheet, "A1", &header); err != nil {
		return nil, err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	if err := f.SetRowStyle(exportSheet, 1, 1, bold); err != nil {
		return nil, err
	}

	for i, record := range records {
		values := make([]any, len(record))
		for j, v := range record {
			values[j] = v
			if numericColumns[j] && v != "" {
				if n, err := strconv.ParseFloat(v, 64); err == nil {
					values[j] = n
				}
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(exportSheet, cell, &values); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write xlsx: %w", err)
	}
	return buf, nil
}

// ExportInvoicesHandler streams every invoice matching the list filters as CSV
// (default) or XLSX.
func ExportInvoicesHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		accountID, err := auth.AccountID(c)
		if err != nil {
			return err
		}

		format := strings.ToLower(strings.TrimSpace(c.Query("format", "csv")))
		if format != "csv" && format != "xlsx" {
			return apperr.Validation("format", "format must be csv or xlsx")
		}
		filter, err := ParseFilter(query(c))
		if err != nil {
			return err
		}

		invoices, err := svc.ListAll(c.UserContext(), accountID, filter)
		if err != nil {
			return err
		}
		records := exportRecords(invoices)

		var (
			body []byte
			mime string
		)
		switch format {
		case "xlsx":
			buf, err := buildXLSX(records)
			if err != nil {
				return apperr.Internal("Error exporting invoices", err)
			}
			body, mime = buf.Bytes(), mimeXLSX
		default:
			var buf bytes.Buffer
			if err := writeCSV(&buf, records); err != nil {
				return apperr.Internal("Error exporting invoices", err)
			}
			body, mime = buf.Bytes(), mimeCSV
		}

		filename := fmt.Sprintf("invoices-%s.%s", time.Now().UTC().Format(time.DateOnly), format)
		c.Set(fiber.HeaderContentType, mime)
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
		return c.Status(fiber.StatusOK).Send(body)
	}
}
