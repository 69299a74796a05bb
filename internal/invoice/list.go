package invoice

import (
	"context"
	"math"
	"strconv"
	"strings"
	"time"

	"freight-backend/internal/apperr"
	"freight-backend/internal/database"
	"freight-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// Filter narrows the invoices of one account. Dates are UTC calendar days;
// the To day is included up to its last instant.
type Filter struct {
	CustomerID *uuid.UUID
	Vehicle    string
	From       *time.Time
	To         *time.Time
}

type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

// ParseFilter reads customerId, vehicle, fromDate and toDate through get,
// which returns "" for a missing key.
func ParseFilter(get func(key string) string) (Filter, error) {
	var f Filter

	if raw := strings.TrimSpace(get("customerId")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return f, apperr.Validation("customerId", "Invalid customerId")
		}
		f.CustomerID = &id
	}

	f.Vehicle = strings.ToUpper(strings.TrimSpace(get("vehicle")))

	for _, d := range []struct {
		key  string
		dest **time.Time
	}{{"fromDate", &f.From}, {"toDate", &f.To}} {
		raw := strings.TrimSpace(get(d.key))
		if raw == "" {
			continue
		}
		day, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			return f, apperr.Validation(d.key, "Invalid "+d.key+", expected YYYY-MM-DD")
		}
		*d.dest = &day
	}
	return f, nil
}

// ParsePage returns the page and limit. A missing or malformed page is 1;
// a missing or malformed limit is DefaultLimit; limit is kept within [1, MaxLimit].
func ParsePage(get func(key string) string) (page, limit int) {
	page, err := strconv.Atoi(strings.TrimSpace(get("page")))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err = strconv.Atoi(strings.TrimSpace(get("limit")))
	switch {
	case err != nil:
		limit = DefaultLimit
	case limit < 1:
		limit = 1
	case limit > MaxLimit:
		limit = MaxLimit
	}
	return page, limit
}

func (f Filter) scope(accountID uuid.UUID) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		db = database.AccountScope(accountID)(db)
		if f.CustomerID != nil {
			db = db.Where("customer_id = ?", *f.CustomerID)
		}
		if f.Vehicle != "" {
			db = db.Where("EXISTS (SELECT 1 FROM invoice_rows WHERE invoice_rows.invoice_id = invoices.id AND invoice_rows.truck_no = ?)", f.Vehicle)
		}
		if f.From != nil {
			db = db.Where("date >= ?", *f.From)
		}
		if f.To != nil {
			db = db.Where("date < ?", f.To.AddDate(0, 0, 1))
		}
		return db
	}
}

// newestFirst has id as the last key so equal dates and timestamps still page stably.
func newestFirst(db *gorm.DB) *gorm.DB {
	return db.Order("date DESC").Order("created_at DESC").Order("id DESC")
}

// List returns one page of the account's invoices. A page past the end is empty
// and still reports the full total.
func (s *Service) List(ctx context.Context, accountID uuid.UUID, f Filter, page, limit int) ([]models.Invoice, Pagination, error) {
	db := s.db.WithContext(ctx)

	var total int64
	if err := db.Model(&models.Invoice{}).Scopes(f.scope(accountID)).Count(&total).Error; err != nil {
		return nil, Pagination{}, apperr.Internal("Error fetching invoices", err)
	}

	invoices := make([]models.Invoice, 0)
	err := populated(db.Model(&models.Invoice{})).
		Scopes(f.scope(accountID), newestFirst).
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&invoices).Error
	if err != nil {
		return nil, Pagination{}, apperr.Internal("Error fetching invoices", err)
	}

	return invoices, Pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: int(math.Ceil(float64(total) / float64(limit))),
	}, nil
}

// ListAll returns every matching invoice in list order, for exports.
func (s *Service) ListAll(ctx context.Context, accountID uuid.UUID, f Filter) ([]models.Invoice, error) {
	invoices := make([]models.Invoice, 0)
	err := populated(s.db.WithContext(ctx).Model(&models.Invoice{})).
		Scopes(f.scope(accountID), newestFirst).
		Find(&invoices).Error
	if err != nil {
		return nil, apperr.Internal("Error exporting invoices", err)
	}
	return invoices, nil
}
