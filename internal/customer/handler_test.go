package customer

import (
	"net/http"
	"testing"

	"freight-backend/internal/models"
	"freight-backend/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setup(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()
	db := testutil.NewDB(t)
	app := testutil.NewApp(func(r fiber.Router) {
		r.Get("/customers", ListCustomersHandler(db))
		r.Post("/customers", CreateCustomerHandler(db))
		r.Put("/customers/:id", UpdateCustomerHandler(db))
		r.Delete("/customers/:id", DeleteCustomerHandler(db))
	})
	return app, db
}

func TestCustomerLifecycle(t *testing.T) {
	app, db := setup(t)
	token := testutil.Token(t, testutil.CreateAccount(t, db, "owner@example.com"))

	res := testutil.Do(t, app, http.MethodPost, "/api/customers", token, fiber.Map{
		"name":       "  Shree Traders ",
		"gstin":      "27abcde1234f1z5",
		"district":   "Pune",
		"products":   []fiber.Map{{"productName": "Sugar", "productRate": 12.5}},
		"consignors": []string{"Mill A", " ", "Mill B"},
	})
	require.Equal(t, http.StatusCreated, res.Status, string(res.Raw))
	created := testutil.Map(t, res.Body["customer"])
	assert.Equal(t, "Shree Traders", created["name"])
	assert.Equal(t, "27ABCDE1234F1Z5", created["gstin"])
	assert.Len(t, testutil.List(t, created["consignors"]), 2)
	product := testutil.Map(t, testutil.List(t, created["products"])[0])
	assert.Equal(t, 12.5, product["productRate"])
	id := created["id"].(string)

	res = testutil.Do(t, app, http.MethodPut, "/api/customers/"+id, token, fiber.Map{
		"name":  "Shree Traders Pvt Ltd",
		"gstin": "27ABCDE1234F1Z5",
	})
	require.Equal(t, http.StatusOK, res.Status, string(res.Raw))
	updated := testutil.Map(t, res.Body["customer"])
	assert.Equal(t, "Shree Traders Pvt Ltd", updated["name"])
	assert.Empty(t, testutil.List(t, updated["products"]))

	res = testutil.Do(t, app, http.MethodGet, "/api/customers", token, nil)
	require.Equal(t, http.StatusOK, res.Status)
	assert.Len(t, testutil.List(t, res.Body["customers"]), 1)

	res = testutil.Do(t, app, http.MethodDelete, "/api/customers/"+id, token, nil)
	require.Equal(t, http.StatusOK, res.Status)
	assert.Equal(t, "Customer deleted successfully", res.Body["message"])

	var logs []models.AuditLog
	require.NoError(t, db.Where("entity_type = ?", "customer").Find(&logs).Error)
	assert.Len(t, logs, 3)
}

func TestCustomerValidation(t *testing.T) {
	app, db := setup(t)
	token := testutil.Token(t, testutil.CreateAccount(t, db, "owner@example.com"))

	tests := []struct {
		name    string
		body    fiber.Map
		message string
	}{
		{"missing name", fiber.Map{"gstin": ""}, "Name is required"},
		{"short name", fiber.Map{"name": "A"}, "name must be at least 2 characters"},
		{"bad gstin", fiber.Map{"name": "Shree", "gstin": "27ABC"}, "Invalid GSTIN format"},
		{"negative rate", fiber.Map{"name": "Shree", "products": []fiber.Map{{"productName": "Salt", "productRate": -1}}}, "Product rate cannot be negative"},
		{"unnamed product", fiber.Map{"name": "Shree", "products": []fiber.Map{{"productRate": 1}}}, "Product name is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := testutil.Do(t, app, http.MethodPost, "/api/customers", token, tt.body)
			assert.Equal(t, http.StatusBadRequest, res.Status)
			assert.Equal(t, tt.message, res.Body["message"])
		})
	}
}

func TestCustomerGstinUniqueness(t *testing.T) {
	app, db := setup(t)
	token := testutil.Token(t, testutil.CreateAccount(t, db, "owner@example.com"))
	otherToken := testutil.Token(t, testutil.CreateAccount(t, db, "other@example.com"))

	body := fiber.Map{"name": "Shree Traders", "gstin": "27ABCDE1234F1Z5"}
	res := testutil.Do(t, app, http.MethodPost, "/api/customers", token, body)
	require.Equal(t, http.StatusCreated, res.Status)

	res = testutil.Do(t, app, http.MethodPost, "/api/customers", token, body)
	assert.Equal(t, http.StatusBadRequest, res.Status)
	assert.Equal(t, "Customer with this GSTIN already exists", res.Body["message"])

	res = testutil.Do(t, app, http.MethodPost, "/api/customers", otherToken, body)
	assert.Equal(t, http.StatusCreated, res.Status)

	// customers without GSTIN never collide
	for i := 0; i < 2; i++ {
		res = testutil.Do(t, app, http.MethodPost, "/api/customers", token, fiber.Map{"name": "Walk-in"})
		assert.Equal(t, http.StatusCreated, res.Status)
	}

	res = testutil.Do(t, app, http.MethodPost, "/api/customers", token, fiber.Map{"name": "Second", "gstin": "29AAACB1234C1ZK"})
	require.Equal(t, http.StatusCreated, res.Status)
	id := testutil.Map(t, res.Body["customer"])["id"].(string)

	res = testutil.Do(t, app, http.MethodPut, "/api/customers/"+id, token, body)
	assert.Equal(t, http.StatusBadRequest, res.Status)
	assert.Equal(t, "Customer with this GSTIN already exists", res.Body["message"])
}

func TestCustomerScopedToAccount(t *testing.T) {
	app, db := setup(t)
	token := testutil.Token(t, testutil.CreateAccount(t, db, "owner@example.com"))
	otherToken := testutil.Token(t, testutil.CreateAccount(t, db, "other@example.com"))

	res := testutil.Do(t, app, http.MethodPost, "/api/customers", token, fiber.Map{"name": "Shree Traders"})
	require.Equal(t, http.StatusCreated, res.Status)
	id := testutil.Map(t, res.Body["customer"])["id"].(string)

	res = testutil.Do(t, app, http.MethodGet, "/api/customers", otherToken, nil)
	assert.Empty(t, testutil.List(t, res.Body["customers"]))

	res = testutil.Do(t, app, http.MethodPut, "/api/customers/"+id, otherToken, fiber.Map{"name": "Hijacked"})
	assert.Equal(t, http.StatusNotFound, res.Status)
	assert.Equal(t, "Customer not found", res.Body["message"])

	res = testutil.Do(t, app, http.MethodDelete, "/api/customers/"+id, otherToken, nil)
	assert.Equal(t, http.StatusNotFound, res.Status)

	res = testutil.Do(t, app, http.MethodDelete, "/api/customers/not-a-uuid", token, nil)
	assert.Equal(t, http.StatusNotFound, res.Status)

	res = testutil.Do(t, app, http.MethodGet, "/api/customers", "", nil)
	assert.Equal(t, http.StatusUnauthorized, res.Status)
}
