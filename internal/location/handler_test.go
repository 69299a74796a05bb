package location

import (
	"net/http"
	"testing"

	"freight-backend/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocationHandlers(t *testing.T) {
	db := testutil.NewDB(t)
	app := testutil.NewApp(func(r fiber.Router) {
		r.Get("/locations", ListLocationsHandler(db))
		r.Post("/locations", CreateLocationHandler(db))
		r.Put("/locations/:id", UpdateLocationHandler(db))
		r.Delete("/locations/:id", DeleteLocationHandler(db))
	})
	token := testutil.Token(t, testutil.CreateAccount(t, db, "owner@example.com"))
	otherToken := testutil.Token(t, testutil.CreateAccount(t, db, "other@example.com"))

	res := testutil.Do(t, app, http.MethodPost, "/api/locations", token, fiber.Map{"name": "Pune"})
	require.Equal(t, http.StatusCreated, res.Status, string(res.Raw))
	id := testutil.Map(t, res.Body["location"])["id"].(string)

	// names are not unique
	res = testutil.Do(t, app, http.MethodPost, "/api/locations", token, fiber.Map{"name": "Pune"})
	require.Equal(t, http.StatusCreated, res.Status)

	res = testutil.Do(t, app, http.MethodPost, "/api/locations", token, fiber.Map{"name": "  "})
	assert.Equal(t, http.StatusBadRequest, res.Status)
	assert.Equal(t, "Location name is required", res.Body["message"])

	res = testutil.Do(t, app, http.MethodPost, "/api/locations", token, fiber.Map{"name": "P"})
	assert.Equal(t, http.StatusBadRequest, res.Status)

	res = testutil.Do(t, app, http.MethodPut, "/api/locations/"+id, token, fiber.Map{"name": "Pune Station"})
	require.Equal(t, http.StatusOK, res.Status)
	assert.Equal(t, "Pune Station", testutil.Map(t, res.Body["location"])["name"])

	res = testutil.Do(t, app, http.MethodPut, "/api/locations/"+id, otherToken, fiber.Map{"name": "Nagpur"})
	assert.Equal(t, http.StatusNotFound, res.Status)
	assert.Equal(t, "Location not found", res.Body["message"])

	res = testutil.Do(t, app, http.MethodGet, "/api/locations", token, nil)
	assert.Len(t, testutil.List(t, res.Body["locations"]), 2)
	res = testutil.Do(t, app, http.MethodGet, "/api/locations", otherToken, nil)
	assert.Empty(t, testutil.List(t, res.Body["locations"]))

	res = testutil.Do(t, app, http.MethodDelete, "/api/locations/"+id, otherToken, nil)
	assert.Equal(t, http.StatusNotFound, res.Status)
	res = testutil.Do(t, app, http.MethodDelete, "/api/locations/"+id, token, nil)
	assert.Equal(t, http.StatusOK, res.Status)
}
