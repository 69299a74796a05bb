// Package testutil builds in-memory databases and authenticated Fiber apps for handler tests.
package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"freight-backend/internal/auth"
	"freight-backend/internal/config"
	"freight-backend/internal/database"
	"freight-backend/internal/models"
	"freight-backend/internal/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const Secret = "test-secret-0123456789abcdef-0123"

func Config() *config.Config {
	return &config.Config{
		HTTPPort:    "0",
		CORSOrigins: "*",
		JWTSecret:   Secret,
		JWTTTL:      time.Hour,
		LogLevel:    "error",
		LogFormat:   "console",
	}
}

// NewDB returns a migrated private SQLite database that lives as long as the test.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := database.Open(sqlite.Open(dsn), zap.NewNop(), "error")
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// One connection keeps the in-memory database alive and serializes writers.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db, zap.NewNop()))
	return db
}

func CreateAccount(t *testing.T, db *gorm.DB, email string) *models.Account {
	t.Helper()
	account := &models.Account{Name: "Test Account", Email: email, PasswordHash: "x"}
	require.NoError(t, db.Create(account).Error)
	return account
}

func Token(t *testing.T, account *models.Account) string {
	t.Helper()
	token, _, err := auth.GenerateToken(Secret, time.Hour, account)
	require.NoError(t, err)
	return token
}

// NewApp wires the central error handler and the JWT middleware in front of
// the routes added by register, all under /api.
func NewApp(register func(r fiber.Router)) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: response.ErrorHandler(zap.NewNop())})
	api := app.Group("/api", auth.JWTMiddleware(Secret, auth.NewMemoryBlacklist()))
	register(api)
	return app
}

type Response struct {
	Status int
	Header http.Header
	Raw    []byte
	Body   map[string]any
}

// Do sends a request with an optional bearer token and JSON body.
func Do(t *testing.T, app *fiber.App, method, path, token string, body any) Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			reader = bytes.NewBufferString(b)
		default:
			raw, err := json.Marshal(b)
			require.NoError(t, err)
			reader = bytes.NewReader(raw)
		}
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	out := Response{Status: resp.StatusCode, Header: resp.Header, Raw: raw}
	if len(raw) > 0 && json.Valid(raw) {
		require.NoError(t, json.Unmarshal(raw, &out.Body))
	}
	return out
}

// Map fetches a nested JSON object from a decoded body.
func Map(t *testing.T, v any) map[string]any {
	t.Helper()
	m, ok := v.(map[string]any)
	require.True(t, ok, "expected object, got %T", v)
	return m
}

func List(t *testing.T, v any) []any {
	t.Helper()
	l, ok := v.([]any)
	require.True(t, ok, "expected array, got %T", v)
	return l
}
