package auth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"freight-backend/internal/auth"
	"freight-backend/internal/models"
	"freight-backend/internal/response"
	"freight-backend/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newAuthApp(t *testing.T) (*fiber.App, *auth.MemoryBlacklist) {
	t.Helper()
	db := testutil.NewDB(t)
	cfg := testutil.Config()
	blacklist := auth.NewMemoryBlacklist()

	app := fiber.New(fiber.Config{ErrorHandler: response.ErrorHandler(zap.NewNop())})
	api := app.Group("/api")
	api.Post("/auth/register", auth.RegisterHandler(db))
	api.Post("/auth/login", auth.LoginHandler(db, cfg))

	protected := api.Group("", auth.JWTMiddleware(cfg.JWTSecret, blacklist))
	protected.Post("/auth/logout", auth.LogoutHandler(blacklist))
	protected.Get("/auth/me", auth.MeHandler(db))
	return app, blacklist
}

func TestGenerateAndParseToken(t *testing.T) {
	account := &models.Account{Email: "a@example.com"}
	account.ID = uuid.New()

	token, claims, err := auth.GenerateToken(testutil.Secret, time.Hour, account)
	require.NoError(t, err)
	assert.NotEmpty(t, claims.ID)

	parsed, err := auth.ParseToken(testutil.Secret, token)
	require.NoError(t, err)
	assert.Equal(t, account.ID, parsed.AccountID)
	assert.Equal(t, claims.ID, parsed.ID)

	_, err = auth.ParseToken("another-secret-0123456789abcdef-xx", token)
	assert.Error(t, err)

	expired, _, err := auth.GenerateToken(testutil.Secret, -time.Minute, account)
	require.NoError(t, err)
	_, err = auth.ParseToken(testutil.Secret, expired)
	assert.Error(t, err)
}

func TestParseTokenRejectsOtherAlgorithms(t *testing.T) {
	claims := &auth.JWTCustomClaims{
		AccountID:        uuid.New(),
		RegisteredClaims: jwt.RegisteredClaims{ID: "x", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = auth.ParseToken(testutil.Secret, token)
	assert.Error(t, err)
}

func TestRegisterLoginMeLogout(t *testing.T) {
	app, _ := newAuthApp(t)

	res := testutil.Do(t, app, http.MethodPost, "/api/auth/register", "", fiber.Map{
		"name": "Sharma Roadways", "email": " Owner@Example.com ", "password": "secret1",
	})
	require.Equal(t, http.StatusCreated, res.Status, string(res.Raw))
	assert.Equal(t, true, res.Body["success"])
	user := testutil.Map(t, res.Body["user"])
	assert.Equal(t, "owner@example.com", user["email"])
	assert.NotContains(t, string(res.Raw), "password")

	res = testutil.Do(t, app, http.MethodPost, "/api/auth/register", "", fiber.Map{
		"name": "Other", "email": "owner@example.com", "password": "secret1",
	})
	assert.Equal(t, http.StatusBadRequest, res.Status)
	assert.Equal(t, "User already exists with this email", res.Body["message"])

	res = testutil.Do(t, app, http.MethodPost, "/api/auth/login", "", fiber.Map{
		"email": "owner@example.com", "password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, res.Status)

	res = testutil.Do(t, app, http.MethodPost, "/api/auth/login", "", fiber.Map{
		"email": "OWNER@example.com", "password": "secret1",
	})
	require.Equal(t, http.StatusOK, res.Status, string(res.Raw))
	token, _ := res.Body["token"].(string)
	require.NotEmpty(t, token)
	cookie := res.Header.Get("Set-Cookie")
	assert.Contains(t, cookie, auth.CookieName+"="+token)
	assert.Contains(t, strings.ToLower(cookie), "httponly")

	// the cookie alone authenticates
	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: token})
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	res = testutil.Do(t, app, http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, res.Status)
	assert.Equal(t, "owner@example.com", testutil.Map(t, res.Body["user"])["email"])

	res = testutil.Do(t, app, http.MethodPost, "/api/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, res.Status)

	res = testutil.Do(t, app, http.MethodGet, "/api/auth/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, res.Status)
	assert.Equal(t, false, res.Body["success"])
}

func TestRegisterValidation(t *testing.T) {
	app, _ := newAuthApp(t)

	tests := []struct {
		name    string
		body    fiber.Map
		message string
	}{
		{"missing fields", fiber.Map{"email": "a@example.com"}, "All fields are required"},
		{"bad email", fiber.Map{"name": "Ravi", "email": "not-an-email", "password": "secret1"}, "Invalid email format"},
		{"short password", fiber.Map{"name": "Ravi", "email": "a@example.com", "password": "123"}, "password must be at least 6 characters"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := testutil.Do(t, app, http.MethodPost, "/api/auth/register", "", tt.body)
			assert.Equal(t, http.StatusBadRequest, res.Status)
			assert.Equal(t, tt.message, res.Body["message"])
		})
	}
}

func TestMiddlewareRejects(t *testing.T) {
	app, _ := newAuthApp(t)

	tests := []struct {
		name   string
		header string
	}{
		{"no token", ""},
		{"not bearer", "Basic abc"},
		{"garbage", "Bearer abc.def.ghi"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		})
	}
}

func login(t *testing.T, app *fiber.App, email string) string {
	t.Helper()
	res := testutil.Do(t, app, http.MethodPost, "/api/auth/login", "", fiber.Map{"email": email, "password": "secret1"})
	require.Equal(t, http.StatusOK, res.Status, string(res.Raw))
	token, _ := res.Body["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestBearerUsedWhenCookieIsStale(t *testing.T) {
	app, _ := newAuthApp(t)
	res := testutil.Do(t, app, http.MethodPost, "/api/auth/register", "", fiber.Map{
		"name": "Sharma Roadways", "email": "owner@example.com", "password": "secret1",
	})
	require.Equal(t, http.StatusCreated, res.Status, string(res.Raw))

	revoked := login(t, app, "owner@example.com")
	res = testutil.Do(t, app, http.MethodPost, "/api/auth/logout", revoked, nil)
	require.Equal(t, http.StatusOK, res.Status)
	valid := login(t, app, "owner@example.com")

	expired, _, err := auth.GenerateToken(testutil.Config().JWTSecret, -time.Minute, &models.Account{Base: models.Base{ID: uuid.New()}})
	require.NoError(t, err)

	tests := []struct {
		name   string
		cookie string
		bearer string
		status int
	}{
		{"garbage cookie", "abc.def.ghi", valid, http.StatusOK},
		{"expired cookie", expired, valid, http.StatusOK},
		{"revoked cookie", revoked, valid, http.StatusOK},
		{"valid cookie, garbage bearer", valid, "abc.def.ghi", http.StatusOK},
		{"stale cookie, no bearer", revoked, "", http.StatusUnauthorized},
		{"stale cookie, stale bearer", expired, revoked, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
			req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: tt.cookie})
			if tt.bearer != "" {
				req.Header.Set("Authorization", "Bearer "+tt.bearer)
			}
			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestMemoryBlacklist(t *testing.T) {
	ctx := context.Background()
	b := auth.NewMemoryBlacklist()

	require.NoError(t, b.Revoke(ctx, "jti-1", time.Hour))
	revoked, err := b.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = b.IsRevoked(ctx, "jti-2")
	require.NoError(t, err)
	assert.False(t, revoked)

	// already expired tokens need no entry
	require.NoError(t, b.Revoke(ctx, "jti-3", -time.Second))
	revoked, err = b.IsRevoked(ctx, "jti-3")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, b.Revoke(ctx, "jti-4", time.Millisecond))
	time.Sleep(5 * time.Millisecond)
	revoked, err = b.IsRevoked(ctx, "jti-4")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestRedisBlacklist(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	ctx := context.Background()
	client, err := auth.NewRedisClient(ctx, addr, "", 0)
	require.NoError(t, err)
	defer client.Close()

	b := auth.NewRedisBlacklist(client)
	jti := uuid.NewString()
	require.NoError(t, b.Revoke(ctx, jti, time.Minute))

	revoked, err := b.IsRevoked(ctx, jti)
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = b.IsRevoked(ctx, uuid.NewString())
	require.NoError(t, err)
	assert.False(t, revoked)
}
