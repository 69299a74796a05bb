package auth

import (
	"strings"
	"time"

	"freight-backend/internal/apperr"
	"freight-backend/internal/config"
	"freight-backend/internal/database"
	"freight-backend/internal/models"
	"freight-backend/internal/response"
	"freight-backend/internal/validation"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email,max=100"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

var errBadCredentials = &apperr.Error{Kind: apperr.KindUnauthorized, Message: "Invalid email or password"}

func accountView(a *models.Account) fiber.Map {
	return fiber.Map{
		"id":        a.ID,
		"name":      a.Name,
		"email":     a.Email,
		"createdAt": a.CreatedAt,
	}
}

func RegisterHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body RegisterRequest
		if err := c.BodyParser(&body); err != nil {
			return apperr.Validation("body", "Invalid request body")
		}

		body.Name = strings.TrimSpace(body.Name)
		body.Email = strings.TrimSpace(strings.ToLower(body.Email))
		if body.Name == "" || body.Email == "" || body.Password == "" {
			return apperr.Validation("", "All fields are required")
		}
		if err := validation.Struct(body); err != nil {
			return err
		}

		tx := db.WithContext(c.UserContext())

		var count int64
		if err := tx.Model(&models.Account{}).Where("email = ?", body.Email).Count(&count).Error; err != nil {
			return apperr.Internal("Error registering user", err)
		}
		if count > 0 {
			return apperr.Conflict("email", "User already exists with this email")
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
		if err != nil {
			return apperr.Internal("Error registering user", err)
		}

		account := models.Account{
			Name:         body.Name,
			Email:        body.Email,
			PasswordHash: string(hash),
		}
		if err := tx.Create(&account).Error; err != nil {
			if database.IsDuplicate(err) {
				return apperr.Conflict("email", "User already exists with this email")
			}
			return apperr.Internal("Error registering user", err)
		}

		return response.Created(c, "User registered successfully", fiber.Map{"user": accountView(&account)})
	}
}

func LoginHandler(db *gorm.DB, cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body LoginRequest
		if err := c.BodyParser(&body); err != nil {
			return apperr.Validation("body", "Invalid request body")
		}

		body.Email = strings.TrimSpace(strings.ToLower(body.Email))
		if body.Email == "" || body.Password == "" {
			return apperr.Validation("", "Email and password are required")
		}

		var account models.Account
		if err := db.WithContext(c.UserContext()).Where("email = ?", body.Email).First(&account).Error; err != nil {
			if database.IsNotFound(err) {
				return errBadCredentials
			}
			return apperr.Internal("Error logging in", err)
		}

		if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(body.Password)); err != nil {
			return errBadCredentials
		}

		token, claims, err := GenerateToken(cfg.JWTSecret, cfg.JWTTTL, &account)
		if err != nil {
			return apperr.Internal("Error logging in", err)
		}

		c.Cookie(&fiber.Cookie{
			Name:     CookieName,
			Value:    token,
			Path:     "/",
			Expires:  claims.ExpiresAt.Time,
			HTTPOnly: true,
			Secure:   cfg.CookieSecure,
			SameSite: fiber.CookieSameSiteLaxMode,
		})

		return response.OK(c, "Login successful", fiber.Map{
			"token": token,
			"user":  accountView(&account),
		})
	}
}

// LogoutHandler revokes the presented token for the rest of its lifetime.
func LogoutHandler(blacklist TokenBlacklist) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := Claims(c)
		if err != nil {
			return err
		}

		ttl := time.Until(claims.ExpiresAt.Time)
		if err := blacklist.Revoke(c.UserContext(), claims.ID, ttl); err != nil {
			return apperr.Internal("Error logging out", err)
		}

		c.ClearCookie(CookieName)
		return response.OK(c, "Logged out successfully", nil)
	}
}

func MeHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		accountID, err := AccountID(c)
		if err != nil {
			return err
		}

		var account models.Account
		if err := db.WithContext(c.UserContext()).First(&account, "id = ?", accountID).Error; err != nil {
			if database.IsNotFound(err) {
				return apperr.Unauthorized()
			}
			return apperr.Internal("Error fetching user", err)
		}

		return response.OK(c, "", fiber.Map{"user": accountView(&account)})
	}
}
