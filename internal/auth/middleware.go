package auth

import (
	"strings"

	"freight-backend/internal/apperr"
	"freight-backend/internal/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	CookieName = "token"

	CtxAccountIDKey = logger.AccountIDKey
	CtxClaimsKey    = "claims"
)

// JWTMiddleware accepts the token from the "token" cookie or an
// "Authorization: Bearer" header and rejects revoked tokens. A cookie that is
// expired, malformed or revoked does not hide a valid header token.
func JWTMiddleware(secret string, blacklist TokenBlacklist) fiber.Handler {
	return func(c *fiber.Ctx) error {
		for _, tokenStr := range requestTokens(c) {
			claims, err := ParseToken(secret, tokenStr)
			if err != nil {
				continue
			}

			revoked, err := blacklist.IsRevoked(c.UserContext(), claims.ID)
			if err != nil {
				return apperr.Internal("Error checking token", err)
			}
			if revoked {
				continue
			}

			c.Locals(CtxAccountIDKey, claims.AccountID)
			c.Locals(CtxClaimsKey, claims)
			return c.Next()
		}
		return apperr.Unauthorized()
	}
}

// requestTokens lists the cookie token first, then the bearer token.
func requestTokens(c *fiber.Ctx) []string {
	var tokens []string
	if cookie := c.Cookies(CookieName); cookie != "" {
		tokens = append(tokens, cookie)
	}
	parts := strings.SplitN(c.Get(fiber.HeaderAuthorization), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		if bearer := strings.TrimSpace(parts[1]); bearer != "" {
			tokens = append(tokens, bearer)
		}
	}
	return tokens
}

// AccountID returns the authenticated account of the request.
func AccountID(c *fiber.Ctx) (uuid.UUID, error) {
	id, ok := c.Locals(CtxAccountIDKey).(uuid.UUID)
	if !ok || id == uuid.Nil {
		return uuid.Nil, apperr.Unauthorized()
	}
	return id, nil
}

func Claims(c *fiber.Ctx) (*JWTCustomClaims, error) {
	claims, ok := c.Locals(CtxClaimsKey).(*JWTCustomClaims)
	if !ok {
		return nil, apperr.Unauthorized()
	}
	return claims, nil
}
