package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/worklog-labs/gitjournal-backend/internal/apperr"
)

// GetUserID returns the authenticated user's ID from the JWT the
// jwtware middleware stored on the request context.
func GetUserID(c *fiber.Ctx) (uuid.UUID, error) {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok {
		return uuid.Nil, apperr.New(apperr.KindUnauthorized, "Unauthorized: invalid or expired token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, apperr.New(apperr.KindUnauthorized, "Unauthorized: invalid or expired token")
	}
	sub, _ := claims["sub"].(string)
	id, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, apperr.New(apperr.KindUnauthorized, "Unauthorized: invalid or expired token")
	}
	return id, nil
}
