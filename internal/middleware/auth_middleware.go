package middleware

import (
	"fmt"
	"strings"

	"survey-grader/internal/logger"
	"survey-grader/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const (
	AuthorizationHeader = "Authorization"
	BearerSchema        = "Bearer "
	// UserIDKey is the fiber locals key handlers read the caller's ID from.
	UserIDKey = "userID"
)

// bearerToken pulls the JWT out of the Authorization header. The second
// return value is a ready-to-send 401 body when the header is unusable.
func bearerToken(c *fiber.Ctx) (string, *ErrorResponse) {
	header := c.Get(AuthorizationHeader)
	if header == "" {
		return "", &ErrorResponse{
			Code:    "MISSING_AUTH_HEADER",
			Message: "Authorization header is missing",
			Status:  fiber.StatusUnauthorized,
		}
	}
	if !strings.HasPrefix(header, BearerSchema) {
		return "", &ErrorResponse{
			Code:    "INVALID_AUTH_SCHEME",
			Message: "Authorization scheme is not Bearer",
			Status:  fiber.StatusUnauthorized,
		}
	}
	token := strings.TrimPrefix(header, BearerSchema)
	if token == "" {
		return "", &ErrorResponse{
			Code:    "EMPTY_TOKEN",
			Message: "Token is empty",
			Status:  fiber.StatusUnauthorized,
		}
	}
	return token, nil
}

// Protected rejects any request that does not carry a valid access
// token, and stores the authenticated user's ID in the request locals.
func Protected(authService service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, authErr := bearerToken(c)
		if authErr != nil {
			return c.Status(authErr.Status).JSON(authErr)
		}

		claims, err := authService.ValidateJWT(c.Context(), token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
				Code:    "INVALID_TOKEN",
				Message: err.Error(),
				Status:  fiber.StatusUnauthorized,
			})
		}

		// A refresh token must not open protected routes.
		if claims.TokenType != "access" {
			return c.Status(fiber.StatusForbidden).JSON(ErrorResponse{
				Code:    "INVALID_TOKEN_TYPE",
				Message: fmt.Sprintf("Invalid token type: expected access, got %s", claims.TokenType),
				Status:  fiber.StatusForbidden,
			})
		}

		c.Locals(UserIDKey, claims.UserID)
		return c.Next()
	}
}

// OptionalAuth identifies the caller when a valid access token is
// present and lets the request through anonymously otherwise. It never
// rejects a request.
func OptionalAuth(authService service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Get(AuthorizationHeader) == "" {
			return c.Next()
		}

		token, authErr := bearerToken(c)
		if authErr != nil {
			logger.Get().Debug("Ignoring unusable Authorization header", zap.String("code", authErr.Code))
			return c.Next()
		}

		claims, err := authService.ValidateJWT(c.Context(), token)
		if err != nil {
			logger.Get().Debug("Ignoring invalid token on optional route", zap.Error(err))
			return c.Next()
		}
		if claims.TokenType != "access" {
			logger.Get().Debug("Ignoring non-access token on optional route", zap.String("tokenType", claims.TokenType))
			return c.Next()
		}

		c.Locals(UserIDKey, claims.UserID)
		return c.Next()
	}
}
