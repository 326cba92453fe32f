package handler

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"time"

	"survey-grader/internal/config"
	"survey-grader/internal/dto"
	"survey-grader/internal/logger"
	"survey-grader/internal/middleware"
	"survey-grader/internal/service"
	"survey-grader/internal/validation"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const (
	oauthStateCookieName = "oauthstate"
	oauthStateTTL        = 10 * time.Minute
)

// AuthHandler exposes the Google login flow and the JWT lifecycle
// endpoints built on top of it.
type AuthHandler struct {
	authService service.AuthService
	appConfig   *config.Config
	validator   *validation.Validator
}

func NewAuthHandler(authService service.AuthService, appConfig *config.Config, validator *validation.Validator) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		appConfig:   appConfig,
		validator:   validator,
	}
}

// newOAuthState returns 32 random bytes in URL-safe base64, used to tie
// the consent redirect back to this browser session.
func newOAuthState() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(buf), nil
}

// setStateCookie writes the OAuth state cookie. Clearing it is the same
// call with an empty value and a negative ttl.
func setStateCookie(c *fiber.Ctx, value string, ttl time.Duration) {
	c.Cookie(&fiber.Cookie{
		Name:     oauthStateCookieName,
		Value:    value,
		Expires:  time.Now().Add(ttl),
		HTTPOnly: true,
		Secure:   c.Secure(),
		SameSite: "Lax",
		Path:     "/",
	})
}

// GoogleLogin initiates the Google OAuth2 login flow.
// @Summary Initiate Google Login
// @Description Redirects the user to Google's OAuth2 consent page.
// @Tags auth
// @Success 302 {string} string "Redirects to Google"
// @Router /auth/google/login [get]
func (h *AuthHandler) GoogleLogin(c *fiber.Ctx) error {
	state, err := newOAuthState()
	if err != nil {
		logger.Get().Error("Could not generate OAuth state", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(middleware.ErrorResponse{
			Code: "OAUTH_STATE_GENERATION_ERROR", Message: "Could not generate state for OAuth flow", Status: fiber.StatusInternalServerError,
		})
	}

	setStateCookie(c, state, oauthStateTTL)
	logger.Get().Info("Redirecting to Google consent page", zap.String("state", state))
	return c.Redirect(h.authService.GetGoogleLoginURL(state), fiber.StatusTemporaryRedirect)
}

// GoogleCallback handles the callback from Google OAuth2.
// @Summary Google OAuth2 Callback
// @Description Handles user authentication after Google login, issues JWTs.
// @Tags auth
// @Param code query string true "Authorization code from Google"
// @Param state query string true "State string for CSRF protection"
// @Success 200 {object} dto.TokenResponse
// @Failure 400 {object} middleware.ErrorResponse "Invalid state or code"
// @Failure 500 {object} middleware.ErrorResponse "Internal server error"
// @Router /auth/google/callback [get]
func (h *AuthHandler) GoogleCallback(c *fiber.Ctx) error {
	appLogger := logger.Get()
	code := c.Query("code")
	receivedState := c.Query("state")
	expectedState := c.Cookies(oauthStateCookieName)

	// The state cookie is single use.
	setStateCookie(c, "", -time.Hour)

	if code == "" {
		appLogger.Warn("Google callback arrived without an authorization code")
		return c.Status(fiber.StatusBadRequest).JSON(middleware.ErrorResponse{
			Code: "MISSING_CODE", Message: "Authorization code is missing", Status: fiber.StatusBadRequest,
		})
	}
	if receivedState == "" || expectedState == "" || receivedState != expectedState {
		appLogger.Warn("OAuth state did not survive the round trip",
			zap.String("received", receivedState), zap.String("expected", expectedState))
		return c.Status(fiber.StatusBadRequest).JSON(middleware.ErrorResponse{
			Code: "INVALID_STATE", Message: "OAuth state mismatch or missing", Status: fiber.StatusBadRequest,
		})
	}

	accessToken, refreshToken, user, err := h.authService.HandleGoogleCallback(c.Context(), code, receivedState, expectedState)
	if err != nil {
		appLogger.Error("Google callback processing failed", zap.Error(err))
		status, clientCode, msg := fiber.StatusInternalServerError, "OAUTH_PROCESSING_ERROR", "Error processing Google login"
		if errors.Is(err, service.ErrInvalidAuthState) || errors.Is(err, service.ErrFailedToExchangeToken) {
			status, clientCode, msg = fiber.StatusBadRequest, "OAUTH_CALLBACK_ERROR", err.Error()
		}
		return c.Status(status).JSON(middleware.ErrorResponse{Code: clientCode, Message: msg, Status: status})
	}

	appLogger.Info("Issued token pair after Google login", zap.String("userID", user.ID))
	return c.Status(fiber.StatusOK).JSON(dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	})
}

// RefreshToken generates new access and refresh tokens using a valid refresh token.
// @Summary Refresh JWT tokens
// @Description Provides a new token pair if the provided refresh token is valid.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.RefreshTokenRequest true "Refresh token"
// @Success 200 {object} dto.TokenResponse
// @Failure 400 {object} middleware.ValidationErrorResponse "Refresh token missing"
// @Failure 401 {object} middleware.ErrorResponse "Refresh token invalid or expired"
// @Router /auth/refresh [post]
func (h *AuthHandler) RefreshToken(c *fiber.Ctx) error {
	appLogger := logger.Get()

	var req dto.RefreshTokenRequest
	if err := c.BodyParser(&req); err != nil {
		appLogger.Warn("Unparseable token refresh request", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(middleware.ErrorResponse{
			Code: "INVALID_REQUEST_BODY", Message: "Invalid request body", Status: fiber.StatusBadRequest,
		})
	}
	if validationErrors := h.validator.ValidateStruct(&req); len(validationErrors) > 0 {
		return validationErrors
	}

	access, refresh, err := h.authService.RefreshToken(c.Context(), req.RefreshToken)
	if err != nil {
		appLogger.Warn("Token refresh rejected", zap.Error(err))
		return c.Status(fiber.StatusUnauthorized).JSON(middleware.ErrorResponse{
			Code: "INVALID_REFRESH_TOKEN", Message: "Failed to refresh token", Status: fiber.StatusUnauthorized,
		})
	}

	appLogger.Info("Token pair refreshed")
	return c.Status(fiber.StatusOK).JSON(dto.TokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
	})
}

// Logout handles user logout.
// @Summary Logout user
// @Description JWTs are stateless, so logout amounts to the client discarding its tokens.
// @Tags auth
// @Security ApiKeyAuth
// @Success 200 {object} dto.MessageResponse
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if userID, ok := c.Locals(middleware.UserIDKey).(string); ok && userID != "" {
		logger.Get().Info("User logged out", zap.String("userID", userID))
	} else {
		logger.Get().Info("Logout request without an identified user")
	}
	return c.Status(fiber.StatusOK).JSON(dto.MessageResponse{Message: "Logout successful. Please discard your tokens."})
}
