package middleware

import (
	"errors"
	"net/http"

	"survey-grader/internal/domain"
	"survey-grader/internal/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ErrorResponse is the JSON body every failed request carries.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
}

// ValidationErrorResponse extends ErrorResponse with the per-field
// problems found in a submission or request body.
type ValidationErrorResponse struct {
	Code    string                   `json:"code"`
	Message string                   `json:"message"`
	Status  int                      `json:"status"`
	Errors  []domain.ValidationError `json:"errors"`
}

// domainErrorStatus translates domain error codes into HTTP statuses.
// An unpublished survey is indistinguishable from a missing one for
// students, so both map to 404.
var domainErrorStatus = map[domain.ErrorCode]int{
	domain.ErrNotFound:                http.StatusNotFound,
	domain.ErrSurveyNotFound:          http.StatusNotFound,
	domain.ErrSurveyNotPublished:      http.StatusNotFound,
	domain.ErrResponseNotFound:        http.StatusNotFound,
	domain.ErrInvalidInput:            http.StatusBadRequest,
	domain.ErrInvalidAnswer:           http.StatusBadRequest,
	domain.ErrValidation:              http.StatusBadRequest,
	domain.ErrAlreadySubmitted:        http.StatusBadRequest,
	domain.ErrAttemptLimitReached:     http.StatusBadRequest,
	domain.ErrUnsupportedQuestionType: http.StatusBadRequest,
	domain.ErrUnauthorized:            http.StatusUnauthorized,
	domain.ErrLLMServiceError:         http.StatusServiceUnavailable,
}

func statusForDomainError(code domain.ErrorCode) int {
	if status, ok := domainErrorStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// ErrorHandler converts every error escaping a handler into a JSON
// response. Validation failures keep their field details; everything
// else collapses to a code, a message and a status.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		appLogger := logger.Get()

		var validationErrs domain.ValidationErrors
		if errors.As(err, &validationErrs) {
			appLogger.Warn("Request failed validation",
				zap.String("path", c.Path()),
				zap.Int("error_count", len(validationErrs)))
			return c.Status(http.StatusBadRequest).JSON(ValidationErrorResponse{
				Code:    string(domain.ErrValidation),
				Message: "Request validation failed",
				Status:  http.StatusBadRequest,
				Errors:  validationErrs,
			})
		}

		var domainErr *domain.DomainError
		if errors.As(err, &domainErr) {
			status := statusForDomainError(domainErr.Code)
			appLogger.Error("Request failed with a domain error",
				zap.String("code", string(domainErr.Code)),
				zap.String("message", domainErr.Message),
				zap.Int("status", status),
				zap.Error(domainErr.Err))
			return c.Status(status).JSON(ErrorResponse{
				Code:    string(domainErr.Code),
				Message: domainErr.Message,
				Status:  status,
			})
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			appLogger.Warn("Request failed inside fiber",
				zap.Int("code", fiberErr.Code),
				zap.String("message", fiberErr.Message))
			return c.Status(fiberErr.Code).JSON(ErrorResponse{
				Code:    "HTTP_ERROR",
				Message: fiberErr.Message,
				Status:  fiberErr.Code,
			})
		}

		appLogger.Error("Request failed with an unclassified error",
			zap.String("path", c.Path()),
			zap.Error(err))
		return c.Status(http.StatusInternalServerError).JSON(ErrorResponse{
			Code:    string(domain.ErrInternal),
			Message: "Internal server error",
			Status:  http.StatusInternalServerError,
		})
	}
}
