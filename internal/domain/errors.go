package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ErrorCode represents a specific type of error in the domain
type ErrorCode string

const (
	// Common errors
	ErrInternal     ErrorCode = "INTERNAL_ERROR"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"
	ErrNotFound     ErrorCode = "NOT_FOUND"
	ErrUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrValidation   ErrorCode = "VALIDATION_ERROR"

	// Survey specific errors
	ErrSurveyNotFound          ErrorCode = "SURVEY_NOT_FOUND"
	ErrSurveyNotPublished      ErrorCode = "SURVEY_NOT_PUBLISHED"
	ErrResponseNotFound        ErrorCode = "RESPONSE_NOT_FOUND"
	ErrInvalidAnswer           ErrorCode = "INVALID_ANSWER"
	ErrAlreadySubmitted        ErrorCode = "ALREADY_SUBMITTED"
	ErrAttemptLimitReached     ErrorCode = "ATTEMPT_LIMIT_REACHED"
	ErrUnsupportedQuestionType ErrorCode = "UNSUPPORTED_QUESTION_TYPE"
	ErrLLMServiceError         ErrorCode = "LLM_SERVICE_ERROR"
)

// DomainError represents a domain-specific error
type DomainError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// MarshalJSON implements the json.Marshaler interface
func (e *DomainError) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}{
		Code:    string(e.Code),
		Message: e.Message,
	})
}

// NewError creates a new DomainError
func NewError(code ErrorCode, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Helper functions for common errors
func NewNotFoundError(message string) *DomainError {
	return NewError(ErrNotFound, message, nil)
}

func NewInvalidInputError(message string) *DomainError {
	return NewError(ErrInvalidInput, message, nil)
}

func NewInternalError(message string, err error) *DomainError {
	return NewError(ErrInternal, message, err)
}

func NewUnauthorizedError(message string) *DomainError {
	return NewError(ErrUnauthorized, message, nil)
}

func NewValidationError(message string) *DomainError {
	return NewError(ErrValidation, message, nil)
}

func NewSurveyNotFoundError(surveyID string) *DomainError {
	return NewError(ErrSurveyNotFound, fmt.Sprintf("Survey not found with ID: %s", surveyID), nil)
}

func NewSurveyNotPublishedError(surveyID string) *DomainError {
	return NewError(ErrSurveyNotPublished, fmt.Sprintf("Survey %s is not open for submissions", surveyID), nil)
}

func NewResponseNotFoundError(surveyID string) *DomainError {
	return NewError(ErrResponseNotFound, fmt.Sprintf("No submission found for survey %s", surveyID), nil)
}

func NewInvalidAnswerError(message string) *DomainError {
	return NewError(ErrInvalidAnswer, message, nil)
}

func NewAlreadySubmittedError() *DomainError {
	return NewError(ErrAlreadySubmitted, "This survey does not allow multiple attempts and has already been submitted", nil)
}

func NewAttemptLimitError(maxAttempts int) *DomainError {
	return NewError(ErrAttemptLimitReached, fmt.Sprintf("Maximum number of attempts reached (%d)", maxAttempts), nil)
}

func NewUnsupportedQuestionTypeError(questionType string) *DomainError {
	return NewError(ErrUnsupportedQuestionType, fmt.Sprintf("Unsupported question type: %s", questionType), nil)
}

func NewLLMServiceError(err error) *DomainError {
	return NewError(ErrLLMServiceError, "Failed to process with LLM service", err)
}

// ValidationError describes a single invalid request field.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors aggregates field-level validation failures so a request
// can report all of them at once.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, ve := range e {
		msgs = append(msgs, ve.Error())
	}
	return strings.Join(msgs, "; ")
}

func NewMissingFieldError(field string) ValidationError {
	return ValidationError{Field: field, Message: "is required"}
}

func NewInvalidFormatError(field, value string) ValidationError {
	return ValidationError{Field: field, Message: fmt.Sprintf("has invalid format: %q", value)}
}

func NewOutOfRangeError(field string, value, min, max int) ValidationError {
	return ValidationError{Field: field, Message: fmt.Sprintf("value %d is out of range [%d, %d]", value, min, max)}
}
