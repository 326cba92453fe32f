package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"survey-grader/internal/domain"
	"survey-grader/internal/dto"

	"github.com/go-playground/validator/v10"
)

// maxAnswerTextLength caps a single answer value. Essay answers are the
// longest legitimate inputs.
const maxAnswerTextLength = 10000

// Validator provides request validation functionality
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{validate: validator.New()}
}

// ValidateStruct runs tag-based validation on a request struct and
// converts failures into domain validation errors.
func (v *Validator) ValidateStruct(s interface{}) domain.ValidationErrors {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs domain.ValidationErrors
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		for _, fe := range fieldErrs {
			field := strings.ToLower(fe.Field())
			switch fe.Tag() {
			case "required":
				verrs = append(verrs, domain.NewMissingFieldError(field))
			case "min":
				verrs = append(verrs, domain.ValidationError{
					Field:   field,
					Message: fmt.Sprintf("must contain at least %s entries", fe.Param()),
				})
			default:
				verrs = append(verrs, domain.NewInvalidFormatError(field, fmt.Sprintf("%v", fe.Value())))
			}
		}
		return verrs
	}

	verrs = append(verrs, domain.ValidationError{Field: "request", Message: err.Error()})
	return verrs
}

// ValidateSurveyID validates a survey ID path parameter.
func (v *Validator) ValidateSurveyID(surveyID string) domain.ValidationErrors {
	var verrs domain.ValidationErrors

	if strings.TrimSpace(surveyID) == "" {
		verrs = append(verrs, domain.NewMissingFieldError("survey_id"))
		return verrs
	}
	if !isValidULID(surveyID) {
		verrs = append(verrs, domain.NewInvalidFormatError("survey_id", surveyID))
	}

	return verrs
}

// ValidateSubmission decodes the submitted answers and checks them
// against the survey's questions. Answers referencing questions outside
// the survey are left in place; grading skips them. On success the
// decoded answers are returned.
func (v *Validator) ValidateSubmission(survey *domain.Survey, req *dto.SubmitRequest) (map[string]domain.AnswerValue, domain.ValidationErrors) {
	if verrs := v.ValidateStruct(req); len(verrs) > 0 {
		return nil, verrs
	}

	var verrs domain.ValidationErrors
	answers := make(map[string]domain.AnswerValue, len(req.Answers))
	for questionID, raw := range req.Answers {
		value, err := domain.ParseAnswerValue(raw)
		if err != nil {
			verrs = append(verrs, domain.NewInvalidFormatError("answers."+questionID, string(raw)))
			continue
		}
		if length := len(value.Text()); length > maxAnswerTextLength {
			verrs = append(verrs, domain.NewOutOfRangeError("answers."+questionID, length, 1, maxAnswerTextLength))
			continue
		}
		answers[questionID] = value
	}

	for _, question := range survey.Questions {
		if !question.Required {
			continue
		}
		answer, ok := answers[question.ID]
		if !ok || answer.IsEmpty() {
			verrs = append(verrs, domain.NewMissingFieldError("answers."+question.ID))
		}
	}

	if len(verrs) > 0 {
		return nil, verrs
	}
	return answers, nil
}

// isValidULID checks if the string is a valid ULID format
func isValidULID(s string) bool {
	// ULID is 26 characters long, base32 encoded
	if len(s) != 26 {
		return false
	}
	// Check if all characters are valid base32 (Crockford's Base32)
	validULID := regexp.MustCompile(`^[0-9A-HJKMNP-TV-Z]{26}$`)
	return validULID.MatchString(s)
}
