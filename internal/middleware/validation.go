package middleware

import (
	"survey-grader/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// ValidatedSurveyIDKey is the locals key holding a survey ID that
// already passed path parameter validation.
const ValidatedSurveyIDKey = "validated_survey_id"

// ValidationMiddleware screens request parameters before they reach a
// handler.
type ValidationMiddleware struct {
	validator *validation.Validator
}

func NewValidationMiddleware() *ValidationMiddleware {
	return &ValidationMiddleware{validator: validation.NewValidator()}
}

// ValidateSurveyIDParam checks the :id path parameter is a plausible
// survey ID and stashes it in the locals on success. Failures surface
// as validation errors through the app error handler.
func (vm *ValidationMiddleware) ValidateSurveyIDParam() fiber.Handler {
	return func(c *fiber.Ctx) error {
		surveyID := c.Params("id")
		if errs := vm.validator.ValidateSurveyID(surveyID); len(errs) > 0 {
			return errs
		}
		c.Locals(ValidatedSurveyIDKey, surveyID)
		return c.Next()
	}
}
