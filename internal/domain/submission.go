package domain

import (
	"time"
)

// SurveyResponse is one graded submission of a survey by a user.
type SurveyResponse struct {
	ID              string
	SurveyID        string
	UserID          string
	AttemptNumber   int
	TotalScore      float64
	PercentageScore float64
	IsPassed        *bool
	SubmittedAt     time.Time
	Answers         []*ResponseAnswer
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NewSurveyResponse creates a new SurveyResponse instance.
func NewSurveyResponse(surveyID, userID string, attemptNumber int) *SurveyResponse {
	now := time.Now()
	return &SurveyResponse{
		SurveyID:      surveyID,
		UserID:        userID,
		AttemptNumber: attemptNumber,
		SubmittedAt:   now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// Validate validates the survey response.
func (r *SurveyResponse) Validate() error {
	if r.SurveyID == "" {
		return NewValidationError("survey ID is required")
	}
	if r.UserID == "" {
		return NewValidationError("user ID is required")
	}
	if r.AttemptNumber < 1 {
		return NewValidationError("attempt number must be at least 1")
	}
	return nil
}

// AnswerByQuestionID returns the stored answer for the given question, or nil.
func (r *SurveyResponse) AnswerByQuestionID(questionID string) *ResponseAnswer {
	for _, a := range r.Answers {
		if a.QuestionID == questionID {
			return a
		}
	}
	return nil
}

// ResponseAnswer is one stored answer of a submission together with its
// grading outcome.
type ResponseAnswer struct {
	ID         string
	ResponseID string
	QuestionID string
	Answer     AnswerValue
	IsCorrect  bool
	Score      float64
	Essay      *EssayEvaluation
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewResponseAnswer creates a new ResponseAnswer instance.
func NewResponseAnswer(responseID, questionID string, answer AnswerValue) *ResponseAnswer {
	now := time.Now()
	return &ResponseAnswer{
		ResponseID: responseID,
		QuestionID: questionID,
		Answer:     answer,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}
