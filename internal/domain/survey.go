package domain

import (
	"time"
)

// SurveyType distinguishes graded exams from ungraded questionnaires.
// The mode changes how essay questions are handled: exams route them to
// the LLM grader, questionnaires grade them like text questions.
type SurveyType string

const (
	SurveyTypeExam          SurveyType = "exam"
	SurveyTypeQuestionnaire SurveyType = "questionnaire"
)

// Valid reports whether the survey type is supported.
func (t SurveyType) Valid() bool {
	return t == SurveyTypeExam || t == SurveyTypeQuestionnaire
}

// SurveyStatus is the lifecycle state of a survey.
type SurveyStatus string

const (
	SurveyStatusDraft     SurveyStatus = "draft"
	SurveyStatusPublished SurveyStatus = "published"
	SurveyStatusClosed    SurveyStatus = "closed"
)

// Survey represents a survey or exam with its questions.
type Survey struct {
	ID                    string
	Title                 string
	Description           string
	Type                  SurveyType
	Status                SurveyStatus
	TotalScore            float64
	PassScore             *float64
	TimeLimitMinutes      int
	AllowMultipleAttempts bool
	MaxAttempts           int
	StartAt               *time.Time
	EndAt                 *time.Time
	CreatedBy             string
	Questions             []*Question
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// NewSurvey creates a new Survey instance.
func NewSurvey(title string, surveyType SurveyType) *Survey {
	now := time.Now()
	return &Survey{
		Title:     title,
		Type:      surveyType,
		Status:    SurveyStatusDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Validate validates the survey.
func (s *Survey) Validate() error {
	if s.Title == "" {
		return NewValidationError("title is required")
	}
	if !s.Type.Valid() {
		return NewValidationError("survey type must be exam or questionnaire")
	}
	if s.AllowMultipleAttempts && s.MaxAttempts < 0 {
		return NewValidationError("max attempts must not be negative")
	}
	for _, q := range s.Questions {
		if err := q.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// IsExam reports whether essay questions should be graded by the LLM.
func (s *Survey) IsExam() bool {
	return s.Type == SurveyTypeExam
}

// IsOpen reports whether the survey accepts submissions at the given time.
func (s *Survey) IsOpen(now time.Time) bool {
	if s.Status != SurveyStatusPublished {
		return false
	}
	if s.StartAt != nil && now.Before(*s.StartAt) {
		return false
	}
	if s.EndAt != nil && now.After(*s.EndAt) {
		return false
	}
	return true
}

// QuestionByID returns the question with the given ID, or nil.
func (s *Survey) QuestionByID(questionID string) *Question {
	for _, q := range s.Questions {
		if q.ID == questionID {
			return q
		}
	}
	return nil
}
