package dto

import "time"

// SurveySummaryResponse represents one survey in the published listing.
// @Description Survey summary information
type SurveySummaryResponse struct {
	ID                    string     `json:"id"`
	Title                 string     `json:"title"`
	Description           string     `json:"description,omitempty"`
	Type                  string     `json:"type"`
	TotalScore            float64    `json:"total_score"`
	TimeLimitMinutes      int        `json:"time_limit_minutes,omitempty"`
	AllowMultipleAttempts bool       `json:"allow_multiple_attempts"`
	MaxAttempts           int        `json:"max_attempts,omitempty"`
	StartAt               *time.Time `json:"start_at,omitempty"`
	EndAt                 *time.Time `json:"end_at,omitempty"`
}

// SurveyListResponse is the response for listing published surveys.
type SurveyListResponse struct {
	Surveys []SurveySummaryResponse `json:"surveys"`
}

// OptionResponse renders one selectable option. Label is the display
// form "KEY. text".
type OptionResponse struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// QuestionResponse is the student view of a question. Correct answers
// and grading criteria are withheld.
type QuestionResponse struct {
	ID           string           `json:"id"`
	Type         string           `json:"type"`
	Title        string           `json:"title"`
	Description  string           `json:"description,omitempty"`
	Options      []OptionResponse `json:"options,omitempty"`
	Score        float64          `json:"score"`
	MinWordCount int              `json:"min_word_count,omitempty"`
	Required     bool             `json:"required"`
	DisplayOrder int              `json:"display_order"`
}

// SurveyDetailResponse is the full student view of a survey.
// @Description Survey with its questions
type SurveyDetailResponse struct {
	ID                    string             `json:"id"`
	Title                 string             `json:"title"`
	Description           string             `json:"description,omitempty"`
	Type                  string             `json:"type"`
	TotalScore            float64            `json:"total_score"`
	PassScore             *float64           `json:"pass_score,omitempty"`
	TimeLimitMinutes      int                `json:"time_limit_minutes,omitempty"`
	AllowMultipleAttempts bool               `json:"allow_multiple_attempts"`
	MaxAttempts           int                `json:"max_attempts,omitempty"`
	StartAt               *time.Time         `json:"start_at,omitempty"`
	EndAt                 *time.Time         `json:"end_at,omitempty"`
	Questions             []QuestionResponse `json:"questions"`
}

// ErrorResponse represents an error in the API response
type ErrorResponse struct {
	Error string `json:"error"`
}
