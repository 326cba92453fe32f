package importmodels

import (
	"encoding/json"
	"time"
)

// ImportOption defines one selectable option of a choice question in the
// import file.
type ImportOption struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// ImportQuestion defines the structure for a question in the JSON import file.
// CorrectAnswer accepts a string or an array of strings; GradingCriteria is
// stored verbatim for essay questions.
type ImportQuestion struct {
	Type            string          `json:"type"`
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	Options         []ImportOption  `json:"options"`
	CorrectAnswer   json.RawMessage `json:"correct_answer"`
	Score           float64         `json:"score"`
	GradingCriteria json.RawMessage `json:"grading_criteria"`
	MinWordCount    int             `json:"min_word_count"`
	Required        bool            `json:"required"`
}

// ImportSurvey defines the structure for a survey in the JSON import file.
// Questions are imported in file order, which becomes their display order.
type ImportSurvey struct {
	Title                 string           `json:"title"`
	Description           string           `json:"description"`
	Type                  string           `json:"type"`
	Status                string           `json:"status"`
	PassScore             *float64         `json:"pass_score"`
	TimeLimitMinutes      int              `json:"time_limit_minutes"`
	AllowMultipleAttempts bool             `json:"allow_multiple_attempts"`
	MaxAttempts           int              `json:"max_attempts"`
	StartAt               *time.Time       `json:"start_at"`
	EndAt                 *time.Time       `json:"end_at"`
	CreatedBy             string           `json:"created_by"`
	Questions             []ImportQuestion `json:"questions"`
}
