package models

import (
	"database/sql"
	"time"
)

// Survey represents a survey or exam definition.
type Survey struct {
	ID                    string          `db:"id"`                      // ULID
	Title                 string          `db:"title"`                   // Display title
	Description           sql.NullString  `db:"description"`             // Optional longer description
	SurveyType            string          `db:"survey_type"`             // "exam" or "questionnaire"
	Status                string          `db:"status"`                  // "draft", "published" or "closed"
	TotalScore            float64         `db:"total_score"`             // Sum of question scores
	PassScore             sql.NullFloat64 `db:"pass_score"`              // Pass threshold in percent, NULL when ungraded
	TimeLimitMinutes      int             `db:"time_limit_minutes"`      // 0 means no limit
	AllowMultipleAttempts bool            `db:"allow_multiple_attempts"` // Whether resubmission is allowed
	MaxAttempts           int             `db:"max_attempts"`            // 0 means unlimited when resubmission is allowed
	StartAt               sql.NullTime    `db:"start_at"`                // Optional submission window start
	EndAt                 sql.NullTime    `db:"end_at"`                  // Optional submission window end
	CreatedBy             sql.NullString  `db:"created_by"`              // User ID of the author
	CreatedAt             time.Time       `db:"created_at"`              // Timestamp of creation
	UpdatedAt             time.Time       `db:"updated_at"`              // Timestamp of last update
	DeletedAt             sql.NullTime    `db:"deleted_at"`              // Timestamp of soft deletion, if applicable
}

// Question represents one question of a survey.
type Question struct {
	ID              string         `db:"id"`               // ULID
	SurveyID        string         `db:"survey_id"`        // Foreign key to surveys table
	QuestionType    string         `db:"question_type"`    // One of the supported question types
	Title           string         `db:"title"`            // Question text
	Description     sql.NullString `db:"description"`      // Optional hint or context
	Options         JSONText       `db:"options"`          // JSON array of {key, value} options
	CorrectAnswer   JSONText       `db:"correct_answer"`   // JSON scalar or array answer key
	Score           float64        `db:"score"`            // Maximum score for this question
	GradingCriteria JSONText       `db:"grading_criteria"` // JSON grading guidance for essay questions
	MinWordCount    int            `db:"min_word_count"`   // Minimum essay length, 0 when unconstrained
	IsRequired      bool           `db:"is_required"`      // Whether an answer is mandatory
	DisplayOrder    int            `db:"display_order"`    // Position within the survey
	CreatedAt       time.Time      `db:"created_at"`       // Timestamp of creation
	UpdatedAt       time.Time      `db:"updated_at"`       // Timestamp of last update
	DeletedAt       sql.NullTime   `db:"deleted_at"`       // Timestamp of soft deletion, if applicable
}
