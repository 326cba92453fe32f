package models

import (
	"database/sql"
	"time"
)

// SurveyResponse represents one graded submission of a survey.
type SurveyResponse struct {
	ID              string       `db:"id"`               // ULID
	SurveyID        string       `db:"survey_id"`        // Foreign key to surveys table
	UserID          string       `db:"user_id"`          // Foreign key to users table
	AttemptNumber   int          `db:"attempt_number"`   // 1-based attempt counter per user and survey
	TotalScore      float64      `db:"total_score"`      // Sum of awarded scores
	PercentageScore float64      `db:"percentage_score"` // Total score relative to the survey maximum
	IsPassed        sql.NullBool `db:"is_passed"`        // NULL when the survey defines no pass score
	SubmittedAt     time.Time    `db:"submitted_at"`     // Timestamp of submission
	CreatedAt       time.Time    `db:"created_at"`       // Timestamp of record creation
	UpdatedAt       time.Time    `db:"updated_at"`       // Timestamp of last update
	DeletedAt       sql.NullTime `db:"deleted_at"`       // Timestamp of soft deletion, if applicable
}

// ResponseAnswer represents one stored answer of a submission together
// with its grading outcome.
type ResponseAnswer struct {
	ID              string       `db:"id"`               // ULID
	ResponseID      string       `db:"response_id"`      // Foreign key to survey_responses table
	QuestionID      string       `db:"question_id"`      // Foreign key to questions table
	AnswerValue     JSONText     `db:"answer_value"`     // JSON scalar or array as submitted
	IsCorrect       bool         `db:"is_correct"`       // Grading verdict for this answer
	Score           float64      `db:"score"`            // Awarded score
	EssayEvaluation JSONText     `db:"essay_evaluation"` // JSON evaluation detail for essay answers
	CreatedAt       time.Time    `db:"created_at"`       // Timestamp of record creation
	UpdatedAt       time.Time    `db:"updated_at"`       // Timestamp of last update
	DeletedAt       sql.NullTime `db:"deleted_at"`       // Timestamp of soft deletion, if applicable
}
