package dto

import (
	"encoding/json"
	"time"
)

// SubmitRequest is the request body for submitting survey answers. Each
// value may be a string, a number, a boolean, or an array of those,
// depending on the question type.
// @Description Request body for submitting answers, keyed by question ID
type SubmitRequest struct {
	Answers map[string]json.RawMessage `json:"answers" validate:"required,min=1"`
}

// ScoreBreakdownResponse splits an essay score across grading criteria.
type ScoreBreakdownResponse struct {
	ContentCompleteness float64 `json:"content_completeness"`
	Accuracy            float64 `json:"accuracy"`
	Depth               float64 `json:"depth"`
	Expression          float64 `json:"expression"`
}

// FeedbackPointResponse is one entry of per-criterion essay feedback.
type FeedbackPointResponse struct {
	Point    string  `json:"point"`
	Score    float64 `json:"score"`
	MaxScore float64 `json:"max_score"`
	Feedback string  `json:"feedback"`
}

// EssayEvaluationResponse is the detailed grading of one essay answer.
// @Description LLM or fallback grading detail for an essay question
type EssayEvaluationResponse struct {
	Score               float64                 `json:"score"`
	MaxScore            float64                 `json:"max_score"`
	Percentage          float64                 `json:"percentage"`
	Level               string                  `json:"level"`
	ScoreBreakdown      *ScoreBreakdownResponse `json:"score_breakdown,omitempty"`
	Strengths           []string                `json:"strengths"`
	AreasForImprovement []string                `json:"areas_for_improvement"`
	Comment             string                  `json:"comment"`
	DetailedFeedback    []FeedbackPointResponse `json:"detailed_feedback,omitempty"`
}

// AnswerResultResponse is the graded outcome of a single question.
type AnswerResultResponse struct {
	QuestionID      string                   `json:"question_id"`
	Answer          json.RawMessage          `json:"answer"`
	IsCorrect       bool                     `json:"is_correct"`
	Score           float64                  `json:"score"`
	EssayEvaluation *EssayEvaluationResponse `json:"essay_evaluation,omitempty"`
}

// SubmissionResultResponse is a graded submission with its aggregate.
// @Description Graded submission with per-answer records
type SubmissionResultResponse struct {
	ResponseID      string                 `json:"response_id"`
	SurveyID        string                 `json:"survey_id"`
	AttemptNumber   int                    `json:"attempt_number"`
	TotalScore      float64                `json:"total_score"`
	PercentageScore float64                `json:"percentage_score"`
	IsPassed        *bool                  `json:"is_passed"`
	SubmittedAt     time.Time              `json:"submitted_at"`
	Answers         []AnswerResultResponse `json:"answers"`
}
