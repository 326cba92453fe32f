package domain

// Level is the qualitative grade attached to an essay evaluation.
type Level = string

const (
	LevelFull      Level = "满分"
	LevelExcellent Level = "优秀"
	LevelGood      Level = "良好"
	LevelPass      Level = "及格"
	LevelFail      Level = "不及格"
)

// LevelForPercentage maps a percentage score to its qualitative level.
// These bands match the ones spelled out in the grading prompt.
func LevelForPercentage(percentage float64) Level {
	switch {
	case percentage >= 90:
		return LevelFull
	case percentage >= 80:
		return LevelExcellent
	case percentage >= 70:
		return LevelGood
	case percentage >= 60:
		return LevelPass
	default:
		return LevelFail
	}
}

// ScoreBreakdown splits an essay score across the four grading criteria.
type ScoreBreakdown struct {
	ContentCompleteness float64 `json:"content_completeness"`
	Accuracy            float64 `json:"accuracy"`
	Depth               float64 `json:"depth"`
	Expression          float64 `json:"expression"`
}

// FeedbackPoint is one entry of the detailed per-criterion feedback.
type FeedbackPoint struct {
	Point    string  `json:"point"`
	Score    float64 `json:"score"`
	MaxScore float64 `json:"max_score"`
	Feedback string  `json:"feedback"`
}

// EvaluationSource records how an essay evaluation was produced. Cache
// layers must only reuse LLM-produced evaluations; fallbacks are cheap to
// recompute and would otherwise pin a degraded grade.
type EvaluationSource string

const (
	EvaluationSourceLLM      EvaluationSource = "llm"
	EvaluationSourceFallback EvaluationSource = "fallback"
	EvaluationSourceCache    EvaluationSource = "cache"
)

// EssayEvaluation is the structured result of grading one essay answer,
// either produced by the LLM or synthesized by the length-based fallback.
type EssayEvaluation struct {
	Score               float64         `json:"score"`
	MaxScore            float64         `json:"max_score"`
	Percentage          float64         `json:"percentage"`
	Level               Level           `json:"level"`
	ScoreBreakdown      *ScoreBreakdown `json:"score_breakdown,omitempty"`
	Strengths           []string        `json:"strengths"`
	AreasForImprovement []string        `json:"areas_for_improvement"`
	Comment             string          `json:"comment"`
	DetailedFeedback    []FeedbackPoint `json:"detailed_feedback,omitempty"`

	// Source is provenance metadata and is never serialized.
	Source EvaluationSource `json:"-"`
}

// GradingRecord is the graded outcome of a single question.
type GradingRecord struct {
	QuestionID string           `json:"question_id"`
	IsCorrect  bool             `json:"is_correct"`
	Score      float64          `json:"score"`
	Essay      *EssayEvaluation `json:"essay_evaluation,omitempty"`
}

// AggregateResult summarizes a whole submission.
type AggregateResult struct {
	TotalScore      float64 `json:"total_score"`
	PercentageScore float64 `json:"percentage_score"`
	// IsPassed is nil when the survey defines no positive pass score.
	IsPassed *bool `json:"is_passed"`
}

// SubmissionResult bundles the per-question records with the aggregate.
type SubmissionResult struct {
	Records   []*GradingRecord `json:"records"`
	Aggregate AggregateResult  `json:"aggregate"`
}

// RecordByQuestionID returns the record for the given question, or nil.
func (r *SubmissionResult) RecordByQuestionID(questionID string) *GradingRecord {
	for _, rec := range r.Records {
		if rec.QuestionID == questionID {
			return rec
		}
	}
	return nil
}
