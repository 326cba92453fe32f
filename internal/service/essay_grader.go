package service

import (
	"context"
	"time"

	"survey-grader/internal/domain"
	"survey-grader/internal/logger"
	"survey-grader/internal/monitoring"
	"survey-grader/internal/port"
	"survey-grader/internal/util"

	"go.uber.org/zap"
)

// EssayEvaluator produces an evaluation for an essay answer.
type EssayEvaluator interface {
	GradeEssay(ctx context.Context, question *domain.Question, studentAnswer string) *domain.EssayEvaluation
}

// EssayGrader grades exam-mode essay questions through an LLM. It never
// returns an error: a failed call or an unparsable response degrades to
// the length-based fallback, so a submission is always fully graded.
type EssayGrader struct {
	generator port.TextGenerator
	rubric    *RubricSource
	timeout   time.Duration
}

// NewEssayGrader creates a new EssayGrader instance.
func NewEssayGrader(generator port.TextGenerator, rubric *RubricSource, timeout time.Duration) *EssayGrader {
	return &EssayGrader{
		generator: generator,
		rubric:    rubric,
		timeout:   timeout,
	}
}

// GradeEssay evaluates the student's answer. The LLM is invoked once, with
// no retries.
func (g *EssayGrader) GradeEssay(ctx context.Context, question *domain.Question, studentAnswer string) *domain.EssayEvaluation {
	l := logger.Get()

	prompt := BuildGradingPrompt(question, studentAnswer, g.rubric.Content())

	callCtx := ctx
	if g.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	response, err := g.generator.Generate(callCtx, prompt)
	if err != nil {
		l.Warn("Essay grading call failed, falling back to length-based score",
			zap.String("question_id", question.ID),
			zap.Error(err))
		monitoring.EssayGradings.WithLabelValues(monitoring.SourceFallback).Inc()
		return FallbackEvaluation(studentAnswer, question.Score)
	}

	eval, err := parseEvaluation(response)
	if err != nil {
		l.Warn("Essay grading response was not parsable, falling back to length-based score",
			zap.String("question_id", question.ID),
			zap.Error(err))
		monitoring.EssayGradings.WithLabelValues(monitoring.SourceFallback).Inc()
		return FallbackEvaluation(studentAnswer, question.Score)
	}

	sanitizeEvaluation(eval, question.Score)
	monitoring.EssayGradings.WithLabelValues(monitoring.SourceLLM).Inc()
	return eval
}

// sanitizeEvaluation repairs an LLM evaluation in place. The max score is
// taken from the question rather than the response, the score is clamped
// into range, and percentage and level are recomputed so stored records
// stay consistent even when the model ignored its instructions. The level
// bands are the same ones the prompt spells out.
func sanitizeEvaluation(eval *domain.EssayEvaluation, maxScore float64) {
	eval.MaxScore = maxScore
	eval.Score = util.Round1(util.Clamp(eval.Score, 0, maxScore))
	if maxScore > 0 {
		eval.Percentage = util.Round1(eval.Score / maxScore * 100)
	} else {
		eval.Percentage = 0
	}
	eval.Level = domain.LevelForPercentage(eval.Percentage)

	if eval.Strengths == nil {
		eval.Strengths = []string{}
	}
	if eval.AreasForImprovement == nil {
		eval.AreasForImprovement = []string{}
	}

	eval.Source = domain.EvaluationSourceLLM
}
