package service

import (
	"context"

	"survey-grader/internal/domain"
	"survey-grader/internal/logger"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	defaultEssayConcurrency    = 3
	defaultEssayPassPercentage = 60
)

// gradingService implements domain.GradingService. Objective questions are
// graded inline; exam-mode essays are dispatched to the essay evaluator
// with bounded concurrency.
type gradingService struct {
	essays         EssayEvaluator
	maxConcurrent  int
	passPercentage float64
}

// NewGradingService creates a new grading service. maxConcurrent bounds
// how many essays are evaluated at once; passPercentage is the essay
// percentage at which an answer counts as correct.
func NewGradingService(essays EssayEvaluator, maxConcurrent int, passPercentage float64) domain.GradingService {
	if maxConcurrent <= 0 {
		maxConcurrent = defaultEssayConcurrency
	}
	if passPercentage <= 0 {
		passPercentage = defaultEssayPassPercentage
	}
	return &gradingService{
		essays:         essays,
		maxConcurrent:  maxConcurrent,
		passPercentage: passPercentage,
	}
}

// GradeSubmission grades every answered question of the survey and
// aggregates the outcome. Records follow the survey's question order;
// answers referencing questions outside the survey are logged and
// skipped, and unanswered questions produce no record.
func (s *gradingService) GradeSubmission(ctx context.Context, survey *domain.Survey, answers map[string]domain.AnswerValue) (*domain.SubmissionResult, error) {
	l := logger.Get()

	for questionID := range answers {
		if survey.QuestionByID(questionID) == nil {
			l.Warn("Submitted answer references unknown question",
				zap.String("survey_id", survey.ID),
				zap.String("question_id", questionID))
		}
	}

	type essayJob struct {
		index    int
		question *domain.Question
		answer   string
	}

	records := make([]*domain.GradingRecord, 0, len(survey.Questions))
	var jobs []essayJob

	for _, question := range survey.Questions {
		answer, ok := answers[question.ID]
		if !ok {
			continue
		}
		if question.Type == domain.Essay && survey.IsExam() {
			records = append(records, &domain.GradingRecord{QuestionID: question.ID})
			jobs = append(jobs, essayJob{
				index:    len(records) - 1,
				question: question,
				answer:   answer.Text(),
			})
			continue
		}
		records = append(records, GradeObjective(question, answer))
	}

	if len(jobs) > 0 {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(s.maxConcurrent)
		for _, job := range jobs {
			g.Go(func() error {
				eval := s.essays.GradeEssay(gctx, job.question, job.answer)
				record := records[job.index]
				record.Score = eval.Score
				record.IsCorrect = eval.Percentage >= s.passPercentage
				record.Essay = eval
				return nil
			})
		}
		// Essay grading degrades to a fallback instead of failing, so the
		// group never carries an error.
		_ = g.Wait()
	}

	var total float64
	for _, record := range records {
		total += record.Score
	}

	aggregate := domain.AggregateResult{TotalScore: total}
	if survey.TotalScore > 0 {
		aggregate.PercentageScore = total / survey.TotalScore * 100
	}
	if survey.PassScore != nil && *survey.PassScore > 0 {
		passed := aggregate.PercentageScore >= *survey.PassScore
		aggregate.IsPassed = &passed
	}

	return &domain.SubmissionResult{
		Records:   records,
		Aggregate: aggregate,
	}, nil
}
