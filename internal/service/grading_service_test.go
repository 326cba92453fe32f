package service

import (
	"context"
	"os"
	"testing"

	"survey-grader/internal/config"
	"survey-grader/internal/domain"
	"survey-grader/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// TestMain initializes the logger for all tests in this package.
func TestMain(m *testing.M) {
	if err := logger.Initialize(config.LoggerConfig{}); err != nil {
		panic("Failed to initialize logger for tests: " + err.Error())
	}

	exitVal := m.Run()

	_ = logger.Sync()
	os.Exit(exitVal)
}

func float64Ptr(v float64) *float64 {
	return &v
}

// newExamSurvey builds an exam with one single-choice, one multiple-choice
// and one essay question worth 2+4+10 points.
func newExamSurvey() *domain.Survey {
	survey := domain.NewSurvey("期中测验", domain.SurveyTypeExam)
	survey.ID = "survey1"
	survey.TotalScore = 16
	survey.PassScore = float64Ptr(60)

	single := domain.NewQuestion(survey.ID, domain.SingleChoice, "首都是哪里？", 2)
	single.ID = "q-single"
	single.CorrectAnswer = domain.ScalarAnswer("B")

	multi := domain.NewQuestion(survey.ID, domain.MultipleChoice, "选出所有偶数", 4)
	multi.ID = "q-multi"
	multi.CorrectAnswer = domain.ListAnswer{"A", "C"}

	essay := domain.NewQuestion(survey.ID, domain.Essay, "论述题", 10)
	essay.ID = "q-essay"

	survey.Questions = []*domain.Question{single, multi, essay}
	return survey
}

func TestGradingService_MixedExamSubmission(t *testing.T) {
	survey := newExamSurvey()

	essays := new(MockEssayEvaluator)
	essays.On("GradeEssay", mock.Anything, mock.Anything, "一段足够认真的论述。").Return(&domain.EssayEvaluation{
		Score:      8,
		MaxScore:   10,
		Percentage: 80,
		Level:      domain.LevelExcellent,
	})

	svc := NewGradingService(essays, 3, 60)
	result, err := svc.GradeSubmission(context.Background(), survey, map[string]domain.AnswerValue{
		"q-single": domain.NewScalarValue("B. Paris"),
		"q-multi":  domain.NewListValue([]string{"C", "A"}),
		"q-essay":  domain.NewScalarValue("一段足够认真的论述。"),
	})

	require.NoError(t, err)
	require.Len(t, result.Records, 3)

	// Records follow the survey's question order.
	assert.Equal(t, "q-single", result.Records[0].QuestionID)
	assert.Equal(t, "q-multi", result.Records[1].QuestionID)
	assert.Equal(t, "q-essay", result.Records[2].QuestionID)

	assert.True(t, result.Records[0].IsCorrect)
	assert.Equal(t, 2.0, result.Records[0].Score)
	assert.True(t, result.Records[1].IsCorrect)
	assert.Equal(t, 4.0, result.Records[1].Score)

	essayRecord := result.Records[2]
	assert.True(t, essayRecord.IsCorrect)
	assert.Equal(t, 8.0, essayRecord.Score)
	require.NotNil(t, essayRecord.Essay)
	assert.Equal(t, domain.LevelExcellent, essayRecord.Essay.Level)

	assert.Equal(t, 14.0, result.Aggregate.TotalScore)
	assert.InDelta(t, 87.5, result.Aggregate.PercentageScore, 1e-9)
	require.NotNil(t, result.Aggregate.IsPassed)
	assert.True(t, *result.Aggregate.IsPassed)

	essays.AssertExpectations(t)
}

func TestGradingService_EssayBelowPassPercentageIsIncorrect(t *testing.T) {
	survey := newExamSurvey()

	essays := new(MockEssayEvaluator)
	essays.On("GradeEssay", mock.Anything, mock.Anything, mock.Anything).Return(&domain.EssayEvaluation{
		Score:      5.9,
		MaxScore:   10,
		Percentage: 59,
		Level:      domain.LevelFail,
	})

	svc := NewGradingService(essays, 3, 60)
	result, err := svc.GradeSubmission(context.Background(), survey, map[string]domain.AnswerValue{
		"q-essay": domain.NewScalarValue("简短作答"),
	})

	require.NoError(t, err)
	require.Len(t, result.Records, 1)
	assert.False(t, result.Records[0].IsCorrect)
	assert.Equal(t, 5.9, result.Records[0].Score)
}

func TestGradingService_QuestionnaireEssayGradedAsText(t *testing.T) {
	survey := domain.NewSurvey("课后问卷", domain.SurveyTypeQuestionnaire)
	survey.ID = "survey2"
	survey.TotalScore = 10

	essay := domain.NewQuestion(survey.ID, domain.Essay, "自由作答", 10)
	essay.ID = "q1"
	essay.CorrectAnswer = domain.ScalarAnswer("期望答案")
	survey.Questions = []*domain.Question{essay}

	// The essay evaluator must never be consulted outside exam mode.
	essays := new(MockEssayEvaluator)

	svc := NewGradingService(essays, 3, 60)
	result, err := svc.GradeSubmission(context.Background(), survey, map[string]domain.AnswerValue{
		"q1": domain.NewScalarValue("期望答案"),
	})

	require.NoError(t, err)
	require.Len(t, result.Records, 1)
	assert.True(t, result.Records[0].IsCorrect)
	assert.Equal(t, 10.0, result.Records[0].Score)
	assert.Nil(t, result.Records[0].Essay)
	essays.AssertNotCalled(t, "GradeEssay", mock.Anything, mock.Anything, mock.Anything)
}

func TestGradingService_UnknownQuestionIDSkipped(t *testing.T) {
	survey := newExamSurvey()

	essays := new(MockEssayEvaluator)
	svc := NewGradingService(essays, 3, 60)

	result, err := svc.GradeSubmission(context.Background(), survey, map[string]domain.AnswerValue{
		"q-single":    domain.NewScalarValue("B"),
		"q-not-there": domain.NewScalarValue("whatever"),
	})

	require.NoError(t, err)
	require.Len(t, result.Records, 1)
	assert.Equal(t, "q-single", result.Records[0].QuestionID)
	assert.Equal(t, 2.0, result.Aggregate.TotalScore)
}

func TestGradingService_UnansweredQuestionsProduceNoRecord(t *testing.T) {
	survey := newExamSurvey()

	essays := new(MockEssayEvaluator)
	svc := NewGradingService(essays, 3, 60)

	result, err := svc.GradeSubmission(context.Background(), survey, map[string]domain.AnswerValue{
		"q-multi": domain.NewListValue([]string{"A", "C"}),
	})

	require.NoError(t, err)
	require.Len(t, result.Records, 1)
	assert.Equal(t, "q-multi", result.Records[0].QuestionID)
}

func TestGradingService_ZeroTotalScoreSurvey(t *testing.T) {
	survey := newExamSurvey()
	survey.TotalScore = 0
	survey.PassScore = nil

	essays := new(MockEssayEvaluator)
	svc := NewGradingService(essays, 3, 60)

	result, err := svc.GradeSubmission(context.Background(), survey, map[string]domain.AnswerValue{
		"q-single": domain.NewScalarValue("B"),
	})

	require.NoError(t, err)
	assert.Equal(t, 2.0, result.Aggregate.TotalScore)
	assert.Zero(t, result.Aggregate.PercentageScore)
	assert.Nil(t, result.Aggregate.IsPassed)
}

func TestGradingService_NonPositivePassScoreLeavesPassUndecided(t *testing.T) {
	survey := newExamSurvey()
	survey.PassScore = float64Ptr(0)

	essays := new(MockEssayEvaluator)
	svc := NewGradingService(essays, 3, 60)

	result, err := svc.GradeSubmission(context.Background(), survey, map[string]domain.AnswerValue{
		"q-single": domain.NewScalarValue("B"),
	})

	require.NoError(t, err)
	assert.Nil(t, result.Aggregate.IsPassed)
}

func TestGradingService_FailingAggregate(t *testing.T) {
	survey := newExamSurvey()

	essays := new(MockEssayEvaluator)
	svc := NewGradingService(essays, 3, 60)

	result, err := svc.GradeSubmission(context.Background(), survey, map[string]domain.AnswerValue{
		"q-single": domain.NewScalarValue("A"),
		"q-multi":  domain.NewListValue([]string{"A"}),
	})

	require.NoError(t, err)
	assert.Zero(t, result.Aggregate.TotalScore)
	assert.Zero(t, result.Aggregate.PercentageScore)
	require.NotNil(t, result.Aggregate.IsPassed)
	assert.False(t, *result.Aggregate.IsPassed)
}

func TestGradingService_MultipleEssaysGradedIndependently(t *testing.T) {
	survey := domain.NewSurvey("论述卷", domain.SurveyTypeExam)
	survey.ID = "survey3"
	survey.TotalScore = 30

	var questions []*domain.Question
	for _, id := range []string{"e1", "e2", "e3"} {
		q := domain.NewQuestion(survey.ID, domain.Essay, "论述 "+id, 10)
		q.ID = id
		questions = append(questions, q)
	}
	survey.Questions = questions

	essays := new(MockEssayEvaluator)
	essays.On("GradeEssay", mock.Anything, mock.Anything, "答案一").Return(&domain.EssayEvaluation{Score: 9, MaxScore: 10, Percentage: 90, Level: domain.LevelFull})
	essays.On("GradeEssay", mock.Anything, mock.Anything, "答案二").Return(&domain.EssayEvaluation{Score: 6, MaxScore: 10, Percentage: 60, Level: domain.LevelPass})
	essays.On("GradeEssay", mock.Anything, mock.Anything, "答案三").Return(&domain.EssayEvaluation{Score: 3, MaxScore: 10, Percentage: 30, Level: domain.LevelFail})

	svc := NewGradingService(essays, 2, 60)
	result, err := svc.GradeSubmission(context.Background(), survey, map[string]domain.AnswerValue{
		"e1": domain.NewScalarValue("答案一"),
		"e2": domain.NewScalarValue("答案二"),
		"e3": domain.NewScalarValue("答案三"),
	})

	require.NoError(t, err)
	require.Len(t, result.Records, 3)
	assert.Equal(t, 9.0, result.Records[0].Score)
	assert.True(t, result.Records[0].IsCorrect)
	assert.Equal(t, 6.0, result.Records[1].Score)
	assert.True(t, result.Records[1].IsCorrect)
	assert.Equal(t, 3.0, result.Records[2].Score)
	assert.False(t, result.Records[2].IsCorrect)
	assert.Equal(t, 18.0, result.Aggregate.TotalScore)
}
