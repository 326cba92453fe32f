package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"survey-grader/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newEssayQuestion(score float64) *domain.Question {
	q := domain.NewQuestion("survey1", domain.Essay, "请论述光合作用的意义。", score)
	q.ID = "essay1"
	return q
}

// slowTextGenerator answers after a fixed delay unless the context runs
// out first.
type slowTextGenerator struct {
	delay    time.Duration
	response string
}

func (g *slowTextGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	select {
	case <-time.After(g.delay):
		return g.response, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func TestEssayGrader_SuccessfulEvaluation(t *testing.T) {
	generator := new(MockTextGenerator)
	generator.On("Generate", mock.Anything, mock.Anything).Return(`{
		"score": 8, "max_score": 10, "percentage": 80, "level": "优秀",
		"strengths": ["思路清晰"], "areas_for_improvement": ["补充例子"],
		"comment": "作答认真，继续保持！"
	}`, nil)

	grader := NewEssayGrader(generator, NewRubricSource(""), time.Second)
	eval := grader.GradeEssay(context.Background(), newEssayQuestion(10), "这是一个足够认真的回答。")

	require.NotNil(t, eval)
	assert.Equal(t, 8.0, eval.Score)
	assert.Equal(t, 10.0, eval.MaxScore)
	assert.Equal(t, 80.0, eval.Percentage)
	assert.Equal(t, domain.LevelExcellent, eval.Level)
	assert.Equal(t, []string{"思路清晰"}, eval.Strengths)
	assert.Equal(t, "作答认真，继续保持！", eval.Comment)
	generator.AssertExpectations(t)
}

func TestEssayGrader_PromptCarriesQuestionAndAnswer(t *testing.T) {
	generator := new(MockTextGenerator)
	var prompt string
	generator.On("Generate", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		prompt = args.String(1)
	}).Return(`{"score": 5}`, nil)

	question := newEssayQuestion(10)
	question.CorrectAnswer = domain.ScalarAnswer("参考答案内容")
	question.MinWordCount = 80

	grader := NewEssayGrader(generator, NewRubricSource(""), time.Second)
	grader.GradeEssay(context.Background(), question, "学生的作答内容")

	assert.Contains(t, prompt, question.Title)
	assert.Contains(t, prompt, "学生的作答内容")
	assert.Contains(t, prompt, "参考答案内容")
	assert.Contains(t, prompt, "最小字数要求: 80字")
}

func TestEssayGrader_ClampsScoreIntoRange(t *testing.T) {
	tests := []struct {
		name           string
		response       string
		wantScore      float64
		wantPercentage float64
		wantLevel      domain.Level
	}{
		{"score above max", `{"score": 25, "max_score": 100}`, 10, 100, domain.LevelFull},
		{"negative score", `{"score": -5}`, 0, 0, domain.LevelFail},
		{"inconsistent level fixed", `{"score": 9.5, "level": "不及格"}`, 9.5, 95, domain.LevelFull},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			generator := new(MockTextGenerator)
			generator.On("Generate", mock.Anything, mock.Anything).Return(tt.response, nil)

			grader := NewEssayGrader(generator, NewRubricSource(""), time.Second)
			eval := grader.GradeEssay(context.Background(), newEssayQuestion(10), "作答")

			assert.Equal(t, tt.wantScore, eval.Score)
			assert.Equal(t, 10.0, eval.MaxScore)
			assert.Equal(t, tt.wantPercentage, eval.Percentage)
			assert.Equal(t, tt.wantLevel, eval.Level)
		})
	}
}

func TestEssayGrader_FillsMissingListFields(t *testing.T) {
	generator := new(MockTextGenerator)
	generator.On("Generate", mock.Anything, mock.Anything).Return(`{"score": 5}`, nil)

	grader := NewEssayGrader(generator, NewRubricSource(""), time.Second)
	eval := grader.GradeEssay(context.Background(), newEssayQuestion(10), "作答")

	assert.NotNil(t, eval.Strengths)
	assert.Empty(t, eval.Strengths)
	assert.NotNil(t, eval.AreasForImprovement)
	assert.Empty(t, eval.AreasForImprovement)
}

func TestEssayGrader_FallsBackOnGeneratorError(t *testing.T) {
	generator := new(MockTextGenerator)
	generator.On("Generate", mock.Anything, mock.Anything).Return("", errors.New("connection refused"))

	answer := strings.Repeat("认", 120)
	grader := NewEssayGrader(generator, NewRubricSource(""), time.Second)
	eval := grader.GradeEssay(context.Background(), newEssayQuestion(10), answer)

	// The fallback grades the answer that was actually submitted.
	assert.Equal(t, FallbackEvaluation(answer, 10), eval)
}

func TestEssayGrader_FallsBackOnUnparsableResponse(t *testing.T) {
	generator := new(MockTextGenerator)
	generator.On("Generate", mock.Anything, mock.Anything).Return("我觉得这个回答大概值8分。", nil)

	answer := strings.Repeat("a", 30)
	grader := NewEssayGrader(generator, NewRubricSource(""), time.Second)
	eval := grader.GradeEssay(context.Background(), newEssayQuestion(10), answer)

	assert.Equal(t, FallbackEvaluation(answer, 10), eval)
	assert.Equal(t, 4.0, eval.Score)
}

func TestEssayGrader_TimeoutBehavesLikeCallFailure(t *testing.T) {
	generator := &slowTextGenerator{delay: 200 * time.Millisecond, response: `{"score": 9}`}

	answer := strings.Repeat("a", 60)
	grader := NewEssayGrader(generator, NewRubricSource(""), 10*time.Millisecond)
	eval := grader.GradeEssay(context.Background(), newEssayQuestion(10), answer)

	assert.Equal(t, FallbackEvaluation(answer, 10), eval)
}

func TestEssayGrader_UsesConfiguredRubric(t *testing.T) {
	rubricPath := filepath.Join(t.TempDir(), "essay_grading.md")
	require.NoError(t, os.WriteFile(rubricPath, []byte("# 打分原则\n按要点给分。"), 0o644))

	generator := new(MockTextGenerator)
	var prompt string
	generator.On("Generate", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		prompt = args.String(1)
	}).Return(`{"score": 5}`, nil)

	grader := NewEssayGrader(generator, NewRubricSource(rubricPath), time.Second)
	grader.GradeEssay(context.Background(), newEssayQuestion(10), "作答")

	assert.Contains(t, prompt, "请严格按照以下skill文件中的打分原则和标准进行评分：")
	assert.Contains(t, prompt, "按要点给分。")
	assert.NotContains(t, prompt, "请按照以下原则进行打分：")
}
