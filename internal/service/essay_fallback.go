package service

import (
	"strings"
	"unicode/utf8"

	"survey-grader/internal/domain"
	"survey-grader/internal/util"
)

// FallbackEvaluation synthesizes an essay evaluation from the trimmed
// length of the student's answer, for when the LLM is unreachable or its
// response cannot be parsed. Longer answers earn a larger fixed fraction
// of the maximum score, and the feedback texts are canned. Length is
// counted in runes so CJK answers are measured in characters, not bytes.
func FallbackEvaluation(studentAnswer string, maxScore float64) *domain.EssayEvaluation {
	length := utf8.RuneCountInString(strings.TrimSpace(studentAnswer))

	var score float64
	var level domain.Level
	switch {
	case length == 0:
		score = 0
		level = domain.LevelFail
	case length < 50:
		score = maxScore * 0.4
		level = domain.LevelFail
	case length < 100:
		score = maxScore * 0.6
		level = domain.LevelPass
	case length < 200:
		score = maxScore * 0.75
		level = domain.LevelGood
	default:
		score = maxScore * 0.85
		level = domain.LevelExcellent
	}

	var percentage float64
	if maxScore > 0 {
		percentage = score / maxScore * 100
	}

	return &domain.EssayEvaluation{
		Score:      util.Round1(score),
		MaxScore:   maxScore,
		Percentage: util.Round1(percentage),
		Level:      level,
		ScoreBreakdown: &domain.ScoreBreakdown{
			ContentCompleteness: util.Round1(score * 0.4),
			Accuracy:            util.Round1(score * 0.35),
			Depth:               util.Round1(score * 0.2),
			Expression:          util.Round1(score * 0.05),
		},
		Strengths: []string{
			"完成了作答",
			"有一定的思考",
		},
		AreasForImprovement: []string{
			"建议更深入地理解题目",
			"可以尝试更详细地阐述观点",
		},
		Comment: "感谢你的作答。建议你多复习相关知识，加强对概念的理解。相信通过努力，你会有更大的进步！",
		DetailedFeedback: []domain.FeedbackPoint{
			{
				Point:    "内容完整性",
				Score:    util.Round1(score * 0.4),
				MaxScore: util.Round1(maxScore * 0.4),
				Feedback: "基于答案长度的基础评分",
			},
		},
		Source: domain.EvaluationSourceFallback,
	}
}
