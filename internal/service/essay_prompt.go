package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"survey-grader/internal/domain"
)

const builtinGradingPrinciples = `
请按照以下原则进行打分：
1. 严中有爱：坚持评分标准，但也要发现学生的闪光点
2. 理中有情：评分有理有据，评语要体现人文关怀
3. 具体反馈：指出答得好的地方和需要改进的地方
4. 鼓励进步：评语要传递正能量

评分标准：
- 内容完整性（40%）：是否覆盖了所有关键要点
- 准确性（35%）：核心概念是否正确
- 深度（20%）：理解是否深入，是否有独到见解
- 表达（5%）：语言表达是否清晰，逻辑是否合理
`

const evaluationJSONTemplate = `{
  "score": 分数,
  "max_score": 满分,
  "percentage": 百分比,
  "level": "等级(满分/优秀/良好/及格/不及格)",
  "score_breakdown": {
    "content_completeness": 内容完整性得分,
    "accuracy": 准确性得分,
    "depth": 深度得分,
    "expression": 表达得分
  },
  "strengths": ["优点1", "优点2", "优点3"],
  "areas_for_improvement": ["改进建议1", "改进建议2"],
  "comment": "综合评语",
  "detailed_feedback": [
    {
      "point": "要点名称",
      "score": 得分,
      "max_score": 满分,
      "feedback": "具体反馈"
    }
  ]
}`

const gradingNotes = `

注意事项：
1. score必须是数字，不能超过max_score
2. percentage = (score / max_score) * 100
3. level根据percentage确定：90%以上=满分，80-89%=优秀，70-79%=良好，60-69%=及格，60%以下=不及格
4. strengths至少要有2-3个优点
5. areas_for_improvement至少要有1-2个改进建议
6. comment要体现人文关怀，既指出优点，也给出建议，传递正能量
7. detailed_feedback要具体，针对每个要点给出反馈
8. 只输出JSON，不要有任何markdown标记或其他文字
`

// BuildGradingPrompt renders the essay grading prompt for the given
// question and student answer. When rubric is non-empty the prompt defers
// to it for grading principles, otherwise the built-in principles are
// embedded. Optional question fields are omitted from the prompt entirely
// rather than rendered blank.
func BuildGradingPrompt(question *domain.Question, studentAnswer string, rubric string) string {
	var b strings.Builder

	b.WriteString("你是一个专业的教育评分专家，请根据以下要求对学生的问答题进行打分。\n\n")
	b.WriteString("## 题目信息\n")
	fmt.Fprintf(&b, "- 题目类型: %s\n", question.Type)
	fmt.Fprintf(&b, "- 题目内容: %s\n", question.Title)
	fmt.Fprintf(&b, "- 题目满分: %s分\n", formatScore(question.Score))

	if question.CorrectAnswer != nil && !question.CorrectAnswer.IsEmpty() {
		fmt.Fprintf(&b, "- 参考答案: %s\n", question.CorrectAnswer.Text())
	}
	if criteria := compactCriteria(question.GradingCriteria); criteria != "" {
		fmt.Fprintf(&b, "- 评分标准: %s\n", criteria)
	}
	if question.MinWordCount > 0 {
		fmt.Fprintf(&b, "- 最小字数要求: %d字\n", question.MinWordCount)
	}

	b.WriteString("\n## 学生答案\n")
	b.WriteString(studentAnswer)
	b.WriteString("\n\n## 打分要求\n")

	if rubric != "" {
		b.WriteString("\n请严格按照以下skill文件中的打分原则和标准进行评分：\n\n")
		b.WriteString(rubric)
		b.WriteString("\n")
	} else {
		b.WriteString(builtinGradingPrinciples)
	}

	b.WriteString("\n## 输出要求\n必须严格按照以下JSON格式输出，不要有任何其他文字：\n\n")
	b.WriteString("```json\n")
	b.WriteString(evaluationJSONTemplate)
	b.WriteString("\n```")
	b.WriteString(gradingNotes)

	return b.String()
}

// formatScore renders a score without a trailing ".0" for whole values.
func formatScore(score float64) string {
	return strconv.FormatFloat(score, 'f', -1, 64)
}

// compactCriteria renders stored grading criteria JSON on one line.
// Malformed or empty criteria yield "" and are left out of the prompt.
func compactCriteria(criteria json.RawMessage) string {
	trimmed := bytes.TrimSpace(criteria)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return ""
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, trimmed); err != nil {
		return ""
	}
	return buf.String()
}
