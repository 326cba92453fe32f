package service

import (
	"survey-grader/internal/domain"
)

// GradeObjective grades a single non-LLM question. It is a pure function:
// the outcome depends only on the question's answer key and the submitted
// answer. Essay questions reaching this path belong to questionnaire-mode
// surveys and are compared like text questions.
//
// A question without a usable answer key always grades as incorrect with a
// zero score.
func GradeObjective(question *domain.Question, answer domain.AnswerValue) *domain.GradingRecord {
	record := &domain.GradingRecord{
		QuestionID: question.ID,
	}
	if !answerMatchesKey(question, answer) {
		return record
	}
	record.IsCorrect = true
	record.Score = question.Score
	return record
}

func answerMatchesKey(question *domain.Question, answer domain.AnswerValue) bool {
	key := question.CorrectAnswer
	if key == nil || key.IsEmpty() {
		return false
	}

	switch question.Type {
	case domain.SingleChoice, domain.Judgment:
		return scalarMatches(key, answer, domain.NormalizeOption)
	case domain.MultipleChoice:
		return selectionMatches(key, answer)
	case domain.FillBlank, domain.TextQuestion, domain.Essay:
		return scalarMatches(key, answer, domain.NormalizeText)
	default:
		return false
	}
}

// scalarMatches compares a single submitted value against the key. A
// scalar key demands equality; a list key accepts any of its members. A
// list-valued submission never matches a scalar-answer question.
func scalarMatches(key domain.AnswerKey, answer domain.AnswerValue, mode domain.NormalizeMode) bool {
	raw, ok := answer.Scalar()
	if !ok {
		return false
	}
	got := domain.NormalizeScalar(raw, mode)
	for _, member := range key.Members(mode) {
		if got == member {
			return true
		}
	}
	return false
}

// selectionMatches compares a multiple-choice selection against the key as
// unordered sets. The selection must match the key exactly; a partial
// selection earns nothing. A scalar key counts as a one-member set, and a
// scalar submission never matches.
func selectionMatches(key domain.AnswerKey, answer domain.AnswerValue) bool {
	selected, ok := answer.List()
	if !ok {
		return false
	}
	want := domain.NormalizeSet(key.Members(domain.NormalizeOption), domain.NormalizeOption)
	got := domain.NormalizeSet(selected, domain.NormalizeOption)
	return domain.EqualSets(want, got)
}
