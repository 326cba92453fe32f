package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// QuestionType identifies how a question is answered and graded.
type QuestionType string

const (
	SingleChoice   QuestionType = "single_choice"
	MultipleChoice QuestionType = "multiple_choice"
	Judgment       QuestionType = "judgment"
	FillBlank      QuestionType = "fill_blank"
	TextQuestion   QuestionType = "text"
	Essay          QuestionType = "essay"
)

// ParseQuestionType validates a raw type string against the closed set of
// question types.
func ParseQuestionType(raw string) (QuestionType, error) {
	qt := QuestionType(raw)
	if !qt.Valid() {
		return "", NewUnsupportedQuestionTypeError(raw)
	}
	return qt, nil
}

// Valid reports whether the type is one of the supported question types.
func (t QuestionType) Valid() bool {
	switch t {
	case SingleChoice, MultipleChoice, Judgment, FillBlank, TextQuestion, Essay:
		return true
	}
	return false
}

// NormalizeMode returns how answers of this type are canonicalized.
// Choice and judgment answers carry option labels; everything else is
// free text.
func (t QuestionType) NormalizeMode() NormalizeMode {
	switch t {
	case SingleChoice, MultipleChoice, Judgment:
		return NormalizeOption
	default:
		return NormalizeText
	}
}

// Option is one selectable choice of a choice question.
type Option struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Label renders the option the way it is shown to students.
func (o Option) Label() string {
	return fmt.Sprintf("%s. %s", o.Key, o.Value)
}

// Question represents one question of a survey.
type Question struct {
	ID              string
	SurveyID        string
	Type            QuestionType
	Title           string
	Description     string
	Options         []Option
	CorrectAnswer   AnswerKey
	Score           float64
	GradingCriteria json.RawMessage
	MinWordCount    int
	Required        bool
	DisplayOrder    int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NewQuestion creates a new Question instance.
func NewQuestion(surveyID string, qType QuestionType, title string, score float64) *Question {
	now := time.Now()
	return &Question{
		SurveyID:  surveyID,
		Type:      qType,
		Title:     title,
		Score:     score,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Validate validates the question.
func (q *Question) Validate() error {
	if q.Title == "" {
		return NewValidationError("title is required")
	}
	if !q.Type.Valid() {
		return NewUnsupportedQuestionTypeError(string(q.Type))
	}
	if q.Score < 0 {
		return NewValidationError("score must not be negative")
	}
	switch q.Type {
	case SingleChoice, MultipleChoice:
		if len(q.Options) == 0 {
			return NewValidationError("options are required for choice questions")
		}
	}
	return nil
}

// IsChoice reports whether the question presents selectable options.
func (q *Question) IsChoice() bool {
	switch q.Type {
	case SingleChoice, MultipleChoice, Judgment:
		return true
	}
	return false
}
