package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"survey-grader/internal/domain"
	"survey-grader/internal/repository/models"
	"survey-grader/internal/util"

	"github.com/jmoiron/sqlx"
)

// surveyColumns aliases every column to its lowercase form so Oracle's
// uppercase result names match the model tags.
const surveyColumns = `
	id "id",
	title "title",
	description "description",
	survey_type "survey_type",
	status "status",
	total_score "total_score",
	pass_score "pass_score",
	time_limit_minutes "time_limit_minutes",
	allow_multiple_attempts "allow_multiple_attempts",
	max_attempts "max_attempts",
	start_at "start_at",
	end_at "end_at",
	created_by "created_by",
	created_at "created_at",
	updated_at "updated_at",
	deleted_at "deleted_at"`

const questionColumns = `
	id "id",
	survey_id "survey_id",
	question_type "question_type",
	title "title",
	description "description",
	options "options",
	correct_answer "correct_answer",
	score "score",
	grading_criteria "grading_criteria",
	min_word_count "min_word_count",
	is_required "is_required",
	display_order "display_order",
	created_at "created_at",
	updated_at "updated_at",
	deleted_at "deleted_at"`

// sqlxSurveyRepository implements domain.SurveyRepository using sqlx.
type sqlxSurveyRepository struct {
	db *sqlx.DB
}

// NewSQLXSurveyRepository creates a new instance of sqlxSurveyRepository.
func NewSQLXSurveyRepository(db *sqlx.DB) domain.SurveyRepository {
	return &sqlxSurveyRepository{db: db}
}

// GetSurveyByID retrieves a survey by its ID, without questions.
func (r *sqlxSurveyRepository) GetSurveyByID(ctx context.Context, surveyID string) (*domain.Survey, error) {
	var modelSurvey models.Survey
	query := `SELECT ` + surveyColumns + ` FROM surveys WHERE id = :id AND deleted_at IS NULL`

	stmt, err := r.db.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare query for GetSurveyByID: %w", err)
	}
	defer stmt.Close()

	err = stmt.GetContext(ctx, &modelSurvey, map[string]interface{}{"id": surveyID})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get survey by id %s: %w", surveyID, err)
	}
	return toDomainSurvey(&modelSurvey), nil
}

// GetSurveyWithQuestions retrieves a survey together with its questions,
// ordered the way they are shown to students.
func (r *sqlxSurveyRepository) GetSurveyWithQuestions(ctx context.Context, surveyID string) (*domain.Survey, error) {
	survey, err := r.GetSurveyByID(ctx, surveyID)
	if err != nil || survey == nil {
		return survey, err
	}

	var modelQuestions []models.Question
	query := `SELECT ` + questionColumns + ` FROM questions
	          WHERE survey_id = :survey_id AND deleted_at IS NULL
	          ORDER BY display_order ASC, created_at ASC`

	stmt, err := r.db.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare query for GetSurveyWithQuestions: %w", err)
	}
	defer stmt.Close()

	err = stmt.SelectContext(ctx, &modelQuestions, map[string]interface{}{"survey_id": surveyID})
	if err != nil {
		return nil, fmt.Errorf("failed to get questions for survey %s: %w", surveyID, err)
	}

	survey.Questions = make([]*domain.Question, 0, len(modelQuestions))
	for i := range modelQuestions {
		q, err := toDomainQuestion(&modelQuestions[i])
		if err != nil {
			return nil, fmt.Errorf("failed to convert question %s: %w", modelQuestions[i].ID, err)
		}
		survey.Questions = append(survey.Questions, q)
	}
	return survey, nil
}

// ListPublishedSurveys returns all published surveys, without questions.
func (r *sqlxSurveyRepository) ListPublishedSurveys(ctx context.Context) ([]*domain.Survey, error) {
	var modelSurveys []models.Survey
	query := `SELECT ` + surveyColumns + ` FROM surveys
	          WHERE status = :status AND deleted_at IS NULL
	          ORDER BY created_at DESC`

	stmt, err := r.db.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare query for ListPublishedSurveys: %w", err)
	}
	defer stmt.Close()

	err = stmt.SelectContext(ctx, &modelSurveys, map[string]interface{}{"status": string(domain.SurveyStatusPublished)})
	if err != nil {
		return nil, fmt.Errorf("failed to list published surveys: %w", err)
	}

	surveys := make([]*domain.Survey, 0, len(modelSurveys))
	for i := range modelSurveys {
		surveys = append(surveys, toDomainSurvey(&modelSurveys[i]))
	}
	return surveys, nil
}

// SaveSurvey persists a new survey. The generated ID and timestamps are
// written back to the domain object.
func (r *sqlxSurveyRepository) SaveSurvey(ctx context.Context, survey *domain.Survey) error {
	if survey == nil {
		return fmt.Errorf("cannot save nil survey")
	}
	modelSurvey := fromDomainSurvey(survey)
	if modelSurvey.ID == "" {
		modelSurvey.ID = util.NewULID()
	}
	now := time.Now()
	if modelSurvey.CreatedAt.IsZero() {
		modelSurvey.CreatedAt = now
	}
	modelSurvey.UpdatedAt = now

	query := `INSERT INTO surveys (id, title, description, survey_type, status, total_score, pass_score,
	            time_limit_minutes, allow_multiple_attempts, max_attempts, start_at, end_at,
	            created_by, created_at, updated_at)
	          VALUES (:id, :title, :description, :survey_type, :status, :total_score, :pass_score,
	            :time_limit_minutes, :allow_multiple_attempts, :max_attempts, :start_at, :end_at,
	            :created_by, :created_at, :updated_at)`

	executor := GetExecutor(ctx, r.db)
	if _, err := executor.NamedExecContext(ctx, query, modelSurvey); err != nil {
		return fmt.Errorf("failed to save survey: %w", err)
	}

	survey.ID = modelSurvey.ID
	survey.CreatedAt = modelSurvey.CreatedAt
	survey.UpdatedAt = modelSurvey.UpdatedAt
	return nil
}

// SaveQuestion persists a new question. The generated ID and timestamps
// are written back to the domain object.
func (r *sqlxSurveyRepository) SaveQuestion(ctx context.Context, question *domain.Question) error {
	if question == nil {
		return fmt.Errorf("cannot save nil question")
	}
	modelQuestion, err := fromDomainQuestion(question)
	if err != nil {
		return fmt.Errorf("failed to convert question: %w", err)
	}
	if modelQuestion.ID == "" {
		modelQuestion.ID = util.NewULID()
	}
	now := time.Now()
	if modelQuestion.CreatedAt.IsZero() {
		modelQuestion.CreatedAt = now
	}
	modelQuestion.UpdatedAt = now

	query := `INSERT INTO questions (id, survey_id, question_type, title, description, options,
	            correct_answer, score, grading_criteria, min_word_count, is_required, display_order,
	            created_at, updated_at)
	          VALUES (:id, :survey_id, :question_type, :title, :description, :options,
	            :correct_answer, :score, :grading_criteria, :min_word_count, :is_required, :display_order,
	            :created_at, :updated_at)`

	executor := GetExecutor(ctx, r.db)
	if _, err := executor.NamedExecContext(ctx, query, modelQuestion); err != nil {
		return fmt.Errorf("failed to save question: %w", err)
	}

	question.ID = modelQuestion.ID
	question.CreatedAt = modelQuestion.CreatedAt
	question.UpdatedAt = modelQuestion.UpdatedAt
	return nil
}

func toDomainSurvey(m *models.Survey) *domain.Survey {
	if m == nil {
		return nil
	}
	var startAt, endAt *time.Time
	if m.StartAt.Valid {
		t := m.StartAt.Time
		startAt = &t
	}
	if m.EndAt.Valid {
		t := m.EndAt.Time
		endAt = &t
	}
	return &domain.Survey{
		ID:                    m.ID,
		Title:                 m.Title,
		Description:           m.Description.String,
		Type:                  domain.SurveyType(m.SurveyType),
		Status:                domain.SurveyStatus(m.Status),
		TotalScore:            m.TotalScore,
		PassScore:             util.NullFloat64ToFloat64Ptr(m.PassScore),
		TimeLimitMinutes:      m.TimeLimitMinutes,
		AllowMultipleAttempts: m.AllowMultipleAttempts,
		MaxAttempts:           m.MaxAttempts,
		StartAt:               startAt,
		EndAt:                 endAt,
		CreatedBy:             m.CreatedBy.String,
		CreatedAt:             m.CreatedAt,
		UpdatedAt:             m.UpdatedAt,
	}
}

func fromDomainSurvey(d *domain.Survey) *models.Survey {
	if d == nil {
		return nil
	}
	var startAt, endAt sql.NullTime
	if d.StartAt != nil {
		startAt = util.TimeToNullTime(*d.StartAt)
	}
	if d.EndAt != nil {
		endAt = util.TimeToNullTime(*d.EndAt)
	}
	return &models.Survey{
		ID:                    d.ID,
		Title:                 d.Title,
		Description:           util.StringToNullString(d.Description),
		SurveyType:            string(d.Type),
		Status:                string(d.Status),
		TotalScore:            d.TotalScore,
		PassScore:             util.Float64PtrToNullFloat64(d.PassScore),
		TimeLimitMinutes:      d.TimeLimitMinutes,
		AllowMultipleAttempts: d.AllowMultipleAttempts,
		MaxAttempts:           d.MaxAttempts,
		StartAt:               startAt,
		EndAt:                 endAt,
		CreatedBy:             util.StringToNullString(d.CreatedBy),
		CreatedAt:             d.CreatedAt,
		UpdatedAt:             d.UpdatedAt,
	}
}

func toDomainQuestion(m *models.Question) (*domain.Question, error) {
	if m == nil {
		return nil, fmt.Errorf("cannot convert nil model.Question")
	}

	var options []domain.Option
	if !m.Options.IsEmpty() {
		if err := json.Unmarshal(m.Options, &options); err != nil {
			return nil, fmt.Errorf("malformed options: %w", err)
		}
	}

	key, err := domain.ParseAnswerKey(m.CorrectAnswer)
	if err != nil {
		return nil, fmt.Errorf("malformed correct answer: %w", err)
	}

	return &domain.Question{
		ID:              m.ID,
		SurveyID:        m.SurveyID,
		Type:            domain.QuestionType(m.QuestionType),
		Title:           m.Title,
		Description:     m.Description.String,
		Options:         options,
		CorrectAnswer:   key,
		Score:           m.Score,
		GradingCriteria: json.RawMessage(m.GradingCriteria),
		MinWordCount:    m.MinWordCount,
		Required:        m.IsRequired,
		DisplayOrder:    m.DisplayOrder,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}, nil
}

func fromDomainQuestion(d *domain.Question) (*models.Question, error) {
	if d == nil {
		return nil, fmt.Errorf("cannot convert nil domain.Question")
	}

	var options models.JSONText
	if len(d.Options) > 0 {
		data, err := json.Marshal(d.Options)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal options: %w", err)
		}
		options = models.JSONText(data)
	}

	var correctAnswer models.JSONText
	if d.CorrectAnswer != nil {
		data, err := domain.MarshalAnswerKey(d.CorrectAnswer)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal correct answer: %w", err)
		}
		correctAnswer = models.JSONText(data)
	}

	return &models.Question{
		ID:              d.ID,
		SurveyID:        d.SurveyID,
		QuestionType:    string(d.Type),
		Title:           d.Title,
		Description:     util.StringToNullString(d.Description),
		Options:         options,
		CorrectAnswer:   correctAnswer,
		Score:           d.Score,
		GradingCriteria: models.JSONText(d.GradingCriteria),
		MinWordCount:    d.MinWordCount,
		IsRequired:      d.Required,
		DisplayOrder:    d.DisplayOrder,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}, nil
}
