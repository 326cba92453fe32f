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

const responseColumns = `
	id "id",
	survey_id "survey_id",
	user_id "user_id",
	attempt_number "attempt_number",
	total_score "total_score",
	percentage_score "percentage_score",
	is_passed "is_passed",
	submitted_at "submitted_at",
	created_at "created_at",
	updated_at "updated_at",
	deleted_at "deleted_at"`

const responseAnswerColumns = `
	id "id",
	response_id "response_id",
	question_id "question_id",
	answer_value "answer_value",
	is_correct "is_correct",
	score "score",
	essay_evaluation "essay_evaluation",
	created_at "created_at",
	updated_at "updated_at",
	deleted_at "deleted_at"`

// sqlxSubmissionRepository implements domain.SubmissionRepository using sqlx.
type sqlxSubmissionRepository struct {
	db *sqlx.DB
}

// NewSQLXSubmissionRepository creates a new instance of sqlxSubmissionRepository.
func NewSQLXSubmissionRepository(db *sqlx.DB) domain.SubmissionRepository {
	return &sqlxSubmissionRepository{db: db}
}

// SaveResponse persists a graded response together with its answers.
// Writes go through the executor so they join a transaction started by
// the transaction manager.
func (r *sqlxSubmissionRepository) SaveResponse(ctx context.Context, response *domain.SurveyResponse) error {
	if response == nil {
		return fmt.Errorf("cannot save nil response")
	}

	modelResponse := fromDomainSurveyResponse(response)
	if modelResponse.ID == "" {
		modelResponse.ID = util.NewULID()
	}
	now := time.Now()
	if modelResponse.SubmittedAt.IsZero() {
		modelResponse.SubmittedAt = now
	}
	if modelResponse.CreatedAt.IsZero() {
		modelResponse.CreatedAt = now
	}
	modelResponse.UpdatedAt = now

	responseQuery := `INSERT INTO survey_responses (id, survey_id, user_id, attempt_number, total_score,
	                    percentage_score, is_passed, submitted_at, created_at, updated_at)
	                  VALUES (:id, :survey_id, :user_id, :attempt_number, :total_score,
	                    :percentage_score, :is_passed, :submitted_at, :created_at, :updated_at)`

	executor := GetExecutor(ctx, r.db)
	if _, err := executor.NamedExecContext(ctx, responseQuery, modelResponse); err != nil {
		return fmt.Errorf("failed to save survey response: %w", err)
	}

	answerQuery := `INSERT INTO response_answers (id, response_id, question_id, answer_value,
	                  is_correct, score, essay_evaluation, created_at, updated_at)
	                VALUES (:id, :response_id, :question_id, :answer_value,
	                  :is_correct, :score, :essay_evaluation, :created_at, :updated_at)`

	for _, answer := range response.Answers {
		modelAnswer, err := fromDomainResponseAnswer(answer)
		if err != nil {
			return fmt.Errorf("failed to convert answer for question %s: %w", answer.QuestionID, err)
		}
		modelAnswer.ResponseID = modelResponse.ID
		if modelAnswer.ID == "" {
			modelAnswer.ID = util.NewULID()
		}
		if modelAnswer.CreatedAt.IsZero() {
			modelAnswer.CreatedAt = now
		}
		modelAnswer.UpdatedAt = now

		if _, err := executor.NamedExecContext(ctx, answerQuery, modelAnswer); err != nil {
			return fmt.Errorf("failed to save answer for question %s: %w", answer.QuestionID, err)
		}

		answer.ID = modelAnswer.ID
		answer.ResponseID = modelAnswer.ResponseID
	}

	response.ID = modelResponse.ID
	response.SubmittedAt = modelResponse.SubmittedAt
	response.CreatedAt = modelResponse.CreatedAt
	response.UpdatedAt = modelResponse.UpdatedAt
	return nil
}

// GetLatestResponse returns the user's most recent response for the
// survey, with its answers. Recency follows the attempt number, not the
// wall clock.
func (r *sqlxSubmissionRepository) GetLatestResponse(ctx context.Context, surveyID, userID string) (*domain.SurveyResponse, error) {
	var modelResponse models.SurveyResponse
	query := `SELECT ` + responseColumns + ` FROM survey_responses
	          WHERE survey_id = :survey_id AND user_id = :user_id AND deleted_at IS NULL
	          ORDER BY attempt_number DESC
	          FETCH FIRST 1 ROWS ONLY`

	stmt, err := r.db.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare query for GetLatestResponse: %w", err)
	}
	defer stmt.Close()

	args := map[string]interface{}{"survey_id": surveyID, "user_id": userID}
	err = stmt.GetContext(ctx, &modelResponse, args)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest response for survey %s: %w", surveyID, err)
	}

	response, err := toDomainSurveyResponse(&modelResponse)
	if err != nil {
		return nil, err
	}
	if response.Answers, err = r.loadAnswers(ctx, response.ID); err != nil {
		return nil, err
	}
	return response, nil
}

// CountResponses counts the user's responses for the survey.
func (r *sqlxSubmissionRepository) CountResponses(ctx context.Context, surveyID, userID string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM survey_responses
	          WHERE survey_id = :survey_id AND user_id = :user_id AND deleted_at IS NULL`

	stmt, err := r.db.PrepareNamedContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare query for CountResponses: %w", err)
	}
	defer stmt.Close()

	args := map[string]interface{}{"survey_id": surveyID, "user_id": userID}
	if err := stmt.GetContext(ctx, &count, args); err != nil {
		return 0, fmt.Errorf("failed to count responses for survey %s: %w", surveyID, err)
	}
	return count, nil
}

// GetResponseWithAnswers retrieves a response together with its answers.
func (r *sqlxSubmissionRepository) GetResponseWithAnswers(ctx context.Context, responseID string) (*domain.SurveyResponse, error) {
	var modelResponse models.SurveyResponse
	query := `SELECT ` + responseColumns + ` FROM survey_responses
	          WHERE id = :id AND deleted_at IS NULL`

	stmt, err := r.db.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare query for GetResponseWithAnswers: %w", err)
	}
	defer stmt.Close()

	err = stmt.GetContext(ctx, &modelResponse, map[string]interface{}{"id": responseID})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get response %s: %w", responseID, err)
	}

	response, err := toDomainSurveyResponse(&modelResponse)
	if err != nil {
		return nil, err
	}
	if response.Answers, err = r.loadAnswers(ctx, response.ID); err != nil {
		return nil, err
	}
	return response, nil
}

func (r *sqlxSubmissionRepository) loadAnswers(ctx context.Context, responseID string) ([]*domain.ResponseAnswer, error) {
	var modelAnswers []models.ResponseAnswer
	query := `SELECT ` + responseAnswerColumns + ` FROM response_answers
	          WHERE response_id = :response_id AND deleted_at IS NULL
	          ORDER BY created_at ASC`

	stmt, err := r.db.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare query for loadAnswers: %w", err)
	}
	defer stmt.Close()

	err = stmt.SelectContext(ctx, &modelAnswers, map[string]interface{}{"response_id": responseID})
	if err != nil {
		return nil, fmt.Errorf("failed to load answers for response %s: %w", responseID, err)
	}

	answers := make([]*domain.ResponseAnswer, 0, len(modelAnswers))
	for i := range modelAnswers {
		answer, err := toDomainResponseAnswer(&modelAnswers[i])
		if err != nil {
			return nil, fmt.Errorf("failed to convert answer %s: %w", modelAnswers[i].ID, err)
		}
		answers = append(answers, answer)
	}
	return answers, nil
}

func toDomainSurveyResponse(m *models.SurveyResponse) (*domain.SurveyResponse, error) {
	if m == nil {
		return nil, fmt.Errorf("cannot convert nil model.SurveyResponse")
	}
	return &domain.SurveyResponse{
		ID:              m.ID,
		SurveyID:        m.SurveyID,
		UserID:          m.UserID,
		AttemptNumber:   m.AttemptNumber,
		TotalScore:      m.TotalScore,
		PercentageScore: m.PercentageScore,
		IsPassed:        util.NullBoolToBoolPtr(m.IsPassed),
		SubmittedAt:     m.SubmittedAt,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}, nil
}

func fromDomainSurveyResponse(d *domain.SurveyResponse) *models.SurveyResponse {
	if d == nil {
		return nil
	}
	return &models.SurveyResponse{
		ID:              d.ID,
		SurveyID:        d.SurveyID,
		UserID:          d.UserID,
		AttemptNumber:   d.AttemptNumber,
		TotalScore:      d.TotalScore,
		PercentageScore: d.PercentageScore,
		IsPassed:        util.BoolPtrToNullBool(d.IsPassed),
		SubmittedAt:     d.SubmittedAt,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
}

func toDomainResponseAnswer(m *models.ResponseAnswer) (*domain.ResponseAnswer, error) {
	if m == nil {
		return nil, fmt.Errorf("cannot convert nil model.ResponseAnswer")
	}

	value, err := domain.ParseAnswerValue(m.AnswerValue)
	if err != nil {
		return nil, fmt.Errorf("malformed answer value: %w", err)
	}

	var evaluation *domain.EssayEvaluation
	if !m.EssayEvaluation.IsEmpty() {
		evaluation = &domain.EssayEvaluation{}
		if err := json.Unmarshal(m.EssayEvaluation, evaluation); err != nil {
			return nil, fmt.Errorf("malformed essay evaluation: %w", err)
		}
	}

	return &domain.ResponseAnswer{
		ID:         m.ID,
		ResponseID: m.ResponseID,
		QuestionID: m.QuestionID,
		Answer:     value,
		IsCorrect:  m.IsCorrect,
		Score:      m.Score,
		Essay:      evaluation,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}, nil
}

func fromDomainResponseAnswer(d *domain.ResponseAnswer) (*models.ResponseAnswer, error) {
	if d == nil {
		return nil, fmt.Errorf("cannot convert nil domain.ResponseAnswer")
	}

	value, err := json.Marshal(d.Answer)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal answer value: %w", err)
	}

	var evaluation models.JSONText
	if d.Essay != nil {
		data, err := json.Marshal(d.Essay)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal essay evaluation: %w", err)
		}
		evaluation = models.JSONText(data)
	}

	return &models.ResponseAnswer{
		ID:              d.ID,
		ResponseID:      d.ResponseID,
		QuestionID:      d.QuestionID,
		AnswerValue:     models.JSONText(value),
		IsCorrect:       d.IsCorrect,
		Score:           d.Score,
		EssayEvaluation: evaluation,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}, nil
}
