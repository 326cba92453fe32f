package domain

import "context"

// SurveyService defines the read operations over surveys
type SurveyService interface {
	// ListPublishedSurveys returns all surveys open for participation
	ListPublishedSurveys(ctx context.Context) ([]*Survey, error)

	// GetSurvey returns a survey with its questions
	GetSurvey(ctx context.Context, surveyID string) (*Survey, error)
}

// SubmissionService defines the submission flow for surveys
type SubmissionService interface {
	// Submit grades and persists a set of answers for the given survey
	Submit(ctx context.Context, userID, surveyID string, answers map[string]AnswerValue) (*SurveyResponse, error)

	// GetMyResult returns the user's latest graded submission for the survey
	GetMyResult(ctx context.Context, userID, surveyID string) (*SurveyResponse, error)
}

// GradingService grades a full answer set against a survey
type GradingService interface {
	// GradeSubmission grades every answered question and aggregates the outcome
	GradeSubmission(ctx context.Context, survey *Survey, answers map[string]AnswerValue) (*SubmissionResult, error)
}

// SurveyRepository defines the interface for survey persistence
type SurveyRepository interface {
	// GetSurveyByID retrieves a survey by its ID, without questions
	GetSurveyByID(ctx context.Context, surveyID string) (*Survey, error)

	// GetSurveyWithQuestions retrieves a survey together with its questions
	GetSurveyWithQuestions(ctx context.Context, surveyID string) (*Survey, error)

	// ListPublishedSurveys returns all published surveys, without questions
	ListPublishedSurveys(ctx context.Context) ([]*Survey, error)

	// SaveSurvey persists a new survey
	SaveSurvey(ctx context.Context, survey *Survey) error

	// SaveQuestion persists a new question
	SaveQuestion(ctx context.Context, question *Question) error
}

// SubmissionRepository defines the interface for response persistence
type SubmissionRepository interface {
	// SaveResponse persists a graded response with its answers
	SaveResponse(ctx context.Context, response *SurveyResponse) error

	// GetLatestResponse returns the user's most recent response for the survey
	GetLatestResponse(ctx context.Context, surveyID, userID string) (*SurveyResponse, error)

	// CountResponses counts the user's responses for the survey
	CountResponses(ctx context.Context, surveyID, userID string) (int, error)

	// GetResponseWithAnswers retrieves a response together with its answers
	GetResponseWithAnswers(ctx context.Context, responseID string) (*SurveyResponse, error)
}

// TransactionManager runs a function within a database transaction
type TransactionManager interface {
	// WithTransaction executes fn inside a transaction scoped to ctx
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
