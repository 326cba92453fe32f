package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"survey-grader/cmd/import_surveys/internal/importmodels"
	"survey-grader/internal/config"
	"survey-grader/internal/database"
	"survey-grader/internal/domain"
	"survey-grader/internal/logger"
	"survey-grader/internal/repository"

	"go.uber.org/zap"
)

func main() {
	filePath := flag.String("file", "", "path to a JSON file of surveys to import")
	flag.Parse()

	if *filePath == "" {
		fmt.Println("Usage: import_surveys -file <surveys.json>")
		os.Exit(1)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		// Logger is not initialized yet, so use fmt for this critical error
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Initialize(cfg.Logger); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	log := logger.Get()

	log.Info("Starting survey import", zap.String("file", *filePath))

	db, err := database.NewSQLXOracleDB(cfg.DB)
	if err != nil {
		log.Fatal("Failed to connect to Oracle database", zap.Error(err))
	}
	defer db.Close()

	byteValue, err := os.ReadFile(*filePath)
	if err != nil {
		log.Fatal("Failed to read import file", zap.String("path", *filePath), zap.Error(err))
	}

	var importSurveys []importmodels.ImportSurvey
	if err := json.Unmarshal(byteValue, &importSurveys); err != nil {
		log.Fatal("Failed to unmarshal import file", zap.Error(err))
	}
	log.Info("Parsed import file", zap.Int("surveys_loaded", len(importSurveys)))

	surveyRepo := repository.NewSQLXSurveyRepository(db)
	txManager := repository.NewTransactionManagerAdapter(db)

	ctx := context.Background()
	imported, failed := 0, 0
	for i, in := range importSurveys {
		survey, err := buildSurvey(in)
		if err != nil {
			log.Error("Skipping invalid survey", zap.Int("index", i), zap.String("title", in.Title), zap.Error(err))
			failed++
			continue
		}

		if err := importSurvey(ctx, txManager, surveyRepo, survey); err != nil {
			log.Error("Failed to import survey, transaction rolled back", zap.String("title", survey.Title), zap.Error(err))
			failed++
			continue
		}

		log.Info("Imported survey",
			zap.String("id", survey.ID),
			zap.String("title", survey.Title),
			zap.Int("questions", len(survey.Questions)))
		imported++
	}

	log.Info("Survey import completed", zap.Int("imported", imported), zap.Int("failed", failed))
	if failed > 0 {
		os.Exit(1)
	}
}

// buildSurvey converts an import record into a validated domain survey.
// The survey's total score is the sum of its question scores.
func buildSurvey(in importmodels.ImportSurvey) (*domain.Survey, error) {
	survey := domain.NewSurvey(in.Title, domain.SurveyType(in.Type))
	survey.Description = in.Description
	survey.PassScore = in.PassScore
	survey.TimeLimitMinutes = in.TimeLimitMinutes
	survey.AllowMultipleAttempts = in.AllowMultipleAttempts
	survey.MaxAttempts = in.MaxAttempts
	survey.StartAt = in.StartAt
	survey.EndAt = in.EndAt
	survey.CreatedBy = in.CreatedBy

	switch status := domain.SurveyStatus(in.Status); status {
	case "":
		// NewSurvey already defaults new surveys to draft.
	case domain.SurveyStatusDraft, domain.SurveyStatusPublished, domain.SurveyStatusClosed:
		survey.Status = status
	default:
		return nil, fmt.Errorf("unsupported survey status %q", in.Status)
	}

	var total float64
	for i, q := range in.Questions {
		qType, err := domain.ParseQuestionType(q.Type)
		if err != nil {
			return nil, fmt.Errorf("question %d: %w", i+1, err)
		}

		question := domain.NewQuestion("", qType, q.Title, q.Score)
		question.Description = q.Description
		question.GradingCriteria = q.GradingCriteria
		question.MinWordCount = q.MinWordCount
		question.Required = q.Required
		question.DisplayOrder = i + 1
		for _, opt := range q.Options {
			question.Options = append(question.Options, domain.Option{Key: opt.Key, Value: opt.Value})
		}

		if len(q.CorrectAnswer) > 0 {
			key, err := domain.ParseAnswerKey(q.CorrectAnswer)
			if err != nil {
				return nil, fmt.Errorf("question %d: %w", i+1, err)
			}
			question.CorrectAnswer = key
		}

		total += q.Score
		survey.Questions = append(survey.Questions, question)
	}
	survey.TotalScore = total

	if err := survey.Validate(); err != nil {
		return nil, err
	}
	return survey, nil
}

// importSurvey persists a survey and its questions in one transaction.
func importSurvey(ctx context.Context, txManager domain.TransactionManager, surveyRepo domain.SurveyRepository, survey *domain.Survey) error {
	return txManager.WithTransaction(ctx, func(ctx context.Context) error {
		if err := surveyRepo.SaveSurvey(ctx, survey); err != nil {
			return err
		}
		for _, question := range survey.Questions {
			question.SurveyID = survey.ID
			if err := surveyRepo.SaveQuestion(ctx, question); err != nil {
				return err
			}
		}
		return nil
	})
}
