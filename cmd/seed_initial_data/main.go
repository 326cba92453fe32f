package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"survey-grader/internal/config"
	"survey-grader/internal/database"
	"survey-grader/internal/domain"
	"survey-grader/internal/logger"
	"survey-grader/internal/repository"
	"survey-grader/internal/repository/models"
	"survey-grader/internal/util"

	"go.uber.org/zap"
)

// Demo account for local development. Submissions need a user row, and
// the OAuth flow is impractical against a local database.
const (
	demoGoogleID = "demo-google-id-0001"
	demoEmail    = "student@example.com"
	demoName     = "Demo Student"
)

func main() {
	ctx := context.Background()

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

	log.Info("Starting initial data seeding process...")

	db, err := database.NewSQLXOracleDB(cfg.DB)
	if err != nil {
		log.Fatal("Failed to connect to Oracle database", zap.Error(err))
	}
	defer db.Close()

	userRepo := repository.NewSQLXUserRepository(db)
	surveyRepo := repository.NewSQLXSurveyRepository(db)
	txManager := repository.NewTransactionManagerAdapter(db)

	if err := seedDemoUser(ctx, log, userRepo); err != nil {
		log.Fatal("Failed to seed demo user", zap.Error(err))
	}

	if err := seedSampleSurveys(ctx, log, surveyRepo, txManager); err != nil {
		log.Fatal("Failed to seed sample surveys", zap.Error(err))
	}

	log.Info("Initial data seeding process completed.")
}

// seedDemoUser creates the demo account unless it already exists.
func seedDemoUser(ctx context.Context, log *zap.Logger, userRepo repository.UserRepository) error {
	existing, err := userRepo.GetUserByGoogleID(ctx, demoGoogleID)
	if err != nil {
		return fmt.Errorf("failed to check demo user: %w", err)
	}
	if existing != nil {
		log.Info("Demo user exists.", zap.String("id", existing.ID), zap.String("email", existing.Email))
		return nil
	}

	user := &models.User{
		ID:       util.NewULID(),
		GoogleID: demoGoogleID,
		Email:    demoEmail,
		Name:     util.StringToNullString(demoName),
	}
	if err := userRepo.CreateUser(ctx, user); err != nil {
		return fmt.Errorf("failed to create demo user: %w", err)
	}
	log.Info("Created demo user.", zap.String("id", user.ID), zap.String("email", user.Email))
	return nil
}

// seedSampleSurveys creates the sample surveys. Seeding is skipped when
// published surveys already exist, so reruns do not pile up duplicates.
func seedSampleSurveys(ctx context.Context, log *zap.Logger, surveyRepo domain.SurveyRepository, txManager domain.TransactionManager) error {
	published, err := surveyRepo.ListPublishedSurveys(ctx)
	if err != nil {
		return fmt.Errorf("failed to list published surveys: %w", err)
	}
	if len(published) > 0 {
		log.Info("Published surveys already present, skipping survey seed.", zap.Int("count", len(published)))
		return nil
	}

	for _, survey := range sampleSurveys() {
		err := txManager.WithTransaction(ctx, func(ctx context.Context) error {
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
		if err != nil {
			return fmt.Errorf("failed to seed survey %q: %w", survey.Title, err)
		}
		log.Info("Seeded survey.",
			zap.String("id", survey.ID),
			zap.String("title", survey.Title),
			zap.Int("questions", len(survey.Questions)))
	}
	return nil
}

// sampleSurveys returns one published questionnaire and one published exam
// covering every question type.
func sampleSurveys() []*domain.Survey {
	return []*domain.Survey{sampleQuestionnaire(), sampleExam()}
}

func sampleQuestionnaire() *domain.Survey {
	survey := domain.NewSurvey("课程满意度调查", domain.SurveyTypeQuestionnaire)
	survey.Description = "用于收集学生对本学期课程的反馈,不计分。"
	survey.Status = domain.SurveyStatusPublished
	survey.AllowMultipleAttempts = false
	survey.CreatedBy = "seed"

	q1 := domain.NewQuestion("", domain.SingleChoice, "你对本课程的整体满意度如何?", 0)
	q1.Options = []domain.Option{
		{Key: "A", Value: "非常满意"},
		{Key: "B", Value: "满意"},
		{Key: "C", Value: "一般"},
		{Key: "D", Value: "不满意"},
	}
	q1.Required = true
	q1.DisplayOrder = 1

	q2 := domain.NewQuestion("", domain.MultipleChoice, "你希望课程增加哪些环节?", 0)
	q2.Options = []domain.Option{
		{Key: "A", Value: "实验课"},
		{Key: "B", Value: "小组讨论"},
		{Key: "C", Value: "课后答疑"},
		{Key: "D", Value: "项目实战"},
	}
	q2.DisplayOrder = 2

	q3 := domain.NewQuestion("", domain.TextQuestion, "对课程还有什么建议?", 0)
	q3.DisplayOrder = 3

	q4 := domain.NewQuestion("", domain.Essay, "谈谈这门课程对你最大的帮助。", 0)
	q4.DisplayOrder = 4

	survey.Questions = []*domain.Question{q1, q2, q3, q4}
	return survey
}

func sampleExam() *domain.Survey {
	survey := domain.NewSurvey("数据库原理期中测验", domain.SurveyTypeExam)
	survey.Description = "覆盖关系模型、SQL 与事务基础。"
	survey.Status = domain.SurveyStatusPublished
	survey.TimeLimitMinutes = 45
	survey.AllowMultipleAttempts = true
	survey.MaxAttempts = 3
	survey.CreatedBy = "seed"

	passScore := 60.0
	survey.PassScore = &passScore

	q1 := domain.NewQuestion("", domain.SingleChoice, "下列哪一项属于关系型数据库?", 10)
	q1.Options = []domain.Option{
		{Key: "A", Value: "MongoDB"},
		{Key: "B", Value: "Redis"},
		{Key: "C", Value: "PostgreSQL"},
		{Key: "D", Value: "Neo4j"},
	}
	q1.CorrectAnswer = domain.ScalarAnswer("C")
	q1.Required = true
	q1.DisplayOrder = 1

	q2 := domain.NewQuestion("", domain.MultipleChoice, "事务的 ACID 特性包括哪些?", 20)
	q2.Options = []domain.Option{
		{Key: "A", Value: "原子性"},
		{Key: "B", Value: "一致性"},
		{Key: "C", Value: "隔离性"},
		{Key: "D", Value: "持久性"},
	}
	q2.CorrectAnswer = domain.ListAnswer{"A", "B", "C", "D"}
	q2.Required = true
	q2.DisplayOrder = 2

	q3 := domain.NewQuestion("", domain.Judgment, "主键列允许存储 NULL 值。", 10)
	q3.Options = []domain.Option{
		{Key: "对", Value: "正确"},
		{Key: "错", Value: "错误"},
	}
	q3.CorrectAnswer = domain.ScalarAnswer("错")
	q3.Required = true
	q3.DisplayOrder = 3

	q4 := domain.NewQuestion("", domain.FillBlank, "SQL 中用于去除查询结果重复行的关键字是____。", 10)
	q4.CorrectAnswer = domain.ListAnswer{"DISTINCT", "distinct"}
	q4.Required = true
	q4.DisplayOrder = 4

	q5 := domain.NewQuestion("", domain.Essay, "论述数据库事务的 ACID 特性,并结合转账场景说明其意义。", 30)
	q5.GradingCriteria = json.RawMessage(`{"要点":["原子性","一致性","隔离性","持久性"],"要求":"结合转账实例说明"}`)
	q5.MinWordCount = 100
	q5.Required = true
	q5.DisplayOrder = 5

	survey.Questions = []*domain.Question{q1, q2, q3, q4, q5}
	survey.TotalScore = 80
	return survey
}
