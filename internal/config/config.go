package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server      ServerConfig
	DB          DBConfig
	Redis       RedisConfig
	LLM         LLMConfig
	Embedding   EmbeddingConfig
	Grading     GradingConfig
	JWT         JWTConfig
	GoogleOAuth GoogleOAuthConfig
	CacheTTLs   CacheTTLConfig
	Logger      LoggerConfig
	Rate        RateConfig
}

type ServerConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DBConfig struct {
	// Driver selects the Oracle driver: "oracle" (go-ora, pure Go, default)
	// or "godror" (requires Oracle Instant Client).
	Driver   string
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// LLMConfig configures the text-generation backend used for essay grading.
// Provider is "ollama" or "openai". BaseURL points the openai provider at
// any OpenAI-compatible endpoint, e.g. DeepSeek.
type LLMConfig struct {
	Provider    string
	ServerURL   string
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

type EmbeddingConfig struct {
	Enabled             bool
	Provider            string
	ServerURL           string
	APIKey              string
	Model               string
	SimilarityThreshold float64
}

type GradingConfig struct {
	// MaxConcurrent bounds in-flight LLM calls per submission.
	MaxConcurrent int
	// SkillFile is an optional grading-principles document inserted
	// verbatim into the essay grading prompt.
	SkillFile string
	// EssayPassPercentage is the percentage at or above which an essay
	// answer counts as correct.
	EssayPassPercentage float64
}

type JWTConfig struct {
	SecretKey       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

type GoogleOAuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// CacheTTLConfig holds cache TTLs as duration strings (e.g. "10m", "24h").
type CacheTTLConfig struct {
	SurveyDetail    string
	Result          string
	EssayEvaluation string
	Embedding       string
}

type LoggerConfig struct {
	Env      string
	Level    string
	FilePath string
}

type RateConfig struct {
	SubmitPerMinute int
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	// Add config paths based on environment
	if os.Getenv("ENV") == "test" {
		// For test environment, look for config in the project root
		viper.AddConfigPath("../../configs")
		viper.AddConfigPath("../../")
	} else {
		// For production/development environment
		viper.AddConfigPath(".")
		viper.AddConfigPath("./configs")
	}

	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Log the config file being used
	configFile := viper.ConfigFileUsed()
	if configFile != "" {
		absPath, _ := filepath.Abs(configFile)
		fmt.Printf("Using config file: %s\n", absPath)
	}

	config := &Config{
		Server: ServerConfig{
			Port:         viper.GetInt("server.port"),
			ReadTimeout:  viper.GetDuration("server.read_timeout") * time.Second,
			WriteTimeout: viper.GetDuration("server.write_timeout") * time.Second,
		},
		DB: DBConfig{
			Driver:   viper.GetString("db.driver"),
			Host:     viper.GetString("db.host"),
			Port:     viper.GetInt("db.port"),
			User:     viper.GetString("db.user"),
			Password: viper.GetString("db.password"),
			DBName:   viper.GetString("db.name"),
		},
		Redis: RedisConfig{
			Address:  viper.GetString("redis.address"),
			Password: viper.GetString("redis.password"),
			DB:       viper.GetInt("redis.db"),
		},
		LLM: LLMConfig{
			Provider:    viper.GetString("llm.provider"),
			ServerURL:   viper.GetString("llm.server_url"),
			BaseURL:     viper.GetString("llm.base_url"),
			APIKey:      viper.GetString("llm.api_key"),
			Model:       viper.GetString("llm.model"),
			Temperature: viper.GetFloat64("llm.temperature"),
			MaxTokens:   viper.GetInt("llm.max_tokens"),
			Timeout:     viper.GetDuration("llm.timeout"),
		},
		Embedding: EmbeddingConfig{
			Enabled:             viper.GetBool("embedding.enabled"),
			Provider:            viper.GetString("embedding.provider"),
			ServerURL:           viper.GetString("embedding.server_url"),
			APIKey:              viper.GetString("embedding.api_key"),
			Model:               viper.GetString("embedding.model"),
			SimilarityThreshold: viper.GetFloat64("embedding.similarity_threshold"),
		},
		Grading: GradingConfig{
			MaxConcurrent:       viper.GetInt("grading.max_concurrent"),
			SkillFile:           viper.GetString("grading.skill_file"),
			EssayPassPercentage: viper.GetFloat64("grading.essay_pass_percentage"),
		},
		JWT: JWTConfig{
			SecretKey:       viper.GetString("jwt.secret_key"),
			AccessTokenTTL:  viper.GetDuration("jwt.access_token_ttl"),
			RefreshTokenTTL: viper.GetDuration("jwt.refresh_token_ttl"),
		},
		GoogleOAuth: GoogleOAuthConfig{
			ClientID:     viper.GetString("google_oauth.client_id"),
			ClientSecret: viper.GetString("google_oauth.client_secret"),
			RedirectURL:  viper.GetString("google_oauth.redirect_url"),
		},
		CacheTTLs: CacheTTLConfig{
			SurveyDetail:    viper.GetString("cache_ttls.survey_detail"),
			Result:          viper.GetString("cache_ttls.result"),
			EssayEvaluation: viper.GetString("cache_ttls.essay_evaluation"),
			Embedding:       viper.GetString("cache_ttls.embedding"),
		},
		Logger: LoggerConfig{
			Env:      viper.GetString("logger.env"),
			Level:    viper.GetString("logger.level"),
			FilePath: viper.GetString("logger.file_path"),
		},
		Rate: RateConfig{
			SubmitPerMinute: viper.GetInt("rate.submit_per_minute"),
		},
	}

	// Override with environment variables if set
	if host := os.Getenv("DB_HOST"); host != "" {
		config.DB.Host = host
	}
	if user := os.Getenv("DB_USER"); user != "" {
		config.DB.User = user
	}
	if password := os.Getenv("DB_PASSWORD"); password != "" {
		config.DB.Password = password
	}
	if dbname := os.Getenv("DB_NAME"); dbname != "" {
		config.DB.DBName = dbname
	}
	if redisAddress := os.Getenv("REDIS_ADDRESS"); redisAddress != "" {
		config.Redis.Address = redisAddress
	}
	if redisPassword := os.Getenv("REDIS_PASSWORD"); redisPassword != "" {
		config.Redis.Password = redisPassword
	}
	if llmKey := os.Getenv("LLM_API_KEY"); llmKey != "" {
		config.LLM.APIKey = llmKey
	}
	if embKey := os.Getenv("EMBEDDING_API_KEY"); embKey != "" {
		config.Embedding.APIKey = embKey
	}
	if jwtSecret := os.Getenv("JWT_SECRET_KEY"); jwtSecret != "" {
		config.JWT.SecretKey = jwtSecret
	}

	return config, nil
}

func setDefaults() {
	viper.SetDefault("db.driver", "oracle")
	viper.SetDefault("llm.provider", "ollama")
	viper.SetDefault("llm.temperature", 0.7)
	viper.SetDefault("llm.max_tokens", 4000)
	viper.SetDefault("llm.timeout", "30s")
	viper.SetDefault("embedding.similarity_threshold", 0.95)
	viper.SetDefault("grading.max_concurrent", 3)
	viper.SetDefault("grading.essay_pass_percentage", 60)
	viper.SetDefault("jwt.access_token_ttl", "1h")
	viper.SetDefault("jwt.refresh_token_ttl", "720h")
	viper.SetDefault("rate.submit_per_minute", 10)
}

// ParseTTLStringOrDefault parses a duration string, falling back to def
// when the string is empty or invalid.
func (c *Config) ParseTTLStringOrDefault(ttl string, def time.Duration) time.Duration {
	if ttl == "" {
		return def
	}
	d, err := time.ParseDuration(ttl)
	if err != nil {
		return def
	}
	return d
}
