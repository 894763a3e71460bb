package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Results   ResultsConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Quiz      QuizConfig
	Storage   StorageConfig
	Chart     ChartConfig
	Log       LogConfig
	Tracing   TracingConfig   `mapstructure:"tracing"`
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`

	// 运行时标志（非配置文件，通过命令行参数设置）
	ConfigFile string `mapstructure:"-"`
}

type ServerConfig struct {
	Port string
	Mode string
}

// ResultsConfig 答题结果存储配置，backend 取值 sheets 或 mysql
type ResultsConfig struct {
	Backend string       `mapstructure:"backend"`
	Sheets  SheetsConfig `mapstructure:"sheets"`
}

type SheetsConfig struct {
	CredentialsFile  string `mapstructure:"credentials_file"`
	SpreadsheetTitle string `mapstructure:"spreadsheet_title"`
	SpreadsheetID    string `mapstructure:"spreadsheet_id"`
}

type DatabaseConfig struct {
	Host      string
	Port      int
	User      string
	Password  string
	DBName    string
	Charset   string
	ParseTime bool
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// QuizConfig 测验相关配置
type QuizConfig struct {
	QuestionCount  int           `mapstructure:"question_count"`
	WorksheetCount int           `mapstructure:"worksheet_count"`
	SessionBackend string        `mapstructure:"session_backend"`
	SessionTTL     time.Duration `mapstructure:"session_ttl_minutes"`
	TokenSecret    string        `mapstructure:"token_secret"`
}

type StorageConfig struct {
	Type          string `mapstructure:"type"`
	LocalPath     string `mapstructure:"local_path"`
	MinioEndpoint string `mapstructure:"minio_endpoint"`
	MinioAccessID string `mapstructure:"minio_access_key"`
	MinioSecret   string `mapstructure:"minio_secret_key"`
	MinioBucket   string `mapstructure:"minio_bucket"`
	OSSEndpoint   string `mapstructure:"oss_endpoint"`
	OSSAccessKey  string `mapstructure:"oss_access_key"`
	OSSSecretKey  string `mapstructure:"oss_secret_key"`
	OSSBucket     string `mapstructure:"oss_bucket"`
}

type ChartConfig struct {
	Filename string  `mapstructure:"filename"`
	Width    float64 `mapstructure:"width_inches"`
	Height   float64 `mapstructure:"height_inches"`
}

type LogConfig struct {
	File       string `mapstructure:"file"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
}

type TracingConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	CollectorEndpoint string `mapstructure:"collector_endpoint"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type RateLimitConfig struct {
	MaxRequests   int `mapstructure:"max_requests"`
	WindowMinutes int `mapstructure:"window_minutes"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "5000")
	v.SetDefault("server.mode", "release")

	v.SetDefault("results.backend", "sheets")
	v.SetDefault("results.sheets.credentials_file", "service_account.json")
	v.SetDefault("results.sheets.spreadsheet_title", "Math Quiz Results")

	v.SetDefault("quiz.question_count", 5)
	v.SetDefault("quiz.worksheet_count", 20)
	v.SetDefault("quiz.session_backend", "token")
	v.SetDefault("quiz.session_ttl_minutes", 60)

	v.SetDefault("storage.type", "local")
	v.SetDefault("storage.local_path", "static")

	v.SetDefault("chart.filename", "analytics.png")
	v.SetDefault("chart.width_inches", 8)
	v.SetDefault("chart.height_inches", 5)

	v.SetDefault("log.file", "logs/app.log")
	v.SetDefault("log.max_size", 100)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age", 30)

	v.SetDefault("rate_limit.max_requests", 600)
	v.SetDefault("rate_limit.window_minutes", 1)
}

func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetEnvPrefix("MATH_QUIZ")
	v.AutomaticEnv()

	setDefaults(v)

	// Server
	v.BindEnv("server.port", "PORT")
	v.BindEnv("server.mode", "SERVER_MODE")

	// Results store
	v.BindEnv("results.backend", "RESULTS_BACKEND")
	v.BindEnv("results.sheets.credentials_file", "GOOGLE_CREDENTIALS_FILE")
	v.BindEnv("results.sheets.spreadsheet_title", "SPREADSHEET_TITLE")
	v.BindEnv("results.sheets.spreadsheet_id", "SPREADSHEET_ID")

	// Database
	v.BindEnv("database.host", "DATABASE_HOST")
	v.BindEnv("database.port", "DATABASE_PORT")
	v.BindEnv("database.user", "DATABASE_USER")
	v.BindEnv("database.password", "DATABASE_PASSWORD")
	v.BindEnv("database.dbname", "DATABASE_NAME")

	// Redis
	v.BindEnv("redis.host", "REDIS_HOST")
	v.BindEnv("redis.port", "REDIS_PORT")
	v.BindEnv("redis.password", "REDIS_PASSWORD")

	// Quiz
	v.BindEnv("quiz.session_backend", "QUIZ_SESSION_BACKEND")
	v.BindEnv("quiz.token_secret", "QUIZ_TOKEN_SECRET")

	// Storage / OSS
	v.BindEnv("storage.type", "STORAGE_TYPE")
	v.BindEnv("storage.oss_endpoint", "OSS_ENDPOINT")
	v.BindEnv("storage.oss_access_key", "OSS_ACCESS_KEY")
	v.BindEnv("storage.oss_secret_key", "OSS_SECRET_KEY")
	v.BindEnv("storage.oss_bucket", "OSS_BUCKET")
	v.BindEnv("storage.minio_endpoint", "MINIO_ENDPOINT")
	v.BindEnv("storage.minio_access_key", "MINIO_ACCESS_KEY")
	v.BindEnv("storage.minio_secret_key", "MINIO_SECRET_KEY")
	v.BindEnv("storage.minio_bucket", "MINIO_BUCKET")

	// Tracing
	v.BindEnv("tracing.enabled", "TRACING_ENABLED")
	v.BindEnv("tracing.collector_endpoint", "TRACING_COLLECTOR_ENDPOINT")

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	cfg.ConfigFile = v.ConfigFileUsed()

	cfg.Quiz.SessionTTL = cfg.Quiz.SessionTTL * time.Minute

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.Storage.Type == "local" {
		if err := os.MkdirAll(cfg.Storage.LocalPath, 0755); err != nil {
			return nil, fmt.Errorf("create storage directory %q: %w", cfg.Storage.LocalPath, err)
		}
	}

	return &cfg, nil
}

// Validate 检查启动所必需的配置项
func (c *Config) Validate() error {
	switch c.Results.Backend {
	case "sheets":
		if c.Results.Sheets.CredentialsFile == "" {
			return fmt.Errorf("results.sheets.credentials_file is required")
		}
		if _, err := os.Stat(c.Results.Sheets.CredentialsFile); err != nil {
			return fmt.Errorf("service account credentials %q: %w", c.Results.Sheets.CredentialsFile, err)
		}
		if c.Results.Sheets.SpreadsheetTitle == "" && c.Results.Sheets.SpreadsheetID == "" {
			return fmt.Errorf("results.sheets.spreadsheet_title or spreadsheet_id is required")
		}
	case "mysql":
		if c.Database.Host == "" || c.Database.DBName == "" {
			return fmt.Errorf("database host and dbname are required for the mysql results backend")
		}
	default:
		return fmt.Errorf("unknown results backend %q", c.Results.Backend)
	}

	if c.Quiz.QuestionCount <= 0 || c.Quiz.WorksheetCount <= 0 {
		return fmt.Errorf("quiz.question_count and quiz.worksheet_count must be positive")
	}

	switch c.Quiz.SessionBackend {
	case "token":
		// 生产环境校验签名密钥强度
		if c.Server.Mode == "release" && len(c.Quiz.TokenSecret) < 32 {
			return fmt.Errorf("quiz token secret is too short (%d chars), must be at least 32 characters in release mode", len(c.Quiz.TokenSecret))
		}
	case "redis", "memory":
	default:
		return fmt.Errorf("unknown quiz session backend %q", c.Quiz.SessionBackend)
	}

	return nil
}
