package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server ServerConfig
	DB     DBConfig
	S3     S3Config
	Model  ModelConfig
	RAG    RAGConfig
	Engine EngineConfig
	Log    LogConfig
	CORS   CORSConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// S3Config holds AWS S3 settings for the document bucket.
type S3Config struct {
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	PresignExpiry int64  `mapstructure:"presign_expiry"`
}

// ModelConfig holds generative model and embedding settings.
type ModelConfig struct {
	APIKey         string `mapstructure:"api_key"`
	ChatModel      string `mapstructure:"chat_model"`
	EmbeddingModel string `mapstructure:"embedding_model"`
	TimeoutSecs    int    `mapstructure:"timeout_secs"`
}

// RAGConfig holds retrieval defaults used when the model omits them.
type RAGConfig struct {
	TopK      int     `mapstructure:"top_k"`
	Threshold float64 `mapstructure:"threshold"`
}

// EngineConfig holds decision engine settings.
type EngineConfig struct {
	MaxRetries          int     `mapstructure:"max_retries"`
	MaxModelTurns       int     `mapstructure:"max_model_turns"`
	ExogenaTextMaxChars int     `mapstructure:"exogena_text_max_chars"`
	ExogenaHTMLMaxChars int     `mapstructure:"exogena_html_max_chars"`
	// MovThresholdCOP overrides the UVT-derived movements threshold
	// when non-zero.
	MovThresholdCOP float64 `mapstructure:"mov_threshold_cop"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// Load reads configuration from environment variables with the
// RENTACHECK_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("RENTACHECK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "120s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "rentacheck")
	v.SetDefault("db.password", "rentacheck_secret")
	v.SetDefault("db.name", "rentacheck_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// S3 defaults
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "rentacheck-uploads")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.presign_expiry", 3600)

	// Model defaults
	v.SetDefault("model.api_key", "")
	v.SetDefault("model.chat_model", "gpt-4o")
	v.SetDefault("model.embedding_model", "text-embedding-3-small")
	v.SetDefault("model.timeout_secs", 120)

	// RAG defaults
	v.SetDefault("rag.top_k", 8)
	v.SetDefault("rag.threshold", 0.6)

	// Engine defaults
	v.SetDefault("engine.max_retries", 2)
	v.SetDefault("engine.max_model_turns", 3)
	v.SetDefault("engine.exogena_text_max_chars", 60000)
	v.SetDefault("engine.exogena_html_max_chars", 80000)
	v.SetDefault("engine.mov_threshold_cop", 0)

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000,http://localhost:5173,http://127.0.0.1:5173")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                   "RENTACHECK_SERVER_PORT",
		"server.read_timeout":           "RENTACHECK_SERVER_READ_TIMEOUT",
		"server.write_timeout":          "RENTACHECK_SERVER_WRITE_TIMEOUT",
		"server.environment":            "RENTACHECK_SERVER_ENVIRONMENT",
		"db.host":                       "RENTACHECK_DB_HOST",
		"db.port":                       "RENTACHECK_DB_PORT",
		"db.user":                       "RENTACHECK_DB_USER",
		"db.password":                   "RENTACHECK_DB_PASSWORD",
		"db.name":                       "RENTACHECK_DB_NAME",
		"db.sslmode":                    "RENTACHECK_DB_SSLMODE",
		"db.max_open":                   "RENTACHECK_DB_MAX_OPEN",
		"db.max_idle":                   "RENTACHECK_DB_MAX_IDLE",
		"s3.region":                     "RENTACHECK_S3_REGION",
		"s3.bucket":                     "RENTACHECK_S3_BUCKET",
		"s3.endpoint":                   "RENTACHECK_S3_ENDPOINT",
		"s3.access_key":                 "RENTACHECK_S3_ACCESS_KEY",
		"s3.secret_key":                 "RENTACHECK_S3_SECRET_KEY",
		"s3.presign_expiry":             "RENTACHECK_S3_PRESIGN_EXPIRY",
		"model.api_key":                 "RENTACHECK_MODEL_API_KEY",
		"model.chat_model":              "RENTACHECK_MODEL_CHAT_MODEL",
		"model.embedding_model":         "RENTACHECK_MODEL_EMBEDDING_MODEL",
		"model.timeout_secs":            "RENTACHECK_MODEL_TIMEOUT_SECS",
		"rag.top_k":                     "RENTACHECK_RAG_TOP_K",
		"rag.threshold":                 "RENTACHECK_RAG_THRESHOLD",
		"engine.max_retries":            "RENTACHECK_ENGINE_MAX_RETRIES",
		"engine.max_model_turns":        "RENTACHECK_ENGINE_MAX_MODEL_TURNS",
		"engine.exogena_text_max_chars": "RENTACHECK_ENGINE_EXOGENA_TEXT_MAX_CHARS",
		"engine.exogena_html_max_chars": "RENTACHECK_ENGINE_EXOGENA_HTML_MAX_CHARS",
		"engine.mov_threshold_cop":      "RENTACHECK_ENGINE_MOV_THRESHOLD_COP",
		"log.level":                     "RENTACHECK_LOG_LEVEL",
		"log.format":                    "RENTACHECK_LOG_FORMAT",
		"cors.allowed_origins":          "RENTACHECK_CORS_ALLOWED_ORIGINS",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if
	// RENTACHECK_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("RENTACHECK_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.S3 = S3Config{
		Region:        v.GetString("s3.region"),
		Bucket:        v.GetString("s3.bucket"),
		Endpoint:      v.GetString("s3.endpoint"),
		AccessKey:     v.GetString("s3.access_key"),
		SecretKey:     v.GetString("s3.secret_key"),
		PresignExpiry: v.GetInt64("s3.presign_expiry"),
	}
	cfg.Model = ModelConfig{
		APIKey:         v.GetString("model.api_key"),
		ChatModel:      v.GetString("model.chat_model"),
		EmbeddingModel: v.GetString("model.embedding_model"),
		TimeoutSecs:    v.GetInt("model.timeout_secs"),
	}
	cfg.RAG = RAGConfig{
		TopK:      v.GetInt("rag.top_k"),
		Threshold: v.GetFloat64("rag.threshold"),
	}
	cfg.Engine = EngineConfig{
		MaxRetries:          v.GetInt("engine.max_retries"),
		MaxModelTurns:       v.GetInt("engine.max_model_turns"),
		ExogenaTextMaxChars: v.GetInt("engine.exogena_text_max_chars"),
		ExogenaHTMLMaxChars: v.GetInt("engine.exogena_html_max_chars"),
		MovThresholdCOP:     v.GetFloat64("engine.mov_threshold_cop"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}

	// Parse CORS allowed origins from comma-separated string
	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: corsOrigins,
	}

	return cfg, nil
}
