package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	StorageLocal = "local"
	StorageMinIO = "minio"

	ExtractorLLM   = "llm"
	ExtractorRules = "rules"

	defaultJWTSecret = "change-me-in-production"
)

// Config holds application configuration
type Config struct {
	Server   ServerConfig   `envconfig:"SERVER"`
	Database DatabaseConfig `envconfig:"DB"`
	Redis    RedisConfig    `envconfig:"REDIS"`
	Storage  StorageConfig  `envconfig:"STORAGE"`
	Assembly AssemblyConfig `envconfig:"ASSEMBLYAI"`
	Groq     GroqConfig     `envconfig:"GROQ"`
	SendGrid SendGridConfig `envconfig:"SENDGRID"`
	JWT      JWTConfig      `envconfig:"JWT"`
	Pipeline PipelineConfig `envconfig:"PIPELINE"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            string   `default:"8080"`
	Host            string   `default:"0.0.0.0"`
	Environment     string   `default:"development"`
	AllowedOrigins  []string `split_words:"true" default:"http://localhost:3000"`
	ShutdownTimeout int      `split_words:"true" default:"10"`
	MaxUploadMB     int64    `split_words:"true" default:"200"`
}

// DatabaseConfig holds configuration of the optional report index
type DatabaseConfig struct {
	Enabled       bool   `default:"false"`
	Host          string `default:"localhost"`
	Port          string `default:"5432"`
	User          string `default:"postgres"`
	Password      string `default:"postgres"`
	Name          string `default:"meeting_reporter"`
	SSLMode       string `split_words:"true" default:"disable"`
	MaxConns      int    `split_words:"true" default:"25"`
	MinConns      int    `split_words:"true" default:"5"`
	AutoMigrate   bool   `split_words:"true" default:"false"`
	MigrationsDir string `split_words:"true" default:"migrations"`

	ConnMaxLifetime time.Duration `split_words:"true" default:"1h"`
	ConnectTimeout  time.Duration `split_words:"true" default:"5s"`
}

// RedisConfig holds configuration of the run tracker
type RedisConfig struct {
	Enabled  bool          `default:"false"`
	Host     string        `default:"localhost"`
	Port     string        `default:"6379"`
	Password string
	DB       int           `default:"0"`
	RunTTL   time.Duration `split_words:"true" default:"24h"`
}

// StorageConfig holds storage configuration
type StorageConfig struct {
	Type            string        `default:"local"` // "local" or "minio"
	LocalDir        string        `split_words:"true" default:"."`
	Endpoint        string        `default:"localhost:9000"`
	AccessKeyID     string        `split_words:"true" default:"minioadmin"`
	SecretAccessKey string        `split_words:"true" default:"minioadmin"`
	BucketName      string        `split_words:"true" default:"meeting-reports"`
	UseSSL          bool          `split_words:"true" default:"false"`
	PublicURL       string        `split_words:"true"`
	URLExpiry       time.Duration `split_words:"true" default:"168h"`
}

// AssemblyConfig holds AssemblyAI configuration
type AssemblyConfig struct {
	APIKey        string `split_words:"true"`
	BaseURL       string `split_words:"true" default:"https://api.assemblyai.com"`
	SpeakerLabels bool   `split_words:"true" default:"true"`
	LanguageCode  string `split_words:"true"`
}

// GroqConfig holds configuration of the chat completion endpoint
type GroqConfig struct {
	APIKey      string        `split_words:"true"`
	BaseURL     string        `split_words:"true" default:"https://api.groq.com"`
	Model       string        `default:"llama-3.3-70b-versatile"`
	Temperature float64       `default:"0.2"`
	MaxTokens   int           `split_words:"true" default:"4096"`
	Timeout     time.Duration `default:"60s"`
}

// SendGridConfig holds email delivery configuration
type SendGridConfig struct {
	APIKey    string `split_words:"true"`
	FromEmail string `split_words:"true"`
	FromName  string `split_words:"true" default:"Meeting Reporter"`
	BaseURL   string `split_words:"true" default:"https://api.sendgrid.com"`
}

// JWTConfig holds session token configuration
type JWTConfig struct {
	Secret string        `default:"change-me-in-production"`
	Issuer string        `default:"meeting-reporter"`
	Expiry time.Duration `default:"24h"`
}

// PipelineConfig holds report pipeline configuration
type PipelineConfig struct {
	Extractor    string        `default:"llm"` // "llm" or "rules"
	MaxAttempts  int           `split_words:"true" default:"3"`
	Timeout      time.Duration `default:"5m"`
	Concurrency  int           `default:"4"`
	ReportPrefix string        `split_words:"true" default:"reports"`
}

// Load loads configuration from a .env file (if any) and environment variables
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables or defaults")
	}
	return LoadFromEnv()
}

// LoadFromEnv decodes and validates configuration from environment variables only
func LoadFromEnv() (*Config, error) {
	cfg := &Config{}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Storage.Type {
	case StorageLocal:
		if c.Storage.LocalDir == "" {
			return fmt.Errorf("STORAGE_LOCAL_DIR is required for local storage")
		}
	case StorageMinIO:
		if c.Storage.Endpoint == "" || c.Storage.BucketName == "" {
			return fmt.Errorf("STORAGE_ENDPOINT and STORAGE_BUCKET_NAME are required for minio storage")
		}
	default:
		return fmt.Errorf("STORAGE_TYPE must be %q or %q, got %q", StorageLocal, StorageMinIO, c.Storage.Type)
	}

	switch c.Pipeline.Extractor {
	case ExtractorLLM:
		if c.Groq.APIKey == "" {
			return fmt.Errorf("GROQ_API_KEY is required when PIPELINE_EXTRACTOR=%s", ExtractorLLM)
		}
	case ExtractorRules:
	default:
		return fmt.Errorf("PIPELINE_EXTRACTOR must be %q or %q, got %q", ExtractorLLM, ExtractorRules, c.Pipeline.Extractor)
	}

	if c.Pipeline.MaxAttempts < 1 {
		return fmt.Errorf("PIPELINE_MAX_ATTEMPTS must be at least 1")
	}
	if c.Pipeline.Concurrency < 1 {
		return fmt.Errorf("PIPELINE_CONCURRENCY must be at least 1")
	}
	if c.Pipeline.ReportPrefix == "" {
		return fmt.Errorf("PIPELINE_REPORT_PREFIX is required")
	}

	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.IsProduction() && c.JWT.Secret == defaultJWTSecret {
		return fmt.Errorf("JWT_SECRET must be changed in production")
	}

	if c.Database.Enabled && c.Database.AutoMigrate && c.IsProduction() {
		return fmt.Errorf("DB_AUTO_MIGRATE is not allowed in production; run reportctl migrate")
	}
	return nil
}

// IsProduction reports whether the server runs in production mode
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// GetDatabaseDSN returns the database connection string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// GetRedisAddr returns the Redis address
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}
