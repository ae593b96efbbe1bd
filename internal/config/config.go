package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"muds-matching-backend/internal/matching"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Slack     SlackConfig     `yaml:"slack"`
	Sheets    SheetsConfig    `yaml:"sheets"`
	Google    GoogleConfig    `yaml:"google"`
	JWT       JWTConfig       `yaml:"jwt"`
	Admin     AdminConfig     `yaml:"admin"`
	Matching  MatchingConfig  `yaml:"matching"`
	Email     EmailConfig     `yaml:"email"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Log       LogConfig       `yaml:"log"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// DatabaseConfig contains PostgreSQL connection settings
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"ssl_mode"`
}

// SlackConfig contains Slack bot settings. When Enabled is false the
// service runs with a no-op notifier so the matching flow can be
// exercised without a workspace.
type SlackConfig struct {
	Enabled       bool   `yaml:"enabled"`
	BotToken      string `yaml:"bot_token"`
	SigningSecret string `yaml:"signing_secret"`
	// Channel for admin-facing announcements (winner details, errors).
	AdminChannelID string `yaml:"admin_channel_id"`
}

// SheetsConfig contains Google Sheets roster sync settings
type SheetsConfig struct {
	Enabled             bool   `yaml:"enabled"`
	CredentialsFile     string `yaml:"credentials_file"`
	JuniorSpreadsheetID string `yaml:"junior_spreadsheet_id"`
	JuniorRange         string `yaml:"junior_range"`
	SeniorSpreadsheetID string `yaml:"senior_spreadsheet_id"`
	SeniorRange         string `yaml:"senior_range"`
}

// GoogleConfig contains OAuth login settings
type GoogleConfig struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	RedirectURL  string `yaml:"redirect_url"`
	// AllowedDomain restricts login to one hosted domain; empty allows any.
	AllowedDomain string `yaml:"allowed_domain"`
}

// JWTConfig contains JWT token settings
type JWTConfig struct {
	Secret            string `yaml:"secret"`
	AccessTokenExpiry int    `yaml:"access_token_expiry_minutes"`
}

// AdminConfig contains the static admin API token used by the sync and
// cancel endpoints.
type AdminConfig struct {
	APIToken string `yaml:"api_token"`
}

// MatchingConfig contains scorer and ranker knobs
type MatchingConfig struct {
	Weights     matching.Weights `yaml:"weights"`
	TopN        int              `yaml:"top_n"`
	Tokenizer   string           `yaml:"tokenizer"` // "chars" or "words"
	MaxFeatures int              `yaml:"max_features"`
	// FeedbackDelayHours is how long after acceptance the feedback
	// request goes out.
	FeedbackDelayHours int `yaml:"feedback_delay_hours"`
}

// EmailConfig contains SendGrid settings for admin alert mail
type EmailConfig struct {
	Enabled    bool   `yaml:"enabled"`
	APIKey     string `yaml:"api_key"`
	From       string `yaml:"from"`
	FromName   string `yaml:"from_name"`
	AdminEmail string `yaml:"admin_email"`
}

// SchedulerConfig contains cron schedule settings
type SchedulerConfig struct {
	SyncRosters          string `yaml:"sync_rosters"`
	SendFeedbackRequests string `yaml:"send_feedback_requests"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "text"
}

// Load reads configuration from a YAML file
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.overrideWithEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// overrideWithEnv overrides config values with environment variables
func (c *Config) overrideWithEnv() {
	// Database
	if val := os.Getenv("DB_HOST"); val != "" {
		c.Database.Host = val
	}
	if val := os.Getenv("DB_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Database.Port)
	}
	if val := os.Getenv("DB_USER"); val != "" {
		c.Database.User = val
	}
	if val := os.Getenv("DB_PASSWORD"); val != "" {
		c.Database.Password = val
	}
	if val := os.Getenv("DB_NAME"); val != "" {
		c.Database.Database = val
	}
	if val := os.Getenv("DB_SSL_MODE"); val != "" {
		c.Database.SSLMode = val
	}

	// Slack
	if val := os.Getenv("SLACK_BOT_TOKEN"); val != "" {
		c.Slack.BotToken = val
	}
	if val := os.Getenv("SLACK_SIGNING_SECRET"); val != "" {
		c.Slack.SigningSecret = val
	}

	// Google OAuth
	if val := os.Getenv("GOOGLE_CLIENT_ID"); val != "" {
		c.Google.ClientID = val
	}
	if val := os.Getenv("GOOGLE_CLIENT_SECRET"); val != "" {
		c.Google.ClientSecret = val
	}

	// JWT / admin
	if val := os.Getenv("JWT_SECRET"); val != "" {
		c.JWT.Secret = val
	}
	if val := os.Getenv("ADMIN_API_TOKEN"); val != "" {
		c.Admin.APIToken = val
	}

	// Email
	if val := os.Getenv("SENDGRID_API_KEY"); val != "" {
		c.Email.APIKey = val
	}

	// Server
	if val := os.Getenv("SERVER_HOST"); val != "" {
		c.Server.Host = val
	}
	if val := os.Getenv("SERVER_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Server.Port)
	}

	// Log
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Log.Level = val
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.Log.Format = val
	}

	// Set defaults for log if not configured
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Server validation
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	// Database validation
	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}
	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}

	// Slack validation
	if c.Slack.Enabled {
		if c.Slack.BotToken == "" {
			return fmt.Errorf("slack bot token is required when slack is enabled")
		}
		if c.Slack.SigningSecret == "" {
			return fmt.Errorf("slack signing secret is required when slack is enabled")
		}
	}

	// Sheets validation
	if c.Sheets.Enabled {
		if c.Sheets.JuniorSpreadsheetID == "" || c.Sheets.SeniorSpreadsheetID == "" {
			return fmt.Errorf("both roster spreadsheet ids are required when sheets sync is enabled")
		}
		if c.Sheets.JuniorRange == "" {
			c.Sheets.JuniorRange = "A2:Q"
		}
		if c.Sheets.SeniorRange == "" {
			c.Sheets.SeniorRange = "A2:T"
		}
	}

	// JWT validation
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}
	if len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT secret must be at least 32 characters")
	}
	if c.JWT.AccessTokenExpiry <= 0 {
		c.JWT.AccessTokenExpiry = 60
	}

	// Admin validation
	if c.Admin.APIToken == "" {
		return fmt.Errorf("admin API token is required")
	}

	// Matching defaults
	zero := matching.Weights{}
	if c.Matching.Weights == zero {
		c.Matching.Weights = matching.DefaultWeights()
	}
	if c.Matching.Weights.LoadCeiling <= 0 {
		c.Matching.Weights.LoadCeiling = matching.DefaultWeights().LoadCeiling
	}
	if c.Matching.TopN <= 0 {
		c.Matching.TopN = matching.DefaultTopN
	}
	if c.Matching.Tokenizer == "" {
		c.Matching.Tokenizer = string(matching.TokenizerChars)
	}
	if c.Matching.Tokenizer != string(matching.TokenizerChars) && c.Matching.Tokenizer != string(matching.TokenizerWords) {
		return fmt.Errorf("invalid matching tokenizer: %s", c.Matching.Tokenizer)
	}
	if c.Matching.MaxFeatures <= 0 {
		c.Matching.MaxFeatures = matching.DefaultMaxFeatures
	}
	if c.Matching.FeedbackDelayHours <= 0 {
		c.Matching.FeedbackDelayHours = 72
	}

	// Email validation
	if c.Email.Enabled {
		if c.Email.APIKey == "" {
			return fmt.Errorf("sendgrid API key is required when email is enabled")
		}
		if c.Email.From == "" || c.Email.AdminEmail == "" {
			return fmt.Errorf("email from and admin addresses are required when email is enabled")
		}
	}

	// Scheduler defaults
	if c.Scheduler.SyncRosters == "" {
		c.Scheduler.SyncRosters = "0 0 * * * *" // hourly
	}
	if c.Scheduler.SendFeedbackRequests == "" {
		c.Scheduler.SendFeedbackRequests = "0 0 9 * * *" // 9 AM UTC
	}

	return nil
}

// GetDatabaseConnectionString returns a PostgreSQL connection string
func (c *Config) GetDatabaseConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Database,
		c.Database.SSLMode,
	)
}

// GetServerAddress returns the HTTP server address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
