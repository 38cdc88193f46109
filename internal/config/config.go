package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

// Config holds all application configuration
type Config struct {
	Server        ServerConfig       `mapstructure:"server"`
	Database      DatabaseConfig     `mapstructure:"database"`
	SMTP          SMTPConfig         `mapstructure:"smtp"`
	Notifications NotificationConfig `mapstructure:"notifications"`
	Workflow      WorkflowConfig     `mapstructure:"workflow"`
	Logger        LoggerConfig       `mapstructure:"logger"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path            string        `mapstructure:"path"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	MigrationsDir   string        `mapstructure:"migrations_dir"`
}

// SMTPConfig holds outbound mail configuration
type SMTPConfig struct {
	Host       string `mapstructure:"host"`
	Port       int    `mapstructure:"port"`
	Username   string `mapstructure:"username"`
	Password   string `mapstructure:"password"`
	SenderName string `mapstructure:"sender_name"`
	FromAddr   string `mapstructure:"from_addr"`
}

// NotificationConfig holds notification routing configuration
type NotificationConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	ApproverInbox string `mapstructure:"approver_inbox"`
}

// WorkflowConfig holds approval workflow tuning
type WorkflowConfig struct {
	DedupTTL          time.Duration `mapstructure:"dedup_ttl"`
	ClaimHODThreshold float64       `mapstructure:"claim_hod_threshold"`
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"`
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	// A local .env overrides nothing already in the environment
	_ = gotenv.Load()

	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	bindEnvVars()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", 30*time.Second)
	viper.SetDefault("server.write_timeout", 30*time.Second)

	// Database defaults
	viper.SetDefault("database.path", "data/traveldesk.db")
	viper.SetDefault("database.max_open_conns", 25)
	viper.SetDefault("database.max_idle_conns", 5)
	viper.SetDefault("database.conn_max_lifetime", 5*time.Minute)
	viper.SetDefault("database.migrations_dir", "migrations")

	// SMTP defaults
	viper.SetDefault("smtp.port", 587)
	viper.SetDefault("smtp.sender_name", "Travel Desk")

	// Notification defaults
	viper.SetDefault("notifications.enabled", true)

	// Workflow defaults
	viper.SetDefault("workflow.dedup_ttl", 15*time.Second)
	viper.SetDefault("workflow.claim_hod_threshold", 0.0)

	// Logger defaults
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.output_path", "stdout")
	viper.SetDefault("logger.format", "json")
}

// bindEnvVars binds environment variables to configuration
func bindEnvVars() {
	// Sensitive credentials from environment
	viper.BindEnv("smtp.host", "SMTP_HOST")
	viper.BindEnv("smtp.port", "SMTP_PORT")
	viper.BindEnv("smtp.username", "SMTP_USERNAME")
	viper.BindEnv("smtp.password", "SMTP_PASSWORD")
	viper.BindEnv("smtp.from_addr", "SMTP_FROM_ADDR")
	viper.BindEnv("notifications.approver_inbox", "APPROVER_INBOX")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}

	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}

	if c.Notifications.Enabled {
		if c.SMTP.Host == "" {
			return fmt.Errorf("smtp.host is required when notifications are enabled")
		}
		if c.SMTP.FromAddr == "" {
			return fmt.Errorf("smtp.from_addr is required when notifications are enabled")
		}
		if c.Notifications.ApproverInbox == "" {
			return fmt.Errorf("notifications.approver_inbox is required when notifications are enabled")
		}
	}

	if c.Workflow.DedupTTL <= 0 {
		return fmt.Errorf("workflow.dedup_ttl must be positive")
	}
	if c.Workflow.ClaimHODThreshold < 0 {
		return fmt.Errorf("workflow.claim_hod_threshold must not be negative")
	}

	return nil
}
