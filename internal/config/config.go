package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete application configuration
type Config struct {
	Input    InputConfig    `mapstructure:"input"`
	Report   ReportConfig   `mapstructure:"report"`
	Output   OutputConfig   `mapstructure:"output"`
	Telegram TelegramConfig `mapstructure:"telegram"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// InputConfig controls how the event log is parsed and cleaned
type InputConfig struct {
	Delimiter          string   `mapstructure:"delimiter"`
	RecipientSeparator string   `mapstructure:"recipient_separator"`
	MissingRecipient   string   `mapstructure:"missing_recipient"`
	ExcludedSenders    []string `mapstructure:"excluded_senders"`
}

// ReportConfig holds ranking and chart layout settings
type ReportConfig struct {
	TopN                int     `mapstructure:"top_n"`
	WidthInches         float64 `mapstructure:"width_inches"`
	HeightInches        float64 `mapstructure:"height_inches"`
	TickRotationDegrees float64 `mapstructure:"tick_rotation_degrees"`
	MonthFormat         string  `mapstructure:"month_format"`
}

// OutputConfig names the artifacts written by a run.
// SummaryFile and SQLitePath are optional; empty disables them.
type OutputConfig struct {
	Dir           string `mapstructure:"dir"`
	CountsFile    string `mapstructure:"counts_file"`
	VolumeChart   string `mapstructure:"volume_chart"`
	ContactsChart string `mapstructure:"contacts_chart"`
	SummaryFile   string `mapstructure:"summary_file"`
	SQLitePath    string `mapstructure:"sqlite_path"`
}

// TelegramConfig holds Telegram notification configuration
type TelegramConfig struct {
	BotToken       string        `mapstructure:"bot_token"`
	ChatID         string        `mapstructure:"chat_id"`
	Enabled        bool          `mapstructure:"enabled"`
	MaxRetries     int           `mapstructure:"max_retries"`
	RetryDelayBase time.Duration `mapstructure:"retry_delay_base"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// DefaultExcludedSenders are automated mailboxes that would otherwise
// dominate the sender ranking.
var DefaultExcludedSenders = []string{"announcements", "notes", "schedule", "outlook", "arsystem"}

const (
	DefaultDelimiter          = ","
	DefaultRecipientSeparator = "|"
	DefaultMissingRecipient   = "missing"
	DefaultTopN               = 5

	DefaultWidthInches         = 12.0
	DefaultHeightInches        = 8.0
	DefaultTickRotationDegrees = 45.0
	DefaultMonthFormat         = "2006-01"
)

// Load reads configuration from an optional file and environment variables.
// An empty path yields the defaults plus any MAILSTATS_* overrides.
func Load(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("MAILSTATS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults configures default values for all configuration options
func setDefaults(v *viper.Viper) {
	v.SetDefault("input.delimiter", DefaultDelimiter)
	v.SetDefault("input.recipient_separator", DefaultRecipientSeparator)
	v.SetDefault("input.missing_recipient", DefaultMissingRecipient)
	v.SetDefault("input.excluded_senders", DefaultExcludedSenders)

	v.SetDefault("report.top_n", DefaultTopN)
	v.SetDefault("report.width_inches", DefaultWidthInches)
	v.SetDefault("report.height_inches", DefaultHeightInches)
	v.SetDefault("report.tick_rotation_degrees", DefaultTickRotationDegrees)
	v.SetDefault("report.month_format", DefaultMonthFormat)

	v.SetDefault("output.dir", ".")
	v.SetDefault("output.counts_file", "question_1_output.csv")
	v.SetDefault("output.volume_chart", "question_2_output.png")
	v.SetDefault("output.contacts_chart", "question_3_output.png")
	v.SetDefault("output.summary_file", "")
	v.SetDefault("output.sqlite_path", "")

	v.SetDefault("telegram.enabled", false)
	v.SetDefault("telegram.max_retries", 3)
	v.SetDefault("telegram.retry_delay_base", "1s")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// Validate checks that all configuration values are valid
func (c *Config) Validate() error {
	// Input
	if len([]rune(c.Input.Delimiter)) != 1 {
		return fmt.Errorf("input.delimiter must be a single character")
	}
	if c.Input.RecipientSeparator == "" {
		return fmt.Errorf("input.recipient_separator is required")
	}
	if c.Input.RecipientSeparator == c.Input.Delimiter {
		return fmt.Errorf("input.recipient_separator must differ from input.delimiter")
	}
	if c.Input.MissingRecipient == "" {
		return fmt.Errorf("input.missing_recipient is required")
	}

	// Report
	if c.Report.TopN < 1 {
		return fmt.Errorf("report.top_n must be at least 1")
	}
	if c.Report.WidthInches <= 0 || c.Report.HeightInches <= 0 {
		return fmt.Errorf("report.width_inches and report.height_inches must be positive")
	}
	if c.Report.MonthFormat == "" {
		return fmt.Errorf("report.month_format is required")
	}

	// Output
	if c.Output.CountsFile == "" || c.Output.VolumeChart == "" || c.Output.ContactsChart == "" {
		return fmt.Errorf("output.counts_file, output.volume_chart and output.contacts_chart are required")
	}

	if c.Telegram.Enabled {
		if c.Telegram.BotToken == "" {
			return fmt.Errorf("telegram.bot_token is required when telegram is enabled")
		}
		if c.Telegram.ChatID == "" {
			return fmt.Errorf("telegram.chat_id is required when telegram is enabled")
		}
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("logging.format must be one of: json, text")
	}

	return nil
}

// ExcludedSet returns the excluded senders as a lookup set
func (c *InputConfig) ExcludedSet() map[string]bool {
	set := make(map[string]bool, len(c.ExcludedSenders))
	for _, name := range c.ExcludedSenders {
		set[name] = true
	}
	return set
}
