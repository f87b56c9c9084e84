package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"dario.cat/mergo"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration options for the grade watcher
type Config struct {
	// Grades portal and its login gateway
	Portal PortalConfig `yaml:"portal" json:"portal"`

	// Outbound chat webhook
	Webhook WebhookConfig `yaml:"webhook" json:"webhook"`

	// Optional e-mail mirror of the webhook notifications
	Email EmailConfig `yaml:"email" json:"email"`

	// Run-cycle scheduling
	Schedule ScheduleConfig `yaml:"schedule" json:"schedule"`

	// Browser engine settings
	Browser BrowserConfig `yaml:"browser" json:"browser"`

	// Durable state locations
	Storage StorageConfig `yaml:"storage" json:"storage"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// PortalConfig holds portal-specific configuration
type PortalConfig struct {
	URL               string          `yaml:"url" json:"url"`
	ResultsURL        string          `yaml:"results_url" json:"results_url"`
	Username          string          `yaml:"username" json:"username"`
	Password          string          `yaml:"password" json:"-"`
	NavigationTimeout time.Duration   `yaml:"navigation_timeout" json:"navigation_timeout"`
	ResultsTimeout    time.Duration   `yaml:"results_timeout" json:"results_timeout"`
	SettleDelay       time.Duration   `yaml:"settle_delay" json:"settle_delay"`
	LoginGrace        time.Duration   `yaml:"login_grace" json:"login_grace"`
	LoginMarkers      []string        `yaml:"login_markers" json:"login_markers"`
	Selectors         SelectorsConfig `yaml:"selectors" json:"selectors"`
}

// SelectorsConfig lists the CSS selectors used to drive the portal pages.
// Candidate lists are tried in order and the first match wins.
type SelectorsConfig struct {
	PasswordField      string   `yaml:"password_field" json:"password_field"`
	UsernameCandidates []string `yaml:"username_candidates" json:"username_candidates"`
	PasswordCandidates []string `yaml:"password_candidates" json:"password_candidates"`
	SubmitCandidates   []string `yaml:"submit_candidates" json:"submit_candidates"`

	PeriodTrigger string `yaml:"period_trigger" json:"period_trigger"`
	PeriodOption  string `yaml:"period_option" json:"period_option"`

	ResultsTree        string `yaml:"results_tree" json:"results_tree"`
	TreeRow            string `yaml:"tree_row" json:"tree_row"`
	LevelAttribute     string `yaml:"level_attribute" json:"level_attribute"`
	DateCell           string `yaml:"date_cell" json:"date_cell"`
	GradeCell          string `yaml:"grade_cell" json:"grade_cell"`
	GradeLabelMarker   string `yaml:"grade_label_marker" json:"grade_label_marker"`
	InfoRow            string `yaml:"info_row" json:"info_row"`
	AverageLabelMarker string `yaml:"average_label_marker" json:"average_label_marker"`
}

// WebhookConfig holds notification sink configuration
type WebhookConfig struct {
	URL           string        `yaml:"url" json:"url"`
	Username      string        `yaml:"username" json:"username"`
	ErrorUsername string        `yaml:"error_username" json:"error_username"`
	Footer        string        `yaml:"footer" json:"footer"`
	ErrorFooter   string        `yaml:"error_footer" json:"error_footer"`
	Timeout       time.Duration `yaml:"timeout" json:"timeout"`
	MaxPerMinute  int           `yaml:"max_per_minute" json:"max_per_minute"`
}

// EmailConfig holds the optional SMTP notification mirror. It is enabled
// when a server and at least one recipient are set.
type EmailConfig struct {
	SMTPServer string   `yaml:"smtp_server" json:"smtp_server"`
	SMTPPort   int      `yaml:"smtp_port" json:"smtp_port"`
	Username   string   `yaml:"username" json:"username"`
	Password   string   `yaml:"password" json:"-"`
	From       string   `yaml:"from" json:"from"`
	To         []string `yaml:"to" json:"to"`
}

// Enabled reports whether e-mail notifications are configured
func (e *EmailConfig) Enabled() bool {
	return e.SMTPServer != "" && len(e.To) > 0
}

// Addr returns the SMTP host:port
func (e *EmailConfig) Addr() string {
	return fmt.Sprintf("%s:%d", e.SMTPServer, e.SMTPPort)
}

// ScheduleConfig holds the fixed interval between run cycles
type ScheduleConfig struct {
	Interval time.Duration `yaml:"interval" json:"interval"`
}

// BrowserConfig holds browser engine configuration
type BrowserConfig struct {
	Headless     bool     `yaml:"headless" json:"headless"`
	RemoteURL    string   `yaml:"remote_url" json:"remote_url"`
	Stealth      bool     `yaml:"stealth" json:"stealth"`
	BlockedTypes []string `yaml:"blocked_types" json:"blocked_types"`
	UserAgent    string   `yaml:"user_agent" json:"user_agent"`
}

// StorageConfig holds durable state configuration
type StorageConfig struct {
	DataDir           string `yaml:"data_dir" json:"data_dir"`
	HistoryFile       string `yaml:"history_file" json:"history_file"`
	SessionFile       string `yaml:"session_file" json:"session_file"`
	SessionSeed       string `yaml:"-" json:"-"`
	SessionPassphrase string `yaml:"-" json:"-"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" json:"level"`
	File     string `yaml:"file" json:"file"`
	Timezone string `yaml:"timezone" json:"timezone"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Portal: PortalConfig{
			NavigationTimeout: 60 * time.Second,
			ResultsTimeout:    30 * time.Second,
			SettleDelay:       2 * time.Second,
			LoginGrace:        3 * time.Second,
			LoginMarkers:      []string{"login", "cas"},
			Selectors:         DefaultSelectors(),
		},
		Webhook: WebhookConfig{
			Username:      "HyperPlanning Bot",
			ErrorUsername: "HyperPlanning Bot (Erreur)",
			Footer:        "Hyperplanning Bot - INSA",
			ErrorFooter:   "Veuillez vérifier les logs",
			Timeout:       10 * time.Second,
			MaxPerMinute:  30,
		},
		Email: EmailConfig{
			SMTPPort: 587,
		},
		Schedule: ScheduleConfig{
			Interval: 3600 * time.Second,
		},
		Browser: BrowserConfig{
			Headless:     true,
			Stealth:      true,
			BlockedTypes: []string{"Image", "Font", "Media"},
		},
		Storage: StorageConfig{
			DataDir:     "data",
			HistoryFile: "grades_history.json",
			SessionFile: "auth_state.json",
		},
		Logging: LoggingConfig{
			Level:    "info",
			Timezone: "Europe/Paris",
		},
	}
}

// DefaultSelectors returns the selectors matching the stock portal markup
func DefaultSelectors() SelectorsConfig {
	return SelectorsConfig{
		PasswordField:      "input[type='password']",
		UsernameCandidates: []string{"input[name='username']", "input[name='user']", "#username"},
		PasswordCandidates: []string{"input[name='password']", "input[name='pass']", "#password"},
		SubmitCandidates:   []string{"input[type='submit']", "button[type='submit']", ".btn-submit"},

		PeriodTrigger: "[role='combobox']",
		PeriodOption:  "[role='listbox'] [role='option']",

		ResultsTree:        "[role='tree']",
		TreeRow:            "[role='treeitem'][aria-level]",
		LevelAttribute:     "aria-level",
		DateCell:           ".date",
		GradeCell:          ".as-info.fixed",
		GradeLabelMarker:   "Note élève",
		InfoRow:            ".as-info",
		AverageLabelMarker: "Moyenne classe",
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	var errs []error

	// Portal
	if url := os.Getenv("HP_URL"); url != "" {
		c.Portal.URL = url
	}
	if resultsURL := os.Getenv("GRADEWATCH_RESULTS_URL"); resultsURL != "" {
		c.Portal.ResultsURL = resultsURL
	}
	if username := os.Getenv("HP_USERNAME"); username != "" {
		c.Portal.Username = username
	}
	if password := os.Getenv("HP_PASSWORD"); password != "" {
		c.Portal.Password = password
	}

	// Webhook
	if webhook := os.Getenv("DISCORD_WEBHOOK_URL"); webhook != "" {
		c.Webhook.URL = webhook
	}

	// Email
	if server := os.Getenv("GRADEWATCH_SMTP_SERVER"); server != "" {
		c.Email.SMTPServer = server
	}
	if port := os.Getenv("GRADEWATCH_SMTP_PORT"); port != "" {
		p, err := strconv.Atoi(strings.TrimSpace(port))
		if err != nil || p <= 0 {
			errs = append(errs, fmt.Errorf("GRADEWATCH_SMTP_PORT must be a positive integer, got %q", port))
		} else {
			c.Email.SMTPPort = p
		}
	}
	if user := os.Getenv("GRADEWATCH_SMTP_USERNAME"); user != "" {
		c.Email.Username = user
	}
	if password := os.Getenv("GRADEWATCH_SMTP_PASSWORD"); password != "" {
		c.Email.Password = password
	}
	if from := os.Getenv("GRADEWATCH_EMAIL_FROM"); from != "" {
		c.Email.From = from
	}
	if to := os.Getenv("GRADEWATCH_EMAIL_TO"); to != "" {
		c.Email.To = splitList(to)
	}

	// Schedule
	if interval := os.Getenv("CHECK_INTERVAL_SECONDS"); interval != "" {
		seconds, err := strconv.Atoi(strings.TrimSpace(interval))
		if err != nil || seconds <= 0 {
			errs = append(errs, fmt.Errorf("CHECK_INTERVAL_SECONDS must be a positive integer, got %q", interval))
		} else {
			c.Schedule.Interval = time.Duration(seconds) * time.Second
		}
	}

	// Browser
	if headless := os.Getenv("HEADLESS_MODE"); headless != "" {
		c.Browser.Headless = strings.ToLower(strings.TrimSpace(headless)) == "true"
	}
	if remote := os.Getenv("GRADEWATCH_BROWSER_URL"); remote != "" {
		c.Browser.RemoteURL = remote
	}

	// Storage
	if dataDir := os.Getenv("GRADEWATCH_DATA_DIR"); dataDir != "" {
		c.Storage.DataDir = dataDir
	}
	if seed := os.Getenv("AUTH_STATE_JSON"); seed != "" {
		c.Storage.SessionSeed = seed
	}
	if passphrase := os.Getenv("GRADEWATCH_SESSION_PASSPHRASE"); passphrase != "" {
		c.Storage.SessionPassphrase = passphrase
	}

	// Logging
	if logLevel := os.Getenv("GRADEWATCH_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}
	if logFile := os.Getenv("GRADEWATCH_LOG_FILE"); logFile != "" {
		c.Logging.File = logFile
	}
	if tz := os.Getenv("LOG_TIMEZONE"); tz != "" {
		c.Logging.Timezone = tz
	}

	return errors.Join(errs...)
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return c.mergeLocalFile(localPath(path))
}

// localPath returns the machine-local override next to path:
// config.yaml -> config.local.yaml
func localPath(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + ".local" + ext
}

// mergeLocalFile overlays the non-empty values of the file at path, if it
// exists. Boolean false and zero durations cannot override a set value.
func (c *Config) mergeLocalFile(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read local config file: %w", err)
	}

	var override Config
	if err := yaml.Unmarshal(data, &override); err != nil {
		return fmt.Errorf("failed to parse local config file: %w", err)
	}
	if err := mergo.Merge(c, override, mergo.WithOverride); err != nil {
		return fmt.Errorf("failed to merge local config file: %w", err)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	locations := []string{
		".gradewatch.yaml",
		".gradewatch.yml",
		filepath.Join(os.Getenv("HOME"), ".config", "gradewatch", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".config", "gradewatch", "config.yml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Portal.URL) == "" {
		errs = append(errs, errors.New("portal URL is required (HP_URL)"))
	}
	if strings.TrimSpace(c.Webhook.URL) == "" {
		errs = append(errs, errors.New("webhook URL is required (DISCORD_WEBHOOK_URL)"))
	}

	if c.Portal.NavigationTimeout <= 0 {
		errs = append(errs, errors.New("navigation timeout must be positive"))
	}
	if c.Portal.ResultsTimeout <= 0 {
		errs = append(errs, errors.New("results timeout must be positive"))
	}
	if c.Portal.SettleDelay < 0 || c.Portal.LoginGrace < 0 {
		errs = append(errs, errors.New("settle delay and login grace cannot be negative"))
	}
	if len(c.Portal.Selectors.UsernameCandidates) == 0 ||
		len(c.Portal.Selectors.PasswordCandidates) == 0 ||
		len(c.Portal.Selectors.SubmitCandidates) == 0 {
		errs = append(errs, errors.New("login selector candidate lists cannot be empty"))
	}

	if c.Schedule.Interval <= 0 {
		errs = append(errs, errors.New("check interval must be positive"))
	}

	if c.Webhook.Timeout <= 0 {
		errs = append(errs, errors.New("webhook timeout must be positive"))
	}
	if c.Webhook.MaxPerMinute <= 0 {
		errs = append(errs, errors.New("webhook max per minute must be positive"))
	}

	if c.Email.SMTPServer != "" {
		if c.Email.SMTPPort <= 0 {
			errs = append(errs, errors.New("SMTP port must be positive"))
		}
		if c.Email.From == "" || len(c.Email.To) == 0 {
			errs = append(errs, errors.New("e-mail notifications need a sender and at least one recipient"))
		}
	}

	if c.Storage.DataDir == "" {
		errs = append(errs, errors.New("data directory is required"))
	}
	if c.Storage.HistoryFile == "" || c.Storage.SessionFile == "" {
		errs = append(errs, errors.New("history and session file names are required"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}
	if _, err := time.LoadLocation(c.Logging.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("invalid log timezone %q: %w", c.Logging.Timezone, err))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Warnings returns non-fatal configuration issues worth surfacing at startup
func (c *Config) Warnings() []string {
	var warnings []string
	if !c.HasCredentials() {
		warnings = append(warnings, "no portal credentials configured: automatic re-login will fail when the session expires")
	}
	if c.Schedule.Interval > 0 && c.Schedule.Interval < time.Minute {
		warnings = append(warnings, "check interval below one minute may get the account throttled")
	}
	if c.Portal.ResultsURL == "" {
		warnings = append(warnings, "no results URL configured: the period selector must be reachable from the portal landing page")
	}
	return warnings
}

// HasCredentials reports whether both username and password are set
func (c *Config) HasCredentials() bool {
	return c.Portal.Username != "" && c.Portal.Password != ""
}

// Location returns the log timezone, falling back to UTC when invalid
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Logging.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// HistoryPath returns the full path of the grade history file
func (c *Config) HistoryPath() string {
	return filepath.Join(c.Storage.DataDir, c.Storage.HistoryFile)
}

// SessionPath returns the full path of the session artifact
func (c *Config) SessionPath() string {
	return filepath.Join(c.Storage.DataDir, c.Storage.SessionFile)
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if url, ok := flags["url"].(string); ok && url != "" {
		c.Portal.URL = url
	}
	if webhook, ok := flags["webhook"].(string); ok && webhook != "" {
		c.Webhook.URL = webhook
	}
	if interval, ok := flags["interval"].(time.Duration); ok && interval > 0 {
		c.Schedule.Interval = interval
	}
	if headless, ok := flags["headless"].(bool); ok {
		c.Browser.Headless = headless
	}
	if dataDir, ok := flags["data-dir"].(string); ok && dataDir != "" {
		c.Storage.DataDir = dataDir
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
}

// Resolve builds the configuration from all sources without validating it.
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Resolve(configPath string, flags map[string]interface{}) (*Config, error) {
	// Try to load .env files (don't fail if they don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".gradewatch.env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	config.MergeCommandLineFlags(flags)

	return config, nil
}

// Load resolves the configuration and validates it
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	config, err := Resolve(configPath, flags)
	if err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
