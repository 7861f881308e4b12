package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/campusbot/internal/domain"
)

// Config holds the campusbot API configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	LLM       LLMConfig       `yaml:"llm"`
	Line      LineConfig      `yaml:"line"`
	Sheets    SheetsConfig    `yaml:"sheets"`
	Cache     CacheConfig     `yaml:"cache"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Campus    domain.Campus   `yaml:"campus"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// LLMConfig holds the OpenAI-compatible provider settings used for both
// embeddings and chat completions.
type LLMConfig struct {
	APIKey         string `yaml:"api_key"`
	BaseURL        string `yaml:"base_url"`
	EmbeddingModel string `yaml:"embedding_model"`
	ChatModel      string `yaml:"chat_model"`
	Provider       string `yaml:"provider"` // metrics label only
}

// LineConfig holds LINE Messaging API credentials. Both empty disables the
// webhook; partially configured is a validation error.
type LineConfig struct {
	ChannelSecret      string `yaml:"channel_secret"`
	ChannelAccessToken string `yaml:"channel_access_token"`
}

// Enabled reports whether the LINE webhook should be mounted.
func (l LineConfig) Enabled() bool {
	return l.ChannelSecret != "" && l.ChannelAccessToken != ""
}

// SheetsConfig holds the published-spreadsheet source settings. Each category
// is one tab (gid) of a single Google Sheets document exported as CSV.
type SheetsConfig struct {
	SpreadsheetID string    `yaml:"spreadsheet_id"`
	GIDs          GIDConfig `yaml:"gids"`
}

// GIDConfig holds the per-category sheet tab identifiers.
type GIDConfig struct {
	Students      string `yaml:"students"`
	Teachers      string `yaml:"teachers"`
	GuestTeachers string `yaml:"guest_teachers"`
	Schedule      string `yaml:"schedule"`
	Subjects      string `yaml:"subjects"`
	FAQ           string `yaml:"faq"`
	Rooms         string `yaml:"rooms"`
}

// CacheConfig holds the optional Redis/Valkey embedding cache settings.
// Empty addrs disables the cache.
type CacheConfig struct {
	Addrs    []string `yaml:"addrs"`
	Password string   `yaml:"password"`
	TTLHours int      `yaml:"ttl_hours"`
}

// RetrievalConfig holds the retrieval pipeline knobs.
type RetrievalConfig struct {
	ContextFanOut    int `yaml:"context_fan_out"`
	BuildConcurrency int `yaml:"build_concurrency"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values. Campus defaults are
// the CMTC IT department facts the service was built for.
func (c *Config) ApplyDefaults() {
	if c.HTTP.Port <= 0 {
		c.HTTP.Port = 3000
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		// Answer generation waits on two upstream model calls.
		c.HTTP.WriteTimeoutSec = 60
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = "https://generativelanguage.googleapis.com/v1beta/openai/"
	}
	if c.LLM.EmbeddingModel == "" {
		c.LLM.EmbeddingModel = "text-embedding-004"
	}
	if c.LLM.ChatModel == "" {
		c.LLM.ChatModel = "gemini-2.5-flash"
	}
	if c.LLM.Provider == "" {
		c.LLM.Provider = "gemini"
	}
	if c.Sheets.GIDs.Students == "" {
		c.Sheets.GIDs.Students = "0"
	}
	if c.Cache.TTLHours <= 0 {
		c.Cache.TTLHours = 7 * 24
	}
	if c.Retrieval.ContextFanOut <= 0 {
		c.Retrieval.ContextFanOut = 8
	}
	if c.Retrieval.BuildConcurrency <= 0 {
		c.Retrieval.BuildConcurrency = 4
	}
	c.applyCampusDefaults()
}

func (c *Config) applyCampusDefaults() {
	campus := &c.Campus
	if campus.Name == "" {
		campus.Name = "วิทยาลัยเทคนิคเชียงใหม่"
	}
	if campus.ShortName == "" {
		campus.ShortName = "CMTC"
	}
	if campus.Director == "" {
		campus.Director = "ดร.วัชรพงศ์ ฝั้นติ๊บ"
	}
	if campus.DepartmentName == "" {
		campus.DepartmentName = "แผนกเทคโนโลยีสารสนเทศ"
	}
	if campus.DepartmentHead == "" {
		campus.DepartmentHead = "อาจารย์ฐาปนันท์ ปัญญามี"
	}
	if campus.DepartmentDeputy == "" {
		campus.DepartmentDeputy = "อาจารย์อนุชาติ รังสิยานนท์"
	}
	if campus.Email == "" {
		campus.Email = "itcmtc@cmtc.ac.th"
	}
	if campus.Phone == "" {
		campus.Phone = "053 217 708-9"
	}
	if campus.ClassHead == "" {
		campus.ClassHead = "นายพัฒนกุล เทปิน"
	}
	if campus.ClassDeputy == "" {
		campus.ClassDeputy = "นายนฤดล"
	}
	if campus.ScheduleRegular == "" {
		campus.ScheduleRegular = "จันทร์-พฤหัสบดี เวลา 18:00-21:00 (เรียนที่วิทยาลัย)"
	}
	if campus.ScheduleFriday == "" {
		campus.ScheduleFriday = "ศุกร์ เวลา 18:00-21:00 (เรียนออนไลน์)"
	}
	if campus.ScheduleSaturday == "" {
		campus.ScheduleSaturday = "เสาร์ เวลา 08:00-16:00 (เรียนที่วิทยาลัยเต็มวัน)"
	}
	if campus.ScheduleSunday == "" {
		campus.ScheduleSunday = "อาทิตย์ โฮมรูมออนไลน์"
	}
}

// Validate checks the configuration for correctness. A missing LLM key or
// spreadsheet id is a startup-abort condition; missing LINE credentials only
// disable the webhook.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.LLM.APIKey == "" {
		return fmt.Errorf("llm.api_key is required")
	}
	if c.Sheets.SpreadsheetID == "" {
		return fmt.Errorf("sheets.spreadsheet_id is required")
	}
	if (c.Line.ChannelSecret == "") != (c.Line.ChannelAccessToken == "") {
		return fmt.Errorf("line.channel_secret and line.channel_access_token must be set together")
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
