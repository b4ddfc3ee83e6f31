// Load envs from .env
// Load YAML config over defaults
// Override secrets from env
// Validate

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const DefaultPath = "configs/config.yaml"

var ErrInvalidConfig = errors.New("invalid config")

const (
	ScheduleGap   = "gap"
	ScheduleDaily = "daily"

	TimePostedAny      = "any"
	TimePostedPast24h  = "past24h"
	TimePostedPastWeek = "pastWeek"
)

type Config struct {
	//Search criteria
	Keywords          string   `yaml:"keywords"`
	KeywordVariants   []string `yaml:"keyword_variants"`
	Location          string   `yaml:"location"`
	ResultsPerSession int      `yaml:"results_per_session"`
	TimePosted        string   `yaml:"time_posted"`
	IncludeKeywords   []string `yaml:"include_keywords"`
	ExcludeKeywords   []string `yaml:"exclude_keywords"`
	EnrichJobDetails  bool     `yaml:"enrich_job_details"`
	StartupOnly       bool     `yaml:"startup_only"`
	FilterExpr        string   `yaml:"filter_expr"`

	Browser    BrowserConfig    `yaml:"browser"`
	Pacing     PacingConfig     `yaml:"pacing"`
	Pagination PaginationConfig `yaml:"pagination"`
	Schedule   ScheduleConfig   `yaml:"schedule"`
	Output     OutputConfig     `yaml:"output"`
	Email      EmailConfig      `yaml:"email"`
	Telegram   TelegramConfig   `yaml:"telegram"`
	Server     ServerConfig     `yaml:"server"`
	Log        LogConfig        `yaml:"log"`

	//Paths
	StorePath   string `yaml:"store_path"`
	DatabaseURL string `yaml:"database_url"`
}

type BrowserConfig struct {
	Headless         bool   `yaml:"headless"`
	UsePublicSearch  bool   `yaml:"use_public_search"`
	LinkedInCookie   string `yaml:"linkedin_cookie"`
	CookiesPath      string `yaml:"cookies_path"`
	DebugScreenshots bool   `yaml:"debug_screenshots"`
	ScreenshotDir    string `yaml:"screenshot_dir"`
	NavTimeoutMs     int    `yaml:"nav_timeout_ms"`
	ListTimeoutMs    int    `yaml:"list_timeout_ms"`
}

// PacingConfig holds the randomized delay ranges (milliseconds) used between browser actions.
type PacingConfig struct {
	ScrollMinMs          int     `yaml:"scroll_min_ms"`
	ScrollMaxMs          int     `yaml:"scroll_max_ms"`
	PageSettleMinMs      int     `yaml:"page_settle_min_ms"`
	PageSettleMaxMs      int     `yaml:"page_settle_max_ms"`
	BetweenPagesMinMs    int     `yaml:"between_pages_min_ms"`
	BetweenPagesMaxMs    int     `yaml:"between_pages_max_ms"`
	DetailMinMs          int     `yaml:"detail_min_ms"`
	DetailMaxMs          int     `yaml:"detail_max_ms"`
	NavigationsPerMinute float64 `yaml:"navigations_per_minute"`
}

// PaginationConfig is the page budget policy. The per-query budget is
// ceil(limit/page_size) * page_budget_multiplier, capped by max_pages_per_query when > 0.
type PaginationConfig struct {
	PageSize             int `yaml:"page_size"`
	PageBudgetMultiplier int `yaml:"page_budget_multiplier"`
	MaxPagesPerQuery     int `yaml:"max_pages_per_query"`
	StallPages           int `yaml:"stall_pages"`
	MaxScrollRounds      int `yaml:"max_scroll_rounds"`
	StallRounds          int `yaml:"stall_rounds"`
}

type ScheduleConfig struct {
	Mode                 string  `yaml:"mode"`
	SessionsPerDay       int     `yaml:"sessions_per_day"`
	MinGapHours          float64 `yaml:"min_gap_hours"`
	MaxGapHours          float64 `yaml:"max_gap_hours"`
	DailyTime            string  `yaml:"daily_time"`
	UTCOffsetMinutes     int     `yaml:"utc_offset_minutes"`
	StartupJitterSeconds int     `yaml:"startup_jitter_seconds"`
}

type OutputConfig struct {
	Dir    string `yaml:"dir"`
	Format string `yaml:"format"`
}

type EmailConfig struct {
	SMTPHost       string `yaml:"smtp_host"`
	SMTPPort       int    `yaml:"smtp_port"`
	SMTPUser       string `yaml:"smtp_user"`
	SMTPPass       string `yaml:"-"`
	KeyringAccount string `yaml:"keyring_account"`
	To             string `yaml:"to"`
	From           string `yaml:"from"`
}

// Enabled reports whether enough is configured to attempt delivery.
func (e EmailConfig) Enabled() bool {
	return e.To != "" && e.From != "" && e.SMTPHost != ""
}

type TelegramConfig struct {
	Token   string `yaml:"-"`
	ChatID  int64  `yaml:"chat_id"`
	MaxJobs int    `yaml:"max_jobs"`
}

func (t TelegramConfig) Enabled() bool {
	return t.Token != "" && t.ChatID != 0
}

type ServerConfig struct {
	Port string `yaml:"port"`
}

type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

const defaultKeywords = "data engineer"

var defaultVariants = []string{
	"data engineer",
	"python data engineer",
	"ETL developer",
	"data pipeline engineer",
	"big data engineer",
	"cloud data engineer",
	"AWS data engineer",
	"Azure data engineer",
	"GCP data engineer",
	"Databricks engineer",
	"Spark engineer",
	"data platform engineer",
	"analytics engineer",
	"BI engineer",
	"data infrastructure engineer",
	"backend data engineer",
	"data integration engineer",
	"Snowflake engineer",
	"Airflow developer",
	"Kafka engineer",
	"streaming data engineer",
	"SQL developer",
	"database developer",
	"data warehouse engineer",
	"junior data engineer",
	"associate data engineer",
	"data engineering",
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Keywords:          defaultKeywords,
		KeywordVariants:   append([]string(nil), defaultVariants...),
		Location:          "India",
		ResultsPerSession: 40,
		TimePosted:        TimePostedPast24h,
		ExcludeKeywords:   []string{"senior", "sr", "lead", "manager", "staff", "principal", "director"},
		EnrichJobDetails:  true,
		Browser: BrowserConfig{
			Headless:        true,
			UsePublicSearch: true,
			CookiesPath:     "../.cookies",
			ScreenshotDir:   "logs/screenshots",
			NavTimeoutMs:    60000,
			ListTimeoutMs:   20000,
		},
		Pacing: PacingConfig{
			ScrollMinMs:          400,
			ScrollMaxMs:          800,
			PageSettleMinMs:      2000,
			PageSettleMaxMs:      3500,
			BetweenPagesMinMs:    2500,
			BetweenPagesMaxMs:    4500,
			DetailMinMs:          800,
			DetailMaxMs:          1500,
			NavigationsPerMinute: 12,
		},
		Pagination: PaginationConfig{
			PageSize:             25,
			PageBudgetMultiplier: 3,
			StallPages:           10,
			MaxScrollRounds:      80,
			StallRounds:          8,
		},
		Schedule: ScheduleConfig{
			Mode:                 ScheduleDaily,
			SessionsPerDay:       1,
			MinGapHours:          24,
			MaxGapHours:          24,
			DailyTime:            "10:00",
			UTCOffsetMinutes:     330,
			StartupJitterSeconds: 120,
		},
		Output: OutputConfig{
			Dir:    "out",
			Format: "csv",
		},
		Email: EmailConfig{
			SMTPPort: 587,
		},
		Telegram: TelegramConfig{
			MaxJobs: 10,
		},
		Server: ServerConfig{
			Port: "4001",
		},
		Log: LogConfig{
			Level: "info",
		},
		StorePath: "data/seen-jobs.json",
	}
}

// Load reads .env, then the YAML file at path over the defaults, then env overrides.
// A missing file is not an error: the defaults are used.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path == "" {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := parse(data, &cfg); err != nil {
			return nil, fmt.Errorf("error parsing %s: %w", path, err)
		}
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("could not read %s: %w", path, err)
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func parse(data []byte, cfg *Config) error {
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return err
	}

	// Changing the main keywords without listing variants must not keep
	// searching the default data-engineer variants.
	var probe struct {
		KeywordVariants *[]string `yaml:"keyword_variants"`
	}
	if err := yaml.Unmarshal(data, &probe); err != nil {
		return err
	}
	keywords := strings.ToLower(strings.TrimSpace(cfg.Keywords))
	if probe.KeywordVariants == nil && keywords != "" && keywords != defaultKeywords {
		cfg.KeywordVariants = nil
	}
	return nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("LINKEDIN_COOKIE"); v != "" {
		cfg.Browser.LinkedInCookie = v
	}
	if v := os.Getenv("SMTP_HOST"); v != "" {
		cfg.Email.SMTPHost = v
	}
	if v := os.Getenv("SMTP_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: SMTP_PORT: %v", ErrInvalidConfig, err)
		}
		cfg.Email.SMTPPort = port
	}
	if v := os.Getenv("SMTP_USER"); v != "" {
		cfg.Email.SMTPUser = v
	}
	if v := os.Getenv("SMTP_PASS"); v != "" {
		cfg.Email.SMTPPass = v
	}
	if v := os.Getenv("MAIL_TO"); v != "" {
		cfg.Email.To = v
	}
	if v := os.Getenv("MAIL_FROM"); v != "" {
		cfg.Email.From = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.Token = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: TELEGRAM_CHAT_ID: %v", ErrInvalidConfig, err)
		}
		cfg.Telegram.ChatID = id
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Port = v
	}
	return nil
}

// Queries returns the ordered keyword variants, falling back to the main keywords.
func (c *Config) Queries() []string {
	var out []string
	for _, v := range c.KeywordVariants {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		if k := strings.TrimSpace(c.Keywords); k != "" {
			out = append(out, k)
		}
	}
	return out
}

func Validate(cfg Config) error {
	var errs []string

	if strings.TrimSpace(cfg.Keywords) == "" && len(cfg.KeywordVariants) == 0 {
		errs = append(errs, "keywords or keyword_variants is required")
	}
	if cfg.ResultsPerSession <= 0 {
		errs = append(errs, "results_per_session must be > 0")
	}
	switch cfg.TimePosted {
	case TimePostedAny, TimePostedPast24h, TimePostedPastWeek:
	default:
		errs = append(errs, fmt.Sprintf("time_posted must be one of any, past24h, pastWeek (got %q)", cfg.TimePosted))
	}

	p := cfg.Pagination
	if p.PageSize <= 0 {
		errs = append(errs, "pagination.page_size must be > 0")
	}
	if p.PageBudgetMultiplier <= 0 {
		errs = append(errs, "pagination.page_budget_multiplier must be > 0")
	}
	if p.MaxPagesPerQuery < 0 {
		errs = append(errs, "pagination.max_pages_per_query must be >= 0")
	}
	if p.StallPages <= 0 || p.StallRounds <= 0 || p.MaxScrollRounds <= 0 {
		errs = append(errs, "pagination stall_pages, stall_rounds and max_scroll_rounds must be > 0")
	}

	checkRange := func(name string, lo, hi int) {
		if lo < 0 || hi < lo {
			errs = append(errs, fmt.Sprintf("pacing.%s range is invalid (%d..%d)", name, lo, hi))
		}
	}
	checkRange("scroll", cfg.Pacing.ScrollMinMs, cfg.Pacing.ScrollMaxMs)
	checkRange("page_settle", cfg.Pacing.PageSettleMinMs, cfg.Pacing.PageSettleMaxMs)
	checkRange("between_pages", cfg.Pacing.BetweenPagesMinMs, cfg.Pacing.BetweenPagesMaxMs)
	checkRange("detail", cfg.Pacing.DetailMinMs, cfg.Pacing.DetailMaxMs)

	s := cfg.Schedule
	switch s.Mode {
	case ScheduleGap:
		if s.SessionsPerDay <= 0 {
			errs = append(errs, "schedule.sessions_per_day must be > 0")
		}
		if s.MinGapHours <= 0 || s.MaxGapHours <= 0 {
			errs = append(errs, "schedule.min_gap_hours and max_gap_hours must be > 0")
		}
	case ScheduleDaily:
		if s.UTCOffsetMinutes < -12*60 || s.UTCOffsetMinutes > 14*60 {
			errs = append(errs, "schedule.utc_offset_minutes must be within -720..840")
		}
		if _, err := time.Parse("15:04", s.DailyTime); err != nil {
			errs = append(errs, fmt.Sprintf("schedule.daily_time must be HH:MM (got %q)", s.DailyTime))
		}
		if s.StartupJitterSeconds < 0 {
			errs = append(errs, "schedule.startup_jitter_seconds must be >= 0")
		}
	default:
		errs = append(errs, fmt.Sprintf("schedule.mode must be gap or daily (got %q)", s.Mode))
	}

	switch cfg.Output.Format {
	case "csv", "json":
	default:
		errs = append(errs, fmt.Sprintf("output.format must be csv or json (got %q)", cfg.Output.Format))
	}
	if cfg.StorePath == "" {
		errs = append(errs, "store_path is required")
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w:\n- %s", ErrInvalidConfig, strings.Join(errs, "\n- "))
	}
	return nil
}
