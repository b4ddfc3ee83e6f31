package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "data engineer", cfg.Keywords)
	assert.Equal(t, 40, cfg.ResultsPerSession)
	assert.Equal(t, ScheduleDaily, cfg.Schedule.Mode)
	assert.Equal(t, 330, cfg.Schedule.UTCOffsetMinutes)
	assert.True(t, cfg.Browser.Headless)
	assert.NotEmpty(t, cfg.KeywordVariants)
}

func TestLoad_OverridesKeepUnsetDefaults(t *testing.T) {
	path := writeConfig(t, `
location: Berlin
results_per_session: 15
browser:
  headless: false
schedule:
  mode: gap
  sessions_per_day: 2
  min_gap_hours: 3
  max_gap_hours: 5
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "Berlin", cfg.Location)
	assert.Equal(t, 15, cfg.ResultsPerSession)
	assert.False(t, cfg.Browser.Headless)
	assert.True(t, cfg.Browser.UsePublicSearch)
	assert.Equal(t, 60000, cfg.Browser.NavTimeoutMs)
	assert.Equal(t, ScheduleGap, cfg.Schedule.Mode)
	assert.Equal(t, 2, cfg.Schedule.SessionsPerDay)
}

func TestLoad_CustomKeywordsDropDefaultVariants(t *testing.T) {
	path := writeConfig(t, "keywords: frontend developer\n")
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Empty(t, cfg.KeywordVariants)
	assert.Equal(t, []string{"frontend developer"}, cfg.Queries())
}

func TestLoad_ExplicitVariantsAreKept(t *testing.T) {
	path := writeConfig(t, `
keywords: frontend developer
keyword_variants: ["react developer", " ", "vue developer"]
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"react developer", "vue developer"}, cfg.Queries())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "token")
	t.Setenv("TELEGRAM_CHAT_ID", "42")
	t.Setenv("SMTP_PORT", "465")
	t.Setenv("LINKEDIN_COOKIE", "li_at=abc")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.True(t, cfg.Telegram.Enabled())
	assert.Equal(t, int64(42), cfg.Telegram.ChatID)
	assert.Equal(t, 465, cfg.Email.SMTPPort)
	assert.Equal(t, "li_at=abc", cfg.Browser.LinkedInCookie)
}

func TestLoad_InvalidChatID(t *testing.T) {
	t.Setenv("TELEGRAM_CHAT_ID", "not-a-number")
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.True(t, errors.Is(err, ErrInvalidConfig))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero results", func(c *Config) { c.ResultsPerSession = 0 }},
		{"bad time filter", func(c *Config) { c.TimePosted = "yesterday" }},
		{"bad mode", func(c *Config) { c.Schedule.Mode = "hourly" }},
		{"bad daily time", func(c *Config) { c.Schedule.DailyTime = "25:99" }},
		{"inverted pacing", func(c *Config) { c.Pacing.ScrollMinMs, c.Pacing.ScrollMaxMs = 900, 100 }},
		{"gap without sessions", func(c *Config) {
			c.Schedule.Mode = ScheduleGap
			c.Schedule.SessionsPerDay = 0
		}},
		{"bad format", func(c *Config) { c.Output.Format = "xlsx" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := Validate(cfg)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}

	assert.NoError(t, Validate(Default()))
}

func TestEmailEnabled(t *testing.T) {
	e := EmailConfig{SMTPHost: "smtp.example.com", From: "a@example.com"}
	assert.False(t, e.Enabled())
	e.To = "b@example.com"
	assert.True(t, e.Enabled())
}

func TestLoad_SampleConfigMatchesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "configs", "config.yaml"))
	require.NoError(t, err)

	def := Default()
	assert.Equal(t, def.Keywords, cfg.Keywords)
	assert.Equal(t, def.KeywordVariants, cfg.KeywordVariants)
	assert.Equal(t, def.ExcludeKeywords, cfg.ExcludeKeywords)
	assert.Equal(t, def.Pacing, cfg.Pacing)
	assert.Equal(t, def.Pagination, cfg.Pagination)
	assert.Equal(t, def.Schedule, cfg.Schedule)
	assert.Equal(t, def.Output, cfg.Output)
}
