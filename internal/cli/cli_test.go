package cli

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"go-linkedin-harvester/internal/models"
)

func TestMask(t *testing.T) {
	assert.Equal(t, "", mask(""))
	assert.Equal(t, "****", mask("short"))
	assert.Equal(t, "post****", mask("postgres://user:pw@host/db"))
}

func TestCommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"run", "stats", "reset", "next", "serve", "check"} {
		assert.True(t, names[want], want)
	}

	flag := rootCmd.PersistentFlags().Lookup("config")
	if assert.NotNil(t, flag) {
		assert.Equal(t, "configs/config.yaml", flag.DefValue)
	}
}

func TestCheckDBJobFlag(t *testing.T) {
	flag := checkDBCmd.Flags().Lookup("job")
	if assert.NotNil(t, flag) {
		assert.Equal(t, "", flag.DefValue)
	}
}

func TestPrintArchivedJob(t *testing.T) {
	var buf bytes.Buffer
	printArchivedJob(&buf, &models.Job{
		SessionID: "s1",
		Title:     "Data Engineer",
		Company:   "Nimbus Labs",
		Location:  "Pune, India",
		URL:       "https://www.linkedin.com/jobs/view/41/",
		TechStack: []string{"python", "spark"},
		Seniority: "entry",
		ScrapedAt: time.Date(2026, 10, 18, 10, 0, 0, 0, time.UTC),
	})

	out := buf.String()
	assert.Contains(t, out, "Data Engineer | Nimbus Labs | Pune, India")
	assert.Contains(t, out, "https://www.linkedin.com/jobs/view/41/")
	assert.Contains(t, out, "session s1")
	assert.Contains(t, out, "stack: python, spark")
}
