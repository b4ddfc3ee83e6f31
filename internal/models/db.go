package models

import (
	"strings"
	"time"

	"go-linkedin-harvester/internal/scraper"
)

const SourceLinkedIn = "linkedin"

// Job is one archived posting, unique on (source, external_id).
type Job struct {
	ID              string     `json:"id"`
	Source          string     `json:"source"`
	ExternalID      string     `json:"external_id"`
	SessionID       string     `json:"session_id"`
	Title           string     `json:"title"`
	Company         string     `json:"company"`
	Location        string     `json:"location"`
	URL             string     `json:"url"`
	TechStack       []string   `json:"tech_stack"`
	Seniority       string     `json:"seniority"`
	IsEntryLevel    bool       `json:"is_entry_level"`
	IsLikelyStartup bool       `json:"is_likely_startup"`
	DescriptionRaw  string     `json:"description_raw"`
	ListedAt        *time.Time `json:"listed_at,omitempty"`
	ScrapedAt       time.Time  `json:"scraped_at"`
	CreatedAt       time.Time  `json:"created_at"`
}

type SessionStatus string

const (
	SessionCompleted SessionStatus = "COMPLETED"
	SessionEmpty     SessionStatus = "EMPTY"
	SessionFailed    SessionStatus = "FAILED"
)

// Session is one pipeline run.
type Session struct {
	ID         string        `json:"id"`
	Trigger    string        `json:"trigger"`
	Keywords   string        `json:"keywords"`
	Location   string        `json:"location"`
	Status     SessionStatus `json:"status"`
	JobCount   int           `json:"job_count"`
	FilePath   string        `json:"file_path"`
	Error      *string       `json:"error,omitempty"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
}

// JobFromScraper maps a scraped record to its archive row. The external id
// is the LinkedIn job id, or the canonical link when there is none.
func JobFromScraper(sessionID string, j scraper.Job) Job {
	externalID := strings.TrimSpace(j.JobID)
	if externalID == "" {
		externalID = j.Link
	}
	techStack := j.TechStack
	if techStack == nil {
		techStack = []string{}
	}
	return Job{
		Source:          SourceLinkedIn,
		ExternalID:      externalID,
		SessionID:       sessionID,
		Title:           j.Title,
		Company:         j.Company,
		Location:        j.Location,
		URL:             j.Link,
		TechStack:       techStack,
		Seniority:       string(j.Seniority),
		IsEntryLevel:    j.IsEntryLevel,
		IsLikelyStartup: j.IsLikelyStartup,
		DescriptionRaw:  j.Description,
		ListedAt:        j.ListedAt,
		ScrapedAt:       j.ScrapedAt,
	}
}
