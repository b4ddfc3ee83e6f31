package export

import (
	"encoding/json"
	"os"
	"time"

	"go-linkedin-harvester/internal/scraper"
)

type jsonRecord struct {
	Title           string     `json:"title"`
	Company         string     `json:"company"`
	Location        string     `json:"location"`
	Link            string     `json:"link"`
	JobID           string     `json:"jobId,omitempty"`
	ListedAt        *time.Time `json:"listedAt"`
	ScrapedAt       time.Time  `json:"scrapedAt"`
	TechStack       []string   `json:"techStack"`
	Seniority       string     `json:"seniority"`
	IsEntryLevel    bool       `json:"isEntryLevel"`
	IsLikelyStartup bool       `json:"isLikelyStartup"`
	Query           string     `json:"query,omitempty"`
}

type JSONExporter struct {
	now func() time.Time
}

func NewJSONExporter() *JSONExporter {
	return &JSONExporter{now: time.Now}
}

func (e *JSONExporter) Export(jobs []scraper.Job, dir string) (string, error) {
	records := make([]jsonRecord, len(jobs))
	for i, job := range jobs {
		techStack := job.TechStack
		if techStack == nil {
			techStack = []string{}
		}
		records[i] = jsonRecord{
			Title:           job.Title,
			Company:         job.Company,
			Location:        job.Location,
			Link:            job.Link,
			JobID:           job.JobID,
			ListedAt:        job.ListedAt,
			ScrapedAt:       job.ScrapedAt,
			TechStack:       techStack,
			Seniority:       string(job.Seniority),
			IsEntryLevel:    job.IsEntryLevel,
			IsLikelyStartup: job.IsLikelyStartup,
			Query:           job.Query,
		}
	}

	return writeFile(dir, FileName(e.now(), FormatJSON), func(f *os.File) error {
		enc := json.NewEncoder(f)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	})
}
