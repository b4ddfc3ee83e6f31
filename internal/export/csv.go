package export

import (
	"encoding/csv"
	"os"
	"strconv"
	"strings"
	"time"

	"go-linkedin-harvester/internal/scraper"
)

// byte order mark so spreadsheet apps detect UTF-8
const utf8BOM = "\ufeff"

var csvHeader = []string{
	"Title", "Company", "Location", "Link", "TechStack", "ListedAt",
	"ScrapedAt", "SeniorityHint", "IsEntryLevel", "IsLikelyStartup",
}

type CSVExporter struct {
	now func() time.Time
}

func NewCSVExporter() *CSVExporter {
	return &CSVExporter{now: time.Now}
}

func (e *CSVExporter) Export(jobs []scraper.Job, dir string) (string, error) {
	return writeFile(dir, FileName(e.now(), FormatCSV), func(f *os.File) error {
		if _, err := f.WriteString(utf8BOM); err != nil {
			return err
		}
		w := csv.NewWriter(f)
		if err := w.Write(csvHeader); err != nil {
			return err
		}
		for _, job := range jobs {
			if err := w.Write(csvRow(job)); err != nil {
				return err
			}
		}
		w.Flush()
		return w.Error()
	})
}

func csvRow(job scraper.Job) []string {
	listedAt := ""
	if job.ListedAt != nil {
		listedAt = isoTime(*job.ListedAt)
	}
	startup := "No"
	if job.IsLikelyStartup {
		startup = "Yes"
	}
	return []string{
		job.Title,
		job.Company,
		job.Location,
		job.Link,
		strings.Join(job.TechStack, ", "),
		listedAt,
		isoTime(job.ScrapedAt),
		string(job.Seniority),
		strconv.FormatBool(job.IsEntryLevel),
		startup,
	}
}
