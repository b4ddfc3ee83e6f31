package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go-linkedin-harvester/internal/scraper"
)

const (
	FormatCSV  = "csv"
	FormatJSON = "json"

	filePrefix = "linkedin-jobs-"
	isoMillis  = "2006-01-02T15:04:05.000Z07:00"
)

// Exporter writes one session's jobs into dir and returns the file path.
type Exporter interface {
	Export(jobs []scraper.Job, dir string) (string, error)
}

// New returns the exporter for format, CSV when unknown.
func New(format string) Exporter {
	if strings.EqualFold(format, FormatJSON) {
		return NewJSONExporter()
	}
	return NewCSVExporter()
}

// FileName is linkedin-jobs-<UTC ISO timestamp with ':' and '.' as '-'>.<ext>
func FileName(now time.Time, ext string) string {
	stamp := now.UTC().Format(isoMillis)
	stamp = strings.NewReplacer(":", "-", ".", "-").Replace(stamp)
	return filePrefix + stamp + "." + ext
}

func isoTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(isoMillis)
}

// writeFile creates dir, writes through fill and removes the file again if fill fails.
func writeFile(dir, name string, fill func(f *os.File) error) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}
	path, err := filepath.Abs(filepath.Join(dir, name))
	if err != nil {
		return "", fmt.Errorf("resolve output path: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", name, err)
	}
	err = fill(f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return "", errors.Join(fmt.Errorf("write %s: %w", name, err), os.Remove(path))
	}
	return path, nil
}
