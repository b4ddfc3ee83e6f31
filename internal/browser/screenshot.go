package browser

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

// ScreenshotDebugger saves full-page screenshots of pages that misbehaved.
type ScreenshotDebugger struct {
	outputDir string
	log       *zap.Logger
	now       func() time.Time
}

func NewScreenshotDebugger(dir string, log *zap.Logger) *ScreenshotDebugger {
	if dir == "" {
		dir = filepath.Join(".", "logs", "screenshots")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &ScreenshotDebugger{outputDir: dir, log: log, now: time.Now}
}

// Capture writes <name>_<timestamp>.png and returns its path.
func (s *ScreenshotDebugger) Capture(page Page, name, message string) (string, error) {
	if err := os.MkdirAll(s.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("create screenshot directory: %w", err)
	}
	timestamp := s.now().Format("2006-01-02_15-04-05")
	path := filepath.Join(s.outputDir, fmt.Sprintf("%s_%s.png", name, timestamp))
	s.log.Info("📸 "+message, zap.String("path", path))

	if err := page.Screenshot(path); err != nil {
		s.log.Warn("⚠️ failed to capture screenshot", zap.Error(err))
		return "", err
	}
	return path, nil
}
