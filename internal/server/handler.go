package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"go-linkedin-harvester/internal/config"
	"go-linkedin-harvester/internal/dedup"
	"go-linkedin-harvester/internal/pipeline"
)

const maxListedFiles = 20

// Runner is the single-flight session runner behind the dashboard.
type Runner interface {
	TryRun(ctx context.Context, o pipeline.Override) (pipeline.Result, error)
	Status() pipeline.Status
}

type Handler struct {
	runner Runner
	cfg    *config.Config
	store  *dedup.FileStore
	log    *zap.Logger
}

func NewHandler(runner Runner, cfg *config.Config, store *dedup.FileStore, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{runner: runner, cfg: cfg, store: store, log: log.With(zap.String("component", "api"))}
}

// Register mounts the API and the export downloads on r.
func (h *Handler) Register(r *gin.Engine) {
	r.GET("/health", h.Health)
	r.Static("/files", h.cfg.Output.Dir)

	api := r.Group("/api")
	api.GET("/status", h.Status)
	api.GET("/files", h.Files)
	api.POST("/run", h.Run)
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

func (h *Handler) Status(c *gin.Context) {
	st := h.runner.Status()
	stats := h.store.Stats()
	s := h.cfg.Schedule

	c.JSON(http.StatusOK, gin.H{
		"running":       st.Running,
		"lastRun":       st.LastRun,
		"lastError":     st.LastError,
		"sessionsToday": st.SessionsToday,
		"jobsToday":     st.JobsToday,
		"schedule": gin.H{
			"mode":             s.Mode,
			"sessionsPerDay":   s.SessionsPerDay,
			"minGapHours":      s.MinGapHours,
			"maxGapHours":      s.MaxGapHours,
			"dailyTime":        s.DailyTime,
			"utcOffsetMinutes": s.UTCOffsetMinutes,
		},
		"scraping": gin.H{
			"keywords":          h.cfg.Keywords,
			"keywordVariants":   h.cfg.Queries(),
			"location":          h.cfg.Location,
			"resultsPerSession": h.cfg.ResultsPerSession,
			"timePosted":        h.cfg.TimePosted,
			"enrichJobDetails":  h.cfg.EnrichJobDetails,
			"startupOnly":       h.cfg.StartupOnly,
		},
		"deduplication": gin.H{
			"totalJobsSeen": stats.JobIDs + stats.Links,
			"message": fmt.Sprintf("%d jobIds + %d links tracked globally - no duplicates across sessions",
				stats.JobIDs, stats.Links),
		},
	})
}

type fileInfo struct {
	Name     string    `json:"name"`
	URL      string    `json:"url"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`
}

// Files lists the newest exports.
func (h *Handler) Files(c *gin.Context) {
	entries, err := os.ReadDir(h.cfg.Output.Dir)
	if err != nil && !os.IsNotExist(err) {
		h.log.Error("❌ Failed to list exports", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "could not list files"})
		return
	}

	files := []fileInfo{}
	for _, e := range entries {
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if e.IsDir() || (ext != ".csv" && ext != ".json") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, fileInfo{
			Name:     e.Name(),
			URL:      "/files/" + e.Name(),
			Size:     info.Size(),
			Modified: info.ModTime().UTC(),
		})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Modified.After(files[j].Modified) })
	if len(files) > maxListedFiles {
		files = files[:maxListedFiles]
	}
	c.JSON(http.StatusOK, gin.H{"files": files})
}

// Run starts a session and waits for it. The session outlives a dropped request.
func (h *Handler) Run(c *gin.Context) {
	var o pipeline.Override
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&o); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
			return
		}
	}
	o.Trigger = pipeline.TriggerManual

	res, err := h.runner.TryRun(context.WithoutCancel(c.Request.Context()), o)
	switch {
	case errors.Is(err, pipeline.ErrBusy):
		c.JSON(http.StatusConflict, gin.H{"status": "busy"})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": err.Error()})
	default:
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"sessionId": res.SessionID,
			"at":        res.FinishedAt,
			"count":     res.Count,
			"path":      res.Path,
		})
	}
}
