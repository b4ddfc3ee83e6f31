package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"go-linkedin-harvester/internal/classify"
	"go-linkedin-harvester/internal/config"
	"go-linkedin-harvester/internal/dedup"
	"go-linkedin-harvester/internal/export"
	"go-linkedin-harvester/internal/filter"
	"go-linkedin-harvester/internal/models"
	"go-linkedin-harvester/internal/reporter"
	"go-linkedin-harvester/internal/scraper"
)

var (
	// ErrExport means the session found jobs but could not write them; nothing was marked seen.
	ErrExport = errors.New("export failed")
	// ErrBusy is returned when a session is already running.
	ErrBusy = errors.New("a session is already running")
)

const (
	TriggerManual   = "manual"
	TriggerSchedule = "schedule"
	TriggerCLI      = "cli"
)

// Override replaces parts of the configured search for one run.
// Keywords, when set, replace the whole variant list.
type Override struct {
	Keywords string `json:"keywords"`
	Location string `json:"location"`
	Limit    int    `json:"resultsPerSession"`
	Trigger  string `json:"-"`
}

type Result struct {
	SessionID  string        `json:"sessionId"`
	Path       string        `json:"path"`
	Jobs       []scraper.Job `json:"-"`
	Count      int           `json:"count"`
	StartedAt  time.Time     `json:"startedAt"`
	FinishedAt time.Time     `json:"finishedAt"`
}

// Archive stores finished sessions and their jobs. Failures never fail a session.
type Archive interface {
	Archive(ctx context.Context, sessionID string, jobs []scraper.Job) error
	SaveSession(ctx context.Context, s *models.Session) error
}

// Session runs one scrape from store load to notification.
type Session struct {
	cfg        *config.Config
	store      *dedup.FileStore
	scraper    scraper.Scraper
	exporter   export.Exporter
	postFilter *filter.PostFilter
	notifier   reporter.Notifier
	archive    Archive
	log        *zap.Logger
	now        func() time.Time
	newID      func() string
}

// NewSession wires a session. notifier and archive may be nil.
func NewSession(cfg *config.Config, store *dedup.FileStore, s scraper.Scraper, exporter export.Exporter,
	notifier reporter.Notifier, archive Archive, log *zap.Logger) (*Session, error) {
	if log == nil {
		log = zap.NewNop()
	}
	post, err := filter.CompilePostFilter(cfg.FilterExpr)
	if err != nil {
		return nil, err
	}
	return &Session{
		cfg:        cfg,
		store:      store,
		scraper:    s,
		exporter:   exporter,
		postFilter: post,
		notifier:   notifier,
		archive:    archive,
		log:        log.With(zap.String("component", "pipeline")),
		now:        time.Now,
		newID:      func() string { return uuid.NewString() },
	}, nil
}

func (s *Session) request(o Override) scraper.Request {
	req := scraper.Request{
		Query: scraper.Query{
			Keywords:   s.cfg.Keywords,
			Location:   s.cfg.Location,
			TimePosted: s.cfg.TimePosted,
			Include:    s.cfg.IncludeKeywords,
			Exclude:    s.cfg.ExcludeKeywords,
			Limit:      s.cfg.ResultsPerSession,
		},
		Variants: s.cfg.Queries(),
		Enrich:   s.cfg.EnrichJobDetails,
	}
	if k := strings.TrimSpace(o.Keywords); k != "" {
		req.Keywords = k
		req.Variants = []string{k}
	}
	if l := strings.TrimSpace(o.Location); l != "" {
		req.Location = l
	}
	if o.Limit > 0 {
		req.Limit = o.Limit
	}
	return req
}

// Run scrapes, drops anything already seen, exports the rest and only then
// marks it seen. A session with no new jobs succeeds with an empty Result.
func (s *Session) Run(ctx context.Context, o Override) (Result, error) {
	res := Result{SessionID: s.newID(), StartedAt: s.now()}
	req := s.request(o)
	log := s.log.With(zap.String("session", res.SessionID))
	log.Info("🚀 Session started",
		zap.String("keywords", req.Keywords),
		zap.Int("variants", len(req.Variants)),
		zap.String("location", req.Location),
		zap.Int("limit", req.Limit))

	jobs, err := s.collect(ctx, req, log)
	if err != nil {
		return s.finish(ctx, res, o, req, err)
	}
	if len(jobs) == 0 {
		log.Info("📭 No new unique jobs found this session")
		return s.finish(ctx, res, o, req, nil)
	}

	path, err := s.exporter.Export(jobs, s.cfg.Output.Dir)
	if err != nil {
		return s.finish(ctx, res, o, req, fmt.Errorf("%w: %v", ErrExport, err))
	}
	res.Path = path
	res.Jobs = jobs
	res.Count = len(jobs)
	log.Info("💾 Exported jobs", zap.String("path", path), zap.Int("jobs", len(jobs)))

	if err := s.store.MarkSeen(s.storeAfterExport(), dedup.Keys(jobs)); err != nil {
		return s.finish(ctx, res, o, req, fmt.Errorf("failed to mark jobs as seen: %w", err))
	}

	s.notify(ctx, log, res, req)
	if s.archive != nil {
		if err := s.archive.Archive(ctx, res.SessionID, jobs); err != nil {
			log.Warn("⚠️ Failed to archive jobs", zap.Error(err))
		}
	}
	return s.finish(ctx, res, o, req, nil)
}

// collect runs the scraper against the store and applies the post-scrape filters.
func (s *Session) collect(ctx context.Context, req scraper.Request, log *zap.Logger) ([]scraper.Job, error) {
	store := s.store.Load()
	scraped, err := s.scraper.Scrape(ctx, req, store)
	if err != nil {
		return nil, fmt.Errorf("%s scrape failed: %w", s.scraper.Name(), err)
	}

	jobs := dedup.FilterNew(scraped, store)
	if dropped := len(scraped) - len(jobs); dropped > 0 {
		log.Warn("⚠️ Dropped jobs the scraper should have skipped", zap.Int("dropped", dropped))
	}

	if s.postFilter != nil {
		before := len(jobs)
		if jobs, err = s.postFilter.Apply(jobs); err != nil {
			return nil, err
		}
		log.Info("🔍 Post filter applied", zap.String("expr", s.postFilter.String()),
			zap.Int("kept", len(jobs)), zap.Int("of", before))
	}

	if s.cfg.StartupOnly {
		before := len(jobs)
		jobs = classify.FilterStartups(jobs)
		log.Info("🌱 Startup filter applied", zap.Int("kept", len(jobs)), zap.Int("of", before))
	}
	for i := range jobs {
		jobs[i].IsLikelyStartup = s.cfg.StartupOnly
	}
	return jobs, nil
}

// storeAfterExport reloads the store so entries written by anyone else since
// the session started are kept.
func (s *Session) storeAfterExport() *dedup.SeenStore {
	return s.store.Load()
}

func (s *Session) notify(ctx context.Context, log *zap.Logger, res Result, req scraper.Request) {
	if s.notifier == nil {
		return
	}
	report := reporter.Report{
		SessionID: res.SessionID,
		Path:      res.Path,
		Keywords:  req.Keywords,
		Location:  req.Location,
		Count:     res.Count,
		Jobs:      res.Jobs,
	}
	if err := s.notifier.Notify(ctx, report); err != nil {
		log.Warn("⚠️ Failed to deliver report", zap.Error(err))
	}
}

// notifyFailure reports a failed session to the notifiers that support it.
// Interrupted runs are not reported.
func (s *Session) notifyFailure(ctx context.Context, log *zap.Logger, sessionID string, runErr error) {
	f, ok := s.notifier.(reporter.FailureNotifier)
	if !ok || errors.Is(runErr, context.Canceled) {
		return
	}
	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := f.NotifyFailure(sendCtx, sessionID, runErr); err != nil {
		log.Warn("⚠️ Failed to report session failure", zap.Error(err))
	}
}

func (s *Session) finish(ctx context.Context, res Result, o Override, req scraper.Request, runErr error) (Result, error) {
	res.FinishedAt = s.now()
	log := s.log.With(zap.String("session", res.SessionID))
	if runErr != nil {
		log.Error("❌ Session failed", zap.Error(runErr))
		s.notifyFailure(ctx, log, res.SessionID, runErr)
	} else {
		log.Info("✅ Session finished", zap.Int("jobs", res.Count),
			zap.Duration("took", res.FinishedAt.Sub(res.StartedAt)))
	}

	if s.archive != nil {
		rec := &models.Session{
			ID:         res.SessionID,
			Trigger:    o.Trigger,
			Keywords:   req.Keywords,
			Location:   req.Location,
			Status:     models.SessionCompleted,
			JobCount:   res.Count,
			FilePath:   res.Path,
			StartedAt:  res.StartedAt,
			FinishedAt: res.FinishedAt,
		}
		switch {
		case runErr != nil:
			msg := runErr.Error()
			rec.Status, rec.Error = models.SessionFailed, &msg
		case res.Count == 0:
			rec.Status = models.SessionEmpty
		}
		// the run context may already be cancelled
		saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()
		if err := s.archive.SaveSession(saveCtx, rec); err != nil {
			log.Warn("⚠️ Failed to record session", zap.Error(err))
		}
	}
	return res, runErr
}
