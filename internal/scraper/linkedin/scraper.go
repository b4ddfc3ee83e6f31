package linkedin

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"go-linkedin-harvester/internal/browser"
	"go-linkedin-harvester/internal/classify"
	"go-linkedin-harvester/internal/config"
	"go-linkedin-harvester/internal/dedup"
	"go-linkedin-harvester/internal/filter"
	"go-linkedin-harvester/internal/scraper"
)

const (
	scrollStep = 600
	// cards worth scrolling for on one results page
	cardsPerPageTarget = 100
	// every Nth scroll round also jumps to the bottom and presses "show more"
	showMoreEvery = 4

	cookieFileName = "cookies-linkedin.json"
)

// Pacing is the set of randomized pauses between browser actions.
type Pacing struct {
	Scroll       browser.Range
	PageSettle   browser.Range
	BetweenPages browser.Range
	Detail       browser.Range
}

type Options struct {
	Headless         bool
	UsePublicSearch  bool
	CookieHeader     string
	CookiesFile      string
	DebugScreenshots bool
	ScreenshotDir    string
	NavTimeout       time.Duration
	ListTimeout      time.Duration

	PageSize             int
	PageBudgetMultiplier int
	MaxPagesPerQuery     int
	StallPages           int
	MaxScrollRounds      int
	StallRounds          int

	Pacing Pacing
}

// OptionsFromConfig maps the browser, pacing and pagination sections.
func OptionsFromConfig(cfg *config.Config) Options {
	b, p, pg := cfg.Browser, cfg.Pacing, cfg.Pagination
	return Options{
		Headless:             b.Headless,
		UsePublicSearch:      b.UsePublicSearch,
		CookieHeader:         b.LinkedInCookie,
		CookiesFile:          cookiesFile(b.CookiesPath),
		DebugScreenshots:     b.DebugScreenshots,
		ScreenshotDir:        b.ScreenshotDir,
		NavTimeout:           time.Duration(b.NavTimeoutMs) * time.Millisecond,
		ListTimeout:          time.Duration(b.ListTimeoutMs) * time.Millisecond,
		PageSize:             pg.PageSize,
		PageBudgetMultiplier: pg.PageBudgetMultiplier,
		MaxPagesPerQuery:     pg.MaxPagesPerQuery,
		StallPages:           pg.StallPages,
		MaxScrollRounds:      pg.MaxScrollRounds,
		StallRounds:          pg.StallRounds,
		Pacing: Pacing{
			Scroll:       browser.MillisRange(p.ScrollMinMs, p.ScrollMaxMs),
			PageSettle:   browser.MillisRange(p.PageSettleMinMs, p.PageSettleMaxMs),
			BetweenPages: browser.MillisRange(p.BetweenPagesMinMs, p.BetweenPagesMaxMs),
			Detail:       browser.MillisRange(p.DetailMinMs, p.DetailMaxMs),
		},
	}
}

func cookiesFile(dir string) string {
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, cookieFileName)
}

// LinkedInScraper collects job cards from the LinkedIn job search.
type LinkedInScraper struct {
	launcher  browser.Launcher
	pacer     *browser.Pacer
	extractor RecordExtractor
	shots     *browser.ScreenshotDebugger
	opts      Options
	log       *zap.Logger
	now       func() time.Time
}

func NewLinkedInScraper(opts Options, launcher browser.Launcher, pacer *browser.Pacer, log *zap.Logger) *LinkedInScraper {
	if log == nil {
		log = zap.NewNop()
	}
	if pacer == nil {
		pacer = browser.NewPacer(0)
	}
	log = log.With(zap.String("component", "linkedin"))
	return &LinkedInScraper{
		launcher:  launcher,
		pacer:     pacer,
		extractor: NewStrategyExtractor(),
		shots:     browser.NewScreenshotDebugger(opts.ScreenshotDir, log),
		opts:      opts,
		log:       log,
		now:       time.Now,
	}
}

func (s *LinkedInScraper) Name() string {
	return "LinkedIn"
}

// WithExtractor swaps the card extractor, e.g. for a changed page layout.
func (s *LinkedInScraper) WithExtractor(e RecordExtractor) *LinkedInScraper {
	s.extractor = e
	return s
}

// PageBudget is the number of result pages a single variant may visit.
func (o Options) PageBudget(limit int) int {
	size := o.PageSize
	if size <= 0 {
		size = 25
	}
	mult := o.PageBudgetMultiplier
	if mult <= 0 {
		mult = 1
	}
	pages := (limit + size - 1) / size * mult
	if o.MaxPagesPerQuery > 0 && pages > o.MaxPagesPerQuery {
		pages = o.MaxPagesPerQuery
	}
	return pages
}

// run is the state of one Scrape call.
type run struct {
	page     browser.Page
	store    *dedup.SeenStore
	seen     *dedup.SessionSeen
	keywords filter.KeywordFilter
	location filter.LocationFilter
	limit    int
	jobs     []scraper.Job
}

func (r *run) full() bool {
	return len(r.jobs) >= r.limit
}

// Scrape runs the variants of req in order and returns at most req.Limit new
// jobs in discovery order. Jobs already in store, or already accepted in this
// call, are dropped silently.
func (s *LinkedInScraper) Scrape(ctx context.Context, req scraper.Request, store *dedup.SeenStore) ([]scraper.Job, error) {
	if req.Limit <= 0 {
		return nil, nil
	}
	if store == nil {
		store = dedup.NewSeenStore()
	}

	session, err := s.launcher.Launch(ctx, browser.LaunchOptions{Headless: s.opts.Headless})
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}
	defer func() {
		if err := session.Close(); err != nil {
			s.log.Warn("⚠️ failed to close browser", zap.Error(err))
		}
	}()

	if !s.opts.UsePublicSearch {
		s.authenticate(session)
	}

	page, err := session.NewPage()
	if err != nil {
		return nil, fmt.Errorf("failed to create new page: %w", err)
	}
	defer page.Close()

	r := &run{
		page:     page,
		store:    store,
		seen:     dedup.NewSessionSeen(),
		keywords: filter.NewKeywordFilter(req.Include, req.Exclude),
		location: filter.NewLocationFilter(req.Location),
		limit:    req.Limit,
	}

	for _, q := range req.Queries() {
		if strings.TrimSpace(q.Keywords) == "" {
			continue
		}
		if r.full() {
			break
		}
		if err := s.scrapeQuery(ctx, r, q); err != nil {
			return r.jobs, err
		}
	}
	s.log.Info("📦 collected unique jobs", zap.Int("jobs", len(r.jobs)), zap.Int("requested", req.Limit))

	if req.Enrich && len(r.jobs) > 0 {
		if err := s.enrich(ctx, page, r.jobs); err != nil {
			return r.jobs, err
		}
	}

	scrapedAt := s.now().UTC()
	for i := range r.jobs {
		r.jobs[i].ScrapedAt = scrapedAt
		r.jobs[i].Seniority, r.jobs[i].IsEntryLevel = classify.SeniorityOf(r.jobs[i].Title)
	}
	return r.jobs, nil
}

func (s *LinkedInScraper) authenticate(session browser.Session) {
	cookies := browser.ParseCookieHeader(s.opts.CookieHeader)
	if len(cookies) == 0 && s.opts.CookiesFile != "" {
		loaded, err := browser.LoadCookies(s.opts.CookiesFile)
		if err != nil {
			s.log.Warn("⚠️ could not load cookies, continuing as guest", zap.String("path", s.opts.CookiesFile), zap.Error(err))
			return
		}
		cookies = loaded
	}
	if len(cookies) == 0 {
		s.log.Warn("⚠️ authenticated search requested but no cookies configured")
		return
	}
	if err := session.AddCookies(cookies); err != nil {
		s.log.Warn("⚠️ failed to inject cookies", zap.Error(err))
		return
	}
	s.log.Info("🍪 injected LinkedIn cookies", zap.Int("count", len(cookies)))
}

func (s *LinkedInScraper) scrapeQuery(ctx context.Context, r *run, q scraper.Query) error {
	maxPages := s.opts.PageBudget(r.limit)
	stallLimit := s.opts.StallPages
	if stallLimit <= 0 {
		stallLimit = 1
	}
	log := s.log.With(zap.String("query", q.Keywords))
	log.Info("🔑 processing keyword", zap.Int("max_pages", maxPages))

	noNewPages := 0
	for pageNum := 0; pageNum < maxPages && !r.full(); pageNum++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		target := SearchURL(q, pageNum*s.opts.PageSize)
		var cards []Candidate
		navErr := s.navigate(ctx, r.page, target)
		switch {
		case navErr == nil:
			cards = s.collect(ctx, r.page, log, pageNum)
		case ctx.Err() != nil:
			return ctx.Err()
		default:
			log.Warn("⚠️ page could not be loaded, treating it as empty", zap.Int("page", pageNum), zap.Error(navErr))
		}

		before := len(r.jobs)
		for _, c := range cards {
			if !r.location.Match(c.Location) || !r.keywords.Match(c.Title, c.Company) {
				continue
			}
			s.accept(r, q, c)
			if r.full() {
				break
			}
		}
		added := len(r.jobs) - before
		log.Info("📄 page processed",
			zap.Int("page", pageNum),
			zap.Int("cards", len(cards)),
			zap.Int("new", added),
			zap.Int("total", len(r.jobs)))

		if added == 0 {
			noNewPages++
			if noNewPages >= stallLimit {
				log.Info("⏹️ no new unique jobs, stopping pagination", zap.Int("pages", noNewPages))
				break
			}
		} else {
			noNewPages = 0
		}

		//a loaded page without cards means the results ran out
		if navErr == nil && len(cards) == 0 {
			break
		}

		if !r.full() {
			if err := s.pacer.Pause(ctx, s.opts.Pacing.BetweenPages); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *LinkedInScraper) accept(r *run, q scraper.Query, c Candidate) {
	job := scraper.Job{
		Title:    c.Title,
		Company:  c.Company,
		Location: c.Location,
		Link:     dedup.Canonicalize(c.Link),
		JobID:    dedup.ExtractID(c.Link),
		ListedAt: filter.ParseListedAt(c.ListedAt, s.now()),
		Query:    q.Keywords,
	}
	if job.Link == "" {
		return
	}
	key := job.DedupKey()
	if r.seen.Seen(key) || r.store.IsSeen(key) {
		return
	}
	r.seen.Add(key)
	r.jobs = append(r.jobs, job)
}

// navigate loads url waiting for network idle, retrying once with only
// DOM content loaded.
func (s *LinkedInScraper) navigate(ctx context.Context, page browser.Page, url string) error {
	if err := s.pacer.Navigation(ctx); err != nil {
		return err
	}
	err := page.Goto(url, browser.WaitNetworkIdle, s.opts.NavTimeout)
	if err != nil {
		s.log.Debug("navigation did not reach network idle, retrying", zap.String("url", url), zap.Error(err))
		if err = page.Goto(url, browser.WaitDOMContentLoaded, s.opts.NavTimeout); err != nil {
			return fmt.Errorf("%w: %s: %v", scraper.ErrNavigation, url, err)
		}
	}
	return s.pacer.Pause(ctx, s.opts.Pacing.PageSettle)
}

// collect waits for the list, scrolls until it stops growing and extracts the cards.
func (s *LinkedInScraper) collect(ctx context.Context, page browser.Page, log *zap.Logger, pageNum int) []Candidate {
	if err := page.WaitForSelector(listReadySelectors, s.opts.ListTimeout); err != nil {
		if err := page.WaitForSelector(listFallbackSelectors, s.opts.ListTimeout/2); err != nil {
			log.Debug("job list selector not found", zap.Int("page", pageNum))
		}
	}

	s.loadMore(ctx, page, log)

	html, err := page.Content()
	if err != nil {
		log.Warn("⚠️ failed to read page content", zap.Error(err))
		return nil
	}
	cards, err := s.extractor.Extract(html)
	if err != nil {
		log.Warn("⚠️ failed to extract cards", zap.Error(err))
		return nil
	}
	if len(cards) == 0 {
		log.Warn("⚠️ empty results page", zap.Int("page", pageNum), zap.Error(scraper.ErrExtractionMiss))
		if s.opts.DebugScreenshots {
			s.shots.Capture(page, fmt.Sprintf("linkedin-empty-p%d", pageNum), "capturing empty results page")
		}
	}
	return cards
}

// loadMore scrolls the results list until the card count stops growing.
func (s *LinkedInScraper) loadMore(ctx context.Context, page browser.Page, log *zap.Logger) {
	lastCount, noChange := 0, 0
	for i := 0; i < s.opts.MaxScrollRounds && lastCount < cardsPerPageTarget; i++ {
		if ctx.Err() != nil {
			return
		}
		s.evaluate(page, log, scrollScript, scrollArgs(false, scrollStep))
		if s.pacer.Pause(ctx, s.opts.Pacing.Scroll) != nil {
			return
		}

		if i%showMoreEvery == 0 {
			s.evaluate(page, log, scrollScript, scrollArgs(true, scrollStep))
			if s.pacer.Pause(ctx, s.opts.Pacing.Scroll) != nil {
				return
			}
			if s.clickShowMore(ctx, page, log) != nil {
				return
			}
		}

		count := toInt(s.evaluate(page, log, countScript, cardSelectors))
		if count == lastCount {
			noChange++
			if noChange >= s.opts.StallRounds {
				//last try before giving up on this page
				s.clickShowMore(ctx, page, log)
				return
			}
		} else {
			noChange = 0
		}
		lastCount = count
	}
}

func (s *LinkedInScraper) clickShowMore(ctx context.Context, page browser.Page, log *zap.Logger) error {
	if clicked, _ := s.evaluate(page, log, showMoreScript, showMoreSelectors).(bool); clicked {
		return s.pacer.Pause(ctx, s.opts.Pacing.Scroll)
	}
	return ctx.Err()
}

func (s *LinkedInScraper) evaluate(page browser.Page, log *zap.Logger, script string, arg any) any {
	out, err := page.Evaluate(script, arg)
	if err != nil {
		log.Debug("page script failed", zap.Error(err))
		return nil
	}
	return out
}
