package linkedin

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-linkedin-harvester/internal/browser"
	"go-linkedin-harvester/internal/classify"
	"go-linkedin-harvester/internal/config"
	"go-linkedin-harvester/internal/dedup"
	"go-linkedin-harvester/internal/scraper"
)

func testOptions() Options {
	return Options{
		Headless:             true,
		UsePublicSearch:      true,
		NavTimeout:           time.Second,
		ListTimeout:          time.Second,
		PageSize:             3,
		PageBudgetMultiplier: 3,
		StallPages:           10,
		MaxScrollRounds:      3,
		StallRounds:          1,
	}
}

func newTestScraper(fb *fakeBrowser, opts Options) *LinkedInScraper {
	s := NewLinkedInScraper(opts, fb, browser.NewPacer(0), nil)
	s.now = func() time.Time { return time.Date(2026, 10, 18, 10, 0, 0, 0, time.UTC) }
	return s
}

func testRequest(limit int, variants ...string) scraper.Request {
	return scraper.Request{
		Query: scraper.Query{
			Keywords:   "data engineer",
			Location:   "India",
			TimePosted: scraper.TimePostedPast24h,
			Limit:      limit,
		},
		Variants: variants,
	}
}

func numbered(ids ...int) []string {
	cards := make([]string, len(ids))
	for i, id := range ids {
		cards[i] = card(fmt.Sprint(id), fmt.Sprintf("Data Engineer %d", id), fmt.Sprintf("Company %d", id), "Bengaluru, Karnataka, India")
	}
	return cards
}

func jobIDs(jobs []scraper.Job) []string {
	out := make([]string, len(jobs))
	for i, j := range jobs {
		out[i] = j.JobID
	}
	return out
}

func TestScrape_CapIsExactAndOrderPreserved(t *testing.T) {
	fb := newFakeBrowser()
	req := testRequest(7, "data engineer", "etl developer")
	qs := req.Queries()

	fb.pages[SearchURL(qs[0], 0)] = resultsPage(numbered(1, 2, 3)...)
	fb.pages[SearchURL(qs[0], 3)] = resultsPage(numbered(2, 4, 5)...)
	fb.pages[SearchURL(qs[1], 0)] = resultsPage(numbered(5, 6, 7, 8)...)
	fb.pages[SearchURL(qs[1], 3)] = resultsPage(numbered(9, 10)...)
	fb.fallback = resultsPage()

	jobs, err := newTestScraper(fb, testOptions()).Scrape(context.Background(), req, dedup.NewSeenStore())
	require.NoError(t, err)

	assert.Equal(t, []string{"1", "2", "3", "4", "5", "6", "7"}, jobIDs(jobs))
	assert.Equal(t, "data engineer", jobs[0].Query)
	assert.Equal(t, "etl developer", jobs[5].Query)
	assert.Zero(t, fb.visited(SearchURL(qs[1], 3)), "cap reached on the first page of the second variant")
	assert.Equal(t, 1, fb.launched)
	assert.Equal(t, 1, fb.closed)
}

func TestScrape_NeverExceedsCap(t *testing.T) {
	fb := newFakeBrowser()
	req := testRequest(2)
	fb.pages[SearchURL(req.Queries()[0], 0)] = resultsPage(numbered(1, 2, 3)...)

	jobs, err := newTestScraper(fb, testOptions()).Scrape(context.Background(), req, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, jobIDs(jobs))
	assert.Len(t, fb.searchVisits(), 1)
}

func TestScrape_RecordShape(t *testing.T) {
	fb := newFakeBrowser()
	req := testRequest(5)
	fb.pages[SearchURL(req.Queries()[0], 0)] = resultsPage(
		card("41", "Data Engineer Intern", "Nimbus Labs", "Pune, Maharashtra, India"),
	)

	jobs, err := newTestScraper(fb, testOptions()).Scrape(context.Background(), req, nil)
	require.NoError(t, err)
	require.Len(t, jobs, 1)

	job := jobs[0]
	assert.Equal(t, "Data Engineer Intern", job.Title)
	assert.Equal(t, "Nimbus Labs", job.Company)
	assert.Equal(t, "Pune, Maharashtra, India", job.Location)
	assert.Equal(t, "https://www.linkedin.com/jobs/view/41/", job.Link)
	assert.Equal(t, "41", job.JobID)
	require.NotNil(t, job.ListedAt)
	assert.Equal(t, time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC), *job.ListedAt)
	assert.Equal(t, time.Date(2026, 10, 18, 10, 0, 0, 0, time.UTC), job.ScrapedAt)
	assert.Equal(t, classify.SeniorityEntry, job.Seniority)
	assert.True(t, job.IsEntryLevel)
	assert.False(t, job.IsLikelyStartup)
}

func TestScrape_SkipsStoreAndSessionDuplicates(t *testing.T) {
	fb := newFakeBrowser()
	req := testRequest(10)
	q := req.Queries()[0]
	fb.pages[SearchURL(q, 0)] = resultsPage(append(numbered(1, 2, 3),
		card("99", "Data Engineer 3", "Company 3", "Bengaluru, India"))...)

	store := dedup.NewSeenStore()
	store.Add(dedup.Key{Link: "https://www.linkedin.com/jobs/view/2/?trk=old"})

	jobs, err := newTestScraper(fb, testOptions()).Scrape(context.Background(), req, store)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "3"}, jobIDs(jobs), "2 is in the store, 99 repeats title|company of 3")
}

func TestScrape_KeywordAndLocationFilters(t *testing.T) {
	fb := newFakeBrowser()
	req := testRequest(10)
	req.Exclude = []string{"senior"}
	fb.pages[SearchURL(req.Queries()[0], 0)] = resultsPage(
		card("1", "Senior Data Engineer", "Acme", "Bengaluru, India"),
		card("2", "Data Engineer", "Acme", "Berlin, Germany"),
		card("3", "Data Engineer", "Acme", "Hyderabad, India"),
	)

	jobs, err := newTestScraper(fb, testOptions()).Scrape(context.Background(), req, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"3"}, jobIDs(jobs))
}

func TestScrape_StallStopsPagination(t *testing.T) {
	fb := newFakeBrowser()
	fb.fallback = resultsPage(numbered(1, 2)...)
	opts := testOptions()
	opts.StallPages = 2

	req := testRequest(50)
	jobs, err := newTestScraper(fb, opts).Scrape(context.Background(), req, nil)
	require.NoError(t, err)
	assert.Len(t, jobs, 2)
	assert.Len(t, fb.searchVisits(), 3, "one productive page, then two pages without new jobs")
}

func TestScrape_EmptyPageEndsVariant(t *testing.T) {
	fb := newFakeBrowser()
	req := testRequest(50, "a", "b")
	qs := req.Queries()
	fb.pages[SearchURL(qs[0], 0)] = resultsPage(numbered(1)...)
	fb.pages[SearchURL(qs[1], 0)] = resultsPage(numbered(2)...)
	fb.fallback = resultsPage()

	jobs, err := newTestScraper(fb, testOptions()).Scrape(context.Background(), req, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, jobIDs(jobs))
	assert.Equal(t, []string{
		SearchURL(qs[0], 0), SearchURL(qs[0], 3),
		SearchURL(qs[1], 0), SearchURL(qs[1], 3),
	}, fb.searchVisits())
}

func TestScrape_NavigationRetriesWithRelaxedWait(t *testing.T) {
	fb := newFakeBrowser()
	req := testRequest(1)
	first := SearchURL(req.Queries()[0], 0)
	fb.pages[first] = resultsPage(numbered(1)...)
	fb.failIdle[first] = true

	jobs, err := newTestScraper(fb, testOptions()).Scrape(context.Background(), req, nil)
	require.NoError(t, err)
	assert.Len(t, jobs, 1)
	assert.Equal(t, []visit{
		{url: first, wait: browser.WaitNetworkIdle},
		{url: first, wait: browser.WaitDOMContentLoaded},
	}, fb.visits)
}

func TestScrape_FailedPageIsSkipped(t *testing.T) {
	fb := newFakeBrowser()
	req := testRequest(1)
	q := req.Queries()[0]
	fb.failAll[SearchURL(q, 0)] = true
	fb.pages[SearchURL(q, 3)] = resultsPage(numbered(7)...)

	jobs, err := newTestScraper(fb, testOptions()).Scrape(context.Background(), req, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"7"}, jobIDs(jobs))
	assert.Equal(t, 2, fb.visited(SearchURL(q, 0)), "one strict and one relaxed attempt")
}

func TestScrape_EnrichmentFailuresAreTolerated(t *testing.T) {
	fb := newFakeBrowser()
	req := testRequest(3)
	req.Enrich = true
	fb.pages[SearchURL(req.Queries()[0], 0)] = resultsPage(numbered(1, 2, 3)...)
	fb.pages["https://www.linkedin.com/jobs/view/1/"] = `<html><body>
		<div class="show-more-less-html__markup"><p>We are a fast-paced startup.</p><ul><li>Python</li><li>Spark</li></ul></div>
	</body></html>`
	fb.failAll["https://www.linkedin.com/jobs/view/2/"] = true
	fb.pages["https://www.linkedin.com/jobs/view/3/"] = `<html><body><main>Sign in to view</main></body></html>`

	jobs, err := newTestScraper(fb, testOptions()).Scrape(context.Background(), req, nil)
	require.NoError(t, err)
	require.Len(t, jobs, 3)

	assert.Equal(t, []string{"python", "spark"}, jobs[0].TechStack)
	assert.True(t, jobs[0].StartupSignal)
	assert.Contains(t, jobs[0].Description, "fast-paced startup")

	assert.Empty(t, jobs[1].TechStack)
	assert.False(t, jobs[1].StartupSignal)

	assert.Empty(t, jobs[2].TechStack)
	assert.False(t, jobs[2].StartupSignal)
}

func TestScrape_InjectsCookiesInAuthenticatedMode(t *testing.T) {
	fb := newFakeBrowser()
	opts := testOptions()
	opts.UsePublicSearch = false
	opts.CookieHeader = "li_at=abc; JSESSIONID=xyz"

	_, err := newTestScraper(fb, opts).Scrape(context.Background(), testRequest(1), nil)
	require.NoError(t, err)
	require.Len(t, fb.cookies, 2)
	assert.Equal(t, "li_at", fb.cookies[0].Name)
}

func TestScrape_ZeroLimit(t *testing.T) {
	fb := newFakeBrowser()
	jobs, err := newTestScraper(fb, testOptions()).Scrape(context.Background(), testRequest(0), nil)
	require.NoError(t, err)
	assert.Empty(t, jobs)
	assert.Zero(t, fb.launched)
}

func TestScrape_CancelledContext(t *testing.T) {
	fb := newFakeBrowser()
	fb.fallback = resultsPage(numbered(1)...)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestScraper(fb, testOptions()).Scrape(ctx, testRequest(5), nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPageBudget(t *testing.T) {
	opts := Options{PageSize: 25, PageBudgetMultiplier: 3}
	assert.Equal(t, 6, opts.PageBudget(40))
	assert.Equal(t, 3, opts.PageBudget(25))
	assert.Equal(t, 3, opts.PageBudget(1))

	opts.MaxPagesPerQuery = 4
	assert.Equal(t, 4, opts.PageBudget(40))
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := config.Default()
	opts := OptionsFromConfig(&cfg)
	assert.Equal(t, 25, opts.PageSize)
	assert.Equal(t, 3, opts.PageBudgetMultiplier)
	assert.Equal(t, 10, opts.StallPages)
	assert.Equal(t, 80, opts.MaxScrollRounds)
	assert.Equal(t, 8, opts.StallRounds)
	assert.Equal(t, 60*time.Second, opts.NavTimeout)
	assert.Equal(t, 2500*time.Millisecond, opts.Pacing.BetweenPages.Min)
	assert.Equal(t, 4500*time.Millisecond, opts.Pacing.BetweenPages.Max)
	assert.Equal(t, filepath.Join("..", ".cookies", "cookies-linkedin.json"), opts.CookiesFile)

	cfg.Browser.CookiesPath = ""
	assert.Empty(t, OptionsFromConfig(&cfg).CookiesFile)
}

func TestProbe(t *testing.T) {
	fb := newFakeBrowser()
	q := testRequest(1).Queries()[0]
	fb.pages[SearchURL(q, 0)] = resultsPage(
		card("1", "Senior Data Engineer", "Acme", "Berlin, Germany"),
		card("2", "Data Engineer", "Beta", "Pune, India"),
	)

	cards, err := newTestScraper(fb, testOptions()).Probe(context.Background(), q)
	require.NoError(t, err)
	assert.Len(t, cards, 2, "probe does not filter")
	assert.Equal(t, 1, fb.closed)
}

func TestProbe_EmptyPage(t *testing.T) {
	fb := newFakeBrowser()
	fb.fallback = resultsPage()

	_, err := newTestScraper(fb, testOptions()).Probe(context.Background(), testRequest(1).Queries()[0])
	assert.ErrorIs(t, err, scraper.ErrExtractionMiss)
}
