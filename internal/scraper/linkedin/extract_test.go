package linkedin

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-linkedin-harvester/internal/scraper"
)

const mixedLayout = `<html><body>
<ul class="jobs-search__results-list">
  <li>
    <a class="base-card__full-link" href="/jobs/view/111/?refId=abc">
      <h3>  Data   Engineer </h3>
    </a>
    <h4>Acme</h4>
    <span class="job-search-card__location">Pune, India</span>
    <time datetime="2026-10-16">2 days ago</time>
  </li>
  <li><h3>No Link Engineer</h3><h4>Ghost</h4></li>
  <li><a href="https://www.linkedin.com/jobs/view/222/"></a></li>
  <li><a href="https://www.linkedin.com/company/acme">Acme page</a><h3>Company Card</h3></li>
</ul>
<div data-entity-urn="urn:li:jobPosting:333">
  <a href="https://in.linkedin.com/jobs/view/etl-developer-at-beta-333?trk=x">link</a>
  <span class="base-search-card__title">ETL Developer</span>
  <span class="base-search-card__subtitle">Beta Labs</span>
  <div class="base-search-card__metadata">Mumbai, Maharashtra, India</div>
  <time>3 hours ago</time>
</div>
<a href="/jobs/view/444"><div class="job-search-card"><h3>Analyst</h3><h4>Gamma</h4></div></a>
<ul class="jobs-search__results-list"><li><a href="/jobs/view/111/?refId=dup"></a><h3>Data Engineer</h3></li></ul>
</body></html>`

func TestStrategyExtractor_MixedLayout(t *testing.T) {
	cards, err := NewStrategyExtractor().Extract(mixedLayout)
	require.NoError(t, err)
	require.Len(t, cards, 3)

	assert.Equal(t, Candidate{
		Title:    "Data Engineer",
		Company:  "Acme",
		Location: "Pune, India",
		Link:     "https://www.linkedin.com/jobs/view/111/",
		ListedAt: "2026-10-16",
	}, cards[0])

	assert.Equal(t, "Analyst", cards[1].Title)
	assert.Equal(t, "https://www.linkedin.com/jobs/view/444", cards[1].Link, "link taken from the enclosing anchor")

	assert.Equal(t, "ETL Developer", cards[2].Title)
	assert.Equal(t, "Beta Labs", cards[2].Company)
	assert.Equal(t, "Mumbai, Maharashtra, India", cards[2].Location)
	assert.Equal(t, "https://in.linkedin.com/jobs/view/etl-developer-at-beta-333", cards[2].Link)
	assert.Equal(t, "3 hours ago", cards[2].ListedAt)
}

func TestStrategyExtractor_CustomStrategy(t *testing.T) {
	st := Strategy{
		Name:      "feed",
		Container: "article.job",
		Link:      []string{"a.apply"},
		Title:     []string{".role"},
		Company:   []string{".org"},
		Location:  []string{".where"},
	}
	html := `<article class="job"><a class="apply" href="/jobs/view/5/">Apply</a><b class="role">SRE</b><i class="org">Delta</i><em class="where">Remote</em></article>`

	cards, err := NewStrategyExtractor(st).Extract(html)
	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.Equal(t, "SRE", cards[0].Title)
	assert.Equal(t, "Remote", cards[0].Location)
}

func TestStrategyExtractor_Empty(t *testing.T) {
	cards, err := NewStrategyExtractor().Extract("<html><body><p>Sign in</p></body></html>")
	require.NoError(t, err)
	assert.Empty(t, cards)
}

func TestDescription(t *testing.T) {
	html := `<html><body>
		<section class="description"><div class="description__text">
			<p>Build pipelines<br>with Airflow</p><ul><li>SQL</li><li>dbt</li></ul>
		</div></section>
	</body></html>`
	desc, err := Description(html)
	require.NoError(t, err)
	assert.Equal(t, "Build pipelines with Airflow SQL dbt", desc)

	desc, err = Description(`<div class="show-more-less-html__markup">  </div><div class="jobs-description__content">Kafka</div>`)
	require.NoError(t, err)
	assert.Equal(t, "Kafka", desc, "empty first match falls through")

	desc, err = Description("<p>nothing</p>")
	require.NoError(t, err)
	assert.Empty(t, desc)
}

func TestSearchURL(t *testing.T) {
	q := scraper.Query{Keywords: " data engineer ", Location: "Bengaluru, India", TimePosted: scraper.TimePostedPastWeek}
	raw := SearchURL(q, 50)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "www.linkedin.com", u.Host)
	assert.Equal(t, "/jobs/search/", u.Path)

	v := u.Query()
	assert.Equal(t, "data engineer", v.Get("keywords"))
	assert.Equal(t, "Bengaluru, India", v.Get("location"))
	assert.Equal(t, "50", v.Get("start"))
	assert.Equal(t, "DD", v.Get("sortBy"))
	assert.Equal(t, "public_jobs_jobs-search-bar_search-submit", v.Get("trk"))
	assert.Equal(t, "r604800", v.Get("f_TPR"))

	q.TimePosted = scraper.TimePostedPast24h
	assert.Equal(t, "r86400", mustQuery(t, SearchURL(q, 0)).Get("f_TPR"))

	q.TimePosted = scraper.TimePostedAny
	assert.False(t, mustQuery(t, SearchURL(q, 0)).Has("f_TPR"))
}

func mustQuery(t *testing.T, raw string) url.Values {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u.Query()
}
