package linkedin

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go-linkedin-harvester/internal/browser"
)

type visit struct {
	url  string
	wait browser.WaitStrategy
}

// fakeBrowser serves canned HTML per URL and records every navigation.
type fakeBrowser struct {
	mu       sync.Mutex
	pages    map[string]string
	fallback string
	failIdle map[string]bool
	failAll  map[string]bool
	visits   []visit
	cookies  []browser.Cookie
	launched int
	closed   int
}

func newFakeBrowser() *fakeBrowser {
	return &fakeBrowser{
		pages:    make(map[string]string),
		failIdle: make(map[string]bool),
		failAll:  make(map[string]bool),
	}
}

func (f *fakeBrowser) Launch(ctx context.Context, opts browser.LaunchOptions) (browser.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.launched++
	return &fakeSession{b: f}, nil
}

func (f *fakeBrowser) visited(url string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, v := range f.visits {
		if v.url == url {
			n++
		}
	}
	return n
}

func (f *fakeBrowser) searchVisits() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, v := range f.visits {
		if strings.HasPrefix(v.url, searchURL) {
			out = append(out, v.url)
		}
	}
	return out
}

type fakeSession struct {
	b *fakeBrowser
}

func (s *fakeSession) NewPage() (browser.Page, error) {
	return &fakePage{b: s.b}, nil
}

func (s *fakeSession) AddCookies(cookies []browser.Cookie) error {
	s.b.mu.Lock()
	defer s.b.mu.Unlock()
	s.b.cookies = append(s.b.cookies, cookies...)
	return nil
}

func (s *fakeSession) Close() error {
	s.b.mu.Lock()
	defer s.b.mu.Unlock()
	s.b.closed++
	return nil
}

type fakePage struct {
	b       *fakeBrowser
	current string
}

func (p *fakePage) Goto(url string, wait browser.WaitStrategy, timeout time.Duration) error {
	p.b.mu.Lock()
	defer p.b.mu.Unlock()
	p.b.visits = append(p.b.visits, visit{url: url, wait: wait})
	if p.b.failAll[url] || (wait == browser.WaitNetworkIdle && p.b.failIdle[url]) {
		return errors.New("timeout exceeded")
	}
	p.current = url
	return nil
}

func (p *fakePage) Evaluate(script string, arg any) (any, error) {
	return nil, nil
}

func (p *fakePage) WaitForSelector(candidates []string, timeout time.Duration) error {
	return nil
}

func (p *fakePage) Content() (string, error) {
	p.b.mu.Lock()
	defer p.b.mu.Unlock()
	if html, ok := p.b.pages[p.current]; ok {
		return html, nil
	}
	return p.b.fallback, nil
}

func (p *fakePage) Screenshot(path string) error { return nil }
func (p *fakePage) Close() error                 { return nil }

func card(id, title, company, location string) string {
	return fmt.Sprintf(`<li>
  <div class="base-card base-search-card job-search-card" data-entity-urn="urn:li:jobPosting:%[1]s">
    <a class="base-card__full-link" href="https://in.linkedin.com/jobs/view/role-at-company-%[1]s?refId=r%[1]s&amp;trackingId=t%[1]s"></a>
    <div class="base-search-card__info">
      <h3 class="base-search-card__title">%[2]s</h3>
      <h4 class="base-search-card__subtitle"><a>%[3]s</a></h4>
      <div class="base-search-card__metadata">
        <span class="job-search-card__location">%[4]s</span>
        <time class="job-search-card__listdate" datetime="2026-10-17">1 day ago</time>
      </div>
    </div>
  </div>
</li>`, id, title, company, location)
}

func resultsPage(cards ...string) string {
	return `<html><body><ul class="jobs-search__results-list">` + strings.Join(cards, "\n") + `</ul></body></html>`
}
