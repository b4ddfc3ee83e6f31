package linkedin

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"go-linkedin-harvester/internal/textutil"
)

// Candidate is one raw job card as read from a results page.
type Candidate struct {
	Title    string
	Company  string
	Location string
	Link     string
	ListedAt string
}

// RecordExtractor turns a results page into job cards.
type RecordExtractor interface {
	Extract(html string) ([]Candidate, error)
}

// Strategy is one known results layout: a card container selector and, per
// field, an ordered chain of selectors where the first non-empty match wins.
type Strategy struct {
	Name      string
	Container string
	Link      []string
	Title     []string
	Company   []string
	Location  []string
}

var (
	linkSelectors     = []string{`a[href*="/jobs/view"]`, "a.base-card__full-link"}
	titleSelectors    = []string{"h3", ".base-search-card__title", `[class*="title"]`}
	companySelectors  = []string{"h4", ".base-search-card__subtitle", `a[data-tracking-control-name*="company"]`}
	locationSelectors = []string{".job-search-card__location", ".base-search-card__metadata", `[class*="location"]`}

	// Cards that carry the results list; also used to count cards while scrolling.
	cardSelectors = []string{
		"ul.jobs-search__results-list li",
		".jobs-search__results-list .job-search-card",
		".job-search-card",
		"[data-job-id]",
	}

	// Scrollable list containers, most specific first.
	listContainerSelectors = []string{
		"[data-test-reusables-search__results-list]",
		".jobs-search-two-pane__results-list",
		".jobs-search__results-list",
		".jobs-search-results-list",
	}

	showMoreSelectors = []string{
		"button.infinite-scroller__show-more-button",
		`button[aria-label*="more jobs"]`,
		`button[aria-label*="See more"]`,
		".see-more-jobs button",
	}

	listReadySelectors    = []string{"ul.jobs-search__results-list li", ".jobs-search__results-list .job-search-card", ".base-card"}
	listFallbackSelectors = []string{".job-search-card", ".base-card"}

	descriptionSelectors = []string{
		".show-more-less-html__markup",
		".description__text",
		".jobs-description__content",
		"[data-test-job-description]",
	}
)

func defaultStrategy(name, container string) Strategy {
	return Strategy{
		Name:      name,
		Container: container,
		Link:      linkSelectors,
		Title:     titleSelectors,
		Company:   companySelectors,
		Location:  locationSelectors,
	}
}

// DefaultStrategies covers the public guest layout and the newer markup variants.
func DefaultStrategies() []Strategy {
	return []Strategy{
		defaultStrategy("results-list", "ul.jobs-search__results-list li"),
		defaultStrategy("results-base-card", ".jobs-search__results-list .base-card"),
		defaultStrategy("job-search-card", ".job-search-card"),
		defaultStrategy("job-posting-urn", `[data-entity-urn*="jobPosting"]`),
		defaultStrategy("base-search-card", ".base-search-card"),
	}
}

// StrategyExtractor runs every strategy in order and keeps the first card seen for each link.
type StrategyExtractor struct {
	strategies []Strategy
}

func NewStrategyExtractor(strategies ...Strategy) *StrategyExtractor {
	if len(strategies) == 0 {
		strategies = DefaultStrategies()
	}
	return &StrategyExtractor{strategies: strategies}
}

func (e *StrategyExtractor) Extract(html string) ([]Candidate, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse results page: %w", err)
	}

	var out []Candidate
	seen := make(map[string]bool)
	for _, st := range e.strategies {
		doc.Find(st.Container).Each(func(_ int, node *goquery.Selection) {
			c, ok := st.extract(node)
			if !ok || seen[c.Link] {
				return
			}
			seen[c.Link] = true
			out = append(out, c)
		})
	}
	return out, nil
}

func (st Strategy) extract(node *goquery.Selection) (Candidate, bool) {
	link := absoluteLink(firstAttr(node, st.Link, "href"))
	if link == "" {
		//the card may sit inside its own link
		if href, ok := node.Closest(`a[href*="/jobs/view"]`).Attr("href"); ok {
			link = absoluteLink(href)
		}
	}
	if !strings.Contains(link, "/jobs/view") {
		return Candidate{}, false
	}

	c := Candidate{
		Link:     link,
		Title:    firstText(node, st.Title),
		Company:  firstText(node, st.Company),
		Location: firstText(node, st.Location),
		ListedAt: listedAt(node),
	}
	//broken cards without title and company only create duplicates
	if c.Title == "" && c.Company == "" {
		return Candidate{}, false
	}
	return c, true
}

func firstText(node *goquery.Selection, selectors []string) string {
	for _, sel := range selectors {
		if text := textutil.CleanText(node.Find(sel).First().Text()); text != "" {
			return text
		}
	}
	return ""
}

func firstAttr(node *goquery.Selection, selectors []string, attr string) string {
	for _, sel := range selectors {
		if v, ok := node.Find(sel).First().Attr(attr); ok && strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func listedAt(node *goquery.Selection) string {
	t := node.Find("time").First()
	if v, ok := t.Attr("datetime"); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return textutil.CleanText(t.Text())
}

// Description returns the text of the first description block found on a job detail page.
func Description(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("parse detail page: %w", err)
	}
	for _, sel := range descriptionSelectors {
		if text := blockText(doc.Find(sel).First()); text != "" {
			return text, nil
		}
	}
	return "", nil
}

// blockText is Text with a space after every block element, so adjacent
// paragraphs and list items do not run together.
func blockText(sel *goquery.Selection) string {
	if sel.Length() == 0 {
		return ""
	}
	sel.Find("br").ReplaceWithHtml(" ")
	sel.Find("p, li, div, ul, ol, h1, h2, h3, h4, h5, h6, strong").AppendHtml(" ")
	return textutil.CleanText(sel.Text())
}
