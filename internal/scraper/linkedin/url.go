package linkedin

import (
	"net/url"
	"strconv"
	"strings"

	"go-linkedin-harvester/internal/scraper"
)

const (
	baseURL   = "https://www.linkedin.com"
	searchURL = baseURL + "/jobs/search/"
)

// SearchURL builds the public job search URL for q starting at offset start.
func SearchURL(q scraper.Query, start int) string {
	v := url.Values{}
	v.Set("keywords", strings.TrimSpace(q.Keywords))
	v.Set("location", strings.TrimSpace(q.Location))
	v.Set("trk", "public_jobs_jobs-search-bar_search-submit")
	v.Set("position", "1")
	v.Set("pageNum", "0")
	v.Set("start", strconv.Itoa(start))
	//newest first gives more variety between sessions
	v.Set("sortBy", "DD")

	switch q.TimePosted {
	case scraper.TimePostedPast24h:
		v.Set("f_TPR", "r86400")
	case scraper.TimePostedPastWeek:
		v.Set("f_TPR", "r604800")
	}
	return searchURL + "?" + v.Encode()
}

// absoluteLink resolves a card href against linkedin.com and drops its query
// and fragment.
func absoluteLink(href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	base, _ := url.Parse(baseURL)
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	u := base.ResolveReference(ref)
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}
