package dedup

import (
	"net/url"
	"regexp"
	"strings"

	"go-linkedin-harvester/internal/textutil"
)

const jobViewBase = "https://www.linkedin.com/jobs/view/"

var (
	// Matches both /jobs/view/1234567890/ and the public slug form
	// /jobs/view/data-engineer-at-acme-1234567890.
	jobViewRegex = regexp.MustCompile(`/jobs/view/(?:[^/?#]*-)?(\d+)(?:[/?#]|$)`)
	digitsRegex  = regexp.MustCompile(`^\d+$`)

	idQueryParams = []string{"currentJobId", "jobId", "jk"}
)

// ExtractID returns the numeric LinkedIn job id carried by link, or "" when there is none.
func ExtractID(link string) string {
	link = strings.TrimSpace(link)
	if link == "" {
		return ""
	}

	u, err := url.Parse(link)
	if err != nil {
		//not a valid URL, fall back to regex on the raw string
		if m := jobViewRegex.FindStringSubmatch(link); m != nil {
			return m[1]
		}
		return ""
	}

	if m := jobViewRegex.FindStringSubmatch(u.EscapedPath()); m != nil {
		return m[1]
	}

	q := u.Query()
	for _, param := range idQueryParams {
		if v := q.Get(param); digitsRegex.MatchString(v) {
			return v
		}
	}
	return ""
}

// Canonicalize reduces link to a stable dedup key. Links with a job id become
// https://www.linkedin.com/jobs/view/<id>/; anything else loses its query and fragment.
// Canonicalize(Canonicalize(x)) == Canonicalize(x).
func Canonicalize(link string) string {
	link = strings.TrimSpace(link)
	if link == "" {
		return ""
	}
	if id := ExtractID(link); id != "" {
		return jobViewBase + id + "/"
	}
	link, _, _ = strings.Cut(link, "#")
	link, _, _ = strings.Cut(link, "?")
	return strings.TrimSpace(link)
}

// TitleCompanyKey is the composite "title|company" identity. It is "" when
// both parts are empty so that blank cards never collide.
func TitleCompanyKey(title, company string) string {
	t := strings.ToLower(textutil.CleanText(title))
	c := strings.ToLower(textutil.CleanText(company))
	if t == "" && c == "" {
		return ""
	}
	return t + "|" + c
}
