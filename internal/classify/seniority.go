package classify

import "regexp"

type Seniority string

const (
	SeniorityEntry  Seniority = "entry/intern"
	SeniorityMid    Seniority = "mid/unspecified"
	SenioritySenior Seniority = "senior"
)

var (
	entryRegex  = regexp.MustCompile(`(?i)\b(intern|internship|entry[\s-]?level|graduate|fresher|junior|trainee)\b`)
	seniorRegex = regexp.MustCompile(`(?i)\b(senior|sr\.?|lead|manager|staff|principal|director|head)\b`)
)

// SeniorityOf tags a title. Entry keywords win over senior ones, so
// "Junior Team Lead" is entry level.
func SeniorityOf(title string) (Seniority, bool) {
	switch {
	case entryRegex.MatchString(title):
		return SeniorityEntry, true
	case seniorRegex.MatchString(title):
		return SenioritySenior, false
	default:
		return SeniorityMid, false
	}
}
