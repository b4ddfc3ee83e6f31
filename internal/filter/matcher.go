package filter

import (
	"regexp"
	"strings"

	"go-linkedin-harvester/internal/textutil"
)

var (
	remoteRegex     = regexp.MustCompile(`remote|anywhere|global|worldwide`)
	locationSplitRe = regexp.MustCompile(`[\s,-]+`)
)

// Spellings of the same place. If the request names one member, the card
// must name a member of the same group.
var aliasGroups = [][]string{
	{"bangalore", "banglore", "bengaluru"},
	{"gurgaon", "gurugram"},
	{"bombay", "mumbai"},
	{"new york", "nyc"},
}

// LocationFilter checks the free-text location of a card against the requested one.
type LocationFilter struct {
	desired string
	tokens  []string
	groups  [][]string
	india   bool
	remote  bool
}

func NewLocationFilter(desired string) LocationFilter {
	d := textutil.Fold(desired)
	f := LocationFilter{
		desired: d,
		remote:  remoteRegex.MatchString(d),
		india:   strings.Contains(d, "india"),
	}
	for _, tok := range locationSplitRe.Split(d, -1) {
		if tok != "" {
			f.tokens = append(f.tokens, tok)
		}
	}
	for _, group := range aliasGroups {
		if containsAny(d, group) {
			f.groups = append(f.groups, group)
		}
	}
	return f
}

// Active is false for an empty or remote-style request; such requests accept everything.
func (f LocationFilter) Active() bool {
	return f.desired != "" && !f.remote
}

func (f LocationFilter) Match(location string) bool {
	if !f.Active() {
		return true
	}
	loc := textutil.Fold(location)
	if loc == "" {
		return false
	}
	for _, group := range f.groups {
		if !containsAny(loc, group) {
			return false
		}
	}
	if f.india && !strings.Contains(loc, "india") {
		return false
	}
	if len(f.groups) > 0 || len(f.tokens) == 0 {
		return true
	}
	return containsAny(loc, f.tokens)
}
