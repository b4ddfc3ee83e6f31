package classify

import (
	"regexp"
	"strings"

	"go-linkedin-harvester/internal/textutil"
)

// Large employers. A company whose normalized name contains one of these is
// never treated as a startup. Entries shorter than blocklistSubstringMin must
// match as whole words.
var blocklist = normalizeAll([]string{
	"google", "microsoft", "amazon", "meta", "facebook", "apple", "netflix",
	"ibm", "oracle", "salesforce", "adobe", "sap", "cisco", "intel", "dell",
	"hp", "hewlett", "accenture", "deloitte", "mckinsey", "bcg", "bain",
	"goldman sachs", "jpmorgan", "jpmorgan chase", "morgan stanley", "bank of america",
	"walmart", "exxon", "chevron", "berkshire", "unitedhealth", "cvs health",
	"johnson & johnson", "jnj", "procter & gamble", "p&g", "verizon", "at&t",
	"comcast", "disney", "walt disney", "nike", "coca-cola", "pepsi",
	"ford motor", "general motors", "gm", "toyota", "honda", "tesla",
	"samsung", "sony", "lg", "panasonic", "siemens", "ge", "general electric",
	"boeing", "lockheed", "raytheon", "northrop", "honeywell",
	"ubs", "credit suisse", "barclays", "hsbc", "citigroup", "citi",
	"wells fargo", "american express", "capital one", "blackrock", "kpmg",
	"ey", "ernst & young", "pwc", "pricewaterhouse", "pricewaterhousecoopers", "infosys", "tcs",
	"wipro", "hcl tech", "hcltech", "cognizant", "capgemini", "tata consultancy",
	"servicenow", "workday", "vmware", "broadcom", "qualcomm", "nvidia",
	"amd", "paypal", "visa", "mastercard", "intuit", "zoom", "slack",
	"spotify", "uber", "lyft", "airbnb", "twitter", "linkedin", "yelp",
	"ebay", "alibaba", "tencent", "bytedance", "tiktok", "snap", "snapchat",
	"dropbox", "box", "atlassian", "twilio", "square", "block inc",
	"stripe", "coinbase", "robinhood", "chase", "american airlines",
	"delta air", "united airlines", "fedex", "ups", "state farm",
	"allstate", "liberty mutual", "anthem", "cigna", "humana",
	"abbvie", "pfizer", "merck", "novartis", "roche", "sanofi",
	"glaxosmithkline", "gsk", "astrazeneca",
	"bloomberg", "reuters", "thomson reuters", "lexisnexis", "moody",
	"s&p global", "nasdaq", "nyse", "citadel", "jane street", "two sigma",
	"optiver", "imc", "flow traders", "government", "state of", "federal",
})

// Company-name tokens suggesting a startup. Tokens of two characters or
// fewer must appear as whole words.
var startupNameTokens = []string{
	"labs", "ventures", "studio", ".io", "hq", "capital", "startup", "startups",
	"tech", "software", "digital", "innovation", "solutions", "ai", "io",
}

var startupDescPhrases = []string{
	"startup", "start-up", "early stage", "early-stage", "series a", "series b",
	"venture-backed", "venture backed", "fast-paced", "fast paced",
	"small team", "growing team", "founding", "founding team",
	"seed stage", "seed-stage", "pre-seed", "preseed",
}

const blocklistSubstringMin = 4

var companyPunct = regexp.MustCompile(`[^\p{L}\p{N}&\s]`)

// normalizeCompany folds case and accents and turns punctuation other than
// "&" into spaces, so "Coca-Cola Co." becomes "coca cola co".
func normalizeCompany(name string) string {
	n := textutil.Fold(name)
	n = companyPunct.ReplaceAllString(n, " ")
	return textutil.CleanText(n)
}

func normalizeAll(terms []string) []string {
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		if n := normalizeCompany(t); n != "" {
			out = append(out, n)
		}
	}
	return out
}

func containsPhrase(haystack, phrase string) bool {
	return strings.Contains(" "+haystack+" ", " "+phrase+" ")
}

// IsBlocklisted reports whether company is (or contains) a known large employer.
func IsBlocklisted(company string) bool {
	n := normalizeCompany(company)
	if n == "" {
		return false
	}
	for _, term := range blocklist {
		if n == term {
			return true
		}
		if len(term) < blocklistSubstringMin {
			if containsPhrase(n, term) {
				return true
			}
			continue
		}
		if strings.Contains(n, term) {
			return true
		}
	}
	return false
}

// HasStartupLikeName checks the company name against the startup vocabulary.
func HasStartupLikeName(company string) bool {
	raw := strings.ToLower(strings.TrimSpace(company))
	if raw == "" {
		return false
	}
	words := normalizeCompany(company)
	for _, token := range startupNameTokens {
		if len(token) <= 2 {
			if containsPhrase(words, token) {
				return true
			}
			continue
		}
		if strings.Contains(raw, token) {
			return true
		}
	}
	return false
}

// HasStartupSignal looks for startup phrases in a job description.
func HasStartupSignal(description string) bool {
	text := strings.ToLower(textutil.CleanText(description))
	if text == "" {
		return false
	}
	for _, phrase := range startupDescPhrases {
		if strings.Contains(text, phrase) {
			return true
		}
	}
	return false
}

// IsLikelyStartup applies the blocklist first; only then does a startup-like
// name or a description signal accept the company.
func IsLikelyStartup(company string, descriptionSignal bool) bool {
	if IsBlocklisted(company) {
		return false
	}
	return HasStartupLikeName(company) || descriptionSignal
}

// Company is implemented by records the startup filter can judge.
type Company interface {
	CompanyName() string
	HasStartupSignal() bool
}

// FilterStartups keeps the likely startups, in order.
func FilterStartups[T Company](items []T) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if IsLikelyStartup(item.CompanyName(), item.HasStartupSignal()) {
			out = append(out, item)
		}
	}
	return out
}
