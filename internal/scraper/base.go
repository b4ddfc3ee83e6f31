// Define the job record and the interface every job source implements

package scraper

import (
	"context"
	"errors"
	"time"

	"go-linkedin-harvester/internal/classify"
	"go-linkedin-harvester/internal/config"
	"go-linkedin-harvester/internal/dedup"
)

var (
	// ErrNavigation is returned when a page cannot be loaded, even after the relaxed retry.
	ErrNavigation = errors.New("navigation failed")
	// ErrExtractionMiss is returned when no selector strategy matched anything on a page.
	ErrExtractionMiss = errors.New("no selector strategy matched")
)

// Time-posted filters understood by the search.
const (
	TimePostedAny      = config.TimePostedAny
	TimePostedPast24h  = config.TimePostedPast24h
	TimePostedPastWeek = config.TimePostedPastWeek
)

type Job struct {
	Title           string
	Company         string
	Location        string
	Link            string
	JobID           string
	ListedAt        *time.Time
	ScrapedAt       time.Time
	TechStack       []string
	Seniority       classify.Seniority
	IsEntryLevel    bool
	IsLikelyStartup bool
	StartupSignal   bool
	Query           string
	Description     string
}

func (j Job) DedupKey() dedup.Key {
	return dedup.Key{JobID: j.JobID, Link: j.Link, Title: j.Title, Company: j.Company}
}

func (j Job) CompanyName() string    { return j.Company }
func (j Job) HasStartupSignal() bool { return j.StartupSignal }

// Query is one search: a keyword string plus the filters every variant shares.
type Query struct {
	Keywords   string
	Location   string
	TimePosted string
	Include    []string
	Exclude    []string
	Limit      int
}

// Request is an ordered list of keyword variants run with the same filters and cap.
type Request struct {
	Query
	Variants []string
	Enrich   bool
}

// Queries expands the request into one Query per variant, falling back to Keywords.
func (r Request) Queries() []Query {
	variants := r.Variants
	if len(variants) == 0 {
		variants = []string{r.Keywords}
	}
	out := make([]Query, 0, len(variants))
	for _, v := range variants {
		q := r.Query
		q.Keywords = v
		out = append(out, q)
	}
	return out
}

// Scraper defines the interface that all job sources must implement
type Scraper interface {
	//Scrape runs every variant of req and returns up to req.Limit records
	//that are neither in store nor duplicated within the call
	Scrape(ctx context.Context, req Request, store *dedup.SeenStore) ([]Job, error)

	//Name is the source name
	Name() string
}
