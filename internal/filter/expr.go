package filter

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"go-linkedin-harvester/internal/scraper"
)

// PostFilter is a user-supplied boolean expression evaluated against each record,
// e.g. `entryLevel || "spark" in techStack`.
type PostFilter struct {
	source  string
	program *vm.Program
}

// CompilePostFilter returns nil for an empty expression.
func CompilePostFilter(source string) (*PostFilter, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return nil, nil
	}
	program, err := expr.Compile(source, expr.Env(exprEnv(scraper.Job{})), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compile filter expression: %w", err)
	}
	return &PostFilter{source: source, program: program}, nil
}

func (f *PostFilter) String() string {
	if f == nil {
		return ""
	}
	return f.source
}

// Match evaluates the expression for job. A nil filter matches everything.
func (f *PostFilter) Match(job scraper.Job) (bool, error) {
	if f == nil {
		return true, nil
	}
	out, err := expr.Run(f.program, exprEnv(job))
	if err != nil {
		return false, fmt.Errorf("evaluate filter expression: %w", err)
	}
	ok, _ := out.(bool)
	return ok, nil
}

// Apply keeps the jobs the expression accepts, in order.
func (f *PostFilter) Apply(jobs []scraper.Job) ([]scraper.Job, error) {
	if f == nil {
		return jobs, nil
	}
	out := make([]scraper.Job, 0, len(jobs))
	for _, job := range jobs {
		ok, err := f.Match(job)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, job)
		}
	}
	return out, nil
}

func exprEnv(job scraper.Job) map[string]any {
	techStack := job.TechStack
	if techStack == nil {
		techStack = []string{}
	}
	return map[string]any{
		"title":         job.Title,
		"company":       job.Company,
		"location":      job.Location,
		"link":          job.Link,
		"jobId":         job.JobID,
		"query":         job.Query,
		"seniority":     string(job.Seniority),
		"entryLevel":    job.IsEntryLevel,
		"startup":       job.IsLikelyStartup,
		"startupSignal": job.StartupSignal,
		"techStack":     techStack,
	}
}
