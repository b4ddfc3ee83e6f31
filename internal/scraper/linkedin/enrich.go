package linkedin

import (
	"context"

	"go.uber.org/zap"

	"go-linkedin-harvester/internal/browser"
	"go-linkedin-harvester/internal/classify"
	"go-linkedin-harvester/internal/scraper"
)

// enrich visits every job's detail page for its description, tech stack and
// startup signal. A failing job keeps empty values; only ctx stops the loop.
func (s *LinkedInScraper) enrich(ctx context.Context, page browser.Page, jobs []scraper.Job) error {
	s.log.Info("🔎 enriching job details", zap.Int("jobs", len(jobs)))
	enriched := 0
	for i := range jobs {
		if err := ctx.Err(); err != nil {
			return err
		}
		job := &jobs[i]
		job.TechStack = nil
		job.StartupSignal = false

		desc, err := s.description(ctx, page, job.Link)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.log.Warn("⚠️ could not read job details", zap.String("link", job.Link), zap.Error(err))
		} else {
			job.Description = desc
			job.TechStack = classify.TechStack(desc)
			job.StartupSignal = classify.HasStartupSignal(desc)
			enriched++
		}

		if err := s.pacer.Pause(ctx, s.opts.Pacing.Detail); err != nil {
			return err
		}
	}
	s.log.Info("✅ enrichment finished", zap.Int("enriched", enriched), zap.Int("jobs", len(jobs)))
	return nil
}

func (s *LinkedInScraper) description(ctx context.Context, page browser.Page, link string) (string, error) {
	if err := s.pacer.Navigation(ctx); err != nil {
		return "", err
	}
	if err := page.Goto(link, browser.WaitDOMContentLoaded, s.opts.NavTimeout); err != nil {
		return "", err
	}
	if err := s.pacer.Pause(ctx, s.opts.Pacing.Detail); err != nil {
		return "", err
	}
	html, err := page.Content()
	if err != nil {
		return "", err
	}
	return Description(html)
}
