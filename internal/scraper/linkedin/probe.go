package linkedin

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"go-linkedin-harvester/internal/browser"
	"go-linkedin-harvester/internal/scraper"
)

// Probe loads the first results page for q and returns every card on it,
// unfiltered. It checks the selectors against the live site.
func (s *LinkedInScraper) Probe(ctx context.Context, q scraper.Query) ([]Candidate, error) {
	session, err := s.launcher.Launch(ctx, browser.LaunchOptions{Headless: s.opts.Headless})
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}
	defer func() {
		if err := session.Close(); err != nil {
			s.log.Warn("⚠️ failed to close browser", zap.Error(err))
		}
	}()

	if !s.opts.UsePublicSearch {
		s.authenticate(session)
	}

	page, err := session.NewPage()
	if err != nil {
		return nil, fmt.Errorf("failed to create new page: %w", err)
	}
	defer page.Close()

	url := SearchURL(q, 0)
	s.log.Info("🔍 probing search page", zap.String("url", url))
	if err := s.navigate(ctx, page, url); err != nil {
		return nil, err
	}
	cards := s.collect(ctx, page, s.log, 1)
	if len(cards) == 0 {
		return nil, scraper.ErrExtractionMiss
	}
	return cards, nil
}
