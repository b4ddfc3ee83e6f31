package browser

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"
	"go.uber.org/zap"
)

const (
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36"

	antiAutomationFlag = "--disable-blink-features=AutomationControlled"
)

// PlaywrightLauncher drives a local Chromium through playwright-go.
type PlaywrightLauncher struct {
	log *zap.Logger
}

func NewPlaywrightLauncher(log *zap.Logger) *PlaywrightLauncher {
	if log == nil {
		log = zap.NewNop()
	}
	return &PlaywrightLauncher{log: log.With(zap.String("component", "browser"))}
}

func (l *PlaywrightLauncher) Launch(ctx context.Context, opts LaunchOptions) (Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("could not start playwright: %w", err)
	}

	args := append([]string{antiAutomationFlag}, opts.Args...)
	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
		Args:     args,
	})
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("could not launch chromium browser: %w", err)
	}

	viewport := opts.Viewport
	if viewport.Width == 0 || viewport.Height == 0 {
		viewport = Viewport{Width: 1366 + rand.Intn(50), Height: 768 + rand.Intn(50)}
	}
	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	browserCtx, err := browser.NewContext(playwright.BrowserNewContextOptions{
		Viewport:  &playwright.Size{Width: viewport.Width, Height: viewport.Height},
		UserAgent: playwright.String(userAgent),
	})
	if err != nil {
		browser.Close()
		pw.Stop()
		return nil, fmt.Errorf("could not create browser context: %w", err)
	}

	l.log.Info("🌐 browser launched",
		zap.Bool("headless", opts.Headless),
		zap.Int("viewport_width", viewport.Width),
		zap.Int("viewport_height", viewport.Height))

	return &playwrightSession{pw: pw, browser: browser, ctx: browserCtx}, nil
}

type playwrightSession struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	ctx     playwright.BrowserContext
}

func (s *playwrightSession) NewPage() (Page, error) {
	page, err := s.ctx.NewPage()
	if err != nil {
		return nil, fmt.Errorf("failed to create new page: %w", err)
	}
	return &playwrightPage{page: page}, nil
}

func (s *playwrightSession) AddCookies(cookies []Cookie) error {
	if len(cookies) == 0 {
		return nil
	}
	pwCookies := make([]playwright.OptionalCookie, len(cookies))
	for i, c := range cookies {
		pwCookies[i] = c.ToPlaywright()
	}
	if err := s.ctx.AddCookies(pwCookies); err != nil {
		return fmt.Errorf("failed to add cookies: %w", err)
	}
	return nil
}

// Close tears down context, browser and driver, returning every error.
func (s *playwrightSession) Close() error {
	var errs []error
	if err := s.ctx.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close context: %w", err))
	}
	if err := s.browser.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close browser: %w", err))
	}
	if err := s.pw.Stop(); err != nil {
		errs = append(errs, fmt.Errorf("stop playwright: %w", err))
	}
	return errors.Join(errs...)
}

type playwrightPage struct {
	page playwright.Page
}

func (p *playwrightPage) Goto(url string, wait WaitStrategy, timeout time.Duration) error {
	_, err := p.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: waitUntil(wait),
		Timeout:   playwright.Float(float64(timeout.Milliseconds())),
	})
	return err
}

func waitUntil(w WaitStrategy) *playwright.WaitUntilState {
	switch w {
	case WaitDOMContentLoaded:
		return playwright.WaitUntilStateDomcontentloaded
	case WaitLoad:
		return playwright.WaitUntilStateLoad
	default:
		return playwright.WaitUntilStateNetworkidle
	}
}

func (p *playwrightPage) Evaluate(script string, arg any) (any, error) {
	if arg == nil {
		return p.page.Evaluate(script)
	}
	return p.page.Evaluate(script, arg)
}

func (p *playwrightPage) WaitForSelector(candidates []string, timeout time.Duration) error {
	_, err := p.page.WaitForSelector(strings.Join(candidates, ", "), playwright.PageWaitForSelectorOptions{
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	})
	return err
}

func (p *playwrightPage) Content() (string, error) {
	return p.page.Content()
}

func (p *playwrightPage) Screenshot(path string) error {
	_, err := p.page.Screenshot(playwright.PageScreenshotOptions{
		Path:     playwright.String(path),
		FullPage: playwright.Bool(true),
	})
	return err
}

func (p *playwrightPage) Close() error {
	return p.page.Close()
}
