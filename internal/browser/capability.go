package browser

import (
	"context"
	"time"
)

// WaitStrategy is the load state a navigation waits for.
type WaitStrategy int

const (
	WaitNetworkIdle WaitStrategy = iota
	WaitDOMContentLoaded
	WaitLoad
)

func (w WaitStrategy) String() string {
	switch w {
	case WaitNetworkIdle:
		return "networkidle"
	case WaitDOMContentLoaded:
		return "domcontentloaded"
	case WaitLoad:
		return "load"
	default:
		return "unknown"
	}
}

type Viewport struct {
	Width  int
	Height int
}

type LaunchOptions struct {
	Headless  bool
	Args      []string
	UserAgent string
	// Zero means a randomized desktop size.
	Viewport Viewport
}

// Launcher starts a browser session. The scraper depends only on this
// surface, so tests can swap in a fake.
type Launcher interface {
	Launch(ctx context.Context, opts LaunchOptions) (Session, error)
}

type Session interface {
	NewPage() (Page, error)
	AddCookies(cookies []Cookie) error
	Close() error
}

type Page interface {
	Goto(url string, wait WaitStrategy, timeout time.Duration) error
	// Evaluate runs a JS function expression with one argument and returns its JSON-decoded result.
	Evaluate(script string, arg any) (any, error)
	// WaitForSelector waits until any of the candidates matches.
	WaitForSelector(candidates []string, timeout time.Duration) error
	Content() (string, error)
	Screenshot(path string) error
	Close() error
}
