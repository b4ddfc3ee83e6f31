package reporter

import (
	"context"
	"errors"
	"fmt"

	"go-linkedin-harvester/internal/scraper"
)

// Report describes a finished session for the notifiers.
type Report struct {
	SessionID string
	Path      string
	Keywords  string
	Location  string
	Count     int
	Jobs      []scraper.Job
}

// Notifier delivers a session report somewhere. Delivery is best effort:
// callers log errors and carry on.
type Notifier interface {
	Name() string
	Notify(ctx context.Context, r Report) error
}

// FailureNotifier is implemented by notifiers that also report failed sessions.
type FailureNotifier interface {
	NotifyFailure(ctx context.Context, sessionID string, err error) error
}

// Multi fans a report out to every notifier and joins their errors.
type Multi []Notifier

func (m Multi) Name() string {
	return "multi"
}

func (m Multi) Notify(ctx context.Context, r Report) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, r); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", n.Name(), err))
		}
	}
	return errors.Join(errs...)
}

// NotifyFailure forwards to the members that report failures.
func (m Multi) NotifyFailure(ctx context.Context, sessionID string, err error) error {
	var errs []error
	for _, n := range m {
		f, ok := n.(FailureNotifier)
		if !ok {
			continue
		}
		if ferr := f.NotifyFailure(ctx, sessionID, err); ferr != nil {
			errs = append(errs, fmt.Errorf("%s: %w", n.Name(), ferr))
		}
	}
	return errors.Join(errs...)
}
