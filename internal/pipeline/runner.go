package pipeline

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

const (
	stateIdle int32 = iota
	stateRunning
)

const historySize = 200

// Runnable is anything that runs one session.
type Runnable interface {
	Run(ctx context.Context, o Override) (Result, error)
}

// Runner lets at most one session run at a time, whoever triggers it.
type Runner struct {
	session Runnable
	state   atomic.Int32
	log     *zap.Logger
	now     func() time.Time

	mu      sync.Mutex
	lastRun *Result
	lastErr string
	history []Result
}

// Status is a snapshot for the dashboard.
type Status struct {
	Running       bool    `json:"running"`
	LastRun       *Result `json:"lastRun"`
	LastError     string  `json:"lastError,omitempty"`
	SessionsToday int     `json:"sessionsToday"`
	JobsToday     int     `json:"jobsToday"`
}

func NewRunner(session Runnable, log *zap.Logger) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{
		session: session,
		log:     log.With(zap.String("component", "runner")),
		now:     time.Now,
	}
}

// TryRun runs a session now, or returns ErrBusy at once if one is in flight.
func (r *Runner) TryRun(ctx context.Context, o Override) (Result, error) {
	if !r.state.CompareAndSwap(stateIdle, stateRunning) {
		r.log.Info("⏳ Session already running, skipping trigger", zap.String("trigger", o.Trigger))
		return Result{}, ErrBusy
	}
	defer r.state.Store(stateIdle)

	res, err := r.session.Run(ctx, o)
	r.record(res, err)
	return res, err
}

func (r *Runner) Running() bool {
	return r.state.Load() == stateRunning
}

func (r *Runner) record(res Result, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		r.lastErr = err.Error()
		return
	}
	r.lastErr = ""
	res.Jobs = nil
	r.lastRun = &res
	r.history = append(r.history, res)
	if len(r.history) > historySize {
		r.history = r.history[len(r.history)-historySize:]
	}
}

func (r *Runner) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()

	st := Status{Running: r.Running(), LastError: r.lastErr}
	if r.lastRun != nil {
		last := *r.lastRun
		st.LastRun = &last
	}
	now := r.now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	for _, h := range r.history {
		if h.FinishedAt.Before(midnight) {
			continue
		}
		st.SessionsToday++
		st.JobsToday += h.Count
	}
	return st
}
