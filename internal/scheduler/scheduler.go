package scheduler

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"go-linkedin-harvester/internal/config"
)

// Task is one scheduled session. It is awaited before the next fire is armed.
type Task func(ctx context.Context) error

type Scheduler interface {
	Start()
	Stop()
}

// New returns the scheduler for cfg.Mode.
func New(cfg config.ScheduleConfig, task Task, log *zap.Logger) (Scheduler, error) {
	switch cfg.Mode {
	case config.ScheduleGap:
		return NewGap(cfg, task, log), nil
	case config.ScheduleDaily:
		return NewDaily(cfg, task, log)
	default:
		return nil, fmt.Errorf("%w: unknown schedule mode %q", config.ErrInvalidConfig, cfg.Mode)
	}
}

// loop holds the single pending timer shared by both modes.
type loop struct {
	task Task
	log  *zap.Logger
	// time.AfterFunc unless set
	afterFunc func(time.Duration, func()) *time.Timer

	mu      sync.Mutex
	timer   *time.Timer
	stopped bool
}

// arm schedules fire after d unless the loop is stopped.
func (l *loop) arm(d time.Duration, fire func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.stopped {
		return
	}
	if d < 0 {
		d = 0
	}
	l.log.Info("⏰ Next session scheduled", zap.Duration("in", d.Round(time.Second)),
		zap.Time("at", time.Now().Add(d)))
	after := l.afterFunc
	if after == nil {
		after = time.AfterFunc
	}
	l.timer = after(d, fire)
}

// run awaits the task, logging errors and panics, then arms the next fire.
func (l *loop) run(rearm func()) {
	defer rearm()
	defer func() {
		if r := recover(); r != nil {
			l.log.Error("💥 Scheduled session panicked", zap.Any("panic", r))
		}
	}()

	l.log.Info("🕒 Scheduled session starting")
	if err := l.task(context.Background()); err != nil {
		l.log.Error("❌ Scheduled session failed", zap.Error(err))
	}
}

// Stop cancels the pending timer. A session already running is left to finish
// and does not arm another.
func (l *loop) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stopped = true
	if l.timer != nil {
		l.timer.Stop()
		l.timer = nil
	}
	l.log.Info("🛑 Scheduler stopped")
}

func newRand() *rand.Rand {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}
