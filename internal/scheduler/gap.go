package scheduler

import (
	"math/rand"
	"time"

	"go.uber.org/zap"

	"go-linkedin-harvester/internal/config"
)

// NextGap picks a uniform delay between minHours and maxHours. Inverted bounds
// are swapped; equal bounds give a fixed delay.
func NextGap(minHours, maxHours float64, rnd *rand.Rand) time.Duration {
	if minHours > maxHours {
		minHours, maxHours = maxHours, minHours
	}
	hours := minHours
	if maxHours > minHours {
		hours += rnd.Float64() * (maxHours - minHours)
	}
	return time.Duration(hours * float64(time.Hour))
}

// UntilMidnight is the time left until the next local midnight.
func UntilMidnight(now time.Time) time.Duration {
	next := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, now.Location())
	return next.Sub(now)
}

// AfterRun counts a finished session and returns the delay before the next one.
// Once perDay sessions are done, the count resets and the next session waits
// for midnight plus a gap.
func AfterRun(sessionsToday, perDay int, now time.Time, gap time.Duration) (time.Duration, int) {
	sessionsToday++
	if sessionsToday >= perDay {
		return UntilMidnight(now) + gap, 0
	}
	return gap, sessionsToday
}

// Gap runs up to SessionsPerDay sessions a day separated by random gaps.
type Gap struct {
	loop
	perDay        int
	minHours      float64
	maxHours      float64
	sessionsToday int

	rnd *rand.Rand
	now func() time.Time
	gap func() time.Duration
}

func NewGap(cfg config.ScheduleConfig, task Task, log *zap.Logger) *Gap {
	if log == nil {
		log = zap.NewNop()
	}
	g := &Gap{
		loop:     loop{task: task, log: log.With(zap.String("component", "scheduler"), zap.String("mode", config.ScheduleGap))},
		perDay:   cfg.SessionsPerDay,
		minHours: cfg.MinGapHours,
		maxHours: cfg.MaxGapHours,
		rnd:      newRand(),
		now:      time.Now,
	}
	g.gap = func() time.Duration { return NextGap(g.minHours, g.maxHours, g.rnd) }
	return g
}

func (g *Gap) Start() {
	g.log.Info("🚀 Scheduler started",
		zap.Int("sessions_per_day", g.perDay),
		zap.Float64("min_gap_hours", g.minHours),
		zap.Float64("max_gap_hours", g.maxHours))
	g.arm(g.gap(), g.fire)
}

func (g *Gap) fire() {
	g.run(func() {
		var delay time.Duration
		delay, g.sessionsToday = AfterRun(g.sessionsToday, g.perDay, g.now(), g.gap())
		g.arm(delay, g.fire)
	})
}
