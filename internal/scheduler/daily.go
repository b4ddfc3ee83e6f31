package scheduler

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"go-linkedin-harvester/internal/config"
)

// Clock is a wall-clock time of day.
type Clock struct {
	Hour   int
	Minute int
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// ParseClock parses "HH:MM" in 24-hour form.
func ParseClock(s string) (Clock, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return Clock{}, fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	return Clock{Hour: t.Hour(), Minute: t.Minute()}, nil
}

// FixedZone is a UTC offset with no daylight saving.
func FixedZone(offsetMinutes int) *time.Location {
	sign := "+"
	m := offsetMinutes
	if m < 0 {
		sign, m = "-", -m
	}
	return time.FixedZone(fmt.Sprintf("UTC%s%02d:%02d", sign, m/60, m%60), offsetMinutes*60)
}

// NextDaily returns the next occurrence of clock in zone strictly after now.
func NextDaily(now time.Time, clock Clock, zone *time.Location) time.Time {
	spec, err := cron.ParseStandard(fmt.Sprintf("%d %d * * *", clock.Minute, clock.Hour))
	if err != nil {
		// unreachable for a clock built by ParseClock
		panic(err)
	}
	s := spec.(*cron.SpecSchedule)
	s.Location = zone
	return s.Next(now)
}

// Daily runs one session a day at a fixed time in a fixed UTC offset.
type Daily struct {
	loop
	clock     Clock
	zone      *time.Location
	maxJitter time.Duration

	rnd *rand.Rand
	now func() time.Time
}

func NewDaily(cfg config.ScheduleConfig, task Task, log *zap.Logger) (*Daily, error) {
	if log == nil {
		log = zap.NewNop()
	}
	clock, err := ParseClock(cfg.DailyTime)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", config.ErrInvalidConfig, err)
	}
	return &Daily{
		loop:      loop{task: task, log: log.With(zap.String("component", "scheduler"), zap.String("mode", config.ScheduleDaily))},
		clock:     clock,
		zone:      FixedZone(cfg.UTCOffsetMinutes),
		maxJitter: time.Duration(cfg.StartupJitterSeconds) * time.Second,
		rnd:       newRand(),
		now:       time.Now,
	}, nil
}

func (d *Daily) untilNext() time.Duration {
	now := d.now()
	return NextDaily(now, d.clock, d.zone).Sub(now)
}

// jitter is a random delay in [0, maxJitter].
func (d *Daily) jitter() time.Duration {
	if d.maxJitter <= 0 {
		return 0
	}
	return time.Duration(d.rnd.Int63n(int64(d.maxJitter) + 1))
}

func (d *Daily) Start() {
	jitter := d.jitter()
	d.log.Info("🚀 Scheduler started",
		zap.String("time", d.clock.String()),
		zap.String("zone", d.zone.String()),
		zap.Duration("jitter", jitter))
	d.arm(d.untilNext()+jitter, d.fire)
}

func (d *Daily) fire() {
	d.run(func() {
		d.arm(d.untilNext(), d.fire)
	})
}
