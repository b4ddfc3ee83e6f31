package scheduler

import (
	"context"
	"errors"
	"math/rand"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-linkedin-harvester/internal/config"
)

var ist = FixedZone(330)

func TestNextGap(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	for i := 0; i < 100; i++ {
		d := NextGap(2, 4, rnd)
		assert.GreaterOrEqual(t, d, 2*time.Hour)
		assert.LessOrEqual(t, d, 4*time.Hour)
	}
	for i := 0; i < 100; i++ {
		d := NextGap(4, 2, rnd)
		assert.GreaterOrEqual(t, d, 2*time.Hour, "inverted bounds are swapped")
		assert.LessOrEqual(t, d, 4*time.Hour)
	}
	assert.Equal(t, 24*time.Hour, NextGap(24, 24, rnd))
	assert.Equal(t, 90*time.Minute, NextGap(1.5, 1.5, rnd))
}

func TestUntilMidnight(t *testing.T) {
	now := time.Date(2026, 10, 18, 22, 30, 0, 0, time.Local)
	assert.Equal(t, 90*time.Minute, UntilMidnight(now))

	midnight := time.Date(2026, 10, 18, 0, 0, 0, 0, time.Local)
	assert.Equal(t, 24*time.Hour, UntilMidnight(midnight))
}

func TestAfterRun(t *testing.T) {
	now := time.Date(2026, 10, 18, 20, 0, 0, 0, time.Local)

	delay, count := AfterRun(0, 3, now, time.Hour)
	assert.Equal(t, time.Hour, delay)
	assert.Equal(t, 1, count)

	delay, count = AfterRun(1, 3, now, time.Hour)
	assert.Equal(t, time.Hour, delay)
	assert.Equal(t, 2, count)

	delay, count = AfterRun(2, 3, now, time.Hour)
	assert.Equal(t, 4*time.Hour+time.Hour, delay, "quota reached waits for midnight plus a gap")
	assert.Equal(t, 0, count)
}

func TestParseClock(t *testing.T) {
	c, err := ParseClock("10:00")
	require.NoError(t, err)
	assert.Equal(t, Clock{Hour: 10}, c)
	assert.Equal(t, "10:00", c.String())

	c, err = ParseClock("23:59")
	require.NoError(t, err)
	assert.Equal(t, Clock{Hour: 23, Minute: 59}, c)

	for _, bad := range []string{"", "24:00", "10", "ten:00", "10:60"} {
		_, err := ParseClock(bad)
		assert.Error(t, err, bad)
	}
}

func TestFixedZone(t *testing.T) {
	_, offset := time.Date(2026, 1, 1, 0, 0, 0, 0, ist).Zone()
	assert.Equal(t, 330*60, offset)
	assert.Equal(t, "UTC+05:30", ist.String())
	assert.Equal(t, "UTC-03:30", FixedZone(-210).String())
}

func TestNextDaily(t *testing.T) {
	clock := Clock{Hour: 10}

	// 03:00 UTC is 08:30 IST, so the run is today at 10:00 IST
	now := time.Date(2026, 10, 18, 3, 0, 0, 0, time.UTC)
	next := NextDaily(now, clock, ist)
	assert.Equal(t, time.Date(2026, 10, 18, 4, 30, 0, 0, time.UTC), next.UTC())
	assert.Equal(t, 90*time.Minute, next.Sub(now))

	// already past 10:00 IST: roll to tomorrow
	now = time.Date(2026, 10, 18, 6, 0, 0, 0, time.UTC)
	next = NextDaily(now, clock, ist)
	assert.Equal(t, time.Date(2026, 10, 19, 4, 30, 0, 0, time.UTC), next.UTC())
}

func TestNextDaily_StrictlyAfterNow(t *testing.T) {
	clock := Clock{Hour: 10}
	now := time.Date(2026, 10, 18, 10, 0, 0, 0, ist)
	next := NextDaily(now, clock, ist)
	assert.True(t, next.After(now))
	assert.Equal(t, 24*time.Hour, next.Sub(now))
}

func TestNextDaily_SelfCorrecting(t *testing.T) {
	clock := Clock{Hour: 10}
	// a run that took 40 minutes still lands on the next 10:00
	finished := time.Date(2026, 10, 18, 10, 40, 12, 0, ist)
	next := NextDaily(finished, clock, ist)
	assert.Equal(t, time.Date(2026, 10, 19, 10, 0, 0, 0, ist).UTC(), next.UTC())
}

func TestNew(t *testing.T) {
	cfg := config.Default().Schedule

	cfg.Mode = config.ScheduleGap
	s, err := New(cfg, nil, nil)
	require.NoError(t, err)
	assert.IsType(t, &Gap{}, s)

	cfg.Mode = config.ScheduleDaily
	s, err = New(cfg, nil, nil)
	require.NoError(t, err)
	assert.IsType(t, &Daily{}, s)

	cfg.DailyTime = "25:00"
	_, err = New(cfg, nil, nil)
	assert.ErrorIs(t, err, config.ErrInvalidConfig)

	cfg.Mode = "hourly"
	_, err = New(cfg, nil, nil)
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestDaily_JitterBounded(t *testing.T) {
	cfg := config.Default().Schedule
	cfg.StartupJitterSeconds = 5
	d, err := NewDaily(cfg, nil, nil)
	require.NoError(t, err)
	for i := 0; i < 100; i++ {
		j := d.jitter()
		assert.GreaterOrEqual(t, j, time.Duration(0))
		assert.LessOrEqual(t, j, 5*time.Second)
	}

	d.maxJitter = 0
	assert.Zero(t, d.jitter())
}

func fastGap(task Task, perDay int) *Gap {
	cfg := config.ScheduleConfig{Mode: config.ScheduleGap, SessionsPerDay: perDay, MinGapHours: 1, MaxGapHours: 1}
	g := NewGap(cfg, task, nil)
	g.gap = func() time.Duration { return time.Millisecond }
	return g
}

func TestGap_RearmsAfterFailureAndPanic(t *testing.T) {
	var calls atomic.Int32
	g := fastGap(func(ctx context.Context) error {
		switch calls.Add(1) {
		case 1:
			return errors.New("boom")
		case 2:
			panic("kaboom")
		}
		return nil
	}, 1000)

	g.Start()
	defer g.Stop()
	assert.Eventually(t, func() bool { return calls.Load() >= 3 }, time.Second, time.Millisecond)
}

func TestGap_StopPreventsRearm(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	g := fastGap(func(ctx context.Context) error {
		calls.Add(1)
		<-release
		return nil
	}, 1000)

	g.Start()
	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, time.Millisecond)
	g.Stop()
	close(release)

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load(), "in-flight run finishes but nothing is re-armed")
}

type armedFire struct {
	delay time.Duration
	fire  func()
}

func TestDaily_FireRearmsForNextDaySlot(t *testing.T) {
	cfg := config.Default().Schedule
	cfg.Mode = config.ScheduleDaily
	cfg.DailyTime = "09:30"
	cfg.UTCOffsetMinutes = 330
	cfg.StartupJitterSeconds = 60

	runs := 0
	d, err := NewDaily(cfg, func(ctx context.Context) error {
		runs++
		return errors.New("scrape failed")
	}, nil)
	require.NoError(t, err)

	var arms []armedFire
	d.afterFunc = func(delay time.Duration, fire func()) *time.Timer {
		arms = append(arms, armedFire{delay, fire})
		return time.NewTimer(time.Hour)
	}
	now := time.Date(2026, 10, 18, 9, 0, 0, 0, ist)
	d.now = func() time.Time { return now }
	d.rnd = rand.New(rand.NewSource(7))
	defer d.Stop()

	d.Start()
	require.Len(t, arms, 1)
	assert.GreaterOrEqual(t, arms[0].delay, 30*time.Minute)
	assert.LessOrEqual(t, arms[0].delay, 31*time.Minute)

	// fires late by the jitter; the next slot is computed from the fire time
	now = time.Date(2026, 10, 18, 9, 30, 42, 0, ist)
	arms[0].fire()

	assert.Equal(t, 1, runs)
	require.Len(t, arms, 2, "a failed run still arms the next one")
	assert.Equal(t, time.Date(2026, 10, 19, 9, 30, 0, 0, ist), now.Add(arms[1].delay))

	now = now.Add(arms[1].delay)
	arms[1].fire()
	require.Len(t, arms, 3)
	assert.Equal(t, 24*time.Hour, arms[2].delay, "jitter only applies to the first fire")
}
