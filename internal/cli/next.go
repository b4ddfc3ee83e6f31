package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"go-linkedin-harvester/internal/config"
	"go-linkedin-harvester/internal/scheduler"
)

var nextCmd = &cobra.Command{
	Use:   "next",
	Short: "Print when the daemon would run next",
	Args:  cobra.NoArgs,
	RunE:  runNext,
}

func runNext(cmd *cobra.Command, args []string) error {
	s := cfg.Schedule
	now := time.Now()

	switch s.Mode {
	case config.ScheduleDaily:
		clock, err := scheduler.ParseClock(s.DailyTime)
		if err != nil {
			return err
		}
		zone := scheduler.FixedZone(s.UTCOffsetMinutes)
		next := scheduler.NextDaily(now, clock, zone)
		fmt.Printf("Daily at %s %s: next run %s (in %s), plus up to %ds startup jitter\n",
			clock, zone, next.Format(time.RFC1123), next.Sub(now).Round(time.Second), s.StartupJitterSeconds)
	case config.ScheduleGap:
		fmt.Printf("Every %.1f-%.1f hours, %d sessions per day; the first run waits one gap after start\n",
			s.MinGapHours, s.MaxGapHours, s.SessionsPerDay)
		fmt.Printf("Today's quota resets in %s\n", scheduler.UntilMidnight(now).Round(time.Minute))
	default:
		return fmt.Errorf("%w: unknown schedule mode %q", config.ErrInvalidConfig, s.Mode)
	}
	return nil
}
