package killswitch

import (
	"fmt"
	"time"
)

// TimeTrigger trips when the bar timestamp falls outside [start, end)
// clock time, or on a weekend when tradingDaysOnly is set. start/end are
// interpreted as hour:minute-of-day in the timestamp's own location.
type TimeTrigger struct {
	latch
	start, end      time.Duration // minutes since midnight, as a Duration
	tradingDaysOnly bool
}

func NewTimeTrigger(start, end time.Duration, tradingDaysOnly bool) *TimeTrigger {
	return &TimeTrigger{start: start, end: end, tradingDaysOnly: tradingDaysOnly}
}

func (tt *TimeTrigger) Name() string { return "time_window" }

func (tt *TimeTrigger) Check(_ float64, _ map[string]float64, at time.Time) bool {
	if tt.activated {
		return true
	}
	if tt.tradingDaysOnly {
		if wd := at.Weekday(); wd == time.Saturday || wd == time.Sunday {
			return tt.trip(at, fmt.Sprintf("%s is a weekend", wd))
		}
	}
	sinceMidnight := time.Duration(at.Hour())*time.Hour + time.Duration(at.Minute())*time.Minute
	if sinceMidnight < tt.start || sinceMidnight >= tt.end {
		return tt.trip(at, fmt.Sprintf("time-of-day %s outside window [%s, %s)", sinceMidnight, tt.start, tt.end))
	}
	return false
}

func (tt *TimeTrigger) Reset() { tt.reset() }
