package reporting

import (
	"fmt"
	"time"
)

// Period is a reporting granularity.
type Period string

const (
	PeriodDaily   Period = "daily"
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
	PeriodYearly  Period = "yearly"
)

func ParsePeriod(s string) (Period, error) {
	switch Period(s) {
	case PeriodDaily, PeriodWeekly, PeriodMonthly, PeriodYearly:
		return Period(s), nil
	case "":
		return PeriodDaily, nil
	default:
		return "", fmt.Errorf("unsupported period: %s", s)
	}
}

// endOfDay is 23:59:59.999 to match the bucket boundaries used by exports.
func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 999*1e6, t.Location())
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// Range returns the calendar boundaries containing the reference time:
// the day itself, the Sunday-start week, the calendar month or the year.
func Range(period Period, ref time.Time) (time.Time, time.Time) {
	switch period {
	case PeriodWeekly:
		start := startOfDay(ref.AddDate(0, 0, -int(ref.Weekday())))
		return start, endOfDay(start.AddDate(0, 0, 6))
	case PeriodMonthly:
		start := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, ref.Location())
		return start, endOfDay(start.AddDate(0, 1, -1))
	case PeriodYearly:
		start := time.Date(ref.Year(), 1, 1, 0, 0, 0, 0, ref.Location())
		return start, endOfDay(time.Date(ref.Year(), 12, 31, 0, 0, 0, 0, ref.Location()))
	default:
		return startOfDay(ref), endOfDay(ref)
	}
}

// PreviousRange returns the equivalent range immediately before the one
// starting at currentStart.
func PreviousRange(period Period, currentStart time.Time) (time.Time, time.Time) {
	switch period {
	case PeriodWeekly:
		start := startOfDay(currentStart.AddDate(0, 0, -7))
		return start, endOfDay(start.AddDate(0, 0, 6))
	case PeriodMonthly:
		start := currentStart.AddDate(0, -1, 0)
		return start, endOfDay(time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, start.Location()).AddDate(0, 1, -1))
	case PeriodYearly:
		start := currentStart.AddDate(-1, 0, 0)
		return start, endOfDay(time.Date(start.Year(), 12, 31, 0, 0, 0, 0, start.Location()))
	default:
		start := startOfDay(currentStart.AddDate(0, 0, -1))
		return start, endOfDay(start)
	}
}

// BucketKey maps a time to its period bucket: YYYY-MM-DD for days, the
// bucket's Sunday for weeks, YYYY-MM for months, YYYY for years.
func BucketKey(period Period, t time.Time) string {
	switch period {
	case PeriodWeekly:
		return t.AddDate(0, 0, -int(t.Weekday())).Format("2006-01-02")
	case PeriodMonthly:
		return t.Format("2006-01")
	case PeriodYearly:
		return t.Format("2006")
	default:
		return t.Format("2006-01-02")
	}
}
