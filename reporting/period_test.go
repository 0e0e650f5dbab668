package reporting

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParsePeriod(t *testing.T) {
	p, err := ParsePeriod("weekly")
	assert.NoError(t, err)
	assert.Equal(t, PeriodWeekly, p)

	p, err = ParsePeriod("")
	assert.NoError(t, err)
	assert.Equal(t, PeriodDaily, p)

	_, err = ParsePeriod("fortnightly")
	assert.Error(t, err)
}

func TestRangeDaily(t *testing.T) {
	ref := time.Date(2024, 1, 10, 14, 30, 0, 0, time.UTC)
	start, end := Range(PeriodDaily, ref)
	assert.Equal(t, "2024-01-10 00:00:00", start.Format("2006-01-02 15:04:05"))
	assert.Equal(t, "2024-01-10 23:59:59", end.Format("2006-01-02 15:04:05"))
}

func TestRangeWeeklyStartsSunday(t *testing.T) {
	// 2024-01-10 is a Wednesday; its week starts Sunday 2024-01-07.
	ref := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	start, end := Range(PeriodWeekly, ref)
	assert.Equal(t, "2024-01-07", start.Format("2006-01-02"))
	assert.Equal(t, time.Sunday, start.Weekday())
	assert.Equal(t, "2024-01-13", end.Format("2006-01-02"))
}

func TestRangeMonthlyLeapFebruary(t *testing.T) {
	ref := time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC)
	start, end := Range(PeriodMonthly, ref)
	assert.Equal(t, "2024-02-01", start.Format("2006-01-02"))
	assert.Equal(t, "2024-02-29", end.Format("2006-01-02"))
}

func TestRangeYearly(t *testing.T) {
	ref := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	start, end := Range(PeriodYearly, ref)
	assert.Equal(t, "2024-01-01", start.Format("2006-01-02"))
	assert.Equal(t, "2024-12-31", end.Format("2006-01-02"))
}

func TestPreviousRange(t *testing.T) {
	start, end := PreviousRange(PeriodMonthly, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, "2024-02-01", start.Format("2006-01-02"))
	assert.Equal(t, "2024-02-29", end.Format("2006-01-02"))

	start, end = PreviousRange(PeriodWeekly, time.Date(2024, 1, 7, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, "2023-12-31", start.Format("2006-01-02"))
	assert.Equal(t, "2024-01-06", end.Format("2006-01-02"))

	start, end = PreviousRange(PeriodDaily, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, "2023-12-31", start.Format("2006-01-02"))
	assert.Equal(t, "2023-12-31", end.Format("2006-01-02"))
}

func TestBucketKey(t *testing.T) {
	wed := time.Date(2024, 1, 10, 18, 0, 0, 0, time.UTC)
	assert.Equal(t, "2024-01-10", BucketKey(PeriodDaily, wed))
	assert.Equal(t, "2024-01-07", BucketKey(PeriodWeekly, wed))
	assert.Equal(t, "2024-01", BucketKey(PeriodMonthly, wed))
	assert.Equal(t, "2024", BucketKey(PeriodYearly, wed))
}
