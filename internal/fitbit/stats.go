// ABOUTME: FitBit statistics over the days_summary table.
// ABOUTME: Minute-count columns convert through DayTime for duration metrics.
package fitbit

import (
	"time"

	"github.com/klmckay/healthdb/internal/garmin"
	"github.com/klmckay/healthdb/internal/models"
	"github.com/klmckay/healthdb/internal/rollup"
	"github.com/klmckay/healthdb/internal/store"
)

const daysSummary = "days_summary"

func minsToDayTime(mins *float64) *models.DayTime {
	if mins == nil {
		return nil
	}
	dt := models.FromMinutes(*mins)
	return &dt
}

// ActivityMinutesStats sums the activity minute columns over [start, end)
// and derives the composite intensity time from them.
func (f *DB) ActivityMinutesStats(start, end time.Time) (rollup.Bundle, error) {
	fairly, err := f.Aggregate(daysSummary, "fairly_active_mins", store.OpSum, start, end, false)
	if err != nil {
		return nil, err
	}
	very, err := f.Aggregate(daysSummary, "very_active_mins", store.OpSum, start, end, false)
	if err != nil {
		return nil, err
	}
	moderate := minsToDayTime(fairly)
	vigorous := minsToDayTime(very)

	intensity := models.DayTime(0)
	if moderate != nil {
		intensity = models.AddDayTime(intensity, *moderate, 1)
	}
	if vigorous != nil {
		intensity = garmin.IntensityTime(intensity, *vigorous)
	}
	return rollup.Bundle{
		"intensity_time":         &intensity,
		"moderate_activity_time": moderate,
		"vigorous_activity_time": vigorous,
	}, nil
}

// StepsAndFloorsStats sums the additive activity columns over [start, end).
func (f *DB) StepsAndFloorsStats(start, end time.Time) (rollup.Bundle, error) {
	b := rollup.Bundle{}
	for key, col := range map[string]string{
		"steps":    "steps",
		"floors":   "floors",
		"distance": "distance",
	} {
		v, err := f.Aggregate(daysSummary, col, store.OpSum, start, end, false)
		if err != nil {
			return nil, err
		}
		b[key] = v
	}
	return b, nil
}

// WeightStats aggregates body weight over [start, end) with the usual zero
// exclusion for avg and min.
func (f *DB) WeightStats(start, end time.Time) (rollup.Bundle, error) {
	avg, err := f.Aggregate(daysSummary, "weight", store.OpAvg, start, end, true)
	if err != nil {
		return nil, err
	}
	min, err := f.Aggregate(daysSummary, "weight", store.OpMin, start, end, true)
	if err != nil {
		return nil, err
	}
	max, err := f.Aggregate(daysSummary, "weight", store.OpMax, start, end, false)
	if err != nil {
		return nil, err
	}
	return rollup.Bundle{
		"weight_avg": avg,
		"weight_min": min,
		"weight_max": max,
	}, nil
}

// SleepStats aggregates asleep minutes over [start, end), presenting the
// results as durations.
func (f *DB) SleepStats(start, end time.Time) (rollup.Bundle, error) {
	avg, err := f.Aggregate(daysSummary, "asleep_mins", store.OpAvg, start, end, true)
	if err != nil {
		return nil, err
	}
	min, err := f.Aggregate(daysSummary, "asleep_mins", store.OpMin, start, end, true)
	if err != nil {
		return nil, err
	}
	max, err := f.Aggregate(daysSummary, "asleep_mins", store.OpMax, start, end, false)
	if err != nil {
		return nil, err
	}
	return rollup.Bundle{
		"sleep_avg": minsToDayTime(avg),
		"sleep_min": minsToDayTime(min),
		"sleep_max": minsToDayTime(max),
	}, nil
}

// CaloriesStats averages the calorie columns over [start, end). The total
// average only exists when both parts do.
func (f *DB) CaloriesStats(start, end time.Time) (rollup.Bundle, error) {
	bmr, err := f.Aggregate(daysSummary, "calories_bmr", store.OpAvg, start, end, false)
	if err != nil {
		return nil, err
	}
	active, err := f.Aggregate(daysSummary, "activities_calories", store.OpAvg, start, end, false)
	if err != nil {
		return nil, err
	}
	var total *float64
	if bmr != nil && active != nil {
		sum := *bmr + *active
		total = &sum
	}
	return rollup.Bundle{
		"calories_avg":        total,
		"calories_bmr_avg":    bmr,
		"calories_active_avg": active,
	}, nil
}

// RangeStats merges every FitBit statistic bundle over [start, end).
func (f *DB) RangeStats(start, end time.Time) (rollup.Bundle, error) {
	b := rollup.Bundle{}
	parts := []func(time.Time, time.Time) (rollup.Bundle, error){
		f.ActivityMinutesStats,
		f.StepsAndFloorsStats,
		f.WeightStats,
		f.SleepStats,
		f.CaloriesStats,
	}
	for _, part := range parts {
		p, err := part(start, end)
		if err != nil {
			return nil, err
		}
		b.Merge(p)
	}
	return b, nil
}

// DailyStats builds the bundle for one day.
func (f *DB) DailyStats(day time.Time) (rollup.Bundle, error) {
	start, end := rollup.DailyWindow(day)
	b, err := f.RangeStats(start, end)
	if err != nil {
		return nil, err
	}
	b["day"] = start
	return b, nil
}

// WeeklyStats builds the bundle for the 7 days starting at firstDay.
func (f *DB) WeeklyStats(firstDay time.Time) (rollup.Bundle, error) {
	start, end := rollup.WeeklyWindow(firstDay)
	b, err := f.RangeStats(start, end)
	if err != nil {
		return nil, err
	}
	b["first_day"] = start
	return b, nil
}

// MonthlyStats builds the bundle for [firstDay, lastDay].
func (f *DB) MonthlyStats(firstDay, lastDay time.Time) (rollup.Bundle, error) {
	start, end := rollup.MonthlyWindow(firstDay, lastDay)
	b, err := f.RangeStats(start, end)
	if err != nil {
		return nil, err
	}
	b["first_day"] = start
	return b, nil
}

var _ rollup.Source = (*DB)(nil)
