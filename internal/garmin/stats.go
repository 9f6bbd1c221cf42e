// ABOUTME: Per-table Garmin statistics and the reporting rollup windows.
// ABOUTME: Computed columns exist twice: as Go funcs and as SQL expressions.
package garmin

import (
	"fmt"
	"time"

	"github.com/klmckay/healthdb/internal/models"
	"github.com/klmckay/healthdb/internal/rollup"
	"github.com/klmckay/healthdb/internal/store"
)

// IntensityTime is the composite duration moderate + 2*vigorous, computed in
// seconds. IntensityTimeExpr is the same formula as a SQL expression; the two
// must stay in lockstep.
func IntensityTime(moderate, vigorous models.DayTime) models.DayTime {
	return models.AddDayTime(moderate, vigorous, 2)
}

// IntensityTimeExpr renders the intensity time formula in seconds for use
// inside aggregation queries.
func IntensityTimeExpr() string {
	return fmt.Sprintf("(%s + 2 * %s)",
		store.SecondsExpr("moderate_activity_time"),
		store.SecondsExpr("vigorous_activity_time"))
}

// StepsGoalPercent returns the percentage of the steps goal achieved.
func StepsGoalPercent(steps, goal *float64) float64 {
	return rollup.GoalPercent(steps, goal)
}

// FloorsGoalPercent returns the percentage of the floors goal achieved.
func FloorsGoalPercent(floorsUp, goal *float64) float64 {
	return rollup.GoalPercent(floorsUp, goal)
}

// IntensityTimeGoalPercent returns the percentage of the intensity time goal
// achieved, computed in seconds.
func IntensityTimeGoalPercent(achieved, goal *models.DayTime) float64 {
	return rollup.TimeGoalPercent(achieved, goal)
}

// WeightStats aggregates body weight over [start, end). Zero weights mean
// "not measured" and are excluded from avg and min; a max of zero cannot
// occur in practice, so max keeps the cheaper unfiltered form.
func (g *DB) WeightStats(start, end time.Time) (rollup.Bundle, error) {
	avg, err := g.Aggregate("weight", "weight", store.OpAvg, start, end, true)
	if err != nil {
		return nil, err
	}
	min, err := g.Aggregate("weight", "weight", store.OpMin, start, end, true)
	if err != nil {
		return nil, err
	}
	max, err := g.Aggregate("weight", "weight", store.OpMax, start, end, false)
	if err != nil {
		return nil, err
	}
	return rollup.Bundle{
		"weight_avg": avg,
		"weight_min": min,
		"weight_max": max,
	}, nil
}

// StressStats aggregates stress readings over [start, end).
func (g *DB) StressStats(start, end time.Time) (rollup.Bundle, error) {
	avg, err := g.Aggregate("stress", "stress", store.OpAvg, start, end, true)
	if err != nil {
		return nil, err
	}
	return rollup.Bundle{"stress_avg": avg}, nil
}

// SleepStats aggregates sleep durations over [start, end).
func (g *DB) SleepStats(start, end time.Time) (rollup.Bundle, error) {
	b := rollup.Bundle{}
	for col, prefix := range map[string]string{
		"total_sleep": "sleep",
		"rem_sleep":   "rem_sleep",
	} {
		for _, op := range []store.Op{store.OpAvg, store.OpMin, store.OpMax} {
			v, err := g.AggregateTime("sleep", col, op, start, end, false)
			if err != nil {
				return nil, err
			}
			b[fmt.Sprintf("%s_%s", prefix, opSuffix(op))] = v
		}
	}
	return b, nil
}

// RestingHeartRateStats aggregates the standalone resting heart rate table
// over [start, end).
func (g *DB) RestingHeartRateStats(start, end time.Time) (rollup.Bundle, error) {
	avg, err := g.Aggregate("resting_hr", "resting_heart_rate", store.OpAvg, start, end, true)
	if err != nil {
		return nil, err
	}
	min, err := g.Aggregate("resting_hr", "resting_heart_rate", store.OpMin, start, end, true)
	if err != nil {
		return nil, err
	}
	max, err := g.Aggregate("resting_hr", "resting_heart_rate", store.OpMax, start, end, false)
	if err != nil {
		return nil, err
	}
	return rollup.Bundle{
		"rhr_avg": avg,
		"rhr_min": min,
		"rhr_max": max,
	}, nil
}

// DailySummaryStats aggregates the device daily summaries over [start, end):
// sums for additive metrics, averages for per-day goals and calories, and
// duration sums computed through seconds.
func (g *DB) DailySummaryStats(start, end time.Time) (rollup.Bundle, error) {
	b := rollup.Bundle{}
	numeric := []struct {
		key, col string
		op       store.Op
	}{
		{"rhr_avg", "rhr", store.OpAvg},
		{"rhr_min", "rhr", store.OpMin},
		{"rhr_max", "rhr", store.OpMax},
		{"stress_avg", "stress_avg", store.OpAvg},
		{"steps", "steps", store.OpSum},
		{"steps_goal", "step_goal", store.OpSum},
		{"floors", "floors_up", store.OpSum},
		{"floors_goal", "floors_goal", store.OpSum},
		{"calories_goal", "calories_goal", store.OpAvg},
		{"calories_avg", "calories_total", store.OpAvg},
		{"calories_bmr_avg", "calories_bmr", store.OpAvg},
		{"calories_active_avg", "calories_active", store.OpAvg},
		{"distance", "distance", store.OpSum},
	}
	for _, n := range numeric {
		v, err := g.Aggregate("daily_summary", n.col, n.op, start, end, false)
		if err != nil {
			return nil, err
		}
		b[n.key] = v
	}

	intensity, err := g.AggregateExpr("daily_summary", IntensityTimeExpr(), store.OpSum, start, end)
	if err != nil {
		return nil, err
	}
	b["intensity_time"] = intensity

	for key, col := range map[string]string{
		"moderate_activity_time": "moderate_activity_time",
		"vigorous_activity_time": "vigorous_activity_time",
	} {
		v, err := g.AggregateTime("daily_summary", col, store.OpSum, start, end, false)
		if err != nil {
			return nil, err
		}
		b[key] = v
	}

	goal, err := g.AggregateTime("daily_summary", "intensity_time_goal", store.OpAvg, start, end, false)
	if err != nil {
		return nil, err
	}
	b["intensity_time_goal"] = goal

	addGoalPercents(b)
	return b, nil
}

// addGoalPercents derives the percentage metrics from an assembled bundle.
// A missing operand yields 0, so report rows always render.
func addGoalPercents(b rollup.Bundle) {
	steps, _ := b["steps"].(*float64)
	stepsGoal, _ := b["steps_goal"].(*float64)
	b["steps_goal_percent"] = StepsGoalPercent(steps, stepsGoal)

	floors, _ := b["floors"].(*float64)
	floorsGoal, _ := b["floors_goal"].(*float64)
	b["floors_goal_percent"] = FloorsGoalPercent(floors, floorsGoal)

	it, _ := b["intensity_time"].(*models.DayTime)
	itGoal, _ := b["intensity_time_goal"].(*models.DayTime)
	b["intensity_time_goal_percent"] = IntensityTimeGoalPercent(it, itGoal)
}

// RangeStats merges every per-table statistic bundle over [start, end).
func (g *DB) RangeStats(start, end time.Time) (rollup.Bundle, error) {
	b := rollup.Bundle{}
	parts := []func(time.Time, time.Time) (rollup.Bundle, error){
		g.WeightStats,
		g.StressStats,
		g.SleepStats,
		g.RestingHeartRateStats,
		g.DailySummaryStats,
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

// DailyStats builds the bundle for one day. The intensity time goal is
// stored weekly, so its daily form is one seventh of the stored value.
func (g *DB) DailyStats(day time.Time) (rollup.Bundle, error) {
	start, end := rollup.DailyWindow(day)
	b, err := g.RangeStats(start, end)
	if err != nil {
		return nil, err
	}
	goal, _ := b["intensity_time_goal"].(*models.DayTime)
	b["intensity_time_goal"] = rollup.WeeklyGoalPerDay(goal)
	addGoalPercents(b)
	b["day"] = start
	return b, nil
}

// WeeklyStats builds the bundle for the 7 days starting at firstDay.
func (g *DB) WeeklyStats(firstDay time.Time) (rollup.Bundle, error) {
	start, end := rollup.WeeklyWindow(firstDay)
	b, err := g.RangeStats(start, end)
	if err != nil {
		return nil, err
	}
	b["first_day"] = start
	return b, nil
}

// MonthlyStats builds the bundle for [firstDay, lastDay]. The weekly
// intensity time goal becomes the sum of four 7-day averages starting at
// firstDay, a fixed 28-day model independent of the month's actual length.
func (g *DB) MonthlyStats(firstDay, lastDay time.Time) (rollup.Bundle, error) {
	start, end := rollup.MonthlyWindow(firstDay, lastDay)
	b, err := g.RangeStats(start, end)
	if err != nil {
		return nil, err
	}
	goal, err := rollup.MonthlyWeeklyGoal(func(ws, we time.Time) (*models.DayTime, error) {
		return g.AggregateTime("daily_summary", "intensity_time_goal", store.OpAvg, ws, we, false)
	}, firstDay)
	if err != nil {
		return nil, err
	}
	b["intensity_time_goal"] = goal
	addGoalPercents(b)
	b["first_day"] = start
	return b, nil
}

func opSuffix(op store.Op) string {
	switch op {
	case store.OpAvg:
		return "avg"
	case store.OpMin:
		return "min"
	case store.OpMax:
		return "max"
	default:
		return "sum"
	}
}

var _ rollup.Source = (*DB)(nil)
