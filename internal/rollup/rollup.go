// ABOUTME: Rollup bundles: per-range statistic maps and combination rules.
// ABOUTME: Goal apportionment converts weekly goals to daily and 28-day forms.
package rollup

import (
	"math"
	"time"

	"github.com/klmckay/healthdb/internal/models"
)

// Bundle maps metric names to computed values. Values are *float64 for
// numeric metrics, *models.DayTime for durations, and time.Time for the
// range markers; a nil pointer means no qualifying rows existed.
type Bundle map[string]any

// Merge copies every entry of src into b, overwriting on collision.
func (b Bundle) Merge(src Bundle) {
	for k, v := range src {
		b[k] = v
	}
}

// Source produces statistic bundles for the standard reporting windows.
// Each vendor store implements it over its own tables.
type Source interface {
	DailyStats(day time.Time) (Bundle, error)
	WeeklyStats(firstDay time.Time) (Bundle, error)
	MonthlyStats(firstDay, lastDay time.Time) (Bundle, error)
	RangeStats(start, end time.Time) (Bundle, error)
}

// DailyWindow returns the half-open range covering one calendar day.
func DailyWindow(day time.Time) (time.Time, time.Time) {
	start := models.Date(day)
	return start, start.AddDate(0, 0, 1)
}

// WeeklyWindow returns the half-open 7-day range starting at firstDay.
func WeeklyWindow(firstDay time.Time) (time.Time, time.Time) {
	start := models.Date(firstDay)
	return start, start.AddDate(0, 0, 7)
}

// MonthlyWindow returns the half-open range from firstDay through lastDay.
func MonthlyWindow(firstDay, lastDay time.Time) (time.Time, time.Time) {
	return models.Date(firstDay), models.Date(lastDay).AddDate(0, 0, 1)
}

// GoalPercent returns round(achieved*100/goal). When either operand is
// missing, or the goal is zero, the percentage is 0 rather than an error so
// report rows always render.
func GoalPercent(achieved, goal *float64) float64 {
	if achieved == nil || goal == nil || *goal == 0 {
		return 0
	}
	return math.Round(*achieved * 100 / *goal)
}

// TimeGoalPercent is GoalPercent for duration metrics, computed in seconds.
func TimeGoalPercent(achieved, goal *models.DayTime) float64 {
	if achieved == nil || goal == nil || goal.Seconds() == 0 {
		return 0
	}
	return math.Round(float64(achieved.Seconds()) * 100 / float64(goal.Seconds()))
}

// WeeklyGoalPerDay apportions a weekly goal to one day.
func WeeklyGoalPerDay(goal *models.DayTime) *models.DayTime {
	if goal == nil {
		return nil
	}
	dt := models.DivideDayTime(*goal, 7)
	return &dt
}

// WeeklyAverager produces the average of a weekly-scoped goal over one
// sub-window of a month.
type WeeklyAverager func(start, end time.Time) (*models.DayTime, error)

// MonthlyWeeklyGoal evaluates a weekly-scoped goal over a monthly range as
// the sum of four weekly averages taken over four consecutive 7-day windows
// starting at the range's first day. The model is a fixed 28 days regardless
// of the calendar month's actual length.
func MonthlyWeeklyGoal(avg WeeklyAverager, firstDay time.Time) (*models.DayTime, error) {
	start := models.Date(firstDay)
	total := models.DayTime(0)
	any := false
	for week := 0; week < 4; week++ {
		ws := start.AddDate(0, 0, 7*week)
		we := start.AddDate(0, 0, 7*(week+1))
		v, err := avg(ws, we)
		if err != nil {
			return nil, err
		}
		if v != nil {
			total = models.AddDayTime(total, *v, 1)
			any = true
		}
	}
	if !any {
		return nil, nil
	}
	return &total, nil
}
