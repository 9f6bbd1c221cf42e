// ABOUTME: CLI command for aggregated health statistics.
// ABOUTME: Prints daily, weekly, monthly, or custom-range stat bundles.
package main

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/klmckay/healthdb/internal/models"
	"github.com/klmckay/healthdb/internal/rollup"
)

const dateFormat = "2006-01-02"

var (
	statsDate  string
	statsStart string
	statsEnd   string
)

var statsCmd = &cobra.Command{
	Use:   "stats <vendor> <window>",
	Short: "Show aggregated statistics",
	Long: `Show aggregated statistics for a vendor store.

WINDOWS:

  daily      One day (--date, default today)
  weekly     Seven days starting at --date (default the current week's Monday)
  monthly    The calendar month containing --date (default this month)
  range      Custom window from --start (inclusive) to --end (exclusive)

Weekly goals are apportioned per day for daily windows. Monthly goals
use four weekly averages over the month.

EXAMPLES:

  healthdb stats garmin daily
  healthdb stats garmin daily --date 2026-08-15
  healthdb stats garmin weekly --date 2026-08-24
  healthdb stats fitbit monthly --date 2026-08-01
  healthdb stats garmin range --start 2026-01-01 --end 2026-07-01`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		vendor, window := args[0], args[1]

		src, db, err := openVendor(vendor, nil)
		if err != nil {
			return err
		}
		defer db.Close()

		var bundle rollup.Bundle
		switch window {
		case "daily":
			day, err := anchorDate(statsDate, models.Date(time.Now()))
			if err != nil {
				return err
			}
			bundle, err = src.DailyStats(day)
			if err != nil {
				return fmt.Errorf("daily stats: %w", err)
			}
		case "weekly":
			today := models.Date(time.Now())
			monday := today.AddDate(0, 0, -((int(today.Weekday()) + 6) % 7))
			firstDay, err := anchorDate(statsDate, monday)
			if err != nil {
				return err
			}
			bundle, err = src.WeeklyStats(firstDay)
			if err != nil {
				return fmt.Errorf("weekly stats: %w", err)
			}
		case "monthly":
			anchor, err := anchorDate(statsDate, models.Date(time.Now()))
			if err != nil {
				return err
			}
			first := time.Date(anchor.Year(), anchor.Month(), 1, 0, 0, 0, 0, anchor.Location())
			last := first.AddDate(0, 1, -1)
			bundle, err = src.MonthlyStats(first, last)
			if err != nil {
				return fmt.Errorf("monthly stats: %w", err)
			}
		case "range":
			if statsStart == "" || statsEnd == "" {
				return fmt.Errorf("range window requires --start and --end")
			}
			start, err := time.Parse(dateFormat, statsStart)
			if err != nil {
				return fmt.Errorf("invalid --start %q (use YYYY-MM-DD)", statsStart)
			}
			end, err := time.Parse(dateFormat, statsEnd)
			if err != nil {
				return fmt.Errorf("invalid --end %q (use YYYY-MM-DD)", statsEnd)
			}
			bundle, err = src.RangeStats(start, end)
			if err != nil {
				return fmt.Errorf("range stats: %w", err)
			}
		default:
			return fmt.Errorf("unknown window: %s (use daily, weekly, monthly, or range)", window)
		}

		printBundle(bundle)
		return nil
	},
}

func anchorDate(flag string, fallback time.Time) (time.Time, error) {
	if flag == "" {
		return fallback, nil
	}
	t, err := time.Parse(dateFormat, flag)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --date %q (use YYYY-MM-DD)", flag)
	}
	return t, nil
}

func printBundle(b rollup.Bundle) {
	keys := make([]string, 0, len(b))
	for k := range b {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	faint := color.New(color.Faint)
	for _, key := range keys {
		value := formatStat(b[key])
		if value == "" {
			faint.Printf("%-28s -\n", key)
			continue
		}
		fmt.Printf("%-28s %s\n", key, value)
	}
}

// formatStat renders one bundle value; empty string means no data.
func formatStat(value any) string {
	switch v := value.(type) {
	case *float64:
		if v == nil {
			return ""
		}
		return strconv.FormatFloat(*v, 'f', -1, 64)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case *models.DayTime:
		if v == nil {
			return ""
		}
		return v.String()
	case models.DayTime:
		return v.String()
	case time.Time:
		return v.Format(dateFormat)
	case string:
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}

func init() {
	statsCmd.Flags().StringVar(&statsDate, "date", "", "anchor date (YYYY-MM-DD, default today)")
	statsCmd.Flags().StringVar(&statsStart, "start", "", "range start date, inclusive (YYYY-MM-DD)")
	statsCmd.Flags().StringVar(&statsEnd, "end", "", "range end date, exclusive (YYYY-MM-DD)")
	rootCmd.AddCommand(statsCmd)
}
