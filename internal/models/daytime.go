// ABOUTME: DayTime value type for durations stored as clock times.
// ABOUTME: All arithmetic goes through whole seconds, never clock math.
package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DayTime is an elapsed duration persisted in HH:MM:SS clock-time form.
// Stored column values stay below 24 hours; computed values (sums over a
// range) may exceed it and format with a larger hour field.
type DayTime int

// DayTimeMax is the largest value a stored time-of-day column may hold.
const DayTimeMax = DayTime(24*3600 - 1)

// FromSeconds returns the DayTime for a whole number of seconds.
// Negative inputs clamp to zero.
func FromSeconds(secs int) DayTime {
	if secs < 0 {
		return 0
	}
	return DayTime(secs)
}

// FromMinutes converts a (possibly fractional) minute count to a DayTime.
func FromMinutes(mins float64) DayTime {
	return FromSeconds(int(mins * 60))
}

// FromDuration converts a time.Duration, truncating to whole seconds.
func FromDuration(d time.Duration) DayTime {
	return FromSeconds(int(d / time.Second))
}

// ParseDayTime parses an HH:MM:SS string. Every field must be unsigned
// digits; trailing or leading text is an error, not ignored.
func ParseDayTime(s string) (DayTime, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("parse day time %q: want HH:MM:SS", s)
	}
	var fields [3]int
	for i, p := range parts {
		if p == "" {
			return 0, fmt.Errorf("parse day time %q: want HH:MM:SS", s)
		}
		for _, r := range p {
			if r < '0' || r > '9' {
				return 0, fmt.Errorf("parse day time %q: want HH:MM:SS", s)
			}
		}
		v, err := strconv.Atoi(p)
		if err != nil {
			return 0, fmt.Errorf("parse day time %q: %w", s, err)
		}
		fields[i] = v
	}
	h, m, sec := fields[0], fields[1], fields[2]
	if m > 59 || sec > 59 {
		return 0, fmt.Errorf("parse day time %q: out of range", s)
	}
	return DayTime(h*3600 + m*60 + sec), nil
}

// Seconds returns the duration in whole seconds.
func (d DayTime) Seconds() int {
	return int(d)
}

// Minutes returns the duration in fractional minutes.
func (d DayTime) Minutes() float64 {
	return float64(d) / 60
}

// IsZero reports whether the duration is the 00:00:00 sentinel.
func (d DayTime) IsZero() bool {
	return d == 0
}

// InDayRange reports whether the value fits in a stored time-of-day column.
func (d DayTime) InDayRange() bool {
	return d >= 0 && d <= DayTimeMax
}

// String formats as HH:MM:SS. Hours do not wrap at 24.
func (d DayTime) String() string {
	s := int(d)
	return fmt.Sprintf("%02d:%02d:%02d", s/3600, (s/60)%60, s%60)
}

// MarshalJSON renders the HH:MM:SS form.
func (d DayTime) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON accepts either the HH:MM:SS form or raw seconds.
func (d *DayTime) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' {
		parsed, err := ParseDayTime(s[1 : len(s)-1])
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	}
	var secs int
	if _, err := fmt.Sscanf(s, "%d", &secs); err != nil {
		return fmt.Errorf("unmarshal day time %s: %w", s, err)
	}
	*d = FromSeconds(secs)
	return nil
}

// AddDayTime returns a + multiplier*b computed in seconds.
func AddDayTime(a, b DayTime, multiplier int) DayTime {
	return FromSeconds(a.Seconds() + multiplier*b.Seconds())
}

// DivideDayTime returns d/divisor computed in seconds.
func DivideDayTime(d DayTime, divisor int) DayTime {
	if divisor == 0 {
		return 0
	}
	return FromSeconds(d.Seconds() / divisor)
}
