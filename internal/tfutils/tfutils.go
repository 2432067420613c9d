// Package tfutils resolves bar interval aliases and interval durations.
package tfutils

import (
	"fmt"
	"time"
)

type Interval string

const (
	M1  Interval = "1m"
	M3  Interval = "3m"
	M5  Interval = "5m"
	M15 Interval = "15m"
	M30 Interval = "30m"
	M45 Interval = "45m"
	H1  Interval = "1h"
	H2  Interval = "2h"
	H3  Interval = "3h"
	H4  Interval = "4h"
	D1  Interval = "1D"
	W1  Interval = "1W"
	Mo1 Interval = "1M"
	Mo3 Interval = "3M"
	Mo6 Interval = "6M"
	Y1  Interval = "12M"
)

// Aliases are case sensitive: "M" is a month, "m1" a minute.
var intervalTable = []struct {
	interval Interval
	duration time.Duration
	aliases  []string
}{
	{M1, time.Minute, []string{"1", "minute", "1 minute", "1m", "m1"}},
	{M3, 3 * time.Minute, []string{"3", "3 minutes", "3m", "m3"}},
	{M5, 5 * time.Minute, []string{"5", "5 minutes", "5m", "m5"}},
	{M15, 15 * time.Minute, []string{"15", "15 minutes", "15m", "m15"}},
	{M30, 30 * time.Minute, []string{"30", "30 minutes", "30m", "m30"}},
	{M45, 45 * time.Minute, []string{"45", "45 minutes", "45m", "m45"}},
	{H1, time.Hour, []string{"hour", "1 hour", "1h", "h1"}},
	{H2, 2 * time.Hour, []string{"2 hours", "2h", "h2"}},
	{H3, 3 * time.Hour, []string{"3 hours", "3h", "h3"}},
	{H4, 4 * time.Hour, []string{"4 hours", "4h", "h4"}},
	{D1, 24 * time.Hour, []string{"daily", "D1", "1D", "day", "D"}},
	{W1, 7 * 24 * time.Hour, []string{"weekly", "W1", "1W", "week", "W"}},
	// months are nominal: 30 days each, a year is 365 days
	{Mo1, 30 * 24 * time.Hour, []string{"monthly", "M1", "1M", "month", "M"}},
	{Mo3, 90 * 24 * time.Hour, []string{"quarterly", "M3", "3M", "quarter", "Q"}},
	{Mo6, 180 * 24 * time.Hour, []string{"half a year", "M6", "6M", "half", "H"}},
	{Y1, 365 * 24 * time.Hour, []string{"yearly", "M12", "12M", "year", "R"}},
}

// ParseInterval resolves any known alias to its canonical interval.
func ParseInterval(alias string) (Interval, error) {
	for _, row := range intervalTable {
		for _, a := range row.aliases {
			if a == alias {
				return row.interval, nil
			}
		}
	}
	return "", fmt.Errorf("%s is not a valid interval, use one of %v", alias, SupportedIntervals())
}

// Duration returns the bar length, or 0 for an unknown interval.
func (i Interval) Duration() time.Duration {
	for _, row := range intervalTable {
		if row.interval == i {
			return row.duration
		}
	}
	return 0
}

func (i Interval) String() string { return string(i) }

// SupportedIntervals returns all canonical intervals, shortest first.
func SupportedIntervals() []Interval {
	out := make([]Interval, len(intervalTable))
	for i, row := range intervalTable {
		out[i] = row.interval
	}
	return out
}

// IsValidInterval reports whether alias resolves to an interval.
func IsValidInterval(alias string) bool {
	_, err := ParseInterval(alias)
	return err == nil
}

// Bars returns the window covering count bars of i that ends at end.
func Bars(i Interval, end time.Time, count int) (time.Time, time.Time) {
	return end.Add(-i.Duration() * time.Duration(count)), end
}
