package parser

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

var months = map[string]time.Month{
	"JANUARY":   time.January,
	"FEBRUARY":  time.February,
	"MARCH":     time.March,
	"APRIL":     time.April,
	"MAY":       time.May,
	"JUNE":      time.June,
	"JULY":      time.July,
	"AUGUST":    time.August,
	"SEPTEMBER": time.September,
	"OCTOBER":   time.October,
	"NOVEMBER":  time.November,
	"DECEMBER":  time.December,
}

// parseLongDate turns a full month-name date ("JANUARY 5, 2026", any case,
// comma optional) into a midnight timestamp in loc.
func parseLongDate(s string, loc *time.Location) (time.Time, error) {
	fields := strings.Fields(strings.ReplaceAll(s, ",", " "))
	if len(fields) != 3 {
		return time.Time{}, fmt.Errorf("malformed date %q", s)
	}

	month, ok := months[strings.ToUpper(fields[0])]
	if !ok {
		return time.Time{}, fmt.Errorf("unknown month %q", fields[0])
	}
	day, err := strconv.Atoi(fields[1])
	if err != nil {
		return time.Time{}, fmt.Errorf("malformed day %q", fields[1])
	}
	year, err := strconv.Atoi(fields[2])
	if err != nil {
		return time.Time{}, fmt.Errorf("malformed year %q", fields[2])
	}

	return time.Date(year, month, day, 0, 0, 0, 0, loc), nil
}

// daysBetween lists every date from start through end inclusive. A
// reversed range yields just the start date.
func daysBetween(start, end time.Time) []time.Time {
	var days []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	if len(days) == 0 {
		days = append(days, start)
	}
	return days
}
