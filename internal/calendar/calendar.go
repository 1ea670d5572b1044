// Package calendar renders the month grid used to pick a transaction date.
package calendar

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	// Ignore is the payload of cells that carry no action.
	Ignore = "ignore"

	dayPrefix   = "calendar-day-"
	monthPrefix = "calendar-month-"
)

var weekdays = [7]string{"Mo", "Tu", "We", "Th", "Fr", "Sa", "Su"}

// Cell is one button of the grid.
type Cell struct {
	Label   string
	Payload string
}

// Grid is the rendered month: label row, weekday row, week rows and a
// navigation row.
type Grid [][]Cell

// Render builds the grid for the given month. Equal input always yields an
// equal grid.
func Render(year int, month time.Month) Grid {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	days := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
	offset := (int(first.Weekday()) + 6) % 7

	grid := Grid{
		{{Label: fmt.Sprintf("%s %d", month, year), Payload: Ignore}},
	}
	header := make([]Cell, 0, len(weekdays))
	for _, wd := range weekdays {
		header = append(header, Cell{Label: wd, Payload: Ignore})
	}
	grid = append(grid, header)

	week := make([]Cell, 0, 7)
	for i := 0; i < offset; i++ {
		week = append(week, blank())
	}
	for d := 1; d <= days; d++ {
		week = append(week, Cell{Label: strconv.Itoa(d), Payload: DayPayload(year, month, d)})
		if len(week) == 7 {
			grid = append(grid, week)
			week = make([]Cell, 0, 7)
		}
	}
	if len(week) > 0 {
		for len(week) < 7 {
			week = append(week, blank())
		}
		grid = append(grid, week)
	}

	py, pm := Prev(year, month)
	ny, nm := Next(year, month)
	grid = append(grid, []Cell{
		{Label: "<", Payload: MonthPayload(py, pm)},
		{Label: ">", Payload: MonthPayload(ny, nm)},
	})
	return grid
}

func blank() Cell {
	return Cell{Label: " ", Payload: Ignore}
}

// Prev returns the month before (year, month).
func Prev(year int, month time.Month) (int, time.Month) {
	if month == time.January {
		return year - 1, time.December
	}
	return year, month - 1
}

// Next returns the month after (year, month).
func Next(year int, month time.Month) (int, time.Month) {
	if month == time.December {
		return year + 1, time.January
	}
	return year, month + 1
}

// DayPayload encodes a day button as calendar-day-Y-M-D without padding.
func DayPayload(year int, month time.Month, day int) string {
	return fmt.Sprintf("%s%d-%d-%d", dayPrefix, year, int(month), day)
}

// MonthPayload encodes a navigation button as calendar-month-Y-M.
func MonthPayload(year int, month time.Month) string {
	return fmt.Sprintf("%s%d-%d", monthPrefix, year, int(month))
}

// IsDay reports whether payload looks like a day selection.
func IsDay(payload string) bool {
	return strings.HasPrefix(payload, dayPrefix)
}

// IsMonth reports whether payload looks like a month navigation.
func IsMonth(payload string) bool {
	return strings.HasPrefix(payload, monthPrefix)
}

// ParseDay decodes a day payload. The date must exist in the calendar.
func ParseDay(payload string) (time.Time, error) {
	rest, ok := strings.CutPrefix(payload, dayPrefix)
	if !ok {
		return time.Time{}, fmt.Errorf("calendar: not a day payload: %q", payload)
	}
	nums, err := ints(rest, 3)
	if err != nil {
		return time.Time{}, fmt.Errorf("calendar: bad day payload %q: %w", payload, err)
	}
	y, m, d := nums[0], time.Month(nums[1]), nums[2]
	if m < time.January || m > time.December {
		return time.Time{}, fmt.Errorf("calendar: month out of range in %q", payload)
	}
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	if t.Year() != y || t.Month() != m || t.Day() != d {
		return time.Time{}, fmt.Errorf("calendar: no such date %q", payload)
	}
	return t, nil
}

// ParseMonth decodes a navigation payload.
func ParseMonth(payload string) (int, time.Month, error) {
	rest, ok := strings.CutPrefix(payload, monthPrefix)
	if !ok {
		return 0, 0, fmt.Errorf("calendar: not a month payload: %q", payload)
	}
	nums, err := ints(rest, 2)
	if err != nil {
		return 0, 0, fmt.Errorf("calendar: bad month payload %q: %w", payload, err)
	}
	m := time.Month(nums[1])
	if m < time.January || m > time.December {
		return 0, 0, fmt.Errorf("calendar: month out of range in %q", payload)
	}
	return nums[0], m, nil
}

func ints(s string, n int) ([]int, error) {
	parts := strings.Split(s, "-")
	if len(parts) != n {
		return nil, fmt.Errorf("want %d fields, got %d", n, len(parts))
	}
	out := make([]int, 0, n)
	for _, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil || v < 0 {
			return nil, fmt.Errorf("invalid number %q", p)
		}
		out = append(out, v)
	}
	return out, nil
}
