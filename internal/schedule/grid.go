// Package schedule holds the bookable time-range grid shared by availability checks,
// the booking agent prompt, slot listings and reference-data seeding.
package schedule

import (
	"fmt"
	"strings"
	"time"
)

const (
	GridSpaced = "spaced"
	GridHourly = "hourly"
)

// Grid is an ordered set of "HH:MM-HH:MM" ranges.
type Grid struct {
	name   string
	ranges []string
}

var (
	spaced = Grid{name: GridSpaced, ranges: []string{
		"08:00-09:00", "10:00-11:00", "12:00-13:00", "14:00-15:00",
		"16:00-17:00", "18:00-19:00", "20:00-21:00", "22:00-23:00",
	}}
	hourly = Grid{name: GridHourly, ranges: hourlyRanges(8, 23)}
)

func hourlyRanges(from, to int) []string {
	out := make([]string, 0, to-from)
	for h := from; h < to; h++ {
		out = append(out, fmt.Sprintf("%02d:00-%02d:00", h, h+1))
	}
	return out
}

// Spaced is eight one-hour ranges every two hours from 08:00 to 23:00.
func Spaced() Grid { return spaced }

// Hourly is fifteen one-hour ranges from 08:00 to 23:00.
func Hourly() Grid { return hourly }

func GridByName(name string) (Grid, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", GridSpaced:
		return spaced, nil
	case GridHourly:
		return hourly, nil
	default:
		return Grid{}, fmt.Errorf("unknown slot grid %q", name)
	}
}

func (g Grid) Name() string { return g.name }

// Ranges returns a copy of the ranges in order.
func (g Grid) Ranges() []string {
	out := make([]string, len(g.ranges))
	copy(out, g.ranges)
	return out
}

func (g Grid) Contains(timeRange string) bool {
	for _, r := range g.ranges {
		if r == timeRange {
			return true
		}
	}
	return false
}

// Normalize maps an exact range to itself and a bare start time to the range
// beginning at that time.
func (g Grid) Normalize(input string) (string, bool) {
	input = strings.TrimSpace(input)
	for _, r := range g.ranges {
		if input == r || input == StartOf(r) {
			return r, true
		}
	}
	return input, false
}

// Joined is the comma separated list used in messages and prompts.
func (g Grid) Joined() string {
	return strings.Join(g.ranges, ", ")
}

func StartOf(timeRange string) string {
	start, _, _ := strings.Cut(timeRange, "-")
	return start
}

// Weekdays in storage order, Monday first.
var Weekdays = []string{"Lunes", "Martes", "Miércoles", "Jueves", "Viernes", "Sábado", "Domingo"}

func WeekdayName(t time.Time) string {
	// time.Weekday starts on Sunday
	return Weekdays[(int(t.Weekday())+6)%7]
}

// WeekdayIndex returns the Monday-first position of a weekday name, or -1.
func WeekdayIndex(name string) int {
	for i, d := range Weekdays {
		if strings.EqualFold(d, name) {
			return i
		}
	}
	return -1
}
