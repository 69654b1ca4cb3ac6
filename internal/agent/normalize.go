package agent

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/mateolafalce/padelpro/internal/schedule"
)

var monthNames = []string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

var (
	isoDateRe     = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	numericDateRe = regexp.MustCompile(`^(\d{1,2})[/-](\d{1,2})(?:[/-](\d{2,4}))?$`)
	inDaysRe      = regexp.MustCompile(`(?:en|dentro de)\s+(\d+)\s+d[ií]as?`)
	inWeeksRe     = regexp.MustCompile(`(?:en|dentro de)\s+(\d+)\s+semanas?`)
	dayOfMonthRe  = regexp.MustCompile(`(\d{1,2})\s+de\s+([a-z]+)(?:\s+(?:de|del)\s+(\d{4}))?`)

	rangeRe     = regexp.MustCompile(`^(\d{1,2}):(\d{2})\s*-\s*(\d{1,2}):(\d{2})$`)
	clockRe     = regexp.MustCompile(`^(\d{1,2})(?:[:.](\d{2}))?$`)
	looseTimeRe = regexp.MustCompile(`(\d{1,2})(?:[:.](\d{2}))?\s*(hs|h|horas|hrs|am|pm|a\.m\.|p\.m\.)?`)
)

// NormalizeDate resolves a Spanish date expression to YYYY-MM-DD relative to
// now, preferring future dates. ok is false when nothing could be resolved.
func NormalizeDate(input string, now time.Time) (string, bool) {
	raw := strings.TrimSpace(input)
	if isoDateRe.MatchString(raw) {
		return raw, true
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if out, ok := resolveDate(strings.ToLower(raw), today); ok {
		return out, true
	}
	return raw, false
}

// "a la mañana" and "por la mañana" name a time of day, not tomorrow.
var morningReplacer = strings.NewReplacer("la mañana", " ", "la manana", " ")

func resolveDate(s string, today time.Time) (string, bool) {
	s = morningReplacer.Replace(s)

	if m := numericDateRe.FindStringSubmatch(s); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		if m[3] != "" {
			year, _ := strconv.Atoi(m[3])
			if year < 100 {
				year += 2000
			}
			return buildDate(year, month, day, today.Location())
		}
		return futureDayOfYear(today, month, day)
	}

	if m := dayOfMonthRe.FindStringSubmatch(s); m != nil {
		if month := monthIndex(m[2]); month > 0 {
			day, _ := strconv.Atoi(m[1])
			if m[3] != "" {
				year, _ := strconv.Atoi(m[3])
				return buildDate(year, month, day, today.Location())
			}
			return futureDayOfYear(today, month, day)
		}
	}

	switch {
	case strings.Contains(s, "pasado mañana") || strings.Contains(s, "pasado manana"):
		return format(today.AddDate(0, 0, 2)), true
	case strings.Contains(s, "mañana") || strings.Contains(s, "manana"):
		return format(today.AddDate(0, 0, 1)), true
	case strings.Contains(s, "hoy"):
		return format(today), true
	}

	if m := inDaysRe.FindStringSubmatch(s); m != nil {
		n, _ := strconv.Atoi(m[1])
		return format(today.AddDate(0, 0, n)), true
	}
	if m := inWeeksRe.FindStringSubmatch(s); m != nil {
		n, _ := strconv.Atoi(m[1])
		return format(today.AddDate(0, 0, 7*n)), true
	}

	for _, word := range strings.FieldsFunc(s, notLetter) {
		if idx := weekdayIndex(word); idx >= 0 {
			return format(nextWeekday(today, idx)), true
		}
	}

	return "", false
}

// NormalizeTime turns "18", "18hs", "18.30", "6 pm" or "6 de la tarde" into
// "HH:MM". Ranges are zero padded and passed through.
func NormalizeTime(input string) (string, bool) {
	raw := strings.TrimSpace(input)
	s := strings.ToLower(raw)

	if m := rangeRe.FindStringSubmatch(s); m != nil {
		from, okFrom := clock(m[1], m[2])
		to, okTo := clock(m[3], m[4])
		if okFrom && okTo {
			return from + "-" + to, true
		}
		return raw, false
	}

	if m := clockRe.FindStringSubmatch(s); m != nil {
		if out, ok := clock(m[1], m[2]); ok {
			return out, true
		}
		return raw, false
	}

	m := looseTimeRe.FindStringSubmatch(s)
	if m == nil {
		return raw, false
	}
	hour, _ := strconv.Atoi(m[1])
	minutes := m[2]

	afternoon := strings.Contains(s, "tarde") || strings.Contains(s, "noche")
	switch m[3] {
	case "pm", "p.m.":
		afternoon = true
	case "am", "a.m.":
		if hour == 12 {
			hour = 0
		}
	}
	if afternoon && hour < 12 {
		hour += 12
	}

	if out, ok := clock(strconv.Itoa(hour), minutes); ok {
		return out, true
	}
	return raw, false
}

func clock(h, m string) (string, bool) {
	hour, err := strconv.Atoi(h)
	if err != nil || hour < 0 || hour > 23 {
		return "", false
	}
	minute := 0
	if m != "" {
		minute, err = strconv.Atoi(m)
		if err != nil || minute < 0 || minute > 59 {
			return "", false
		}
	}
	return fmt.Sprintf("%02d:%02d", hour, minute), true
}

func format(t time.Time) string {
	return t.Format("2006-01-02")
}

func buildDate(year, month, day int, loc *time.Location) (string, bool) {
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc)
	if t.Day() != day || int(t.Month()) != month {
		return "", false
	}
	return format(t), true
}

// futureDayOfYear picks this year's date, or next year's when it already passed.
func futureDayOfYear(today time.Time, month, day int) (string, bool) {
	out, ok := buildDate(today.Year(), month, day, today.Location())
	if !ok {
		// 29/02 outside a leap year
		return buildDate(today.Year()+1, month, day, today.Location())
	}
	if out < format(today) {
		return buildDate(today.Year()+1, month, day, today.Location())
	}
	return out, true
}

// nextWeekday returns the next date strictly after today falling on the
// Monday-first weekday index.
func nextWeekday(today time.Time, idx int) time.Time {
	current := (int(today.Weekday()) + 6) % 7
	diff := (idx - current + 7) % 7
	if diff == 0 {
		diff = 7
	}
	return today.AddDate(0, 0, diff)
}

// weekdayIndex matches a weekday name with or without accents.
func weekdayIndex(word string) int {
	word = stripAccents(word)
	for i, d := range schedule.Weekdays {
		if stripAccents(strings.ToLower(d)) == word {
			return i
		}
	}
	return -1
}

func monthIndex(name string) int {
	name = stripAccents(name)
	if name == "setiembre" {
		return 9
	}
	for i, m := range monthNames {
		if m == name {
			return i + 1
		}
	}
	return 0
}

func notLetter(r rune) bool {
	return !(r >= 'a' && r <= 'z' || strings.ContainsRune("áéíóúñü", r))
}

var accentReplacer = strings.NewReplacer("á", "a", "é", "e", "í", "i", "ó", "o", "ú", "u", "ü", "u")

func stripAccents(s string) string {
	return accentReplacer.Replace(s)
}
