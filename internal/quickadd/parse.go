// Package quickadd turns a one-line description such as
// "report for client tomorrow 2pm 1h p2 work" into task fields.
//
// Recognized tokens are removed from the text and what remains becomes the
// task name:
//
//   - priority: p1 .. p5 (default 3)
//   - duration: 90m, 1h, 2h30m, 1h 15m (default 30 minutes)
//   - date: today, tomorrow (tmr, tmrw), yesterday, in N days, monday,
//     next friday, next week tue (default today)
//   - time: 14:00, 9am, 2:30pm
//   - category: work, study, personal, home, finance, health, general
//
// Dates are not checked against the current day.
package quickadd

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/GoCodeAlone/tasker/task"
)

const (
	defaultPriority = 3
	defaultDuration = 30
	dateLayout      = "2006-01-02"
)

// Categories lists the category words recognized in quick-add text, in match
// order.
var Categories = []string{"work", "study", "personal", "home", "finance", "health", "general"}

type weekdayName struct {
	name     string
	day      time.Weekday
	bare     *regexp.Regexp
	nextWeek *regexp.Regexp
}

// Checked in this order; full names come before their abbreviations.
var weekdays = []weekdayName{
	{name: "monday", day: time.Monday}, {name: "mon", day: time.Monday},
	{name: "tuesday", day: time.Tuesday}, {name: "tue", day: time.Tuesday}, {name: "tues", day: time.Tuesday},
	{name: "wednesday", day: time.Wednesday}, {name: "wed", day: time.Wednesday},
	{name: "thursday", day: time.Thursday}, {name: "thu", day: time.Thursday}, {name: "thur", day: time.Thursday}, {name: "thurs", day: time.Thursday},
	{name: "friday", day: time.Friday}, {name: "fri", day: time.Friday},
	{name: "saturday", day: time.Saturday}, {name: "sat", day: time.Saturday},
	{name: "sunday", day: time.Sunday}, {name: "sun", day: time.Sunday},
}

const dayAlt = `monday|mon|tuesday|tues|tue|wednesday|wed|thursday|thurs|thur|thu|friday|fri|saturday|sat|sunday|sun`

var (
	rePriority    = regexp.MustCompile(`\bp([1-5])\b`)
	reHours       = regexp.MustCompile(`\b(\d+)\s*h(?:\s*(\d+)\s*m)?\b`)
	reMinutes     = regexp.MustCompile(`\b(\d+)\s*m\b`)
	reInDays      = regexp.MustCompile(`\bin\s+(\d+)\s+days?\b`)
	reClock24     = regexp.MustCompile(`\b([01]?\d|2[0-3]):([0-5]\d)\b`)
	reClock12     = regexp.MustCompile(`\b(\d{1,2})(?::(\d{2}))?\s*(am|pm)\b`)
	reTomorrow    = regexp.MustCompile(`\b(tomorrow|tmr|tmrw|tommow)\b`)
	reToday       = regexp.MustCompile(`\btoday\b`)
	reYesterday   = regexp.MustCompile(`\byesterday\b`)
	reCategoryFor = make(map[string]*regexp.Regexp, len(Categories))

	stripPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bp[1-5]\b`),
		regexp.MustCompile(`(?i)\b\d+\s*h(?:\s*\d+\s*m)?\b`),
		regexp.MustCompile(`(?i)\b\d+\s*m\b`),
		regexp.MustCompile(`(?i)\b(today|tomorrow|tmr|tmrw|tommow|yesterday)\b`),
		regexp.MustCompile(`(?i)\bin\s+\d+\s+days?\b`),
		regexp.MustCompile(`(?i)\bnext\s+week\s+(` + dayAlt + `)\b`),
		regexp.MustCompile(`(?i)\bnext\s+(` + dayAlt + `)\b`),
		regexp.MustCompile(`(?i)\b(` + dayAlt + `)\b`),
		regexp.MustCompile(`(?i)\b([01]?\d|2[0-3]):([0-5]\d)\b`),
		regexp.MustCompile(`(?i)\b(\d{1,2})(?::(\d{2}))?\s*(am|pm)\b`),
		regexp.MustCompile(`(?i)\bfor\b`),
		regexp.MustCompile(`(?i)\bat\b`),
	}
)

func init() {
	for i := range weekdays {
		w := &weekdays[i]
		w.bare = regexp.MustCompile(`\b` + w.name + `\b`)
		w.nextWeek = regexp.MustCompile(`\bnext\s+week\s+` + w.name + `\b`)
	}
	for _, c := range Categories {
		re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(c) + `\b`)
		reCategoryFor[c] = re
		stripPatterns = append(stripPatterns, re)
	}
}

// Parse extracts task fields from text, resolving relative dates against now.
// It fails with task.ErrInvalidInput when nothing is left for the name.
func Parse(text string, now time.Time) (task.Fields, error) {
	raw := strings.TrimSpace(text)
	lower := strings.ToLower(raw)

	f := task.Fields{
		Category:     task.DefaultCategory,
		Priority:     defaultPriority,
		DurationMins: defaultDuration,
		Deadline:     parseDate(lower, now),
		StartTime:    parseTime(lower),
		Status:       task.StatusActive,
	}
	if m := rePriority.FindStringSubmatch(lower); m != nil {
		f.Priority, _ = strconv.Atoi(m[1])
	}
	if d, ok := parseDuration(lower); ok && d > 0 {
		f.DurationMins = d
	}
	for _, c := range Categories {
		if reCategoryFor[c].MatchString(lower) {
			f.Category = c
			break
		}
	}

	name := raw
	for _, re := range stripPatterns {
		name = re.ReplaceAllString(name, " ")
	}
	f.Name = strings.Join(strings.Fields(name), " ")
	if f.Name == "" {
		return f, fmt.Errorf("quick add %q: %w: no task name left", raw, task.ErrInvalidInput)
	}
	return f, nil
}

func parseDate(t string, now time.Time) string {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch {
	case reYesterday.MatchString(t):
		return today.AddDate(0, 0, -1).Format(dateLayout)
	case reToday.MatchString(t):
		return today.Format(dateLayout)
	case reTomorrow.MatchString(t):
		return today.AddDate(0, 0, 1).Format(dateLayout)
	}
	if m := reInDays.FindStringSubmatch(t); m != nil {
		n, _ := strconv.Atoi(m[1])
		return today.AddDate(0, 0, n).Format(dateLayout)
	}

	// "next week friday" is the friday of the following week.
	for _, w := range weekdays {
		if w.nextWeek.MatchString(t) {
			return today.AddDate(0, 0, daysAhead(today, w.day)+7).Format(dateLayout)
		}
	}
	for _, w := range weekdays {
		if w.bare.MatchString(t) {
			return today.AddDate(0, 0, daysAhead(today, w.day)).Format(dateLayout)
		}
	}
	return today.Format(dateLayout)
}

// daysAhead is 1..7: a weekday equal to today's means next week.
func daysAhead(today time.Time, day time.Weekday) int {
	ahead := (int(day) - int(today.Weekday()) + 7) % 7
	if ahead == 0 {
		ahead = 7
	}
	return ahead
}

func parseTime(t string) string {
	if m := reClock24.FindStringSubmatch(t); m != nil {
		hh, _ := strconv.Atoi(m[1])
		mm, _ := strconv.Atoi(m[2])
		return fmt.Sprintf("%02d:%02d", hh, mm)
	}
	if m := reClock12.FindStringSubmatch(t); m != nil {
		hh, _ := strconv.Atoi(m[1])
		mm := 0
		if m[2] != "" {
			mm, _ = strconv.Atoi(m[2])
		}
		switch {
		case m[3] == "pm" && hh != 12:
			hh += 12
		case m[3] == "am" && hh == 12:
			hh = 0
		}
		if hh <= 23 && mm <= 59 {
			return fmt.Sprintf("%02d:%02d", hh, mm)
		}
	}
	return ""
}

func parseDuration(t string) (int, bool) {
	if m := reHours.FindStringSubmatch(t); m != nil {
		h, _ := strconv.Atoi(m[1])
		mm := 0
		if m[2] != "" {
			mm, _ = strconv.Atoi(m[2])
		}
		return h*60 + mm, true
	}
	if m := reMinutes.FindStringSubmatch(t); m != nil {
		mm, _ := strconv.Atoi(m[1])
		return mm, true
	}
	return 0, false
}
