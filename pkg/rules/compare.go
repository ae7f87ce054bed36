package rules

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

const (
	day = 24 * time.Hour

	secondsPerDay = int64(day / time.Second)
)

// Compare decides whether v satisfies comparison against the textual rule
// value raw. now is the reference instant for relative date comparisons.
//
// A rule value that cannot be parsed into the type required by the
// comparison never matches, and neither does a not-applicable value or a
// comparison the value type does not support.
func Compare(v Value, comparison ComparisonOperator, raw string, now time.Time) bool {
	switch v.typ {
	case TypeString:
		return compareString(v.text, comparison, raw)
	case TypeStringSet:
		return compareSet(v.set, comparison, raw)
	case TypeBool:
		return compareBool(v.flag, comparison, raw)
	case TypeDate:
		return compareDate(v.date, comparison, raw, now)
	case TypeNumber:
		return compareNumber(v.number, comparison, raw)
	default:
		return false
	}
}

func compareString(value string, comparison ComparisonOperator, raw string) bool {
	switch comparison {
	case Equals:
		return strings.EqualFold(value, raw)
	case NotEquals:
		return !strings.EqualFold(value, raw)
	case Contains:
		return strings.Contains(strings.ToLower(value), strings.ToLower(raw))
	case NotContains:
		return !strings.Contains(strings.ToLower(value), strings.ToLower(raw))
	default:
		return false
	}
}

func compareSet(value map[string]struct{}, comparison ComparisonOperator, raw string) bool {
	switch comparison {
	case Contains:
		for tag := range splitSet(raw) {
			if _, ok := value[tag]; !ok {
				return false
			}
		}
		return true
	case NotContains:
		for tag := range splitSet(raw) {
			if _, ok := value[tag]; ok {
				return false
			}
		}
		return true
	case IsEmpty:
		return len(value) == 0
	case IsNotEmpty:
		return len(value) > 0
	default:
		return false
	}
}

func compareBool(value bool, comparison ComparisonOperator, raw string) bool {
	expected, ok := parseBool(raw)
	if !ok {
		return false
	}

	switch comparison {
	case Equals:
		return value == expected
	case NotEquals:
		return value != expected
	default:
		return false
	}
}

func compareDate(value time.Time, comparison ComparisonOperator, raw string, now time.Time) bool {
	switch comparison {
	case WithinDays:
		days, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil || days < 0 {
			return false
		}
		return withinDays(value, now, int64(days))
	case LessThan:
		bound, ok := parseDate(raw)
		return ok && value.Before(bound)
	case GreaterThan:
		bound, ok := parseDate(raw)
		return ok && value.After(bound)
	default:
		return false
	}
}

// withinDays reports whether now - value <= days * 24h. It works on unix
// seconds, as a time.Duration overflows past roughly 292 years.
func withinDays(value, now time.Time, days int64) bool {
	if days > math.MaxInt64/secondsPerDay {
		return true
	}

	limit := days * secondsPerDay
	elapsed := now.Unix() - value.Unix()
	if elapsed != limit {
		return elapsed < limit
	}
	return now.Nanosecond() <= value.Nanosecond()
}

func compareNumber(value float64, comparison ComparisonOperator, raw string) bool {
	expected, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(expected) {
		return false
	}

	switch comparison {
	case Equals:
		return value == expected
	case NotEquals:
		return value != expected
	case LessThan:
		return value < expected
	case GreaterThan:
		return value > expected
	default:
		return false
	}
}

func parseBool(raw string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true":
		return true, true
	case "false":
		return false, true
	default:
		return false, false
	}
}

// parseDate accepts any layout dateparse recognizes; zone-less values are read as UTC.
func parseDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}

	t, err := dateparse.ParseIn(raw, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
