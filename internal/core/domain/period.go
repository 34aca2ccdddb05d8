package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

type PeriodKind string

const (
	PeriodHayd   PeriodKind = "hayd"
	PeriodNifas  PeriodKind = "nifas"
	PeriodTravel PeriodKind = "travel"
)

// ExclusionPeriod is a dated interval during which the prayer obligation
// is suspended (menstruation, postpartum bleeding, or travel).
type ExclusionPeriod struct {
	Start time.Time  `json:"start_date"`
	End   time.Time  `json:"end_date"`
	Kind  PeriodKind `json:"kind"`
}

// Days returns the whole-day length of the period, never negative.
func (p ExclusionPeriod) Days() int {
	return WholeDaysBetween(p.Start, p.End)
}

// WholeDaysBetween counts whole calendar days from a to b, clamped at zero.
func WholeDaysBetween(a, b time.Time) int {
	a = truncateToDay(a)
	b = truncateToDay(b)
	days := int(b.Sub(a).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

func truncateToDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ValidatePeriods checks that every period is well formed and that no two
// periods of the set overlap. It returns every violation found, not just
// the first, so a caller can report all problems in one pass.
//
// The overlap test is closed-interval: two periods that share even a single
// calendar date overlap. Periods on adjacent dates (one ends on the 10th,
// the next starts on the 11th) are valid.
func ValidatePeriods(periods []ExclusionPeriod) []string {
	var violations []string

	for i, p := range periods {
		if p.Start.After(p.End) {
			violations = append(violations,
				fmt.Sprintf("period %d: start date %s is after end date %s",
					i+1, formatDay(p.Start), formatDay(p.End)))
		}
	}

	for i := 0; i < len(periods); i++ {
		for j := i + 1; j < len(periods); j++ {
			a, b := periods[i], periods[j]
			if !truncateToDay(a.Start).After(truncateToDay(b.End)) &&
				!truncateToDay(b.Start).After(truncateToDay(a.End)) {
				violations = append(violations,
					fmt.Sprintf("periods %d and %d overlap: %s..%s and %s..%s",
						i+1, j+1,
						formatDay(a.Start), formatDay(a.End),
						formatDay(b.Start), formatDay(b.End)))
			}
		}
	}

	return violations
}

func formatDay(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// ValidationError rejects a calculation atomically: it carries every
// violation found across the supplied period sets.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return "invalid periods: " + strings.Join(e.Violations, "; ")
}

// PeriodList stores exclusion periods as a jsonb column.
type PeriodList []ExclusionPeriod

func (l PeriodList) Value() (driver.Value, error) {
	if l == nil {
		l = PeriodList{}
	}
	return json.Marshal(l)
}

func (l *PeriodList) Scan(src interface{}) error {
	if src == nil {
		*l = PeriodList{}
		return nil
	}
	switch data := src.(type) {
	case []byte:
		return json.Unmarshal(data, l)
	case string:
		return json.Unmarshal([]byte(data), l)
	default:
		return errors.New("unsupported source type for PeriodList")
	}
}

// TotalDays sums the whole-day lengths of all periods in the list.
func (l PeriodList) TotalDays() int {
	total := 0
	for _, p := range l {
		total += p.Days()
	}
	return total
}
