package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	ErrInvalidPeriod     = errors.New("model: invalid period")
	ErrInvalidPeriodUnit = errors.New("model: unknown period unit")
)

// Calendar dates the store can compute with run from year 0 to 9999.
const (
	minCalendarYear = 0
	maxCalendarYear = 9999
)

type PeriodUnit string

const (
	PeriodDay   PeriodUnit = "d"
	PeriodWeek  PeriodUnit = "w"
	PeriodMonth PeriodUnit = "m"
	PeriodYear  PeriodUnit = "y"
)

// PeriodUnits lists the units in the order they are offered to users.
func PeriodUnits() []PeriodUnit {
	return []PeriodUnit{PeriodDay, PeriodWeek, PeriodMonth, PeriodYear}
}

func (u PeriodUnit) IsValid() bool {
	switch u {
	case PeriodDay, PeriodWeek, PeriodMonth, PeriodYear:
		return true
	default:
		return false
	}
}

// maxLength bounds a period so that one step always fits in the calendar
// range and its day count fits in an int.
func (u PeriodUnit) maxLength() int {
	switch u {
	case PeriodDay:
		return maxCalendarYear * 366
	case PeriodWeek:
		return maxCalendarYear * 366 / 7
	case PeriodMonth:
		return maxCalendarYear * 12
	case PeriodYear:
		return maxCalendarYear
	default:
		return 0
	}
}

// Name is the plural noun used in help output.
func (u PeriodUnit) Name() string {
	switch u {
	case PeriodDay:
		return "days"
	case PeriodWeek:
		return "weeks"
	case PeriodMonth:
		return "months"
	case PeriodYear:
		return "years"
	default:
		return string(u)
	}
}

// Period is a recurrence step: a signed length of calendar units.
// A zero length is accepted and never advances the schedule.
type Period struct {
	Length int
	Unit   PeriodUnit
}

// ParsePeriod reads the user-facing form "<n><unit>", for example "2w" or "1y".
func ParsePeriod(raw string) (Period, error) {
	s := strings.TrimSpace(raw)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	length, err := strconv.Atoi(s[:end])
	if err != nil {
		return Period{}, &ValidationError{Field: "period", Value: raw, Err: ErrInvalidPeriod}
	}
	unit := PeriodUnit(s[end:])
	if !unit.IsValid() {
		return Period{}, &ValidationError{Field: "period", Value: raw, Err: ErrInvalidPeriodUnit}
	}
	if limit := unit.maxLength(); length > limit || length < -limit {
		return Period{}, &ValidationError{
			Field: "period",
			Value: raw,
			Err:   fmt.Errorf("%w: at most %d %s", ErrInvalidPeriod, limit, unit.Name()),
		}
	}
	return Period{Length: length, Unit: unit}, nil
}

// CheckFrom reports an error when one step from the YYYY-MM-DD day leaves
// the calendar range, which would leave the reminder without a next date.
// Days that do not parse as real dates are left to the store.
func (p Period) CheckFrom(day string) error {
	from, err := time.Parse(DateLayout, day)
	if err != nil {
		return nil
	}
	next := p.Advance(from)
	if y := next.Year(); y < minCalendarYear || y > maxCalendarYear {
		return &ValidationError{
			Field: "period",
			Value: p.String(),
			Err:   fmt.Errorf("%w: one step from %s leaves years %d-%d", ErrInvalidPeriod, day, minCalendarYear, maxCalendarYear),
		}
	}
	return nil
}

// Modifier renders the period as a sqlite date() modifier. This is the
// persisted form of Reminders.period, so weeks are stored as days.
func (p Period) Modifier() string {
	switch p.Unit {
	case PeriodDay:
		return fmt.Sprintf("%+d days", p.Length)
	case PeriodWeek:
		return fmt.Sprintf("%+d days", p.Length*7)
	case PeriodMonth:
		return fmt.Sprintf("%+d months", p.Length)
	case PeriodYear:
		return fmt.Sprintf("%+d years", p.Length)
	default:
		return ""
	}
}

// ParseModifier is the inverse of Modifier. Week periods come back as days.
func ParseModifier(raw string) (Period, error) {
	fields := strings.Fields(raw)
	if len(fields) != 2 {
		return Period{}, fmt.Errorf("%w: modifier %q", ErrInvalidPeriod, raw)
	}
	length, err := strconv.Atoi(fields[0])
	if err != nil {
		return Period{}, fmt.Errorf("%w: modifier %q", ErrInvalidPeriod, raw)
	}
	switch strings.TrimSuffix(fields[1], "s") {
	case "day":
		return Period{Length: length, Unit: PeriodDay}, nil
	case "month":
		return Period{Length: length, Unit: PeriodMonth}, nil
	case "year":
		return Period{Length: length, Unit: PeriodYear}, nil
	default:
		return Period{}, fmt.Errorf("%w: modifier %q", ErrInvalidPeriodUnit, raw)
	}
}

// Advance moves a date forward by the period using calendar arithmetic.
// Month and year overflow normalizes the same way sqlite's date() does
// (2026-01-31 +1 month is 2026-03-03).
func (p Period) Advance(from time.Time) time.Time {
	switch p.Unit {
	case PeriodDay:
		return from.AddDate(0, 0, p.Length)
	case PeriodWeek:
		return from.AddDate(0, 0, 7*p.Length)
	case PeriodMonth:
		return from.AddDate(0, p.Length, 0)
	case PeriodYear:
		return from.AddDate(p.Length, 0, 0)
	default:
		return from
	}
}

func (p Period) String() string {
	if p.Length == 1 || p.Length == -1 {
		return fmt.Sprintf("every %d %s", p.Length, strings.TrimSuffix(p.Unit.Name(), "s"))
	}
	return fmt.Sprintf("every %d %s", p.Length, p.Unit.Name())
}
