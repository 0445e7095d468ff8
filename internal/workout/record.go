package workout

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// LabelLayout is the date layout used for series labels
const LabelLayout = "01/02/06"

// dateLayouts are tried in order when parsing a stored or typed date
var dateLayouts = []string{
	"2006-01-02",
	"01/02/06",
	"01/02/2006",
	time.RFC3339,
}

// ValidationError reports a malformed, missing, or negative workout field
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid workout %s: %s", e.Field, e.Reason)
}

// Record is an immutable snapshot of one logged workout.
// The zero Record is invalid; build one with NewRecord or ParseRecord.
type Record struct {
	date            time.Time
	distanceMiles   float64
	calories        float64
	durationMinutes float64
}

// RawRecord is a workout row as it comes out of persistence.
// Nil pointers and an empty date mean the field is missing.
type RawRecord struct {
	Date            string
	DistanceMiles   *float64
	Calories        *float64
	DurationMinutes *float64
}

// NewRecord validates the fields and returns a Record.
// The date is truncated to its calendar day in UTC.
func NewRecord(date time.Time, distanceMiles, calories, durationMinutes float64) (Record, error) {
	if date.IsZero() {
		return Record{}, &ValidationError{Field: "date", Reason: "missing"}
	}
	if err := checkAmount("distance", distanceMiles); err != nil {
		return Record{}, err
	}
	if err := checkAmount("calories", calories); err != nil {
		return Record{}, err
	}
	if err := checkAmount("duration", durationMinutes); err != nil {
		return Record{}, err
	}

	return Record{
		date:            calendarDay(date),
		distanceMiles:   distanceMiles,
		calories:        calories,
		durationMinutes: durationMinutes,
	}, nil
}

// ParseRecord maps a raw persistence row onto a Record.
func ParseRecord(raw RawRecord) (Record, error) {
	if strings.TrimSpace(raw.Date) == "" {
		return Record{}, &ValidationError{Field: "date", Reason: "missing"}
	}
	date, err := ParseDate(raw.Date)
	if err != nil {
		return Record{}, err
	}

	fields := []struct {
		name  string
		value *float64
	}{
		{"distance", raw.DistanceMiles},
		{"calories", raw.Calories},
		{"duration", raw.DurationMinutes},
	}
	for _, f := range fields {
		if f.value == nil {
			return Record{}, &ValidationError{Field: f.name, Reason: "missing"}
		}
	}

	return NewRecord(date, *raw.DistanceMiles, *raw.Calories, *raw.DurationMinutes)
}

// ParseDate parses a calendar date in any of the accepted layouts
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return calendarDay(t), nil
		}
	}
	return time.Time{}, &ValidationError{Field: "date", Reason: fmt.Sprintf("cannot parse %q", s)}
}

// Validate reports whether r was built through a constructor
func (r Record) Validate() error {
	if r.date.IsZero() {
		return &ValidationError{Field: "date", Reason: "missing"}
	}
	return nil
}

// Date returns the calendar day of the workout (midnight UTC)
func (r Record) Date() time.Time { return r.date }

// DistanceMiles returns the distance covered
func (r Record) DistanceMiles() float64 { return r.distanceMiles }

// Calories returns the calories burned
func (r Record) Calories() float64 { return r.calories }

// DurationMinutes returns the workout duration
func (r Record) DurationMinutes() float64 { return r.durationMinutes }

// Label returns the date formatted for a series label
func (r Record) Label() string { return r.date.Format(LabelLayout) }

// Value returns the record's value for a metric
func (r Record) Value(m Metric) (float64, bool) {
	switch m {
	case Distance:
		return r.distanceMiles, true
	case Calories:
		return r.calories, true
	case Duration:
		return r.durationMinutes, true
	}
	return 0, false
}

// Raw converts r back to its persistence shape
func (r Record) Raw() RawRecord {
	miles, cals, mins := r.distanceMiles, r.calories, r.durationMinutes
	return RawRecord{
		Date:            r.date.Format("2006-01-02"),
		DistanceMiles:   &miles,
		Calories:        &cals,
		DurationMinutes: &mins,
	}
}

func checkAmount(field string, v float64) error {
	switch {
	case math.IsNaN(v) || math.IsInf(v, 0):
		return &ValidationError{Field: field, Reason: "not a finite number"}
	case v < 0:
		return &ValidationError{Field: field, Reason: fmt.Sprintf("negative value %v", v)}
	}
	return nil
}

func calendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
