// Package interval implements calendar-aligned time bucket math for the
// aggregation pipelines. All arithmetic is done in UTC.
package interval

import (
	"errors"
	"fmt"
	"regexp"
	"time"
)

// Type identifies the granularity of a time bucket.
type Type string

const (
	Day   Type = "day"
	Week  Type = "week"
	Month Type = "month"
)

// ParseTypes converts configured interval names to types, silently
// dropping anything unknown. Falls back to all three granularities
// when nothing valid remains.
func ParseTypes(names []string) []Type {
	var types []Type
	for _, name := range names {
		switch Type(name) {
		case Day, Week, Month:
			types = append(types, Type(name))
		}
	}
	if len(types) == 0 {
		return []Type{Day, Week, Month}
	}
	return types
}

// Interval is a half-open [Start, End) calendar-aligned time bucket.
type Interval struct {
	Start time.Time
	End   time.Time
	Type  Type
}

// Range is an inclusive date range in YYYY-MM-DD form.
type Range struct {
	Start string
	End   string
}

// ErrInvalidFormat is returned when a date string does not match the
// strict format expected for the interval type.
var ErrInvalidFormat = errors.New("invalid date format")

var (
	dayPattern   = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	monthPattern = regexp.MustCompile(`^\d{4}-\d{2}$`)
)

// Boundaries returns the interval of the given type containing t.
// Day buckets start at midnight UTC, week buckets at the previous or
// same Sunday midnight UTC, month buckets at the 1st of the month.
func Boundaries(t time.Time, typ Type) Interval {
	t = t.UTC()
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)

	switch typ {
	case Week:
		start := midnight.AddDate(0, 0, -int(midnight.Weekday()))
		return Interval{Start: start, End: start.AddDate(0, 0, 7), Type: Week}
	case Month:
		start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
		return Interval{Start: start, End: start.AddDate(0, 1, 0), Type: Month}
	default:
		return Interval{Start: midnight, End: midnight.AddDate(0, 0, 1), Type: Day}
	}
}

// Parse validates a canonical interval label and returns its interval.
// Day and week labels must be exactly YYYY-MM-DD, month labels exactly
// YYYY-MM. Anything else is rejected rather than best-effort parsed.
func Parse(s string, typ Type) (*Interval, error) {
	var layout string
	var pattern *regexp.Regexp

	switch typ {
	case Month:
		layout, pattern = "2006-01", monthPattern
	case Day, Week:
		layout, pattern = "2006-01-02", dayPattern
	default:
		return nil, fmt.Errorf("unknown interval type %q", typ)
	}

	if !pattern.MatchString(s) {
		return nil, fmt.Errorf("%w: %q, expected %s", ErrInvalidFormat, s, layout)
	}

	t, err := time.ParseInLocation(layout, s, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("%w: %q, expected %s", ErrInvalidFormat, s, layout)
	}

	iv := Boundaries(t, typ)
	return &iv, nil
}

// Name returns the canonical label for an interval, used in composite
// row IDs and export file names.
func Name(iv Interval) string {
	if iv.Type == Month {
		return iv.Start.Format("2006-01")
	}
	return iv.Start.Format("2006-01-02")
}

// GenerateForRange walks from the interval containing r.Start to the
// interval containing r.End and returns the contiguous sequence between
// them. A range that collapses to a single bucket yields exactly one
// interval.
func GenerateForRange(typ Type, r Range) ([]Interval, error) {
	start, err := Parse(r.Start, Day)
	if err != nil {
		return nil, fmt.Errorf("start date: %w", err)
	}
	end, err := Parse(r.End, Day)
	if err != nil {
		return nil, fmt.Errorf("end date: %w", err)
	}
	if end.Start.Before(start.Start) {
		return nil, fmt.Errorf("end date %s precedes start date %s", r.End, r.Start)
	}

	first := Boundaries(start.Start, typ)
	last := Boundaries(end.Start, typ)

	var intervals []Interval
	for cur := first; !cur.Start.After(last.Start); cur = Boundaries(cur.End, typ) {
		intervals = append(intervals, cur)
		if !cur.End.After(cur.Start) {
			// Zero-length step would loop forever.
			break
		}
	}

	return intervals, nil
}

// Adjacent locates cur within the generated sequence reaching back 60
// days before it and forward to the latest available date, and returns
// the canonical labels of its neighbors. Either neighbor is nil at the
// corresponding boundary.
func Adjacent(cur Interval, latest time.Time) (prev, next *string) {
	anchor := cur.Start.AddDate(0, 0, -60)
	if latest.Before(cur.Start) {
		latest = cur.Start
	}

	seq, err := GenerateForRange(cur.Type, Range{
		Start: anchor.Format("2006-01-02"),
		End:   latest.UTC().Format("2006-01-02"),
	})
	if err != nil {
		return nil, nil
	}

	want := Boundaries(cur.Start, cur.Type).Start
	for i, iv := range seq {
		if !iv.Start.Equal(want) {
			continue
		}
		if i > 0 {
			name := Name(seq[i-1])
			prev = &name
		}
		if i+1 < len(seq) {
			name := Name(seq[i+1])
			next = &name
		}
		return prev, next
	}

	return nil, nil
}

// DateRange returns the half-open interval bounds as date strings, the
// shape the query layer filters on.
func (iv Interval) DateRange() Range {
	return Range{
		Start: iv.Start.Format("2006-01-02"),
		End:   iv.End.Format("2006-01-02"),
	}
}
