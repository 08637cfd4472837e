package dateset

import (
	"errors"
	"sort"
	"time"
)

var (
	ErrInvalidRange = errors.New("dateset: end date precedes start date")
	ErrInvalidDate  = errors.New("dateset: malformed calendar date")
)

// Layout is the wire format for calendar dates. All dates are calendar days
// in UTC; time-of-day never participates in comparisons.
const Layout = "2006-01-02"

// Date is a single calendar day, normalized to midnight UTC.
type Date struct {
	t time.Time
}

// NewDate truncates an instant to its UTC calendar day.
func NewDate(t time.Time) Date {
	u := t.UTC()
	return Date{t: time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)}
}

// Parse reads a YYYY-MM-DD string into a Date.
func Parse(value string) (Date, error) {
	t, err := time.Parse(Layout, value)
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return NewDate(t), nil
}

// MustParse is a fixture/test helper that panics on malformed input.
func MustParse(value string) Date {
	d, err := Parse(value)
	if err != nil {
		panic(err)
	}
	return d
}

func (d Date) String() string     { return d.t.Format(Layout) }
func (d Date) Time() time.Time    { return d.t }
func (d Date) IsZero() bool       { return d.t.IsZero() }
func (d Date) Before(o Date) bool { return d.t.Before(o.t) }
func (d Date) After(o Date) bool  { return d.t.After(o.t) }
func (d Date) Next() Date         { return Date{t: d.t.AddDate(0, 0, 1)} }

// MarshalText renders the wire format, so dates embed cleanly in JSON
// payloads and map keys.
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(data []byte) error {
	parsed, err := Parse(string(data))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Expand produces every calendar date from start to end inclusive, ascending.
func Expand(start, end Date) ([]Date, error) {
	if end.Before(start) {
		return nil, ErrInvalidRange
	}
	out := make([]Date, 0, CountDays(start, end))
	for d := start; !d.After(end); d = d.Next() {
		out = append(out, d)
	}
	return out, nil
}

// CountDays is the inclusive day count of [start, end]; 1 when start == end.
// Callers must validate the range first; an inverted range yields 0.
func CountDays(start, end Date) int {
	if end.Before(start) {
		return 0
	}
	return int(end.t.Sub(start.t)/(24*time.Hour)) + 1
}

// Set is an unordered collection of calendar days without duplicates.
type Set map[Date]struct{}

// NewSet builds a set from the given dates, deduplicating.
func NewSet(dates ...Date) Set {
	s := make(Set, len(dates))
	for _, d := range dates {
		s[d] = struct{}{}
	}
	return s
}

// FromRange expands [start, end] into a set.
func FromRange(start, end Date) (Set, error) {
	dates, err := Expand(start, end)
	if err != nil {
		return nil, err
	}
	return NewSet(dates...), nil
}

func (s Set) Contains(d Date) bool {
	_, ok := s[d]
	return ok
}

func (s Set) Add(d Date) { s[d] = struct{}{} }

// Union returns a new set holding every date present in any input set.
func Union(sets ...Set) Set {
	out := make(Set)
	for _, s := range sets {
		for d := range s {
			out[d] = struct{}{}
		}
	}
	return out
}

// Intersect returns the dates present in both sets.
func Intersect(a, b Set) Set {
	small, large := a, b
	if len(b) < len(a) {
		small, large = b, a
	}
	out := make(Set)
	for d := range small {
		if large.Contains(d) {
			out[d] = struct{}{}
		}
	}
	return out
}

// Overlaps reports whether the two sets share at least one date.
func Overlaps(a, b Set) bool {
	small, large := a, b
	if len(b) < len(a) {
		small, large = b, a
	}
	for d := range small {
		if large.Contains(d) {
			return true
		}
	}
	return false
}

// Difference returns the dates of a that are not in b.
func Difference(a, b Set) Set {
	out := make(Set, len(a))
	for d := range a {
		if !b.Contains(d) {
			out[d] = struct{}{}
		}
	}
	return out
}

// Clone returns an independent copy of the set.
func (s Set) Clone() Set {
	out := make(Set, len(s))
	for d := range s {
		out[d] = struct{}{}
	}
	return out
}

// Sorted returns the set's dates in ascending order.
func (s Set) Sorted() []Date {
	out := make([]Date, 0, len(s))
	for d := range s {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// Strings returns the sorted dates in wire format.
func (s Set) Strings() []string {
	sorted := s.Sorted()
	out := make([]string, len(sorted))
	for i, d := range sorted {
		out[i] = d.String()
	}
	return out
}
