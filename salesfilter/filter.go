// Package salesfilter narrows records that are already in memory by the date
// they were created.
package salesfilter

import (
	"fmt"
	"time"

	apperrors "github.com/jrsteele09/go-pos-client/internal/errors"
	"github.com/jrsteele09/go-pos-client/shop"
)

// Boundary selects how the end of a range is compared.
type Boundary int

const (
	// Midnight compares against 00:00 on the end date, so records created later
	// that day fall outside the range. This is how the shop app has always
	// filtered, although a whole-day end is probably what users expect.
	Midnight Boundary = iota
	// EndOfDay includes everything created on the end date.
	EndOfDay
)

// Range is an optional pair of calendar days. A zero Start or End is unset.
type Range struct {
	Start    time.Time
	End      time.Time
	Boundary Boundary
}

func (r Range) IsZero() bool {
	return r.Start.IsZero() && r.End.IsZero()
}

// ParseDay parses a yyyy-mm-dd day as midnight in loc. An empty string is the
// zero time.
func ParseDay(s string, loc *time.Location) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if loc == nil {
		loc = time.Local
	}
	day, err := time.ParseInLocation(time.DateOnly, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("[salesfilter ParseDay] %q: %w", s, apperrors.ErrParse)
	}
	return day, nil
}

// ByDate returns the records whose creation time falls in r:
//   - only one day set: records created on that calendar day
//   - both set: records in [Start 00:00, End boundary], swapping reversed days
//   - neither set: records unchanged
//
// The input slice is never modified.
func ByDate[T any](records []T, r Range, created func(T) time.Time) []T {
	start, end := midnight(r.Start), midnight(r.End)
	switch {
	case start.IsZero() && end.IsZero():
		return records
	case end.IsZero():
		return sameDay(records, start, created)
	case start.IsZero():
		return sameDay(records, end, created)
	}

	if start.After(end) {
		start, end = end, start
	}
	out := make([]T, 0, len(records))
	for _, rec := range records {
		at := created(rec)
		if at.Before(start) {
			continue
		}
		if r.Boundary == EndOfDay {
			if !at.Before(end.AddDate(0, 0, 1)) {
				continue
			}
		} else if at.After(end) {
			continue
		}
		out = append(out, rec)
	}
	return out
}

func Sales(sales []shop.Sale, r Range) []shop.Sale {
	return ByDate(sales, r, func(s shop.Sale) time.Time { return s.DateCreated })
}

func StockEntries(entries []shop.StockEntry, r Range) []shop.StockEntry {
	return ByDate(entries, r, func(e shop.StockEntry) time.Time { return e.DateCreated })
}

func sameDay[T any](records []T, day time.Time, created func(T) time.Time) []T {
	out := make([]T, 0, len(records))
	for _, rec := range records {
		if midnight(created(rec).In(day.Location())).Equal(day) {
			out = append(out, rec)
		}
	}
	return out
}

func midnight(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
