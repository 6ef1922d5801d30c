package calendardate

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var ErrInvalidDate = errors.New("calendardate: invalid date")

const layout = "2006-01-02"

// Date is a timezone-naive civil date. The zero value is the invalid date.
type Date struct {
	year  int
	month time.Month
	day   int
}

// New builds a Date, rejecting components that do not name a real calendar day.
func New(year int, month time.Month, day int) (Date, error) {
	if year < 1 || month < time.January || month > time.December || day < 1 {
		return Date{}, ErrInvalidDate
	}
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || t.Month() != month || t.Day() != day {
		return Date{}, ErrInvalidDate
	}
	return Date{year: year, month: month, day: day}, nil
}

// Must is New that panics; for fixtures and tests only.
func Must(year int, month time.Month, day int) Date {
	d, err := New(year, month, day)
	if err != nil {
		panic(err)
	}
	return d
}

// MustParse is Parse that panics; for fixtures and tests only.
func MustParse(s string) Date {
	d, err := ParseIn(s, time.UTC)
	if err != nil {
		panic(err)
	}
	return d
}

// FromTime returns the civil date of t as observed in loc.
func FromTime(t time.Time, loc *time.Location) Date {
	if t.IsZero() {
		return Date{}
	}
	if loc != nil {
		t = t.In(loc)
	}
	y, m, d := t.Date()
	return Date{year: y, month: m, day: d}
}

// Today is the civil date of now in loc.
func Today(now time.Time, loc *time.Location) Date {
	return FromTime(now, loc)
}

// Parse reads a date evaluating timestamps in the local zone.
func Parse(s string) (Date, error) {
	return ParseIn(s, time.Local)
}

// ParseIn accepts YYYY-MM-DD or an ISO-8601 timestamp. Timestamps are
// truncated to the civil date in loc; zone-less timestamps are read as loc.
func ParseIn(s string, loc *time.Location) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, ErrInvalidDate
	}
	if loc == nil {
		loc = time.UTC
	}
	if len(s) == len(layout) {
		return parsePlain(s)
	}
	for _, l := range []string{time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(l, s); err == nil {
			return validTime(t, loc, s)
		}
	}
	for _, l := range []string{"2006-01-02T15:04:05", "2006-01-02T15:04", "2006-01-02 15:04:05"} {
		if t, err := time.ParseInLocation(l, s, loc); err == nil {
			return validTime(t, loc, s)
		}
	}
	return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

// validTime rejects timestamps whose civil date falls outside year 1..9999.
func validTime(t time.Time, loc *time.Location, raw string) (Date, error) {
	d := FromTime(t, loc)
	if d.Year() < 1 || d.Year() > 9999 {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, raw)
	}
	return d, nil
}

func parsePlain(s string) (Date, error) {
	parts := strings.Split(s, "-")
	if len(parts) != 3 || len(parts[0]) != 4 || len(parts[1]) != 2 || len(parts[2]) != 2 {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	nums := [3]int{}
	for i, p := range parts {
		if strings.TrimLeft(p, "0123456789") != "" {
			return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
		}
		nums[i] = n
	}
	d, err := New(nums[0], time.Month(nums[1]), nums[2])
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return d, nil
}

func (d Date) Year() int             { return d.year }
func (d Date) Month() time.Month     { return d.month }
func (d Date) Day() int              { return d.day }
func (d Date) Valid() bool           { return d.year != 0 }
func (d Date) IsZero() bool          { return !d.Valid() }
func (d Date) Weekday() time.Weekday { return d.time().Weekday() }

// Format renders the zero-padded YYYY-MM-DD key. Invalid dates render empty.
func (d Date) Format() string {
	if !d.Valid() {
		return ""
	}
	return fmt.Sprintf("%04d-%02d-%02d", d.year, int(d.month), d.day)
}

func (d Date) String() string {
	if !d.Valid() {
		return "invalid"
	}
	return d.Format()
}

// AddDays returns a new date n days away; invalid dates stay invalid.
func (d Date) AddDays(n int) Date {
	if !d.Valid() {
		return Date{}
	}
	return FromTime(d.time().AddDate(0, 0, n), time.UTC)
}

// DaysUntil counts calendar days from d to other (negative when other is earlier).
func (d Date) DaysUntil(other Date) int {
	return int(other.unixDay() - d.unixDay())
}

// Compare orders by (year, month, day).
func (d Date) Compare(other Date) int {
	switch {
	case d.year != other.year:
		return cmpInt(d.year, other.year)
	case d.month != other.month:
		return cmpInt(int(d.month), int(other.month))
	default:
		return cmpInt(d.day, other.day)
	}
}

func (d Date) Before(other Date) bool { return d.Compare(other) < 0 }
func (d Date) After(other Date) bool  { return d.Compare(other) > 0 }

// Between reports start <= d <= end.
func (d Date) Between(start, end Date) bool {
	return !d.Before(start) && !d.After(end)
}

// Time returns midnight UTC of the date, used for storage.
func (d Date) Time() time.Time {
	if !d.Valid() {
		return time.Time{}
	}
	return d.time()
}

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.Format()), nil
}

func (d *Date) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*d = Date{}
		return nil
	}
	parsed, err := ParseIn(string(b), time.UTC)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// DaysIn returns the number of days in the month.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func (d Date) time() time.Time {
	return time.Date(d.year, d.month, d.day, 0, 0, 0, 0, time.UTC)
}

func (d Date) unixDay() int64 {
	return d.time().Unix() / 86400
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
