package daterange

import (
	"errors"

	"staybook/internal/domain/shared/calendardate"
)

var (
	ErrInvalidRange = errors.New("daterange: checkout must be after checkin")
)

// StayRange is the half-open night interval [CheckIn, CheckOut).
type StayRange struct {
	CheckIn  calendardate.Date `json:"check_in"`
	CheckOut calendardate.Date `json:"check_out"`
}

func New(checkIn, checkOut calendardate.Date) (StayRange, error) {
	r := StayRange{CheckIn: checkIn, CheckOut: checkOut}
	if err := r.Validate(); err != nil {
		return StayRange{}, err
	}
	return r, nil
}

// Parse builds a range from two YYYY-MM-DD keys.
func Parse(checkIn, checkOut string) (StayRange, error) {
	in, err := calendardate.ParseIn(checkIn, nil)
	if err != nil {
		return StayRange{}, err
	}
	out, err := calendardate.ParseIn(checkOut, nil)
	if err != nil {
		return StayRange{}, err
	}
	return New(in, out)
}

func (r StayRange) Validate() error {
	if !r.CheckIn.Valid() || !r.CheckOut.Valid() {
		return ErrInvalidRange
	}
	if !r.CheckOut.After(r.CheckIn) {
		return ErrInvalidRange
	}
	return nil
}

// Nights is the number of nights, zero for an invalid range.
func (r StayRange) Nights() int {
	if r.Validate() != nil {
		return 0
	}
	return r.CheckIn.DaysUntil(r.CheckOut)
}

// EachNight calls fn for every night in order; stops early when fn returns false.
func (r StayRange) EachNight(fn func(d calendardate.Date) bool) {
	for i, n := 0, r.Nights(); i < n; i++ {
		if !fn(r.CheckIn.AddDays(i)) {
			return
		}
	}
}

func (r StayRange) ContainsNight(d calendardate.Date) bool {
	return r.Validate() == nil && !d.Before(r.CheckIn) && d.Before(r.CheckOut)
}

func (r StayRange) Overlaps(other StayRange) bool {
	return r.CheckIn.Before(other.CheckOut) && other.CheckIn.Before(r.CheckOut)
}

func (r StayRange) String() string {
	return r.CheckIn.String() + ".." + r.CheckOut.String()
}
