package availability

import (
	"strconv"
	"strings"
)

// HostTimes are the listing's check-in and check-out times of day in host-local time.
type HostTimes struct {
	CheckIn  string `json:"check_in_time"`
	CheckOut string `json:"check_out_time"`
}

// AllowsSameDayTurnover reports whether a new guest may check in on the day
// a previous guest checks out. Unparseable times never allow it.
func (h HostTimes) AllowsSameDayTurnover() bool {
	in, ok := parseClock(h.CheckIn)
	if !ok {
		return false
	}
	out, ok := parseClock(h.CheckOut)
	if !ok {
		return false
	}
	return in >= out
}

// parseClock reads HH:MM or HH:MM:SS into seconds after midnight.
func parseClock(raw string) (int, bool) {
	parts := strings.Split(strings.TrimSpace(raw), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, false
	}
	limits := []int{23, 59, 59}
	total := 0
	for i, p := range parts {
		if p == "" || len(p) > 2 {
			return 0, false
		}
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 || n > limits[i] {
			return 0, false
		}
		total = total*60 + n
	}
	if len(parts) == 2 {
		total *= 60
	}
	return total, true
}
