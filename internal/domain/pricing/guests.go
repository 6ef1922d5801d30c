package pricing

// GuestConfig describes how many guests a listing takes at its base rate and
// what each additional guest costs per night.
type GuestConfig struct {
	BaseGuests            int
	MaxExtraGuests        int
	ExtraGuestFeePerNight int64
}

// ClampGuests limits the party size to [1, BaseGuests].
func (g GuestConfig) ClampGuests(n int) int {
	limit := g.BaseGuests
	if limit < 1 {
		limit = 1
	}
	if n < 1 {
		return 1
	}
	if n > limit {
		return limit
	}
	return n
}

// ClampExtraGuests limits extra guests to [0, MaxExtraGuests]; a zero cap means no upper bound.
func (g GuestConfig) ClampExtraGuests(n int) int {
	if n < 0 {
		return 0
	}
	if g.MaxExtraGuests > 0 && n > g.MaxExtraGuests {
		return g.MaxExtraGuests
	}
	return n
}
