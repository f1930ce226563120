package store

// Feed is a subscribed feed URL.
type Feed struct {
	ID      int64
	URL     string
	AddedAt *string
}

// Investment is a tracked ticker with an optional company name used as a
// fallback when matching article text.
type Investment struct {
	ID      int64
	Ticker  string
	Name    *string
	AddedAt *string
}

// Display returns the investment as "TICKER (Name)" or just the ticker.
func (inv Investment) Display() string {
	if inv.Name != nil && *inv.Name != "" {
		return inv.Ticker + " (" + *inv.Name + ")"
	}
	return inv.Ticker
}
