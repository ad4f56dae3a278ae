package testutil

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"rrpe/internal/canonical"
	"rrpe/internal/market"
)

// MinuteBar is one canned minute bar for MemoryFeed.
type MinuteBar struct {
	TS    time.Time
	Close canonical.Price
}

// MemoryFeed is an in-memory market.Feed and market.Calendar for tests.
// Missing data surfaces as market.ErrUnavailable, exactly like a live feed.
type MemoryFeed struct {
	// MinuteBars maps "symbol|date" to the day's minute bars.
	MinuteBars map[string][]MinuteBar
	// DailyCloses maps "symbol|date" to that date's close.
	DailyCloses map[string]canonical.Price
	// TradingDays lists trading dates, oldest first. Dates absent from the
	// list are non-trading days.
	TradingDays []string
}

// NewMemoryFeed creates an empty feed.
func NewMemoryFeed() *MemoryFeed {
	return &MemoryFeed{
		MinuteBars:  map[string][]MinuteBar{},
		DailyCloses: map[string]canonical.Price{},
	}
}

func key(symbol, date string) string {
	return symbol + "|" + date
}

// AddMinuteBar registers a minute bar for (symbol, date).
func (f *MemoryFeed) AddMinuteBar(symbol, date string, ts time.Time, close canonical.Price) {
	k := key(symbol, date)
	f.MinuteBars[k] = append(f.MinuteBars[k], MinuteBar{TS: ts, Close: close})
}

// AddClose registers a daily close for (symbol, date).
func (f *MemoryFeed) AddClose(symbol, date string, close canonical.Price) {
	f.DailyCloses[key(symbol, date)] = close
}

// MinuteBarNear implements market.Feed.
func (f *MemoryFeed) MinuteBarNear(_ context.Context, symbol, date string, target time.Time, tolerance time.Duration) (canonical.Price, string, error) {
	bars := f.MinuteBars[key(symbol, date)]
	if len(bars) == 0 {
		return 0, "", fmt.Errorf("no minute bars for %s on %s: %w", symbol, date, market.ErrUnavailable)
	}
	best := bars[0]
	bestDiff := absDuration(best.TS.Sub(target))
	for _, b := range bars[1:] {
		if diff := absDuration(b.TS.Sub(target)); diff < bestDiff {
			best, bestDiff = b, diff
		}
	}
	if bestDiff > tolerance {
		return 0, "", fmt.Errorf("no bar within tolerance for %s on %s: %w", symbol, date, market.ErrUnavailable)
	}
	return best.Close, best.TS.Format(time.RFC3339), nil
}

// PriceAtBar implements market.Feed.
func (f *MemoryFeed) PriceAtBar(ctx context.Context, symbol, date, barTS string, tolerance time.Duration) (canonical.Price, error) {
	target, err := time.Parse(time.RFC3339, barTS)
	if err != nil {
		return 0, fmt.Errorf("bad bar timestamp %q: %w", barTS, market.ErrUnavailable)
	}
	price, _, err := f.MinuteBarNear(ctx, symbol, date, target, tolerance)
	return price, err
}

// PrevAndTodayClose implements market.Feed.
func (f *MemoryFeed) PrevAndTodayClose(_ context.Context, symbol, date string) (canonical.Price, canonical.Price, error) {
	prevDay, err := f.PreviousTradingDay(date)
	if err != nil {
		return 0, 0, fmt.Errorf("%v: %w", err, market.ErrUnavailable)
	}
	prev, okPrev := f.DailyCloses[key(symbol, prevDay)]
	today, okToday := f.DailyCloses[key(symbol, date)]
	if !okPrev || !okToday {
		return 0, 0, fmt.Errorf("closes missing for %s on %s: %w", symbol, date, market.ErrUnavailable)
	}
	return prev, today, nil
}

// RecentCloses implements market.Feed.
func (f *MemoryFeed) RecentCloses(_ context.Context, symbol, date string, n int) ([]market.Close, error) {
	var out []market.Close
	prefix := symbol + "|"
	for k, price := range f.DailyCloses {
		if !strings.HasPrefix(k, prefix) {
			continue
		}
		if d := strings.TrimPrefix(k, prefix); d < date {
			out = append(out, market.Close{Date: d, Price: price})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	if len(out) > n {
		out = out[len(out)-n:]
	}
	return out, nil
}

// IsTradingDay implements market.Calendar. Every date is a trading day when
// TradingDays is empty.
func (f *MemoryFeed) IsTradingDay(date string) (bool, error) {
	if len(f.TradingDays) == 0 {
		return true, nil
	}
	for _, d := range f.TradingDays {
		if d == date {
			return true, nil
		}
	}
	return false, nil
}

// PreviousTradingDay implements market.Calendar.
func (f *MemoryFeed) PreviousTradingDay(date string) (string, error) {
	if len(f.TradingDays) == 0 {
		d, err := time.Parse("2006-01-02", date)
		if err != nil {
			return "", err
		}
		return d.AddDate(0, 0, -1).Format("2006-01-02"), nil
	}
	prev := ""
	for _, d := range f.TradingDays {
		if d < date {
			prev = d
		}
	}
	if prev == "" {
		return "", fmt.Errorf("no trading day before %s", date)
	}
	return prev, nil
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
