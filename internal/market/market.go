// Package market defines the market-data collaborator boundary: bar and close
// retrieval plus trading-calendar membership. The protocol core depends only
// on the Feed and Calendar interfaces; ChartFeed and NYSECalendar are the
// shipped implementations.
package market

import (
	"context"
	"errors"
	"time"

	"rrpe/internal/canonical"
)

// ErrUnavailable marks retryable market-data gaps: a missing bar, a close not
// yet published, or a transport timeout. Engines skip the affected symbol and
// try again on a later invocation.
var ErrUnavailable = errors.New("market data unavailable")

// IsUnavailable reports whether err is a retryable data gap.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}

// Close is one daily closing price.
type Close struct {
	Date  string
	Price canonical.Price
}

// Feed retrieves prices. Dates are ISO "2006-01-02" strings in the exchange
// calendar; bar timestamps are RFC 3339 strings in the exchange time zone.
type Feed interface {
	// MinuteBarNear returns the close of the 1-minute bar nearest target
	// within tolerance, plus the bar's timestamp.
	MinuteBarNear(ctx context.Context, symbol, date string, target time.Time, tolerance time.Duration) (canonical.Price, string, error)

	// PriceAtBar refetches the day's minute bars and returns the price
	// nearest the given bar timestamp within tolerance.
	PriceAtBar(ctx context.Context, symbol, date, barTS string, tolerance time.Duration) (canonical.Price, error)

	// PrevAndTodayClose returns the previous trading day's close and the
	// given date's close.
	PrevAndTodayClose(ctx context.Context, symbol, date string) (prev, today canonical.Price, err error)

	// RecentCloses returns up to n daily closes strictly before date,
	// oldest first.
	RecentCloses(ctx context.Context, symbol, date string, n int) ([]Close, error)
}

// Calendar answers trading-day membership questions.
type Calendar interface {
	IsTradingDay(date string) (bool, error)
	PreviousTradingDay(date string) (string, error)
}
