package market

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/go-resty/resty/v2"

	"rrpe/internal/canonical"
)

const chartTimeout = 10 * time.Second

// ChartFeed retrieves bars from a Yahoo-style chart endpoint
// (GET {base}/v8/finance/chart/{symbol}?interval=…&period1=…&period2=…).
//
// Transport failures and empty series surface as ErrUnavailable: the engines
// treat them as retryable gaps, never as fatal errors.
type ChartFeed struct {
	client *resty.Client
	cal    Calendar
	loc    *time.Location
}

// NewChartFeed builds a feed against baseURL, resolving daily-series
// questions with cal and interpreting bar timestamps in loc.
func NewChartFeed(baseURL string, cal Calendar, loc *time.Location) *ChartFeed {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(chartTimeout).
		SetHeader("Accept", "application/json")
	return &ChartFeed{client: client, cal: cal, loc: loc}
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

type bar struct {
	ts    time.Time
	close canonical.Price
}

func (f *ChartFeed) fetch(ctx context.Context, symbol, interval string, from, to time.Time) ([]bar, error) {
	var body chartResponse
	resp, err := f.client.R().
		SetContext(ctx).
		SetPathParam("symbol", symbol).
		SetQueryParams(map[string]string{
			"interval": interval,
			"period1":  fmt.Sprintf("%d", from.Unix()),
			"period2":  fmt.Sprintf("%d", to.Unix()),
		}).
		SetResult(&body).
		Get("/v8/finance/chart/{symbol}")
	if err != nil {
		return nil, fmt.Errorf("chart %s %s: %w: %w", symbol, interval, ErrUnavailable, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("chart %s %s: status %d: %w", symbol, interval, resp.StatusCode(), ErrUnavailable)
	}
	if body.Chart.Error != nil {
		return nil, fmt.Errorf("chart %s %s: %s: %w", symbol, interval, body.Chart.Error.Code, ErrUnavailable)
	}
	if len(body.Chart.Result) == 0 || len(body.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, fmt.Errorf("chart %s %s: empty result: %w", symbol, interval, ErrUnavailable)
	}
	result := body.Chart.Result[0]
	closes := result.Indicators.Quote[0].Close
	bars := make([]bar, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(closes) || closes[i] == nil {
			continue
		}
		bars = append(bars, bar{
			ts:    time.Unix(ts, 0).In(f.loc),
			close: canonical.PriceFromFloat(*closes[i]),
		})
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("chart %s %s: no bars: %w", symbol, interval, ErrUnavailable)
	}
	return bars, nil
}

// MinuteBarNear implements Feed.
func (f *ChartFeed) MinuteBarNear(ctx context.Context, symbol, date string, target time.Time, tolerance time.Duration) (canonical.Price, string, error) {
	day, err := time.ParseInLocation("2006-01-02", date, f.loc)
	if err != nil {
		return 0, "", fmt.Errorf("invalid date %q: %w", date, err)
	}
	from := day.Add(9*time.Hour + 25*time.Minute)
	to := day.Add(16*time.Hour + 5*time.Minute)
	bars, err := f.fetch(ctx, symbol, "1m", from, to)
	if err != nil {
		return 0, "", err
	}
	best := bars[0]
	bestDiff := absDuration(best.ts.Sub(target))
	for _, b := range bars[1:] {
		if diff := absDuration(b.ts.Sub(target)); diff < bestDiff {
			best, bestDiff = b, diff
		}
	}
	if bestDiff > tolerance {
		return 0, "", fmt.Errorf("no minute bar within %s of %s for %s: %w", tolerance, target.Format(time.RFC3339), symbol, ErrUnavailable)
	}
	return best.close, best.ts.Format(time.RFC3339), nil
}

// PriceAtBar implements Feed.
func (f *ChartFeed) PriceAtBar(ctx context.Context, symbol, date, barTS string, tolerance time.Duration) (canonical.Price, error) {
	target, err := time.Parse(time.RFC3339, barTS)
	if err != nil {
		return 0, fmt.Errorf("invalid bar timestamp %q: %w: %w", barTS, ErrUnavailable, err)
	}
	price, _, err := f.MinuteBarNear(ctx, symbol, date, target.In(f.loc), tolerance)
	return price, err
}

// PrevAndTodayClose implements Feed.
func (f *ChartFeed) PrevAndTodayClose(ctx context.Context, symbol, date string) (canonical.Price, canonical.Price, error) {
	closes, err := f.dailyCloses(ctx, symbol, date, 14)
	if err != nil {
		return 0, 0, err
	}
	prevDay, err := f.cal.PreviousTradingDay(date)
	if err != nil {
		return 0, 0, err
	}
	prev, okPrev := closes[prevDay]
	today, okToday := closes[date]
	if !okPrev || !okToday {
		return 0, 0, fmt.Errorf("closes for %s missing (prev=%v today=%v): %w", symbol, okPrev, okToday, ErrUnavailable)
	}
	return prev, today, nil
}

// RecentCloses implements Feed.
func (f *ChartFeed) RecentCloses(ctx context.Context, symbol, date string, n int) ([]Close, error) {
	closes, err := f.dailyCloses(ctx, symbol, date, 21)
	if err != nil {
		return nil, err
	}
	dates := make([]string, 0, len(closes))
	for d := range closes {
		if d < date {
			dates = append(dates, d)
		}
	}
	sort.Strings(dates)
	if len(dates) > n {
		dates = dates[len(dates)-n:]
	}
	out := make([]Close, 0, len(dates))
	for _, d := range dates {
		out = append(out, Close{Date: d, Price: closes[d]})
	}
	return out, nil
}

func (f *ChartFeed) dailyCloses(ctx context.Context, symbol, date string, lookbackDays int) (map[string]canonical.Price, error) {
	day, err := time.ParseInLocation("2006-01-02", date, f.loc)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", date, err)
	}
	from := day.AddDate(0, 0, -lookbackDays)
	to := day.AddDate(0, 0, 1)
	bars, err := f.fetch(ctx, symbol, "1d", from, to)
	if err != nil {
		return nil, err
	}
	closes := make(map[string]canonical.Price, len(bars))
	for _, b := range bars {
		closes[b.ts.Format("2006-01-02")] = b.close
	}
	return closes, nil
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
