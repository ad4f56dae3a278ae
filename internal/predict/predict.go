// Package predict supplies the price-direction prediction collaborator.
// The heuristic must be deterministic: the same (symbol, date) always yields
// the same bit, including when market data is insufficient.
package predict

import (
	"context"

	"rrpe/internal/market"
)

// Predictor produces a direction bit for (symbol, date): 1 up, 0 down.
type Predictor interface {
	Predict(ctx context.Context, symbol, date string) (int, error)
}

// LastReturn predicts the sign of the previous daily return: up when the
// last close was at or above the one before it. Falls back to 1 when data
// is insufficient, to stay deterministic.
type LastReturn struct {
	Feed     market.Feed
	Calendar market.Calendar
}

// Predict implements Predictor.
func (p *LastReturn) Predict(ctx context.Context, symbol, date string) (int, error) {
	prev, err := p.Calendar.PreviousTradingDay(date)
	if err != nil {
		return 1, nil
	}
	prevPrev, err := p.Calendar.PreviousTradingDay(prev)
	if err != nil {
		return 1, nil
	}
	recent, err := p.Feed.RecentCloses(ctx, symbol, date, 6)
	if err != nil {
		return 1, nil
	}
	closes := make(map[string]int64, len(recent))
	for _, c := range recent {
		closes[c.Date] = c.Price.Units()
	}
	prevClose, okPrev := closes[prev]
	prevPrevClose, okPrevPrev := closes[prevPrev]
	if !okPrev || !okPrevPrev {
		return 1, nil
	}
	if prevClose >= prevPrevClose {
		return 1, nil
	}
	return 0, nil
}
