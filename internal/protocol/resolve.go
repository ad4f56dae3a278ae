package protocol

import (
	"context"
	"errors"
	"time"

	"rrpe/internal/canonical"
	"rrpe/internal/config"
	"rrpe/internal/ledger"
)

// Hints seed the reconciliation search. All fields are optional best-effort
// guidance; the search is correct without them, only slower.
type Hints struct {
	// Cached is a previously cached but unverified input set, tried first.
	Cached *ledger.CommitInputs
	// ApproxPrice is a best-effort approximation of the committed price.
	ApproxPrice *canonical.Price
	// FreshPrediction is a freshly computed prediction guess.
	FreshPrediction int
}

// Resolve recovers the commit inputs for a record persisted before the
// schema captured them, using only the stored commitment digest and hints.
//
// This is a bounded enumeration of the small plaintext space (one prediction
// bit times a quantized, ceiling-bounded price), not a preimage attack on
// SHA-256. Candidates outside the configured ceilings are never accepted.
// The search is deterministic: identical inputs visit candidates in the same
// order and return the same match.
func Resolve(commit string, base ledger.CommitInputs, salt string, hints Hints, bounds config.ResolverBounds) (*ledger.CommitInputs, error) {
	matches := func(prediction int, price canonical.Price) (*ledger.CommitInputs, bool) {
		trial := base
		trial.Prediction = prediction
		trial.PCommit = price
		digest, err := Digest(trial, salt)
		if err != nil {
			return nil, false
		}
		if digest == commit {
			return &trial, true
		}
		return nil, false
	}

	// Step 1: a cached input set short-circuits everything.
	if hints.Cached != nil {
		if found, ok := matches(hints.Cached.Prediction, hints.Cached.PCommit); ok {
			return found, nil
		}
	}

	for _, prediction := range candidatePredictions(hints) {
		// Step 2a: probe outward around the approximate price at the
		// precision unit, alternating above and below.
		if hints.ApproxPrice != nil {
			if found, ok := probeAround(*hints.ApproxPrice, prediction, bounds, matches); ok {
				return found, nil
			}
		}
		// Step 2b: exhaustive coarse scan from zero, then a fine rescan
		// up to the smaller ceiling, still within this prediction.
		if found, ok := scan(bounds.CoarseStep, bounds.CoarseCeiling, prediction, matches); ok {
			return found, nil
		}
		if found, ok := scan(bounds.FineStep, bounds.FineCeiling, prediction, matches); ok {
			return found, nil
		}
	}

	return nil, &Error{
		Code:    CodeUnreconcilable,
		Message: "exhausted bounded search without reproducing the commitment",
		Symbol:  base.Symbol,
	}
}

// candidatePredictions orders prediction candidates: cached guess, fresh
// guess, then 0 and 1, deduplicated.
func candidatePredictions(hints Hints) []int {
	ordered := make([]int, 0, 4)
	seen := map[int]bool{}
	add := func(p int) {
		if p == 0 || p == 1 {
			if !seen[p] {
				seen[p] = true
				ordered = append(ordered, p)
			}
		}
	}
	if hints.Cached != nil {
		add(hints.Cached.Prediction)
	}
	add(hints.FreshPrediction)
	add(0)
	add(1)
	return ordered
}

func probeAround(approx canonical.Price, prediction int, bounds config.ResolverBounds, matches func(int, canonical.Price) (*ledger.CommitInputs, bool)) (*ledger.CommitInputs, bool) {
	if found, ok := matches(prediction, approx); ok {
		return found, true
	}
	maxSteps := bounds.ProbeOffset.Units() // steps of one precision unit
	for k := int64(1); k <= maxSteps; k++ {
		above := approx + canonical.Price(k)
		if found, ok := matches(prediction, above); ok {
			return found, true
		}
		below := approx - canonical.Price(k)
		if below >= 0 {
			if found, ok := matches(prediction, below); ok {
				return found, true
			}
		}
	}
	return nil, false
}

func scan(step, ceiling canonical.Price, prediction int, matches func(int, canonical.Price) (*ledger.CommitInputs, bool)) (*ledger.CommitInputs, bool) {
	if step <= 0 {
		return nil, false
	}
	for price := canonical.Price(0); price <= ceiling; price += step {
		if found, ok := matches(prediction, price); ok {
			return found, true
		}
	}
	return nil, false
}

// resolveInputs gathers hints for a legacy record and runs the bounded
// search. The fresh prediction and approximate price are best-effort; their
// absence only removes search shortcuts.
func (e *Engine) resolveInputs(ctx context.Context, rec *ledger.SymbolRecord, sym, date string, secret []byte) (*ledger.CommitInputs, error) {
	ctxStr := Context(date, sym, e.cfg)

	barTS := rec.CommitBarTSET
	if barTS == "" {
		day, err := time.ParseInLocation("2006-01-02", date, e.loc)
		if err != nil {
			return nil, err
		}
		barTS = e.cfg.CommitBarTarget.On(day.Year(), day.Month(), day.Day(), e.loc).Format(time.RFC3339)
	}

	hints := Hints{FreshPrediction: 1}
	if p, err := e.deps.Predictor.Predict(ctx, sym, date); err == nil {
		hints.FreshPrediction = p
	}
	if approx, err := e.deps.Feed.PriceAtBar(ctx, sym, date, barTS, e.tolerance()); err == nil {
		hints.ApproxPrice = &approx
	}

	base := ledger.CommitInputs{
		Symbol:             sym,
		CommitBarTSET:      barTS,
		TimestampCommitUTC: rec.CommittedAtUTC,
		Context:            ctxStr,
	}
	salt := Salt(secret, ctxStr)

	e.deps.Logger.Info("reconstructing commit inputs for legacy record", "symbol", sym, "date", date)
	resolved, err := Resolve(rec.Commit, base, salt, hints, e.cfg.Resolver)
	if err != nil {
		var pe *Error
		if errors.As(err, &pe) {
			pe.Date = date
		}
		return nil, err
	}
	return resolved, nil
}
