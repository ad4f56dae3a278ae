package protocol

import (
	"context"
	"encoding/hex"
	"strconv"
	"time"

	"rrpe/internal/ledger"
)

// Reveal runs the reveal operation for a trading date: for each committed,
// unrevealed symbol it fetches closing prices, reproduces the commitment from
// its (possibly reconstructed) inputs, verifies it against the stored digest,
// computes the outcome record, and appends a row to the entropy log.
//
// A commitment mismatch is fatal and aborts the reveal for the date
// immediately; symbols revealed earlier in the same invocation are persisted
// first so the document and log stay consistent.
func (e *Engine) Reveal(ctx context.Context, date string, force bool) (*Report, error) {
	rep := &Report{Date: date, Status: StatusOK}

	trading, err := e.deps.Calendar.IsTradingDay(date)
	if err != nil {
		return nil, err
	}
	if !trading {
		e.deps.Logger.Info("not a trading day", "date", date)
		rep.Status = StatusNotTradingDay
		return rep, nil
	}

	now := e.deps.Clock.Now()
	if !force {
		inWindow, err := withinWindow(now, date, e.cfg.Schedule.RevealStart, e.cfg.Schedule.RevealEnd, e.loc)
		if err != nil {
			return nil, err
		}
		if !inWindow {
			e.deps.Logger.Info("outside reveal window", "date", date, "now", now.In(e.loc).Format(time.RFC3339))
			rep.Status = StatusOutsideWindow
			return rep, nil
		}
	}

	secret, err := e.secret()
	if err != nil {
		return nil, err
	}

	err = e.deps.Daily.WithLock(date, func() error {
		doc, err := e.deps.Daily.Load(date)
		if err != nil {
			return err
		}
		if doc == nil {
			e.deps.Logger.Info("no daily document, nothing to reveal", "date", date)
			rep.Status = StatusNoDocument
			return nil
		}

		changed := false
		for _, sym := range e.cfg.Symbols {
			rec := doc.Symbol(sym)
			if rec == nil || rec.State() == ledger.StateUncommitted {
				continue
			}
			if rec.State() == ledger.StateRevealed {
				rep.record(sym, "already_revealed")
				continue
			}
			revealed, err := e.revealSymbol(ctx, rec, sym, date, secret, rep)
			if err != nil {
				// Persist symbols revealed before the failure so the
				// document matches the rows already appended to the log.
				if changed {
					if saveErr := e.deps.Daily.Save(date, doc); saveErr != nil {
						e.deps.Logger.Error("failed to persist partial reveal", "date", date, "error", saveErr)
					}
				}
				return err
			}
			if revealed {
				changed = true
			}
		}

		if changed {
			if err := e.deps.Daily.Save(date, doc); err != nil {
				return err
			}
		}
		rep.Changed = changed
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rep, nil
}

func (e *Engine) revealSymbol(ctx context.Context, rec *ledger.SymbolRecord, sym, date string, secret []byte, rep *Report) (bool, error) {
	prevClose, todayClose, err := e.deps.Feed.PrevAndTodayClose(ctx, sym, date)
	if err != nil {
		if isRetryable(err) {
			e.deps.Logger.Warn("closes unavailable, skipping symbol", "symbol", sym, "date", date, "error", err)
			rep.record(sym, "skipped_no_data")
			return false, nil
		}
		return false, err
	}

	inputs := rec.CommitInputs
	if inputs == nil {
		resolved, err := e.resolveInputs(ctx, rec, sym, date, secret)
		if err != nil {
			return false, err
		}
		// Memoize: resolution is monotonic, later runs must never
		// re-resolve to a different value.
		rec.CommitInputs = resolved
		inputs = resolved
	}

	salt := Salt(secret, inputs.Context)
	expected, err := Digest(*inputs, salt)
	if err != nil {
		return false, err
	}
	if expected != rec.Commit {
		return false, &Error{
			Code:    CodeCommitMismatch,
			Message: "revealed inputs do not reproduce the stored commitment",
			Date:    date,
			Symbol:  sym,
		}
	}

	outcome := 0
	if todayClose > prevClose {
		outcome = 1
	}
	prediction := inputs.Prediction
	bits := strconv.Itoa(prediction) + strconv.Itoa(outcome)
	tie := todayClose == prevClose
	delta := todayClose.Sub(inputs.PCommit)
	signBit := 0
	if delta > 0 {
		signBit = 1
	}
	magQ := delta.MagQ()
	symbolBytes := []byte{byte(prediction), byte(outcome), byte(signBit), byte(magQ)}

	pCommit := inputs.PCommit
	pReveal := todayClose
	rec.Prediction = &prediction
	rec.Salt = salt
	rec.Outcome = &outcome
	rec.SymbolBits = bits
	rec.ClosePrev = &prevClose
	rec.CloseToday = &todayClose
	rec.Provider = e.cfg.Provider
	rec.Tie = &tie
	rec.Context = inputs.Context
	rec.PCommit = &pCommit
	rec.PReveal = &pReveal
	rec.CommitBarTSET = inputs.CommitBarTSET
	rec.Delta = &delta
	rec.SignBit = &signBit
	rec.MagQ = &magQ
	rec.SymbolBytesHex = hex.EncodeToString(symbolBytes)
	rec.RevealedAtUTC = e.deps.Clock.Now().UTC().Format(time.RFC3339)

	if err := e.deps.Log.Append(date, rec); err != nil {
		return false, err
	}
	e.deps.Logger.Info("revealed symbol",
		"symbol", sym, "date", date,
		"prediction", prediction, "outcome", outcome,
		"delta", delta.String(), "mag_q", magQ)
	rep.record(sym, "revealed")
	return true, nil
}
