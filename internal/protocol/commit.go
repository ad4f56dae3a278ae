package protocol

import (
	"context"
	"time"

	"rrpe/internal/ledger"
)

// Commit runs the commit operation for a trading date: for each tracked
// symbol without a commitment, it captures the commit-bar price, obtains a
// prediction, and persists the commitment digest with its inputs.
//
// Window gating applies unless force is set. A symbol with missing market
// data is skipped (partial success is expected); a second commit for an
// already-committed symbol is a no-op. The document is saved only when at
// least one record changed.
func (e *Engine) Commit(ctx context.Context, date string, force bool) (*Report, error) {
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
		inWindow, err := withinWindow(now, date, e.cfg.Schedule.CommitStart, e.cfg.Schedule.CommitEnd, e.loc)
		if err != nil {
			return nil, err
		}
		if !inWindow {
			e.deps.Logger.Info("outside commit window", "date", date, "now", now.In(e.loc).Format(time.RFC3339))
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
			doc = ledger.NewDocument(date, now.UTC().Format(time.RFC3339), e.codeCommit())
		}

		changed := false
		for _, sym := range e.cfg.Symbols {
			if rec := doc.Symbol(sym); rec != nil && rec.State() != ledger.StateUncommitted {
				e.deps.Logger.Info("commit already exists, skipping", "symbol", sym, "date", date)
				rep.record(sym, "already_committed")
				continue
			}
			committed, err := e.commitSymbol(ctx, doc, sym, date, secret, rep)
			if err != nil {
				return err
			}
			if committed {
				changed = true
			}
		}

		if changed {
			if err := e.deps.Daily.Save(date, doc); err != nil {
				return err
			}
			e.deps.Logger.Info("saved daily document", "date", date)
		}
		rep.Changed = changed
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rep, nil
}

func (e *Engine) commitSymbol(ctx context.Context, doc *ledger.Document, sym, date string, secret []byte, rep *Report) (bool, error) {
	day, err := time.ParseInLocation("2006-01-02", date, e.loc)
	if err != nil {
		return false, err
	}
	target := e.cfg.CommitBarTarget.On(day.Year(), day.Month(), day.Day(), e.loc)

	price, barTS, err := e.deps.Feed.MinuteBarNear(ctx, sym, date, target, e.tolerance())
	if err != nil {
		if isRetryable(err) {
			e.deps.Logger.Warn("commit bar unavailable, skipping symbol", "symbol", sym, "date", date, "error", err)
			rep.record(sym, "skipped_no_data")
			return false, nil
		}
		return false, err
	}

	prediction, err := e.deps.Predictor.Predict(ctx, sym, date)
	if err != nil {
		return false, err
	}

	ctxStr := Context(date, sym, e.cfg)
	salt := Salt(secret, ctxStr)
	commitTS := e.deps.Clock.Now().UTC().Format(time.RFC3339)

	inputs := ledger.CommitInputs{
		Symbol:             sym,
		Prediction:         prediction,
		PCommit:            price,
		CommitBarTSET:      barTS,
		TimestampCommitUTC: commitTS,
		Context:            ctxStr,
	}
	digest, err := Digest(inputs, salt)
	if err != nil {
		return false, err
	}

	rec := doc.EnsureSymbol(sym)
	rec.Commit = digest
	rec.CommitInputs = &inputs
	rec.CommitBarTSET = barTS
	rec.CommittedAtUTC = commitTS

	e.deps.Logger.Info("created commit", "symbol", sym, "date", date, "p_commit", price.String(), "bar_ts", barTS)
	rep.record(sym, "committed")
	return true, nil
}

func (e *Engine) codeCommit() string {
	if e.cfg.CodeCommitEnv == "" {
		return ""
	}
	return envOrEmpty(e.cfg.CodeCommitEnv)
}
