package protocol

import (
	"log/slog"
	"os"
	"time"

	"rrpe/internal/config"
	"rrpe/internal/ledger"
	"rrpe/internal/market"
	"rrpe/internal/predict"
)

// Status reports the expected control-flow outcome of an engine invocation.
// These are not errors: the operation returns "no change" rather than failing.
type Status string

const (
	StatusOK            Status = "ok"
	StatusNotTradingDay Status = "not_a_trading_day"
	StatusOutsideWindow Status = "outside_window"
	StatusNoDocument    Status = "no_document"
)

// SymbolResult records what happened to one symbol during an invocation.
type SymbolResult struct {
	Symbol string
	Action string // "committed", "revealed", "skipped_no_data", "already_committed", "already_revealed"
}

// Report is the outcome of one commit or reveal invocation.
type Report struct {
	Date    string
	Status  Status
	Changed bool
	Symbols []SymbolResult
}

func (r *Report) record(symbol, action string) {
	r.Symbols = append(r.Symbols, SymbolResult{Symbol: symbol, Action: action})
}

// Deps are the collaborators an Engine needs. Clock and Logger default to the
// system clock and slog.Default when nil.
type Deps struct {
	Feed      market.Feed
	Calendar  market.Calendar
	Predictor predict.Predictor
	Daily     *ledger.Daily
	Log       *ledger.EntropyLog
	Clock     Clock
	Logger    *slog.Logger
}

// Engine executes the commit and reveal operations for one configuration.
// It is a single-writer batch processor: one invocation per operation per
// date at a time, serialized by the daily document lock.
type Engine struct {
	cfg  *config.Config
	deps Deps
	loc  *time.Location
}

// NewEngine builds an engine. The configuration must already validate.
func NewEngine(cfg *config.Config, deps Deps) (*Engine, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	if deps.Clock == nil {
		deps.Clock = SystemClock{}
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Engine{cfg: cfg, deps: deps, loc: loc}, nil
}

// secret reads the commit secret from the environment. Absence is a fatal
// configuration error for both commit and reveal.
func (e *Engine) secret() ([]byte, error) {
	v := os.Getenv(e.cfg.SecretEnv)
	if v == "" {
		return nil, &Error{
			Code:    CodeMissingSecret,
			Message: "missing secret env var " + e.cfg.SecretEnv,
		}
	}
	return []byte(v), nil
}

func (e *Engine) tolerance() time.Duration {
	return time.Duration(e.cfg.CommitBarTolerance) * time.Minute
}

// isRetryable reports whether a feed error is a per-symbol data gap rather
// than a fatal failure.
func isRetryable(err error) bool {
	return market.IsUnavailable(err)
}

func envOrEmpty(name string) string {
	return os.Getenv(name)
}
