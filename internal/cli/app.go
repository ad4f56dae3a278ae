package cli

import (
	"log/slog"
	"time"

	"rrpe/internal/beacon"
	"rrpe/internal/config"
	"rrpe/internal/extract"
	"rrpe/internal/ledger"
	"rrpe/internal/market"
	"rrpe/internal/predict"
	"rrpe/internal/protocol"
)

// app bundles the constructed components for one invocation.
type app struct {
	cfg       *config.Config
	loc       *time.Location
	engine    *protocol.Engine
	extractor *extract.Extractor
}

// buildApp constructs the full component graph from configuration.
func buildApp(opts *RootOptions) (*app, error) {
	cfg, err := config.Load(opts.Config)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load config", err)
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load config", err)
	}

	cal := market.NYSECalendar{}
	feed := market.NewChartFeed(cfg.ChartURL, cal, loc)
	daily := ledger.NewDaily(cfg.DailyDir)
	elog := ledger.NewEntropyLog(cfg.EntropyLog)

	engine, err := protocol.NewEngine(cfg, protocol.Deps{
		Feed:      feed,
		Calendar:  cal,
		Predictor: &predict.LastReturn{Feed: feed, Calendar: cal},
		Daily:     daily,
		Log:       elog,
		Logger:    slog.Default(),
	})
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to build engine", err)
	}

	return &app{
		cfg:    cfg,
		loc:    loc,
		engine: engine,
		extractor: &extract.Extractor{
			Daily:  daily,
			Log:    elog,
			Beacon: beacon.New(cfg.BeaconURL, slog.Default()),
			Logger: slog.Default(),
		},
	}, nil
}

// resolveDate returns the flag value or today in the exchange time zone.
func (a *app) resolveDate(flag string) (string, error) {
	if flag == "" {
		return time.Now().In(a.loc).Format("2006-01-02"), nil
	}
	if _, err := time.Parse("2006-01-02", flag); err != nil {
		return "", WrapExitError(ExitCommandError, "invalid --date, want YYYY-MM-DD", err)
	}
	return flag, nil
}
