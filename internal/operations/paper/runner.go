package paper

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"CryptoBreakoutBot/internal/models"
	"CryptoBreakoutBot/internal/operations/backtest"
	"CryptoBreakoutBot/internal/operations/exchange"
	"CryptoBreakoutBot/internal/repositories"
)

// Config tunes the polling loop of one paper session.
type Config struct {
	Symbol    string
	Timeframe string

	HistoryLimit int           // candles fetched per poll
	CloseLagMs   int64         // margin behind the server clock before a candle counts as closed
	PollInterval time.Duration // sleep between successful polls
	ErrorBackoff time.Duration // sleep after a failed poll
}

// DefaultConfig returns the production polling defaults.
func DefaultConfig(symbol, timeframe string) Config {
	return Config{
		Symbol:       symbol,
		Timeframe:    timeframe,
		HistoryLimit: 200,
		CloseLagMs:   1500,
		PollInterval: 800 * time.Millisecond,
		ErrorBackoff: 3 * time.Second,
	}
}

// Runner feeds live closed candles into a backtest engine, one bar at
// a time. Failed polls are logged and retried with a fixed backoff;
// engine state is only touched by successfully closed candles.
type Runner struct {
	cfg    Config
	src    exchange.OhlcvSource
	engine *backtest.Engine
	// optional; nil disables bar persistence
	barRepo *repositories.BarRepository

	tfMs    int64
	minutes int
	bars    []models.Bar
}

func NewRunner(cfg Config, src exchange.OhlcvSource, engine *backtest.Engine, barRepo *repositories.BarRepository) (*Runner, error) {
	tfMs, err := exchange.TimeframeMs(cfg.Timeframe)
	if err != nil {
		return nil, err
	}
	return &Runner{
		cfg:     cfg,
		src:     src,
		engine:  engine,
		barRepo: barRepo,
		tfMs:    tfMs,
		minutes: int(tfMs / 60_000),
		bars:    make([]models.Bar, 0),
	}, nil
}

// Result exposes the session outcome so far.
func (r *Runner) Result() *backtest.Result {
	return r.engine.Result()
}

// Run polls until the context is cancelled.
func (r *Runner) Run(ctx context.Context) error {
	log.Info().
		Str("symbol", r.cfg.Symbol).
		Str("timeframe", r.cfg.Timeframe).
		Str("source", r.src.Name()).
		Msg("paper session started")

	for {
		if err := ctx.Err(); err != nil {
			log.Info().Int("bars", len(r.bars)).Msg("paper session stopped")
			return nil
		}

		sleep := r.cfg.PollInterval
		if err := r.poll(ctx); err != nil {
			if ctx.Err() != nil {
				continue
			}
			log.Error().Err(err).Msg("poll failed")
			sleep = r.cfg.ErrorBackoff
		}

		select {
		case <-ctx.Done():
		case <-time.After(sleep):
		}
	}
}

// poll fetches recent candles and advances the engine when a new
// closed candle appeared.
func (r *Runner) poll(ctx context.Context) error {
	serverTime, err := r.src.ServerTimeMs(ctx)
	if err != nil {
		return err
	}

	candles, err := r.src.FetchOHLCV(ctx, r.cfg.Symbol, r.cfg.Timeframe, r.cfg.HistoryLimit)
	if err != nil {
		return err
	}

	closed := lastClosedCandle(candles, serverTime, r.tfMs, r.cfg.CloseLagMs)
	if closed == nil {
		return nil
	}

	if len(r.bars) > 0 {
		last := r.bars[len(r.bars)-1].Timestamp.UnixMilli()
		if closed.Timestamp <= last {
			return nil
		}
	}

	bar := closed.Bar(r.cfg.Symbol, r.minutes)
	r.bars = append(r.bars, bar)

	if r.barRepo != nil {
		if err := r.barRepo.Create(&bar); err != nil {
			log.Warn().Err(err).Msg("bar persistence failed")
		}
	}

	ev, err := r.engine.ProcessBar(r.bars)
	if err != nil {
		// the bar was bad, not the engine: drop it and report
		r.bars = r.bars[:len(r.bars)-1]
		return err
	}

	log.Info().
		Time("bar", bar.Timestamp).
		Float64("close", bar.Close).
		Str("long", ev.LongSignal.String()).
		Str("short", ev.ShortSignal.String()).
		Float64("balance", ev.Balance).
		Msg("bar processed")
	return nil
}

// lastClosedCandle returns the newest candle whose close time is at
// least closeLag behind the server clock, or nil when every candle is
// still forming.
func lastClosedCandle(candles []exchange.Candle, serverTimeMs, tfMs, closeLagMs int64) *exchange.Candle {
	for i := len(candles) - 1; i >= 0; i-- {
		if candles[i].Timestamp+tfMs <= serverTimeMs-closeLagMs {
			return &candles[i]
		}
	}
	return nil
}
