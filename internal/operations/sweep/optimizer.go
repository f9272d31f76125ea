package sweep

import (
	"context"
	"math/rand"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"CryptoBreakoutBot/internal/models"
	"CryptoBreakoutBot/internal/operations/backtest"
)

// Range is a closed float interval to sample from. Min==Max pins the
// parameter.
type Range struct {
	Min float64
	Max float64
}

func (r Range) sample(rng *rand.Rand) float64 {
	if r.Max <= r.Min {
		return r.Min
	}
	return r.Min + rng.Float64()*(r.Max-r.Min)
}

// IntRange is the integer counterpart, inclusive on both ends.
type IntRange struct {
	Min int
	Max int
}

func (r IntRange) sample(rng *rand.Rand) int {
	if r.Max <= r.Min {
		return r.Min
	}
	return r.Min + rng.Intn(r.Max-r.Min+1)
}

// Space is the searched parameter region. Every trial samples each
// dimension uniformly.
type Space struct {
	SlopePct     Range
	MinWidthPct  Range
	ChannelPos   Range
	MinSignalGap IntRange
	LatchBars    IntRange

	TPATRMult Range
	SLATRMult Range

	PendingTTL IntRange
}

// DefaultSpace brackets the production defaults.
func DefaultSpace() Space {
	return Space{
		SlopePct:     Range{0.001, 0.01},
		MinWidthPct:  Range{0.005, 0.03},
		ChannelPos:   Range{0.4, 0.8},
		MinSignalGap: IntRange{4, 16},
		LatchBars:    IntRange{5, 20},
		TPATRMult:    Range{0.5, 2.0},
		SLATRMult:    Range{0.1, 0.5},
		PendingTTL:   IntRange{2, 6},
	}
}

// Trial is one sampled configuration with its run outcome.
type Trial struct {
	ID     string
	Config backtest.Config
	Result *backtest.Result
	Err    error
}

// Optimizer random-searches the space over a fixed bar history. Each
// trial runs a fresh engine, so trials share nothing but the bars.
type Optimizer struct {
	base    backtest.Config
	space   Space
	trials  int
	workers int
	seed    int64
}

func NewOptimizer(base backtest.Config, space Space, trials, workers int, seed int64) *Optimizer {
	if trials < 1 {
		trials = 1
	}
	if workers < 1 {
		workers = 1
	}
	return &Optimizer{
		base:    base,
		space:   space,
		trials:  trials,
		workers: workers,
		seed:    seed,
	}
}

// Run executes all trials and returns them sorted by return, best
// first. Failed trials sort last.
func (o *Optimizer) Run(ctx context.Context, bars []models.Bar) []Trial {
	// sample every config upfront so the search is reproducible
	// regardless of worker scheduling
	rng := rand.New(rand.NewSource(o.seed))
	trials := make([]Trial, o.trials)
	for i := range trials {
		trials[i] = Trial{
			ID:     uuid.NewString(),
			Config: o.sampleConfig(rng),
		}
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < o.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				t := &trials[i]
				engine := backtest.NewEngine(t.Config)
				t.Result, t.Err = engine.Run(bars)
				if t.Err != nil {
					log.Warn().Err(t.Err).Str("trial", t.ID).Msg("trial failed")
				}
			}
		}()
	}

feed:
	for i := range trials {
		select {
		case <-ctx.Done():
			// stop feeding; started trials still finish
			break feed
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	sort.SliceStable(trials, func(a, b int) bool {
		ta, tb := trials[a], trials[b]
		if (ta.Result == nil) != (tb.Result == nil) {
			return ta.Result != nil
		}
		if ta.Result == nil {
			return false
		}
		return ta.Result.ReturnPct > tb.Result.ReturnPct
	})

	if len(trials) > 0 && trials[0].Result != nil {
		log.Info().
			Str("trial", trials[0].ID).
			Float64("return_pct", trials[0].Result.ReturnPct).
			Int("trades", trials[0].Result.Stats.TradeCount).
			Msg("sweep finished")
	}
	return trials
}

func (o *Optimizer) sampleConfig(rng *rand.Rand) backtest.Config {
	cfg := o.base

	cfg.Strategy.SlopePct = o.space.SlopePct.sample(rng)
	cfg.Strategy.MinWidthPct = o.space.MinWidthPct.sample(rng)
	cfg.Strategy.ChannelPos = o.space.ChannelPos.sample(rng)
	cfg.Strategy.MinSignalGap = o.space.MinSignalGap.sample(rng)
	cfg.Strategy.LatchBars = o.space.LatchBars.sample(rng)

	cfg.Risk.Long.TPATRMult = o.space.TPATRMult.sample(rng)
	cfg.Risk.Long.SLATRMult = o.space.SLATRMult.sample(rng)
	cfg.Risk.Short.TPATRMult = cfg.Risk.Long.TPATRMult
	cfg.Risk.Short.SLATRMult = cfg.Risk.Long.SLATRMult

	cfg.PendingTTL = o.space.PendingTTL.sample(rng)
	return cfg
}
