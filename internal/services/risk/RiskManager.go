package risk

import (
	"CryptoBreakoutBot/internal/models"
	"CryptoBreakoutBot/internal/services/indicators"
)

// ExitReason says which protective level closed a position.
type ExitReason int

const (
	ExitNone ExitReason = iota
	ExitSL
	ExitTP
)

func (r ExitReason) String() string {
	switch r {
	case ExitSL:
		return "SL"
	case ExitTP:
		return "TP"
	default:
		return "NONE"
	}
}

// SideParams are the ATR multiples of one trade direction.
type SideParams struct {
	TPATRMult     float64
	SLATRMult     float64
	MaxSARATRMult float64
}

// Params configure position sizing and protective levels.
type Params struct {
	TotalDeposit float64
	TradeStake   float64 // full notional of one trade, filled in two halves
	Long         SideParams
	Short        SideParams
}

// DefaultParams returns the production sizing defaults.
func DefaultParams() Params {
	side := SideParams{TPATRMult: 1.0, SLATRMult: 0.25, MaxSARATRMult: 3.0}
	return Params{
		TotalDeposit: 10000,
		TradeStake:   1000,
		Long:         side,
		Short:        side,
	}
}

// RiskManager is the position ledger: it holds at most one position,
// sizes its tranches, maintains TP/SL, and settles PnL into the
// balance on exit.
type RiskManager struct {
	params  Params
	balance float64

	side       models.Side
	entryPrice float64
	units      float64
	tp         float64
	sl         float64
	fullFilled bool
}

func NewRiskManager(params Params) *RiskManager {
	return &RiskManager{
		params:  params,
		balance: params.TotalDeposit,
	}
}

func (r *RiskManager) Balance() float64    { return r.balance }
func (r *RiskManager) Positioned() bool    { return r.side != models.SideNone }
func (r *RiskManager) Side() models.Side   { return r.side }
func (r *RiskManager) EntryPrice() float64 { return r.entryPrice }
func (r *RiskManager) Units() float64      { return r.units }
func (r *RiskManager) TP() float64         { return r.tp }
func (r *RiskManager) SL() float64         { return r.sl }
func (r *RiskManager) FullFilled() bool    { return r.fullFilled }
func (r *RiskManager) Stake() float64      { return r.params.TradeStake }

// EnterPartial opens the first half of the stake. Holding a position on
// the opposite side makes it a no-op; the position is never reversed
// in place.
func (r *RiskManager) EnterPartial(side models.Side, price, atr float64) {
	if r.side != models.SideNone && r.side != side {
		return
	}
	r.openTranche(side, price, atr, r.params.TradeStake*0.5)
	r.fullFilled = false
}

// AddFull adds the second half of the stake to an existing position of
// the same side. The position is marked fully filled even when the
// tranche itself is skipped, so a failed add is never retried.
func (r *RiskManager) AddFull(side models.Side, price, atr float64) {
	if r.side != side || r.fullFilled {
		return
	}
	r.openTranche(side, price, atr, r.params.TradeStake*0.5)
	r.fullFilled = true
}

// openTranche fills one tranche at price and re-derives TP/SL from the
// weighted average entry. Unaffordable or degenerate fills are skipped
// silently.
func (r *RiskManager) openTranche(side models.Side, price, atr, notional float64) {
	if atr <= 0 || price <= 0 || notional <= 0 || r.balance < notional {
		return
	}

	addUnits := notional / price
	total := r.units + addUnits
	r.entryPrice = (r.entryPrice*r.units + price*addUnits) / total
	r.units = total
	r.side = side

	sp := r.sideParams(side)
	if side == models.SideLong {
		r.tp = r.entryPrice + sp.TPATRMult*atr
		r.sl = r.entryPrice - sp.SLATRMult*atr
	} else {
		r.tp = r.entryPrice - sp.TPATRMult*atr
		r.sl = r.entryPrice + sp.SLATRMult*atr
	}
}

// UpdateTrailingStop ratchets the stop toward the Parabolic SAR once
// the position is in profit. The stop only ever tightens, and never
// further than MaxSARATRMult ATRs of locked profit.
func (r *RiskManager) UpdateTrailingStop(price float64, atr, sar indicators.Value) {
	if r.side == models.SideNone || !sar.Usable() || !atr.Usable() || atr.V <= 0 {
		return
	}

	sp := r.sideParams(r.side)

	if r.side == models.SideLong {
		profitATR := (price - r.entryPrice) / atr.V
		if profitATR <= 0 {
			return
		}
		if profitATR > sp.MaxSARATRMult {
			profitATR = sp.MaxSARATRMult
		}
		maxSL := r.entryPrice + profitATR*atr.V

		newSL := r.sl
		if sar.V > newSL {
			newSL = sar.V
		}
		if newSL > maxSL {
			newSL = maxSL
		}
		if newSL > r.sl {
			r.sl = newSL
		}
		return
	}

	profitATR := (r.entryPrice - price) / atr.V
	if profitATR <= 0 {
		return
	}
	if profitATR > sp.MaxSARATRMult {
		profitATR = sp.MaxSARATRMult
	}
	maxSL := r.entryPrice - profitATR*atr.V

	newSL := r.sl
	if sar.V < newSL {
		newSL = sar.V
	}
	if newSL < maxSL {
		newSL = maxSL
	}
	if newSL < r.sl {
		r.sl = newSL
	}
}

// CheckExit tests the protective levels against price. The stop is
// checked before the target: when a bar straddles both, the loss wins.
func (r *RiskManager) CheckExit(price float64) ExitReason {
	if r.side == models.SideNone {
		return ExitNone
	}

	if r.side == models.SideLong {
		if price <= r.sl {
			return ExitSL
		}
		if price >= r.tp {
			return ExitTP
		}
		return ExitNone
	}

	if price >= r.sl {
		return ExitSL
	}
	if price <= r.tp {
		return ExitTP
	}
	return ExitNone
}

// Exit closes the whole position at price, settles PnL into the
// balance, and resets the ledger. Returns the realized PnL.
func (r *RiskManager) Exit(price float64) float64 {
	if r.side == models.SideNone {
		return 0
	}

	var pnl float64
	if r.side == models.SideLong {
		pnl = (price - r.entryPrice) * r.units
	} else {
		pnl = (r.entryPrice - price) * r.units
	}
	r.balance += pnl

	r.side = models.SideNone
	r.entryPrice = 0
	r.units = 0
	r.tp = 0
	r.sl = 0
	r.fullFilled = false

	return pnl
}

func (r *RiskManager) sideParams(side models.Side) SideParams {
	if side == models.SideShort {
		return r.params.Short
	}
	return r.params.Long
}
