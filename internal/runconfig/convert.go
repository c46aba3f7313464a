package runconfig

import (
	"fmt"

	"github.com/chidi150c/backtestlab/internal/execution"
	"github.com/chidi150c/backtestlab/internal/killswitch"
	"github.com/chidi150c/backtestlab/internal/metrics"
	"github.com/chidi150c/backtestlab/internal/strategy/atrbreakout"
	"github.com/chidi150c/backtestlab/internal/sweep"
)

// ToParameterSpace converts the config's ordered parameter-space entries
// into a sweep.ParameterSpace, preserving declaration order.
func (c SweepConfig) ToParameterSpace() (*sweep.ParameterSpace, error) {
	if len(c.ParameterSpace) == 0 {
		return nil, fmt.Errorf("sweep config has no parameter_space entries")
	}
	ps := sweep.NewParameterSpace()
	for _, p := range c.ParameterSpace {
		if p.Name == "" {
			return nil, fmt.Errorf("parameter_space entry missing a name")
		}
		if len(p.Values) == 0 {
			return nil, fmt.Errorf("parameter %q has no candidate values", p.Name)
		}
		ps.Add(p.Name, p.Values...)
	}
	return ps, nil
}

// ResolveObjective maps the configured objective identifier to a
// sweep.Objective. Unknown identifiers default to Sharpe, matching
// setDefaults' "sharpe" default.
func (c SweepConfig) ResolveObjective() sweep.Objective {
	switch c.Objective {
	case "sharpe", "":
		return sweep.DefaultObjective
	case "sortino":
		return func(s metrics.Summary) float64 { return s.Sortino() }
	case "calmar":
		return func(s metrics.Summary) float64 { return s.Calmar() }
	case "total_return":
		return func(s metrics.Summary) float64 { return s.TotalReturn() }
	default:
		return sweep.DefaultObjective
	}
}

// ToStrategyParams converts a StrategyConfig into atrbreakout.Params, wiring
// symbol in from the sibling RunConfig since the strategy is symbol-scoped.
func (c StrategyConfig) ToStrategyParams(symbol string) atrbreakout.Params {
	dir := atrbreakout.Direction(c.Direction)
	switch dir {
	case atrbreakout.DirectionLong, atrbreakout.DirectionShort, atrbreakout.DirectionBoth:
	default:
		dir = atrbreakout.DirectionBoth
	}
	return atrbreakout.Params{
		Symbol:                symbol,
		Lookback:              c.Lookback,
		Multiplier:            c.Multiplier,
		MinATRThreshold:       c.MinATRThreshold,
		StopLossATRMultiplier: c.StopLossATRMultiplier,
		DefaultSize:           c.DefaultSize,
		MaxRiskPerTrade:       c.MaxRiskPerTrade,
		PositionSizeBudget:    c.PositionSizeBudget,
		Direction:             dir,
		UseDynamicTrailing:    c.UseDynamicTrailing,
		TrailingMinSamples:    c.TrailingMinSamples,
		TrailingMultiplier:    c.TrailingMultiplier,
	}
}

// ToParamsMap flattens StrategyConfig into the numeric map
// strategy.Strategy.SetParams (and sweep points) consume.
func (c StrategyConfig) ToParamsMap() map[string]float64 {
	return map[string]float64{
		"lookback":                 float64(c.Lookback),
		"multiplier":               c.Multiplier,
		"min_atr_threshold":        c.MinATRThreshold,
		"stop_loss_atr_multiplier": c.StopLossATRMultiplier,
		"default_size":             c.DefaultSize,
		"max_risk_per_trade":       c.MaxRiskPerTrade,
		"position_size_budget":     c.PositionSizeBudget,
		"trailing_multiplier":      c.TrailingMultiplier,
		"trailing_min_samples":     float64(c.TrailingMinSamples),
	}
}

// ToExecutionEngine builds an *execution.Engine from the configured model
// modes. Every model is independently disableable: "none" (or empty) maps
// to that model's identity instance.
func (c ExecutionConfig) ToExecutionEngine() (*execution.Engine, error) {
	var slip execution.SlippageModel
	switch c.SlippageMode {
	case "", "none":
		slip = execution.NoSlippage{}
	case "fixed":
		slip = execution.FixedSlippage{Dollars: c.SlippageFixed}
	case "percentage":
		slip = execution.PercentageSlippage{Bps: c.SlippageBps}
	case "volume_tiered":
		tiers := make([]execution.VolumeTier, len(c.SlippageTiers))
		for i, t := range c.SlippageTiers {
			tiers[i] = execution.VolumeTier{Threshold: t.Threshold, Bps: t.Bps}
		}
		slip = execution.NewVolumeTieredSlippage(tiers)
	default:
		return nil, fmt.Errorf("unknown slippage_mode %q", c.SlippageMode)
	}

	var comm execution.CommissionModel
	switch c.CommissionMode {
	case "", "none":
		comm = execution.NoCommission{}
	case "per_share":
		comm = execution.PerShareCommission{PerShare: c.CommissionRate, Floor: c.CommissionFloor}
	case "percentage":
		comm = execution.PercentageCommission{Bps: c.CommissionRate, Floor: c.CommissionFloor}
	case "tiered":
		tiers := make([]execution.NotionalTier, len(c.CommissionTiers))
		for i, t := range c.CommissionTiers {
			tiers[i] = execution.NotionalTier{Threshold: t.Threshold, Bps: t.Bps}
		}
		comm = execution.NewTieredCommission(tiers)
	default:
		return nil, fmt.Errorf("unknown commission_mode %q", c.CommissionMode)
	}

	var impact execution.MarketImpactModel
	switch c.ImpactMode {
	case "", "none":
		impact = execution.NoImpact{}
	case "linear":
		impact = execution.LinearImpact{Rate: c.ImpactRate}
	case "sqrt":
		impact = execution.SqrtImpact{Coefficient: c.ImpactCoefficient}
	default:
		return nil, fmt.Errorf("unknown impact_mode %q", c.ImpactMode)
	}

	return execution.NewEngine(c.SpreadBps, slip, impact, comm), nil
}

// ToManager builds a killswitch.Manager from the configured thresholds.
// A zero threshold disables that trigger (no halt-immediately default).
func (c KillSwitchConfig) ToManager(initialCash float64) *killswitch.Manager {
	var triggers []killswitch.Trigger
	if c.MaxDrawdown > 0 {
		triggers = append(triggers, killswitch.NewDrawdownTrigger(c.MaxDrawdown))
	}
	if c.MaxLossDollars > 0 {
		triggers = append(triggers, killswitch.NewLossTrigger(initialCash, c.MaxLossDollars))
	}
	if c.MaxVolatility > 0 {
		triggers = append(triggers, killswitch.NewVolatilityTrigger(c.MaxVolatility, c.VolatilityLookbackBars))
	}
	if c.VaRLimit > 0 {
		triggers = append(triggers, killswitch.NewVaRTrigger(c.VaRLimit, c.VaRConfidence, c.VaRLookbackBars))
	}
	return killswitch.NewManager(triggers...)
}
