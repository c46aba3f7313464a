package execution

import "sort"

// SlippageModel returns a non-negative per-unit-price slippage amount added
// (with sign by side) to the spread-adjusted base price.
type SlippageModel interface {
	Amount(order Order, marketPrice, volume float64) float64
}

// NoSlippage is the identity slippage model.
type NoSlippage struct{}

func (NoSlippage) Amount(Order, float64, float64) float64 { return 0 }

// FixedSlippage adds a constant dollar amount regardless of price or volume.
type FixedSlippage struct {
	Dollars float64
}

func (f FixedSlippage) Amount(Order, float64, float64) float64 { return f.Dollars }

// PercentageSlippage adds marketPrice × bps/10_000.
type PercentageSlippage struct {
	Bps float64
}

func (p PercentageSlippage) Amount(_ Order, marketPrice, _ float64) float64 {
	return marketPrice * p.Bps / 10_000
}

// VolumeTier is one threshold/bps pair in a VolumeTieredSlippage ladder.
type VolumeTier struct {
	Threshold float64
	Bps       float64
}

// VolumeTieredSlippage selects the tier with the highest threshold that is
// <= the bar volume, then applies that tier's bps like PercentageSlippage.
// Tiers need not be pre-sorted: the constructor sorts a copy of them
// eagerly, so Amount never sorts.
type VolumeTieredSlippage struct {
	tiers []VolumeTier
}

// NewVolumeTieredSlippage builds a tier ladder, sorted ascending by
// threshold so tier selection can scan in order and keep the last match.
func NewVolumeTieredSlippage(tiers []VolumeTier) VolumeTieredSlippage {
	sorted := append([]VolumeTier(nil), tiers...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Threshold < sorted[j].Threshold })
	return VolumeTieredSlippage{tiers: sorted}
}

func (v VolumeTieredSlippage) Amount(_ Order, marketPrice, volume float64) float64 {
	if len(v.tiers) == 0 {
		return 0
	}
	bps := v.tiers[0].Bps
	for _, tier := range v.tiers {
		if volume >= tier.Threshold {
			bps = tier.Bps
		}
	}
	return marketPrice * bps / 10_000
}
