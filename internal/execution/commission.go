package execution

import "sort"

// CommissionModel computes a non-negative commission charge for a fill.
type CommissionModel interface {
	Amount(order Order, fillPrice float64) float64
}

// NoCommission is the identity commission model.
type NoCommission struct{}

func (NoCommission) Amount(Order, float64) float64 { return 0 }

// PerShareCommission charges PerShare × qty, floored at Floor.
type PerShareCommission struct {
	PerShare float64
	Floor    float64
}

func (p PerShareCommission) Amount(order Order, _ float64) float64 {
	c := p.PerShare * order.Qty
	if c < p.Floor {
		return p.Floor
	}
	return c
}

// PercentageCommission charges Bps of notional (qty × fillPrice), floored at
// Floor.
type PercentageCommission struct {
	Bps   float64
	Floor float64
}

func (p PercentageCommission) Amount(order Order, fillPrice float64) float64 {
	notional := order.Qty * fillPrice
	c := notional * p.Bps / 10_000
	if c < p.Floor {
		return p.Floor
	}
	return c
}

// NotionalTier is one threshold/bps pair in a TieredCommission ladder,
// selected by trade notional rather than bar volume.
type NotionalTier struct {
	Threshold float64
	Bps       float64
}

// TieredCommission selects the tier with the highest threshold <= trade
// notional and charges that tier's bps.
type TieredCommission struct {
	Tiers []NotionalTier
}

// NewTieredCommission sorts tiers ascending by threshold so Amount can scan
// in order and keep the last match.
func NewTieredCommission(tiers []NotionalTier) TieredCommission {
	sorted := append([]NotionalTier(nil), tiers...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Threshold < sorted[j].Threshold })
	return TieredCommission{Tiers: sorted}
}

func (t TieredCommission) Amount(order Order, fillPrice float64) float64 {
	notional := order.Qty * fillPrice
	if len(t.Tiers) == 0 {
		return 0
	}
	bps := t.Tiers[0].Bps
	for _, tier := range t.Tiers {
		if notional >= tier.Threshold {
			bps = tier.Bps
		}
	}
	return notional * bps / 10_000
}
