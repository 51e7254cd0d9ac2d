package core

// Assessment is the inventory monitor's verdict for one stock position.
type Assessment struct {
	NeedsReorder bool    `json:"needs_reorder"`
	Urgency      Urgency `json:"urgency"`
	StockRatio   float64 `json:"stock_ratio"`
}

// AssessStock classifies a product's restocking urgency. A product needs
// reordering when available stock has fallen to its reorder point or on-hand
// stock to its minimum level. The urgency bucket follows the ratio of
// available stock to the reorder point; the denominator is floored at 1 so a
// zero reorder point cannot divide by zero.
//
// Pure function of its input: no repository access, no side effects.
func AssessStock(p StockPosition) Assessment {
	denom := p.ReorderPoint
	if denom < 1 {
		denom = 1
	}
	ratio := float64(p.Available) / float64(denom)

	a := Assessment{StockRatio: ratio, Urgency: UrgencyLow}
	if p.Available > p.ReorderPoint && p.OnHand > p.MinStock {
		return a
	}
	a.NeedsReorder = true

	switch {
	case ratio <= 0.1:
		a.Urgency = UrgencyCritical
	case ratio <= 0.3:
		a.Urgency = UrgencyHigh
	case ratio <= 0.6:
		a.Urgency = UrgencyMedium
	default:
		a.Urgency = UrgencyLow
	}
	return a
}
