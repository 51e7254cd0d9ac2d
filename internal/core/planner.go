package core

import "math"

// PlanQuantity computes the suggested reorder quantity for a stock position.
//
// The baseline refills to the max stock level when one is configured,
// otherwise twice the reorder point. An active demand prediction can only
// raise the baseline, never lower it: the forecast's recommended order is
// preferred, falling back to the raw predicted demand. Fractional forecasts
// round up to whole units.
//
// The result is always ≥ 1 — suggesting a zero-unit reorder is a contract
// violation — so non-positive baselines are clamped to the reorder point, and
// to 1 when that is absent too.
func PlanQuantity(p StockPosition, pred *DemandPrediction) int {
	var qty int
	if p.MaxStock > 0 {
		qty = p.MaxStock - p.OnHand
	} else {
		qty = p.ReorderPoint * 2
	}

	if pred != nil && pred.IsActive {
		demand := pred.PredictedDemand
		if pred.RecommendedOrder != nil && *pred.RecommendedOrder > 0 {
			demand = *pred.RecommendedOrder
		}
		if forecast := int(math.Ceil(demand)); forecast > qty {
			qty = forecast
		}
	}

	if qty < 1 {
		qty = p.ReorderPoint
	}
	if qty < 1 {
		qty = 1
	}
	return qty
}
