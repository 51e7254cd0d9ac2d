package core

import (
	"context"
	"fmt"
	"log"
	"math"
)

// Reorder policy defaults. The safety factor absorbs demand variance on top
// of the single reorder-point heuristic; this engine deliberately does no
// stochastic safety-stock modeling.
const (
	safetyFactor     = 1.5
	demandWindowDays = 30
	minLeadTimeDays  = 1
)

// ReorderPointCalculator periodically recomputes each product's reorder point
// and max stock level from demand velocity and supplier lead time.
type ReorderPointCalculator struct {
	stock  StockRepository
	offers SupplierOfferRepository
	sales  SalesHistoryRepository
}

// NewReorderPointCalculator wires the calculator to its collaborators.
func NewReorderPointCalculator(stock StockRepository, offers SupplierOfferRepository, sales SalesHistoryRepository) *ReorderPointCalculator {
	return &ReorderPointCalculator{stock: stock, offers: offers, sales: sales}
}

// RecomputeResult reports a batch recomputation: how many products had their
// thresholds changed, and per-product failures that did not abort the run.
type RecomputeResult struct {
	UpdatedCount int         `json:"updated_count"`
	Errors       []ItemError `json:"errors,omitempty"`
}

// Recompute runs the calculator over all active products:
//
//	reorderPoint = ceil(dailyDemand × leadTimeDays × safetyFactor)
//	maxStock     = reorderPoint × 2, unless already configured higher
//
// dailyDemand is measured over a trailing 30-day window; lead time is the
// best (minimum) among the product's active offers, floored at one day.
// Products with no sales history in the window keep their existing thresholds
// untouched — they are never zeroed out. Writes happen only when a threshold
// actually changes, so an immediate second run with unchanged inputs is a
// no-op. One product's failure is collected, not fatal to the batch.
func (c *ReorderPointCalculator) Recompute(ctx context.Context) (*RecomputeResult, error) {
	positions, err := c.stock.ListPositions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list stock positions: %w", err)
	}

	result := &RecomputeResult{}
	for _, p := range positions {
		updated, err := c.recomputeOne(ctx, p)
		if err != nil {
			result.Errors = append(result.Errors, itemError(p.ProductID, err))
			continue
		}
		if updated {
			result.UpdatedCount++
		}
	}
	return result, nil
}

func (c *ReorderPointCalculator) recomputeOne(ctx context.Context, p StockPosition) (bool, error) {
	demand, hasHistory, err := c.sales.DailyDemand(ctx, p.ProductID, demandWindowDays)
	if err != nil {
		return false, fmt.Errorf("demand velocity: %w", err)
	}
	if !hasHistory {
		return false, nil
	}

	offers, err := c.offers.ListActiveByProduct(ctx, p.ProductID)
	if err != nil {
		return false, fmt.Errorf("supplier offers: %w", err)
	}
	if len(offers) == 0 {
		// No lead time to plan against; leave thresholds as they are.
		log.Printf("reorder recompute: product %d has sales history but no active offers, skipping", p.ProductID)
		return false, nil
	}

	leadDays := offers[0].LeadTimeDays
	for _, o := range offers[1:] {
		if o.LeadTimeDays < leadDays {
			leadDays = o.LeadTimeDays
		}
	}
	if leadDays < minLeadTimeDays {
		leadDays = minLeadTimeDays
	}

	reorderPoint := int(math.Ceil(demand * float64(leadDays) * safetyFactor))
	maxStock := reorderPoint * 2
	if p.MaxStock > maxStock {
		maxStock = p.MaxStock
	}

	if reorderPoint == p.ReorderPoint && maxStock == p.MaxStock {
		return false, nil
	}
	if err := c.stock.UpdateThresholds(ctx, p.ProductID, reorderPoint, maxStock); err != nil {
		return false, fmt.Errorf("update thresholds: %w", err)
	}
	return true, nil
}
