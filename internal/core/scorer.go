package core

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// Scoring weights and fallbacks. Every fallback is a named constant rather
// than a numeric coincidence buried in the math.
const (
	weightPrice    = 0.4
	weightRating   = 0.4
	weightLeadTime = 0.2

	// Delivery rating components, each on a 1–5 scale.
	weightQuality   = 0.5
	weightAccuracy  = 0.3
	weightPackaging = 0.2

	// ratingScaleMax converts a 0–5 rating onto a 0–1 scale.
	ratingScaleMax = 5.0

	// neutralRating stands in when a supplier has neither delivery ratings
	// nor a catalog average: the 0–1 equivalent of a middling 3/5.
	neutralRating = 0.6

	// leadTimeCapDays caps the lead-time term: anything at or beyond 30 days
	// scores as slow as it gets.
	leadTimeCapDays = 30

	// RatingWindow is how many recent delivery ratings feed a supplier's
	// effective rating.
	RatingWindow = 50

	// scoreEpsilon bounds "equal" composite scores for the preferred-supplier
	// tie-break.
	scoreEpsilon = 1e-9

	// maxAlternatives is how many runners-up accompany the best supplier.
	maxAlternatives = 2
)

// SupplierQuote is one supplier's scored candidacy for a reorder.
type SupplierQuote struct {
	SupplierID      int             `json:"supplier_id"`
	SupplierName    string          `json:"supplier_name"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	LeadTimeDays    int             `json:"lead_time_days"`
	MinOrderQty     int             `json:"min_order_qty"`
	IsPreferred     bool            `json:"is_preferred"`
	EffectiveRating float64         `json:"effective_rating"` // 0–1
	PriceScore      float64         `json:"price_score"`      // 1.0 = cheapest
	LeadTimeScore   float64         `json:"lead_time_score"`  // higher = faster
	CompositeScore  float64         `json:"composite_score"`  // lower = better
	TotalCost       decimal.Decimal `json:"total_cost"`
}

// ScoreResult is a ranked supplier comparison for one product and quantity.
type ScoreResult struct {
	Quotes []SupplierQuote `json:"quotes"` // ascending composite score, best first
	// Savings is the spread between the most and least expensive candidate's
	// total cost. Zero unless at least two candidates exist.
	Savings decimal.Decimal `json:"savings"`
	// Gaps lists non-fatal data gaps absorbed by fallbacks (e.g. a supplier
	// with no delivery ratings).
	Gaps []string `json:"gaps,omitempty"`
}

// Best returns the top-ranked quote, or nil when there are no candidates.
func (r *ScoreResult) Best() *SupplierQuote {
	if len(r.Quotes) == 0 {
		return nil
	}
	return &r.Quotes[0]
}

// Alternatives returns up to two runner-up quotes after the best.
func (r *ScoreResult) Alternatives() []SupplierQuote {
	if len(r.Quotes) <= 1 {
		return nil
	}
	end := 1 + maxAlternatives
	if end > len(r.Quotes) {
		end = len(r.Quotes)
	}
	return r.Quotes[1:end]
}

// ScoreSuppliers ranks the active offers for a product by composite score:
//
//	price×0.4 + (1−rating)×0.4 + (1−leadTimeScore)×0.2, lower is better
//
// ratings maps supplier ID to that supplier's recent delivery ratings (most
// recent first, at most RatingWindow). quantity drives each quote's total
// cost. The ranking is a strict function of the inputs: ties within epsilon
// prefer the flagged-preferred offer, then the lower supplier ID.
//
// Pure function over pre-fetched data; inactive offers are ignored.
func ScoreSuppliers(offers []SupplierOffer, ratings map[int][]DeliveryRating, quantity int) ScoreResult {
	var result ScoreResult
	result.Savings = decimal.Zero

	candidates := make([]SupplierOffer, 0, len(offers))
	for _, o := range offers {
		if o.IsActive {
			candidates = append(candidates, o)
		}
	}
	if len(candidates) == 0 {
		return result
	}

	cheapest := candidates[0].UnitPrice
	for _, o := range candidates[1:] {
		if o.UnitPrice.LessThan(cheapest) {
			cheapest = o.UnitPrice
		}
	}

	qty := decimal.NewFromInt(int64(quantity))
	quotes := make([]SupplierQuote, 0, len(candidates))
	for _, o := range candidates {
		rating, gap := effectiveRating(o, ratings[o.SupplierID])
		if gap != "" {
			result.Gaps = append(result.Gaps, gap)
		}

		priceScore := 1.0
		if cheapest.IsPositive() {
			ps, _ := o.UnitPrice.Div(cheapest).Float64()
			priceScore = ps
		}

		lead := o.LeadTimeDays
		if lead > leadTimeCapDays {
			lead = leadTimeCapDays
		}
		leadScore := 1 - float64(lead)/float64(leadTimeCapDays)

		quotes = append(quotes, SupplierQuote{
			SupplierID:      o.SupplierID,
			SupplierName:    o.SupplierName,
			UnitPrice:       o.UnitPrice,
			LeadTimeDays:    o.LeadTimeDays,
			MinOrderQty:     o.MinOrderQty,
			IsPreferred:     o.IsPreferred,
			EffectiveRating: rating,
			PriceScore:      priceScore,
			LeadTimeScore:   leadScore,
			CompositeScore:  priceScore*weightPrice + (1-rating)*weightRating + (1-leadScore)*weightLeadTime,
			TotalCost:       o.UnitPrice.Mul(qty),
		})
	}

	sort.SliceStable(quotes, func(i, j int) bool {
		di := quotes[i].CompositeScore - quotes[j].CompositeScore
		if di < -scoreEpsilon {
			return true
		}
		if di > scoreEpsilon {
			return false
		}
		if quotes[i].IsPreferred != quotes[j].IsPreferred {
			return quotes[i].IsPreferred
		}
		return quotes[i].SupplierID < quotes[j].SupplierID
	})
	result.Quotes = quotes

	if len(quotes) >= 2 {
		minCost, maxCost := quotes[0].TotalCost, quotes[0].TotalCost
		for _, q := range quotes[1:] {
			if q.TotalCost.LessThan(minCost) {
				minCost = q.TotalCost
			}
			if q.TotalCost.GreaterThan(maxCost) {
				maxCost = q.TotalCost
			}
		}
		result.Savings = maxCost.Sub(minCost)
	}
	return result
}

// effectiveRating reduces a supplier's recent delivery ratings to a single
// 0–1 figure: quality 50%, accuracy 30%, packaging 20%. With no ratings it
// falls back to the offer's catalog average, and failing that to the neutral
// default; either fallback is reported as a data gap.
func effectiveRating(o SupplierOffer, recent []DeliveryRating) (rating float64, gap string) {
	if len(recent) > RatingWindow {
		recent = recent[:RatingWindow]
	}
	if len(recent) > 0 {
		var sum float64
		for _, r := range recent {
			weighted := float64(r.QualityRating)*weightQuality +
				float64(r.AccuracyRating)*weightAccuracy +
				float64(r.PackagingRating)*weightPackaging
			sum += weighted / ratingScaleMax
		}
		return sum / float64(len(recent)), ""
	}
	if o.AverageRating > 0 {
		return o.AverageRating / ratingScaleMax,
			fmt.Sprintf("supplier %d (%s) has no delivery ratings; using catalog average", o.SupplierID, o.SupplierName)
	}
	return neutralRating,
		fmt.Sprintf("supplier %d (%s) has no delivery ratings; using neutral default", o.SupplierID, o.SupplierName)
}
