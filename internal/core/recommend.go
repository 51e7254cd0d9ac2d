package core

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// DefaultWorkers bounds the per-product scoring fan-out when no explicit pool
// size is configured.
const DefaultWorkers = 8

// Recommendation is one product's reorder proposal: what to buy, how urgently,
// from whom, and what the supplier spread is worth.
type Recommendation struct {
	ProductID    int     `json:"product_id"`
	ProductName  string  `json:"product_name"`
	OnHand       int     `json:"on_hand"`
	Available    int     `json:"available"`
	ReorderPoint int     `json:"reorder_point"`
	StockRatio   float64 `json:"stock_ratio"`
	Urgency      Urgency `json:"urgency"`
	SuggestedQty int     `json:"suggested_qty"`

	BestSupplier *SupplierQuote  `json:"best_supplier,omitempty"`
	Alternatives []SupplierQuote `json:"alternatives,omitempty"`

	Prediction *PredictionSummary `json:"prediction,omitempty"`

	// Savings is the total-cost spread across candidate suppliers; zero when
	// fewer than two candidates exist.
	Savings decimal.Decimal `json:"savings"`

	// Gaps lists data gaps absorbed by defaults while building this
	// recommendation (no offers, no ratings, no prediction is not a gap).
	Gaps []string `json:"gaps,omitempty"`
}

// PredictionSummary is the slice of a demand prediction worth echoing back to
// the caller.
type PredictionSummary struct {
	PredictedDemand float64   `json:"predicted_demand"`
	Confidence      float64   `json:"confidence"`
	Timeframe       Timeframe `json:"timeframe"`
	TargetDate      time.Time `json:"target_date"`
}

// SuggestionSummary aggregates a recommendation run. Counts and totals cover
// every product that passed the urgency filter, not just the truncated page.
type SuggestionSummary struct {
	TotalFlagged          int             `json:"total_flagged"`
	CriticalCount         int             `json:"critical_count"`
	HighCount             int             `json:"high_count"`
	MediumCount           int             `json:"medium_count"`
	LowCount              int             `json:"low_count"`
	TotalEstimatedCost    decimal.Decimal `json:"total_estimated_cost"`
	TotalPotentialSavings decimal.Decimal `json:"total_potential_savings"`
}

// SuggestionsResult is the recommendation aggregator's output.
type SuggestionsResult struct {
	Recommendations []Recommendation  `json:"recommendations"`
	Summary         SuggestionSummary `json:"summary"`
}

// RecommendationService composes the inventory monitor, quantity planner, and
// supplier scorer into a prioritized recommendation list. Read-only and
// side-effect-free: concurrent calls need no locking.
type RecommendationService struct {
	stock       StockRepository
	offers      SupplierOfferRepository
	ratings     DeliveryRatingRepository
	predictions DemandPredictionRepository
	workers     int
}

// NewRecommendationService wires the aggregator to its repositories. workers
// bounds the per-product scoring pool; values < 1 fall back to DefaultWorkers.
func NewRecommendationService(
	stock StockRepository,
	offers SupplierOfferRepository,
	ratings DeliveryRatingRepository,
	predictions DemandPredictionRepository,
	workers int,
) *RecommendationService {
	if workers < 1 {
		workers = DefaultWorkers
	}
	return &RecommendationService{
		stock:       stock,
		offers:      offers,
		ratings:     ratings,
		predictions: predictions,
		workers:     workers,
	}
}

// GetSuggestions runs the monitor over every stock position, keeps the
// products that need reordering, plans and scores each across a bounded
// worker pool, and returns them ranked by urgency (then by how depleted the
// position is, then by product ID for a stable order). urgency, when non-nil,
// keeps only that bucket; limit > 0 truncates the list after ranking.
func (s *RecommendationService) GetSuggestions(ctx context.Context, urgency *Urgency, limit int) (*SuggestionsResult, error) {
	positions, err := s.stock.ListPositions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list stock positions: %w", err)
	}

	type flagged struct {
		pos        StockPosition
		assessment Assessment
	}
	var work []flagged
	for _, p := range positions {
		a := AssessStock(p)
		if !a.NeedsReorder {
			continue
		}
		if urgency != nil && a.Urgency != *urgency {
			continue
		}
		work = append(work, flagged{pos: p, assessment: a})
	}

	recs := make([]Recommendation, len(work))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, w := range work {
		i, w := i, w
		g.Go(func() error {
			rec, err := s.buildRecommendation(gctx, w.pos, w.assessment)
			if err != nil {
				return err
			}
			recs[i] = *rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.SliceStable(recs, func(i, j int) bool {
		if ri, rj := recs[i].Urgency.Rank(), recs[j].Urgency.Rank(); ri != rj {
			return ri < rj
		}
		if recs[i].StockRatio != recs[j].StockRatio {
			return recs[i].StockRatio < recs[j].StockRatio
		}
		return recs[i].ProductID < recs[j].ProductID
	})

	summary := summarize(recs)
	if limit > 0 && len(recs) > limit {
		recs = recs[:limit]
	}
	return &SuggestionsResult{Recommendations: recs, Summary: summary}, nil
}

// CompareSuppliers exposes the supplier scorer alone: the ranked quotes for
// one product at a given quantity.
func (s *RecommendationService) CompareSuppliers(ctx context.Context, productID, quantity int) (*ScoreResult, error) {
	if quantity < 1 {
		return nil, &ValidationError{Field: "quantity", Reason: "must be at least 1"}
	}
	if _, err := s.stock.GetPosition(ctx, productID); err != nil {
		return nil, err
	}
	offers, err := s.offers.ListActiveByProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("supplier offers for product %d: %w", productID, err)
	}
	ratings, err := s.fetchRatings(ctx, offers)
	if err != nil {
		return nil, err
	}
	result := ScoreSuppliers(offers, ratings, quantity)
	return &result, nil
}

func (s *RecommendationService) buildRecommendation(ctx context.Context, p StockPosition, a Assessment) (*Recommendation, error) {
	rec := &Recommendation{
		ProductID:    p.ProductID,
		ProductName:  p.ProductName,
		OnHand:       p.OnHand,
		Available:    p.Available,
		ReorderPoint: p.ReorderPoint,
		StockRatio:   a.StockRatio,
		Urgency:      a.Urgency,
		Savings:      decimal.Zero,
	}

	pred, err := s.predictions.ActiveByProduct(ctx, p.ProductID)
	if err != nil {
		return nil, fmt.Errorf("demand prediction for product %d: %w", p.ProductID, err)
	}
	rec.SuggestedQty = PlanQuantity(p, pred)
	if pred != nil {
		rec.Prediction = &PredictionSummary{
			PredictedDemand: pred.PredictedDemand,
			Confidence:      pred.Confidence,
			Timeframe:       pred.Timeframe,
			TargetDate:      pred.TargetDate,
		}
	}

	offers, err := s.offers.ListActiveByProduct(ctx, p.ProductID)
	if err != nil {
		return nil, fmt.Errorf("supplier offers for product %d: %w", p.ProductID, err)
	}
	if len(offers) == 0 {
		rec.Gaps = append(rec.Gaps, fmt.Sprintf("product %d (%s) has no active supplier offers", p.ProductID, p.ProductName))
		return rec, nil
	}

	ratings, err := s.fetchRatings(ctx, offers)
	if err != nil {
		return nil, err
	}
	scored := ScoreSuppliers(offers, ratings, rec.SuggestedQty)
	rec.BestSupplier = scored.Best()
	rec.Alternatives = scored.Alternatives()
	rec.Savings = scored.Savings
	rec.Gaps = append(rec.Gaps, scored.Gaps...)
	return rec, nil
}

// fetchRatings loads each candidate supplier's recent ratings once, even when
// a supplier has several offers in play.
func (s *RecommendationService) fetchRatings(ctx context.Context, offers []SupplierOffer) (map[int][]DeliveryRating, error) {
	ratings := make(map[int][]DeliveryRating, len(offers))
	for _, o := range offers {
		if !o.IsActive {
			continue
		}
		if _, done := ratings[o.SupplierID]; done {
			continue
		}
		recent, err := s.ratings.RecentBySupplier(ctx, o.SupplierID, RatingWindow)
		if err != nil {
			return nil, fmt.Errorf("delivery ratings for supplier %d: %w", o.SupplierID, err)
		}
		ratings[o.SupplierID] = recent
	}
	return ratings, nil
}

func summarize(recs []Recommendation) SuggestionSummary {
	sum := SuggestionSummary{
		TotalFlagged:          len(recs),
		TotalEstimatedCost:    decimal.Zero,
		TotalPotentialSavings: decimal.Zero,
	}
	for _, r := range recs {
		switch r.Urgency {
		case UrgencyCritical:
			sum.CriticalCount++
		case UrgencyHigh:
			sum.HighCount++
		case UrgencyMedium:
			sum.MediumCount++
		default:
			sum.LowCount++
		}
		if r.BestSupplier != nil {
			sum.TotalEstimatedCost = sum.TotalEstimatedCost.Add(r.BestSupplier.TotalCost)
		}
		sum.TotalPotentialSavings = sum.TotalPotentialSavings.Add(r.Savings)
	}
	return sum
}
