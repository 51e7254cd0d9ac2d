package core_test

import (
	"context"
	"testing"

	"procurement-engine/internal/core"
	"procurement-engine/internal/repo/memory"

	"github.com/shopspring/decimal"
)

// fixture builds a small catalog: three products needing reorder at different
// urgencies, one healthy product, two suppliers.
func recommendFixture() *core.RecommendationService {
	stock := memory.NewStockRepository()
	// 5/50 = 0.1 → CRITICAL
	stock.Put(core.StockPosition{ProductID: 1, ProductName: "Cement 50kg", OnHand: 5, Available: 5, MinStock: 20, ReorderPoint: 50, MaxStock: 200})
	// 12/50 = 0.24 → HIGH
	stock.Put(core.StockPosition{ProductID: 2, ProductName: "Rebar 12mm", OnHand: 12, Available: 12, MinStock: 5, ReorderPoint: 50, MaxStock: 150})
	// 25/50 = 0.5 → MEDIUM
	stock.Put(core.StockPosition{ProductID: 3, ProductName: "Brick pallet", OnHand: 25, Available: 25, MinStock: 5, ReorderPoint: 50, MaxStock: 100})
	// healthy
	stock.Put(core.StockPosition{ProductID: 4, ProductName: "Sand 25kg", OnHand: 90, Available: 90, MinStock: 10, ReorderPoint: 40, MaxStock: 120})

	offers := memory.NewSupplierOfferRepository()
	for _, productID := range []int{1, 2} {
		offers.Add(core.SupplierOffer{SupplierID: 1, SupplierName: "BuildSupply", ProductID: productID, UnitPrice: decimal.NewFromInt(100), LeadTimeDays: 3, AverageRating: 4.5, IsActive: true})
		offers.Add(core.SupplierOffer{SupplierID: 2, SupplierName: "CheapCo", ProductID: productID, UnitPrice: decimal.NewFromInt(80), LeadTimeDays: 14, AverageRating: 3.0, IsActive: true})
	}
	// Product 3 has no offers at all — a data gap, not a failure.

	return core.NewRecommendationService(stock, offers, memory.NewDeliveryRatingRepository(), memory.NewDemandPredictionRepository(), 4)
}

func TestGetSuggestions_RanksAndSummarizes(t *testing.T) {
	svc := recommendFixture()

	result, err := svc.GetSuggestions(context.Background(), nil, 0)
	if err != nil {
		t.Fatalf("GetSuggestions failed: %v", err)
	}

	if len(result.Recommendations) != 3 {
		t.Fatalf("expected 3 recommendations, got %d", len(result.Recommendations))
	}
	wantOrder := []int{1, 2, 3}
	for i, want := range wantOrder {
		if got := result.Recommendations[i].ProductID; got != want {
			t.Errorf("position %d: product %d, want %d (urgency ordering)", i, got, want)
		}
	}

	first := result.Recommendations[0]
	if first.Urgency != core.UrgencyCritical {
		t.Errorf("top urgency = %s, want CRITICAL", first.Urgency)
	}
	if first.SuggestedQty != 195 {
		t.Errorf("SuggestedQty = %d, want 195", first.SuggestedQty)
	}
	if first.BestSupplier == nil {
		t.Fatal("expected a best supplier for product 1")
	}
	if first.BestSupplier.SupplierID != 1 {
		t.Errorf("best supplier = %d, want 1 (rating and lead time dominate)", first.BestSupplier.SupplierID)
	}

	// Product 3 has no offers: present, flagged as a gap, no supplier.
	noOffers := result.Recommendations[2]
	if noOffers.BestSupplier != nil {
		t.Errorf("product without offers must have no best supplier")
	}
	if len(noOffers.Gaps) == 0 {
		t.Error("expected a data-gap note for the offerless product")
	}

	sum := result.Summary
	if sum.TotalFlagged != 3 || sum.CriticalCount != 1 || sum.HighCount != 1 || sum.MediumCount != 1 || sum.LowCount != 0 {
		t.Errorf("summary counts off: %+v", sum)
	}
	// Best-supplier totals: product 1 → 195 × 100, product 2 → 138 × 100.
	if want := decimal.NewFromInt(195*100 + 138*100); !sum.TotalEstimatedCost.Equal(want) {
		t.Errorf("TotalEstimatedCost = %s, want %s", sum.TotalEstimatedCost, want)
	}
	// Savings per product: (100−80) × qty.
	if want := decimal.NewFromInt(195*20 + 138*20); !sum.TotalPotentialSavings.Equal(want) {
		t.Errorf("TotalPotentialSavings = %s, want %s", sum.TotalPotentialSavings, want)
	}
}

func TestGetSuggestions_UrgencyFilterAndLimit(t *testing.T) {
	svc := recommendFixture()
	ctx := context.Background()

	high := core.UrgencyHigh
	result, err := svc.GetSuggestions(ctx, &high, 0)
	if err != nil {
		t.Fatalf("GetSuggestions failed: %v", err)
	}
	if len(result.Recommendations) != 1 || result.Recommendations[0].ProductID != 2 {
		t.Errorf("urgency filter leaked: %+v", result.Recommendations)
	}

	limited, err := svc.GetSuggestions(ctx, nil, 2)
	if err != nil {
		t.Fatalf("GetSuggestions failed: %v", err)
	}
	if len(limited.Recommendations) != 2 {
		t.Errorf("limit ignored: got %d recommendations", len(limited.Recommendations))
	}
	// The summary still reflects everything that was flagged.
	if limited.Summary.TotalFlagged != 3 {
		t.Errorf("summary TotalFlagged = %d, want 3", limited.Summary.TotalFlagged)
	}
}

func TestGetSuggestions_PredictionRaisesQuantity(t *testing.T) {
	stock := memory.NewStockRepository()
	stock.Put(core.StockPosition{ProductID: 1, ProductName: "Cement 50kg", OnHand: 5, Available: 5, MinStock: 20, ReorderPoint: 50, MaxStock: 200})

	offers := memory.NewSupplierOfferRepository()
	offers.Add(core.SupplierOffer{SupplierID: 1, SupplierName: "BuildSupply", ProductID: 1, UnitPrice: decimal.NewFromInt(100), LeadTimeDays: 3, AverageRating: 4.5, IsActive: true})

	predictions := memory.NewDemandPredictionRepository()
	predictions.Put(core.DemandPrediction{ProductID: 1, PredictedDemand: 400, Confidence: 0.85, Timeframe: core.TimeframeMonth, IsActive: true})

	svc := core.NewRecommendationService(stock, offers, memory.NewDeliveryRatingRepository(), predictions, 0)
	result, err := svc.GetSuggestions(context.Background(), nil, 0)
	if err != nil {
		t.Fatalf("GetSuggestions failed: %v", err)
	}

	rec := result.Recommendations[0]
	if rec.SuggestedQty != 400 {
		t.Errorf("SuggestedQty = %d, want 400 from the forecast", rec.SuggestedQty)
	}
	if rec.Prediction == nil || rec.Prediction.Confidence != 0.85 {
		t.Errorf("prediction summary missing or wrong: %+v", rec.Prediction)
	}
}

func TestCompareSuppliers(t *testing.T) {
	svc := recommendFixture()
	ctx := context.Background()

	result, err := svc.CompareSuppliers(ctx, 1, 10)
	if err != nil {
		t.Fatalf("CompareSuppliers failed: %v", err)
	}
	if len(result.Quotes) != 2 {
		t.Fatalf("expected 2 quotes, got %d", len(result.Quotes))
	}
	if result.Quotes[0].SupplierID != 1 {
		t.Errorf("best supplier = %d, want 1", result.Quotes[0].SupplierID)
	}
	if want := decimal.NewFromInt(200); !result.Savings.Equal(want) {
		t.Errorf("Savings = %s, want %s", result.Savings, want)
	}

	if _, err := svc.CompareSuppliers(ctx, 1, 0); !core.IsValidation(err) {
		t.Errorf("quantity 0 must be a validation error, got %v", err)
	}
	if _, err := svc.CompareSuppliers(ctx, 999, 10); !core.IsNotFound(err) {
		t.Errorf("unknown product must be not-found, got %v", err)
	}
}
