package core_test

import (
	"testing"

	"procurement-engine/internal/core"
)

func floatPtr(f float64) *float64 { return &f }

func TestPlanQuantity(t *testing.T) {
	tests := []struct {
		name string
		pos  core.StockPosition
		pred *core.DemandPrediction
		want int
	}{
		{
			name: "refill to max stock",
			pos:  core.StockPosition{OnHand: 5, MaxStock: 200, ReorderPoint: 50},
			want: 195,
		},
		{
			name: "no max stock falls back to twice the reorder point",
			pos:  core.StockPosition{OnHand: 5, MaxStock: 0, ReorderPoint: 50},
			want: 100,
		},
		{
			name: "prediction raises the baseline",
			pos:  core.StockPosition{OnHand: 5, MaxStock: 200, ReorderPoint: 50},
			pred: &core.DemandPrediction{PredictedDemand: 300, IsActive: true},
			want: 300,
		},
		{
			name: "recommended order wins over predicted demand",
			pos:  core.StockPosition{OnHand: 5, MaxStock: 200, ReorderPoint: 50},
			pred: &core.DemandPrediction{PredictedDemand: 300, RecommendedOrder: floatPtr(250), IsActive: true},
			want: 250,
		},
		{
			name: "prediction never lowers the baseline",
			pos:  core.StockPosition{OnHand: 5, MaxStock: 200, ReorderPoint: 50},
			pred: &core.DemandPrediction{PredictedDemand: 10, IsActive: true},
			want: 195,
		},
		{
			name: "inactive prediction is ignored",
			pos:  core.StockPosition{OnHand: 5, MaxStock: 200, ReorderPoint: 50},
			pred: &core.DemandPrediction{PredictedDemand: 999, IsActive: false},
			want: 195,
		},
		{
			name: "fractional forecast rounds up",
			pos:  core.StockPosition{OnHand: 0, MaxStock: 10, ReorderPoint: 5},
			pred: &core.DemandPrediction{PredictedDemand: 12.3, IsActive: true},
			want: 13,
		},
		{
			name: "overstocked position clamps to reorder point",
			pos:  core.StockPosition{OnHand: 250, MaxStock: 200, ReorderPoint: 50},
			want: 50,
		},
		{
			name: "all-zero thresholds still suggest one unit",
			pos:  core.StockPosition{OnHand: 0, MaxStock: 0, ReorderPoint: 0},
			want: 1,
		},
		{
			name: "overstocked with no reorder point still suggests one unit",
			pos:  core.StockPosition{OnHand: 500, MaxStock: 100, ReorderPoint: 0},
			want: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := core.PlanQuantity(tt.pos, tt.pred); got != tt.want {
				t.Errorf("PlanQuantity = %d, want %d", got, tt.want)
			}
		})
	}
}

// The planner's contract: the suggestion is never below one unit, for any
// combination of inputs.
func TestPlanQuantity_NeverBelowOne(t *testing.T) {
	values := []int{-10, 0, 1, 5, 100}
	for _, onHand := range values {
		for _, maxStock := range values {
			for _, reorder := range values {
				pos := core.StockPosition{OnHand: onHand, MaxStock: maxStock, ReorderPoint: reorder}
				if got := core.PlanQuantity(pos, nil); got < 1 {
					t.Fatalf("PlanQuantity(onHand=%d, max=%d, reorder=%d) = %d, want ≥ 1",
						onHand, maxStock, reorder, got)
				}
			}
		}
	}
}
