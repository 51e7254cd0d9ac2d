package core_test

import (
	"testing"

	"procurement-engine/internal/core"
)

func TestAssessStock_Buckets(t *testing.T) {
	tests := []struct {
		name         string
		pos          core.StockPosition
		needsReorder bool
		urgency      core.Urgency
	}{
		{
			name:         "well stocked",
			pos:          core.StockPosition{OnHand: 100, Available: 90, MinStock: 10, ReorderPoint: 50},
			needsReorder: false,
			urgency:      core.UrgencyLow,
		},
		{
			name:         "critical at ratio 0.1",
			pos:          core.StockPosition{OnHand: 5, Available: 5, MinStock: 20, ReorderPoint: 50},
			needsReorder: true,
			urgency:      core.UrgencyCritical,
		},
		{
			name:         "high just above critical",
			pos:          core.StockPosition{OnHand: 6, Available: 6, MinStock: 20, ReorderPoint: 50},
			needsReorder: true,
			urgency:      core.UrgencyHigh,
		},
		{
			name:         "high at ratio 0.3",
			pos:          core.StockPosition{OnHand: 15, Available: 15, MinStock: 5, ReorderPoint: 50},
			needsReorder: true,
			urgency:      core.UrgencyHigh,
		},
		{
			name:         "medium at ratio 0.6",
			pos:          core.StockPosition{OnHand: 30, Available: 30, MinStock: 5, ReorderPoint: 50},
			needsReorder: true,
			urgency:      core.UrgencyMedium,
		},
		{
			name:         "low above 0.6 but at reorder point",
			pos:          core.StockPosition{OnHand: 50, Available: 50, MinStock: 5, ReorderPoint: 50},
			needsReorder: true,
			urgency:      core.UrgencyLow,
		},
		{
			name:         "flagged by min stock even with available above reorder point",
			pos:          core.StockPosition{OnHand: 8, Available: 40, MinStock: 10, ReorderPoint: 5},
			needsReorder: true,
			urgency:      core.UrgencyLow,
		},
		{
			name:         "zero reorder point does not divide by zero",
			pos:          core.StockPosition{OnHand: 0, Available: 0, MinStock: 0, ReorderPoint: 0},
			needsReorder: true,
			urgency:      core.UrgencyCritical,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := core.AssessStock(tt.pos)
			if a.NeedsReorder != tt.needsReorder {
				t.Errorf("NeedsReorder = %v, want %v", a.NeedsReorder, tt.needsReorder)
			}
			if a.Urgency != tt.urgency {
				t.Errorf("Urgency = %s, want %s", a.Urgency, tt.urgency)
			}
		})
	}
}

// Urgency must be non-increasing as the stock ratio falls: a more depleted
// position can never be classified as less urgent.
func TestAssessStock_UrgencyMonotonicInStockRatio(t *testing.T) {
	const reorderPoint = 100
	prevRank := -1
	for available := 0; available <= reorderPoint; available++ {
		a := core.AssessStock(core.StockPosition{
			OnHand:       available,
			Available:    available,
			MinStock:     0,
			ReorderPoint: reorderPoint,
		})
		if !a.NeedsReorder {
			t.Fatalf("available=%d at reorder point %d must need reorder", available, reorderPoint)
		}
		if a.Urgency.Rank() < prevRank {
			t.Fatalf("urgency increased as stock grew: available=%d rank=%d, previous rank=%d",
				available, a.Urgency.Rank(), prevRank)
		}
		prevRank = a.Urgency.Rank()
	}
}

func TestAssessStock_ReferenceScenario(t *testing.T) {
	// onHand 5, available 5, min 20, reorderPoint 50, max 200.
	pos := core.StockPosition{OnHand: 5, Available: 5, MinStock: 20, ReorderPoint: 50, MaxStock: 200}

	a := core.AssessStock(pos)
	if !a.NeedsReorder {
		t.Fatal("expected needsReorder = true")
	}
	if a.StockRatio != 0.1 {
		t.Errorf("StockRatio = %v, want 0.1", a.StockRatio)
	}
	if a.Urgency != core.UrgencyCritical {
		t.Errorf("Urgency = %s, want CRITICAL", a.Urgency)
	}
	if qty := core.PlanQuantity(pos, nil); qty != 195 {
		t.Errorf("PlanQuantity = %d, want 195 (max 200 − onHand 5)", qty)
	}
}
