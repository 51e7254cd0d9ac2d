// Package memory provides mutex-guarded in-memory repository implementations.
// They honor the same contracts as the PostgreSQL repositories — conditional
// transitions, duplicate-open-request enforcement — and back deterministic
// unit tests without a live store.
package memory

import (
	"context"
	"sort"
	"sync"

	"procurement-engine/internal/core"
)

// StockRepository is an in-memory core.StockRepository.
type StockRepository struct {
	mu        sync.RWMutex
	positions map[int]core.StockPosition
}

var _ core.StockRepository = (*StockRepository)(nil)

// NewStockRepository returns an empty in-memory stock repository.
func NewStockRepository() *StockRepository {
	return &StockRepository{positions: make(map[int]core.StockPosition)}
}

// Put inserts or replaces a stock position.
func (r *StockRepository) Put(p core.StockPosition) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.positions[p.ProductID] = p
}

func (r *StockRepository) GetPosition(_ context.Context, productID int) (*core.StockPosition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.positions[productID]
	if !ok {
		return nil, &core.NotFoundError{Entity: "product", Ref: productID}
	}
	return &p, nil
}

func (r *StockRepository) ListPositions(_ context.Context) ([]core.StockPosition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]core.StockPosition, 0, len(r.positions))
	for _, p := range r.positions {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out, nil
}

func (r *StockRepository) UpdateThresholds(_ context.Context, productID, reorderPoint, maxStock int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.positions[productID]
	if !ok {
		return &core.NotFoundError{Entity: "product", Ref: productID}
	}
	p.ReorderPoint = reorderPoint
	p.MaxStock = maxStock
	r.positions[productID] = p
	return nil
}
