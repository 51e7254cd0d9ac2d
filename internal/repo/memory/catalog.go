package memory

import (
	"context"
	"sort"
	"sync"

	"procurement-engine/internal/core"
)

// SupplierOfferRepository is an in-memory core.SupplierOfferRepository.
type SupplierOfferRepository struct {
	mu     sync.RWMutex
	offers []core.SupplierOffer
}

var _ core.SupplierOfferRepository = (*SupplierOfferRepository)(nil)

// NewSupplierOfferRepository returns an empty in-memory offer catalog.
func NewSupplierOfferRepository() *SupplierOfferRepository {
	return &SupplierOfferRepository{}
}

// Add appends an offer to the catalog.
func (r *SupplierOfferRepository) Add(o core.SupplierOffer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.offers = append(r.offers, o)
}

func (r *SupplierOfferRepository) ListActiveByProduct(_ context.Context, productID int) ([]core.SupplierOffer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []core.SupplierOffer
	for _, o := range r.offers {
		if o.ProductID == productID && o.IsActive {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SupplierID < out[j].SupplierID })
	return out, nil
}

// DeliveryRatingRepository is an in-memory core.DeliveryRatingRepository.
type DeliveryRatingRepository struct {
	mu      sync.RWMutex
	ratings map[int][]core.DeliveryRating
}

var _ core.DeliveryRatingRepository = (*DeliveryRatingRepository)(nil)

// NewDeliveryRatingRepository returns an empty in-memory rating store.
func NewDeliveryRatingRepository() *DeliveryRatingRepository {
	return &DeliveryRatingRepository{ratings: make(map[int][]core.DeliveryRating)}
}

// Add appends a rating for a supplier. Ratings are append-only.
func (r *DeliveryRatingRepository) Add(rating core.DeliveryRating) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ratings[rating.SupplierID] = append(r.ratings[rating.SupplierID], rating)
}

func (r *DeliveryRatingRepository) RecentBySupplier(_ context.Context, supplierID, limit int) ([]core.DeliveryRating, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	all := r.ratings[supplierID]
	out := make([]core.DeliveryRating, len(all))
	copy(out, all)
	sort.SliceStable(out, func(i, j int) bool { return out[i].RatedAt.After(out[j].RatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// DemandPredictionRepository is an in-memory core.DemandPredictionRepository.
type DemandPredictionRepository struct {
	mu          sync.RWMutex
	predictions map[int]core.DemandPrediction
}

var _ core.DemandPredictionRepository = (*DemandPredictionRepository)(nil)

// NewDemandPredictionRepository returns an empty in-memory prediction store.
func NewDemandPredictionRepository() *DemandPredictionRepository {
	return &DemandPredictionRepository{predictions: make(map[int]core.DemandPrediction)}
}

// Put sets the active prediction for a product.
func (r *DemandPredictionRepository) Put(p core.DemandPrediction) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.predictions[p.ProductID] = p
}

func (r *DemandPredictionRepository) ActiveByProduct(_ context.Context, productID int) (*core.DemandPrediction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.predictions[productID]
	if !ok || !p.IsActive {
		return nil, nil
	}
	return &p, nil
}

// SalesHistoryRepository is an in-memory core.SalesHistoryRepository keyed on
// precomputed daily demand per product.
type SalesHistoryRepository struct {
	mu     sync.RWMutex
	demand map[int]float64
}

var _ core.SalesHistoryRepository = (*SalesHistoryRepository)(nil)

// NewSalesHistoryRepository returns an empty in-memory sales history.
func NewSalesHistoryRepository() *SalesHistoryRepository {
	return &SalesHistoryRepository{demand: make(map[int]float64)}
}

// SetDailyDemand records a product's demand velocity in units per day.
func (r *SalesHistoryRepository) SetDailyDemand(productID int, unitsPerDay float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.demand[productID] = unitsPerDay
}

func (r *SalesHistoryRepository) DailyDemand(_ context.Context, productID, _ int) (float64, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.demand[productID]
	return d, ok, nil
}
