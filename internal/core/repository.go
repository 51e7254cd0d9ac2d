package core

import "context"

// Repositories abstract the marketplace's relational store. One interface per
// entity so the engine can be unit-tested against in-memory implementations
// and wired to PostgreSQL in production.

// StockRepository reads stock positions and writes recomputed thresholds.
type StockRepository interface {
	// GetPosition returns the stock position for one product.
	// Returns a NotFoundError if the product does not exist.
	GetPosition(ctx context.Context, productID int) (*StockPosition, error)

	// ListPositions returns the stock positions of all active products.
	ListPositions(ctx context.Context) ([]StockPosition, error)

	// UpdateThresholds writes a recomputed reorder point and max stock level.
	// These are the only stock fields the engine ever mutates.
	UpdateThresholds(ctx context.Context, productID, reorderPoint, maxStock int) error
}

// SupplierOfferRepository reads the supplier catalog. Offers are read-only to
// the engine.
type SupplierOfferRepository interface {
	// ListActiveByProduct returns all active offers for a product, with the
	// supplier display name joined in.
	ListActiveByProduct(ctx context.Context, productID int) ([]SupplierOffer, error)
}

// DeliveryRatingRepository reads append-only delivery ratings.
type DeliveryRatingRepository interface {
	// RecentBySupplier returns up to limit ratings for a supplier, most
	// recent first.
	RecentBySupplier(ctx context.Context, supplierID, limit int) ([]DeliveryRating, error)
}

// DemandPredictionRepository reads forecasts produced by the external
// forecasting collaborator.
type DemandPredictionRepository interface {
	// ActiveByProduct returns the active prediction for a product, or
	// (nil, nil) when none exists.
	ActiveByProduct(ctx context.Context, productID int) (*DemandPrediction, error)
}

// SalesHistoryRepository is the sales-history collaborator used by the
// reorder point calculator to measure demand velocity.
type SalesHistoryRepository interface {
	// DailyDemand returns units consumed per day over the trailing window of
	// windowDays. hasHistory is false when the product has no recorded sales
	// in the window, in which case the caller must leave thresholds alone.
	DailyDemand(ctx context.Context, productID, windowDays int) (demand float64, hasHistory bool, err error)
}

// PurchaseRequestRepository owns purchase request persistence, including the
// atomic conditional transitions the state machine depends on.
type PurchaseRequestRepository interface {
	// Create inserts a new PENDING request and returns it with ID, names, and
	// timestamps filled in. Returns ErrDuplicateOpenRequest when an open
	// (PENDING/APPROVED) request already exists for the product — enforced by
	// the store, not by a read-then-write check.
	Create(ctx context.Context, req *PurchaseRequest) (*PurchaseRequest, error)

	// Get returns one request. Returns a NotFoundError if it does not exist.
	Get(ctx context.Context, id int) (*PurchaseRequest, error)

	// List returns requests enriched with product and supplier display names,
	// newest first, optionally filtered by status.
	List(ctx context.Context, status *RequestStatus) ([]PurchaseRequest, error)

	// Transition atomically moves a request from one status to another
	// ("UPDATE … WHERE status = from"). Zero rows affected means another
	// caller got there first: a ConflictError is returned and nothing is
	// mutated. approvedBy is recorded when transitioning to APPROVED.
	Transition(ctx context.Context, id int, from, to RequestStatus, approvedBy *string) (*PurchaseRequest, error)

	// ConvertToOrder atomically transitions an APPROVED request to CONVERTED
	// and creates exactly one purchase order from it, in a single
	// transactional boundary. A request that is not APPROVED (including one
	// already CONVERTED) yields a ConflictError and no order.
	ConvertToOrder(ctx context.Context, requestID int, order PurchaseOrder) (*PurchaseOrder, error)
}

// PurchaseOrderRepository reads purchase orders created by conversion.
type PurchaseOrderRepository interface {
	// Get returns one purchase order. Returns a NotFoundError if absent.
	Get(ctx context.Context, id int) (*PurchaseOrder, error)

	// ListByRequest returns all orders created from a request. The workflow
	// guarantees at most one.
	ListByRequest(ctx context.Context, requestID int) ([]PurchaseOrder, error)
}
