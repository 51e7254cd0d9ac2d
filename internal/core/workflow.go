package core

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/shopspring/decimal"
)

// PurchaseRequestService governs the purchase request lifecycle:
// creation (manual or auto-generated), approval, rejection, and conversion
// into a purchase order. All state transitions go through the repository's
// atomic conditional updates, so two racing approvals yield exactly one
// success and one conflict.
type PurchaseRequestService struct {
	requests    PurchaseRequestRepository
	stock       StockRepository
	offers      SupplierOfferRepository
	ratings     DeliveryRatingRepository
	predictions DemandPredictionRepository
}

// NewPurchaseRequestService wires the workflow to its repositories.
func NewPurchaseRequestService(
	requests PurchaseRequestRepository,
	stock StockRepository,
	offers SupplierOfferRepository,
	ratings DeliveryRatingRepository,
	predictions DemandPredictionRepository,
) *PurchaseRequestService {
	return &PurchaseRequestService{
		requests:    requests,
		stock:       stock,
		offers:      offers,
		ratings:     ratings,
		predictions: predictions,
	}
}

// CreateRequestInput holds the fields accepted when creating a request.
type CreateRequestInput struct {
	ProductID    int    `json:"product_id"`
	RequestedQty int    `json:"requested_qty"`
	SupplierID   *int   `json:"supplier_id,omitempty"`
	Notes        string `json:"notes,omitempty"`
}

// CreateRequest validates the input and creates a PENDING request. The
// priority is derived from the product's current restocking urgency. A chosen
// supplier must have an active offer for the product. An existing open
// request for the same product is a conflict.
func (s *PurchaseRequestService) CreateRequest(ctx context.Context, input CreateRequestInput) (*PurchaseRequest, error) {
	if input.ProductID <= 0 {
		return nil, &ValidationError{Field: "productId", Reason: "is required"}
	}
	if input.RequestedQty <= 0 {
		return nil, &ValidationError{Field: "requestedQty", Reason: "must be greater than zero"}
	}

	pos, err := s.stock.GetPosition(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}

	if input.SupplierID != nil {
		offers, err := s.offers.ListActiveByProduct(ctx, input.ProductID)
		if err != nil {
			return nil, fmt.Errorf("supplier offers for product %d: %w", input.ProductID, err)
		}
		if findOffer(offers, *input.SupplierID) == nil {
			return nil, &NotFoundError{Entity: "active supplier offer", Ref: fmt.Sprintf("supplier %d, product %d", *input.SupplierID, input.ProductID)}
		}
	}

	req := &PurchaseRequest{
		ProductID:    input.ProductID,
		RequestedQty: input.RequestedQty,
		SupplierID:   input.SupplierID,
		Priority:     AssessStock(*pos).Urgency,
		Status:       StatusPending,
	}
	if notes := strings.TrimSpace(input.Notes); notes != "" {
		req.Notes = &notes
	}

	created, err := s.requests.Create(ctx, req)
	if errors.Is(err, ErrDuplicateOpenRequest) {
		return nil, &ConflictError{Reason: fmt.Sprintf("an open purchase request already exists for product %d", input.ProductID)}
	}
	if err != nil {
		return nil, fmt.Errorf("create purchase request: %w", err)
	}
	return created, nil
}

// ListRequests returns requests newest first, optionally filtered by status,
// enriched with product and supplier display names.
func (s *PurchaseRequestService) ListRequests(ctx context.Context, status *RequestStatus) ([]PurchaseRequest, error) {
	if status != nil && !status.Valid() {
		return nil, &ValidationError{Field: "status", Reason: fmt.Sprintf("unknown status %q", *status)}
	}
	return s.requests.List(ctx, status)
}

// GetRequest returns a single request by ID.
func (s *PurchaseRequestService) GetRequest(ctx context.Context, id int) (*PurchaseRequest, error) {
	return s.requests.Get(ctx, id)
}

// Approve transitions a PENDING request to APPROVED, recording who approved
// it. A request in any other state yields a ConflictError and is not mutated.
func (s *PurchaseRequestService) Approve(ctx context.Context, requestID int, approvedBy string) (*PurchaseRequest, error) {
	approvedBy = strings.TrimSpace(approvedBy)
	if approvedBy == "" {
		return nil, &ValidationError{Field: "approvedBy", Reason: "is required"}
	}
	return s.requests.Transition(ctx, requestID, StatusPending, StatusApproved, &approvedBy)
}

// Reject transitions a PENDING request to REJECTED. Terminal.
func (s *PurchaseRequestService) Reject(ctx context.Context, requestID int) (*PurchaseRequest, error) {
	return s.requests.Transition(ctx, requestID, StatusPending, StatusRejected, nil)
}

// Convert turns an APPROVED request into exactly one purchase order, carrying
// the product, quantity, and the chosen supplier's unit price at conversion
// time, then marks the request CONVERTED. The order insert and the status
// flip share one transactional boundary, so converting the same request twice
// produces one order and one ConflictError.
func (s *PurchaseRequestService) Convert(ctx context.Context, requestID int, createdBy string) (*PurchaseOrder, error) {
	createdBy = strings.TrimSpace(createdBy)
	if createdBy == "" {
		return nil, &ValidationError{Field: "createdBy", Reason: "is required"}
	}

	req, err := s.requests.Get(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.Status != StatusApproved {
		return nil, &ConflictError{Reason: fmt.Sprintf("purchase request %d cannot be converted: status is %s (must be %s)", requestID, req.Status, StatusApproved)}
	}

	offers, err := s.offers.ListActiveByProduct(ctx, req.ProductID)
	if err != nil {
		return nil, fmt.Errorf("supplier offers for product %d: %w", req.ProductID, err)
	}

	var chosen *SupplierOffer
	if req.SupplierID != nil {
		chosen = findOffer(offers, *req.SupplierID)
		if chosen == nil {
			return nil, &ConflictError{Reason: fmt.Sprintf("supplier %d no longer has an active offer for product %d", *req.SupplierID, req.ProductID)}
		}
	} else {
		ratings, err := s.fetchRatings(ctx, offers)
		if err != nil {
			return nil, err
		}
		scored := ScoreSuppliers(offers, ratings, req.RequestedQty)
		if best := scored.Best(); best != nil {
			chosen = findOffer(offers, best.SupplierID)
		}
	}
	if chosen == nil {
		return nil, &ConflictError{Reason: fmt.Sprintf("purchase request %d has no supplier and product %d has no active offers", requestID, req.ProductID)}
	}

	order := PurchaseOrder{
		RequestID:  requestID,
		ProductID:  req.ProductID,
		SupplierID: chosen.SupplierID,
		Quantity:   req.RequestedQty,
		UnitPrice:  chosen.UnitPrice,
		TotalCost:  chosen.UnitPrice.Mul(decimal.NewFromInt(int64(req.RequestedQty))),
		CreatedBy:  createdBy,
	}
	return s.requests.ConvertToOrder(ctx, requestID, order)
}

// AutoGenerateResult reports an auto-generation sweep.
type AutoGenerateResult struct {
	CreatedCount int         `json:"created_count"`
	SkippedCount int         `json:"skipped_count"` // already had an open request
	Errors       []ItemError `json:"errors,omitempty"`
}

// AutoGenerate sweeps all stock positions and creates one PENDING request per
// product flagged as needing reorder that has no open request yet. The
// de-duplication is enforced by the store's unique constraint on open
// requests, not by a read-then-write check, so concurrent sweeps cannot
// create duplicates: a uniqueness hit is counted as skipped. The requested
// quantity comes from the planner, raised to the chosen supplier's minimum
// order quantity when one applies. One product's failure never aborts the
// sweep.
func (s *PurchaseRequestService) AutoGenerate(ctx context.Context) (*AutoGenerateResult, error) {
	positions, err := s.stock.ListPositions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list stock positions: %w", err)
	}

	result := &AutoGenerateResult{}
	for _, pos := range positions {
		assessment := AssessStock(pos)
		if !assessment.NeedsReorder {
			continue
		}

		req, err := s.buildAutoRequest(ctx, pos, assessment)
		if err != nil {
			result.Errors = append(result.Errors, itemError(pos.ProductID, err))
			continue
		}

		if _, err := s.requests.Create(ctx, req); err != nil {
			if errors.Is(err, ErrDuplicateOpenRequest) {
				result.SkippedCount++
				continue
			}
			result.Errors = append(result.Errors, itemError(pos.ProductID, err))
			continue
		}
		result.CreatedCount++
	}
	return result, nil
}

func (s *PurchaseRequestService) buildAutoRequest(ctx context.Context, pos StockPosition, assessment Assessment) (*PurchaseRequest, error) {
	pred, err := s.predictions.ActiveByProduct(ctx, pos.ProductID)
	if err != nil {
		return nil, fmt.Errorf("demand prediction: %w", err)
	}
	qty := PlanQuantity(pos, pred)

	req := &PurchaseRequest{
		ProductID:    pos.ProductID,
		RequestedQty: qty,
		Priority:     assessment.Urgency,
		Status:       StatusPending,
	}

	offers, err := s.offers.ListActiveByProduct(ctx, pos.ProductID)
	if err != nil {
		return nil, fmt.Errorf("supplier offers: %w", err)
	}
	if len(offers) == 0 {
		// Request still goes out for a human to source a supplier.
		log.Printf("auto-generate: product %d (%s) has no active supplier offers", pos.ProductID, pos.ProductName)
		return req, nil
	}

	ratings, err := s.fetchRatings(ctx, offers)
	if err != nil {
		return nil, err
	}
	scored := ScoreSuppliers(offers, ratings, qty)
	if best := scored.Best(); best != nil {
		id := best.SupplierID
		req.SupplierID = &id
		if best.MinOrderQty > req.RequestedQty {
			req.RequestedQty = best.MinOrderQty
		}
	}
	return req, nil
}

func (s *PurchaseRequestService) fetchRatings(ctx context.Context, offers []SupplierOffer) (map[int][]DeliveryRating, error) {
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

func findOffer(offers []SupplierOffer, supplierID int) *SupplierOffer {
	for i := range offers {
		if offers[i].SupplierID == supplierID && offers[i].IsActive {
			return &offers[i]
		}
	}
	return nil
}
