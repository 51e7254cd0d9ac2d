package app

import (
	"context"
	"fmt"

	"procurement-engine/internal/core"
)

type appService struct {
	recommendations *core.RecommendationService
	workflow        *core.PurchaseRequestService
	reorder         *core.ReorderPointCalculator
}

// NewAppService constructs an appService that satisfies ApplicationService.
func NewAppService(
	recommendations *core.RecommendationService,
	workflow *core.PurchaseRequestService,
	reorder *core.ReorderPointCalculator,
) ApplicationService {
	return &appService{
		recommendations: recommendations,
		workflow:        workflow,
		reorder:         reorder,
	}
}

// GetSuggestions returns ranked reorder recommendations, optionally narrowed
// to one urgency bucket.
func (s *appService) GetSuggestions(ctx context.Context, urgency string, limit int) (*SuggestionsResult, error) {
	var filter *core.Urgency
	if urgency != "" {
		u := core.Urgency(urgency)
		if !u.Valid() {
			return nil, &core.ValidationError{Field: "urgency", Reason: fmt.Sprintf("unknown urgency %q", urgency)}
		}
		filter = &u
	}
	if limit < 0 {
		return nil, &core.ValidationError{Field: "limit", Reason: "must not be negative"}
	}

	result, err := s.recommendations.GetSuggestions(ctx, filter, limit)
	if err != nil {
		return nil, err
	}
	return &SuggestionsResult{
		Recommendations: result.Recommendations,
		Summary:         result.Summary,
	}, nil
}

// CompareSuppliers ranks all active suppliers offering a product.
func (s *appService) CompareSuppliers(ctx context.Context, productID, quantity int) (*ComparisonResult, error) {
	scored, err := s.recommendations.CompareSuppliers(ctx, productID, quantity)
	if err != nil {
		return nil, err
	}
	return &ComparisonResult{
		ProductID: productID,
		Quantity:  quantity,
		Quotes:    scored.Quotes,
		Savings:   scored.Savings,
		Gaps:      scored.Gaps,
	}, nil
}

// CreateRequest creates a PENDING purchase request from manual input.
func (s *appService) CreateRequest(ctx context.Context, req CreateRequestInput) (*RequestResult, error) {
	created, err := s.workflow.CreateRequest(ctx, core.CreateRequestInput{
		ProductID:    req.ProductID,
		RequestedQty: req.RequestedQty,
		SupplierID:   req.SupplierID,
		Notes:        req.Notes,
	})
	if err != nil {
		return nil, err
	}
	return &RequestResult{Request: created}, nil
}

// ListRequests returns purchase requests newest first.
func (s *appService) ListRequests(ctx context.Context, status string) (*RequestListResult, error) {
	var filter *core.RequestStatus
	if status != "" {
		st := core.RequestStatus(status)
		filter = &st
	}
	requests, err := s.workflow.ListRequests(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &RequestListResult{Requests: requests}, nil
}

// GetRequest returns one purchase request by ID.
func (s *appService) GetRequest(ctx context.Context, id int) (*RequestResult, error) {
	req, err := s.workflow.GetRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	return &RequestResult{Request: req}, nil
}

// ApproveRequest transitions a PENDING request to APPROVED.
func (s *appService) ApproveRequest(ctx context.Context, id int, approvedBy string) (*RequestResult, error) {
	req, err := s.workflow.Approve(ctx, id, approvedBy)
	if err != nil {
		return nil, err
	}
	return &RequestResult{Request: req}, nil
}

// RejectRequest transitions a PENDING request to REJECTED.
func (s *appService) RejectRequest(ctx context.Context, id int) (*RequestResult, error) {
	req, err := s.workflow.Reject(ctx, id)
	if err != nil {
		return nil, err
	}
	return &RequestResult{Request: req}, nil
}

// ConvertRequest turns an APPROVED request into exactly one purchase order.
func (s *appService) ConvertRequest(ctx context.Context, id int, createdBy string) (*OrderResult, error) {
	order, err := s.workflow.Convert(ctx, id, createdBy)
	if err != nil {
		return nil, err
	}
	return &OrderResult{Order: order}, nil
}

// AutoGenerateRequests sweeps stock and creates requests for flagged products.
func (s *appService) AutoGenerateRequests(ctx context.Context) (*core.AutoGenerateResult, error) {
	return s.workflow.AutoGenerate(ctx)
}

// RecomputeReorderPoints recalculates thresholds from sales velocity and lead
// times.
func (s *appService) RecomputeReorderPoints(ctx context.Context) (*core.RecomputeResult, error) {
	return s.reorder.Recompute(ctx)
}
