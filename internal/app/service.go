package app

import (
	"context"

	"procurement-engine/internal/core"
)

// ApplicationService is the single interface all adapters call. It decouples
// presentation from business logic. Implementations must contain no
// fmt.Println and no display logic of any kind.
type ApplicationService interface {
	// GetSuggestions returns ranked reorder recommendations for products whose
	// stock has fallen to or below their thresholds. urgency optionally narrows
	// to one bucket ("" = all); limit caps the list (0 = unlimited) without
	// affecting the summary.
	GetSuggestions(ctx context.Context, urgency string, limit int) (*SuggestionsResult, error)

	// CompareSuppliers ranks all active suppliers offering a product for a
	// given quantity, cheapest-total and best-composite first.
	CompareSuppliers(ctx context.Context, productID, quantity int) (*ComparisonResult, error)

	// CreateRequest creates a PENDING purchase request from manual input.
	CreateRequest(ctx context.Context, req CreateRequestInput) (*RequestResult, error)

	// ListRequests returns purchase requests newest first, optionally filtered
	// by status ("" = all).
	ListRequests(ctx context.Context, status string) (*RequestListResult, error)

	// GetRequest returns one purchase request by ID.
	GetRequest(ctx context.Context, id int) (*RequestResult, error)

	// ApproveRequest transitions a PENDING request to APPROVED.
	ApproveRequest(ctx context.Context, id int, approvedBy string) (*RequestResult, error)

	// RejectRequest transitions a PENDING request to REJECTED.
	RejectRequest(ctx context.Context, id int) (*RequestResult, error)

	// ConvertRequest turns an APPROVED request into exactly one purchase order.
	ConvertRequest(ctx context.Context, id int, createdBy string) (*OrderResult, error)

	// AutoGenerateRequests sweeps all stock positions and creates a PENDING
	// request for every product needing reorder that has no open request yet.
	AutoGenerateRequests(ctx context.Context) (*core.AutoGenerateResult, error)

	// RecomputeReorderPoints recalculates reorder points and max stock levels
	// from sales velocity and supplier lead times.
	RecomputeReorderPoints(ctx context.Context) (*core.RecomputeResult, error)
}
