package app

import (
	"github.com/shopspring/decimal"

	"procurement-engine/internal/core"
)

// SuggestionsResult is returned by GetSuggestions.
type SuggestionsResult struct {
	Recommendations []core.Recommendation  `json:"recommendations"`
	Summary         core.SuggestionSummary `json:"summary"`
}

// ComparisonResult is returned by CompareSuppliers.
type ComparisonResult struct {
	ProductID int                  `json:"product_id"`
	Quantity  int                  `json:"quantity"`
	Quotes    []core.SupplierQuote `json:"quotes"`
	Savings   decimal.Decimal      `json:"savings"`
	Gaps      []string             `json:"gaps,omitempty"`
}

// RequestResult is returned by request lifecycle operations.
type RequestResult struct {
	Request *core.PurchaseRequest `json:"request"`
}

// RequestListResult is returned by ListRequests.
type RequestListResult struct {
	Requests []core.PurchaseRequest `json:"requests"`
}

// OrderResult is returned by ConvertRequest.
type OrderResult struct {
	Order *core.PurchaseOrder `json:"order"`
}
