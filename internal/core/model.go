package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// Urgency buckets a product's restocking need, derived from how far available
// stock has fallen below its reorder point.
type Urgency string

const (
	UrgencyCritical Urgency = "CRITICAL"
	UrgencyHigh     Urgency = "HIGH"
	UrgencyMedium   Urgency = "MEDIUM"
	UrgencyLow      Urgency = "LOW"
)

// Rank orders urgencies for sorting: CRITICAL sorts first.
func (u Urgency) Rank() int {
	switch u {
	case UrgencyCritical:
		return 0
	case UrgencyHigh:
		return 1
	case UrgencyMedium:
		return 2
	default:
		return 3
	}
}

// Valid reports whether u is one of the four known buckets.
func (u Urgency) Valid() bool {
	switch u {
	case UrgencyCritical, UrgencyHigh, UrgencyMedium, UrgencyLow:
		return true
	}
	return false
}

// RequestStatus is the lifecycle state of a purchase request.
// PENDING → APPROVED → CONVERTED, or PENDING → REJECTED. REJECTED and
// CONVERTED are terminal; no transition ever moves a request backward.
type RequestStatus string

const (
	StatusPending   RequestStatus = "PENDING"
	StatusApproved  RequestStatus = "APPROVED"
	StatusRejected  RequestStatus = "REJECTED"
	StatusConverted RequestStatus = "CONVERTED"
)

// Valid reports whether s is a known request status.
func (s RequestStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusConverted:
		return true
	}
	return false
}

// Timeframe is the horizon of a demand prediction.
type Timeframe string

const (
	TimeframeWeek    Timeframe = "WEEK"
	TimeframeMonth   Timeframe = "MONTH"
	TimeframeQuarter Timeframe = "QUARTER"
)

// StockPosition is the current stock state of one product, including the
// stocking policy thresholds maintained by the reorder point calculator.
// Only the threshold fields are ever written by this engine.
type StockPosition struct {
	ProductID    int    `json:"product_id"`
	ProductName  string `json:"product_name"`
	OnHand       int    `json:"on_hand"`
	Reserved     int    `json:"reserved"`
	Available    int    `json:"available"` // on hand minus reserved
	MinStock     int    `json:"min_stock"`
	MaxStock     int    `json:"max_stock"` // 0 = not configured
	ReorderPoint int    `json:"reorder_point"`
}

// SupplierOffer is one supplier's standing offer for one product.
// Read-only to the engine; supplier management owns these records.
type SupplierOffer struct {
	SupplierID    int             `json:"supplier_id"`
	SupplierName  string          `json:"supplier_name"`
	ProductID     int             `json:"product_id"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	LeadTimeDays  int             `json:"lead_time_days"`
	MinOrderQty   int             `json:"min_order_qty"`
	IsPreferred   bool            `json:"is_preferred"`
	AverageRating float64         `json:"average_rating"` // 0–5, 0 = unrated
	IsActive      bool            `json:"is_active"`
}

// DeliveryRating is one append-only delivery review for a supplier.
// Each component is rated 1–5. Used only in aggregate over the most recent N.
type DeliveryRating struct {
	SupplierID      int       `json:"supplier_id"`
	QualityRating   int       `json:"quality_rating"`
	PackagingRating int       `json:"packaging_rating"`
	AccuracyRating  int       `json:"accuracy_rating"`
	ResponseHours   *float64  `json:"response_hours,omitempty"`
	RatedAt         time.Time `json:"rated_at"`
}

// DemandPrediction is a forecast produced by the external forecasting
// collaborator. At most one active prediction per product per target window.
type DemandPrediction struct {
	ProductID        int       `json:"product_id"`
	PredictedDemand  float64   `json:"predicted_demand"`
	RecommendedOrder *float64  `json:"recommended_order,omitempty"`
	Confidence       float64   `json:"confidence"` // 0–1
	Timeframe        Timeframe `json:"timeframe"`
	TargetDate       time.Time `json:"target_date"`
	IsActive         bool      `json:"is_active"`
}

// PurchaseRequest proposes reordering a quantity of a product, subject to
// approval. Owned exclusively by the purchase request workflow.
type PurchaseRequest struct {
	ID           int           `json:"id"`
	ProductID    int           `json:"product_id"`
	ProductName  string        `json:"product_name"`
	RequestedQty int           `json:"requested_qty"`
	SupplierID   *int          `json:"supplier_id,omitempty"`
	SupplierName *string       `json:"supplier_name,omitempty"`
	Priority     Urgency       `json:"priority"`
	Status       RequestStatus `json:"status"`
	ApprovedBy   *string       `json:"approved_by,omitempty"`
	Notes        *string       `json:"notes,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
	ApprovedAt   *time.Time    `json:"approved_at,omitempty"`
}

// PurchaseOrder is the committed, supplier-facing order created exactly once
// when an approved purchase request is converted. It preserves the product,
// quantity, chosen supplier, and unit price as of conversion time.
type PurchaseOrder struct {
	ID           int             `json:"id"`
	OrderNumber  string          `json:"order_number"`
	RequestID    int             `json:"request_id"`
	ProductID    int             `json:"product_id"`
	ProductName  string          `json:"product_name"`
	SupplierID   int             `json:"supplier_id"`
	SupplierName string          `json:"supplier_name"`
	Quantity     int             `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	TotalCost    decimal.Decimal `json:"total_cost"`
	CreatedBy    string          `json:"created_by"`
	CreatedAt    time.Time       `json:"created_at"`
}
