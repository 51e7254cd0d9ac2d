package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"procurement-engine/internal/core"
)

// SupplierOfferRepository reads the supplier catalog.
type SupplierOfferRepository struct {
	pool *pgxpool.Pool
}

var _ core.SupplierOfferRepository = (*SupplierOfferRepository)(nil)

// NewSupplierOfferRepository constructs a SupplierOfferRepository backed by
// PostgreSQL.
func NewSupplierOfferRepository(pool *pgxpool.Pool) *SupplierOfferRepository {
	return &SupplierOfferRepository{pool: pool}
}

func (r *SupplierOfferRepository) ListActiveByProduct(ctx context.Context, productID int) ([]core.SupplierOffer, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT o.supplier_id, s.name, o.product_id, o.unit_price, o.lead_time_days,
		       o.min_order_qty, s.is_preferred, COALESCE(s.average_rating, 0), o.is_active
		FROM supplier_offers o
		JOIN suppliers s ON s.id = o.supplier_id
		WHERE o.product_id = $1 AND o.is_active = true AND s.is_active = true
		ORDER BY o.supplier_id`,
		productID,
	)
	if err != nil {
		return nil, fmt.Errorf("list offers for product %d: %w", productID, err)
	}
	defer rows.Close()

	var offers []core.SupplierOffer
	for rows.Next() {
		var o core.SupplierOffer
		if err := rows.Scan(
			&o.SupplierID, &o.SupplierName, &o.ProductID, &o.UnitPrice, &o.LeadTimeDays,
			&o.MinOrderQty, &o.IsPreferred, &o.AverageRating, &o.IsActive,
		); err != nil {
			return nil, fmt.Errorf("scan supplier offer: %w", err)
		}
		offers = append(offers, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate supplier offers: %w", err)
	}
	return offers, nil
}

// DeliveryRatingRepository reads append-only delivery ratings.
type DeliveryRatingRepository struct {
	pool *pgxpool.Pool
}

var _ core.DeliveryRatingRepository = (*DeliveryRatingRepository)(nil)

// NewDeliveryRatingRepository constructs a DeliveryRatingRepository backed by
// PostgreSQL.
func NewDeliveryRatingRepository(pool *pgxpool.Pool) *DeliveryRatingRepository {
	return &DeliveryRatingRepository{pool: pool}
}

func (r *DeliveryRatingRepository) RecentBySupplier(ctx context.Context, supplierID, limit int) ([]core.DeliveryRating, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT supplier_id, quality_rating, packaging_rating, accuracy_rating,
		       response_hours, rated_at
		FROM delivery_ratings
		WHERE supplier_id = $1
		ORDER BY rated_at DESC
		LIMIT $2`,
		supplierID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list ratings for supplier %d: %w", supplierID, err)
	}
	defer rows.Close()

	var ratings []core.DeliveryRating
	for rows.Next() {
		var dr core.DeliveryRating
		if err := rows.Scan(
			&dr.SupplierID, &dr.QualityRating, &dr.PackagingRating, &dr.AccuracyRating,
			&dr.ResponseHours, &dr.RatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan delivery rating: %w", err)
		}
		ratings = append(ratings, dr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate delivery ratings: %w", err)
	}
	return ratings, nil
}

// DemandPredictionRepository reads forecasts written by the external
// forecasting collaborator.
type DemandPredictionRepository struct {
	pool *pgxpool.Pool
}

var _ core.DemandPredictionRepository = (*DemandPredictionRepository)(nil)

// NewDemandPredictionRepository constructs a DemandPredictionRepository backed
// by PostgreSQL.
func NewDemandPredictionRepository(pool *pgxpool.Pool) *DemandPredictionRepository {
	return &DemandPredictionRepository{pool: pool}
}

func (r *DemandPredictionRepository) ActiveByProduct(ctx context.Context, productID int) (*core.DemandPrediction, error) {
	var p core.DemandPrediction
	err := r.pool.QueryRow(ctx, `
		SELECT product_id, predicted_demand, recommended_order, confidence,
		       timeframe, target_date, is_active
		FROM demand_predictions
		WHERE product_id = $1 AND is_active = true
		ORDER BY target_date DESC
		LIMIT 1`,
		productID,
	).Scan(
		&p.ProductID, &p.PredictedDemand, &p.RecommendedOrder, &p.Confidence,
		&p.Timeframe, &p.TargetDate, &p.IsActive,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get prediction for product %d: %w", productID, err)
	}
	return &p, nil
}

// SalesHistoryRepository measures demand velocity from recorded sales.
type SalesHistoryRepository struct {
	pool *pgxpool.Pool
}

var _ core.SalesHistoryRepository = (*SalesHistoryRepository)(nil)

// NewSalesHistoryRepository constructs a SalesHistoryRepository backed by
// PostgreSQL.
func NewSalesHistoryRepository(pool *pgxpool.Pool) *SalesHistoryRepository {
	return &SalesHistoryRepository{pool: pool}
}

// DailyDemand averages units sold per day over the trailing window. A product
// with no sales rows in the window has no history, which is distinct from a
// recorded demand of zero.
func (r *SalesHistoryRepository) DailyDemand(ctx context.Context, productID, windowDays int) (float64, bool, error) {
	var total float64
	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(quantity), 0), COUNT(*)
		FROM sales_history
		WHERE product_id = $1 AND sold_at >= now() - make_interval(days => $2)`,
		productID, windowDays,
	).Scan(&total, &count)
	if err != nil {
		return 0, false, fmt.Errorf("sales history for product %d: %w", productID, err)
	}
	if count == 0 {
		return 0, false, nil
	}
	return total / float64(windowDays), true, nil
}
